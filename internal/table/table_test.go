package table_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xirelogy/go-qi/internal/table"
	"github.com/xirelogy/go-qi/internal/value"
)

func TestTableSetGetDelete(t *testing.T) {
	tab := table.New[value.Value]()

	isNew := tab.Set("甲", value.Number(1))
	assert.True(t, isNew)
	isNew = tab.Set("甲", value.Number(2))
	assert.False(t, isNew, "overwriting an existing key is not a new insertion")

	got, ok := tab.Get("甲")
	require.True(t, ok)
	assert.Equal(t, value.Number(2), got)

	_, ok = tab.Get("乙")
	assert.False(t, ok)

	removed := tab.Delete("甲")
	assert.True(t, removed)
	_, ok = tab.Get("甲")
	assert.False(t, ok)
	assert.Equal(t, 0, tab.Len())
}

func TestTableDeleteLeavesTombstoneNotBreakingLaterProbes(t *testing.T) {
	tab := table.New[value.Value]()
	tab.Set("甲", value.Number(1))
	tab.Set("乙", value.Number(2))
	tab.Set("丙", value.Number(3))

	tab.Delete("乙")

	v, ok := tab.Get("丙")
	require.True(t, ok)
	assert.Equal(t, value.Number(3), v)
}

func TestTableGrowsPastLoadFactorAndRetainsAllEntries(t *testing.T) {
	tab := table.New[value.Value]()
	const n = 200
	for i := 0; i < n; i++ {
		tab.Set(fmt.Sprintf("键%d", i), value.Number(float64(i)))
	}
	assert.Equal(t, n, tab.Len())
	for i := 0; i < n; i++ {
		v, ok := tab.Get(fmt.Sprintf("键%d", i))
		require.True(t, ok)
		assert.Equal(t, value.Number(float64(i)), v)
	}
}

func TestTableEachVisitsEveryLiveEntry(t *testing.T) {
	tab := table.New[value.Value]()
	tab.Set("甲", value.Number(1))
	tab.Set("乙", value.Number(2))
	tab.Delete("乙")

	seen := map[string]value.Value{}
	tab.Each(func(k string, v value.Value) { seen[k] = v })
	assert.Len(t, seen, 1)
	assert.Equal(t, value.Number(1), seen["甲"])
}

func TestTableDeleteWhereRemovesMatchingEntries(t *testing.T) {
	tab := table.New[value.Value]()
	tab.Set("甲", value.Number(1))
	tab.Set("乙", value.Number(2))
	tab.Set("丙", value.Number(3))

	tab.DeleteWhere(func(_ string, v value.Value) bool {
		return v.AsNumber() >= 2
	})

	assert.Equal(t, 1, tab.Len())
	_, ok := tab.Get("甲")
	assert.True(t, ok)
}

func TestStringsInternReturnsSamePointerForEqualContent(t *testing.T) {
	pool := table.NewStrings()
	a := pool.Intern("你好")
	b := pool.Intern("你好")
	assert.Same(t, a, b)
	assert.Equal(t, 1, pool.Len())

	c := pool.Intern("再见")
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, pool.Len())
}

func TestStringsSweepDropsUnmarkedEntries(t *testing.T) {
	pool := table.NewStrings()
	kept := pool.Intern("保留")
	pool.Intern("丢弃")

	kept.SetMarked(true)
	pool.Sweep()

	assert.Equal(t, 1, pool.Len())
	got, ok := pool.Get("保留")
	require.True(t, ok)
	assert.Same(t, kept, got)
	_, ok = pool.Get("丢弃")
	assert.False(t, ok)
}
