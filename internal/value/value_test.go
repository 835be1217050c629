package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xirelogy/go-qi/internal/value"
)

func TestFalseyRule(t *testing.T) {
	assert.True(t, value.Falsey(value.Nil))
	assert.True(t, value.Falsey(value.Bool(false)))
	assert.False(t, value.Falsey(value.Bool(true)))
	assert.False(t, value.Falsey(value.Number(0)))
	assert.False(t, value.Falsey(value.Obj(&value.String{Chars: ""})))
}

func TestEqualByValueForPrimitives(t *testing.T) {
	assert.True(t, value.Equal(value.Number(1), value.Number(1)))
	assert.False(t, value.Equal(value.Number(1), value.Number(2)))
	assert.True(t, value.Equal(value.Bool(true), value.Bool(true)))
	assert.True(t, value.Equal(value.Nil, value.Nil))
	assert.False(t, value.Equal(value.Nil, value.Bool(false)))
}

func TestEqualByIdentityForNonStringObjects(t *testing.T) {
	a := value.NewClass(&value.String{Chars: "甲"})
	b := value.NewClass(&value.String{Chars: "甲"})
	assert.True(t, value.Equal(value.Obj(a), value.Obj(a)))
	assert.False(t, value.Equal(value.Obj(a), value.Obj(b)))
}

func TestEqualStringsByPointerIdentityNotContent(t *testing.T) {
	s1 := &value.String{Chars: "你好"}
	s2 := &value.String{Chars: "你好"}
	assert.False(t, value.Equal(value.Obj(s1), value.Obj(s2)),
		"distinct *String allocations with equal content must not compare equal without interning")
	assert.True(t, value.Equal(value.Obj(s1), value.Obj(s1)))
}

func TestIsAndAsGenericHelpers(t *testing.T) {
	s := &value.String{Chars: "甲"}
	v := value.Obj(s)
	assert.True(t, value.Is[*value.String](v))
	assert.False(t, value.Is[*value.Function](v))
	assert.Same(t, s, value.As[*value.String](v))
}

func TestTypeNameCoversEveryObjectVariant(t *testing.T) {
	str := &value.String{Chars: "甲"}
	fn := &value.Function{}
	cls := value.NewClass(str)
	inst := value.NewInstance(cls)
	bound := &value.BoundMethod{Receiver: value.Obj(inst), Method: value.NewClosure(fn)}

	assert.Equal(t, "nil", value.TypeName(value.Nil))
	assert.Equal(t, "bool", value.TypeName(value.Bool(true)))
	assert.Equal(t, "number", value.TypeName(value.Number(1)))
	assert.Equal(t, "string", value.TypeName(value.Obj(str)))
	assert.Equal(t, "function", value.TypeName(value.Obj(fn)))
	assert.Equal(t, "closure", value.TypeName(value.Obj(value.NewClosure(fn))))
	assert.Equal(t, "class", value.TypeName(value.Obj(cls)))
	assert.Equal(t, "instance", value.TypeName(value.Obj(inst)))
	assert.Equal(t, "bound method", value.TypeName(value.Obj(bound)))
}

func TestValueStringRendersLanguageLiterals(t *testing.T) {
	assert.Equal(t, "空", value.Nil.String())
	assert.Equal(t, "真", value.Bool(true).String())
	assert.Equal(t, "假", value.Bool(false).String())
	assert.Equal(t, "3", value.Number(3).String())
	assert.Equal(t, "3.5", value.Number(3.5).String())
}

func TestHashStringIsDeterministic(t *testing.T) {
	assert.Equal(t, value.HashString("甲"), value.HashString("甲"))
	assert.NotEqual(t, value.HashString("甲"), value.HashString("乙"))
}

func TestChunkAddConstantEnforces256EntryLimit(t *testing.T) {
	var c value.Chunk
	for i := 0; i < 256; i++ {
		_, ok := c.AddConstant(value.Number(float64(i)))
		assert.True(t, ok)
	}
	_, ok := c.AddConstant(value.Number(256))
	assert.False(t, ok, "a 257th constant must be rejected")
	assert.Len(t, c.Consts, 256)
}

func TestChunkLineForOffsetTracksLineTable(t *testing.T) {
	var c value.Chunk
	c.Write(0x01, 1)
	c.Write(0x02, 1)
	c.Write(0x03, 2)
	assert.Equal(t, 1, c.LineForOffset(0))
	assert.Equal(t, 1, c.LineForOffset(1))
	assert.Equal(t, 2, c.LineForOffset(2))
}

func TestUpvalueOpenThenClose(t *testing.T) {
	slot := value.Number(1)
	uv := value.NewUpvalue(&slot)
	assert.Equal(t, value.Number(1), uv.Get())

	slot = value.Number(2)
	assert.Equal(t, value.Number(2), uv.Get(), "open upvalue reads through to the live stack slot")

	uv.Close()
	slot = value.Number(3)
	assert.Equal(t, value.Number(2), uv.Get(), "closed upvalue keeps the value at close time")

	uv.Set(value.Number(4))
	assert.Equal(t, value.Number(4), uv.Get())
}
