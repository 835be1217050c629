// Package table implements the open-addressing hash table shared by the
// globals table and the string intern pool. It intentionally does not use
// Go's built-in map: both call sites need to reason about key hashing and
// tombstone-based deletion explicitly (globals deletion and interning
// look-before-insert both depend on it).
package table

import "github.com/xirelogy/go-qi/internal/value"

const maxLoadFactor = 0.75

type entry[V any] struct {
	// occupied distinguishes an empty slot from a live one; tombstone
	// distinguishes a deleted slot (which must not terminate a probe
	// sequence) from either.
	occupied  bool
	tombstone bool
	hash      uint32
	key       string
	val       V
}

// Table is a generic open-addressed hash table keyed by string content,
// used both for the globals table (V = value.Value) and, wrapped by
// Strings below, for the string intern pool (V = *value.String).
type Table[V any] struct {
	entries []entry[V]
	count   int // occupied, including tombstones
	live    int // occupied, excluding tombstones
}

// New creates an empty table.
func New[V any]() *Table[V] {
	return &Table[V]{}
}

// Len reports the number of live (non-tombstone) entries.
func (t *Table[V]) Len() int { return t.live }

func (t *Table[V]) findSlot(entries []entry[V], hash uint32, key string) int {
	capacity := uint32(len(entries))
	idx := hash % capacity
	var firstTombstone = -1
	for {
		e := &entries[idx]
		if !e.occupied {
			if !e.tombstone {
				if firstTombstone != -1 {
					return firstTombstone
				}
				return int(idx)
			}
			if firstTombstone == -1 {
				firstTombstone = int(idx)
			}
		} else if e.hash == hash && e.key == key {
			return int(idx)
		}
		idx = (idx + 1) % capacity
	}
}

func (t *Table[V]) grow() {
	newCap := 8
	if len(t.entries) > 0 {
		newCap = len(t.entries) * 2
	}
	newEntries := make([]entry[V], newCap)
	t.live = 0
	old := t.entries
	t.entries = newEntries
	for _, e := range old {
		if !e.occupied {
			continue
		}
		slot := t.findSlot(t.entries, e.hash, e.key)
		t.entries[slot] = e
		t.live++
	}
	t.count = t.live
}

// Set inserts or overwrites key, growing the backing array first if the
// load factor would exceed 0.75. Returns true if this created a new key.
func (t *Table[V]) Set(key string, val V) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoadFactor {
		t.grow()
	}
	hash := value.HashString(key)
	slot := t.findSlot(t.entries, hash, key)
	e := &t.entries[slot]
	isNew := !e.occupied
	if isNew {
		if !e.tombstone {
			t.count++
		}
		t.live++
	}
	*e = entry[V]{occupied: true, hash: hash, key: key, val: val}
	return isNew
}

// Get looks up key.
func (t *Table[V]) Get(key string) (V, bool) {
	var zero V
	if len(t.entries) == 0 {
		return zero, false
	}
	hash := value.HashString(key)
	slot := t.findSlot(t.entries, hash, key)
	e := &t.entries[slot]
	if !e.occupied {
		return zero, false
	}
	return e.val, true
}

// Delete removes key, leaving a tombstone so later probe sequences that
// passed through this slot remain intact.
func (t *Table[V]) Delete(key string) bool {
	if len(t.entries) == 0 {
		return false
	}
	hash := value.HashString(key)
	slot := t.findSlot(t.entries, hash, key)
	e := &t.entries[slot]
	if !e.occupied {
		return false
	}
	*e = entry[V]{occupied: false, tombstone: true}
	t.live--
	return true
}

// Each calls fn for every live entry, in unspecified order. The collector
// uses it to mark the values held in the globals table; removing entries
// is done with DeleteWhere.
func (t *Table[V]) Each(fn func(key string, val V)) {
	for _, e := range t.entries {
		if e.occupied {
			fn(e.key, e.val)
		}
	}
}

// DeleteWhere removes every live entry for which pred returns true.
func (t *Table[V]) DeleteWhere(pred func(key string, val V) bool) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.occupied && pred(e.key, e.val) {
			*e = entry[V]{occupied: false, tombstone: true}
			t.live--
		}
	}
}
