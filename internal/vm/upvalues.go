package vm

import (
	"unsafe"

	"github.com/xirelogy/go-qi/internal/value"
)

func uintptrOf(p *value.Value) uintptr { return uintptr(unsafe.Pointer(p)) }

// captureUpvalue returns the open upvalue for slot, reusing one from the
// descending-address open list if one already exists, otherwise inserting
// a new one at the correct position.
func (vm *VM) captureUpvalue(slot *value.Value) *value.Upvalue {
	var prev *value.Upvalue
	cur := vm.openUpvalues
	for cur != nil && cur.Location != nil && greaterSlot(cur.Location, slot) {
		prev = cur
		cur = cur.OpenNext()
	}
	if cur != nil && cur.Location == slot {
		return cur
	}
	created := value.NewUpvalue(slot)
	vm.trackObject(created)
	created.SetOpenNext(cur)
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.SetOpenNext(created)
	}
	return created
}

// greaterSlot orders two stack-slot pointers the way the reference
// implementation orders raw stack addresses: purely by relative position,
// which Go pointer comparison already gives us since both point into the
// same backing array.
func greaterSlot(a, b *value.Value) bool {
	return uintptrOf(a) > uintptrOf(b)
}

// closeUpvalues closes every open upvalue whose slot is at or above last,
// copying the slot's final value into the upvalue itself before the frame
// that owned the slot is popped.
func (vm *VM) closeUpvalues(last *value.Value) {
	for vm.openUpvalues != nil && vm.openUpvalues.Location != nil &&
		!greaterSlot(last, vm.openUpvalues.Location) {
		uv := vm.openUpvalues
		uv.Close()
		vm.openUpvalues = uv.OpenNext()
	}
}
