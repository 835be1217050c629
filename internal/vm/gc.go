package vm

import "github.com/xirelogy/go-qi/internal/value"

// collectGarbage runs one mark-and-sweep cycle: mark every object reachable
// from a root, remove unmarked entries from the string intern pool (so the
// same content re-interns cleanly later), unlink unmarked objects from the
// intrusive heap list, then grow the next collection threshold so cycles
// become rarer as the live set grows.
//
// Actual memory reclamation is left to the host runtime's own collector;
// this pass exists to bound the string pool and the heap list, and to
// mirror the reference interpreter's collection triggers and roots for
// diagnostic purposes (see the Debug log emitted below).
func (vm *VM) collectGarbage() {
	before := vm.objectCount

	vm.markRoots()
	vm.strings.Sweep()
	vm.sweepObjects()

	vm.gcThreshold = int(float64(vm.objectCount) * vm.cfg.GCGrowthFactor)
	if vm.gcThreshold < vm.cfg.InitialGCThreshold {
		vm.gcThreshold = vm.cfg.InitialGCThreshold
	}
	vm.logger.Debug("gc cycle", map[string]any{
		"before": before,
		"after":  vm.objectCount,
		"next":   vm.gcThreshold,
	})
}

func (vm *VM) markRoots() {
	for i := range vm.stack {
		vm.markValue(vm.stack[i])
	}
	for i := range vm.frames {
		vm.markObject(vm.frames[i].closure)
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.OpenNext() {
		vm.markObject(uv)
	}
	vm.globals.Each(func(_ string, v value.Value) {
		vm.markValue(v)
	})
	vm.markObject(vm.initString)
}

func (vm *VM) markValue(v value.Value) {
	if v.IsObject() {
		vm.markObject(v.AsObject())
	}
}

// markObject sets the mark bit and, for container objects, recurses into
// what they reference. Marking is depth-first rather than via an explicit
// gray worklist: the object graph here is shallow enough (functions,
// closures, classes, instances) that stack recursion never gets deep.
func (vm *VM) markObject(o value.Object) {
	if o == nil || o.Marked() {
		return
	}
	o.SetMarked(true)

	switch obj := o.(type) {
	case *value.Closure:
		vm.markObject(obj.Fn)
		for _, uv := range obj.Upvalues {
			vm.markObject(uv)
		}
	case *value.Function:
		if obj.Name != nil {
			vm.markObject(obj.Name)
		}
		for _, c := range obj.Chunk.Consts {
			vm.markValue(c)
		}
	case *value.Upvalue:
		if obj.Location != nil {
			vm.markValue(*obj.Location)
		} else {
			vm.markValue(obj.Get())
		}
	case *value.Class:
		vm.markObject(obj.Name)
		for _, m := range obj.Methods {
			vm.markObject(m)
		}
	case *value.Instance:
		vm.markObject(obj.Class)
		for _, f := range obj.Fields {
			vm.markValue(f)
		}
	case *value.BoundMethod:
		vm.markValue(obj.Receiver)
		vm.markObject(obj.Method)
	}
}

// sweepObjects walks the intrusive heap list, drops unmarked nodes (letting
// the host GC reclaim them) and unmarks survivors for the next cycle.
func (vm *VM) sweepObjects() {
	var prev value.Object
	cur := vm.objects
	count := 0
	for cur != nil {
		next := cur.Next()
		if cur.Marked() {
			cur.SetMarked(false)
			prev = cur
			count++
		} else if prev == nil {
			vm.objects = next
		} else {
			prev.SetNext(next)
		}
		cur = next
	}
	vm.objectCount = count
}
