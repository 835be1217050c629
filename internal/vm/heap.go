package vm

import "github.com/xirelogy/go-qi/internal/value"

// HeapObjectCount reports how many heap objects are linked into the VM's
// intrusive heap list (excluding the interned-string pool, which package
// table manages separately). A garbage collection cycle lowers it to the
// number of surviving objects, and Close() resets it to zero by dropping
// the list; the memory itself is reclaimed by the Go runtime.
func (vm *VM) HeapObjectCount() int {
	return vm.objectCount
}

// trackObject links o into the VM's intrusive heap list and, once enough
// objects have accumulated, triggers a collection. Interned strings are
// tracked separately by the string pool (see package table) and are not
// pushed through here.
func (vm *VM) trackObject(o value.Object) {
	o.SetNext(vm.objects)
	vm.objects = o
	vm.objectCount++
	if vm.objectCount >= vm.gcThreshold {
		vm.collectGarbage()
	}
}

func (vm *VM) newClosure(fn *value.Function) *value.Closure {
	c := value.NewClosure(fn)
	vm.trackObject(c)
	return c
}

func (vm *VM) newClass(name *value.String) *value.Class {
	c := value.NewClass(name)
	vm.trackObject(c)
	return c
}

func (vm *VM) newInstance(class *value.Class) *value.Instance {
	i := value.NewInstance(class)
	vm.trackObject(i)
	return i
}

func (vm *VM) newBoundMethod(receiver value.Value, method *value.Closure) *value.BoundMethod {
	b := &value.BoundMethod{Receiver: receiver, Method: method}
	vm.trackObject(b)
	return b
}
