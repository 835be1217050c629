package vm

import "github.com/xirelogy/go-qi/internal/value"

// nativeClock is the language's sole built-in outside its syntax: it
// returns a monotonic-ish seconds count for measuring elapsed time, backed
// by the host clock rather than anything observable/scriptable. It closes
// over vm so the baseline is per-instance rather than shared process-wide.
func (vm *VM) nativeClock(args []value.Value) (value.Value, error) {
	return value.Number(vm.nowSeconds()), nil
}

// defineNative installs a host function as a global callable.
func (vm *VM) defineNative(name string, arity int, fn value.NativeFn) {
	native := &value.NativeFunction{Name: name, Arity: arity, Fn: fn}
	vm.trackObject(native)
	vm.globals.Set(name, value.Obj(native))
}
