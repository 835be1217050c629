package vm

import "github.com/xirelogy/go-qi/internal/value"

// callValue dispatches a CALL instruction: callee has already been pushed
// below its argc arguments on the stack. It returns an error only for a
// fault (wrong arity, uncallable type); on success the call either
// executed a native immediately (result already on the stack in callee's
// old slot) or pushed a new CallFrame for the run loop to continue into.
func (vm *VM) callValue(callee value.Value, argc int) error {
	if !callee.IsObject() {
		return vm.runtimeError("Can only call functions and classes.")
	}
	switch obj := callee.AsObject().(type) {
	case *value.Closure:
		return vm.callClosure(obj, argc)
	case *value.NativeFunction:
		return vm.callNative(obj, argc)
	case *value.Class:
		instance := vm.newInstance(obj)
		vm.stack[len(vm.stack)-argc-1] = value.Obj(instance)
		if init, ok := obj.Methods[vm.initString.Chars]; ok {
			return vm.callClosure(init, argc)
		}
		if argc != 0 {
			return vm.runtimeError("Expected 0 arguments but got %d.", argc)
		}
		return nil
	case *value.BoundMethod:
		vm.stack[len(vm.stack)-argc-1] = obj.Receiver
		return vm.callClosure(obj.Method, argc)
	default:
		return vm.runtimeError("Can only call functions and classes.")
	}
}

func (vm *VM) callClosure(closure *value.Closure, argc int) error {
	if argc != closure.Fn.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", closure.Fn.Arity, argc)
	}
	if len(vm.frames) >= vm.cfg.MaxFrames {
		return vm.runtimeError("Stack overflow.")
	}
	vm.frames = append(vm.frames, CallFrame{
		closure: closure,
		ip:      0,
		base:    len(vm.stack) - argc - 1,
	})
	return nil
}

func (vm *VM) callNative(native *value.NativeFunction, argc int) error {
	if argc != native.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", native.Arity, argc)
	}
	args := vm.stack[len(vm.stack)-argc:]
	result, err := native.Fn(args)
	if err != nil {
		return vm.runtimeError("%s", err.Error())
	}
	vm.stack = vm.stack[:len(vm.stack)-argc-1]
	return vm.push(result)
}

// invoke resolves and calls a method by name directly off an instance,
// fusing what would otherwise be GET_PROPERTY + CALL into one instruction.
func (vm *VM) invoke(name *value.String, argc int) error {
	receiver := vm.peek(argc)
	if !receiver.IsObject() {
		return vm.runtimeError("Only instances have methods.")
	}
	instance, ok := receiver.AsObject().(*value.Instance)
	if !ok {
		return vm.runtimeError("Only instances have methods.")
	}
	if field, ok := instance.Fields[name.Chars]; ok {
		vm.stack[len(vm.stack)-argc-1] = field
		return vm.callValue(field, argc)
	}
	return vm.invokeFromClass(instance.Class, name, argc)
}

func (vm *VM) invokeFromClass(class *value.Class, name *value.String, argc int) error {
	method, ok := class.Methods[name.Chars]
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Chars)
	}
	return vm.callClosure(method, argc)
}

// bindMethod resolves name on class, wraps it with the current receiver
// (already on the stack top) as a BoundMethod, and replaces the receiver
// with the bound method.
func (vm *VM) bindMethod(class *value.Class, name *value.String) error {
	method, ok := class.Methods[name.Chars]
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Chars)
	}
	bound := vm.newBoundMethod(vm.peek(0), method)
	vm.pop()
	return vm.push(value.Obj(bound))
}
