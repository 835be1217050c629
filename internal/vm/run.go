package vm

import (
	"fmt"
	"math"

	"github.com/xirelogy/go-qi/internal/opcode"
	"github.com/xirelogy/go-qi/internal/value"
)

// run is the fetch-decode-execute loop. It returns once the outermost
// CallFrame returns, or on the first runtime fault.
func (vm *VM) run() (value.Value, error) {
	fr := vm.currentFrame()

	for {
		if vm.cfg.InstructionLimit > 0 {
			vm.instCount++
			if vm.instCount > vm.cfg.InstructionLimit {
				return value.Nil, vm.runtimeError("Instruction limit exceeded.")
			}
		}

		op := opcode.Code(vm.readByte(fr))
		if vm.traceHook != nil {
			vm.traceHook(TraceInfo{
				Op:       op,
				Function: fr.closure.Fn.FunctionName(),
				Line:     fr.closure.Fn.Chunk.LineForOffset(fr.ip - 1),
			})
		}

		switch op {
		case opcode.Constant:
			if err := vm.push(vm.readConstant(fr)); err != nil {
				return value.Nil, err
			}

		case opcode.Nil:
			if err := vm.push(value.Nil); err != nil {
				return value.Nil, err
			}
		case opcode.True:
			if err := vm.push(value.Bool(true)); err != nil {
				return value.Nil, err
			}
		case opcode.False:
			if err := vm.push(value.Bool(false)); err != nil {
				return value.Nil, err
			}
		case opcode.Pop:
			vm.pop()

		case opcode.GetLocal:
			slot := vm.readByte(fr)
			if err := vm.push(vm.stack[fr.base+int(slot)]); err != nil {
				return value.Nil, err
			}
		case opcode.SetLocal:
			slot := vm.readByte(fr)
			vm.stack[fr.base+int(slot)] = vm.peek(0)

		case opcode.GetGlobal:
			name := vm.readString(fr)
			v, ok := vm.globals.Get(name.Chars)
			if !ok {
				return value.Nil, vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			if err := vm.push(v); err != nil {
				return value.Nil, err
			}
		case opcode.DefineGlobal:
			name := vm.readString(fr)
			vm.globals.Set(name.Chars, vm.peek(0))
			vm.pop()
		case opcode.SetGlobal:
			name := vm.readString(fr)
			if vm.globals.Set(name.Chars, vm.peek(0)) {
				vm.globals.Delete(name.Chars)
				return value.Nil, vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}

		case opcode.GetUpvalue:
			slot := vm.readByte(fr)
			if err := vm.push(fr.closure.Upvalues[slot].Get()); err != nil {
				return value.Nil, err
			}
		case opcode.SetUpvalue:
			slot := vm.readByte(fr)
			fr.closure.Upvalues[slot].Set(vm.peek(0))

		case opcode.GetProperty:
			if err := vm.execGetProperty(fr); err != nil {
				return value.Nil, err
			}
		case opcode.SetProperty:
			if err := vm.execSetProperty(fr); err != nil {
				return value.Nil, err
			}
		case opcode.GetSuper:
			name := vm.readString(fr)
			superclass := value.As[*value.Class](vm.pop())
			if err := vm.bindMethod(superclass, name); err != nil {
				return value.Nil, err
			}

		case opcode.Equal:
			b, a := vm.pop(), vm.pop()
			if err := vm.push(value.Bool(value.Equal(a, b))); err != nil {
				return value.Nil, err
			}
		case opcode.Greater, opcode.Less:
			if err := vm.execComparison(op); err != nil {
				return value.Nil, err
			}
		case opcode.Add:
			if err := vm.execAdd(); err != nil {
				return value.Nil, err
			}
		case opcode.Sub, opcode.Mul, opcode.Div, opcode.Mod:
			if err := vm.execArithmetic(op); err != nil {
				return value.Nil, err
			}
		case opcode.Negate:
			if !vm.peek(0).IsNumber() {
				return value.Nil, vm.runtimeError("Operand must be a number.")
			}
			if err := vm.push(value.Number(-vm.pop().AsNumber())); err != nil {
				return value.Nil, err
			}
		case opcode.Not:
			if err := vm.push(value.Bool(value.Falsey(vm.pop()))); err != nil {
				return value.Nil, err
			}

		case opcode.Print:
			fmt.Fprintln(vm.out, vm.pop().String())

		case opcode.Jump:
			offset := vm.readU16(fr)
			fr.ip += offset
		case opcode.JumpIfFalse:
			offset := vm.readU16(fr)
			if value.Falsey(vm.peek(0)) {
				fr.ip += offset
			}
		case opcode.Loop:
			offset := vm.readU16(fr)
			fr.ip -= offset

		case opcode.Call:
			argc := int(vm.readByte(fr))
			if err := vm.callValue(vm.peek(argc), argc); err != nil {
				return value.Nil, err
			}
			fr = vm.currentFrame()
		case opcode.Invoke:
			name := vm.readString(fr)
			argc := int(vm.readByte(fr))
			if err := vm.invoke(name, argc); err != nil {
				return value.Nil, err
			}
			fr = vm.currentFrame()
		case opcode.SuperInvoke:
			name := vm.readString(fr)
			argc := int(vm.readByte(fr))
			superclass := value.As[*value.Class](vm.pop())
			if err := vm.invokeFromClass(superclass, name, argc); err != nil {
				return value.Nil, err
			}
			fr = vm.currentFrame()

		case opcode.Closure:
			fn := value.As[*value.Function](vm.readConstant(fr))
			closure := vm.newClosure(fn)
			if err := vm.push(value.Obj(closure)); err != nil {
				return value.Nil, err
			}
			for i := range closure.Upvalues {
				isLocal := vm.readByte(fr)
				index := vm.readByte(fr)
				if isLocal == 1 {
					closure.Upvalues[i] = vm.captureUpvalue(&vm.stack[fr.base+int(index)])
				} else {
					closure.Upvalues[i] = fr.closure.Upvalues[index]
				}
			}
		case opcode.CloseUpvalue:
			vm.closeUpvalues(&vm.stack[len(vm.stack)-1])
			vm.pop()

		case opcode.Return:
			result := vm.pop()
			vm.closeUpvalues(&vm.stack[fr.base])
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				vm.pop() // the top-level script closure itself
				return result, nil
			}
			vm.stack = vm.stack[:fr.base]
			if err := vm.push(result); err != nil {
				return value.Nil, err
			}
			fr = vm.currentFrame()

		case opcode.Class:
			name := vm.readString(fr)
			if err := vm.push(value.Obj(vm.newClass(name))); err != nil {
				return value.Nil, err
			}
		case opcode.Inherit:
			superVal := vm.peek(1)
			superclass, ok := superVal.AsObject().(*value.Class)
			if !ok {
				return value.Nil, vm.runtimeError("Superclass must be a class.")
			}
			subclass := value.As[*value.Class](vm.peek(0))
			for name, method := range superclass.Methods {
				subclass.Methods[name] = method
			}
			vm.pop() // subclass
		case opcode.Method:
			name := vm.readString(fr)
			method := value.As[*value.Closure](vm.peek(0))
			class := value.As[*value.Class](vm.peek(1))
			class.Methods[name.Chars] = method
			vm.pop()

		default:
			return value.Nil, vm.runtimeError("Unknown opcode %d.", op)
		}
	}
}

func (vm *VM) execGetProperty(fr *CallFrame) error {
	name := vm.readString(fr)
	receiver := vm.peek(0)
	instance, ok := receiver.AsObject().(*value.Instance)
	if !receiver.IsObject() || !ok {
		return vm.runtimeError("Only instances have properties.")
	}
	if v, ok := instance.Fields[name.Chars]; ok {
		vm.pop()
		return vm.push(v)
	}
	return vm.bindMethod(instance.Class, name)
}

func (vm *VM) execSetProperty(fr *CallFrame) error {
	name := vm.readString(fr)
	receiver := vm.peek(1)
	instance, ok := receiver.AsObject().(*value.Instance)
	if !receiver.IsObject() || !ok {
		return vm.runtimeError("Only instances have fields.")
	}
	val := vm.pop()
	instance.Fields[name.Chars] = val
	vm.pop()
	return vm.push(val)
}

func (vm *VM) execComparison(op opcode.Code) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b, a := vm.pop().AsNumber(), vm.pop().AsNumber()
	if op == opcode.Greater {
		return vm.push(value.Bool(a > b))
	}
	return vm.push(value.Bool(a < b))
}

func (vm *VM) execAdd() error {
	b, a := vm.peek(0), vm.peek(1)
	switch {
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		return vm.push(value.Number(a.AsNumber() + b.AsNumber()))
	case value.Is[*value.String](a) && value.Is[*value.String](b):
		vm.pop()
		vm.pop()
		as := value.As[*value.String](a)
		bs := value.As[*value.String](b)
		return vm.push(value.Obj(vm.Intern(as.Chars + bs.Chars)))
	default:
		return vm.runtimeError("Operands must be two numbers or two strings.")
	}
}

func (vm *VM) execArithmetic(op opcode.Code) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b, a := vm.pop().AsNumber(), vm.pop().AsNumber()
	switch op {
	case opcode.Sub:
		return vm.push(value.Number(a - b))
	case opcode.Mul:
		return vm.push(value.Number(a * b))
	case opcode.Div:
		if b == 0 {
			return vm.runtimeError("Division by zero.")
		}
		return vm.push(value.Number(a / b))
	case opcode.Mod:
		if b == 0 {
			return vm.runtimeError("Division by zero.")
		}
		return vm.push(value.Number(math.Mod(a, b)))
	}
	return nil
}
