// Package opcode enumerates the bytecode instruction set shared by the
// compiler, the VM, and the disassembler.
package opcode

// Code identifies a single bytecode instruction. Operands, when present,
// are encoded as one or more bytes immediately following the opcode byte.
type Code byte

const (
	Constant Code = iota
	Nil
	True
	False
	Pop
	_ // reserved: stack group padding

	GetLocal
	SetLocal
	GetGlobal
	DefineGlobal
	SetGlobal
	GetUpvalue
	SetUpvalue
	GetProperty
	SetProperty
	GetSuper
	_ // reserved: name-resolution group padding

	Equal
	Greater
	Less
	Add
	Sub
	Mul
	Div
	Mod
	Negate
	Not
	_ // reserved: operator group padding

	Print
	Jump
	JumpIfFalse
	Loop
	_ // reserved: control-flow group padding

	Call
	Invoke
	SuperInvoke
	Closure
	CloseUpvalue
	Return
	_ // reserved: call group padding

	Class
	Inherit
	Method
)

// Names maps each Code to its mnemonic, used by the disassembler and by
// diagnostic traces.
var Names = map[Code]string{
	Constant:     "CONSTANT",
	Nil:          "NIL",
	True:         "TRUE",
	False:        "FALSE",
	Pop:          "POP",
	GetLocal:     "GET_LOCAL",
	SetLocal:     "SET_LOCAL",
	GetGlobal:    "GET_GLOBAL",
	DefineGlobal: "DEFINE_GLOBAL",
	SetGlobal:    "SET_GLOBAL",
	GetUpvalue:   "GET_UPVALUE",
	SetUpvalue:   "SET_UPVALUE",
	GetProperty:  "GET_PROPERTY",
	SetProperty:  "SET_PROPERTY",
	GetSuper:     "GET_SUPER",
	Equal:        "EQUAL",
	Greater:      "GREATER",
	Less:         "LESS",
	Add:          "ADD",
	Sub:          "SUB",
	Mul:          "MUL",
	Div:          "DIV",
	Mod:          "MOD",
	Negate:       "NEGATE",
	Not:          "NOT",
	Print:        "PRINT",
	Jump:         "JUMP",
	JumpIfFalse:  "JUMP_IF_FALSE",
	Loop:         "LOOP",
	Call:         "CALL",
	Invoke:       "INVOKE",
	SuperInvoke:  "SUPER_INVOKE",
	Closure:      "CLOSURE",
	CloseUpvalue: "CLOSE_UPVALUE",
	Return:       "RETURN",
	Class:        "CLASS",
	Inherit:      "INHERIT",
	Method:       "METHOD",
}

func (c Code) String() string {
	if name, ok := Names[c]; ok {
		return name
	}
	return "UNKNOWN"
}
