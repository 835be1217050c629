// Package vm implements the stack-based bytecode interpreter: it executes
// the value.Function/value.Chunk produced by package compiler, managing the
// call-frame stack, the value stack, globals, upvalues and the object heap.
package vm

import (
	"io"
	"os"
	"time"

	"github.com/xirelogy/go-qi/internal/chunk"
	"github.com/xirelogy/go-qi/internal/compiler"
	"github.com/xirelogy/go-qi/internal/opcode"
	"github.com/xirelogy/go-qi/internal/table"
	"github.com/xirelogy/go-qi/internal/value"
)

// Config carries the tunables that would otherwise be process-wide magic
// numbers; see package config for how these are loaded from TOML.
type Config struct {
	MaxFrames          int
	MaxStackSlots      int
	GCGrowthFactor     float64
	InitialGCThreshold int
	InstructionLimit   int // 0 means unlimited
}

// DefaultConfig mirrors the reference interpreter's compiled-in constants.
func DefaultConfig() Config {
	return Config{
		MaxFrames:          64,
		MaxStackSlots:      64 * 256,
		GCGrowthFactor:     2.0,
		InitialGCThreshold: 1 << 20,
		InstructionLimit:   0,
	}
}

// Logger receives structured diagnostic records from both the compiler and
// the VM (compile warnings, runtime faults, GC cycles).
type Logger interface {
	Warn(msg string, fields map[string]any)
	Debug(msg string, fields map[string]any)
}

// nopLogger discards everything; used when the caller passes a nil Logger.
type nopLogger struct{}

func (nopLogger) Warn(string, map[string]any)  {}
func (nopLogger) Debug(string, map[string]any) {}

// CallFrame is one activation record: a closure, its instruction pointer,
// and the base index into vm.stack where its locals (and, for a method
// call, the receiver at slot 0) begin.
type CallFrame struct {
	closure *value.Closure
	ip      int
	base    int
}

// TraceInfo describes one instruction dispatch, for optional tracing.
type TraceInfo struct {
	Op       opcode.Code
	Function string
	Line     int
}

// TraceHook observes instruction dispatch; primarily a testing/debugging aid.
type TraceHook func(TraceInfo)

// InterpretResult classifies how an Interpret call ended.
type InterpretResult int

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

// VM is a single-threaded, single-owner bytecode interpreter. It is not
// safe for concurrent use; callers needing concurrency should serialize
// access the way the reference implementation's api.go does with its busy
// flag.
type VM struct {
	stack  []value.Value
	frames []CallFrame

	globals *table.Table[value.Value]
	strings *table.Strings

	openUpvalues *value.Upvalue // head of descending-address open list

	objects     value.Object // intrusive heap list, most-recent first
	objectCount int
	gcThreshold int

	cfg    Config
	logger Logger

	traceHook TraceHook
	instCount int

	initString *value.String
	busy       bool

	processStart time.Time

	out io.Writer
}

// New constructs a VM ready to Interpret source. cfg and logger may be
// zero-value/nil; sensible defaults are substituted.
func New(cfg Config, logger Logger) *VM {
	def := DefaultConfig()
	if cfg.MaxFrames == 0 {
		cfg.MaxFrames = def.MaxFrames
	}
	if cfg.MaxStackSlots == 0 {
		cfg.MaxStackSlots = def.MaxStackSlots
	}
	if cfg.GCGrowthFactor == 0 {
		cfg.GCGrowthFactor = def.GCGrowthFactor
	}
	if cfg.InitialGCThreshold == 0 {
		cfg.InitialGCThreshold = def.InitialGCThreshold
	}
	if logger == nil {
		logger = nopLogger{}
	}
	vm := &VM{
		stack:        make([]value.Value, 0, cfg.MaxStackSlots),
		frames:       make([]CallFrame, 0, cfg.MaxFrames),
		globals:      table.New[value.Value](),
		strings:      table.NewStrings(),
		cfg:          cfg,
		logger:       logger,
		gcThreshold:  cfg.InitialGCThreshold,
		processStart: time.Now(),
		out:          os.Stdout,
	}
	vm.initString = vm.Intern("初始化")
	vm.defineNative("clock", 0, vm.nativeClock)
	return vm
}

// SetTraceHook registers a callback invoked before every instruction.
func (vm *VM) SetTraceHook(h TraceHook) { vm.traceHook = h }

// SetOutput redirects PRINT statements away from os.Stdout, primarily for
// tests that need to capture interpreter output.
func (vm *VM) SetOutput(w io.Writer) { vm.out = w }

// Intern implements compiler.Interner, so the same VM-owned pool backs both
// compile-time string constants and runtime-constructed strings.
func (vm *VM) Intern(s string) *value.String { return vm.strings.Intern(s) }

// Warn implements compiler.Logger by forwarding to the VM's own Logger.
func (vm *VM) Warn(msg string, fields map[string]any) { vm.logger.Warn(msg, fields) }

// Interpret compiles and runs source against this VM's persistent global
// state (a second call sees globals defined by the first).
func (vm *VM) Interpret(source string) (InterpretResult, error) {
	if vm.busy {
		return InterpretRuntimeError, errBusy
	}
	vm.busy = true
	defer func() { vm.busy = false }()

	fn, err := compiler.Compile(source, vm, vm)
	if err != nil {
		return InterpretCompileError, err
	}

	closure := value.NewClosure(fn)
	vm.trackObject(closure)
	vm.resetStack()
	if err := vm.push(value.Obj(closure)); err != nil {
		return InterpretRuntimeError, err
	}
	if err := vm.callClosure(closure, 0); err != nil {
		return InterpretRuntimeError, err
	}
	if _, err := vm.run(); err != nil {
		return InterpretRuntimeError, err
	}
	return InterpretOK, nil
}

// CompileToBytes compiles source without running it and serializes the
// resulting top-level function into the bytecode-persistence cache format,
// for callers that want to skip recompilation on a later run.
func (vm *VM) CompileToBytes(source string) ([]byte, error) {
	fn, err := compiler.Compile(source, vm, vm)
	if err != nil {
		return nil, err
	}
	return chunk.Encode(fn)
}

// LoadCompiled decodes a byte stream previously produced by CompileToBytes,
// interning every embedded string constant through this VM's pool so the
// loaded program shares string identity with anything else the VM runs.
func (vm *VM) LoadCompiled(data []byte) (*value.Function, error) {
	return chunk.Decode(data, vm)
}

// RunCompiled executes a Function previously produced by Compile or
// LoadCompiled against this VM's persistent global state.
func (vm *VM) RunCompiled(fn *value.Function) (InterpretResult, error) {
	if vm.busy {
		return InterpretRuntimeError, errBusy
	}
	vm.busy = true
	defer func() { vm.busy = false }()

	closure := value.NewClosure(fn)
	vm.trackObject(closure)
	vm.resetStack()
	if err := vm.push(value.Obj(closure)); err != nil {
		return InterpretRuntimeError, err
	}
	if err := vm.callClosure(closure, 0); err != nil {
		return InterpretRuntimeError, err
	}
	if _, err := vm.run(); err != nil {
		return InterpretRuntimeError, err
	}
	return InterpretOK, nil
}

// Close releases the VM's resources. The Go implementation's objects are
// reclaimed by the host garbage collector once unreferenced; Close drops
// the VM's own references (stack, frames, globals, heap list, string
// pool) so nothing keeps them alive, and makes the VM unusable afterward.
func (vm *VM) Close() {
	vm.resetStack()
	vm.globals = table.New[value.Value]()
	vm.strings = table.NewStrings()
	vm.objects = nil
	vm.objectCount = 0
	vm.initString = nil
}

func (vm *VM) resetStack() {
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	vm.openUpvalues = nil
	vm.instCount = 0
}

// ---- stack primitives -----------------------------------------------------

func (vm *VM) push(v value.Value) error {
	if len(vm.stack) >= vm.cfg.MaxStackSlots {
		return vm.runtimeError("Stack overflow.")
	}
	vm.stack = append(vm.stack, v)
	return nil
}

func (vm *VM) pop() value.Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[len(vm.stack)-1-distance]
}

func (vm *VM) currentFrame() *CallFrame { return &vm.frames[len(vm.frames)-1] }

func (vm *VM) readByte(fr *CallFrame) byte {
	b := fr.closure.Fn.Chunk.Code[fr.ip]
	fr.ip++
	return b
}

func (vm *VM) readU16(fr *CallFrame) int {
	hi := fr.closure.Fn.Chunk.Code[fr.ip]
	lo := fr.closure.Fn.Chunk.Code[fr.ip+1]
	fr.ip += 2
	return int(hi)<<8 | int(lo)
}

func (vm *VM) readConstant(fr *CallFrame) value.Value {
	idx := vm.readByte(fr)
	return fr.closure.Fn.Chunk.Consts[idx]
}

func (vm *VM) readString(fr *CallFrame) *value.String {
	return value.As[*value.String](vm.readConstant(fr))
}
