// Package qi is the embeddable entry point for the interpreter: a small
// bytecode compiler and stack-based VM for a CJK-lexeme scripting
// language. Most callers only need New, Interpret and Close; CompileToBytes
// and LoadCompiled exist for hosts that want to skip recompilation.
package qi

import (
	"github.com/xirelogy/go-qi/internal/config"
	"github.com/xirelogy/go-qi/internal/diag"
	"github.com/xirelogy/go-qi/internal/value"
	"github.com/xirelogy/go-qi/internal/vm"
)

// Config carries the interpreter's resource limits (frame/stack caps, GC
// growth, an optional instruction budget). Zero-value fields fall back to
// DefaultConfig's numbers.
type Config = vm.Config

// DefaultConfig returns the interpreter's built-in tunables.
func DefaultConfig() Config { return vm.DefaultConfig() }

// LoadConfig reads a TOML file shaped like:
//
//	[vm]
//	max_frames = 64
//	max_stack_slots = 16384
//
// filling any field the file omits from DefaultConfig.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// Logger receives structured records for compile warnings, runtime faults
// and GC cycles. diag.New wraps github.com/tliron/commonlog to build one.
type Logger = vm.Logger

// NewLogger returns a Logger backed by commonlog, named for the component
// emitting records under it (e.g. "vm", "compiler", "cmd/qi").
func NewLogger(name string) Logger { return diag.New(name) }

// SetVerboseLogging raises or lowers the process-wide log level for every
// Logger obtained from NewLogger.
func SetVerboseLogging(verbose bool) { diag.SetVerbose(verbose) }

// InterpretResult classifies how an Interpret call ended.
type InterpretResult = vm.InterpretResult

const (
	InterpretOK           = vm.InterpretOK
	InterpretCompileError = vm.InterpretCompileError
	InterpretRuntimeError = vm.InterpretRuntimeError
)

// RuntimeError is returned by Interpret for any fault raised while running
// bytecode (undefined global, type mismatch, stack overflow, and so on).
// It supports errors.As.
type RuntimeError = vm.RuntimeError

// CompiledProgram is the decoded form of a bytecode-persistence blob,
// ready to run with (*VM).RunCompiled.
type CompiledProgram = value.Function

// VM is a single-threaded, single-owner interpreter instance: one set of
// globals, one object heap, one string pool. It is not safe for concurrent
// use.
type VM struct {
	*vm.VM
}

// New constructs a VM using cfg (DefaultConfig() if the zero value) and
// logger (a no-op logger if nil).
func New(cfg Config, logger Logger) *VM {
	return &VM{VM: vm.New(cfg, logger)}
}
