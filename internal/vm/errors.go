package vm

import (
	"errors"
	"fmt"
	"strings"
)

// errBusy is returned by Interpret when called re-entrantly on a VM that is
// already running (this VM is single-owner, not reentrant).
var errBusy = errors.New("vm: interpreter is already running")

// FrameInfo captures one call frame at the moment a RuntimeError was raised,
// used to render the reference interpreter's "[line N] in <fn>" stack trace.
type FrameInfo struct {
	Function string
	Line     int
}

// RuntimeError is returned by Interpret for any fault raised while
// executing bytecode: an undefined global, a type mismatch, stack overflow,
// and so on. It satisfies errors.Is/errors.As against itself.
type RuntimeError struct {
	Message string
	Frames  []FrameInfo // innermost first
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, fr := range e.Frames {
		b.WriteString("\n[line ")
		fmt.Fprintf(&b, "%d", fr.Line)
		b.WriteString("] in ")
		b.WriteString(fr.Function)
	}
	return b.String()
}

// runtimeError builds a RuntimeError from the current frame stack, in the
// same top-to-bottom order the reference interpreter prints (deepest call
// first), then unwinds vm's stack so the VM is left in a clean state.
func (vm *VM) runtimeError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	frames := make([]FrameInfo, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		line := fr.closure.Fn.Chunk.LineForOffset(fr.ip - 1)
		frames = append(frames, FrameInfo{Function: fr.closure.Fn.FunctionName(), Line: line})
	}
	err := &RuntimeError{Message: msg, Frames: frames}
	vm.logger.Warn("runtime error", map[string]any{"message": msg})
	vm.resetStack()
	return err
}
