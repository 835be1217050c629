// Package chunk provides tooling around value.Chunk: a human-readable
// disassembler and a binary encoder/decoder for the bytecode-persistence
// cache. It holds no data of its own — the Chunk and Function types live
// in package value, since Chunk and Function are mutually referential
// through the constant pool and Go does not allow that cycle to split
// across two packages.
package chunk

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xirelogy/go-qi/internal/opcode"
	"github.com/xirelogy/go-qi/internal/value"
)

// Disassembler formats a compiled Function (and any nested functions
// reachable through its constant pool) as a readable assembly-style dump.
type Disassembler struct {
	w       io.Writer
	visited map[*value.Function]bool
	printed bool
}

// NewDisassembler constructs a disassembler that writes to w.
func NewDisassembler(w io.Writer) *Disassembler {
	return &Disassembler{w: w, visited: make(map[*value.Function]bool)}
}

// DisassembleFunction emits a dump for fn and, recursively, for every
// Function reachable through its constant pool.
func (d *Disassembler) DisassembleFunction(label string, fn *value.Function) error {
	if fn == nil {
		return fmt.Errorf("nil function")
	}
	if d.visited[fn] {
		return nil
	}
	d.visited[fn] = true
	d.startSection()

	name := label
	if name == "" {
		name = fn.FunctionName()
	}
	fmt.Fprintf(d.w, "func %s (arity=%d, upvalues=%d)\n", name, fn.Arity, len(fn.Upvalues))
	if err := d.disassembleChunk(&fn.Chunk); err != nil {
		return err
	}
	for idx, c := range fn.Chunk.Consts {
		if !value.Is[*value.Function](c) {
			continue
		}
		child := value.As[*value.Function](c)
		childName := child.FunctionName()
		if childName == "" {
			childName = fmt.Sprintf("<fn@const:%d>", idx)
		}
		if err := d.DisassembleFunction(childName, child); err != nil {
			return err
		}
	}
	return nil
}

func (d *Disassembler) startSection() {
	if d.printed {
		fmt.Fprintln(d.w)
	}
	d.printed = true
}

func (d *Disassembler) disassembleChunk(c *value.Chunk) error {
	code := c.Code
	for ip := 0; ip < len(code); {
		offset := ip
		op := opcode.Code(code[ip])
		ip++
		line := c.LineForOffset(offset)
		lineStr := "-"
		if line > 0 {
			lineStr = strconv.Itoa(line)
		}
		operands, err := d.decodeOperands(op, c, &ip)
		if err != nil {
			return err
		}
		detail := strings.TrimSpace(operands)
		fmt.Fprintf(d.w, "%04d %4s %-16s", offset, lineStr, op.String())
		if detail != "" {
			fmt.Fprintf(d.w, " %s", detail)
		}
		fmt.Fprintln(d.w)
	}
	return nil
}

func readU8(code []byte, ip *int) uint8 {
	b := code[*ip]
	*ip++
	return b
}

func readU16(code []byte, ip *int) uint16 {
	hi := code[*ip]
	lo := code[*ip+1]
	*ip += 2
	return uint16(hi)<<8 | uint16(lo)
}

func (d *Disassembler) decodeOperands(op opcode.Code, c *value.Chunk, ip *int) (string, error) {
	code := c.Code
	switch op {
	case opcode.Constant, opcode.GetGlobal, opcode.DefineGlobal, opcode.SetGlobal,
		opcode.GetProperty, opcode.SetProperty, opcode.GetSuper, opcode.Class, opcode.Method:
		idx := readU8(code, ip)
		return fmt.Sprintf("%d ; %s", idx, formatConst(c, idx)), nil
	case opcode.GetLocal, opcode.SetLocal, opcode.GetUpvalue, opcode.SetUpvalue, opcode.Call:
		return fmt.Sprintf("%d", readU8(code, ip)), nil
	case opcode.Invoke, opcode.SuperInvoke:
		idx := readU8(code, ip)
		argc := readU8(code, ip)
		return fmt.Sprintf("%d %d ; %s", idx, argc, formatConst(c, idx)), nil
	case opcode.Jump, opcode.JumpIfFalse:
		off := readU16(code, ip)
		return fmt.Sprintf("-> %04d", *ip+int(off)), nil
	case opcode.Loop:
		off := readU16(code, ip)
		return fmt.Sprintf("-> %04d", *ip-int(off)), nil
	case opcode.Closure:
		idx := readU8(code, ip)
		fn, ok := constFunction(c, idx)
		out := fmt.Sprintf("%d ; %s", idx, formatConst(c, idx))
		if ok {
			for i := 0; i < len(fn.Upvalues); i++ {
				isLocal := readU8(code, ip)
				index := readU8(code, ip)
				kind := "upvalue"
				if isLocal != 0 {
					kind = "local"
				}
				out += fmt.Sprintf(" (%s %d)", kind, index)
			}
		}
		return out, nil
	default:
		return "", nil
	}
}

func constFunction(c *value.Chunk, idx uint8) (*value.Function, bool) {
	if int(idx) >= len(c.Consts) {
		return nil, false
	}
	v := c.Consts[idx]
	if !value.Is[*value.Function](v) {
		return nil, false
	}
	return value.As[*value.Function](v), true
}

func formatConst(c *value.Chunk, idx uint8) string {
	if int(idx) >= len(c.Consts) {
		return "?"
	}
	return c.Consts[idx].String()
}
