package chunk

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/xirelogy/go-qi/internal/value"
)

// Interner resolves string content to the VM's canonical interned
// *value.String, so a decoded program shares string identity with
// everything the VM already knows about (matching the invariant that
// equal string content is always the same object).
type Interner interface {
	Intern(s string) *value.String
}

// wireValue mirrors value.Value for CBOR encoding. Only the constant-pool
// value kinds that can legally appear in a compiled chunk are supported:
// nil, bool, number, string, and nested function prototypes (closures
// created from CLOSURE reference these by constant index, not by value).
type wireValue struct {
	Kind  uint8 `cbor:"0,keyasint"`
	Num   float64 `cbor:"1,keyasint"`
	Str   string  `cbor:"2,keyasint"`
	Fn    *wireFunction `cbor:"3,keyasint,omitempty"`
}

const (
	wireNil uint8 = iota
	wireBool
	wireNumber
	wireString
	wireFn
)

type wireLine struct {
	Offset int `cbor:"0,keyasint"`
	Line   int `cbor:"1,keyasint"`
}

type wireUpvalue struct {
	IsLocal bool  `cbor:"0,keyasint"`
	Index   uint8 `cbor:"1,keyasint"`
}

type wireChunk struct {
	Code   []byte      `cbor:"0,keyasint"`
	Consts []wireValue `cbor:"1,keyasint"`
	Lines  []wireLine  `cbor:"2,keyasint"`
}

type wireFunction struct {
	HasName  bool        `cbor:"0,keyasint"`
	Name     string      `cbor:"1,keyasint"`
	Arity    int         `cbor:"2,keyasint"`
	IsInit   bool        `cbor:"3,keyasint"`
	Chunk    wireChunk   `cbor:"4,keyasint"`
	Upvalues []wireUpvalue `cbor:"5,keyasint"`
}

// Encode serializes fn (the top-level script function) and everything it
// transitively references into a portable byte stream, for the compiled
// bytecode cache described by the module's persistence component.
func Encode(fn *value.Function) ([]byte, error) {
	return cbor.Marshal(toWireFunction(fn))
}

// Decode reconstructs a Function graph previously produced by Encode,
// interning every string constant (including function names) through
// interner so identity equality holds against the rest of the VM's state.
func Decode(data []byte, interner Interner) (*value.Function, error) {
	var wf wireFunction
	if err := cbor.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("chunk: decode: %w", err)
	}
	return fromWireFunction(&wf, interner), nil
}

func toWireValue(v value.Value) wireValue {
	switch {
	case v.IsNil():
		return wireValue{Kind: wireNil}
	case v.IsBool():
		return wireValue{Kind: wireBool, Num: boolToFloat(v.AsBool())}
	case v.IsNumber():
		return wireValue{Kind: wireNumber, Num: v.AsNumber()}
	case value.Is[*value.String](v):
		return wireValue{Kind: wireString, Str: value.As[*value.String](v).Chars}
	case value.Is[*value.Function](v):
		return wireValue{Kind: wireFn, Fn: toWireFunction(value.As[*value.Function](v))}
	default:
		// Only literal constants ever reach the pool at compile time;
		// closures, classes, and instances are runtime-only.
		return wireValue{Kind: wireNil}
	}
}

func fromWireValue(wv wireValue, interner Interner) value.Value {
	switch wv.Kind {
	case wireBool:
		return value.Bool(wv.Num != 0)
	case wireNumber:
		return value.Number(wv.Num)
	case wireString:
		return value.Obj(interner.Intern(wv.Str))
	case wireFn:
		return value.Obj(fromWireFunction(wv.Fn, interner))
	default:
		return value.Nil
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func toWireFunction(fn *value.Function) *wireFunction {
	wf := &wireFunction{
		Arity:  fn.Arity,
		IsInit: fn.IsInit,
		Chunk: wireChunk{
			Code: fn.Chunk.Code,
		},
	}
	if fn.Name != nil {
		wf.HasName = true
		wf.Name = fn.Name.Chars
	}
	for _, c := range fn.Chunk.Consts {
		wf.Chunk.Consts = append(wf.Chunk.Consts, toWireValue(c))
	}
	for _, li := range fn.Chunk.Lines {
		wf.Chunk.Lines = append(wf.Chunk.Lines, wireLine{Offset: li.Offset, Line: li.Line})
	}
	for _, uv := range fn.Upvalues {
		wf.Upvalues = append(wf.Upvalues, wireUpvalue{IsLocal: uv.IsLocal, Index: uv.Index})
	}
	return wf
}

func fromWireFunction(wf *wireFunction, interner Interner) *value.Function {
	fn := &value.Function{
		Arity:  wf.Arity,
		IsInit: wf.IsInit,
	}
	if wf.HasName {
		fn.Name = interner.Intern(wf.Name)
	}
	fn.Chunk.Code = wf.Chunk.Code
	for _, wv := range wf.Chunk.Consts {
		fn.Chunk.Consts = append(fn.Chunk.Consts, fromWireValue(wv, interner))
	}
	for _, li := range wf.Chunk.Lines {
		fn.Chunk.Lines = append(fn.Chunk.Lines, value.LineInfo{Offset: li.Offset, Line: li.Line})
	}
	for _, uv := range wf.Upvalues {
		fn.Upvalues = append(fn.Upvalues, value.UpvalueDesc{IsLocal: uv.IsLocal, Index: uv.Index})
	}
	return fn
}
