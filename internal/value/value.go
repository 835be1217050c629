// Package value defines the runtime value representation and the
// heap-allocated object variants shared by the compiler and the VM.
package value

import (
	"fmt"
	"math"
)

// Kind tags the variant carried by a Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObject
)

// Value is a tagged union of {nil, boolean, double, heap object pointer}.
// It is deliberately a small flat struct rather than an interface so that
// pushing/popping the VM's value stack never allocates.
type Value struct {
	kind Kind
	num  float64
	obj  Object
}

// Object is implemented by every heap-allocated variant (String, Function,
// NativeFunction, Closure, Upvalue, Class, Instance, BoundMethod). Objects
// are linked into a single intrusive list by the heap for sweeping; see
// gc.go in package vm.
type Object interface {
	objectMarker()
	// Next/SetNext thread the object into the heap's intrusive list.
	Next() Object
	SetNext(Object)
	// Marked/SetMarked hold the mark bit used by mark-and-sweep.
	Marked() bool
	SetMarked(bool)
	String() string
}

// header is embedded by every Object implementation to supply the
// intrusive-list link and the GC mark bit without repeating boilerplate.
type header struct {
	next   Object
	marked bool
}

func (h *header) objectMarker()     {}
func (h *header) Next() Object      { return h.next }
func (h *header) SetNext(o Object)  { h.next = o }
func (h *header) Marked() bool      { return h.marked }
func (h *header) SetMarked(m bool)  { h.marked = m }

// Nil is the singular nil value.
var Nil = Value{kind: KindNil}

func Bool(b bool) Value          { return Value{kind: KindBool, num: boolToFloat(b)} }
func Number(n float64) Value     { return Value{kind: KindNumber, num: n} }
func Obj(o Object) Value         { return Value{kind: KindObject, obj: o} }

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObject() bool { return v.kind == KindObject }

func (v Value) AsBool() bool      { return v.num != 0 }
func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsObject() Object  { return v.obj }

// Is reports whether v holds an object whose dynamic type is the type
// parameter T, e.g. value.Is[*String](v).
func Is[T Object](v Value) bool {
	if v.kind != KindObject {
		return false
	}
	_, ok := v.obj.(T)
	return ok
}

// As type-asserts v's object payload, panicking if the kind is wrong. Call
// sites are expected to have already checked with Is.
func As[T Object](v Value) T {
	return v.obj.(T)
}

// Falsey implements the language's truthiness rule: nil and false are
// falsey, everything else (including 0 and "") is truthy.
func Falsey(v Value) bool {
	return v.IsNil() || (v.IsBool() && !v.AsBool())
}

// Equal implements value equality: nil=nil, booleans/numbers by value,
// objects by identity except interned strings, whose identity equality is
// established by the intern pool (see package table) rather than here.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool, KindNumber:
		return a.num == b.num
	case KindObject:
		if as, ok := a.obj.(*String); ok {
			bs, ok := b.obj.(*String)
			return ok && as == bs
		}
		return a.obj == b.obj
	default:
		return false
	}
}

// TypeName returns the language-level type name used in diagnostics.
func TypeName(v Value) string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindObject:
		switch v.obj.(type) {
		case *String:
			return "string"
		case *Function:
			return "function"
		case *NativeFunction:
			return "native function"
		case *Closure:
			return "closure"
		case *Class:
			return "class"
		case *Instance:
			return "instance"
		case *BoundMethod:
			return "bound method"
		}
	}
	return "value"
}

// String renders v the way the PRINT opcode and diagnostics format it.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "空"
	case KindBool:
		if v.AsBool() {
			return "真"
		}
		return "假"
	case KindNumber:
		return formatNumber(v.num)
	case KindObject:
		return v.obj.String()
	}
	return "?"
}

func formatNumber(n float64) string {
	if math.IsInf(n, 1) {
		return "inf"
	}
	if math.IsInf(n, -1) {
		return "-inf"
	}
	if math.IsNaN(n) {
		return "nan"
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}
