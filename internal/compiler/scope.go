package compiler

import "github.com/xirelogy/go-qi/internal/value"

// funcKind distinguishes the four contexts a function body can compile in;
// it governs slot-0 binding and whether a bare RETURN is legal.
type funcKind int

const (
	kindScript funcKind = iota
	kindFunction
	kindMethod
	kindInitializer
)

const maxLocals = 256
const maxUpvalues = 256

type local struct {
	name     string
	depth    int // -1 while the declaring VAR statement's initializer is still compiling
	captured bool
}

// funcCompiler tracks the compilation state of one function body. Bodies
// nest lexically (a function expression inside another function), so
// funcCompilers form a stack via enclosing, exactly mirroring the call
// stack that will exist at runtime.
type funcCompiler struct {
	enclosing *funcCompiler
	fn        *value.Function
	kind      funcKind

	locals     []local
	upvalues   []value.UpvalueDesc
	scopeDepth int

	loop *loopContext
}

// loopContext tracks the innermost enclosing loop's compile-time state, so
// BREAK/CONTINUE know where to jump.
type loopContext struct {
	enclosing  *loopContext
	loopStart  int
	breakJumps []int
}

func newFuncCompiler(enclosing *funcCompiler, kind funcKind, name *value.String) *funcCompiler {
	fc := &funcCompiler{
		enclosing: enclosing,
		fn:        &value.Function{Name: name, IsInit: kind == kindInitializer},
		kind:      kind,
	}
	// Slot 0 is reserved: "this" for methods/initializers, otherwise an
	// unnamed placeholder that user code can never reference by name.
	slotName := ""
	if kind == kindMethod || kind == kindInitializer {
		slotName = "这"
	}
	fc.locals = append(fc.locals, local{name: slotName, depth: 0})
	return fc
}

func (fc *funcCompiler) addLocal(name string) bool {
	if len(fc.locals) >= maxLocals {
		return false
	}
	fc.locals = append(fc.locals, local{name: name, depth: -1})
	return true
}

func (fc *funcCompiler) markInitialized() {
	if fc.scopeDepth == 0 {
		return
	}
	fc.locals[len(fc.locals)-1].depth = fc.scopeDepth
}

// resolveLocal finds name among the function's own locals, searching
// innermost-declared first so shadowing works.
func (fc *funcCompiler) resolveLocal(name string) (int, bool) {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		if fc.locals[i].name == name {
			return i, true
		}
	}
	return -1, false
}

// resolveUpvalue implements the scope-resolution algorithm: a name not
// found as a local in fc is looked for as a local in the enclosing
// function (capturing it there and adding a local-upvalue here), or as an
// upvalue in the enclosing function (adding a non-local upvalue here that
// forwards the enclosing closure's own upvalue slot).
func (fc *funcCompiler) resolveUpvalue(c *Compiler, name string) (int, bool) {
	if fc.enclosing == nil {
		return -1, false
	}
	if idx, ok := fc.enclosing.resolveLocal(name); ok {
		fc.enclosing.locals[idx].captured = true
		return fc.addUpvalue(c, uint8(idx), true), true
	}
	if idx, ok := fc.enclosing.resolveUpvalue(c, name); ok {
		return fc.addUpvalue(c, uint8(idx), false), true
	}
	return -1, false
}

func (fc *funcCompiler) addUpvalue(c *Compiler, index uint8, isLocal bool) int {
	for i, uv := range fc.upvalues {
		if uv.Index == index && uv.IsLocal == isLocal {
			return i
		}
	}
	if len(fc.upvalues) >= maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	fc.upvalues = append(fc.upvalues, value.UpvalueDesc{IsLocal: isLocal, Index: index})
	fc.fn.Upvalues = fc.upvalues
	return len(fc.upvalues) - 1
}

// classCompiler stacks per-class compile-time state so nested class
// declarations (a class declared inside a method body) resolve `super`
// against the innermost enclosing class only.
type classCompiler struct {
	enclosing     *classCompiler
	hasSuperclass bool
}
