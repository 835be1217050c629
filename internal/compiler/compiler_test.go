package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xirelogy/go-qi/internal/opcode"
	"github.com/xirelogy/go-qi/internal/value"
)

// fakeInterner is a minimal Interner that hands back one *value.String per
// distinct content string, without deduplication guarantees beyond a map
// (real interning correctness is exercised in package table).
type fakeInterner struct {
	pool map[string]*value.String
}

func newFakeInterner() *fakeInterner {
	return &fakeInterner{pool: make(map[string]*value.String)}
}

func (f *fakeInterner) Intern(s string) *value.String {
	if existing, ok := f.pool[s]; ok {
		return existing
	}
	str := &value.String{Chars: s, Hash: value.HashString(s)}
	f.pool[s] = str
	return str
}

// fakeLogger records every warning without printing anything.
type fakeLogger struct {
	records []map[string]any
}

func (f *fakeLogger) Warn(msg string, fields map[string]any) {
	f.records = append(f.records, fields)
}

func mustCompile(t *testing.T, src string) *value.Function {
	t.Helper()
	fn, err := Compile(src, newFakeInterner(), &fakeLogger{})
	require.NoError(t, err)
	require.NotNil(t, fn)
	return fn
}

func compileExpectError(t *testing.T, src string) error {
	t.Helper()
	fn, err := Compile(src, newFakeInterner(), &fakeLogger{})
	require.Error(t, err)
	require.Nil(t, fn)
	return err
}

func TestCompileArithmeticEmitsExpectedOpcodes(t *testing.T) {
	fn := mustCompile(t, `打印 1 + 2 * 3；`)
	code := fn.Chunk.Code
	require.NotEmpty(t, code)
	assert.Equal(t, byte(opcode.Constant), code[0])
	// The script chunk ends with the implicit NIL RETURN after the PRINT.
	require.GreaterOrEqual(t, len(code), 3)
	assert.Equal(t, byte(opcode.Print), code[len(code)-3])
	assert.Equal(t, byte(opcode.Return), code[len(code)-1])

	var hasAdd, hasMul bool
	for _, b := range code {
		if opcode.Code(b) == opcode.Add {
			hasAdd = true
		}
		if opcode.Code(b) == opcode.Mul {
			hasMul = true
		}
	}
	assert.True(t, hasAdd)
	assert.True(t, hasMul)
}

func TestCompileVarDeclarationDefinesGlobal(t *testing.T) {
	fn := mustCompile(t, `变量 甲 = 10；`)
	found := false
	for _, b := range fn.Chunk.Code {
		if opcode.Code(b) == opcode.DefineGlobal {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCompileFunctionEmitsClosure(t *testing.T) {
	fn := mustCompile(t, `功能 加（甲，乙）『 返回 甲 + 乙； 』`)
	found := false
	for _, b := range fn.Chunk.Code {
		if opcode.Code(b) == opcode.Closure {
			found = true
		}
	}
	assert.True(t, found, "expected a CLOSURE opcode for the function declaration")
}

func TestCompileIfElseEmitsJumps(t *testing.T) {
	fn := mustCompile(t, `如果 （真） 『 打印 1； 』 否则 『 打印 2； 』`)
	var hasJumpIfFalse, hasJump bool
	for _, b := range fn.Chunk.Code {
		switch opcode.Code(b) {
		case opcode.JumpIfFalse:
			hasJumpIfFalse = true
		case opcode.Jump:
			hasJump = true
		}
	}
	assert.True(t, hasJumpIfFalse)
	assert.True(t, hasJump)
}

func TestCompileWhileLoopEmitsLoop(t *testing.T) {
	fn := mustCompile(t, `变量 甲 = 真； 而 （甲） 『 打断； 』`)
	var hasLoop bool
	for _, b := range fn.Chunk.Code {
		if opcode.Code(b) == opcode.Loop {
			hasLoop = true
		}
	}
	assert.True(t, hasLoop)
}

func TestCompileForLoopWithContinueCompiles(t *testing.T) {
	src := `对于 （变量 甲 = 0； 甲 小 3； 甲++） 『 继续； 』`
	fn := mustCompile(t, src)
	assert.NotEmpty(t, fn.Chunk.Code)
}

func TestCompileClassWithInitializerAndMethod(t *testing.T) {
	src := `
类 甲 『
  初始化（值） 『 这。值 = 值； 』
  取值（） 『 返回 这。值； 』
』
`
	fn := mustCompile(t, src)
	var hasClass, hasMethod bool
	for _, b := range fn.Chunk.Code {
		switch opcode.Code(b) {
		case opcode.Class:
			hasClass = true
		case opcode.Method:
			hasMethod = true
		}
	}
	assert.True(t, hasClass)
	assert.True(t, hasMethod)
}

func TestCompileInheritanceEmitsInheritAndSuper(t *testing.T) {
	src := `
类 甲 『 取值（） 『 返回 1； 』 』
类 乙 < 甲 『 取值（） 『 返回 超。取值（） + 1； 』 』
`
	fn := mustCompile(t, src)
	// INHERIT lives in the script chunk; SUPER_INVOKE lives in the method's
	// own chunk, which is a function constant of the script chunk.
	codes := [][]byte{fn.Chunk.Code}
	for _, c := range fn.Chunk.Consts {
		if value.Is[*value.Function](c) {
			codes = append(codes, value.As[*value.Function](c).Chunk.Code)
		}
	}
	var hasInherit, hasSuperInvoke bool
	for _, code := range codes {
		for _, b := range code {
			switch opcode.Code(b) {
			case opcode.Inherit:
				hasInherit = true
			case opcode.SuperInvoke:
				hasSuperInvoke = true
			}
		}
	}
	assert.True(t, hasInherit)
	assert.True(t, hasSuperInvoke)
}

func TestCompileSwitchStatement(t *testing.T) {
	src := `
变量 甲 = 1；
切换 （甲） 『
  案例 1： 打印 一；
  预设： 打印 零；
』
`
	fn := mustCompile(t, src)
	assert.NotEmpty(t, fn.Chunk.Code)
}

func TestCompileReturnOutsideFunctionIsError(t *testing.T) {
	err := compileExpectError(t, `返回 1；`)
	var errs Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "top-level")
}

func TestCompileBreakOutsideLoopIsError(t *testing.T) {
	err := compileExpectError(t, `打断；`)
	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs[0].Message, "loop")
}

func TestCompileThisOutsideClassIsError(t *testing.T) {
	err := compileExpectError(t, `打印 这；`)
	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs[0].Message, "class")
}

func TestCompileTooManyConstantsIsError(t *testing.T) {
	var src string
	for i := 0; i < 257; i++ {
		src += `打印 "s"；`
	}
	err := compileExpectError(t, src)
	var errs Errors
	require.ErrorAs(t, err, &errs)
	found := false
	for _, e := range errs {
		if e.Message == "Too many constants in one chunk." {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCompileTooManyLocalsIsError(t *testing.T) {
	var body string
	for i := 0; i < 257; i++ {
		body += `变量 甲` + itoa(i) + `；`
	}
	src := `功能 甲（） 『 ` + body + ` 』`
	err := compileExpectError(t, src)
	var errs Errors
	require.ErrorAs(t, err, &errs)
	found := false
	for _, e := range errs {
		if e.Message == "Too many local variables in function." {
			found = true
		}
	}
	assert.True(t, found)
}

// TestCompileMaxUserLocalsIsFine fills a function body with as many
// user-declared locals as fit alongside its reserved slot 0 (256 total)
// without tripping the "too many locals" error.
func TestCompileMaxUserLocalsIsFine(t *testing.T) {
	var body string
	for i := 0; i < 255; i++ {
		body += `变量 甲` + itoa(i) + `；`
	}
	src := `功能 甲（） 『 ` + body + ` 』`
	fn := mustCompile(t, src)
	assert.NotEmpty(t, fn.Chunk.Code)
}

func TestCompileTooManyParametersIsError(t *testing.T) {
	var params string
	for i := 0; i < 256; i++ {
		if i > 0 {
			params += "，"
		}
		params += `甲` + itoa(i)
	}
	src := `功能 甲（` + params + `） 『 返回 1； 』`
	err := compileExpectError(t, src)
	var errs Errors
	require.ErrorAs(t, err, &errs)
	found := false
	for _, e := range errs {
		if e.Message == "Can't have more than 255 parameters." {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCompileTooManyArgumentsIsError(t *testing.T) {
	var args string
	for i := 0; i < 256; i++ {
		if i > 0 {
			args += "，"
		}
		// 真 compiles to TRUE with no constant-pool entry, so the
		// 256-constant limit is not reached before the argument limit.
		args += "真"
	}
	src := `功能 甲（） 『 返回 1； 』 甲（` + args + `）；`
	err := compileExpectError(t, src)
	var errs Errors
	require.ErrorAs(t, err, &errs)
	found := false
	for _, e := range errs {
		if e.Message == "Can't have more than 255 arguments." {
			found = true
		}
	}
	assert.True(t, found)
}

// TestCompileTooManyUpvaluesIsError captures 257 distinct names into one
// innermost function: 254 live as locals of the outermost function (which
// also needs one of its own local slots, alongside its reserved slot 0,
// to bind the middle function's own name) and 3 more live as locals of
// the middle function (which likewise needs one slot to bind the
// innermost function's name), so neither function's own local table ever
// overflows — only the innermost function's upvalue table does.
func TestCompileTooManyUpvaluesIsError(t *testing.T) {
	var outerLocals, middleLocals, reads string
	for i := 0; i < 254; i++ {
		outerLocals += `变量 甲` + itoa(i) + `；`
		reads += `打印 甲` + itoa(i) + `；`
	}
	for i := 0; i < 3; i++ {
		middleLocals += `变量 乙` + itoa(i) + `；`
		reads += `打印 乙` + itoa(i) + `；`
	}
	src := `功能 最外（） 『 ` + outerLocals + `
功能 中层（） 『 ` + middleLocals + `
功能 内层（） 『 ` + reads + ` 』
返回 内层； 』
返回 中层； 』`
	err := compileExpectError(t, src)
	var errs Errors
	require.ErrorAs(t, err, &errs)
	found := false
	for _, e := range errs {
		if e.Message == "Too many closure variables in function." {
			found = true
		}
	}
	assert.True(t, found)
}

// itoa avoids importing strconv into every call site above; ASCII digits are
// valid identifier continuation characters alongside the CJK letters.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := ""
	for i > 0 {
		digits = string(rune('0'+i%10)) + digits
		i /= 10
	}
	return digits
}

func TestCompileLexerErrorRendersWithoutRedundantLexeme(t *testing.T) {
	err := compileExpectError(t, `变量 甲 = "未闭合；`)
	var errs Errors
	require.ErrorAs(t, err, &errs)
	require.NotEmpty(t, errs)
	msg := errs[0].Error()
	assert.Contains(t, msg, "Unterminated string.")
	assert.NotContains(t, msg, "at '")
}

func TestCompileCollectsMultipleErrorsInOnePass(t *testing.T) {
	err := compileExpectError(t, `返回 1； 打断； 继续；`)
	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.GreaterOrEqual(t, len(errs), 3)
}
