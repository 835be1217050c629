// Package compiler implements a single-pass, Pratt-style compiler: it
// consumes tokens directly from a lexer.Lexer and emits bytecode as it
// parses, with no intermediate abstract syntax tree.
package compiler

import (
	"strconv"

	"github.com/xirelogy/go-qi/internal/lexer"
	"github.com/xirelogy/go-qi/internal/opcode"
	"github.com/xirelogy/go-qi/internal/token"
	"github.com/xirelogy/go-qi/internal/value"
)

// initializerName is the reserved method name that marks a class
// initializer: calling the class itself invokes this method on the fresh
// instance, and RETURN inside it always yields the instance, not nil.
const initializerName = "初始化"

// thisName / superName are the synthetic identifiers bound to method
// receivers and captured superclasses respectively.
const thisName = "这"
const superName = "超"

// Interner resolves string content to a canonical, VM-wide *value.String,
// matching the invariant that equal string content is always one object.
type Interner interface {
	Intern(s string) *value.String
}

// Logger receives structured records for every reported compile error, in
// addition to the Errors value Compile returns to its caller.
type Logger interface {
	Warn(msg string, fields map[string]any)
}

// Compile compiles source into a top-level script Function. On success err
// is nil; on any compile-time fault, Compile keeps going in panic-mode
// recovery to collect as many diagnostics as it can, then returns a nil
// Function and an Errors value describing every fault found.
func Compile(source string, interner Interner, logger Logger) (*value.Function, error) {
	c := &Compiler{
		lex:      lexer.New(source),
		interner: interner,
		logger:   logger,
	}
	c.fc = newFuncCompiler(nil, kindScript, nil)

	c.advance()
	for !c.matchTok(token.EOF) {
		c.declaration()
	}
	fn := c.endCompiler()

	if c.hadError {
		return nil, c.errors
	}
	return fn, nil
}

// Compiler holds all single-pass parsing state: the token cursor, the
// stack of per-function compilers (funcCompiler.enclosing), and the stack
// of per-class compilers (classCompiler.enclosing).
type Compiler struct {
	lex      *lexer.Lexer
	interner Interner
	logger   Logger

	previous token.Token
	current  token.Token

	hadError  bool
	panicMode bool
	errors    Errors

	fc    *funcCompiler
	class *classCompiler
}

// ---- token cursor -------------------------------------------------------

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.lex.NextToken()
		if c.current.Type != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Literal)
	}
}

func (c *Compiler) check(t token.Type) bool {
	return c.current.Type == t
}

func (c *Compiler) matchTok(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t token.Type, msg string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

// ---- error reporting ----------------------------------------------------

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.previous, msg) }

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true
	lexeme := tok.Literal
	noAt := false
	if tok.Type == token.EOF {
		lexeme = ""
	}
	if tok.Type == token.Error {
		noAt = true
	}
	e := &Error{Line: tok.Line, Lexeme: lexeme, NoAt: noAt, Message: msg}
	c.errors = append(c.errors, e)
	if c.logger != nil {
		c.logger.Warn("compile error", map[string]any{
			"line":   tok.Line,
			"lexeme": lexeme,
			"message": msg,
		})
	}
}

// synchronize discards tokens until a plausible statement boundary, so one
// fault does not cascade into a wall of spurious follow-on errors.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != token.EOF {
		if c.previous.Type == token.Semicolon {
			return
		}
		switch c.current.Type {
		case token.Class, token.Fun, token.Var, token.For, token.If,
			token.While, token.Return, token.Switch:
			return
		}
		c.advance()
	}
}

// ---- emission helpers ----------------------------------------------------

func (c *Compiler) chunk() *value.Chunk { return &c.fc.fn.Chunk }

func (c *Compiler) emitByte(b byte) {
	c.chunk().Write(b, c.previous.Line)
}

func (c *Compiler) emitOp(op opcode.Code) { c.emitByte(byte(op)) }

func (c *Compiler) emitBytes(bs ...byte) {
	for _, b := range bs {
		c.emitByte(b)
	}
}

func (c *Compiler) emitOpByte(op opcode.Code, b byte) {
	c.emitByte(byte(op))
	c.emitByte(b)
}

func (c *Compiler) makeConstant(v value.Value) uint8 {
	idx, ok := c.chunk().AddConstant(v)
	if !ok {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return idx
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitOpByte(opcode.Constant, c.makeConstant(v))
}

func (c *Compiler) identifierConstant(tok token.Token) uint8 {
	return c.makeConstant(value.Obj(c.interner.Intern(tok.Literal)))
}

func (c *Compiler) emitJump(op opcode.Code) int {
	c.emitByte(byte(op))
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > 0xffff {
		c.error("Too much code to jump over.")
		return
	}
	code := c.chunk().Code
	code[offset] = byte(jump >> 8)
	code[offset+1] = byte(jump)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitByte(byte(opcode.Loop))
	offset := len(c.chunk().Code) - loopStart + 2
	if offset > 0xffff {
		c.error("Loop body too large.")
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}

func (c *Compiler) emitReturn() {
	if c.fc.kind == kindInitializer {
		c.emitOpByte(opcode.GetLocal, 0)
	} else {
		c.emitOp(opcode.Nil)
	}
	c.emitOp(opcode.Return)
}

func (c *Compiler) endCompiler() *value.Function {
	c.emitReturn()
	fn := c.fc.fn
	c.fc = c.fc.enclosing
	return fn
}

// ---- scope -----------------------------------------------------------

func (c *Compiler) beginScope() { c.fc.scopeDepth++ }

func (c *Compiler) endScope() {
	c.fc.scopeDepth--
	for len(c.fc.locals) > 0 && c.fc.locals[len(c.fc.locals)-1].depth > c.fc.scopeDepth {
		if c.fc.locals[len(c.fc.locals)-1].captured {
			c.emitOp(opcode.CloseUpvalue)
		} else {
			c.emitOp(opcode.Pop)
		}
		c.fc.locals = c.fc.locals[:len(c.fc.locals)-1]
	}
}

func (c *Compiler) declareVariable() {
	if c.fc.scopeDepth == 0 {
		return
	}
	name := c.previous.Literal
	for i := len(c.fc.locals) - 1; i >= 0; i-- {
		l := c.fc.locals[i]
		if l.depth != -1 && l.depth < c.fc.scopeDepth {
			break
		}
		if l.name == name {
			c.error("Already a variable with this name in this scope.")
		}
	}
	if !c.fc.addLocal(name) {
		c.error("Too many local variables in function.")
	}
}

func (c *Compiler) parseVariable(msg string) uint8 {
	c.consume(token.Ident, msg)
	c.declareVariable()
	if c.fc.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

func (c *Compiler) defineVariable(global uint8) {
	if c.fc.scopeDepth > 0 {
		c.fc.markInitialized()
		return
	}
	c.emitOpByte(opcode.DefineGlobal, global)
}

// ---- declarations & statements -------------------------------------------

func (c *Compiler) declaration() {
	switch {
	case c.matchTok(token.Class):
		c.classDeclaration()
	case c.matchTok(token.Fun):
		c.funDeclaration()
	case c.matchTok(token.Var):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) classDeclaration() {
	c.consume(token.Ident, "Expect class name.")
	classNameTok := c.previous
	nameConstant := c.identifierConstant(classNameTok)
	c.declareVariable()

	c.emitOpByte(opcode.Class, nameConstant)
	c.defineVariable(nameConstant)

	c.class = &classCompiler{enclosing: c.class}

	if c.matchTok(token.Less) {
		c.consume(token.Ident, "Expect superclass name.")
		superTok := c.previous
		c.namedVariable(superTok, false)
		if superTok.Literal == classNameTok.Literal {
			c.error("A class can't inherit from itself.")
		}
		c.beginScope()
		c.fc.addLocal(superName)
		c.fc.markInitialized()
		c.namedVariable(classNameTok, false)
		c.emitOp(opcode.Inherit)
		c.class.hasSuperclass = true
	}

	c.namedVariable(classNameTok, false)
	c.consume(token.LBrace, "Expect '{' before class body.")
	for !c.check(token.RBrace) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RBrace, "Expect '}' after class body.")
	c.emitOp(opcode.Pop)

	if c.class.hasSuperclass {
		c.endScope()
	}
	c.class = c.class.enclosing
}

func (c *Compiler) method() {
	c.consume(token.Ident, "Expect method name.")
	nameTok := c.previous
	nameConstant := c.identifierConstant(nameTok)

	kind := kindMethod
	if nameTok.Literal == initializerName {
		kind = kindInitializer
	}
	c.function(kind, c.interner.Intern(nameTok.Literal))
	c.emitOpByte(opcode.Method, nameConstant)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	name := c.previous
	c.fc.markInitialized()
	c.function(kindFunction, c.interner.Intern(name.Literal))
	c.defineVariable(global)
}

// function compiles one function body (top-level FUN, or a class method)
// into a fresh Function, pushes it as a constant of the enclosing chunk,
// and emits the CLOSURE opcode that turns it into a runtime closure.
func (c *Compiler) function(kind funcKind, name *value.String) {
	c.fc = newFuncCompiler(c.fc, kind, name)
	c.beginScope()

	c.consume(token.LParen, "Expect '(' after function name.")
	if !c.check(token.RParen) {
		for {
			c.fc.fn.Arity++
			if c.fc.fn.Arity > 255 {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConst := c.parseVariable("Expect parameter name.")
			c.defineVariable(paramConst)
			if !c.matchTok(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RParen, "Expect ')' after parameters.")
	c.consume(token.LBrace, "Expect '{' before function body.")
	c.block()

	inner := c.fc
	fn := c.endCompiler()
	idx := c.makeConstant(value.Obj(fn))
	c.emitOpByte(opcode.Closure, idx)
	for _, uv := range inner.upvalues {
		isLocal := byte(0)
		if uv.IsLocal {
			isLocal = 1
		}
		c.emitBytes(isLocal, uv.Index)
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.matchTok(token.Assign) {
		c.expression()
	} else {
		c.emitOp(opcode.Nil)
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) statement() {
	switch {
	case c.matchTok(token.Print):
		c.printStatement()
	case c.matchTok(token.For):
		c.forStatement()
	case c.matchTok(token.If):
		c.ifStatement()
	case c.matchTok(token.Return):
		c.returnStatement()
	case c.matchTok(token.While):
		c.whileStatement()
	case c.matchTok(token.Switch):
		c.switchStatement()
	case c.matchTok(token.Break):
		c.breakStatement()
	case c.matchTok(token.Continue):
		c.continueStatement()
	case c.matchTok(token.LBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RBrace) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBrace, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emitOp(opcode.Print)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after expression.")
	c.emitOp(opcode.Pop)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RParen, "Expect ')' after condition.")

	thenJump := c.emitJump(opcode.JumpIfFalse)
	c.emitOp(opcode.Pop)
	c.statement()

	elseJump := c.emitJump(opcode.Jump)
	c.patchJump(thenJump)
	c.emitOp(opcode.Pop)

	if c.matchTok(token.Else) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) pushLoop(loopStart int) {
	c.fc.loop = &loopContext{enclosing: c.fc.loop, loopStart: loopStart}
}

func (c *Compiler) popLoop() {
	loop := c.fc.loop
	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}
	c.fc.loop = loop.enclosing
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.chunk().Code)
	c.pushLoop(loopStart)

	c.consume(token.LParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RParen, "Expect ')' after condition.")

	exitJump := c.emitJump(opcode.JumpIfFalse)
	c.emitOp(opcode.Pop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(opcode.Pop)
	c.popLoop()
}

// forStatement desugars the C-style for-loop into initializer + condition
// jump + body + increment + LOOP, exactly the way the reference VM's
// opcode set expects; continue targets the increment clause (not the
// condition) so the increment always runs before the next test.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LParen, "Expect '(' after 'for'.")

	switch {
	case c.matchTok(token.Semicolon):
		// no initializer
	case c.matchTok(token.Var):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.chunk().Code)
	exitJump := -1
	if !c.check(token.Semicolon) {
		c.expression()
		c.consume(token.Semicolon, "Expect ';' after loop condition.")
		exitJump = c.emitJump(opcode.JumpIfFalse)
		c.emitOp(opcode.Pop)
	} else {
		c.consume(token.Semicolon, "Expect ';' after loop condition.")
	}

	if !c.check(token.RParen) {
		bodyJump := c.emitJump(opcode.Jump)
		incrementStart := len(c.chunk().Code)
		c.expression()
		c.emitOp(opcode.Pop)
		c.consume(token.RParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	} else {
		c.consume(token.RParen, "Expect ')' after for clauses.")
	}

	c.pushLoop(loopStart)
	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(opcode.Pop)
	}
	c.popLoop()
	c.endScope()
}

func (c *Compiler) switchStatement() {
	c.consume(token.LParen, "Expect '(' after 'switch'.")
	c.beginScope()
	c.expression()
	c.consume(token.RParen, "Expect ')' after switch subject.")
	c.fc.addLocal("")
	c.fc.markInitialized()
	subjectSlot := uint8(len(c.fc.locals) - 1)

	c.consume(token.LBrace, "Expect '{' before switch body.")

	var endJumps []int
	for c.matchTok(token.Case) {
		c.emitOpByte(opcode.GetLocal, subjectSlot)
		c.expression()
		c.consume(token.Colon, "Expect ':' after case value.")
		c.emitOp(opcode.Equal)
		nextCase := c.emitJump(opcode.JumpIfFalse)
		c.emitOp(opcode.Pop)
		for !c.check(token.Case) && !c.check(token.Default) && !c.check(token.RBrace) && !c.check(token.EOF) {
			c.declaration()
		}
		endJumps = append(endJumps, c.emitJump(opcode.Jump))
		c.patchJump(nextCase)
		c.emitOp(opcode.Pop)
	}
	if c.matchTok(token.Default) {
		c.consume(token.Colon, "Expect ':' after 'default'.")
		for !c.check(token.RBrace) && !c.check(token.EOF) {
			c.declaration()
		}
	}
	c.consume(token.RBrace, "Expect '}' after switch body.")
	for _, j := range endJumps {
		c.patchJump(j)
	}
	c.endScope()
}

func (c *Compiler) breakStatement() {
	c.consume(token.Semicolon, "Expect ';' after 'break'.")
	if c.fc.loop == nil {
		c.error("Can't use 'break' outside of a loop.")
		return
	}
	j := c.emitJump(opcode.Jump)
	c.fc.loop.breakJumps = append(c.fc.loop.breakJumps, j)
}

func (c *Compiler) continueStatement() {
	c.consume(token.Semicolon, "Expect ';' after 'continue'.")
	if c.fc.loop == nil {
		c.error("Can't use 'continue' outside of a loop.")
		return
	}
	c.emitLoop(c.fc.loop.loopStart)
}

func (c *Compiler) returnStatement() {
	if c.fc.kind == kindScript {
		c.error("Can't return from top-level code.")
	}
	if c.matchTok(token.Semicolon) {
		c.emitReturn()
		return
	}
	if c.fc.kind == kindInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after return value.")
	c.emitOp(opcode.Return)
}

// ---- expressions (Pratt parser) ------------------------------------------

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefix := getRule(c.previous.Type).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := prec <= PrecAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.current.Type).prec {
		c.advance()
		infix := getRule(c.previous.Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.matchTok(token.Assign) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(token.RParen, "Expect ')' after expression.")
}

func (c *Compiler) unary(_ bool) {
	opTok := c.previous.Type
	c.parsePrecedence(PrecUnary)
	switch opTok {
	case token.Minus:
		c.emitOp(opcode.Negate)
	case token.Bang:
		c.emitOp(opcode.Not)
	}
}

func (c *Compiler) binary(_ bool) {
	opTok := c.previous.Type
	rule := getRule(opTok)
	c.parsePrecedence(rule.prec + 1)
	switch opTok {
	case token.Plus:
		c.emitOp(opcode.Add)
	case token.Minus:
		c.emitOp(opcode.Sub)
	case token.Star:
		c.emitOp(opcode.Mul)
	case token.Slash:
		c.emitOp(opcode.Div)
	case token.Percent:
		c.emitOp(opcode.Mod)
	case token.EqualEqual:
		c.emitOp(opcode.Equal)
	case token.BangEqual:
		c.emitOp(opcode.Equal)
		c.emitOp(opcode.Not)
	case token.Greater:
		c.emitOp(opcode.Greater)
	case token.GreaterEqual:
		c.emitOp(opcode.Less)
		c.emitOp(opcode.Not)
	case token.Less:
		c.emitOp(opcode.Less)
	case token.LessEqual:
		c.emitOp(opcode.Greater)
		c.emitOp(opcode.Not)
	}
}

func (c *Compiler) number(_ bool) {
	n, _ := strconv.ParseFloat(c.previous.Literal, 64)
	c.emitConstant(value.Number(n))
}

func (c *Compiler) stringLiteral(_ bool) {
	raw := c.previous.Literal
	content := raw[1 : len(raw)-1] // strip the surrounding '"'; no escapes to unescape
	c.emitConstant(value.Obj(c.interner.Intern(content)))
}

func (c *Compiler) literal(_ bool) {
	switch c.previous.Type {
	case token.True:
		c.emitOp(opcode.True)
	case token.False:
		c.emitOp(opcode.False)
	case token.Nil:
		c.emitOp(opcode.Nil)
	}
}

func (c *Compiler) and_(_ bool) {
	endJump := c.emitJump(opcode.JumpIfFalse)
	c.emitOp(opcode.Pop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or_(_ bool) {
	elseJump := c.emitJump(opcode.JumpIfFalse)
	endJump := c.emitJump(opcode.Jump)
	c.patchJump(elseJump)
	c.emitOp(opcode.Pop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(_ bool) {
	argc := c.argumentList()
	c.emitOpByte(opcode.Call, argc)
}

func (c *Compiler) argumentList() uint8 {
	var argc int
	if !c.check(token.RParen) {
		for {
			c.expression()
			if argc == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			argc++
			if !c.matchTok(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RParen, "Expect ')' after arguments.")
	return uint8(argc)
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.Ident, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous)

	switch {
	case canAssign && c.matchTok(token.Assign):
		c.expression()
		c.emitOpByte(opcode.SetProperty, name)
	case canAssign && c.matchTok(token.PlusEqual):
		c.emitOpByte(opcode.GetProperty, name)
		c.expression()
		c.emitOp(opcode.Add)
		c.emitOpByte(opcode.SetProperty, name)
	case canAssign && c.matchTok(token.MinusEqual):
		c.emitOpByte(opcode.GetProperty, name)
		c.expression()
		c.emitOp(opcode.Sub)
		c.emitOpByte(opcode.SetProperty, name)
	case c.matchTok(token.LParen):
		argc := c.argumentList()
		c.emitOpByte(opcode.Invoke, name)
		c.emitByte(argc)
	default:
		c.emitOpByte(opcode.GetProperty, name)
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

func (c *Compiler) namedVariable(tok token.Token, canAssign bool) {
	var getOp, setOp opcode.Code
	var arg uint8

	if idx, ok := c.fc.resolveLocal(tok.Literal); ok {
		getOp, setOp, arg = opcode.GetLocal, opcode.SetLocal, uint8(idx)
	} else if idx, ok := c.fc.resolveUpvalue(c, tok.Literal); ok {
		getOp, setOp, arg = opcode.GetUpvalue, opcode.SetUpvalue, uint8(idx)
	} else {
		getOp, setOp, arg = opcode.GetGlobal, opcode.SetGlobal, c.identifierConstant(tok)
	}

	switch {
	case canAssign && c.matchTok(token.Assign):
		c.expression()
		c.emitOpByte(setOp, arg)
	case canAssign && c.matchTok(token.PlusEqual):
		c.emitOpByte(getOp, arg)
		c.expression()
		c.emitOp(opcode.Add)
		c.emitOpByte(setOp, arg)
	case canAssign && c.matchTok(token.MinusEqual):
		c.emitOpByte(getOp, arg)
		c.expression()
		c.emitOp(opcode.Sub)
		c.emitOpByte(setOp, arg)
	case canAssign && c.matchTok(token.PlusPlus):
		c.emitOpByte(getOp, arg)
		c.emitConstant(value.Number(1))
		c.emitOp(opcode.Add)
		c.emitOpByte(setOp, arg)
	case canAssign && c.matchTok(token.MinusMinus):
		c.emitOpByte(getOp, arg)
		c.emitConstant(value.Number(1))
		c.emitOp(opcode.Sub)
		c.emitOpByte(setOp, arg)
	default:
		c.emitOpByte(getOp, arg)
	}
}

func (c *Compiler) this_(_ bool) {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.namedVariable(token.Token{Type: token.This, Literal: thisName, Line: c.previous.Line}, false)
}

func (c *Compiler) super_(_ bool) {
	if c.class == nil {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.class.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}
	c.consume(token.Dot, "Expect '.' after 'super'.")
	c.consume(token.Ident, "Expect superclass method name.")
	name := c.identifierConstant(c.previous)

	thisTok := token.Token{Type: token.Ident, Literal: thisName, Line: c.previous.Line}
	superTok := token.Token{Type: token.Ident, Literal: superName, Line: c.previous.Line}

	c.namedVariable(thisTok, false)
	if c.matchTok(token.LParen) {
		argc := c.argumentList()
		c.namedVariable(superTok, false)
		c.emitOpByte(opcode.SuperInvoke, name)
		c.emitByte(argc)
	} else {
		c.namedVariable(superTok, false)
		c.emitOpByte(opcode.GetSuper, name)
	}
}
