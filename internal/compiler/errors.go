package compiler

import "fmt"

// Error is a single compile-time diagnostic, formatted the way the
// reference interpreter reports lexical/syntactic/static-semantic faults:
// "[line N] Error at '<lexeme>': <message>". Lexer-level faults (unterminated
// strings, unexpected characters) have no meaningful lexeme of their own —
// the message text already says what went wrong — so they omit the "at ..."
// clause entirely rather than repeating the message as a fake lexeme.
type Error struct {
	Line    int
	Lexeme  string
	NoAt    bool
	Message string
}

func (e *Error) Error() string {
	if e.NoAt {
		return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
	}
	where := e.Lexeme
	if where == "" {
		where = "end"
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Line, where, e.Message)
}

// Errors aggregates every diagnostic raised while compiling one program;
// the compiler keeps going in panic-mode recovery so it can report more
// than the first fault in one pass.
type Errors []*Error

func (es Errors) Error() string {
	if len(es) == 1 {
		return es[0].Error()
	}
	s := fmt.Sprintf("%d compile errors:", len(es))
	for _, e := range es {
		s += "\n  " + e.Error()
	}
	return s
}
