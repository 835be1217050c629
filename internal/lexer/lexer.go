// Package lexer converts wide-character source text into a stream of tokens.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/xirelogy/go-qi/internal/token"
)

// Lexer scans a rune stream and produces tokens on demand. It holds no
// buffered lookahead beyond the current and next rune, mirroring the
// start/current/line fields of the original scanner.
type Lexer struct {
	source  string
	start   int // byte offset of the token being scanned
	current int // byte offset of the next unread rune
	line    int
}

// New creates a Lexer over source. The returned Lexer borrows source for
// its entire lifetime; the caller must keep it alive until compilation
// finishes.
func New(source string) *Lexer {
	return &Lexer{source: source, line: 1}
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.source[l.current:])
	l.current += size
	return r
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.current:])
	return r
}

func (l *Lexer) peekNext() rune {
	if l.isAtEnd() {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.source[l.current:])
	if l.current+size >= len(l.source) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.current+size:])
	return r
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() || l.peek() != expected {
		return false
	}
	l.advance()
	return true
}

// isWidePunct reports whether r is classified as punctuation, honoring
// full-width forms (the language's delimiters live in the fullwidth block)
// that unicode.IsPunct alone can miss depending on Unicode version.
func isWidePunct(r rune) bool {
	if unicode.IsPunct(r) {
		return true
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianFullwidth, width.EastAsianHalfwidth, width.EastAsianAmbiguous:
		return unicode.IsPunct(r) || unicode.IsSymbol(r) && !unicode.IsDigit(r) && !isAlpha(r)
	}
	return false
}

// isAlpha mirrors the original isAlpha: a CJK ideograph that is not itself
// punctuation, or any character the host classifies as an alphabetic
// letter (covering non-Han alphabetic scripts).
func isAlpha(r rune) bool {
	if r >= 0x4E00 && r <= 0x2FA1F && !isWidePunct(r) {
		return true
	}
	return unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (l *Lexer) makeToken(typ token.Type) token.Token {
	return token.Token{Type: typ, Literal: l.source[l.start:l.current], Line: l.line}
}

func (l *Lexer) errorToken(message string) token.Token {
	return token.Token{Type: token.Error, Literal: message, Line: l.line}
}

func (l *Lexer) skipWhitespace() {
	for {
		switch c := l.peek(); c {
		case ' ', '\r', '\t':
			l.advance()
		case '\n':
			l.line++
			l.advance()
		case '/':
			if l.peekNext() == '/' {
				for l.peek() != '\n' && !l.isAtEnd() {
					l.advance()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) identifier() token.Token {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	tok := l.makeToken(token.Ident)
	tok.Type = token.LookupIdent(tok.Literal)
	return tok
}

func (l *Lexer) number() token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return l.makeToken(token.Number)
}

func (l *Lexer) string() token.Token {
	for l.peek() != '"' && !l.isAtEnd() {
		if l.peek() == '\n' {
			l.line++
		}
		l.advance()
	}
	if l.isAtEnd() {
		return l.errorToken("Unterminated string.")
	}
	l.advance() // closing quote
	return l.makeToken(token.String)
}

// NextToken scans and returns the next token, advancing the lexer.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()
	l.start = l.current

	if l.isAtEnd() {
		return l.makeToken(token.EOF)
	}

	c := l.advance()
	if isAlpha(c) {
		return l.identifier()
	}
	if isDigit(c) {
		return l.number()
	}

	switch c {
	case '（':
		return l.makeToken(token.LParen)
	case '）':
		return l.makeToken(token.RParen)
	case '『', '「':
		return l.makeToken(token.LBrace)
	case '』', '」':
		return l.makeToken(token.RBrace)
	case '；':
		return l.makeToken(token.Semicolon)
	case '，':
		return l.makeToken(token.Comma)
	case '。':
		return l.makeToken(token.Dot)
	case '-':
		switch {
		case l.match('='):
			return l.makeToken(token.MinusEqual)
		case l.match('-'):
			return l.makeToken(token.MinusMinus)
		default:
			return l.makeToken(token.Minus)
		}
	case '+':
		switch {
		case l.match('='):
			return l.makeToken(token.PlusEqual)
		case l.match('+'):
			return l.makeToken(token.PlusPlus)
		default:
			return l.makeToken(token.Plus)
		}
	case '/':
		return l.makeToken(token.Slash)
	case '*':
		return l.makeToken(token.Star)
	case '%':
		return l.makeToken(token.Percent)
	case '：':
		return l.makeToken(token.Colon)
	case '=':
		return l.makeToken(token.Assign)
	case '"':
		return l.string()
	case '【':
		return l.makeToken(token.LBracket)
	case '】':
		return l.makeToken(token.RBracket)
	case '<':
		return l.makeToken(token.Less)
	}

	return l.errorToken("Unexpected character.")
}
