package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xirelogy/go-qi/internal/lexer"
	"github.com/xirelogy/go-qi/internal/token"
)

func collect(src string) []token.Token {
	l := lexer.New(src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF || tok.Type == token.Error {
			break
		}
	}
	return toks
}

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestLexerFunctionDeclaration(t *testing.T) {
	toks := collect(`功能 加（甲，乙） 『 返回 甲 + 乙； 』`)
	assert.Equal(t, []token.Type{
		token.Fun, token.Ident, token.LParen, token.Ident, token.Comma, token.Ident, token.RParen,
		token.LBrace, token.Return, token.Ident, token.Plus, token.Ident, token.Semicolon,
		token.RBrace, token.EOF,
	}, types(toks))
}

func TestLexerKeywordsResolveOverPlainIdent(t *testing.T) {
	toks := collect(`如果 否则 而 对于 打断 继续 切换 案例 预设 类 变量 空 真 假 这 超 和 或 打印`)
	want := []token.Type{
		token.If, token.Else, token.While, token.For, token.Break, token.Continue,
		token.Switch, token.Case, token.Default, token.Class, token.Var, token.Nil,
		token.True, token.False, token.This, token.Super, token.And, token.Or, token.Print,
		token.EOF,
	}
	assert.Equal(t, want, types(toks))
}

func TestLexerComparisonAndEqualityKeywords(t *testing.T) {
	toks := collect(`甲 等 乙 不等 丙 大 丁 大等 戊 小 己 小等`)
	want := []token.Type{
		token.Ident, token.EqualEqual, token.Ident, token.BangEqual, token.Ident,
		token.Greater, token.Ident, token.GreaterEqual, token.Ident, token.Less,
		token.Ident, token.LessEqual, token.EOF,
	}
	assert.Equal(t, want, types(toks))
}

func TestLexerAsciiOperatorsAndCompoundAssignment(t *testing.T) {
	toks := collect(`甲 += 1； 乙 -= 1； 丙++； 丁--；`)
	want := []token.Type{
		token.Ident, token.PlusEqual, token.Number, token.Semicolon,
		token.Ident, token.MinusEqual, token.Number, token.Semicolon,
		token.Ident, token.PlusPlus, token.Semicolon,
		token.Ident, token.MinusMinus, token.Semicolon,
		token.EOF,
	}
	assert.Equal(t, want, types(toks))
}

func TestLexerStringLiteralAndNumberWithFraction(t *testing.T) {
	toks := collect(`"你好" 3.14`)
	assert.Equal(t, []token.Type{token.String, token.Number, token.EOF}, types(toks))
	assert.Equal(t, `"你好"`, toks[0].Literal)
	assert.Equal(t, "3.14", toks[1].Literal)
}

func TestLexerUnterminatedStringIsErrorToken(t *testing.T) {
	toks := collect(`"没有结束`)
	assert.Equal(t, token.Error, toks[len(toks)-1].Type)
}

func TestLexerSkipsLineComments(t *testing.T) {
	toks := collect("变量 甲 = 1； // 这是注释\n打印 甲；")
	want := []token.Type{
		token.Var, token.Ident, token.Assign, token.Number, token.Semicolon,
		token.Print, token.Ident, token.Semicolon, token.EOF,
	}
	assert.Equal(t, want, types(toks))
}

func TestLexerAlternateBraceAndBracketForms(t *testing.T) {
	toks := collect(`「」 【】`)
	assert.Equal(t, []token.Type{
		token.LBrace, token.RBrace, token.LBracket, token.RBracket, token.EOF,
	}, types(toks))
}

func TestLexerAsciiLessThanForInheritance(t *testing.T) {
	toks := collect(`类 乙 < 甲 『 』`)
	assert.Equal(t, []token.Type{
		token.Class, token.Ident, token.Less, token.Ident, token.LBrace, token.RBrace, token.EOF,
	}, types(toks))
}

func TestLexerReportsLineNumbersAcrossNewlines(t *testing.T) {
	toks := collect("变量 甲 = 1；\n变量 乙 = 2；")
	assert.Equal(t, 1, toks[0].Line)
	var secondVar token.Token
	seen := 0
	for _, tok := range toks {
		if tok.Type == token.Var {
			seen++
			if seen == 2 {
				secondVar = tok
			}
		}
	}
	assert.Equal(t, 2, secondVar.Line)
}

func TestLexerUnexpectedCharacterIsErrorToken(t *testing.T) {
	toks := collect(`$`)
	assert.Equal(t, token.Error, toks[0].Type)
}
