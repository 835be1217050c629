package compiler

import "github.com/xirelogy/go-qi/internal/token"

// Precedence orders the binding power of infix operators, lowest first.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

// ParseFn compiles one grammar production headed by the token that was
// just consumed (c.previous). canAssign is true only when the enclosing
// context could legally accept a trailing '=' (i.e. this parse started at
// PrecAssignment or looser), which is how the single-pass parser tells a
// bare expression like "a.b" from an assignment target.
type ParseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix ParseFn
	infix  ParseFn
	prec   Precedence
}

var rules map[token.Type]parseRule

func init() {
	rules = map[token.Type]parseRule{
		token.LParen:   {prefix: (*Compiler).grouping, infix: (*Compiler).call, prec: PrecCall},
		token.Dot:      {infix: (*Compiler).dot, prec: PrecCall},
		token.Minus:    {prefix: (*Compiler).unary, infix: (*Compiler).binary, prec: PrecTerm},
		token.Plus:     {infix: (*Compiler).binary, prec: PrecTerm},
		token.Slash:    {infix: (*Compiler).binary, prec: PrecFactor},
		token.Star:     {infix: (*Compiler).binary, prec: PrecFactor},
		token.Percent:  {infix: (*Compiler).binary, prec: PrecFactor},
		token.Bang:     {prefix: (*Compiler).unary},
		token.BangEqual:     {infix: (*Compiler).binary, prec: PrecEquality},
		token.EqualEqual:    {infix: (*Compiler).binary, prec: PrecEquality},
		token.Greater:       {infix: (*Compiler).binary, prec: PrecComparison},
		token.GreaterEqual:  {infix: (*Compiler).binary, prec: PrecComparison},
		token.Less:          {infix: (*Compiler).binary, prec: PrecComparison},
		token.LessEqual:     {infix: (*Compiler).binary, prec: PrecComparison},
		token.Ident:  {prefix: (*Compiler).variable},
		token.String: {prefix: (*Compiler).stringLiteral},
		token.Number: {prefix: (*Compiler).number},
		token.And:    {infix: (*Compiler).and_, prec: PrecAnd},
		token.Or:     {infix: (*Compiler).or_, prec: PrecOr},
		token.False:  {prefix: (*Compiler).literal},
		token.True:   {prefix: (*Compiler).literal},
		token.Nil:    {prefix: (*Compiler).literal},
		token.This:   {prefix: (*Compiler).this_},
		token.Super:  {prefix: (*Compiler).super_},
	}
}

func getRule(t token.Type) parseRule {
	return rules[t]
}
