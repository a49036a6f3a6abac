package ast

import (
	"github.com/funvibe/valang/internal/token"
)

// PrefixExpression represents a unary operation, e.g. -x or !ok
type PrefixExpression struct {
	Token    token.Token // The prefix token, e.g. !
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) Accept(v Visitor)      { v.VisitPrefixExpression(pe) }
func (pe *PrefixExpression) expressionNode()       {}
func (pe *PrefixExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token { return pe.Token }

// InfixExpression represents a binary operation, e.g. a + b
type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) Accept(v Visitor)      { v.VisitInfixExpression(ie) }
func (ie *InfixExpression) expressionNode()       {}
func (ie *InfixExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token { return ie.Token }

// CallExpression represents a function call, e.g. add(1, 2) or f(x)(y)
type CallExpression struct {
	Token     token.Token // The '(' token
	Function  Expression  // Identifier, FunctionLiteral or any expression of function type
	Arguments []Expression
}

func (ce *CallExpression) Accept(v Visitor)      { v.VisitCallExpression(ce) }
func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }

// FieldAccessExpression represents dot access, e.g. p.x
type FieldAccessExpression struct {
	Token token.Token // The '.' token
	Left  Expression
	Field *Identifier
}

func (fa *FieldAccessExpression) Accept(v Visitor)      { v.VisitFieldAccessExpression(fa) }
func (fa *FieldAccessExpression) expressionNode()       {}
func (fa *FieldAccessExpression) TokenLiteral() string  { return fa.Token.Lexeme }
func (fa *FieldAccessExpression) GetToken() token.Token { return fa.Token }

// BlockExpression is a braced sequence of statements with an optional tail expression.
// The value of the block is the tail, or Unit when Tail is nil.
type BlockExpression struct {
	Token       token.Token // {
	Statements  []Statement
	Tail        Expression
	RBraceToken token.Token // }
}

func (be *BlockExpression) Accept(v Visitor)      { v.VisitBlockExpression(be) }
func (be *BlockExpression) expressionNode()       {}
func (be *BlockExpression) TokenLiteral() string  { return be.Token.Lexeme }
func (be *BlockExpression) GetToken() token.Token { return be.Token }

// IfBranch is one `if` or `elif` arm.
type IfBranch struct {
	Token     token.Token // 'if' or 'elif'
	Condition Expression
	Body      *BlockExpression
}

// IfExpression is the whole if/elif/else chain. Else is mandatory.
type IfExpression struct {
	Token    token.Token // The 'if' token
	Branches []*IfBranch
	Else     *BlockExpression
}

func (ie *IfExpression) Accept(v Visitor)      { v.VisitIfExpression(ie) }
func (ie *IfExpression) expressionNode()       {}
func (ie *IfExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IfExpression) GetToken() token.Token { return ie.Token }

// MatchArm is `pattern => { body }`.
type MatchArm struct {
	Token   token.Token // first token of the pattern
	Pattern Pattern
	Body    *BlockExpression
}

// MatchExpression represents `match subject { arms }`.
type MatchExpression struct {
	Token   token.Token // The 'match' token
	Subject Expression
	Arms    []*MatchArm
}

func (me *MatchExpression) Accept(v Visitor)      { v.VisitMatchExpression(me) }
func (me *MatchExpression) expressionNode()       {}
func (me *MatchExpression) TokenLiteral() string  { return me.Token.Lexeme }
func (me *MatchExpression) GetToken() token.Token { return me.Token }

// FunctionLiteral is an anonymous function (closure).
// fn(x: Int) -> Int { x + n }
type FunctionLiteral struct {
	Token      token.Token // The 'fn' token
	Parameters []*Parameter
	ReturnType Type // nil means Unit
	Body       *BlockExpression
}

func (fl *FunctionLiteral) Accept(v Visitor)      { v.VisitFunctionLiteral(fl) }
func (fl *FunctionLiteral) expressionNode()       {}
func (fl *FunctionLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FunctionLiteral) GetToken() token.Token { return fl.Token }

// FieldInit is `name: value` inside a struct literal.
type FieldInit struct {
	Token token.Token // the field name token
	Name  *Identifier
	Value Expression
}

// StructLiteral constructs a struct value, e.g. Point { x: 1, y: 2 }
type StructLiteral struct {
	Token  token.Token // the struct name token
	Name   *Identifier
	Fields []*FieldInit
}

func (sl *StructLiteral) Accept(v Visitor)      { v.VisitStructLiteral(sl) }
func (sl *StructLiteral) expressionNode()       {}
func (sl *StructLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StructLiteral) GetToken() token.Token { return sl.Token }

// VariantExpression constructs an enum value, e.g. Shape::Circle(5) or Opt::None
type VariantExpression struct {
	Token     token.Token // the enum name token
	Enum      *Identifier
	Variant   *Identifier
	Arguments []Expression
	HasParens bool // Opt::None() and Opt::None are both accepted
}

func (ve *VariantExpression) Accept(v Visitor)      { v.VisitVariantExpression(ve) }
func (ve *VariantExpression) expressionNode()       {}
func (ve *VariantExpression) TokenLiteral() string  { return ve.Token.Lexeme }
func (ve *VariantExpression) GetToken() token.Token { return ve.Token }

// IsBlockLike reports whether e ends with a closing brace and may be used
// as a statement without a trailing semicolon.
func IsBlockLike(e Expression) bool {
	switch e.(type) {
	case *IfExpression, *MatchExpression, *BlockExpression:
		return true
	}
	return false
}
