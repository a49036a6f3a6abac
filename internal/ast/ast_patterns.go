package ast

import (
	"github.com/funvibe/valang/internal/token"
)

// Pattern is the left-hand side of a match arm.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern matches anything and binds nothing: _
type WildcardPattern struct {
	Token token.Token
}

func (wp *WildcardPattern) Accept(v Visitor)      { v.VisitWildcardPattern(wp) }
func (wp *WildcardPattern) patternNode()          {}
func (wp *WildcardPattern) TokenLiteral() string  { return wp.Token.Lexeme }
func (wp *WildcardPattern) GetToken() token.Token { return wp.Token }

// LiteralPattern matches an Int, Bool or String constant.
// Value is int64, bool or string.
type LiteralPattern struct {
	Token token.Token
	Value interface{}
}

func (lp *LiteralPattern) Accept(v Visitor)      { v.VisitLiteralPattern(lp) }
func (lp *LiteralPattern) patternNode()          {}
func (lp *LiteralPattern) TokenLiteral() string  { return lp.Token.Lexeme }
func (lp *LiteralPattern) GetToken() token.Token { return lp.Token }

// BindingPattern matches anything and binds it to a new immutable name.
type BindingPattern struct {
	Token token.Token
	Name  *Identifier
}

func (bp *BindingPattern) Accept(v Visitor)      { v.VisitBindingPattern(bp) }
func (bp *BindingPattern) patternNode()          {}
func (bp *BindingPattern) TokenLiteral() string  { return bp.Token.Lexeme }
func (bp *BindingPattern) GetToken() token.Token { return bp.Token }

// FieldPattern is `name: pattern` inside a struct pattern.
// The shorthand `name` is parsed as `name: name`.
type FieldPattern struct {
	Token   token.Token
	Name    *Identifier
	Pattern Pattern
}

// StructPattern destructures a struct, e.g. Point { x: 0, y }
// Omitted fields match anything.
type StructPattern struct {
	Token  token.Token // the struct name token
	Name   *Identifier
	Fields []*FieldPattern
}

func (sp *StructPattern) Accept(v Visitor)      { v.VisitStructPattern(sp) }
func (sp *StructPattern) patternNode()          {}
func (sp *StructPattern) TokenLiteral() string  { return sp.Token.Lexeme }
func (sp *StructPattern) GetToken() token.Token { return sp.Token }

// VariantPattern matches one enum variant, e.g. Shape::Rect(w, _) or Opt::None
type VariantPattern struct {
	Token     token.Token // the enum name token
	Enum      *Identifier
	Variant   *Identifier
	Elements  []Pattern
	HasParens bool
}

func (vp *VariantPattern) Accept(v Visitor)      { v.VisitVariantPattern(vp) }
func (vp *VariantPattern) patternNode()          {}
func (vp *VariantPattern) TokenLiteral() string  { return vp.Token.Lexeme }
func (vp *VariantPattern) GetToken() token.Token { return vp.Token }
