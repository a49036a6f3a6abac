package ast

import (
	"github.com/funvibe/valang/internal/token"
)

// --- Type System Nodes ---

// Type represents a type node in the AST.
// E.g., Int, Point, fn(Int, Int) -> Bool
type Type interface {
	Node
	typeNode()
}

// NamedType represents a simple named type like 'Int' or 'Point'.
type NamedType struct {
	Token token.Token
	Name  *Identifier
}

func (nt *NamedType) Accept(v Visitor)      { v.VisitNamedType(nt) }
func (nt *NamedType) typeNode()             {}
func (nt *NamedType) TokenLiteral() string  { return nt.Token.Lexeme }
func (nt *NamedType) GetToken() token.Token { return nt.Token }

// FunctionType represents a function type, e.g. fn(Int, Int) -> Bool
// A nil ReturnType means Unit.
type FunctionType struct {
	Token      token.Token // The 'fn' token
	Parameters []Type
	ReturnType Type
}

func (ft *FunctionType) Accept(v Visitor)      { v.VisitFunctionType(ft) }
func (ft *FunctionType) typeNode()             {}
func (ft *FunctionType) TokenLiteral() string  { return ft.Token.Lexeme }
func (ft *FunctionType) GetToken() token.Token { return ft.Token }
