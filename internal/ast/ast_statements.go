package ast

import (
	"github.com/funvibe/valang/internal/token"
)

// Parameter is a typed function parameter: `x: Int`.
type Parameter struct {
	Token token.Token // the parameter name token
	Name  *Identifier
	Type  Type
}

func (p *Parameter) GetToken() token.Token {
	if p == nil {
		return token.Token{}
	}
	return p.Token
}

// FunctionStatement is a top-level function definition.
// fn add(x: Int, y: Int) -> Int { x + y }
type FunctionStatement struct {
	Token      token.Token // The 'fn' token
	Name       *Identifier
	Parameters []*Parameter
	ReturnType Type // nil means Unit
	Body       *BlockExpression
}

func (fs *FunctionStatement) Accept(v Visitor)     { v.VisitFunctionStatement(fs) }
func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *FunctionStatement) GetToken() token.Token {
	if fs == nil {
		return token.Token{}
	}
	return fs.Token
}

// FieldDecl is a named, typed field of a struct or enum variant.
type FieldDecl struct {
	Token token.Token // the field name token
	Name  *Identifier
	Type  Type
}

func (fd *FieldDecl) GetToken() token.Token {
	if fd == nil {
		return token.Token{}
	}
	return fd.Token
}

// StructStatement declares a struct type.
// struct Point { x: Int, y: Int }
type StructStatement struct {
	Token  token.Token // The 'struct' token
	Name   *Identifier
	Fields []*FieldDecl
}

func (ss *StructStatement) Accept(v Visitor)     { v.VisitStructStatement(ss) }
func (ss *StructStatement) statementNode()       {}
func (ss *StructStatement) TokenLiteral() string { return ss.Token.Lexeme }
func (ss *StructStatement) GetToken() token.Token {
	if ss == nil {
		return token.Token{}
	}
	return ss.Token
}

// VariantDecl is one enum variant with zero or more fields.
type VariantDecl struct {
	Token  token.Token // the variant name token
	Name   *Identifier
	Fields []*FieldDecl
}

func (vd *VariantDecl) GetToken() token.Token {
	if vd == nil {
		return token.Token{}
	}
	return vd.Token
}

// EnumStatement declares an enum type with ordered variants.
// enum Shape { Circle(r: Int), Rect(w: Int, h: Int), Empty }
type EnumStatement struct {
	Token    token.Token // The 'enum' token
	Name     *Identifier
	Variants []*VariantDecl
}

func (es *EnumStatement) Accept(v Visitor)     { v.VisitEnumStatement(es) }
func (es *EnumStatement) statementNode()       {}
func (es *EnumStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *EnumStatement) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}

// VarStatement is a local binding. Mutable is true for `var`, false for `val`.
type VarStatement struct {
	Token          token.Token // The 'val' or 'var' token
	Name           *Identifier
	Mutable        bool
	TypeAnnotation Type // Optional
	Value          Expression
}

func (vs *VarStatement) Accept(v Visitor)     { v.VisitVarStatement(vs) }
func (vs *VarStatement) statementNode()       {}
func (vs *VarStatement) TokenLiteral() string { return vs.Token.Lexeme }
func (vs *VarStatement) GetToken() token.Token {
	if vs == nil {
		return token.Token{}
	}
	return vs.Token
}

// AssignStatement is `target = value` or a compound form such as `target += value`.
type AssignStatement struct {
	Token    token.Token // The operator token
	Target   Expression
	Operator string // "=", "+=", "-=", ...
	Value    Expression
}

func (as *AssignStatement) Accept(v Visitor)     { v.VisitAssignStatement(as) }
func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Lexeme }
func (as *AssignStatement) GetToken() token.Token {
	if as == nil {
		return token.Token{}
	}
	return as.Token
}

// IsCompound reports whether the assignment reads its target first.
func (as *AssignStatement) IsCompound() bool {
	return as.Operator != "="
}

// BinaryOperator returns the operator a compound assignment applies ("+" for "+=").
func (as *AssignStatement) BinaryOperator() string {
	if !as.IsCompound() {
		return ""
	}
	return as.Operator[:len(as.Operator)-1]
}

// ReturnStatement is an explicit return with an optional value.
type ReturnStatement struct {
	Token token.Token // The 'return' token
	Value Expression  // nil returns Unit
}

func (rs *ReturnStatement) Accept(v Visitor)     { v.VisitReturnStatement(rs) }
func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token {
	if rs == nil {
		return token.Token{}
	}
	return rs.Token
}

// ExpressionStatement is an expression whose value is discarded.
type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) Accept(v Visitor)     { v.VisitExpressionStatement(es) }
func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}
