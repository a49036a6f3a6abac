package prettyprinter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/valang/internal/ast"
)

// --- Tree Printer (Output shows AST structure) ---

// TreePrinter dumps the AST one node per line, indented by depth.
// Spans are omitted, so two trees print identically iff they are structurally equal.
type TreePrinter struct {
	buf       bytes.Buffer
	indent    int
	WithSpans bool
}

func NewTreePrinter() *TreePrinter {
	return &TreePrinter{}
}

// Dump returns the tree dump of node.
func Dump(node ast.Node) string {
	p := NewTreePrinter()
	node.Accept(p)
	return p.String()
}

func (p *TreePrinter) String() string {
	return p.buf.String()
}

func (p *TreePrinter) line(node ast.Node, format string, args ...interface{}) {
	p.buf.WriteString(strings.Repeat("  ", p.indent))
	fmt.Fprintf(&p.buf, format, args...)
	if p.WithSpans && node != nil {
		p.buf.WriteString(" ")
		p.buf.WriteString(node.GetToken().Span().String())
	}
	p.buf.WriteString("\n")
}

func (p *TreePrinter) nested(f func()) {
	p.indent++
	f()
	p.indent--
}

func (p *TreePrinter) child(label string, node ast.Node) {
	p.line(nil, "%s:", label)
	p.nested(func() {
		if node == nil {
			p.line(nil, "<nil>")
			return
		}
		node.Accept(p)
	})
}

func typeString(t ast.Type) string {
	if t == nil {
		return "Unit"
	}
	return Format(t)
}

func (p *TreePrinter) params(params []*ast.Parameter) {
	for _, param := range params {
		p.line(nil, "Parameter %s: %s", param.Name.Value, typeString(param.Type))
	}
}

func (p *TreePrinter) VisitProgram(n *ast.Program) {
	p.line(nil, "Program")
	p.nested(func() {
		for _, item := range n.Items {
			item.Accept(p)
		}
	})
}

func (p *TreePrinter) VisitFunctionStatement(n *ast.FunctionStatement) {
	p.line(n, "FunctionStatement %s -> %s", n.Name.Value, typeString(n.ReturnType))
	p.nested(func() {
		p.params(n.Parameters)
		n.Body.Accept(p)
	})
}

func (p *TreePrinter) VisitStructStatement(n *ast.StructStatement) {
	p.line(n, "StructStatement %s", n.Name.Value)
	p.nested(func() {
		for _, f := range n.Fields {
			p.line(nil, "Field %s: %s", f.Name.Value, typeString(f.Type))
		}
	})
}

func (p *TreePrinter) VisitEnumStatement(n *ast.EnumStatement) {
	p.line(n, "EnumStatement %s", n.Name.Value)
	p.nested(func() {
		for _, v := range n.Variants {
			p.line(nil, "Variant %s", v.Name.Value)
			p.nested(func() {
				for _, f := range v.Fields {
					p.line(nil, "Field %s: %s", f.Name.Value, typeString(f.Type))
				}
			})
		}
	})
}

func (p *TreePrinter) VisitVarStatement(n *ast.VarStatement) {
	kw := "val"
	if n.Mutable {
		kw = "var"
	}
	if n.TypeAnnotation != nil {
		p.line(n, "VarStatement %s %s: %s", kw, n.Name.Value, typeString(n.TypeAnnotation))
	} else {
		p.line(n, "VarStatement %s %s", kw, n.Name.Value)
	}
	p.nested(func() { n.Value.Accept(p) })
}

func (p *TreePrinter) VisitAssignStatement(n *ast.AssignStatement) {
	p.line(n, "AssignStatement %s", n.Operator)
	p.nested(func() {
		n.Target.Accept(p)
		n.Value.Accept(p)
	})
}

func (p *TreePrinter) VisitReturnStatement(n *ast.ReturnStatement) {
	p.line(n, "ReturnStatement")
	if n.Value != nil {
		p.nested(func() { n.Value.Accept(p) })
	}
}

func (p *TreePrinter) VisitExpressionStatement(n *ast.ExpressionStatement) {
	p.line(n, "ExpressionStatement")
	p.nested(func() { n.Expression.Accept(p) })
}

func (p *TreePrinter) VisitIdentifier(n *ast.Identifier) {
	p.line(n, "Identifier %s", n.Value)
}

func (p *TreePrinter) VisitIntegerLiteral(n *ast.IntegerLiteral) {
	p.line(n, "IntegerLiteral %d", n.Value)
}

func (p *TreePrinter) VisitBooleanLiteral(n *ast.BooleanLiteral) {
	p.line(n, "BooleanLiteral %t", n.Value)
}

func (p *TreePrinter) VisitStringLiteral(n *ast.StringLiteral) {
	p.line(n, "StringLiteral %s", strconv.Quote(n.Value))
}

func (p *TreePrinter) VisitUnitLiteral(n *ast.UnitLiteral) {
	p.line(n, "UnitLiteral")
}

func (p *TreePrinter) VisitPrefixExpression(n *ast.PrefixExpression) {
	p.line(n, "PrefixExpression %s", n.Operator)
	p.nested(func() { n.Right.Accept(p) })
}

func (p *TreePrinter) VisitInfixExpression(n *ast.InfixExpression) {
	p.line(n, "InfixExpression %s", n.Operator)
	p.nested(func() {
		n.Left.Accept(p)
		n.Right.Accept(p)
	})
}

func (p *TreePrinter) VisitCallExpression(n *ast.CallExpression) {
	p.line(n, "CallExpression")
	p.nested(func() {
		n.Function.Accept(p)
		for _, a := range n.Arguments {
			a.Accept(p)
		}
	})
}

func (p *TreePrinter) VisitFieldAccessExpression(n *ast.FieldAccessExpression) {
	p.line(n, "FieldAccessExpression .%s", n.Field.Value)
	p.nested(func() { n.Left.Accept(p) })
}

func (p *TreePrinter) VisitBlockExpression(n *ast.BlockExpression) {
	p.line(n, "BlockExpression")
	p.nested(func() {
		for _, s := range n.Statements {
			s.Accept(p)
		}
		if n.Tail != nil {
			p.child("Tail", n.Tail)
		}
	})
}

func (p *TreePrinter) VisitIfExpression(n *ast.IfExpression) {
	p.line(n, "IfExpression")
	p.nested(func() {
		for i, br := range n.Branches {
			label := "If"
			if i > 0 {
				label = "Elif"
			}
			p.line(nil, "%s:", label)
			p.nested(func() {
				br.Condition.Accept(p)
				br.Body.Accept(p)
			})
		}
		p.child("Else", n.Else)
	})
}

func (p *TreePrinter) VisitMatchExpression(n *ast.MatchExpression) {
	p.line(n, "MatchExpression")
	p.nested(func() {
		n.Subject.Accept(p)
		for _, arm := range n.Arms {
			p.line(nil, "Arm:")
			p.nested(func() {
				arm.Pattern.Accept(p)
				arm.Body.Accept(p)
			})
		}
	})
}

func (p *TreePrinter) VisitFunctionLiteral(n *ast.FunctionLiteral) {
	p.line(n, "FunctionLiteral -> %s", typeString(n.ReturnType))
	p.nested(func() {
		p.params(n.Parameters)
		n.Body.Accept(p)
	})
}

func (p *TreePrinter) VisitStructLiteral(n *ast.StructLiteral) {
	p.line(n, "StructLiteral %s", n.Name.Value)
	p.nested(func() {
		for _, f := range n.Fields {
			p.child("Field "+f.Name.Value, f.Value)
		}
	})
}

func (p *TreePrinter) VisitVariantExpression(n *ast.VariantExpression) {
	p.line(n, "VariantExpression %s::%s", n.Enum.Value, n.Variant.Value)
	p.nested(func() {
		for _, a := range n.Arguments {
			a.Accept(p)
		}
	})
}

func (p *TreePrinter) VisitNamedType(n *ast.NamedType) {
	p.line(n, "NamedType %s", n.Name.Value)
}

func (p *TreePrinter) VisitFunctionType(n *ast.FunctionType) {
	p.line(n, "FunctionType %s", Format(n))
}

func (p *TreePrinter) VisitWildcardPattern(n *ast.WildcardPattern) {
	p.line(n, "WildcardPattern")
}

func (p *TreePrinter) VisitLiteralPattern(n *ast.LiteralPattern) {
	p.line(n, "LiteralPattern %#v", n.Value)
}

func (p *TreePrinter) VisitBindingPattern(n *ast.BindingPattern) {
	p.line(n, "BindingPattern %s", n.Name.Value)
}

func (p *TreePrinter) VisitStructPattern(n *ast.StructPattern) {
	p.line(n, "StructPattern %s", n.Name.Value)
	p.nested(func() {
		for _, f := range n.Fields {
			p.child("Field "+f.Name.Value, f.Pattern)
		}
	})
}

func (p *TreePrinter) VisitVariantPattern(n *ast.VariantPattern) {
	p.line(n, "VariantPattern %s::%s", n.Enum.Value, n.Variant.Value)
	p.nested(func() {
		for _, e := range n.Elements {
			e.Accept(p)
		}
	})
}
