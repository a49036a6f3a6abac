package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/funvibe/valang/internal/ast"
)

// --- Code Printer (Output looks like source code) ---

// Operator precedence (higher = binds tighter), mirroring the parser.
var operatorPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3,
	"!=": 3,
	"<":  4,
	">":  4,
	"<=": 4,
	">=": 4,
	"+":  5,
	"-":  5,
	"*":  6,
	"/":  6,
	"%":  6,
	"^":  7,
}

const (
	prefixPrecedence  = 8
	postfixPrecedence = 9
)

func getPrecedence(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return 10 // Default high precedence for unknown ops
}

// Right-associative operators
var rightAssoc = map[string]bool{
	"^": true,
}

// CodePrinter renders an AST back to source that parses to the same tree.
type CodePrinter struct {
	buf    bytes.Buffer
	indent int

	// noStruct is set while printing an if condition or match subject,
	// where a bare struct literal would be read as the body.
	noStruct bool
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// Format renders node as source.
func Format(node ast.Node) string {
	p := NewCodePrinter()
	node.Accept(p)
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

// printExpr prints an expression, adding parentheses only if needed
func (p *CodePrinter) printExpr(expr ast.Expression, parentPrec int, isRight bool) {
	if expr == nil {
		p.write("<???>")
		return
	}
	switch e := expr.(type) {
	case *ast.InfixExpression:
		prec := getPrecedence(e.Operator)
		needParens := prec < parentPrec
		// For same precedence, check associativity
		if prec == parentPrec {
			if isRight && !rightAssoc[e.Operator] {
				needParens = true
			} else if !isRight && rightAssoc[e.Operator] {
				needParens = true
			}
		}
		if needParens {
			p.write("(")
		}
		p.printExpr(e.Left, prec, false)
		p.write(" " + e.Operator + " ")
		p.printExpr(e.Right, prec, true)
		if needParens {
			p.write(")")
		}
	case *ast.PrefixExpression:
		needParens := prefixPrecedence < parentPrec
		if needParens {
			p.write("(")
		}
		p.write(e.Operator)
		p.printExpr(e.Right, prefixPrecedence, false)
		if needParens {
			p.write(")")
		}
	default:
		expr.Accept(p)
	}
}

// printStatementExpr prints an expression that starts a statement. An
// expression whose leftmost operand is an if, match or block must be
// parenthesized or the parser ends the statement at that operand's brace.
func (p *CodePrinter) printStatementExpr(expr ast.Expression) {
	if !ast.IsBlockLike(expr) && startsWithBlockLike(expr) {
		p.write("(")
		p.printExpr(expr, 0, false)
		p.write(")")
		return
	}
	p.printExpr(expr, 0, false)
}

func startsWithBlockLike(expr ast.Expression) bool {
	for {
		switch e := expr.(type) {
		case *ast.IfExpression, *ast.MatchExpression, *ast.BlockExpression:
			return true
		case *ast.InfixExpression:
			expr = e.Left
		case *ast.CallExpression:
			expr = e.Function
		case *ast.FieldAccessExpression:
			expr = e.Left
		default:
			return false
		}
	}
}

// withStructs prints nested expressions where struct literals are unambiguous.
func (p *CodePrinter) withStructs(f func()) {
	saved := p.noStruct
	p.noStruct = false
	f()
	p.noStruct = saved
}

func (p *CodePrinter) VisitProgram(n *ast.Program) {
	for i, item := range n.Items {
		if i > 0 {
			p.writeln()
		}
		if item != nil {
			item.Accept(p)
		} else {
			p.write("<???>")
		}
		p.writeln()
	}
}

func (p *CodePrinter) printParams(params []*ast.Parameter) {
	p.write("(")
	for i, param := range params {
		if i > 0 {
			p.write(", ")
		}
		p.write(param.Name.Value)
		p.write(": ")
		p.printType(param.Type)
	}
	p.write(")")
}

func (p *CodePrinter) printType(t ast.Type) {
	if t == nil {
		p.write("<???>")
		return
	}
	t.Accept(p)
}

func (p *CodePrinter) VisitFunctionStatement(n *ast.FunctionStatement) {
	p.write("fn ")
	p.write(n.Name.Value)
	p.printParams(n.Parameters)
	if n.ReturnType != nil {
		p.write(" -> ")
		p.printType(n.ReturnType)
	}
	p.write(" ")
	n.Body.Accept(p)
}

func (p *CodePrinter) printFieldDecls(fields []*ast.FieldDecl) {
	for i, f := range fields {
		if i > 0 {
			p.write(", ")
		}
		p.write(f.Name.Value)
		p.write(": ")
		p.printType(f.Type)
	}
}

func (p *CodePrinter) VisitStructStatement(n *ast.StructStatement) {
	p.write("struct ")
	p.write(n.Name.Value)
	if len(n.Fields) == 0 {
		p.write(" {}")
		return
	}
	p.write(" {\n")
	p.indent++
	for _, f := range n.Fields {
		p.writeIndent()
		p.printFieldDecls([]*ast.FieldDecl{f})
		p.write(",\n")
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

func (p *CodePrinter) VisitEnumStatement(n *ast.EnumStatement) {
	p.write("enum ")
	p.write(n.Name.Value)
	if len(n.Variants) == 0 {
		p.write(" {}")
		return
	}
	p.write(" {\n")
	p.indent++
	for _, v := range n.Variants {
		p.writeIndent()
		p.write(v.Name.Value)
		if len(v.Fields) > 0 {
			p.write("(")
			p.printFieldDecls(v.Fields)
			p.write(")")
		}
		p.write(",\n")
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

func (p *CodePrinter) VisitVarStatement(n *ast.VarStatement) {
	if n.Mutable {
		p.write("var ")
	} else {
		p.write("val ")
	}
	p.write(n.Name.Value)
	if n.TypeAnnotation != nil {
		p.write(": ")
		p.printType(n.TypeAnnotation)
	}
	p.write(" = ")
	p.printExpr(n.Value, 0, false)
	p.write(";")
}

func (p *CodePrinter) VisitAssignStatement(n *ast.AssignStatement) {
	p.printStatementExpr(n.Target)
	p.write(" " + n.Operator + " ")
	p.printExpr(n.Value, 0, false)
	p.write(";")
}

func (p *CodePrinter) VisitReturnStatement(n *ast.ReturnStatement) {
	p.write("return")
	if n.Value != nil {
		p.write(" ")
		p.printExpr(n.Value, 0, false)
	}
	p.write(";")
}

func (p *CodePrinter) VisitExpressionStatement(n *ast.ExpressionStatement) {
	p.printStatementExpr(n.Expression)
	p.write(";")
}

func (p *CodePrinter) VisitBlockExpression(n *ast.BlockExpression) {
	if len(n.Statements) == 0 && n.Tail == nil {
		p.write("{}")
		return
	}
	p.withStructs(func() {
		p.write("{\n")
		p.indent++
		for _, stmt := range n.Statements {
			p.writeIndent()
			if stmt != nil {
				stmt.Accept(p)
			} else {
				p.write("<???>")
			}
			p.writeln()
		}
		if n.Tail != nil {
			p.writeIndent()
			p.printStatementExpr(n.Tail)
			p.writeln()
		}
		p.indent--
		p.writeIndent()
		p.write("}")
	})
}

func (p *CodePrinter) VisitIdentifier(n *ast.Identifier) {
	p.write(n.Value)
}

func (p *CodePrinter) VisitIntegerLiteral(n *ast.IntegerLiteral) {
	p.write(strconv.FormatInt(n.Value, 10))
}

func (p *CodePrinter) VisitBooleanLiteral(n *ast.BooleanLiteral) {
	p.write(strconv.FormatBool(n.Value))
}

func (p *CodePrinter) VisitStringLiteral(n *ast.StringLiteral) {
	p.write(Quote(n.Value))
}

func (p *CodePrinter) VisitUnitLiteral(n *ast.UnitLiteral) {
	p.write("()")
}

func (p *CodePrinter) VisitPrefixExpression(n *ast.PrefixExpression) {
	p.printExpr(n, 0, false)
}

func (p *CodePrinter) VisitInfixExpression(n *ast.InfixExpression) {
	p.printExpr(n, 0, false)
}

func (p *CodePrinter) VisitCallExpression(n *ast.CallExpression) {
	p.printExpr(n.Function, postfixPrecedence, false)
	p.withStructs(func() {
		p.write("(")
		for i, arg := range n.Arguments {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(arg, 0, false)
		}
		p.write(")")
	})
}

func (p *CodePrinter) VisitFieldAccessExpression(n *ast.FieldAccessExpression) {
	p.printExpr(n.Left, postfixPrecedence, false)
	p.write(".")
	p.write(n.Field.Value)
}

func (p *CodePrinter) VisitIfExpression(n *ast.IfExpression) {
	for i, br := range n.Branches {
		if i == 0 {
			p.write("if ")
		} else {
			p.write(" elif ")
		}
		p.printCondition(br.Condition)
		p.write(" ")
		br.Body.Accept(p)
	}
	p.write(" else ")
	if n.Else != nil {
		n.Else.Accept(p)
	} else {
		p.write("{}")
	}
}

func (p *CodePrinter) printCondition(expr ast.Expression) {
	saved := p.noStruct
	p.noStruct = true
	p.printExpr(expr, 0, false)
	p.noStruct = saved
}

func (p *CodePrinter) VisitMatchExpression(n *ast.MatchExpression) {
	p.write("match ")
	p.printCondition(n.Subject)
	p.write(" {\n")
	p.indent++
	for _, arm := range n.Arms {
		p.writeIndent()
		if arm.Pattern != nil {
			arm.Pattern.Accept(p)
		} else {
			p.write("<???>")
		}
		p.write(" => ")
		arm.Body.Accept(p)
		p.write(",\n")
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

func (p *CodePrinter) VisitFunctionLiteral(n *ast.FunctionLiteral) {
	p.write("fn")
	p.printParams(n.Parameters)
	if n.ReturnType != nil {
		p.write(" -> ")
		p.printType(n.ReturnType)
	}
	p.write(" ")
	n.Body.Accept(p)
}

func (p *CodePrinter) VisitStructLiteral(n *ast.StructLiteral) {
	wrap := p.noStruct
	if wrap {
		p.write("(")
	}
	p.withStructs(func() {
		p.write(n.Name.Value)
		p.write(" {")
		for i, f := range n.Fields {
			if i > 0 {
				p.write(",")
			}
			p.write(" ")
			p.write(f.Name.Value)
			p.write(": ")
			p.printExpr(f.Value, 0, false)
		}
		p.write(" }")
	})
	if wrap {
		p.write(")")
	}
}

func (p *CodePrinter) VisitVariantExpression(n *ast.VariantExpression) {
	p.write(n.Enum.Value)
	p.write("::")
	p.write(n.Variant.Value)
	if n.HasParens {
		p.withStructs(func() {
			p.write("(")
			for i, arg := range n.Arguments {
				if i > 0 {
					p.write(", ")
				}
				p.printExpr(arg, 0, false)
			}
			p.write(")")
		})
	}
}

func (p *CodePrinter) VisitNamedType(n *ast.NamedType) {
	p.write(n.Name.Value)
}

func (p *CodePrinter) VisitFunctionType(n *ast.FunctionType) {
	p.write("fn(")
	for i, t := range n.Parameters {
		if i > 0 {
			p.write(", ")
		}
		p.printType(t)
	}
	p.write(")")
	if n.ReturnType != nil {
		p.write(" -> ")
		p.printType(n.ReturnType)
	}
}

func (p *CodePrinter) VisitWildcardPattern(n *ast.WildcardPattern) { p.write("_") }

func (p *CodePrinter) VisitLiteralPattern(n *ast.LiteralPattern) {
	switch v := n.Value.(type) {
	case int64:
		p.write(strconv.FormatInt(v, 10))
	case bool:
		p.write(strconv.FormatBool(v))
	case string:
		p.write(Quote(v))
	default:
		p.write(n.Token.Lexeme)
	}
}

func (p *CodePrinter) VisitBindingPattern(n *ast.BindingPattern) { p.write(n.Name.Value) }

func (p *CodePrinter) VisitStructPattern(n *ast.StructPattern) {
	p.write(n.Name.Value)
	p.write(" {")
	for i, f := range n.Fields {
		if i > 0 {
			p.write(",")
		}
		p.write(" ")
		p.write(f.Name.Value)
		p.write(": ")
		f.Pattern.Accept(p)
	}
	p.write(" }")
}

func (p *CodePrinter) VisitVariantPattern(n *ast.VariantPattern) {
	p.write(n.Enum.Value)
	p.write("::")
	p.write(n.Variant.Value)
	if n.HasParens {
		p.write("(")
		for i, e := range n.Elements {
			if i > 0 {
				p.write(", ")
			}
			e.Accept(p)
		}
		p.write(")")
	}
}

// Quote renders s as a string literal using only the escapes the lexer accepts.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
