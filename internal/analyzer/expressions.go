package analyzer

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/typesystem"
)

// checkExpression infers the type of e in value context and records it in TypeMap.
func (a *Analyzer) checkExpression(e ast.Expression) typesystem.Type {
	var t typesystem.Type
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		t = typesystem.Int
	case *ast.BooleanLiteral:
		t = typesystem.Bool
	case *ast.StringLiteral:
		t = typesystem.String
	case *ast.UnitLiteral:
		t = typesystem.Unit
	case *ast.Identifier:
		t = a.checkIdentifier(n)
	case *ast.PrefixExpression:
		t = a.checkPrefixExpression(n)
	case *ast.InfixExpression:
		t = a.checkInfixExpression(n)
	case *ast.CallExpression:
		t = a.checkCallExpression(n)
	case *ast.FieldAccessExpression:
		t = a.checkFieldAccess(n)
	case *ast.BlockExpression:
		return a.checkBlock(n)
	case *ast.IfExpression:
		return a.checkIfExpression(n, false)
	case *ast.MatchExpression:
		return a.checkMatchExpression(n, false)
	case *ast.FunctionLiteral:
		t = a.checkFunctionLiteral(n)
	case *ast.StructLiteral:
		t = a.checkStructLiteral(n)
	case *ast.VariantExpression:
		t = a.checkVariantExpression(n)
	default:
		t = typesystem.Error
	}
	return a.record(e, t)
}

func (a *Analyzer) checkIdentifier(id *ast.Identifier) typesystem.Type {
	sym := a.symbolOf(id)
	if sym == nil || sym.Type == nil {
		return typesystem.Error
	}
	return sym.Type
}

func (a *Analyzer) checkPrefixExpression(n *ast.PrefixExpression) typesystem.Type {
	right := a.checkExpression(n.Right)
	switch n.Operator {
	case "-":
		if !typesystem.Compatible(typesystem.Int, right) {
			a.errorf(diagnostics.ErrT001, n.Token, "type mismatch: operator `-` expects Int, got %s", right)
		}
		return typesystem.Int
	case "!":
		if !typesystem.Compatible(typesystem.Bool, right) {
			a.errorf(diagnostics.ErrT001, n.Token, "type mismatch: operator `!` expects Bool, got %s", right)
		}
		return typesystem.Bool
	}
	a.errorf(diagnostics.ErrT001, n.Token, "unknown prefix operator `%s`", n.Operator)
	return typesystem.Error
}

// operand and result types of the binary operators; == and != are handled separately
var binaryOperators = map[string]struct{ operand, result typesystem.Type }{
	"+":  {typesystem.Int, typesystem.Int},
	"-":  {typesystem.Int, typesystem.Int},
	"*":  {typesystem.Int, typesystem.Int},
	"/":  {typesystem.Int, typesystem.Int},
	"%":  {typesystem.Int, typesystem.Int},
	"^":  {typesystem.Int, typesystem.Int},
	"<":  {typesystem.Int, typesystem.Bool},
	">":  {typesystem.Int, typesystem.Bool},
	"<=": {typesystem.Int, typesystem.Bool},
	">=": {typesystem.Int, typesystem.Bool},
	"&&": {typesystem.Bool, typesystem.Bool},
	"||": {typesystem.Bool, typesystem.Bool},
}

func (a *Analyzer) checkInfixExpression(n *ast.InfixExpression) typesystem.Type {
	left := a.checkExpression(n.Left)
	right := a.checkExpression(n.Right)

	if n.Operator == "==" || n.Operator == "!=" {
		a.checkEquality(n, left, right)
		return typesystem.Bool
	}

	sig, ok := binaryOperators[n.Operator]
	if !ok {
		a.errorf(diagnostics.ErrT001, n.Token, "unknown operator `%s`", n.Operator)
		return typesystem.Error
	}
	if !typesystem.Compatible(sig.operand, left) || !typesystem.Compatible(sig.operand, right) {
		a.errorf(diagnostics.ErrT001, n.Token,
			"type mismatch: operator `%s` expects %s operands, got %s and %s", n.Operator, sig.operand, left, right)
	}
	return sig.result
}

// checkEquality allows == and != on two operands of the same scalar type.
func (a *Analyzer) checkEquality(n *ast.InfixExpression, left, right typesystem.Type) {
	if typesystem.IsError(left) || typesystem.IsError(right) ||
		typesystem.IsNever(left) || typesystem.IsNever(right) {
		return
	}
	if !typesystem.Equal(left, right) {
		a.errorf(diagnostics.ErrT001, n.Token, "type mismatch: cannot compare %s with %s", left, right)
		return
	}
	switch left {
	case typesystem.Int, typesystem.Bool, typesystem.String:
		return
	}
	a.errorf(diagnostics.ErrT001, n.Token, "type mismatch: operator `%s` is not defined for %s", n.Operator, left)
}

func (a *Analyzer) checkFunctionLiteral(fl *ast.FunctionLiteral) typesystem.Type {
	sig := a.signature(fl.Parameters, fl.ReturnType)
	for i, p := range fl.Parameters {
		a.declare(p.Name, sig.Params[i])
	}
	a.pushFrame(sig.ReturnType)
	bodyType := a.checkBlock(fl.Body)
	a.popFrame()
	a.checkBodyResult("closure", fl.Body, sig.ReturnType, bodyType)
	return sig
}
