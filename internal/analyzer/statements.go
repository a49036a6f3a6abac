package analyzer

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/symbols"
	"github.com/funvibe/valang/internal/typesystem"
)

func (a *Analyzer) checkFunction(fn *ast.FunctionStatement) {
	sig := a.signature(fn.Parameters, fn.ReturnType)
	for i, p := range fn.Parameters {
		a.declare(p.Name, sig.Params[i])
	}
	if fn.Body == nil {
		return
	}
	a.pushFrame(sig.ReturnType)
	bodyType := a.checkBlock(fn.Body)
	a.popFrame()
	a.checkBodyResult("function `"+fn.Name.Value+"`", fn.Body, sig.ReturnType, bodyType)
}

// checkBodyResult checks the value a function body falls off with against
// the declared return type.
func (a *Analyzer) checkBodyResult(what string, body *ast.BlockExpression, ret, bodyType typesystem.Type) {
	if typesystem.Compatible(ret, bodyType) {
		return
	}
	if body.Tail != nil {
		a.errorf(diagnostics.ErrT001, body.Tail.GetToken(),
			"type mismatch: %s returns %s, but its body evaluates to %s", what, ret, bodyType)
		return
	}
	a.errorf(diagnostics.ErrT001, body.RBraceToken,
		"type mismatch: %s returns %s, but its body ends without a value", what, ret)
}

// checkBlock returns the block's type: its tail, Never if some statement
// always leaves the function, Unit otherwise.
func (a *Analyzer) checkBlock(block *ast.BlockExpression) typesystem.Type {
	diverges := false
	for _, stmt := range block.Statements {
		if typesystem.IsNever(a.checkStatement(stmt)) {
			diverges = true
		}
	}
	result := typesystem.Unit
	if block.Tail != nil {
		result = a.checkExpression(block.Tail)
	}
	if diverges {
		result = typesystem.Never
	}
	return a.record(block, result)
}

func (a *Analyzer) checkStatement(stmt ast.Statement) typesystem.Type {
	switch s := stmt.(type) {
	case *ast.VarStatement:
		a.checkVarStatement(s)
	case *ast.AssignStatement:
		a.checkAssignStatement(s)
	case *ast.ReturnStatement:
		a.checkReturnStatement(s)
		return typesystem.Never
	case *ast.ExpressionStatement:
		var t typesystem.Type
		switch e := s.Expression.(type) {
		case *ast.IfExpression:
			t = a.checkIfExpression(e, true)
		case *ast.MatchExpression:
			t = a.checkMatchExpression(e, true)
		default:
			t = a.checkExpression(e)
		}
		if typesystem.IsNever(t) {
			return t
		}
	}
	return typesystem.Unit
}

func (a *Analyzer) checkVarStatement(s *ast.VarStatement) {
	valueType := a.checkExpression(s.Value)
	declared := valueType
	if s.TypeAnnotation != nil {
		declared = a.typeFromAST(s.TypeAnnotation)
		if !typesystem.Compatible(declared, valueType) {
			a.errorf(diagnostics.ErrT001, s.Value.GetToken(),
				"type mismatch: `%s` is declared as %s, but its initializer has type %s", s.Name.Value, declared, valueType)
		}
	}
	a.declare(s.Name, declared)
}

func (a *Analyzer) checkAssignStatement(s *ast.AssignStatement) {
	valueType := a.checkExpression(s.Value)

	var targetType typesystem.Type
	switch target := s.Target.(type) {
	case *ast.Identifier:
		targetType = a.checkExpression(target)
		sym := a.symbolOf(target)
		if sym == nil {
			return
		}
		if !a.checkMutable(target, sym) {
			return
		}
	case *ast.FieldAccessExpression:
		a.checkExpression(target)
		a.errorf(diagnostics.ErrT002, target.Field.Token,
			"cannot assign to field `%s`: struct fields are immutable", target.Field.Value)
		return
	default:
		a.checkExpression(target)
		a.errorf(diagnostics.ErrT001, target.GetToken(), "invalid assignment target")
		return
	}

	if !s.IsCompound() {
		if !typesystem.Compatible(targetType, valueType) {
			a.errorf(diagnostics.ErrT001, s.Value.GetToken(),
				"type mismatch: cannot assign %s to `%s` of type %s", valueType, s.Target.(*ast.Identifier).Value, targetType)
		}
		return
	}

	// x op= y checks as x = x op y, which is defined for Int only
	if !typesystem.Compatible(typesystem.Int, targetType) {
		a.errorf(diagnostics.ErrT001, s.Target.GetToken(),
			"type mismatch: operator `%s` requires an Int target, got %s", s.Operator, targetType)
		return
	}
	if !typesystem.Compatible(typesystem.Int, valueType) {
		a.errorf(diagnostics.ErrT001, s.Value.GetToken(),
			"type mismatch: operator `%s` requires an Int operand, got %s", s.Operator, valueType)
	}
}

// checkMutable reports an assignment to anything but a `var` binding.
func (a *Analyzer) checkMutable(target *ast.Identifier, sym *symbols.Symbol) bool {
	if sym.Kind == symbols.VariableSymbol && sym.Mutable {
		return true
	}
	var err *diagnostics.DiagnosticError
	switch sym.Kind {
	case symbols.ParameterSymbol:
		err = a.errorf(diagnostics.ErrT002, target.Token, "cannot assign to parameter `%s`", sym.Name)
	case symbols.FunctionSymbol:
		err = a.errorf(diagnostics.ErrT002, target.Token, "cannot assign to function `%s`", sym.Name)
	default:
		err = a.errorf(diagnostics.ErrT002, target.Token,
			"cannot assign twice to immutable binding `%s`; declare it with `var` to allow mutation", sym.Name)
	}
	if len(err.Related) == 0 && sym.Token.Line > 0 {
		err.WithRelated(sym.Token, "declared here")
	}
	return false
}

func (a *Analyzer) checkReturnStatement(s *ast.ReturnStatement) {
	expected := a.returnType()
	actual := typesystem.Unit
	tok := s.Token
	if s.Value != nil {
		actual = a.checkExpression(s.Value)
		tok = s.Value.GetToken()
	}
	if !typesystem.Compatible(expected, actual) {
		a.errorf(diagnostics.ErrT001, tok, "type mismatch: return expects %s, got %s", expected, actual)
	}
}
