package analyzer

import (
	"sort"
	"strings"

	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/typesystem"
)

func (a *Analyzer) checkCallExpression(n *ast.CallExpression) typesystem.Type {
	calleeType := a.checkExpression(n.Function)
	argTypes := make([]typesystem.Type, len(n.Arguments))
	for i, arg := range n.Arguments {
		argTypes[i] = a.checkExpression(arg)
	}

	if typesystem.IsError(calleeType) || typesystem.IsNever(calleeType) {
		return typesystem.Error
	}
	ft, ok := calleeType.(typesystem.TFunc)
	if !ok {
		a.errorf(diagnostics.ErrT001, n.Function.GetToken(),
			"type mismatch: cannot call a value of type %s", calleeType)
		return typesystem.Error
	}
	if len(n.Arguments) != len(ft.Params) {
		a.errorf(diagnostics.ErrT003, n.Token,
			"arity mismatch: %s expects %d %s, got %d", describeCallee(n.Function), len(ft.Params), plural(len(ft.Params), "argument"), len(n.Arguments))
		return ft.ReturnType
	}
	for i, arg := range n.Arguments {
		if !typesystem.Compatible(ft.Params[i], argTypes[i]) {
			a.errorf(diagnostics.ErrT001, arg.GetToken(),
				"type mismatch: argument %d of %s expects %s, got %s", i+1, describeCallee(n.Function), ft.Params[i], argTypes[i])
		}
	}
	return ft.ReturnType
}

func describeCallee(e ast.Expression) string {
	if id, ok := e.(*ast.Identifier); ok {
		return "`" + id.Value + "`"
	}
	return "function"
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// checkFieldAccess types `e.f`. Enums expose a field only when every
// variant declares it with the same type.
func (a *Analyzer) checkFieldAccess(n *ast.FieldAccessExpression) typesystem.Type {
	left := a.checkExpression(n.Left)
	if typesystem.IsError(left) || typesystem.IsNever(left) {
		return typesystem.Error
	}
	name := n.Field.Value
	if info := a.types.Struct(left); info != nil {
		if i := info.FieldIndex(name); i >= 0 {
			return info.Fields[i].Type
		}
		a.errorf(diagnostics.ErrR001, n.Field.Token, "undefined field: struct `%s` has no field `%s`", info.Name, name)
		return typesystem.Error
	}
	if info := a.types.Enum(left); info != nil {
		if t, ok := info.SharedField(name); ok {
			return t
		}
		a.errorf(diagnostics.ErrR001, n.Field.Token,
			"undefined field: `%s` is not declared with one type by every variant of `%s`", name, info.Name)
		return typesystem.Error
	}
	a.errorf(diagnostics.ErrR001, n.Field.Token, "undefined field: type %s has no field `%s`", left, name)
	return typesystem.Error
}

func (a *Analyzer) checkStructLiteral(n *ast.StructLiteral) typesystem.Type {
	valueTypes := make([]typesystem.Type, len(n.Fields))
	for i, f := range n.Fields {
		valueTypes[i] = a.checkExpression(f.Value)
	}

	sym := a.symbolOf(n.Name)
	if sym == nil || sym.Type == nil {
		return typesystem.Error
	}
	info := a.types.Struct(sym.Type)
	if info == nil {
		return typesystem.Error
	}

	seen := make(map[string]*ast.FieldInit)
	for i, f := range n.Fields {
		name := f.Name.Value
		if first, ok := seen[name]; ok {
			a.errorf(diagnostics.ErrR002, f.Token, "field `%s` is specified more than once", name).
				WithRelated(first.Token, "first specified here")
			continue
		}
		seen[name] = f
		idx := info.FieldIndex(name)
		if idx < 0 {
			a.errorf(diagnostics.ErrR001, f.Token, "undefined field: struct `%s` has no field `%s`", info.Name, name)
			continue
		}
		if !typesystem.Compatible(info.Fields[idx].Type, valueTypes[i]) {
			a.errorf(diagnostics.ErrT001, f.Value.GetToken(),
				"type mismatch: field `%s` of `%s` expects %s, got %s", name, info.Name, info.Fields[idx].Type, valueTypes[i])
		}
	}

	var missing []string
	for _, field := range info.Fields {
		if _, ok := seen[field.Name]; !ok {
			missing = append(missing, "`"+field.Name+"`")
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		a.errorf(diagnostics.ErrT001, n.Token, "type mismatch: missing %s %s in `%s` literal",
			plural(len(missing), "field"), strings.Join(missing, ", "), info.Name)
	}
	return sym.Type
}

func (a *Analyzer) checkVariantExpression(n *ast.VariantExpression) typesystem.Type {
	argTypes := make([]typesystem.Type, len(n.Arguments))
	for i, arg := range n.Arguments {
		argTypes[i] = a.checkExpression(arg)
	}

	sym := a.symbolOf(n.Enum)
	if sym == nil || sym.Type == nil || a.ctx.Unresolved[n.Variant] {
		return typesystem.Error
	}
	info := a.types.Enum(sym.Type)
	if info == nil {
		return typesystem.Error
	}
	variant := info.Variant(n.Variant.Value)
	if variant == nil {
		return typesystem.Error
	}

	if len(n.Arguments) != len(variant.Fields) {
		a.errorf(diagnostics.ErrT003, n.Variant.Token,
			"arity mismatch: variant `%s::%s` has %d %s, got %d", info.Name, variant.Name,
			len(variant.Fields), plural(len(variant.Fields), "field"), len(n.Arguments))
		return sym.Type
	}
	for i, arg := range n.Arguments {
		field := variant.Fields[i]
		if !typesystem.Compatible(field.Type, argTypes[i]) {
			a.errorf(diagnostics.ErrT001, arg.GetToken(),
				"type mismatch: field `%s` of `%s::%s` expects %s, got %s", field.Name, info.Name, variant.Name, field.Type, argTypes[i])
		}
	}
	return sym.Type
}
