package analyzer

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/typesystem"
)

// checkPattern checks pat against the subject type t and gives its bindings
// their types. It returns false if the pattern is ill-formed; such a pattern
// matches no value for coverage.
func (a *Analyzer) checkPattern(pat ast.Pattern, t typesystem.Type) bool {
	a.record(pat, t)
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return true
	case *ast.BindingPattern:
		a.declare(p.Name, t)
		return true
	case *ast.LiteralPattern:
		lt := literalType(p.Value)
		if unknownType(t) || typesystem.Equal(lt, t) {
			return true
		}
		a.errorf(diagnostics.ErrT001, p.Token, "type mismatch: pattern of type %s cannot match %s", lt, t)
		return false
	case *ast.StructPattern:
		return a.checkStructPattern(p, t)
	case *ast.VariantPattern:
		return a.checkVariantPattern(p, t)
	}
	return false
}

func unknownType(t typesystem.Type) bool {
	return typesystem.IsError(t) || typesystem.IsNever(t)
}

func literalType(v interface{}) typesystem.Type {
	switch v.(type) {
	case int64:
		return typesystem.Int
	case bool:
		return typesystem.Bool
	case string:
		return typesystem.String
	}
	return typesystem.Error
}

// poison types the bindings of sub-patterns that cannot be checked.
func (a *Analyzer) poison(pats ...ast.Pattern) {
	for _, p := range pats {
		a.checkPattern(p, typesystem.Error)
	}
}

func (a *Analyzer) checkStructPattern(p *ast.StructPattern, t typesystem.Type) bool {
	sym := a.symbolOf(p.Name)
	var info *typesystem.StructInfo
	if sym != nil {
		info = a.types.Struct(sym.Type)
	}
	if info == nil {
		for _, f := range p.Fields {
			a.poison(f.Pattern)
		}
		return false
	}

	ok := true
	if !unknownType(t) && !typesystem.Equal(t, sym.Type) {
		a.errorf(diagnostics.ErrT001, p.Token, "type mismatch: pattern `%s { .. }` cannot match %s", info.Name, t)
		ok = false
	}

	seen := make(map[string]*ast.FieldPattern)
	for _, f := range p.Fields {
		name := f.Name.Value
		if first, dup := seen[name]; dup {
			a.errorf(diagnostics.ErrR002, f.Token, "field `%s` is matched more than once", name).
				WithRelated(first.Token, "first matched here")
			a.poison(f.Pattern)
			ok = false
			continue
		}
		seen[name] = f
		idx := info.FieldIndex(name)
		if idx < 0 {
			a.errorf(diagnostics.ErrR001, f.Token, "undefined field: struct `%s` has no field `%s`", info.Name, name)
			a.poison(f.Pattern)
			ok = false
			continue
		}
		if !a.checkPattern(f.Pattern, info.Fields[idx].Type) {
			ok = false
		}
	}
	return ok
}

func (a *Analyzer) checkVariantPattern(p *ast.VariantPattern, t typesystem.Type) bool {
	sym := a.symbolOf(p.Enum)
	var info *typesystem.EnumInfo
	if sym != nil && !a.ctx.Unresolved[p.Variant] {
		info = a.types.Enum(sym.Type)
	}
	var variant *typesystem.VariantInfo
	if info != nil {
		variant = info.Variant(p.Variant.Value)
	}
	if variant == nil {
		a.poison(p.Elements...)
		return false
	}

	ok := true
	if !unknownType(t) && !typesystem.Equal(t, sym.Type) {
		a.errorf(diagnostics.ErrT001, p.Token, "type mismatch: pattern `%s::%s` cannot match %s", info.Name, variant.Name, t)
		ok = false
	}
	if len(p.Elements) != len(variant.Fields) {
		a.errorf(diagnostics.ErrT003, p.Variant.Token, "arity mismatch: variant `%s::%s` has %d %s, pattern has %d",
			info.Name, variant.Name, len(variant.Fields), plural(len(variant.Fields), "field"), len(p.Elements))
		ok = false
	}
	for i, e := range p.Elements {
		if i >= len(variant.Fields) {
			a.poison(e)
			continue
		}
		if !a.checkPattern(e, variant.Fields[i].Type) {
			ok = false
		}
	}
	return ok
}
