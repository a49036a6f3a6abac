package analyzer

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/symbols"
	"github.com/funvibe/valang/internal/typesystem"
)

// declareTypes gives every struct and enum its nominal type, then builds the
// field layouts. Names are bound first so fields may refer to any type.
func (a *Analyzer) declareTypes(program *ast.Program) {
	for _, item := range program.Items {
		switch it := item.(type) {
		case *ast.StructStatement:
			a.declare(it.Name, typesystem.TStruct{Name: it.Name.Value})
		case *ast.EnumStatement:
			a.declare(it.Name, typesystem.TEnum{Name: it.Name.Value})
		}
	}

	for _, item := range program.Items {
		switch it := item.(type) {
		case *ast.StructStatement:
			if a.ctx.Declarations[it.Name] == nil {
				continue // duplicate, already reported
			}
			a.types.AddStruct(&typesystem.StructInfo{
				Name:   it.Name.Value,
				Fields: a.buildFields(it.Fields),
			})
		case *ast.EnumStatement:
			if a.ctx.Declarations[it.Name] == nil {
				continue
			}
			info := &typesystem.EnumInfo{Name: it.Name.Value}
			seen := make(map[string]bool)
			for _, v := range it.Variants {
				if seen[v.Name.Value] {
					continue
				}
				seen[v.Name.Value] = true
				info.Variants = append(info.Variants, &typesystem.VariantInfo{
					Name:   v.Name.Value,
					Tag:    len(info.Variants),
					Fields: a.buildFields(v.Fields),
				})
			}
			a.types.AddEnum(info)
		}
	}
}

func (a *Analyzer) buildFields(decls []*ast.FieldDecl) []typesystem.Field {
	fields := make([]typesystem.Field, 0, len(decls))
	seen := make(map[string]bool)
	for _, f := range decls {
		if seen[f.Name.Value] {
			continue
		}
		seen[f.Name.Value] = true
		fields = append(fields, typesystem.Field{Name: f.Name.Value, Type: a.typeFromAST(f.Type)})
	}
	return fields
}

// declareFunctions sets the signature of every top-level function.
func (a *Analyzer) declareFunctions(program *ast.Program) {
	for _, item := range program.Items {
		if fn, ok := item.(*ast.FunctionStatement); ok {
			a.declare(fn.Name, a.signature(fn.Parameters, fn.ReturnType))
		}
	}
}

func (a *Analyzer) signature(params []*ast.Parameter, ret ast.Type) typesystem.TFunc {
	ft := typesystem.TFunc{Params: make([]typesystem.Type, len(params))}
	for i, p := range params {
		ft.Params[i] = a.typeFromAST(p.Type)
	}
	ft.ReturnType = a.typeFromAST(ret)
	return ft
}

// typeFromAST converts a type annotation. A missing annotation is Unit and
// a name the resolver could not bind is Error.
func (a *Analyzer) typeFromAST(t ast.Type) typesystem.Type {
	switch tt := t.(type) {
	case nil:
		return typesystem.Unit
	case *ast.NamedType:
		sym := a.symbolOf(tt.Name)
		if sym == nil || sym.Type == nil {
			return typesystem.Error
		}
		switch sym.Kind {
		case symbols.TypeSymbol, symbols.StructSymbol, symbols.EnumSymbol:
			return sym.Type
		}
		return typesystem.Error
	case *ast.FunctionType:
		ft := typesystem.TFunc{Params: make([]typesystem.Type, len(tt.Parameters))}
		for i, p := range tt.Parameters {
			ft.Params[i] = a.typeFromAST(p)
		}
		ft.ReturnType = a.typeFromAST(tt.ReturnType)
		return ft
	}
	return typesystem.Error
}
