package resolver

import (
	"fmt"

	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/pipeline"
	"github.com/funvibe/valang/internal/symbols"
	"github.com/funvibe/valang/internal/token"
)

// Resolver links every identifier reference to its declaring symbol.
type Resolver struct {
	ctx     *pipeline.PipelineContext
	globals *symbols.Scope
	scope   *symbols.Scope

	// frames is the stack of enclosing function and closure nodes.
	frames []ast.Node
}

func New(ctx *pipeline.PipelineContext) *Resolver {
	globals := symbols.NewScope(symbols.NewPrelude(), symbols.ScopeGlobal, nil)
	return &Resolver{ctx: ctx, globals: globals, scope: globals}
}

// Globals returns the unit's top-level scope.
func (r *Resolver) Globals() *symbols.Scope { return r.globals }

// Resolve runs both passes over program.
func (r *Resolver) Resolve(program *ast.Program) {
	r.declareItems(program)
	for _, item := range program.Items {
		switch it := item.(type) {
		case *ast.FunctionStatement:
			r.resolveFunction(it)
		case *ast.StructStatement:
			for _, f := range it.Fields {
				r.resolveType(f.Type)
			}
		case *ast.EnumStatement:
			for _, v := range it.Variants {
				for _, f := range v.Fields {
					r.resolveType(f.Type)
				}
			}
		}
	}
}

func (r *Resolver) errorf(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) *diagnostics.DiagnosticError {
	err := diagnostics.NewError(code, tok, fmt.Sprintf(format, args...))
	r.ctx.AddError(err)
	return err
}

// define installs sym in the current scope, reporting a duplicate in the same scope.
func (r *Resolver) define(sym *symbols.Symbol, name *ast.Identifier) *symbols.Symbol {
	installed, ok := r.scope.Define(sym)
	if !ok {
		r.errorf(diagnostics.ErrR002, name.Token, "`%s` is already defined in this scope", sym.Name).
			WithRelated(installed.Token, "first defined here")
		return sym
	}
	r.ctx.Declarations[name] = installed
	return installed
}

// declareItems is the first pass: every top-level name is bound before any
// body is resolved, so items may refer to each other in any order.
func (r *Resolver) declareItems(program *ast.Program) {
	for _, item := range program.Items {
		switch it := item.(type) {
		case *ast.FunctionStatement:
			r.define(&symbols.Symbol{
				Name: it.Name.Value, Kind: symbols.FunctionSymbol, DefinitionNode: it, Token: it.Name.Token,
			}, it.Name)
		case *ast.StructStatement:
			r.define(&symbols.Symbol{
				Name: it.Name.Value, Kind: symbols.StructSymbol, DefinitionNode: it, Token: it.Name.Token,
			}, it.Name)
			checkDuplicateFields(r, it.Fields, "field")
		case *ast.EnumStatement:
			r.define(&symbols.Symbol{
				Name: it.Name.Value, Kind: symbols.EnumSymbol, DefinitionNode: it, Token: it.Name.Token,
			}, it.Name)
			seen := make(map[string]*ast.VariantDecl)
			for _, v := range it.Variants {
				if first, ok := seen[v.Name.Value]; ok {
					r.errorf(diagnostics.ErrR002, v.Token, "variant `%s` is already defined in enum `%s`", v.Name.Value, it.Name.Value).
						WithRelated(first.Token, "first defined here")
					continue
				}
				seen[v.Name.Value] = v
				checkDuplicateFields(r, v.Fields, "field of variant `"+v.Name.Value+"`")
			}
		}
	}
}

func checkDuplicateFields(r *Resolver, fields []*ast.FieldDecl, what string) {
	seen := make(map[string]*ast.FieldDecl)
	for _, f := range fields {
		if first, ok := seen[f.Name.Value]; ok {
			r.errorf(diagnostics.ErrR002, f.Token, "%s `%s` is already defined", what, f.Name.Value).
				WithRelated(first.Token, "first defined here")
			continue
		}
		seen[f.Name.Value] = f
	}
}

func (r *Resolver) pushScope(scopeType symbols.ScopeType, function ast.Node) {
	r.scope = symbols.NewScope(r.scope, scopeType, function)
}

func (r *Resolver) popScope() {
	r.scope = r.scope.Outer()
}

func (r *Resolver) resolveFunction(fn *ast.FunctionStatement) {
	r.frames = append(r.frames, fn)
	r.pushScope(symbols.ScopeFunction, fn)
	r.resolveParams(fn.Parameters)
	r.resolveType(fn.ReturnType)
	if fn.Body != nil {
		r.resolveBlock(fn.Body)
	}
	r.popScope()
	r.frames = r.frames[:len(r.frames)-1]
}

func (r *Resolver) resolveParams(params []*ast.Parameter) {
	for _, p := range params {
		r.resolveType(p.Type)
		r.define(&symbols.Symbol{
			Name: p.Name.Value, Kind: symbols.ParameterSymbol, Token: p.Name.Token,
		}, p.Name)
	}
}

// resolveType checks that every name in a type expression names a type.
func (r *Resolver) resolveType(t ast.Type) {
	switch tt := t.(type) {
	case *ast.NamedType:
		sym, ok := r.scope.Lookup(tt.Name.Value)
		if !ok || !sym.IsTypeName() {
			r.errorf(diagnostics.ErrR001, tt.Token, "undefined type `%s`", tt.Name.Value)
			r.ctx.Unresolved[tt.Name] = true
			return
		}
		r.ctx.Resolutions[tt.Name] = sym
	case *ast.FunctionType:
		for _, p := range tt.Parameters {
			r.resolveType(p)
		}
		r.resolveType(tt.ReturnType)
	}
}

func (r *Resolver) resolveBlock(block *ast.BlockExpression) {
	r.pushScope(symbols.ScopeBlock, nil)
	for _, stmt := range block.Statements {
		r.resolveStatement(stmt)
	}
	if block.Tail != nil {
		r.resolveExpression(block.Tail)
	}
	r.popScope()
}

func (r *Resolver) resolveStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarStatement:
		r.resolveType(s.TypeAnnotation)
		// the initializer cannot see the name it defines
		r.resolveExpression(s.Value)
		r.define(&symbols.Symbol{
			Name: s.Name.Value, Kind: symbols.VariableSymbol, Mutable: s.Mutable,
			DefinitionNode: s, Token: s.Name.Token,
		}, s.Name)
	case *ast.AssignStatement:
		r.resolveExpression(s.Target)
		r.resolveExpression(s.Value)
	case *ast.ReturnStatement:
		if s.Value != nil {
			r.resolveExpression(s.Value)
		}
	case *ast.ExpressionStatement:
		r.resolveExpression(s.Expression)
	}
}

func (r *Resolver) resolveExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.Identifier:
		r.resolveIdentifier(e)
	case *ast.PrefixExpression:
		r.resolveExpression(e.Right)
	case *ast.InfixExpression:
		r.resolveExpression(e.Left)
		r.resolveExpression(e.Right)
	case *ast.CallExpression:
		r.resolveExpression(e.Function)
		for _, a := range e.Arguments {
			r.resolveExpression(a)
		}
	case *ast.FieldAccessExpression:
		// the field name is checked against the type later
		r.resolveExpression(e.Left)
	case *ast.BlockExpression:
		r.resolveBlock(e)
	case *ast.IfExpression:
		for _, br := range e.Branches {
			r.resolveExpression(br.Condition)
			r.resolveBlock(br.Body)
		}
		r.resolveBlock(e.Else)
	case *ast.MatchExpression:
		r.resolveExpression(e.Subject)
		for _, arm := range e.Arms {
			r.pushScope(symbols.ScopeMatchArm, nil)
			r.resolvePattern(arm.Pattern)
			r.resolveBlock(arm.Body)
			r.popScope()
		}
	case *ast.FunctionLiteral:
		r.frames = append(r.frames, e)
		r.pushScope(symbols.ScopeFunction, e)
		r.resolveParams(e.Parameters)
		r.resolveType(e.ReturnType)
		r.resolveBlock(e.Body)
		r.popScope()
		r.frames = r.frames[:len(r.frames)-1]
	case *ast.StructLiteral:
		r.resolveTypeName(e.Name, symbols.StructSymbol, "struct")
		for _, f := range e.Fields {
			r.resolveExpression(f.Value)
		}
	case *ast.VariantExpression:
		r.resolveVariant(e.Enum, e.Variant)
		for _, a := range e.Arguments {
			r.resolveExpression(a)
		}
	}
}

func (r *Resolver) resolveIdentifier(id *ast.Identifier) {
	sym, ok := r.scope.Lookup(id.Value)
	if !ok {
		r.errorf(diagnostics.ErrR001, id.Token, "undefined name `%s`", id.Value)
		r.ctx.Unresolved[id] = true
		return
	}
	if sym.IsTypeName() {
		r.errorf(diagnostics.ErrR001, id.Token, "`%s` is a type, not a value", id.Value)
		r.ctx.Unresolved[id] = true
		return
	}
	r.ctx.Resolutions[id] = sym
	if sym.IsLocal() {
		r.recordCapture(sym)
	}
}

// recordCapture adds sym to the capture list of every closure between the
// current frame and the frame that declares sym.
func (r *Resolver) recordCapture(sym *symbols.Symbol) {
	owner := sym.Scope.Function
	for i := len(r.frames) - 1; i >= 0 && r.frames[i] != owner; i-- {
		fl, ok := r.frames[i].(*ast.FunctionLiteral)
		if !ok {
			continue
		}
		sym.Captured = true
		if !containsSymbol(r.ctx.Captures[fl], sym) {
			r.ctx.Captures[fl] = append(r.ctx.Captures[fl], sym)
		}
	}
}

func containsSymbol(list []*symbols.Symbol, sym *symbols.Symbol) bool {
	for _, s := range list {
		if s == sym {
			return true
		}
	}
	return false
}

// resolveTypeName resolves a struct or enum name used in a literal or pattern.
func (r *Resolver) resolveTypeName(name *ast.Identifier, kind symbols.SymbolKind, what string) *symbols.Symbol {
	sym, ok := r.scope.Lookup(name.Value)
	if !ok || sym.Kind != kind {
		r.errorf(diagnostics.ErrR001, name.Token, "undefined %s `%s`", what, name.Value)
		r.ctx.Unresolved[name] = true
		return nil
	}
	r.ctx.Resolutions[name] = sym
	return sym
}

// resolveVariant checks that enum names an enum declaring variant.
func (r *Resolver) resolveVariant(enum, variant *ast.Identifier) {
	sym := r.resolveTypeName(enum, symbols.EnumSymbol, "enum")
	if sym == nil {
		return
	}
	decl, ok := sym.DefinitionNode.(*ast.EnumStatement)
	if !ok {
		return
	}
	for _, v := range decl.Variants {
		if v.Name.Value == variant.Value {
			return
		}
	}
	r.errorf(diagnostics.ErrR001, variant.Token, "enum `%s` has no variant `%s`", enum.Value, variant.Value)
	r.ctx.Unresolved[variant] = true
}

// resolvePattern binds the names a pattern introduces in the current arm scope.
// Binding the same name twice in one pattern is a duplicate definition.
func (r *Resolver) resolvePattern(pat ast.Pattern) {
	switch p := pat.(type) {
	case *ast.BindingPattern:
		r.define(&symbols.Symbol{
			Name: p.Name.Value, Kind: symbols.VariableSymbol, DefinitionNode: p, Token: p.Name.Token,
		}, p.Name)
	case *ast.StructPattern:
		r.resolveTypeName(p.Name, symbols.StructSymbol, "struct")
		for _, f := range p.Fields {
			r.resolvePattern(f.Pattern)
		}
	case *ast.VariantPattern:
		r.resolveVariant(p.Enum, p.Variant)
		for _, e := range p.Elements {
			r.resolvePattern(e)
		}
	}
}
