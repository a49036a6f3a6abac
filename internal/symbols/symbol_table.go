package symbols

import (
	"sort"

	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/token"
	"github.com/funvibe/valang/internal/typesystem"
)

type SymbolKind int

const (
	FunctionSymbol SymbolKind = iota
	StructSymbol
	EnumSymbol
	VariableSymbol
	ParameterSymbol
	TypeSymbol // built-in type in the prelude
)

func (k SymbolKind) String() string {
	switch k {
	case FunctionSymbol:
		return "function"
	case StructSymbol:
		return "struct"
	case EnumSymbol:
		return "enum"
	case VariableSymbol:
		return "variable"
	case ParameterSymbol:
		return "parameter"
	case TypeSymbol:
		return "type"
	}
	return "unknown"
}

type ScopeType int

const (
	ScopePrelude ScopeType = iota // Built-in types
	ScopeGlobal                   // User code top-level
	ScopeFunction
	ScopeBlock
	ScopeMatchArm
)

type Symbol struct {
	Name    string
	Kind    SymbolKind
	Type    typesystem.Type // set by the type checker
	Mutable bool            // true only for `var` bindings
	Scope   *Scope          // declaring scope
	// DefinitionNode is the declaring AST node (function, struct, enum,
	// VarStatement, BindingPattern) or nil for parameters and built-ins.
	DefinitionNode ast.Node
	Token          token.Token // the declared name

	// Captured is set when a closure refers to this local binding.
	Captured bool
}

// IsLocal reports whether the symbol lives in a function frame.
func (s *Symbol) IsLocal() bool {
	return s.Kind == VariableSymbol || s.Kind == ParameterSymbol
}

// IsTypeName reports whether the symbol names a type.
func (s *Symbol) IsTypeName() bool {
	return s.Kind == StructSymbol || s.Kind == EnumSymbol || s.Kind == TypeSymbol
}

// Scope maps names to symbols. Lookup walks outward through non-owning outer links.
type Scope struct {
	store map[string]*Symbol
	outer *Scope
	Type  ScopeType
	// Function is the function or closure node whose frame owns the scope's
	// locals; nil for the prelude and global scopes.
	Function ast.Node
}

func NewScope(outer *Scope, scopeType ScopeType, function ast.Node) *Scope {
	if function == nil && outer != nil {
		function = outer.Function
	}
	return &Scope{store: make(map[string]*Symbol), outer: outer, Type: scopeType, Function: function}
}

// NewEnclosedScope opens a block scope in the same function.
func NewEnclosedScope(outer *Scope) *Scope {
	return NewScope(outer, ScopeBlock, nil)
}

// NewPrelude returns a scope holding the built-in type names.
func NewPrelude() *Scope {
	s := NewScope(nil, ScopePrelude, nil)
	for _, name := range []string{"Int", "Bool", "Unit", "String"} {
		t, _ := typesystem.Builtin(name)
		s.store[name] = &Symbol{Name: name, Kind: TypeSymbol, Type: t, Scope: s}
	}
	return s
}

func (s *Scope) Outer() *Scope { return s.outer }

// Define installs sym in this scope. If the name is already bound in this
// scope the existing symbol is returned and sym is not installed.
func (s *Scope) Define(sym *Symbol) (*Symbol, bool) {
	if existing, ok := s.store[sym.Name]; ok {
		return existing, false
	}
	sym.Scope = s
	s.store[sym.Name] = sym
	return sym, true
}

// Lookup finds the nearest binding of name.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for cur := s; cur != nil; cur = cur.outer {
		if sym, ok := cur.store[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupLocal finds name in this scope only.
func (s *Scope) LookupLocal(name string) (*Symbol, bool) {
	sym, ok := s.store[name]
	return sym, ok
}

// Names lists the names bound directly in this scope, sorted.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.store))
	for name := range s.store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
