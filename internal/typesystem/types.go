package typesystem

import (
	"strings"

	"github.com/funvibe/valang/internal/config"
)

// Type is the interface for all types in our system.
type Type interface {
	String() string
	typeNode()
}

// TCon is a built-in scalar type: Int, Bool, Unit or String.
type TCon struct {
	Name string
}

func (t TCon) String() string { return t.Name }
func (t TCon) typeNode()      {}

// TStruct is a declared struct type. Equality is by name.
type TStruct struct {
	Name string
}

func (t TStruct) String() string { return t.Name }
func (t TStruct) typeNode()      {}

// TEnum is a declared enum type. Equality is by name.
type TEnum struct {
	Name string
}

func (t TEnum) String() string { return t.Name }
func (t TEnum) typeNode()      {}

// TFunc is a function type. Equality is structural.
type TFunc struct {
	Params     []Type
	ReturnType Type
}

func (t TFunc) String() string {
	var b strings.Builder
	b.WriteString("fn(")
	for i, p := range t.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(") -> ")
	b.WriteString(t.ReturnType.String())
	return b.String()
}
func (t TFunc) typeNode() {}

// TNever is the type of an expression that never produces a value,
// such as a block ending in `return`. It is compatible with every type.
type TNever struct{}

func (TNever) String() string { return "Never" }
func (TNever) typeNode()      {}

// TError is the type of an expression that already failed to check.
// It is compatible with every type so one mistake is reported once.
type TError struct{}

func (TError) String() string { return "<error>" }
func (TError) typeNode()      {}

var (
	Int    Type = TCon{Name: config.IntTypeName}
	Bool   Type = TCon{Name: config.BoolTypeName}
	Unit   Type = TCon{Name: config.UnitTypeName}
	String Type = TCon{Name: config.StringTypeName}
	Never  Type = TNever{}
	Error  Type = TError{}
)

// Builtin returns the built-in type with the given name.
func Builtin(name string) (Type, bool) {
	switch name {
	case config.IntTypeName:
		return Int, true
	case config.BoolTypeName:
		return Bool, true
	case config.UnitTypeName:
		return Unit, true
	case config.StringTypeName:
		return String, true
	}
	return nil, false
}

func IsError(t Type) bool {
	_, ok := t.(TError)
	return ok || t == nil
}

func IsNever(t Type) bool {
	_, ok := t.(TNever)
	return ok
}
