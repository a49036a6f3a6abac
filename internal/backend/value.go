package backend

import (
	"fmt"
	"strings"

	"github.com/funvibe/valang/internal/ir"
)

// Value is a runtime value of the interpreter.
type Value interface {
	Inspect() string
}

type Int int64

func (v Int) Inspect() string { return fmt.Sprintf("%d", int64(v)) }

type Bool bool

func (v Bool) Inspect() string { return fmt.Sprintf("%t", bool(v)) }

type String string

func (v String) Inspect() string { return fmt.Sprintf("%q", string(v)) }

type Unit struct{}

func (Unit) Inspect() string { return "()" }

// Struct is a struct record; Fields follow the layout's slot order.
type Struct struct {
	Layout *ir.Layout
	Fields []Value
}

func (s *Struct) Inspect() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = s.Layout.Fields[i] + ": " + f.Inspect()
	}
	return s.Layout.Name + " { " + strings.Join(parts, ", ") + " }"
}

// Variant is an enum record: a tag and the payload of that variant.
type Variant struct {
	Layout  *ir.Layout
	Tag     int
	Payload []Value
}

func (v *Variant) Inspect() string {
	name := fmt.Sprintf("#%d", v.Tag)
	for _, vl := range v.Layout.Variants {
		if vl.Tag == v.Tag {
			name = vl.Name
		}
	}
	s := v.Layout.Name + "::" + name
	if len(v.Payload) == 0 {
		return s
	}
	parts := make([]string, len(v.Payload))
	for i, p := range v.Payload {
		parts[i] = p.Inspect()
	}
	return s + "(" + strings.Join(parts, ", ") + ")"
}

// Closure is a function value with its captured slots.
type Closure struct {
	Function *ir.Function
	Captures []Value
}

func (c *Closure) Inspect() string { return "<fn " + c.Function.Name + ">" }

// Cell is the shared box of a `var` captured by a closure.
type Cell struct {
	Value Value
}

func (c *Cell) Inspect() string { return "<cell " + c.Value.Inspect() + ">" }

func constant(c ir.Value) Value {
	switch c.Kind {
	case ir.IntValue:
		return Int(c.Int)
	case ir.BoolValue:
		return Bool(c.Bool)
	case ir.StringValue:
		return String(c.Str)
	}
	return Unit{}
}
