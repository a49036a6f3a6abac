package analyzer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/typesystem"
)

// Coverage is computed with the usefulness algorithm over constructor
// signatures. A row of patterns is useful with respect to a matrix when some
// value matches the row and no row of the matrix; the value found is the witness.

type ctorKind int

const (
	variantCtor ctorKind = iota
	boolCtor
	structCtor
	intCtor
	stringCtor
)

// constructor is the head of a pattern: an enum variant, a Bool value,
// a struct, or one literal of an infinite domain.
type constructor struct {
	kind  ctorKind
	index int         // variant tag; 1 for true
	value interface{} // Int or String literal
}

func (c *constructor) same(o *constructor) bool {
	return c.kind == o.kind && c.index == o.index && c.value == o.value
}

// pattern is a type-erased pattern; a nil ctor is a wildcard.
type pattern struct {
	ctor *constructor
	args []*pattern
}

var wildcard = &pattern{}

func wildcards(n int) []*pattern {
	ps := make([]*pattern, n)
	for i := range ps {
		ps[i] = wildcard
	}
	return ps
}

type coverage struct {
	types *typesystem.Registry
}

// signature lists every constructor of t. finite is false for types whose
// values cannot be enumerated (Int, String, Unit, functions).
func (c *coverage) signature(t typesystem.Type) (ctors []*constructor, finite bool) {
	if info := c.types.Enum(t); info != nil {
		for _, v := range info.Variants {
			ctors = append(ctors, &constructor{kind: variantCtor, index: v.Tag})
		}
		return ctors, true
	}
	if c.types.Struct(t) != nil {
		return []*constructor{{kind: structCtor}}, true
	}
	if typesystem.Equal(t, typesystem.Bool) {
		return []*constructor{{kind: boolCtor, index: 0}, {kind: boolCtor, index: 1}}, true
	}
	return nil, false
}

// fieldTypes returns the types of the sub-patterns of k at type t.
func (c *coverage) fieldTypes(k *constructor, t typesystem.Type) []typesystem.Type {
	var fields []typesystem.Field
	switch k.kind {
	case variantCtor:
		if info := c.types.Enum(t); info != nil && k.index < len(info.Variants) {
			fields = info.Variants[k.index].Fields
		}
	case structCtor:
		if info := c.types.Struct(t); info != nil {
			fields = info.Fields
		}
	}
	types := make([]typesystem.Type, len(fields))
	for i, f := range fields {
		types[i] = f.Type
	}
	return types
}

// lower erases an already checked pattern against its type.
func (c *coverage) lower(p ast.Pattern, t typesystem.Type) *pattern {
	switch p := p.(type) {
	case *ast.LiteralPattern:
		switch v := p.Value.(type) {
		case bool:
			idx := 0
			if v {
				idx = 1
			}
			return &pattern{ctor: &constructor{kind: boolCtor, index: idx}}
		case int64:
			return &pattern{ctor: &constructor{kind: intCtor, value: v}}
		case string:
			return &pattern{ctor: &constructor{kind: stringCtor, value: v}}
		}
	case *ast.StructPattern:
		info := c.types.Struct(t)
		if info == nil {
			return wildcard
		}
		args := wildcards(len(info.Fields))
		for _, f := range p.Fields {
			if i := info.FieldIndex(f.Name.Value); i >= 0 {
				args[i] = c.lower(f.Pattern, info.Fields[i].Type)
			}
		}
		return &pattern{ctor: &constructor{kind: structCtor}, args: args}
	case *ast.VariantPattern:
		info := c.types.Enum(t)
		if info == nil {
			return wildcard
		}
		v := info.Variant(p.Variant.Value)
		if v == nil {
			return wildcard
		}
		args := wildcards(len(v.Fields))
		for i, e := range p.Elements {
			if i < len(args) {
				args[i] = c.lower(e, v.Fields[i].Type)
			}
		}
		return &pattern{ctor: &constructor{kind: variantCtor, index: v.Tag}, args: args}
	}
	return wildcard
}

// specializeRow keeps row if its head can match k, replacing the head with
// k's n sub-patterns. It returns nil if the head is a different constructor.
func specializeRow(row []*pattern, k *constructor, n int) []*pattern {
	head := row[0]
	out := make([]*pattern, 0, n+len(row)-1)
	switch {
	case head.ctor == nil:
		out = append(out, wildcards(n)...)
	case head.ctor.same(k):
		out = append(out, head.args...)
	default:
		return nil
	}
	return append(out, row[1:]...)
}

func specialize(rows [][]*pattern, k *constructor, n int) [][]*pattern {
	var out [][]*pattern
	for _, row := range rows {
		if s := specializeRow(row, k, n); s != nil {
			out = append(out, s)
		}
	}
	return out
}

// defaultRows keeps the rows whose head is a wildcard, without the head.
func defaultRows(rows [][]*pattern) [][]*pattern {
	var out [][]*pattern
	for _, row := range rows {
		if row[0].ctor == nil {
			out = append(out, row[1:])
		}
	}
	return out
}

func headCtors(rows [][]*pattern) []*constructor {
	var used []*constructor
	for _, row := range rows {
		if k := row[0].ctor; k != nil && !containsCtor(used, k) {
			used = append(used, k)
		}
	}
	return used
}

func containsCtor(list []*constructor, k *constructor) bool {
	for _, c := range list {
		if c.same(k) {
			return true
		}
	}
	return false
}

// useful reports whether q matches a value no row of rows matches, and
// returns such a value as a witness vector.
func (c *coverage) useful(rows [][]*pattern, q []*pattern, types []typesystem.Type) ([]*pattern, bool) {
	if len(q) == 0 {
		return nil, len(rows) == 0
	}
	if k := q[0].ctor; k != nil {
		return c.usefulCtor(rows, q, types, k)
	}

	domain, finite := c.signature(types[0])
	used := headCtors(rows)
	complete := finite
	for _, k := range domain {
		if !containsCtor(used, k) {
			complete = false
			break
		}
	}
	if complete {
		for _, k := range domain {
			if w, ok := c.usefulCtor(rows, q, types, k); ok {
				return w, true
			}
		}
		return nil, false
	}

	w, ok := c.useful(defaultRows(rows), q[1:], types[1:])
	if !ok {
		return nil, false
	}
	head := wildcard
	if finite && len(used) > 0 {
		for _, k := range domain {
			if !containsCtor(used, k) {
				head = &pattern{ctor: k, args: wildcards(len(c.fieldTypes(k, types[0])))}
				break
			}
		}
	}
	return append([]*pattern{head}, w...), true
}

func (c *coverage) usefulCtor(rows [][]*pattern, q []*pattern, types []typesystem.Type, k *constructor) ([]*pattern, bool) {
	fields := c.fieldTypes(k, types[0])
	n := len(fields)
	sub := make([]typesystem.Type, 0, n+len(types)-1)
	sub = append(append(sub, fields...), types[1:]...)

	w, ok := c.useful(specialize(rows, k, n), specializeRow(q, k, n), sub)
	if !ok {
		return nil, false
	}
	return append([]*pattern{{ctor: k, args: w[:n]}}, w[n:]...), true
}

// checkCoverage reports unreachable arms and, if some value is matched by no
// arm, a non-exhaustive match naming what is missing. Arms that are not
// wellTyped match nothing: they add no row and are never reported unreachable.
func (a *Analyzer) checkCoverage(n *ast.MatchExpression, subject typesystem.Type, wellTyped []bool) {
	c := &coverage{types: a.types}
	types := []typesystem.Type{subject}

	var rows [][]*pattern
	for i, arm := range n.Arms {
		if !wellTyped[i] {
			continue
		}
		row := []*pattern{c.lower(arm.Pattern, subject)}
		if _, ok := c.useful(rows, row, types); !ok {
			a.warnf(diagnostics.WarnW001, arm.Pattern.GetToken(),
				"unreachable pattern: every value it matches is matched by an earlier arm")
		}
		rows = append(rows, row)
	}

	var variants, witnesses []string
	if info := a.types.Enum(subject); info != nil {
		for _, v := range info.Variants {
			k := &constructor{kind: variantCtor, index: v.Tag}
			w, ok := c.usefulCtor(rows, []*pattern{wildcard}, types, k)
			if !ok {
				continue
			}
			if allWildcards(w[0].args) {
				variants = append(variants, "`"+v.Name+"`")
			} else {
				witnesses = append(witnesses, "`"+c.describe(w[0], subject)+"`")
			}
		}
	} else if w, ok := c.useful(rows, []*pattern{wildcard}, types); ok {
		witnesses = append(witnesses, "`"+c.describe(w[0], subject)+"`")
	}

	var parts []string
	switch len(variants) {
	case 0:
	case 1:
		parts = append(parts, "missing pattern for variant "+variants[0])
	default:
		parts = append(parts, "missing patterns for variants "+strings.Join(variants, ", "))
	}
	if len(witnesses) > 0 {
		parts = append(parts, fmt.Sprintf("%s %s not covered", plural(len(witnesses), "pattern"), strings.Join(witnesses, ", ")))
	}
	if len(parts) > 0 {
		a.errorf(diagnostics.ErrT004, n.Token, "non-exhaustive match: %s", strings.Join(parts, "; "))
	}
}

func allWildcards(ps []*pattern) bool {
	for _, p := range ps {
		if p.ctor != nil {
			return false
		}
	}
	return true
}

// describe renders a witness in source syntax.
func (c *coverage) describe(p *pattern, t typesystem.Type) string {
	if p.ctor == nil {
		return "_"
	}
	k := p.ctor
	fields := c.fieldTypes(k, t)
	args := make([]string, len(p.args))
	for i, arg := range p.args {
		args[i] = c.describe(arg, fields[i])
	}
	switch k.kind {
	case boolCtor:
		return strconv.FormatBool(k.index == 1)
	case intCtor:
		return fmt.Sprintf("%d", k.value)
	case stringCtor:
		return strconv.Quote(k.value.(string))
	case structCtor:
		info := c.types.Struct(t)
		parts := make([]string, len(args))
		for i, arg := range args {
			parts[i] = info.Fields[i].Name + ": " + arg
		}
		return info.Name + " { " + strings.Join(parts, ", ") + " }"
	case variantCtor:
		info := c.types.Enum(t)
		name := info.Name + "::" + info.Variants[k.index].Name
		if len(args) == 0 {
			return name
		}
		return name + "(" + strings.Join(args, ", ") + ")"
	}
	return "_"
}
