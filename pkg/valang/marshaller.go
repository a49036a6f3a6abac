package valang

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/funvibe/valang/internal/backend"
	"github.com/funvibe/valang/internal/ir"
)

// Variant is the Go form of an enum value.
type Variant struct {
	Enum    string
	Name    string
	Payload []interface{}
}

// Marshaller converts between Go values and interpreter values. Struct and
// enum values are built against the layouts of module.
type Marshaller struct {
	module *ir.Module
}

// NewMarshaller returns a Marshaller for module. With a nil module only
// scalar values can be converted to interpreter values.
func NewMarshaller(module *ir.Module) *Marshaller {
	return &Marshaller{module: module}
}

// ToValue converts a Go integer, bool or string. nil becomes Unit. A
// map[string]interface{} becomes the struct whose field names are exactly its
// keys, and a Variant becomes the enum value it names.
func (m *Marshaller) ToValue(val interface{}) (backend.Value, error) {
	if val == nil {
		return backend.Unit{}, nil
	}
	switch v := val.(type) {
	case backend.Value:
		return v, nil
	case *Variant:
		return m.variantToValue(v)
	case Variant:
		return m.variantToValue(&v)
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return backend.Int(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return backend.Int(int64(v.Uint())), nil
	case reflect.Bool:
		return backend.Bool(v.Bool()), nil
	case reflect.String:
		return backend.String(v.String()), nil
	case reflect.Map:
		if fields, ok := val.(map[string]interface{}); ok {
			return m.mapToStruct(fields)
		}
	}
	return nil, fmt.Errorf("unsupported type for conversion: %T", val)
}

func (m *Marshaller) layouts() []*ir.Layout {
	if m.module == nil {
		return nil
	}
	return m.module.Layouts
}

func (m *Marshaller) mapToStruct(fields map[string]interface{}) (backend.Value, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var matches []*ir.Layout
	for _, l := range m.layouts() {
		if l.Kind == ir.StructLayout && sameFields(l.Fields, fields) {
			matches = append(matches, l)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no struct has fields {%s}", strings.Join(keys, ", "))
	case 1:
	default:
		names := make([]string, len(matches))
		for i, l := range matches {
			names[i] = l.Name
		}
		return nil, fmt.Errorf("fields {%s} match more than one struct: %s", strings.Join(keys, ", "), strings.Join(names, ", "))
	}

	layout := matches[0]
	out := &backend.Struct{Layout: layout, Fields: make([]backend.Value, len(layout.Fields))}
	for i, name := range layout.Fields {
		v, err := m.ToValue(fields[name])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		out.Fields[i] = v
	}
	return out, nil
}

func sameFields(names []string, fields map[string]interface{}) bool {
	if len(names) != len(fields) {
		return false
	}
	for _, n := range names {
		if _, ok := fields[n]; !ok {
			return false
		}
	}
	return true
}

func (m *Marshaller) variantToValue(v *Variant) (backend.Value, error) {
	var layout *ir.Layout
	if m.module != nil {
		layout = m.module.Layout(v.Enum)
	}
	if layout == nil || layout.Kind != ir.EnumLayout {
		return nil, fmt.Errorf("no enum named %s", v.Enum)
	}
	for _, vl := range layout.Variants {
		if vl.Name != v.Name {
			continue
		}
		if len(v.Payload) != len(vl.Fields) {
			return nil, fmt.Errorf("variant %s::%s has %d field(s), got %d", v.Enum, v.Name, len(vl.Fields), len(v.Payload))
		}
		out := &backend.Variant{Layout: layout, Tag: vl.Tag}
		for i, p := range v.Payload {
			pv, err := m.ToValue(p)
			if err != nil {
				return nil, fmt.Errorf("%s::%s field %s: %w", v.Enum, v.Name, vl.Fields[i], err)
			}
			out.Payload = append(out.Payload, pv)
		}
		return out, nil
	}
	return nil, fmt.Errorf("enum %s has no variant %s", v.Enum, v.Name)
}

// FromValue converts an interpreter value to Go. Ints become int64, structs
// become map[string]interface{}, enum values become Variant and closures are
// returned as they are.
func (m *Marshaller) FromValue(val backend.Value) (interface{}, error) {
	switch v := val.(type) {
	case nil, backend.Unit:
		return nil, nil
	case backend.Int:
		return int64(v), nil
	case backend.Bool:
		return bool(v), nil
	case backend.String:
		return string(v), nil
	case *backend.Struct:
		out := make(map[string]interface{}, len(v.Fields))
		for i, f := range v.Fields {
			gv, err := m.FromValue(f)
			if err != nil {
				return nil, err
			}
			out[v.Layout.Fields[i]] = gv
		}
		return out, nil
	case *backend.Variant:
		out := &Variant{Enum: v.Layout.Name}
		for _, vl := range v.Layout.Variants {
			if vl.Tag == v.Tag {
				out.Name = vl.Name
			}
		}
		for _, p := range v.Payload {
			gv, err := m.FromValue(p)
			if err != nil {
				return nil, err
			}
			out.Payload = append(out.Payload, gv)
		}
		return out, nil
	case *backend.Closure:
		return v, nil
	}
	return nil, fmt.Errorf("unsupported value for conversion: %s", val.Inspect())
}
