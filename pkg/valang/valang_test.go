package valang_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/funvibe/valang/internal/backend"
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/pkg/valang"
)

func TestCompileAndCall(t *testing.T) {
	result := valang.Compile(`struct P { x: Int, y: Int }
enum Opt { Some(v: Int), None }
fn add(a: Int, b: Int) -> Int { a + b }
fn point(x: Int) -> P { P { x: x, y: x * 2 } }
fn wrap(n: Int) -> Opt { if n > 0 { Opt::Some(n) } else { Opt::None } }
fn greet(loud: Bool) -> String { if loud { "HI" } else { "hi" } }
fn main() {}`, nil)

	if !result.OK() || result.Module == nil || result.Program == nil {
		t.Fatalf("expected a clean compile, got %v", result.Diagnostics)
	}
	if result.UnitID == uuid.Nil || result.Module.Unit != result.UnitID.String() {
		t.Errorf("unit id not propagated to the module")
	}

	ctx := context.Background()
	tests := []struct {
		name string
		args []interface{}
		want interface{}
	}{
		{"add", []interface{}{40, int8(2)}, int64(42)},
		{"point", []interface{}{3}, map[string]interface{}{"x": int64(3), "y": int64(6)}},
		{"wrap", []interface{}{5}, &valang.Variant{Enum: "Opt", Name: "Some", Payload: []interface{}{int64(5)}}},
		{"wrap", []interface{}{0}, &valang.Variant{Enum: "Opt", Name: "None"}},
		{"greet", []interface{}{true}, "HI"},
		{"main", nil, nil},
	}
	for _, tt := range tests {
		got, err := result.Call(ctx, tt.name, tt.args...)
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s(%v) = %#v, want %#v", tt.name, tt.args, got, tt.want)
		}
	}

	if _, err := result.Call(ctx, "add", 1.5, 2); err == nil || !strings.Contains(err.Error(), "argument 1") {
		t.Errorf("float argument should be rejected, got %v", err)
	}
}

func TestCallTrap(t *testing.T) {
	result := valang.Compile("fn div(a: Int, b: Int) -> Int { a / b }", nil)
	_, err := result.Call(context.Background(), "div", 1, 0)
	var rerr *backend.RuntimeError
	if !errors.As(err, &rerr) || rerr.Message != "division by zero" {
		t.Errorf("expected a division trap, got %v", err)
	}
}

func TestFailedUnit(t *testing.T) {
	result := valang.CompileFile("bad.val", "fn f() -> Int { true }\nfn g(c: Int) -> Int { match c { _ => 0, 1 => 1 } }", nil)
	if result.OK() || result.Module != nil {
		t.Fatalf("unit with a type error must not compile")
	}
	if len(result.Errors()) != 1 || result.Errors()[0].Code != diagnostics.ErrT001 {
		t.Errorf("errors = %v", result.Errors())
	}
	if len(result.Warnings()) != 1 || result.Warnings()[0].Code != diagnostics.WarnW001 {
		t.Errorf("warnings = %v", result.Warnings())
	}
	if result.File != "bad.val" || result.Diagnostics[0].File != "bad.val" {
		t.Errorf("diagnostics should name the file")
	}
	if _, err := result.Call(context.Background(), "f"); err == nil {
		t.Errorf("calling into a failed unit should fail")
	}
}

func TestOptions(t *testing.T) {
	src := "fn f(c: Int) -> Int { match c { _ => 0, 1 => 1 } }"

	opts := valang.DefaultOptions()
	opts.WarningsAsErrors = true
	result := valang.Compile(src, opts)
	if result.OK() || result.Module != nil {
		t.Errorf("a promoted warning should fail the unit")
	}
	if result.Diagnostics[0].Severity != diagnostics.SeverityError {
		t.Errorf("W001 should be promoted to an error")
	}

	var b strings.Builder
	for i := 0; i < 5; i++ {
		b.WriteString("fn f() -> Int { true }\n")
	}
	opts = valang.DefaultOptions()
	opts.MaxErrors = 2
	result = valang.Compile(b.String(), opts)
	if len(result.Diagnostics) != 2 || result.Truncated == 0 {
		t.Errorf("kept %d diagnostics, truncated %d", len(result.Diagnostics), result.Truncated)
	}
}

func TestConfigError(t *testing.T) {
	result := valang.ConfigError("valang.yaml", errors.New("requires: bad constraint"))
	if result.OK() || len(result.Diagnostics) != 1 {
		t.Fatalf("expected a single error")
	}
	d := result.Diagnostics[0]
	if d.Code != diagnostics.ErrX001 || d.File != "valang.yaml" || !strings.Contains(d.Message, "bad constraint") {
		t.Errorf("unexpected diagnostic %v", d)
	}
}

func TestMarshaller(t *testing.T) {
	m := valang.NewMarshaller(nil)
	for _, in := range []interface{}{nil, 7, uint16(7), true, "s", backend.Int(3)} {
		if _, err := m.ToValue(in); err != nil {
			t.Errorf("ToValue(%v): %v", in, err)
		}
	}
	if _, err := m.ToValue([]int{1}); err == nil {
		t.Errorf("slices are not values")
	}
	if v, _ := m.ToValue(nil); v != (backend.Unit{}) {
		t.Errorf("nil should become Unit")
	}
	if _, err := m.ToValue(map[string]interface{}{"x": 1}); err == nil {
		t.Errorf("structs need a module")
	}
}

const shapes = `struct P { x: Int, y: Int }
enum Shape { Circle(r: Int), Rect(w: Int, h: Int), Dot }
fn area(s: Shape) -> Int {
    match s { Shape::Circle(r) => 3 * r * r, Shape::Rect(w, h) => w * h, Shape::Dot => 0 }
}
fn grow(s: Shape) -> Shape {
    match s { Shape::Rect(w, h) => Shape::Rect(w * 2, h * 2), _ => s }
}
fn flip(p: P) -> P { P { x: p.y, y: p.x } }
fn sum(p: P) -> Int { p.x + p.y }`

func TestCallWithAggregates(t *testing.T) {
	result := valang.Compile(shapes, nil)
	if !result.OK() {
		t.Fatalf("expected a clean compile, got %v", result.Diagnostics)
	}
	ctx := context.Background()

	tests := []struct {
		name string
		arg  interface{}
		want interface{}
	}{
		{"area", &valang.Variant{Enum: "Shape", Name: "Rect", Payload: []interface{}{3, 4}}, int64(12)},
		{"area", valang.Variant{Enum: "Shape", Name: "Circle", Payload: []interface{}{2}}, int64(12)},
		{"area", &valang.Variant{Enum: "Shape", Name: "Dot"}, int64(0)},
		{"sum", map[string]interface{}{"x": 0, "y": 4}, int64(4)},
		{"flip", map[string]interface{}{"x": 1, "y": 2}, map[string]interface{}{"x": int64(2), "y": int64(1)}},
		{"grow", &valang.Variant{Enum: "Shape", Name: "Rect", Payload: []interface{}{2, 3}},
			&valang.Variant{Enum: "Shape", Name: "Rect", Payload: []interface{}{int64(4), int64(6)}}},
	}
	for _, tt := range tests {
		got, err := result.Call(ctx, tt.name, tt.arg)
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s(%v) = %#v, want %#v", tt.name, tt.arg, got, tt.want)
		}
	}

	// values returned by Call can be passed back in
	grown, err := result.Call(ctx, "grow", &valang.Variant{Enum: "Shape", Name: "Rect", Payload: []interface{}{1, 5}})
	if err != nil {
		t.Fatalf("grow: %v", err)
	}
	if got, err := result.Call(ctx, "area", grown); err != nil || got != int64(20) {
		t.Errorf("area(grow(Rect(1, 5))) = %v, %v; want 20", got, err)
	}
	flipped, err := result.Call(ctx, "flip", map[string]interface{}{"x": 7, "y": 1})
	if err != nil {
		t.Fatalf("flip: %v", err)
	}
	if got, err := result.Call(ctx, "sum", flipped); err != nil || got != int64(8) {
		t.Errorf("sum(flip(P { x: 7, y: 1 })) = %v, %v; want 8", got, err)
	}
}

func TestCallRejectsBadAggregates(t *testing.T) {
	result := valang.Compile(shapes, nil)
	ctx := context.Background()
	tests := []struct {
		name string
		arg  interface{}
		msg  string
	}{
		{"area", &valang.Variant{Enum: "Shape", Name: "Square", Payload: []interface{}{1}}, "enum Shape has no variant Square"},
		{"area", &valang.Variant{Enum: "Shape", Name: "Rect", Payload: []interface{}{1}}, "variant Shape::Rect has 2 field(s), got 1"},
		{"area", &valang.Variant{Enum: "Form", Name: "Dot"}, "no enum named Form"},
		{"area", &valang.Variant{Enum: "P", Name: "Dot"}, "no enum named P"},
		{"area", &valang.Variant{Enum: "Shape", Name: "Circle", Payload: []interface{}{1.5}}, "field r"},
		{"sum", map[string]interface{}{"x": 1}, "no struct has fields {x}"},
		{"sum", map[string]interface{}{"x": 1, "y": true, "z": 3}, "no struct has fields {x, y, z}"},
		{"sum", map[string]interface{}{"x": 1, "y": 2.5}, "field y"},
	}
	for _, tt := range tests {
		_, err := result.Call(ctx, tt.name, tt.arg)
		if err == nil || !strings.Contains(err.Error(), "argument 1") || !strings.Contains(err.Error(), tt.msg) {
			t.Errorf("%s(%v): got %v, want an error mentioning %q", tt.name, tt.arg, err, tt.msg)
		}
	}
}

func TestAmbiguousStructFields(t *testing.T) {
	result := valang.Compile(`struct A { n: Int }
struct B { n: Int }
fn get(a: A) -> Int { a.n }`, nil)
	_, err := result.Call(context.Background(), "get", map[string]interface{}{"n": 1})
	if err == nil || !strings.Contains(err.Error(), "match more than one struct: A, B") {
		t.Errorf("got %v", err)
	}
}
