package backend_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/funvibe/valang/internal/analyzer"
	"github.com/funvibe/valang/internal/backend"
	"github.com/funvibe/valang/internal/config"
	"github.com/funvibe/valang/internal/ir"
	"github.com/funvibe/valang/internal/lexer"
	"github.com/funvibe/valang/internal/lower"
	"github.com/funvibe/valang/internal/parser"
	"github.com/funvibe/valang/internal/pipeline"
	"github.com/funvibe/valang/internal/resolver"
	"github.com/funvibe/valang/internal/tailpos"
)

func stages() *pipeline.Pipeline {
	return pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&resolver.ResolverProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
		&tailpos.TailProcessor{},
		&lower.LowerProcessor{},
	)
}

func compileWith(t *testing.T, input string, opts *config.Options) *ir.Module {
	t.Helper()
	ctx := pipeline.NewPipelineContext(input)
	if opts != nil {
		ctx.Options = opts
	}
	ctx = stages().Run(ctx)
	if ctx.Module == nil {
		var msgs []string
		for _, e := range ctx.Errors {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("compilation failed:\n%s", strings.Join(msgs, "\n"))
	}
	return ctx.Module
}

func compile(t *testing.T, input string) *ir.Module {
	t.Helper()
	return compileWith(t, input, nil)
}

func run(t *testing.T, m *ir.Module, entry string, args ...backend.Value) backend.Value {
	t.Helper()
	v, err := backend.NewInterpreter(m).Run(context.Background(), entry, args)
	if err != nil {
		t.Fatalf("%s: %v", entry, err)
	}
	return v
}

func runtimeError(t *testing.T, m *ir.Module, entry string, args ...backend.Value) *backend.RuntimeError {
	t.Helper()
	_, err := backend.NewInterpreter(m).Run(context.Background(), entry, args)
	var rerr *backend.RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("%s: expected a runtime error, got %v", entry, err)
	}
	return rerr
}

const addWithConst = `fn add_with_const(x: Int, y: Int) -> Int {
	val z = 5;
	var sum = x + y;
	sum += z;
	if (sum > 10) { sum } elif (sum == 10) { 100 } else { 0 }
}
`

func TestAddWithConst(t *testing.T) {
	m := compile(t, addWithConst)
	tests := []struct {
		x, y int64
		want backend.Int
	}{
		{3, 4, 12},
		{1, 4, 100},
		{-10, 0, 0},
	}
	for _, tt := range tests {
		got := run(t, m, "add_with_const", backend.Int(tt.x), backend.Int(tt.y))
		if got != tt.want {
			t.Errorf("add_with_const(%d, %d) = %s, want %d", tt.x, tt.y, got.Inspect(), tt.want)
		}
	}
}

func TestClosuresShareCapturedVars(t *testing.T) {
	m := compile(t, `fn counter() -> Int {
	var n = 0;
	val inc = fn() { n += 1; };
	inc();
	inc();
	inc();
	n
}
fn late() -> Int {
	var n = 1;
	val get = fn() -> Int { n };
	n = 5;
	get()
}
fn copied() -> Int {
	val k = 7;
	val get = fn() -> Int { k };
	get()
}
fn snapshot() -> Int {
	var a = 1;
	val b = a;
	a = 2;
	b * 10 + a
}
fn nested() -> Int {
	var total = 0;
	val add = fn(d: Int) {
		val twice = fn() { total += d; total += d; };
		twice();
	};
	add(1);
	add(10);
	total
}`)

	tests := []struct {
		entry string
		want  backend.Int
	}{
		{"counter", 3},
		{"late", 5},
		{"copied", 7},
		{"snapshot", 12},
		{"nested", 22},
	}
	for _, tt := range tests {
		if got := run(t, m, tt.entry); got != tt.want {
			t.Errorf("%s() = %s, want %d", tt.entry, got.Inspect(), tt.want)
		}
	}
}

func TestArithmetic(t *testing.T) {
	m := compile(t, `fn pow(a: Int, b: Int) -> Int { a ^ b }
fn div(a: Int, b: Int) -> Int { a / b }
fn rem(a: Int, b: Int) -> Int { a % b }
fn neg(a: Int) -> Int { -a ^ 2 }
fn overflow() -> Int { 9223372036854775807 + 1 }
fn safe(a: Int) -> Bool { a != 0 && 10 / a > 1 }
fn either(a: Int) -> Bool { a == 0 || 10 / a > 1 }`)

	if got := run(t, m, "pow", backend.Int(2), backend.Int(10)); got != backend.Int(1024) {
		t.Errorf("pow(2, 10) = %s", got.Inspect())
	}
	if got := run(t, m, "pow", backend.Int(7), backend.Int(0)); got != backend.Int(1) {
		t.Errorf("pow(7, 0) = %s", got.Inspect())
	}
	if got := run(t, m, "neg", backend.Int(3)); got != backend.Int(9) {
		t.Errorf("-3 ^ 2 = %s, want 9", got.Inspect())
	}
	if got := run(t, m, "div", backend.Int(-7), backend.Int(2)); got != backend.Int(-3) {
		t.Errorf("-7 / 2 = %s, want -3", got.Inspect())
	}
	if got := run(t, m, "overflow"); got != backend.Int(math.MinInt64) {
		t.Errorf("overflow should wrap, got %s", got.Inspect())
	}
	if got := run(t, m, "safe", backend.Int(0)); got != backend.Bool(false) {
		t.Errorf("&& should not evaluate its right operand")
	}
	if got := run(t, m, "either", backend.Int(0)); got != backend.Bool(true) {
		t.Errorf("|| should not evaluate its right operand")
	}

	traps := []struct {
		entry string
		args  []backend.Value
		msg   string
	}{
		{"div", []backend.Value{backend.Int(1), backend.Int(0)}, "division by zero"},
		{"rem", []backend.Value{backend.Int(1), backend.Int(0)}, "modulo by zero"},
		{"pow", []backend.Value{backend.Int(2), backend.Int(-1)}, "negative exponent -1"},
	}
	for _, tt := range traps {
		rerr := runtimeError(t, m, tt.entry, tt.args...)
		if rerr.Message != tt.msg || rerr.Function != tt.entry {
			t.Errorf("%s: trap %q in %s, want %q", tt.entry, rerr.Message, rerr.Function, tt.msg)
		}
	}
}

func TestDeepTailRecursion(t *testing.T) {
	src := `fn count(n: Int, acc: Int) -> Int { if n == 0 { acc } else { count(n - 1, acc + 1) } }
fn is_even(n: Int) -> Bool { if n == 0 { true } else { is_odd(n - 1) } }
fn is_odd(n: Int) -> Bool { if n == 0 { false } else { is_even(n - 1) } }
fn loop(n: Int) -> Int {
	val step = fn(k: Int, again: fn(Int) -> Int) -> Int { again(k) };
	if n == 0 { 0 } else { step(n - 1, loop) }
}`
	m := compile(t, src)
	depth := backend.Int(config.MaxCallDepth * 5)

	if got := run(t, m, "count", depth, backend.Int(0)); got != depth {
		t.Errorf("count = %s, want %d", got.Inspect(), depth)
	}
	if got := run(t, m, "is_even", depth+1); got != backend.Bool(false) {
		t.Errorf("is_even(%d) = %s", depth+1, got.Inspect())
	}
	if got := run(t, m, "loop", depth); got != backend.Int(0) {
		t.Errorf("loop = %s", got.Inspect())
	}

	off := false
	m = compileWith(t, src, &config.Options{EmitTailCalls: &off})
	rerr := runtimeError(t, m, "count", depth, backend.Int(0))
	if rerr.Message != "call stack exhausted" {
		t.Errorf("without tail calls: %q", rerr.Message)
	}
}

func TestAggregates(t *testing.T) {
	m := compile(t, `struct P { x: Int, y: Int }
enum E { A(k: Int, n: Int), B(n: Int) }
fn point() -> Int {
	val p = P { y: 2, x: 1 };
	p.x * 10 + p.y
}
fn get(e: E) -> Int { e.n }
fn shared() -> Int { get(E::A(1, 2)) * 10 + get(E::B(5)) }
fn describe(e: E) -> Int {
	match e { E::A(k, 0) => k, E::A(_, n) => n * 100, E::B(n) => n }
}
fn make() -> E { E::A(3, 4) }
fn origin() -> P { P { x: 0, y: 0 } }
fn destructure(p: P) -> Int { match p { P { x: 0, y } => y, P { x } => x } }`)

	tests := []struct {
		entry string
		args  []backend.Value
		want  string
	}{
		{"point", nil, "12"},
		{"shared", nil, "25"},
		{"make", nil, "E::A(3, 4)"},
		{"origin", nil, "P { x: 0, y: 0 }"},
	}
	for _, tt := range tests {
		if got := run(t, m, tt.entry, tt.args...).Inspect(); got != tt.want {
			t.Errorf("%s() = %s, want %s", tt.entry, got, tt.want)
		}
	}

	a := run(t, m, "make")
	if got := run(t, m, "describe", a); got != backend.Int(400) {
		t.Errorf("describe(E::A(3, 4)) = %s, want 400", got.Inspect())
	}
	p := run(t, m, "origin")
	if got := run(t, m, "destructure", p); got != backend.Int(0) {
		t.Errorf("destructure(origin) = %s, want 0", got.Inspect())
	}
}

func TestLiteralMatches(t *testing.T) {
	m := compile(t, `fn classify(n: Int) -> Int { match n { 0 => 10, -1 => 11, _ => 12 } }
fn name(s: String) -> Int { match s { "one" => 1, "two" => 2, _ => 0 } }
fn flip(b: Bool) -> Int { match b { true => 1, false => 0 } }
fn label(n: Int) -> String { if n > 0 { "positive" } else { "other" } }`)

	cases := []struct {
		entry string
		arg   backend.Value
		want  backend.Value
	}{
		{"classify", backend.Int(0), backend.Int(10)},
		{"classify", backend.Int(-1), backend.Int(11)},
		{"classify", backend.Int(7), backend.Int(12)},
		{"name", backend.String("two"), backend.Int(2)},
		{"name", backend.String("three"), backend.Int(0)},
		{"flip", backend.Bool(true), backend.Int(1)},
		{"flip", backend.Bool(false), backend.Int(0)},
		{"label", backend.Int(3), backend.String("positive")},
	}
	for _, tt := range cases {
		if got := run(t, m, tt.entry, tt.arg); got != tt.want {
			t.Errorf("%s(%s) = %s, want %s", tt.entry, tt.arg.Inspect(), got.Inspect(), tt.want.Inspect())
		}
	}
}

func TestRunErrors(t *testing.T) {
	m := compile(t, "fn add(a: Int, b: Int) -> Int { a + b }\nfn f() -> fn() -> Int { fn() -> Int { 1 } }")
	in := backend.NewInterpreter(m)

	if _, err := in.Run(context.Background(), "nope", nil); err == nil || !strings.Contains(err.Error(), `no function "nope"`) {
		t.Errorf("unknown entry: %v", err)
	}
	if _, err := in.Run(context.Background(), "f$closure1", nil); err == nil {
		t.Errorf("closures are not entry points")
	}
	rerr := runtimeError(t, m, "add", backend.Int(1))
	if rerr.Message != "expects 2 arguments, got 1" {
		t.Errorf("arity: %q", rerr.Message)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := in.Run(ctx, "add", []backend.Value{backend.Int(1), backend.Int(2)}); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled run returned %v", err)
	}
}

func TestApplyClosure(t *testing.T) {
	m := compile(t, "fn adder(n: Int) -> fn(Int) -> Int { fn(x: Int) -> Int { x + n } }")
	in := backend.NewInterpreter(m)
	v, err := in.Run(context.Background(), "adder", []backend.Value{backend.Int(40)})
	if err != nil {
		t.Fatal(err)
	}
	c, ok := v.(*backend.Closure)
	if !ok {
		t.Fatalf("adder returned %s", v.Inspect())
	}
	got, err := in.Apply(context.Background(), c, []backend.Value{backend.Int(2)})
	if err != nil || got != backend.Int(42) {
		t.Errorf("adder(40)(2) = %v, %v", got, err)
	}
}

func TestExecutionProcessor(t *testing.T) {
	exec := backend.NewExecutionProcessor("add_with_const", backend.Int(3), backend.Int(4))
	stages().Append(exec).Run(pipeline.NewPipelineContext(addWithConst))
	if exec.Err != nil || exec.Result != backend.Int(12) {
		t.Errorf("result = %v, err = %v", exec.Result, exec.Err)
	}

	skipped := backend.NewExecutionProcessor("f")
	stages().Append(skipped).Run(pipeline.NewPipelineContext("fn f() -> Int { true }"))
	if skipped.Result != nil || skipped.Err != nil {
		t.Errorf("nothing should run for a unit with errors")
	}
}
