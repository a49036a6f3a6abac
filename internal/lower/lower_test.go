package lower_test

import (
	"strings"
	"testing"

	"github.com/funvibe/valang/internal/analyzer"
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/config"
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/ir"
	"github.com/funvibe/valang/internal/lexer"
	"github.com/funvibe/valang/internal/lower"
	"github.com/funvibe/valang/internal/parser"
	"github.com/funvibe/valang/internal/pipeline"
	"github.com/funvibe/valang/internal/resolver"
	"github.com/funvibe/valang/internal/symbols"
	"github.com/funvibe/valang/internal/tailpos"
)

func compile(input string, opts *config.Options) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(input)
	if opts != nil {
		ctx.Options = opts
	}
	return pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&resolver.ResolverProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
		&tailpos.TailProcessor{},
		&lower.LowerProcessor{},
	).Run(ctx)
}

func lowered(t *testing.T, input string) *ir.Module {
	t.Helper()
	ctx := compile(input, nil)
	if ctx.HasErrors() {
		var msgs []string
		for _, e := range ctx.Errors {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("unexpected errors:\n%s", strings.Join(msgs, "\n"))
	}
	if ctx.Module == nil {
		t.Fatalf("no module produced")
	}
	return ctx.Module
}

// instrs returns every instruction of f with the given opcode.
func instrs(f *ir.Function, op ir.Op) []*ir.Instr {
	var out []*ir.Instr
	for _, b := range f.Blocks {
		for _, in := range b.Instrs {
			if in.Op == op {
				out = append(out, in)
			}
		}
	}
	return out
}

func TestLayouts(t *testing.T) {
	m := lowered(t, `enum Shape { Circle(r: Int), Rect(w: Int, h: Int), Empty }
struct Point { x: Int, y: Int, label: String }
fn main() {}`)

	if len(m.Layouts) != 2 || m.Layouts[0].Name != "Shape" || m.Layouts[1].Name != "Point" {
		t.Fatalf("layouts not in declaration order: %s", ir.Pretty(m))
	}
	shape := m.Layout("Shape")
	if shape.Kind != ir.EnumLayout || shape.Size() != 3 {
		t.Errorf("Shape: kind %d size %d, want enum of 3 slots", shape.Kind, shape.Size())
	}
	for i, want := range []string{"Circle", "Rect", "Empty"} {
		if v := shape.Variants[i]; v.Name != want || v.Tag != i {
			t.Errorf("variant %d = %s#%d, want %s#%d", i, v.Name, v.Tag, want, i)
		}
	}
	point := m.Layout("Point")
	if point.Kind != ir.StructLayout || strings.Join(point.Fields, ",") != "x,y,label" {
		t.Errorf("Point fields = %v", point.Fields)
	}
}

func TestFunctionSignature(t *testing.T) {
	m := lowered(t, "fn add(a: Int, b: Int) -> Int { a + b }\nfn main() {}")
	add := m.Function("add")
	if add == nil {
		t.Fatalf("add not lowered")
	}
	if len(add.Params) != 2 || add.Params[0] != 0 || add.Params[1] != 1 {
		t.Errorf("params = %v, want [r0 r1]", add.Params)
	}
	if add.ReturnType != "Int" || m.Function("main").ReturnType != "Unit" {
		t.Errorf("return types = %s, %s", add.ReturnType, m.Function("main").ReturnType)
	}
	want := "fn add(r0, r1) -> Int locals 3\nb0: ; entry\n    r2 = r0 + r1\n    return r2\n"
	if got := ir.Disassemble(add); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestEveryBlockIsTerminated(t *testing.T) {
	m := lowered(t, `enum Opt { Some(v: Int), None }
fn f(o: Opt, b: Bool, s: String) -> Int {
	val x = match o { Opt::Some(v) => v, Opt::None => 0 };
	if b && x > 0 { return x; } else {};
	match s { "a" => 1, "b" => 2, _ => if b || x == 0 { 3 } else { 4 } }
}
fn main() {}`)
	for _, f := range m.Functions {
		for _, b := range f.Blocks {
			if b.Term == nil {
				t.Errorf("%s b%d has no terminator", f.Name, b.ID)
			}
		}
	}
}

// reachable returns the IDs of the blocks reachable from the entry block.
func reachable(f *ir.Function) map[int]bool {
	seen := make(map[int]bool)
	work := []int{0}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		if seen[id] || id < 0 || id >= len(f.Blocks) {
			continue
		}
		seen[id] = true
		term := f.Blocks[id].Term
		if term == nil {
			continue
		}
		work = append(work, term.Targets...)
		for _, c := range term.Cases {
			work = append(work, c.Target)
		}
		if term.Kind == ir.TermSwitch {
			work = append(work, term.Default)
		}
	}
	return seen
}

func TestCodeAfterReturnIsDropped(t *testing.T) {
	m := lowered(t, `fn f(c: Bool, d: Bool) -> Int {
	val y = if c { return 1; if d { 2 } else { 3 } } else { 4 };
	y
}
fn main() {}`)
	f := m.Function("f")
	seen := reachable(f)
	for _, b := range f.Blocks {
		if !seen[b.ID] {
			t.Errorf("b%d (%s) is not reachable from the entry:\n%s", b.ID, b.Label, ir.Disassemble(f))
		}
	}
	if len(f.Blocks) != 4 {
		t.Errorf("got %d blocks, want 4:\n%s", len(f.Blocks), ir.Disassemble(f))
	}
}

func TestTailCallsAreFlagged(t *testing.T) {
	src := `fn count(n: Int) -> Int { if n == 0 { 0 } else { count(n - 1) } }
fn main() {}`

	calls := instrs(lowered(t, src).Function("count"), ir.OpCall)
	if len(calls) != 1 || !calls[0].Tail {
		t.Fatalf("expected one tail call, got %d", len(calls))
	}

	off := false
	ctx := compile(src, &config.Options{EmitTailCalls: &off})
	calls = instrs(ctx.Module.Function("count"), ir.OpCall)
	if len(calls) != 1 || calls[0].Tail {
		t.Errorf("emit_tail_calls: false should leave the call unflagged")
	}
}

func TestOperandCallIsNotTail(t *testing.T) {
	m := lowered(t, "fn f(n: Int) -> Int { 1 + f(n) }\nfn main() {}")
	for _, c := range instrs(m.Function("f"), ir.OpCall) {
		if c.Tail {
			t.Errorf("f(n) is an operand and must not be a tail call")
		}
	}
}

func TestClosures(t *testing.T) {
	m := lowered(t, `fn f() -> Int {
	var n = 1;
	val k = 2;
	val g = fn() -> Int { n + k };
	n = 3;
	g()
}
fn main() {}`)

	g := m.Function("f$closure1")
	if g == nil || !g.IsClosure {
		t.Fatalf("closure not lowered as f$closure1:\n%s", ir.Pretty(m))
	}
	if strings.Join(g.Captures, ",") != "n,k" {
		t.Errorf("captures = %v, want [n k]", g.Captures)
	}
	if len(instrs(g, ir.OpLoadCapture)) != 2 || len(instrs(g, ir.OpLoadCell)) != 1 {
		t.Errorf("closure should read both captures and one cell:\n%s", ir.Disassemble(g))
	}

	f := m.Function("f")
	if len(instrs(f, ir.OpNewCell)) != 1 {
		t.Errorf("only the captured var lives in a cell:\n%s", ir.Disassemble(f))
	}
	if len(instrs(f, ir.OpStoreCell)) != 1 {
		t.Errorf("assignment to n should store through its cell")
	}
	mk := instrs(f, ir.OpMakeClosure)
	if len(mk) != 1 || mk[0].Callee != "f$closure1" || len(mk[0].Args) != 2 {
		t.Errorf("closure creation should pass both captures")
	}
	if calls := instrs(f, ir.OpCallIndirect); len(calls) != 1 || !calls[0].Tail {
		t.Errorf("g() is the tail call of f")
	}
}

func TestFunctionValue(t *testing.T) {
	m := lowered(t, `fn inc(n: Int) -> Int { n + 1 }
fn apply(h: fn(Int) -> Int) -> Int { h(1) }
fn main() -> Int { apply(inc) }`)
	mk := instrs(m.Function("main"), ir.OpMakeClosure)
	if len(mk) != 1 || mk[0].Callee != "inc" || len(mk[0].Args) != 0 {
		t.Errorf("naming a function should make a capture-free closure")
	}
	if len(instrs(m.Function("apply"), ir.OpCallIndirect)) != 1 {
		t.Errorf("calling a parameter is an indirect call")
	}
}

func TestUnreachableArmIsNotLowered(t *testing.T) {
	ctx := compile(`fn f(n: Int) -> Int { match n { _ => 0, 1 => 1 } }
fn main() {}`, nil)
	if got := diagnostics.Codes(ctx.Errors); len(got) != 1 || got[0] != diagnostics.WarnW001 {
		t.Fatalf("got %v, want [W001]", got)
	}
	if ctx.Module == nil {
		t.Fatalf("warnings must not suppress lowering")
	}
	for _, b := range ctx.Module.Function("f").Blocks {
		if b.Label == "arm 1" {
			t.Errorf("unreachable arm was given block b%d", b.ID)
		}
	}
}

func TestVariantMatchSwitches(t *testing.T) {
	m := lowered(t, `enum Color { Red, Green, Blue(shade: Int) }
fn f(c: Color) -> Int { match c { Color::Blue(s) => s, _ => 0 } }
fn main() {}`)
	f := m.Function("f")
	var sw *ir.Terminator
	for _, b := range f.Blocks {
		if b.Term.Kind == ir.TermSwitch {
			sw = b.Term
		}
	}
	if sw == nil {
		t.Fatalf("no switch in:\n%s", ir.Disassemble(f))
	}
	if len(sw.Cases) != 1 || sw.Cases[0].Value != 2 || sw.Default < 0 {
		t.Errorf("switch = %s, want one case for tag 2 and a default", ir.FormatTerm(sw))
	}
	if len(instrs(f, ir.OpLoadPayload)) != 1 {
		t.Errorf("Blue's payload should be loaded once")
	}
}

func TestNothingLoweredWithErrors(t *testing.T) {
	ctx := compile("fn f() -> Int { true }", nil)
	if ctx.Module != nil {
		t.Errorf("a unit with errors must not be lowered")
	}
}

func TestUnresolvedReferenceIsFatal(t *testing.T) {
	ctx := pipeline.NewPipelineContext("fn f(x: Int) -> Int { x }")
	ctx = pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&resolver.ResolverProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
		&tailpos.TailProcessor{},
		pipeline.ProcessorFunc(func(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
			ctx.Resolutions = make(map[*ast.Identifier]*symbols.Symbol)
			return ctx
		}),
		&lower.LowerProcessor{},
	).Run(ctx)

	if ctx.Module != nil {
		t.Errorf("a failed lowering must not produce a module")
	}
	if len(ctx.Errors) != 1 {
		t.Fatalf("expected a single diagnostic, got %d", len(ctx.Errors))
	}
	e := ctx.Errors[0]
	if e.Code != diagnostics.ErrC001 || e.Severity != diagnostics.SeverityFatal {
		t.Errorf("got %s, want fatal C001", e.Error())
	}
	if e.Message != "lowering function f: unresolved name x" || e.Token.Line != 1 || e.Token.Column != 23 {
		t.Errorf("unexpected diagnostic %s", e.Error())
	}
}

func TestWarningsAsErrorsSkipsLowering(t *testing.T) {
	opts := config.Default()
	opts.WarningsAsErrors = true
	ctx := compile("fn f(n: Int) -> Int { match n { _ => 0, 1 => 1 } }", opts)
	if ctx.Module != nil {
		t.Errorf("a promoted warning must suppress lowering")
	}
}

func TestUnitIDIsRecorded(t *testing.T) {
	ctx := compile("fn main() {}", nil)
	if ctx.Module == nil || ctx.Module.Unit != ctx.UnitID.String() {
		t.Errorf("module unit should be the compilation unit id")
	}
}
