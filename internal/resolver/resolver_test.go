package resolver_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/lexer"
	"github.com/funvibe/valang/internal/parser"
	"github.com/funvibe/valang/internal/pipeline"
	"github.com/funvibe/valang/internal/resolver"
	"github.com/funvibe/valang/internal/symbols"
)

func resolve(input string) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(input)
	return pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&resolver.ResolverProcessor{},
	).Run(ctx)
}

func messages(errs []*diagnostics.DiagnosticError) string {
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

func expectCodes(t *testing.T, input string, want ...diagnostics.ErrorCode) *pipeline.PipelineContext {
	t.Helper()
	ctx := resolve(input)
	got := diagnostics.Codes(ctx.Errors)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v:\n%s\ninput: %s", got, want, messages(ctx.Errors), input)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v:\n%s\ninput: %s", got, want, messages(ctx.Errors), input)
		}
	}
	return ctx
}

// declared returns the symbols declared under name in source order.
func declared(ctx *pipeline.PipelineContext, name string) []*symbols.Symbol {
	var out []*symbols.Symbol
	for id, sym := range ctx.Declarations {
		if id.Value == name {
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token.Offset < out[j].Token.Offset })
	return out
}

// identifiers returns every identifier with the given name in source order.
func identifiers(node ast.Node, name string) []*ast.Identifier {
	var ids []*ast.Identifier
	ast.Inspect(node, func(n ast.Node) bool {
		if id, ok := n.(*ast.Identifier); ok && id.Value == name {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}

func TestUndefinedNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"variable", "fn f() -> Int { y }", "undefined name `y`"},
		{"function", "fn f() -> Int { g(1) }", "undefined name `g`"},
		{"type", "fn f(p: Pt) {}", "undefined type `Pt`"},
		{"struct literal", "fn f() { val p = Pt { x: 1 }; }", "undefined struct `Pt`"},
		{"enum", "fn f() { val o = Opt::None; }", "undefined enum `Opt`"},
		{"variant", "enum Opt { Some(v: Int), None }\nfn f() { val o = Opt::Nope; }", "enum `Opt` has no variant `Nope`"},
		{"type as value", "struct P { x: Int }\nfn f() { val a = P; }", "`P` is a type, not a value"},
		{"initializer sees outer scope only", "fn f() { val x = x + 1; }", "undefined name `x`"},
		{"binding out of scope", "fn f() -> Int { { val z = 1; }; z }", "undefined name `z`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := expectCodes(t, tt.input, diagnostics.ErrR001)
			if ctx.Errors[0].Message != tt.msg {
				t.Errorf("message = %q, want %q", ctx.Errors[0].Message, tt.msg)
			}
		})
	}
}

func TestDuplicateDefinitions(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"functions", "fn f() {}\nfn f() {}"},
		{"struct and function", "struct f { x: Int }\nfn f() {}"},
		{"locals", "fn f() { val a = 1; var a = 2; }"},
		{"parameters", "fn f(a: Int, a: Int) {}"},
		{"fields", "struct P { x: Int, x: Int }"},
		{"variants", "enum E { A, A }"},
		{"variant fields", "enum E { A(x: Int, x: Int) }"},
		{"pattern bindings", "enum E { A(x: Int, y: Int) }\nfn f(e: E) -> Int { match e { E::A(v, v) => v } }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := expectCodes(t, tt.input, diagnostics.ErrR002)
			if len(ctx.Errors[0].Related) == 0 {
				t.Errorf("duplicate should point at the first definition")
			}
		})
	}
}

func TestShadowingInNestedScopes(t *testing.T) {
	expectCodes(t, `fn f(a: Int) -> Int {
	val b = a;
	val r = { val b = 2; b };
	match r { a => a + b }
}`)
}

func TestItemsInAnyOrder(t *testing.T) {
	expectCodes(t, `fn f() -> P { P { x: g() } }
fn g() -> Int { 1 }
struct P { x: Int }`)
}

func TestResolutionsPointAtDeclarations(t *testing.T) {
	ctx := expectCodes(t, `fn f(a: Int) -> Int {
	val b = a;
	val c = { val b = 2; b } + b;
	c
}`)
	decls := declared(ctx, "b")
	if len(decls) != 2 || decls[0] == decls[1] {
		t.Fatalf("expected two distinct declarations of b, got %d", len(decls))
	}
	outer, inner := decls[0], decls[1]

	uses := identifiers(ctx.AstRoot, "b")
	if len(uses) != 2 {
		t.Fatalf("found %d uses of b, want 2", len(uses))
	}
	if ctx.Resolutions[uses[0]] != inner {
		t.Errorf("use inside the block should resolve to the inner b")
	}
	if ctx.Resolutions[uses[1]] != outer {
		t.Errorf("use after the block should resolve to the outer b")
	}

	params := identifiers(ctx.AstRoot, "a")
	if sym := ctx.Resolutions[params[0]]; sym == nil || sym.Kind != symbols.ParameterSymbol {
		t.Errorf("a should resolve to a parameter, got %v", sym)
	}
}

func TestCaptures(t *testing.T) {
	ctx := expectCodes(t, `fn f(n: Int) -> Int {
	var count = 0;
	val step = 2;
	val inc = fn() {
		val twice = fn() -> Int { count + step };
		count = twice();
	};
	inc();
	count + n
}`)

	var literals []*ast.FunctionLiteral
	ast.Inspect(ctx.AstRoot, func(n ast.Node) bool {
		if fl, ok := n.(*ast.FunctionLiteral); ok {
			literals = append(literals, fl)
		}
		return true
	})
	if len(literals) != 2 {
		t.Fatalf("found %d closures, want 2", len(literals))
	}

	names := func(syms []*symbols.Symbol) []string {
		var out []string
		for _, s := range syms {
			out = append(out, s.Name)
		}
		return out
	}

	// the outer closure captures for its inner one as well
	outer := names(ctx.Captures[literals[0]])
	if strings.Join(outer, ",") != "count,step" {
		t.Errorf("outer closure captures %v, want [count step]", outer)
	}
	inner := names(ctx.Captures[literals[1]])
	if strings.Join(inner, ",") != "count,step" {
		t.Errorf("inner closure captures %v, want [count step]", inner)
	}

	count := declared(ctx, "count")[0]
	if !count.Captured || !count.Mutable {
		t.Errorf("count should be a captured mutable binding")
	}
	if n := declared(ctx, "n")[0]; n.Captured {
		t.Errorf("n is never used by a closure")
	}
}

func TestUnresolvedAreRecorded(t *testing.T) {
	ctx := expectCodes(t, "fn f() -> Int { y + y }", diagnostics.ErrR001, diagnostics.ErrR001)
	if len(ctx.Unresolved) != 2 {
		t.Errorf("got %d unresolved identifiers, want 2", len(ctx.Unresolved))
	}
}
