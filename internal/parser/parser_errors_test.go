package parser_test

import (
	"strings"
	"testing"

	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/lexer"
	"github.com/funvibe/valang/internal/parser"
	"github.com/funvibe/valang/internal/pipeline"
)

// parseWithErrors runs the lexer+parser and returns all diagnostic errors.
func parseWithErrors(input string) []*diagnostics.DiagnosticError {
	ctx := pipeline.NewPipelineContext(input)
	lp := &lexer.LexerProcessor{}
	ctx = lp.Process(ctx)
	pp := &parser.ParserProcessor{}
	ctx = pp.Process(ctx)
	return ctx.Errors
}

// expectError asserts at least one error with the given code.
func expectError(t *testing.T, input string, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	errs := parseWithErrors(input)
	if len(errs) == 0 {
		t.Fatalf("expected error %s, but got none\ninput: %s", code, input)
	}
	for _, e := range errs {
		if e.Code == code {
			return e
		}
	}
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	t.Fatalf("expected error %s, got:\n%s\ninput: %s", code, strings.Join(msgs, "\n"), input)
	return nil
}

// expectNoErrors asserts parsing succeeds without errors.
func expectNoErrors(t *testing.T, input string) {
	t.Helper()
	errs := parseWithErrors(input)
	if len(errs) > 0 {
		var msgs []string
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("expected no errors, got:\n%s\ninput: %s", strings.Join(msgs, "\n"), input)
	}
}

// ---------------------------------------------------------------------------
// P001: Unexpected token
// ---------------------------------------------------------------------------

func TestP001_TopLevelStatement(t *testing.T) {
	e := expectError(t, "val x = 1;", diagnostics.ErrP001)
	if !strings.Contains(e.Message, "expected item") {
		t.Errorf("unexpected message: %s", e.Message)
	}
}

func TestP001_MissingBindingName(t *testing.T) {
	e := expectError(t, "fn f() { val = 1; }", diagnostics.ErrP001)
	if e.Token.Line != 1 || e.Token.Column != 14 {
		t.Errorf("error at %d:%d, want 1:14", e.Token.Line, e.Token.Column)
	}
}

func TestP001_MissingSemicolon(t *testing.T) {
	expectError(t, "fn f() { val x = 1 val y = 2; }", diagnostics.ErrP001)
}

func TestP001_IfWithoutElse(t *testing.T) {
	e := expectError(t, "fn f() -> Int { if true { 1 } }", diagnostics.ErrP001)
	if !strings.Contains(e.Message, "else") {
		t.Errorf("message should mention else: %s", e.Message)
	}
}

func TestP001_ElseIf(t *testing.T) {
	e := expectError(t, "fn f(a: Bool) -> Int { if a { 1 } else if a { 2 } else { 3 } }", diagnostics.ErrP001)
	if !strings.Contains(e.Message, "elif") {
		t.Errorf("message should suggest elif: %s", e.Message)
	}
}

func TestP001_ChainedAssignment(t *testing.T) {
	expectError(t, "fn f() { var a = 1; var b = 2; a = b = 3; }", diagnostics.ErrP001)
}

func TestP001_EmptyMatch(t *testing.T) {
	expectError(t, "fn f(x: Int) -> Int { match x { } }", diagnostics.ErrP001)
}

func TestP001_MissingFatArrow(t *testing.T) {
	expectError(t, "fn f(x: Int) -> Int { match x { 1 -> 2, _ => 3 } }", diagnostics.ErrP001)
}

func TestP001_ParameterWithoutType(t *testing.T) {
	expectError(t, "fn f(x) {}", diagnostics.ErrP001)
}

func TestP001_BadType(t *testing.T) {
	expectError(t, "fn f(x: 3) {}", diagnostics.ErrP001)
}

func TestP001_UnclosedBlock(t *testing.T) {
	e := expectError(t, "fn f() { val x = 1;", diagnostics.ErrP001)
	if !strings.Contains(e.Message, "to close block") {
		t.Errorf("unexpected message: %s", e.Message)
	}
}

func TestP001_BadPattern(t *testing.T) {
	expectError(t, "fn f(x: Int) -> Int { match x { (1) => 1, _ => 0 } }", diagnostics.ErrP001)
}

func TestP001_RecursionLimit(t *testing.T) {
	deep := strings.Repeat("(", parser.MaxRecursionDepth+10) + "1" + strings.Repeat(")", parser.MaxRecursionDepth+10)
	e := expectError(t, "fn f() -> Int { "+deep+" }", diagnostics.ErrP001)
	if !strings.Contains(e.Message, "recursion depth") {
		t.Errorf("unexpected message: %s", e.Message)
	}
}

// ---------------------------------------------------------------------------
// Recovery
// ---------------------------------------------------------------------------

func TestRecovery_OneErrorPerStatement(t *testing.T) {
	input := `fn f() { val = 1; val y = 2; }
fn g() { val = 3; }`
	errs := parseWithErrors(input)
	if len(errs) != 2 {
		var msgs []string
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("expected 2 errors, got %d:\n%s", len(errs), strings.Join(msgs, "\n"))
	}
	if errs[0].Token.Line != 1 || errs[1].Token.Line != 2 {
		t.Errorf("errors on lines %d and %d, want 1 and 2", errs[0].Token.Line, errs[1].Token.Line)
	}
}

func TestRecovery_BrokenItemDoesNotHideNext(t *testing.T) {
	input := `struct { x: Int }
fn ok() -> Int { 1 }
fn broken() -> { 2 }`
	errs := parseWithErrors(input)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(errs))
	}
	for _, e := range errs {
		if e.Code != diagnostics.ErrP001 {
			t.Errorf("unexpected code %s", e.Code)
		}
	}
}

func TestRecovery_LexErrorsDoNotCascade(t *testing.T) {
	errs := parseWithErrors("fn f() -> Int { 1 # }")
	if len(errs) != 1 || errs[0].Code != diagnostics.ErrL001 {
		var msgs []string
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("expected a single L001, got:\n%s", strings.Join(msgs, "\n"))
	}
}

// ---------------------------------------------------------------------------
// Accepted forms
// ---------------------------------------------------------------------------

func TestAccepted(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty program", ""},
		{"comments only", "// nothing\n/* here */"},
		{"trailing commas", "fn f(a: Int, b: Int,) -> Int { g(a, b,) }"},
		{"unit return", "fn f() -> Unit { () }"},
		{"bare return", "fn f() { return }"},
		{"statement if", "fn f(a: Bool) { if a { g(); } else {} }"},
		{"statement match", "fn f(a: Bool) { match a { true => g(), false => {} } }"},
		{"nested closure", "fn f() -> fn() -> Int { fn() -> Int { fn() -> Int { 1 }() } }"},
		{"variant without parens", "fn f() -> Opt { Opt::None }"},
		{"variant with empty parens", "fn f() -> Opt { Opt::None() }"},
		{"empty struct literal", "fn f() -> E { E {} }"},
		{"string pattern", `fn f(s: String) -> Int { match s { "a" => 1, _ => 0 } }`},
		{"negative pattern", "fn f(n: Int) -> Int { match n { -1 => 1, _ => 0 } }"},
		{"semicolons between items", "struct A {};\nenum B { C };"},
		{"field compound assignment target", "fn f(p: P) { p.x += 1; }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectNoErrors(t, tt.input)
		})
	}
}
