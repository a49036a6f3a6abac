package diagnostics

import (
	"testing"

	"github.com/funvibe/valang/internal/token"
)

func at(line, col int) token.Token {
	return token.Token{Line: line, Column: col}
}

func TestErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *DiagnosticError
		want string
	}{
		{
			"positioned",
			Errorf(ErrT001, at(3, 7), "type mismatch: %s", "boom"),
			"3:7: error[T001]: type mismatch: boom",
		},
		{
			"with file and related",
			&DiagnosticError{Code: ErrR002, Severity: SeverityError, Token: at(4, 4), Message: "duplicate definition of `f`", File: "a.val",
				Related: []Related{{Token: at(1, 4), Label: "first defined here"}}},
			"a.val:4:4: error[R002]: duplicate definition of `f` (first defined here at 1:4)",
		},
		{
			"file without position",
			&DiagnosticError{Code: ErrX001, Severity: SeverityError, Message: "bad config", File: "valang.yaml"},
			"valang.yaml: error[X001]: bad config",
		},
		{
			"warning",
			NewWarning(WarnW001, at(2, 1), "unreachable pattern"),
			"2:1: warning[W001]: unreachable pattern",
		},
		{
			"fatal",
			NewFatal(ErrC001, at(1, 1), "lowering failed"),
			"1:1: fatal[C001]: lowering failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKinds(t *testing.T) {
	if ErrT004.Kind() != "NonExhaustiveMatch" || WarnW001.Kind() != "UnreachablePattern" {
		t.Errorf("unexpected kinds %s, %s", ErrT004.Kind(), WarnW001.Kind())
	}
	if ErrorCode("Z999").Kind() != "Unknown" {
		t.Errorf("unknown codes have kind Unknown")
	}
}

func TestSeverities(t *testing.T) {
	errs := []*DiagnosticError{
		NewWarning(WarnW001, at(1, 1), "w"),
		NewWarning(WarnW001, at(2, 1), "w"),
	}
	if HasErrors(errs) || Count(errs, SeverityWarning) != 2 {
		t.Fatalf("warnings alone are not errors")
	}
	PromoteWarnings(errs)
	if !HasErrors(errs) || Count(errs, SeverityWarning) != 0 || HasFatal(errs) {
		t.Errorf("promoted warnings should be errors")
	}
	errs = append(errs, NewFatal(ErrC001, at(3, 1), "f"))
	if !HasFatal(errs) {
		t.Errorf("fatal not detected")
	}
}

func TestTruncate(t *testing.T) {
	var errs []*DiagnosticError
	for i := 1; i <= 5; i++ {
		errs = append(errs, NewError(ErrT001, at(i, 1), "e"))
	}
	errs = append(errs, NewFatal(ErrC001, at(9, 1), "f"))

	kept, dropped := Truncate(errs, 2)
	if len(kept) != 3 || dropped != 3 {
		t.Fatalf("kept %d, dropped %d; want 3 and 3", len(kept), dropped)
	}
	if kept[2].Code != ErrC001 {
		t.Errorf("fatal diagnostics are never dropped")
	}
	if kept, dropped := Truncate(errs, 0); len(kept) != 6 || dropped != 0 {
		t.Errorf("limit 0 keeps everything")
	}
	codes := Codes(kept[:2])
	if len(codes) != 2 || codes[0] != ErrT001 {
		t.Errorf("codes = %v", codes)
	}
}
