package diagnostics

// HasErrors reports whether any diagnostic blocks code generation.
func HasErrors(errs []*DiagnosticError) bool {
	for _, e := range errs {
		if e.IsError() {
			return true
		}
	}
	return false
}

// HasFatal reports whether any diagnostic aborted the unit.
func HasFatal(errs []*DiagnosticError) bool {
	for _, e := range errs {
		if e.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics with the given severity.
func Count(errs []*DiagnosticError, sev Severity) int {
	n := 0
	for _, e := range errs {
		if e.Severity == sev {
			n++
		}
	}
	return n
}

// Codes lists the codes of errs in order.
func Codes(errs []*DiagnosticError) []ErrorCode {
	codes := make([]ErrorCode, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	return codes
}

// PromoteWarnings turns every warning into an error in place.
func PromoteWarnings(errs []*DiagnosticError) {
	for _, e := range errs {
		if e.Severity == SeverityWarning {
			e.Severity = SeverityError
		}
	}
}

// Truncate keeps at most limit diagnostics. Fatal diagnostics are never dropped.
// It returns the kept slice and the number of dropped entries.
func Truncate(errs []*DiagnosticError, limit int) ([]*DiagnosticError, int) {
	if limit <= 0 || len(errs) <= limit {
		return errs, 0
	}
	kept := make([]*DiagnosticError, 0, limit+1)
	dropped := 0
	for _, e := range errs {
		if len(kept) < limit || e.Severity == SeverityFatal {
			kept = append(kept, e)
			continue
		}
		dropped++
	}
	return kept, dropped
}
