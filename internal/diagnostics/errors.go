package diagnostics

import (
	"fmt"
	"strings"

	"github.com/funvibe/valang/internal/token"
)

// ErrorCode is a stable identifier for a diagnostic kind.
type ErrorCode string

const (
	ErrL001  ErrorCode = "L001" // LexError
	ErrP001  ErrorCode = "P001" // ParseError
	ErrR001  ErrorCode = "R001" // UndefinedName
	ErrR002  ErrorCode = "R002" // DuplicateDefinition
	ErrT001  ErrorCode = "T001" // TypeMismatch
	ErrT002  ErrorCode = "T002" // ImmutableAssignment
	ErrT003  ErrorCode = "T003" // ArityMismatch
	ErrT004  ErrorCode = "T004" // NonExhaustiveMatch
	WarnW001 ErrorCode = "W001" // UnreachablePattern
	ErrC001  ErrorCode = "C001" // CodegenError
	ErrX001  ErrorCode = "X001" // ConfigError
)

var kindNames = map[ErrorCode]string{
	ErrL001:  "LexError",
	ErrP001:  "ParseError",
	ErrR001:  "UndefinedName",
	ErrR002:  "DuplicateDefinition",
	ErrT001:  "TypeMismatch",
	ErrT002:  "ImmutableAssignment",
	ErrT003:  "ArityMismatch",
	ErrT004:  "NonExhaustiveMatch",
	WarnW001: "UnreachablePattern",
	ErrC001:  "CodegenError",
	ErrX001:  "ConfigError",
}

// Kind returns the taxonomy name of the code, e.g. "TypeMismatch".
func (c ErrorCode) Kind() string {
	if k, ok := kindNames[c]; ok {
		return k
	}
	return "Unknown"
}

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Related is a secondary location attached to a diagnostic ("first defined here").
type Related struct {
	Token token.Token
	Label string
}

// DiagnosticError is a single compiler diagnostic. Token is the primary location.
type DiagnosticError struct {
	Code     ErrorCode
	Severity Severity
	Token    token.Token
	Message  string
	File     string
	Related  []Related
}

// NewError creates an error-severity diagnostic at tok.
func NewError(code ErrorCode, tok token.Token, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: SeverityError, Token: tok, Message: msg}
}

// Errorf creates an error-severity diagnostic with a formatted message.
func Errorf(code ErrorCode, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	return NewError(code, tok, fmt.Sprintf(format, args...))
}

// NewWarning creates a warning diagnostic at tok.
func NewWarning(code ErrorCode, tok token.Token, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: SeverityWarning, Token: tok, Message: msg}
}

// NewFatal creates a diagnostic that aborts the unit.
func NewFatal(code ErrorCode, tok token.Token, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Severity: SeverityFatal, Token: tok, Message: msg}
}

// WithRelated attaches a secondary span and returns the diagnostic.
func (e *DiagnosticError) WithRelated(tok token.Token, label string) *DiagnosticError {
	e.Related = append(e.Related, Related{Token: tok, Label: label})
	return e
}

// IsError reports whether the diagnostic blocks code generation.
func (e *DiagnosticError) IsError() bool {
	return e.Severity != SeverityWarning
}

func (e *DiagnosticError) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(":")
	}
	if e.Token.Line > 0 {
		fmt.Fprintf(&b, "%d:%d: ", e.Token.Line, e.Token.Column)
	} else if e.File != "" {
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "%s[%s]: %s", e.Severity, e.Code, e.Message)
	for _, r := range e.Related {
		if r.Token.Line > 0 {
			fmt.Fprintf(&b, " (%s at %d:%d)", r.Label, r.Token.Line, r.Token.Column)
		}
	}
	return b.String()
}
