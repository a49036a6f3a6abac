// Package backend executes lowered IR.
package backend

import (
	"context"
)

// Backend runs a function of a lowered module.
type Backend interface {
	// Run calls entry with args and returns its result.
	Run(ctx context.Context, entry string, args []Value) (Value, error)

	// Name returns the backend name for display
	Name() string
}

var _ Backend = (*Interpreter)(nil)
