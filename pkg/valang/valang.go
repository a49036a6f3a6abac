// Package valang is the in-process compiler API: it runs the full pipeline
// over one source unit and returns the diagnostics, syntax tree and IR.
package valang

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/funvibe/valang/internal/analyzer"
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/backend"
	"github.com/funvibe/valang/internal/config"
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/ir"
	"github.com/funvibe/valang/internal/lexer"
	"github.com/funvibe/valang/internal/lower"
	"github.com/funvibe/valang/internal/parser"
	"github.com/funvibe/valang/internal/pipeline"
	"github.com/funvibe/valang/internal/resolver"
	"github.com/funvibe/valang/internal/tailpos"
	"github.com/funvibe/valang/internal/token"
)

type Options = config.Options
type Diagnostic = diagnostics.DiagnosticError
type Program = ast.Program
type Module = ir.Module

// DefaultOptions returns the options used when a project has no valang.yaml.
func DefaultOptions() *Options { return config.Default() }

// Result is the outcome of compiling one unit.
type Result struct {
	UnitID      uuid.UUID
	File        string
	Diagnostics []*Diagnostic
	Truncated   int // diagnostics dropped by Options.MaxErrors

	Program *Program // nil only if parsing never ran
	Module  *Module  // nil unless the unit compiled without errors
}

// Stages returns the compile stages in order.
func Stages() []pipeline.Processor {
	return []pipeline.Processor{
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&resolver.ResolverProcessor{},
		&analyzer.SemanticAnalyzerProcessor{},
		&tailpos.TailProcessor{},
		&lower.LowerProcessor{},
	}
}

// Compile compiles source. A nil opts means DefaultOptions.
func Compile(source string, opts *Options) *Result {
	return CompileFile("", source, opts)
}

// CompileFile compiles source, naming file in diagnostics. It does not read file.
func CompileFile(file, source string, opts *Options) *Result {
	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = file
	if opts != nil {
		ctx.Options = opts
	}
	ctx = pipeline.New(Stages()...).Run(ctx)
	return newResult(ctx)
}

func newResult(ctx *pipeline.PipelineContext) *Result {
	return &Result{
		UnitID:      ctx.UnitID,
		File:        ctx.FilePath,
		Diagnostics: ctx.Errors,
		Truncated:   ctx.Truncated,
		Program:     ctx.Program(),
		Module:      ctx.Module,
	}
}

// ConfigError wraps an options loading failure as an X001 diagnostic.
func ConfigError(file string, err error) *Result {
	d := diagnostics.Errorf(diagnostics.ErrX001, token.Token{}, "%s", err)
	d.File = file
	return &Result{UnitID: uuid.New(), File: file, Diagnostics: []*Diagnostic{d}}
}

// OK reports whether the unit has no error-severity diagnostic.
func (r *Result) OK() bool { return !diagnostics.HasErrors(r.Diagnostics) }

// Errors returns the error and fatal diagnostics.
func (r *Result) Errors() []*Diagnostic {
	var out []*Diagnostic
	for _, d := range r.Diagnostics {
		if d.IsError() {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns the warning diagnostics.
func (r *Result) Warnings() []*Diagnostic {
	var out []*Diagnostic
	for _, d := range r.Diagnostics {
		if !d.IsError() {
			out = append(out, d)
		}
	}
	return out
}

// Call runs function name of the compiled module in the reference
// interpreter. Arguments and the result are converted with the Marshaller.
func (r *Result) Call(ctx context.Context, name string, args ...interface{}) (interface{}, error) {
	if r.Module == nil {
		return nil, fmt.Errorf("unit did not compile: %d error(s)", len(r.Errors()))
	}
	m := NewMarshaller(r.Module)
	values := make([]backend.Value, len(args))
	for i, a := range args {
		v, err := m.ToValue(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		values[i] = v
	}
	result, err := backend.NewInterpreter(r.Module).Run(ctx, name, values)
	if err != nil {
		return nil, err
	}
	return m.FromValue(result)
}
