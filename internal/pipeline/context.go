package pipeline

import (
	"github.com/google/uuid"

	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/config"
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/ir"
	"github.com/funvibe/valang/internal/symbols"
	"github.com/funvibe/valang/internal/token"
	"github.com/funvibe/valang/internal/typesystem"
)

// TokenStream is a finite, EOF-terminated sequence of tokens.
// Once EOF is reached Next keeps returning it.
type TokenStream interface {
	Next() token.Token
	// Peek returns the token n positions ahead without consuming; Peek(1) is the next token.
	Peek(n int) token.Token
}

// PipelineContext carries one compilation unit through every stage.
// Later stages read what earlier stages recorded in the side tables.
type PipelineContext struct {
	UnitID     uuid.UUID
	SourceCode string
	FilePath   string
	Options    *config.Options

	TokenStream TokenStream
	AstRoot     ast.Node

	// Name resolution
	Globals      *symbols.Scope
	Resolutions  map[*ast.Identifier]*symbols.Symbol // reference -> symbol
	Declarations map[*ast.Identifier]*symbols.Symbol // declaring name -> symbol
	Unresolved   map[*ast.Identifier]bool
	Captures     map[*ast.FunctionLiteral][]*symbols.Symbol

	// Type checking
	Types   *typesystem.Registry
	TypeMap map[ast.Node]typesystem.Type

	// Tail positions
	TailPositions map[ast.Node]bool
	TailReturns   map[ast.Node]bool
	TailCalls     map[*ast.CallExpression]bool

	Module *ir.Module

	Errors []*diagnostics.DiagnosticError

	// Truncated counts diagnostics dropped by the error limit.
	Truncated int
}

func NewPipelineContext(sourceCode string) *PipelineContext {
	return &PipelineContext{
		UnitID:        uuid.New(),
		SourceCode:    sourceCode,
		Options:       config.Default(),
		Resolutions:   make(map[*ast.Identifier]*symbols.Symbol),
		Declarations:  make(map[*ast.Identifier]*symbols.Symbol),
		Unresolved:    make(map[*ast.Identifier]bool),
		Captures:      make(map[*ast.FunctionLiteral][]*symbols.Symbol),
		TypeMap:       make(map[ast.Node]typesystem.Type),
		TailPositions: make(map[ast.Node]bool),
		TailReturns:   make(map[ast.Node]bool),
		TailCalls:     make(map[*ast.CallExpression]bool),
		Errors:        []*diagnostics.DiagnosticError{},
	}
}

// AddError appends a diagnostic, stamping the unit's file path.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err == nil {
		return
	}
	if err.File == "" {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, err)
}

// HasErrors reports whether the unit has any error-severity diagnostic.
func (ctx *PipelineContext) HasErrors() bool {
	return diagnostics.HasErrors(ctx.Errors)
}

func (ctx *PipelineContext) HasFatal() bool {
	return diagnostics.HasFatal(ctx.Errors)
}

// Program returns the parsed root, or nil when parsing did not run.
func (ctx *PipelineContext) Program() *ast.Program {
	prog, _ := ctx.AstRoot.(*ast.Program)
	return prog
}

// TypeOf returns the recorded type of node, or nil.
func (ctx *PipelineContext) TypeOf(node ast.Node) typesystem.Type {
	return ctx.TypeMap[node]
}

func (ctx *PipelineContext) finish() {
	for _, err := range ctx.Errors {
		if err.File == "" {
			err.File = ctx.FilePath
		}
	}
	if ctx.Options == nil {
		return
	}
	if ctx.Options.WarningsAsErrors {
		diagnostics.PromoteWarnings(ctx.Errors)
	}
	var dropped int
	ctx.Errors, dropped = diagnostics.Truncate(ctx.Errors, ctx.Options.ErrorLimit())
	ctx.Truncated += dropped
}
