package parser

import (
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/pipeline"
	"github.com/funvibe/valang/internal/token"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		// This case should ideally not be hit if lexer runs first, but as a safeguard:
		ctx.AddError(diagnostics.NewFatal(diagnostics.ErrC001, token.Token{}, "parser: token stream is nil"))
		return ctx
	}

	parser := New(ctx.TokenStream, ctx)
	program := parser.ParseProgram()
	program.File = ctx.FilePath
	ctx.AstRoot = program

	// Errors are already added to the context by the parser instance.
	return ctx
}
