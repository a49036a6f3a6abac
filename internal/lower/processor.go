package lower

import (
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/pipeline"
)

// LowerProcessor produces ctx.Module. It runs only for a unit without
// errors; with WarningsAsErrors a warning also suppresses it. A lowering
// failure is reported as a fatal C001 and leaves ctx.Module nil.
type LowerProcessor struct{}

func (lp *LowerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	program := ctx.Program()
	if program == nil || ctx.HasErrors() {
		return ctx
	}
	if ctx.Options != nil && ctx.Options.WarningsAsErrors &&
		diagnostics.Count(ctx.Errors, diagnostics.SeverityWarning) > 0 {
		return ctx
	}

	lowerer := New(ctx)
	module, err := lowerer.Lower(program)
	if err != nil {
		ctx.AddError(diagnostics.NewFatal(diagnostics.ErrC001, lowerer.ErrorToken(), err.Error()))
		return ctx
	}
	ctx.Module = module
	return ctx
}
