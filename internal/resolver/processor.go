package resolver

import (
	"github.com/funvibe/valang/internal/pipeline"
)

// ResolverProcessor binds names for the unit. It runs even after parse errors
// so independent mistakes are all reported.
type ResolverProcessor struct{}

func (rp *ResolverProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	program := ctx.Program()
	if program == nil {
		return ctx
	}
	r := New(ctx)
	r.Resolve(program)
	ctx.Globals = r.Globals()
	return ctx
}
