package tailpos

import (
	"github.com/funvibe/valang/internal/pipeline"
)

// TailProcessor runs the tail analysis. It needs only the tree, so it runs
// even when earlier stages reported errors.
type TailProcessor struct{}

func (tp *TailProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	program := ctx.Program()
	if program == nil {
		return ctx
	}
	Analyze(ctx, program)
	return ctx
}
