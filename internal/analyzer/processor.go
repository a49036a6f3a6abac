package analyzer

import (
	"github.com/funvibe/valang/internal/pipeline"
)

// SemanticAnalyzerProcessor type checks the unit. Like the resolver it runs
// after earlier errors; poisoned nodes keep mistakes from cascading.
type SemanticAnalyzerProcessor struct{}

func (sap *SemanticAnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	program := ctx.Program()
	if program == nil {
		return ctx
	}

	analyzer := New(ctx)
	errors := analyzer.Analyze(program)

	ctx.TypeMap = analyzer.TypeMap  // Export inferred types to context
	ctx.Types = analyzer.Registry() // Export struct and enum layouts

	for _, err := range errors {
		ctx.AddError(err)
	}
	return ctx
}
