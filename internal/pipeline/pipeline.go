package pipeline

// Processor is one compilation stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc func(ctx *PipelineContext) *PipelineContext

func (f ProcessorFunc) Process(ctx *PipelineContext) *PipelineContext { return f(ctx) }

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Append returns a new pipeline with extra stages at the end.
func (p *Pipeline) Append(processors ...Processor) *Pipeline {
	all := make([]Processor, 0, len(p.processors)+len(processors))
	all = append(all, p.processors...)
	all = append(all, processors...)
	return &Pipeline{processors: all}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors to collect diagnostics from all stages.
		// A fatal diagnostic aborts the unit.
		if ctx.HasFatal() {
			break
		}
	}
	ctx.finish()
	return ctx
}
