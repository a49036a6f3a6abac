package backend

import (
	"context"

	"github.com/funvibe/valang/internal/config"
	"github.com/funvibe/valang/internal/ir"
	"github.com/funvibe/valang/internal/pipeline"
)

// ExecutionProcessor runs the lowered module after the compile stages.
// Runtime traps are not diagnostics; the outcome is kept in Result and Err.
type ExecutionProcessor struct {
	// New builds the backend for a module; nil means the interpreter.
	New func(m *ir.Module) Backend

	Context context.Context
	Entry   string // defaults to Options.Entry
	Args    []Value

	Result Value
	Err    error
}

// NewExecutionProcessor creates a stage that calls entry with args.
func NewExecutionProcessor(entry string, args ...Value) *ExecutionProcessor {
	return &ExecutionProcessor{Entry: entry, Args: args}
}

func (p *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	// Nothing to run when lowering was skipped or failed
	if ctx.Module == nil {
		return ctx
	}

	entry := p.Entry
	if entry == "" && ctx.Options != nil {
		entry = ctx.Options.Entry
	}
	if entry == "" {
		entry = config.DefaultEntry
	}

	newBackend := p.New
	if newBackend == nil {
		newBackend = func(m *ir.Module) Backend { return NewInterpreter(m) }
	}
	runCtx := p.Context
	if runCtx == nil {
		runCtx = context.Background()
	}

	p.Result, p.Err = newBackend(ctx.Module).Run(runCtx, entry, p.Args)
	return ctx
}
