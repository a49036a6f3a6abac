package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/funvibe/valang/internal/backend"
	"github.com/funvibe/valang/internal/pipeline"
	"github.com/funvibe/valang/pkg/valang"
)

// parseArg reads a command-line argument as an Int, Bool or String value.
func parseArg(s string) backend.Value {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return backend.Int(n)
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return backend.Bool(b)
	}
	return backend.String(s)
}

func cmdRun(e *env, args []string) int {
	if len(args) == 0 {
		fmt.Fprintf(e.stderr, "usage: valc %s\n", commands["run"].usage)
		return 2
	}
	path := args[0]
	result, ok := compileFor(e, path)
	if !ok || result.Module == nil {
		return 1
	}

	opts, err := loadOptions(path)
	if err != nil {
		opts = valang.DefaultOptions()
	}
	entry := opts.Entry
	var values []backend.Value
	if len(args) > 1 {
		entry = args[1]
		for _, a := range args[2:] {
			values = append(values, parseArg(a))
		}
	}

	ctx := pipeline.NewPipelineContext("")
	ctx.Module = result.Module
	exec := backend.NewExecutionProcessor(entry, values...)
	exec.Context = context.Background()
	exec.Process(ctx)
	if exec.Err != nil {
		fmt.Fprintln(e.stderr, e.paint(colorRed, exec.Err.Error()))
		return 1
	}
	fmt.Fprintln(e.stdout, exec.Result.Inspect())
	return 0
}
