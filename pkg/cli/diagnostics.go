package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/valang/internal/config"
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/pkg/valang"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// colorEnabled reports whether w is a terminal that should get colors.
func colorEnabled(w io.Writer) bool {
	if config.IsTestMode {
		return false
	}
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

func (e *env) paint(color, s string) string {
	if !e.color {
		return s
	}
	return color + s + colorReset
}

// printDiagnostics writes one line per diagnostic and a summary line.
func printDiagnostics(e *env, result *valang.Result) {
	for _, d := range result.Diagnostics {
		color := colorRed
		if d.Severity == diagnostics.SeverityWarning {
			color = colorYellow
		}
		fmt.Fprintln(e.stderr, e.paint(color, d.Error()))
	}
	if result.Truncated > 0 {
		fmt.Fprintln(e.stderr, e.paint(colorGray, fmt.Sprintf("note: %d more diagnostic(s) not shown", result.Truncated)))
	}
	errs, warns := len(result.Errors()), len(result.Warnings())
	if errs == 0 && warns == 0 {
		return
	}
	fmt.Fprintln(e.stderr, e.paint(colorBold, fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)))
}
