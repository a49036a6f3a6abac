// Package cli implements the valc command.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/valang/internal/config"
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/ir"
	"github.com/funvibe/valang/internal/prettyprinter"
	"github.com/funvibe/valang/pkg/valang"
)

// command is one valc subcommand. It returns the process exit code.
type command struct {
	usage string
	run   func(env *env, args []string) int
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"check": {"check <file>            report diagnostics", cmdCheck},
		"ir":    {"ir <file> [-o out]       print the IR, or write it in binary form", cmdIR},
		"ast":   {"ast <file>               print the syntax tree", cmdAST},
		"fmt":   {"fmt [-w] <file>          print the canonical source", cmdFmt},
		"run":   {"run <file> [fn] [args]   run a function in the interpreter", cmdRun},
		"watch": {"watch <file>             re-check the file on every write", cmdWatch},
		"repl":  {"repl                     interactive session", cmdRepl},
		"serve": {"serve [addr]             serve the gRPC compile service", cmdServe},
	}
}

// env is what a command writes to.
type env struct {
	stdout io.Writer
	stderr io.Writer
	color  bool
}

// Run runs valc with the process arguments and exits.
func Run() {
	os.Exit(Main(os.Args[1:], os.Stdout, os.Stderr))
}

// Main runs valc with args and returns the exit code.
func Main(args []string, stdout, stderr io.Writer) int {
	e := &env{stdout: stdout, stderr: stderr, color: colorEnabled(stderr)}
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}
	switch args[0] {
	case "-v", "-version", "--version", "version":
		fmt.Fprintln(stdout, "valc "+config.Version)
		return 0
	case "-h", "-help", "--help", "help":
		printUsage(stdout)
		return 0
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "valc: unknown command %q\n", args[0])
		printUsage(stderr)
		return 2
	}
	return cmd.run(e, args[1:])
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: valc <command> [arguments]")
	fmt.Fprintln(w)
	for _, name := range []string{"check", "ir", "ast", "fmt", "run", "watch", "repl", "serve"} {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

// isSourceFile checks if a file has a recognized source extension
func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// loadOptions reads valang.yaml next to path, or the defaults.
func loadOptions(path string) (*valang.Options, error) {
	return config.Find(path)
}

// compilePath reads and compiles the file at path. A configuration problem
// is returned as a result holding an X001 diagnostic.
func compilePath(path string) (*valang.Result, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	opts, err := loadOptions(path)
	if err != nil {
		return valang.ConfigError(filepath.Join(filepath.Dir(path), config.ConfigFileName), err), nil
	}
	return valang.CompileFile(path, string(source), opts), nil
}

// oneFile extracts the single file argument of a command.
func oneFile(e *env, name string, args []string) (string, bool) {
	if len(args) != 1 {
		fmt.Fprintf(e.stderr, "usage: valc %s\n", commands[name].usage)
		return "", false
	}
	if !isSourceFile(args[0]) {
		fmt.Fprintf(e.stderr, "valc: %s: not a %s source file\n", args[0], config.SourceFileExt)
		return "", false
	}
	return args[0], true
}

// compileFor compiles the file and prints its diagnostics. ok is false when
// the file could not be read.
func compileFor(e *env, path string) (result *valang.Result, ok bool) {
	result, err := compilePath(path)
	if err != nil {
		fmt.Fprintf(e.stderr, "valc: %s\n", err)
		return nil, false
	}
	printDiagnostics(e, result)
	return result, true
}

func cmdCheck(e *env, args []string) int {
	path, ok := oneFile(e, "check", args)
	if !ok {
		return 2
	}
	result, ok := compileFor(e, path)
	if !ok {
		return 1
	}
	if !result.OK() {
		return 1
	}
	return 0
}

func cmdIR(e *env, args []string) int {
	var out string
	var rest []string
	for i := 0; i < len(args); i++ {
		if args[i] == "-o" && i+1 < len(args) {
			out = args[i+1]
			i++
			continue
		}
		rest = append(rest, args[i])
	}
	path, ok := oneFile(e, "ir", rest)
	if !ok {
		return 2
	}
	result, ok := compileFor(e, path)
	if !ok || result.Module == nil {
		return 1
	}
	if out == "" {
		fmt.Fprint(e.stdout, ir.Pretty(result.Module))
		return 0
	}
	data := ir.Marshal(result.Module)
	if err := os.WriteFile(out, data, 0644); err != nil {
		fmt.Fprintf(e.stderr, "valc: writing IR: %s\n", err)
		return 1
	}
	fmt.Fprintf(e.stdout, "Compiled %s -> %s (%d bytes)\n", path, out, len(data))
	return 0
}

// syntaxOK reports whether the result has no lex or parse errors.
func syntaxOK(result *valang.Result) bool {
	for _, d := range result.Errors() {
		if d.Code == diagnostics.ErrL001 || d.Code == diagnostics.ErrP001 {
			return false
		}
	}
	return result.Program != nil
}

func cmdAST(e *env, args []string) int {
	path, ok := oneFile(e, "ast", args)
	if !ok {
		return 2
	}
	result, ok := compileFor(e, path)
	if !ok || result.Program == nil {
		return 1
	}
	fmt.Fprint(e.stdout, prettyprinter.Dump(result.Program))
	if !result.OK() {
		return 1
	}
	return 0
}

func cmdFmt(e *env, args []string) int {
	write := false
	if len(args) > 0 && args[0] == "-w" {
		write = true
		args = args[1:]
	}
	path, ok := oneFile(e, "fmt", args)
	if !ok {
		return 2
	}
	result, err := compilePath(path)
	if err != nil {
		fmt.Fprintf(e.stderr, "valc: %s\n", err)
		return 1
	}
	if !syntaxOK(result) {
		printDiagnostics(e, result)
		return 1
	}
	formatted := prettyprinter.Format(result.Program)
	if !write {
		fmt.Fprint(e.stdout, formatted)
		return 0
	}
	if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
		fmt.Fprintf(e.stderr, "valc: %s\n", err)
		return 1
	}
	return 0
}
