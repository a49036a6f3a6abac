package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/funvibe/valang/internal/backend"
	"github.com/funvibe/valang/internal/config"
	"github.com/funvibe/valang/internal/ir"
	"github.com/funvibe/valang/internal/prettyprinter"
	"github.com/funvibe/valang/pkg/valang"
)

const colorGreen = "\033[32m"

const replHelp = `Enter declarations (fn, struct, enum); they are kept when the session still compiles.
  :run <fn> [args]   call a function
  :ir                print the session IR
  :ast               print the session syntax tree
  :src               print the session source
  :reset             forget every declaration
  exit               leave (or Ctrl+D)
`

// session is the source accumulated by the REPL.
type session struct {
	source string
	result *valang.Result
}

func (s *session) try(input string) *valang.Result {
	candidate := s.source + input + "\n"
	result := valang.CompileFile("<repl>", candidate, nil)
	if result.OK() {
		s.source = candidate
		s.result = result
	}
	return result
}

func cmdRepl(e *env, args []string) int {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".valang_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            e.paint(colorGreen, "valang> "),
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(e.stderr, "readline init failed: %v\n", err)
		return 1
	}
	defer rl.Close()

	re := &env{stdout: rl.Stdout(), stderr: rl.Stderr(), color: e.color}
	fmt.Fprintf(re.stdout, "valang %s %s\n\n", config.Version, re.paint(colorGray, "(type :help for commands)"))

	s := &session{}
	var accumulated strings.Builder
	braceDepth := 0
	for {
		if braceDepth > 0 {
			rl.SetPrompt(re.paint(colorGray, "...     "))
		} else {
			rl.SetPrompt(re.paint(colorGreen, "valang> "))
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if braceDepth > 0 {
					accumulated.Reset()
					braceDepth = 0
				}
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(re.stdout)
			}
			return 0
		}

		trimmed := strings.TrimSpace(line)
		if braceDepth == 0 {
			if trimmed == "exit" {
				return 0
			}
			if strings.HasPrefix(trimmed, ":") {
				replCommand(re, s, strings.Fields(trimmed))
				continue
			}
		}

		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		accumulated.WriteString(line)
		accumulated.WriteString("\n")
		if braceDepth > 0 {
			continue
		}
		braceDepth = 0

		input := accumulated.String()
		accumulated.Reset()
		if strings.TrimSpace(input) == "" {
			continue
		}
		printDiagnostics(re, s.try(input))
	}
}

func replCommand(e *env, s *session, fields []string) {
	switch fields[0] {
	case ":help":
		fmt.Fprint(e.stdout, replHelp)
	case ":reset":
		*s = session{}
	case ":src":
		fmt.Fprint(e.stdout, s.source)
	case ":ast":
		if s.result != nil && s.result.Program != nil {
			fmt.Fprint(e.stdout, prettyprinter.Dump(s.result.Program))
		}
	case ":ir":
		if s.result != nil && s.result.Module != nil {
			fmt.Fprint(e.stdout, ir.Pretty(s.result.Module))
		}
	case ":run":
		if len(fields) < 2 {
			fmt.Fprintln(e.stderr, "usage: :run <fn> [args]")
			return
		}
		if s.result == nil || s.result.Module == nil {
			fmt.Fprintln(e.stderr, "nothing declared yet")
			return
		}
		args := make([]backend.Value, 0, len(fields)-2)
		for _, f := range fields[2:] {
			args = append(args, parseArg(f))
		}
		v, err := backend.NewInterpreter(s.result.Module).Run(context.Background(), fields[1], args)
		if err != nil {
			fmt.Fprintln(e.stderr, e.paint(colorRed, err.Error()))
			return
		}
		fmt.Fprintln(e.stdout, v.Inspect())
	default:
		fmt.Fprintf(e.stderr, "unknown command %s (try :help)\n", fields[0])
	}
}
