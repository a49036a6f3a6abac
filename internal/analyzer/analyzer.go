package analyzer

import (
	"fmt"
	"sort"

	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/pipeline"
	"github.com/funvibe/valang/internal/symbols"
	"github.com/funvibe/valang/internal/token"
	"github.com/funvibe/valang/internal/typesystem"
)

// Analyzer type checks a resolved program. It reads the resolver's side
// tables from the pipeline context and fills TypeMap and the type registry.
type Analyzer struct {
	ctx     *pipeline.PipelineContext
	types   *typesystem.Registry
	TypeMap map[ast.Node]typesystem.Type

	errorSet map[string]*diagnostics.DiagnosticError // Key: "line:col:code" for deduplication
	order    []string

	// frames holds the declared return type of each enclosing function or closure.
	frames []typesystem.Type
}

// New creates an Analyzer over the resolution tables in ctx.
func New(ctx *pipeline.PipelineContext) *Analyzer {
	typeMap := ctx.TypeMap
	if typeMap == nil {
		typeMap = make(map[ast.Node]typesystem.Type)
	}
	return &Analyzer{
		ctx:      ctx,
		types:    typesystem.NewRegistry(),
		TypeMap:  typeMap,
		errorSet: make(map[string]*diagnostics.DiagnosticError),
	}
}

// Registry returns the struct and enum layouts declared by the program.
func (a *Analyzer) Registry() *typesystem.Registry { return a.types }

// Analyze checks every item and returns the diagnostics, sorted by position.
func (a *Analyzer) Analyze(program *ast.Program) []*diagnostics.DiagnosticError {
	a.declareTypes(program)
	a.declareFunctions(program)
	for _, item := range program.Items {
		if fn, ok := item.(*ast.FunctionStatement); ok {
			a.checkFunction(fn)
		}
	}
	return a.getErrors()
}

// addError adds an error, deduplicating by position and code
func (a *Analyzer) addError(err *diagnostics.DiagnosticError) *diagnostics.DiagnosticError {
	key := fmt.Sprintf("%d:%d:%s", err.Token.Line, err.Token.Column, err.Code)
	if existing, ok := a.errorSet[key]; ok {
		return existing
	}
	a.errorSet[key] = err
	a.order = append(a.order, key)
	return err
}

func (a *Analyzer) errorf(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) *diagnostics.DiagnosticError {
	return a.addError(diagnostics.Errorf(code, tok, format, args...))
}

func (a *Analyzer) warnf(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) *diagnostics.DiagnosticError {
	return a.addError(diagnostics.NewWarning(code, tok, fmt.Sprintf(format, args...)))
}

func (a *Analyzer) errorCount() int { return len(a.order) }

// getErrors returns all unique errors as a slice, sorted by position
func (a *Analyzer) getErrors() []*diagnostics.DiagnosticError {
	result := make([]*diagnostics.DiagnosticError, 0, len(a.order))
	for _, key := range a.order {
		result = append(result, a.errorSet[key])
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Token.Line != result[j].Token.Line {
			return result[i].Token.Line < result[j].Token.Line
		}
		return result[i].Token.Column < result[j].Token.Column
	})
	return result
}

func (a *Analyzer) record(node ast.Node, t typesystem.Type) typesystem.Type {
	if t == nil {
		t = typesystem.Error
	}
	a.TypeMap[node] = t
	return t
}

// symbolOf returns the symbol a reference resolved to, or nil when the
// resolver already reported it.
func (a *Analyzer) symbolOf(id *ast.Identifier) *symbols.Symbol {
	if a.ctx.Unresolved[id] {
		return nil
	}
	return a.ctx.Resolutions[id]
}

func (a *Analyzer) declare(name *ast.Identifier, t typesystem.Type) {
	if sym := a.ctx.Declarations[name]; sym != nil {
		sym.Type = t
	}
}

func (a *Analyzer) pushFrame(ret typesystem.Type) { a.frames = append(a.frames, ret) }

func (a *Analyzer) popFrame() { a.frames = a.frames[:len(a.frames)-1] }

func (a *Analyzer) returnType() typesystem.Type {
	if len(a.frames) == 0 {
		return typesystem.Error
	}
	return a.frames[len(a.frames)-1]
}
