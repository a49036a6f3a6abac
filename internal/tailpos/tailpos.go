// Package tailpos classifies tail positions: the expressions whose value
// becomes the enclosing function's result without an explicit return.
package tailpos

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/pipeline"
)

type walker struct {
	ctx *pipeline.PipelineContext

	inTailPosition bool // true when visiting an expression in tail position
	implicit       bool // false below an explicit `return`
}

// Analyze records tail positions for every function and closure in program.
func Analyze(ctx *pipeline.PipelineContext, program *ast.Program) {
	w := &walker{ctx: ctx}
	for _, item := range program.Items {
		if fn, ok := item.(*ast.FunctionStatement); ok && fn.Body != nil {
			w.body(fn.Body)
		}
	}
}

// body walks a function or closure body, which starts in tail position.
func (w *walker) body(b *ast.BlockExpression) {
	wasTail, wasImplicit := w.inTailPosition, w.implicit
	w.inTailPosition, w.implicit = true, true
	w.expression(b)
	w.inTailPosition, w.implicit = wasTail, wasImplicit
}

func (w *walker) block(b *ast.BlockExpression) {
	// Only the tail inherits the incoming flag
	wasTail := w.inTailPosition
	w.inTailPosition = false
	for _, stmt := range b.Statements {
		w.statement(stmt)
	}
	w.inTailPosition = wasTail
	if b.Tail != nil {
		w.expression(b.Tail)
	}
}

func (w *walker) statement(stmt ast.Statement) {
	ret, ok := stmt.(*ast.ReturnStatement)
	if !ok {
		w.nested(stmt)
		return
	}
	if ret.Value == nil {
		return
	}
	// The returned value is a tail position, but not an implicit return.
	wasTail, wasImplicit := w.inTailPosition, w.implicit
	w.inTailPosition, w.implicit = true, false
	w.expression(ret.Value)
	w.inTailPosition, w.implicit = wasTail, wasImplicit
}

func (w *walker) expression(e ast.Expression) {
	if e == nil {
		return
	}
	if w.inTailPosition {
		w.ctx.TailPositions[e] = true
	}

	switch n := e.(type) {
	case *ast.BlockExpression:
		w.block(n)
	case *ast.IfExpression:
		wasTail := w.inTailPosition
		w.inTailPosition = false
		for _, br := range n.Branches {
			w.expression(br.Condition)
		}
		w.inTailPosition = wasTail
		for _, br := range n.Branches {
			if br.Body != nil {
				w.expression(br.Body)
			}
		}
		if n.Else != nil {
			w.expression(n.Else)
		}
	case *ast.MatchExpression:
		wasTail := w.inTailPosition
		w.inTailPosition = false
		w.expression(n.Subject)
		w.inTailPosition = wasTail
		for _, arm := range n.Arms {
			if arm.Body != nil {
				w.expression(arm.Body)
			}
		}
	default:
		w.leaf(e)
	}
}

// leaf handles an expression that produces its value directly.
func (w *walker) leaf(e ast.Expression) {
	if w.inTailPosition {
		if w.implicit {
			w.ctx.TailReturns[e] = true
		}
		if call, ok := e.(*ast.CallExpression); ok {
			w.ctx.TailCalls[call] = true
		}
	}
	if fl, ok := e.(*ast.FunctionLiteral); ok && fl.Body != nil {
		w.body(fl.Body)
		return
	}
	w.nested(e)
}

// nested visits the sub-expressions of n, none of which is in tail position.
func (w *walker) nested(n ast.Node) {
	wasTail := w.inTailPosition
	w.inTailPosition = false
	for _, child := range ast.Children(n) {
		switch c := child.(type) {
		case ast.Expression:
			w.expression(c)
		case ast.Statement:
			w.statement(c)
		default:
			w.nested(c)
		}
	}
	w.inTailPosition = wasTail
}
