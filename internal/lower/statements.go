package lower

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/ir"
)

// statements lowers stmts in order, stopping once control cannot continue.
func (b *builder) statements(stmts []ast.Statement) {
	for _, stmt := range stmts {
		if !b.live() || b.failed() {
			return
		}
		b.statement(stmt)
	}
}

func (b *builder) statement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarStatement:
		value := b.expr(s.Value)
		sym := b.l.ctx.Declarations[s.Name]
		if sym == nil {
			b.fail(s.Name.Token, "binding %s has no symbol", s.Name.Value)
			return
		}
		b.declare(sym, value)
	case *ast.AssignStatement:
		b.assign(s)
	case *ast.ReturnStatement:
		if s.Value == nil {
			b.ret(b.unit())
			return
		}
		b.lowerReturn(s.Value)
	case *ast.ExpressionStatement:
		b.expr(s.Expression)
	default:
		b.fail(stmt.GetToken(), "cannot lower %T inside a function", stmt)
	}
}

func (b *builder) assign(s *ast.AssignStatement) {
	id, ok := s.Target.(*ast.Identifier)
	if !ok {
		b.fail(s.Token, "cannot assign to %T", s.Target)
		return
	}
	if !s.IsCompound() {
		b.store(id, b.expr(s.Value))
		return
	}
	current := b.load(id)
	value := b.expr(s.Value)
	result := b.emit(&ir.Instr{
		Op: ir.OpBinary, Dest: b.newReg(), Args: []ir.Reg{current, value}, Operator: s.BinaryOperator(),
	})
	b.store(id, result)
}

// lowerReturn lowers e as the function's result. Control constructs are
// followed down to their leaves, each of which returns its own value.
func (b *builder) lowerReturn(e ast.Expression) {
	if b.failed() || !b.live() {
		return
	}
	switch n := e.(type) {
	case *ast.BlockExpression:
		b.statements(n.Statements)
		if !b.live() || b.failed() {
			return
		}
		if n.Tail == nil {
			b.ret(b.unit())
			return
		}
		b.lowerReturn(n.Tail)
	case *ast.IfExpression:
		for _, br := range n.Branches {
			cond := b.expr(br.Condition)
			then := b.newBlock("if then")
			next := b.newBlock("if else")
			b.branch(cond, then, next)

			b.start(then)
			b.lowerReturn(br.Body)
			b.start(next)
		}
		if n.Else != nil {
			b.lowerReturn(n.Else)
		} else {
			b.ret(b.unit())
		}
	case *ast.MatchExpression:
		b.match(n, true)
	default:
		if !b.l.ctx.TailPositions[e] {
			b.fail(e.GetToken(), "returned expression %T is not in tail position", e)
			return
		}
		var value ir.Reg
		if call, ok := e.(*ast.CallExpression); ok {
			value = b.call(call, b.l.tailCalls && b.l.ctx.TailCalls[call])
		} else {
			value = b.expr(e)
		}
		b.ret(value)
	}
}
