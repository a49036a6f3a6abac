package lower

import (
	"github.com/pkg/errors"

	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/ir"
	"github.com/funvibe/valang/internal/symbols"
	"github.com/funvibe/valang/internal/token"
)

// builder emits the blocks of one function or closure.
type builder struct {
	l     *Lowerer
	fn    *ir.Function
	owner string // top-level function that names nested closures

	// cur is the block being filled; nil after a terminator until the next
	// block starts. Instructions emitted while cur is nil are dead and dropped.
	cur *ir.Block

	locals   map[*symbols.Symbol]ir.Reg
	captures map[*symbols.Symbol]int // capture slot of each captured symbol
}

func newBuilder(l *Lowerer, fn *ir.Function, owner string, captures []*symbols.Symbol) *builder {
	b := &builder{
		l:        l,
		fn:       fn,
		owner:    owner,
		locals:   make(map[*symbols.Symbol]ir.Reg),
		captures: make(map[*symbols.Symbol]int),
	}
	for i, sym := range captures {
		b.captures[sym] = i
	}
	b.start(b.newBlock("entry"))
	return b
}

func (b *builder) fail(tok token.Token, format string, args ...interface{}) {
	b.l.fail(tok, errors.Errorf(format, args...))
}

func (b *builder) failed() bool { return b.l.err != nil }

func (b *builder) newReg() ir.Reg {
	r := ir.Reg(b.fn.Locals)
	b.fn.Locals++
	return r
}

func (b *builder) newBlock(label string) *ir.Block {
	blk := &ir.Block{ID: len(b.fn.Blocks), Label: label}
	b.fn.Blocks = append(b.fn.Blocks, blk)
	return blk
}

func (b *builder) start(blk *ir.Block) { b.cur = blk }

// live reports whether code emitted now is reachable.
func (b *builder) live() bool { return b.cur != nil }

func (b *builder) emit(in *ir.Instr) ir.Reg {
	if b.cur != nil {
		b.cur.Instrs = append(b.cur.Instrs, in)
	}
	return in.Dest
}

func (b *builder) value(op ir.Op, args ...ir.Reg) *ir.Instr {
	return &ir.Instr{Op: op, Dest: b.newReg(), Args: args}
}

func (b *builder) constant(v ir.Value) ir.Reg {
	return b.emit(&ir.Instr{Op: ir.OpConst, Dest: b.newReg(), Const: v})
}

func (b *builder) unit() ir.Reg { return b.constant(ir.Unit()) }

// move copies src into an existing register.
func (b *builder) move(dst, src ir.Reg) {
	b.emit(&ir.Instr{Op: ir.OpCopy, Dest: dst, Args: []ir.Reg{src}})
}

func (b *builder) terminate(t *ir.Terminator) {
	if b.cur == nil {
		return
	}
	b.cur.Term = t
	b.cur = nil
}

func (b *builder) ret(r ir.Reg) {
	b.terminate(&ir.Terminator{Kind: ir.TermReturn, Value: r})
}

func (b *builder) jump(to *ir.Block) {
	b.terminate(&ir.Terminator{Kind: ir.TermJump, Value: ir.NoReg, Targets: []int{to.ID}})
}

func (b *builder) branch(cond ir.Reg, then, otherwise *ir.Block) {
	b.terminate(&ir.Terminator{Kind: ir.TermBranch, Value: cond, Targets: []int{then.ID, otherwise.ID}})
}

func (b *builder) unreachable() {
	b.terminate(&ir.Terminator{Kind: ir.TermUnreachable, Value: ir.NoReg})
}

// finish closes every block that never received a terminator.
func (b *builder) finish() {
	for _, blk := range b.fn.Blocks {
		if blk.Term == nil {
			blk.Term = &ir.Terminator{Kind: ir.TermUnreachable, Value: ir.NoReg}
		}
	}
	b.cur = nil
}

// boxed reports whether sym lives in a cell: a `var` some closure refers to.
func boxed(sym *symbols.Symbol) bool {
	return sym.Mutable && sym.Captured
}

func (b *builder) bindParams(params []*ast.Parameter) {
	for _, p := range params {
		r := b.newReg()
		b.fn.Params = append(b.fn.Params, r)
		if sym := b.l.ctx.Declarations[p.Name]; sym != nil {
			b.locals[sym] = r
		}
	}
}

// declare binds a new local to a copy of value.
func (b *builder) declare(sym *symbols.Symbol, value ir.Reg) {
	if boxed(sym) {
		b.locals[sym] = b.emit(b.value(ir.OpNewCell, value))
		return
	}
	r := b.newReg()
	b.move(r, value)
	b.locals[sym] = r
}

// load reads the current value of the symbol id refers to.
func (b *builder) load(id *ast.Identifier) ir.Reg {
	sym := b.l.ctx.Resolutions[id]
	if sym == nil {
		b.fail(id.Token, "unresolved name %s", id.Value)
		return ir.NoReg
	}
	if sym.Kind == symbols.FunctionSymbol {
		return b.emit(&ir.Instr{Op: ir.OpMakeClosure, Dest: b.newReg(), Callee: sym.Name})
	}
	if r, ok := b.locals[sym]; ok {
		switch {
		case boxed(sym):
			return b.emit(b.value(ir.OpLoadCell, r))
		case sym.Mutable:
			// snapshot: a later assignment must not change this read
			return b.emit(b.value(ir.OpCopy, r))
		}
		return r
	}
	if slot, ok := b.captures[sym]; ok {
		r := b.emit(&ir.Instr{Op: ir.OpLoadCapture, Dest: b.newReg(), Index: slot})
		if boxed(sym) {
			return b.emit(b.value(ir.OpLoadCell, r))
		}
		return r
	}
	b.fail(id.Token, "%s %s is not visible in %s", sym.Kind, sym.Name, b.fn.Name)
	return ir.NoReg
}

// store assigns value to the variable id refers to.
func (b *builder) store(id *ast.Identifier, value ir.Reg) {
	sym := b.l.ctx.Resolutions[id]
	if sym == nil || !sym.Mutable {
		b.fail(id.Token, "cannot store to %s", id.Value)
		return
	}
	if r, ok := b.locals[sym]; ok {
		if boxed(sym) {
			b.emit(&ir.Instr{Op: ir.OpStoreCell, Dest: ir.NoReg, Args: []ir.Reg{r, value}})
			return
		}
		b.move(r, value)
		return
	}
	if slot, ok := b.captures[sym]; ok {
		cell := b.emit(&ir.Instr{Op: ir.OpLoadCapture, Dest: b.newReg(), Index: slot})
		b.emit(&ir.Instr{Op: ir.OpStoreCell, Dest: ir.NoReg, Args: []ir.Reg{cell, value}})
		return
	}
	b.fail(id.Token, "variable %s is not visible in %s", sym.Name, b.fn.Name)
}

// captureOperand is what a new closure stores for sym: the cell of a boxed
// variable, otherwise its value.
func (b *builder) captureOperand(tok token.Token, sym *symbols.Symbol) ir.Reg {
	if r, ok := b.locals[sym]; ok {
		return r
	}
	if slot, ok := b.captures[sym]; ok {
		return b.emit(&ir.Instr{Op: ir.OpLoadCapture, Dest: b.newReg(), Index: slot})
	}
	b.fail(tok, "captured %s is not visible in %s", sym.Name, b.fn.Name)
	return ir.NoReg
}
