package lower

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/ir"
	"github.com/funvibe/valang/internal/symbols"
	"github.com/funvibe/valang/internal/typesystem"
)

// expr lowers e in value context and returns the register holding its value.
func (b *builder) expr(e ast.Expression) ir.Reg {
	if b.failed() || !b.live() {
		return ir.NoReg
	}
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return b.constant(ir.Int(n.Value))
	case *ast.BooleanLiteral:
		return b.constant(ir.Bool(n.Value))
	case *ast.StringLiteral:
		return b.constant(ir.String(n.Value))
	case *ast.UnitLiteral:
		return b.unit()
	case *ast.Identifier:
		return b.load(n)
	case *ast.PrefixExpression:
		right := b.expr(n.Right)
		return b.emit(&ir.Instr{Op: ir.OpUnary, Dest: b.newReg(), Args: []ir.Reg{right}, Operator: n.Operator})
	case *ast.InfixExpression:
		return b.infix(n)
	case *ast.CallExpression:
		return b.call(n, false)
	case *ast.FieldAccessExpression:
		return b.fieldAccess(n)
	case *ast.BlockExpression:
		return b.blockValue(n)
	case *ast.IfExpression:
		return b.ifValue(n)
	case *ast.MatchExpression:
		return b.match(n, false)
	case *ast.FunctionLiteral:
		return b.closure(n)
	case *ast.StructLiteral:
		return b.structLiteral(n)
	case *ast.VariantExpression:
		return b.variant(n)
	}
	b.fail(e.GetToken(), "cannot lower %T", e)
	return ir.NoReg
}

func (b *builder) infix(n *ast.InfixExpression) ir.Reg {
	switch n.Operator {
	case "&&", "||":
		return b.logical(n)
	}
	left := b.expr(n.Left)
	right := b.expr(n.Right)
	return b.emit(&ir.Instr{Op: ir.OpBinary, Dest: b.newReg(), Args: []ir.Reg{left, right}, Operator: n.Operator})
}

// logical lowers && and ||; the right operand runs only when it decides the result.
func (b *builder) logical(n *ast.InfixExpression) ir.Reg {
	result := b.newReg()
	b.move(result, b.expr(n.Left))

	rhs := b.newBlock(n.Operator + " rhs")
	end := b.newBlock(n.Operator + " end")
	if n.Operator == "&&" {
		b.branch(result, rhs, end)
	} else {
		b.branch(result, end, rhs)
	}

	b.start(rhs)
	b.move(result, b.expr(n.Right))
	b.jump(end)

	b.start(end)
	return result
}

// call lowers a call. tail marks a call whose result the function returns.
func (b *builder) call(n *ast.CallExpression, tail bool) ir.Reg {
	if id, ok := n.Function.(*ast.Identifier); ok {
		if sym := b.l.ctx.Resolutions[id]; sym != nil && sym.Kind == symbols.FunctionSymbol {
			args := b.exprs(n.Arguments)
			return b.emit(&ir.Instr{Op: ir.OpCall, Dest: b.newReg(), Args: args, Callee: sym.Name, Tail: tail})
		}
	}
	callee := b.expr(n.Function)
	args := append([]ir.Reg{callee}, b.exprs(n.Arguments)...)
	return b.emit(&ir.Instr{Op: ir.OpCallIndirect, Dest: b.newReg(), Args: args, Tail: tail})
}

func (b *builder) exprs(list []ast.Expression) []ir.Reg {
	regs := make([]ir.Reg, len(list))
	for i, e := range list {
		regs[i] = b.expr(e)
	}
	return regs
}

func (b *builder) fieldAccess(n *ast.FieldAccessExpression) ir.Reg {
	t := b.l.ctx.TypeOf(n.Left)
	left := b.expr(n.Left)
	name := n.Field.Value

	if info := b.l.types.Struct(t); info != nil {
		i := info.FieldIndex(name)
		if i < 0 {
			b.fail(n.Field.Token, "struct %s has no field %s", info.Name, name)
			return ir.NoReg
		}
		return b.emit(&ir.Instr{Op: ir.OpLoadField, Dest: b.newReg(), Args: []ir.Reg{left}, Index: i})
	}

	info := b.l.types.Enum(t)
	if info == nil {
		b.fail(n.Field.Token, "field %s of non-aggregate type %v", name, t)
		return ir.NoReg
	}
	if _, ok := info.SharedField(name); !ok {
		b.fail(n.Field.Token, "enum %s has no shared field %s", info.Name, name)
		return ir.NoReg
	}

	slots := make([]int, len(info.Variants))
	uniform := true
	for i, v := range info.Variants {
		slots[i] = v.FieldIndex(name)
		if slots[i] != slots[0] {
			uniform = false
		}
	}
	if uniform {
		return b.emit(&ir.Instr{Op: ir.OpLoadPayload, Dest: b.newReg(), Args: []ir.Reg{left}, Index: slots[0]})
	}

	// The field sits at a different payload slot per variant.
	result := b.newReg()
	tag := b.emit(b.value(ir.OpDiscriminant, left))
	term := &ir.Terminator{Kind: ir.TermSwitch, Value: tag, Default: -1}
	cases := make([]*ir.Block, len(info.Variants))
	for i, v := range info.Variants {
		cases[i] = b.newBlock(info.Name + "::" + v.Name + "." + name)
		term.Cases = append(term.Cases, ir.Case{Value: int64(v.Tag), Target: cases[i].ID})
	}
	end := b.newBlock("field end")
	b.terminate(term)
	for i, blk := range cases {
		b.start(blk)
		b.move(result, b.emit(&ir.Instr{Op: ir.OpLoadPayload, Dest: b.newReg(), Args: []ir.Reg{left}, Index: slots[i]}))
		b.jump(end)
	}
	b.start(end)
	return result
}

// blockValue lowers a block in value context.
func (b *builder) blockValue(n *ast.BlockExpression) ir.Reg {
	b.statements(n.Statements)
	if !b.live() || b.failed() {
		return ir.NoReg
	}
	if n.Tail == nil {
		return b.unit()
	}
	return b.expr(n.Tail)
}

func (b *builder) ifValue(n *ast.IfExpression) ir.Reg {
	result := b.newReg()
	end := b.newBlock("if end")
	for _, br := range n.Branches {
		cond := b.expr(br.Condition)
		then := b.newBlock("if then")
		next := b.newBlock("if else")
		b.branch(cond, then, next)

		b.start(then)
		b.move(result, b.blockValue(br.Body))
		b.jump(end)

		b.start(next)
	}
	if n.Else != nil {
		b.move(result, b.blockValue(n.Else))
	} else {
		b.move(result, b.unit())
	}
	b.jump(end)

	b.start(end)
	return result
}

func (b *builder) closure(n *ast.FunctionLiteral) ir.Reg {
	captured := b.l.ctx.Captures[n]
	name := b.l.lowerClosure(b.owner, n, captured)
	args := make([]ir.Reg, len(captured))
	for i, sym := range captured {
		args[i] = b.captureOperand(n.Token, sym)
	}
	return b.emit(&ir.Instr{Op: ir.OpMakeClosure, Dest: b.newReg(), Args: args, Callee: name})
}

// structLiteral evaluates the field initializers in source order and
// stores them in layout order.
func (b *builder) structLiteral(n *ast.StructLiteral) ir.Reg {
	info := b.l.types.Structs[n.Name.Value]
	if info == nil {
		b.fail(n.Token, "unknown struct %s", n.Name.Value)
		return ir.NoReg
	}
	values := make(map[string]ir.Reg, len(n.Fields))
	for _, f := range n.Fields {
		values[f.Name.Value] = b.expr(f.Value)
	}
	args := make([]ir.Reg, len(info.Fields))
	for i, f := range info.Fields {
		r, ok := values[f.Name]
		if !ok {
			b.fail(n.Token, "struct %s literal misses field %s", info.Name, f.Name)
			return ir.NoReg
		}
		args[i] = r
	}
	return b.emit(&ir.Instr{Op: ir.OpMakeStruct, Dest: b.newReg(), Args: args, Callee: info.Name})
}

func (b *builder) variant(n *ast.VariantExpression) ir.Reg {
	info := b.l.types.Enums[n.Enum.Value]
	var v *typesystem.VariantInfo
	if info != nil {
		v = info.Variant(n.Variant.Value)
	}
	if v == nil {
		b.fail(n.Token, "unknown variant %s::%s", n.Enum.Value, n.Variant.Value)
		return ir.NoReg
	}
	if len(n.Arguments) != len(v.Fields) {
		b.fail(n.Token, "variant %s::%s built with %d of %d fields", info.Name, v.Name, len(n.Arguments), len(v.Fields))
		return ir.NoReg
	}
	args := b.exprs(n.Arguments)
	return b.emit(&ir.Instr{Op: ir.OpMakeVariant, Dest: b.newReg(), Args: args, Callee: info.Name, Index: v.Tag})
}
