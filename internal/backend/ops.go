package backend

import (
	"context"

	"github.com/funvibe/valang/internal/ir"
)

// step executes one non-terminator instruction.
func (in *Interpreter) step(ctx context.Context, f *frame, blk *ir.Block, instr *ir.Instr) error {
	arg := func(i int) Value { return f.regs[instr.Args[i]] }

	var result Value
	switch instr.Op {
	case ir.OpConst:
		result = constant(instr.Const)
	case ir.OpCopy:
		result = arg(0)
	case ir.OpUnary:
		v, err := unary(instr.Operator, arg(0))
		if err != nil {
			return in.trap(f, blk, "%s", err)
		}
		result = v
	case ir.OpBinary:
		v, err := binary(instr.Operator, arg(0), arg(1))
		if err != nil {
			return in.trap(f, blk, "%s", err)
		}
		result = v
	case ir.OpCall:
		fn := in.module.Function(instr.Callee)
		if fn == nil {
			return in.trap(f, blk, "call of unknown function %s", instr.Callee)
		}
		v, err := in.call(ctx, fn, nil, in.values(f, instr.Args))
		if err != nil {
			return err
		}
		result = v
	case ir.OpCallIndirect:
		c, ok := arg(0).(*Closure)
		if !ok {
			return in.trap(f, blk, "call of non-function %s", inspect(arg(0)))
		}
		v, err := in.call(ctx, c.Function, c.Captures, in.values(f, instr.Args[1:]))
		if err != nil {
			return err
		}
		result = v
	case ir.OpMakeClosure:
		fn := in.module.Function(instr.Callee)
		if fn == nil {
			return in.trap(f, blk, "closure of unknown function %s", instr.Callee)
		}
		result = &Closure{Function: fn, Captures: in.values(f, instr.Args)}
	case ir.OpLoadCapture:
		if instr.Index >= len(f.captures) {
			return in.trap(f, blk, "capture slot %d out of range", instr.Index)
		}
		result = f.captures[instr.Index]
	case ir.OpNewCell:
		result = &Cell{Value: arg(0)}
	case ir.OpLoadCell:
		c, ok := arg(0).(*Cell)
		if !ok {
			return in.trap(f, blk, "load from non-cell %s", inspect(arg(0)))
		}
		result = c.Value
	case ir.OpStoreCell:
		c, ok := arg(0).(*Cell)
		if !ok {
			return in.trap(f, blk, "store to non-cell %s", inspect(arg(0)))
		}
		c.Value = arg(1)
		return nil
	case ir.OpMakeStruct:
		layout := in.layouts[instr.Callee]
		if layout == nil || layout.Kind != ir.StructLayout {
			return in.trap(f, blk, "unknown struct layout %s", instr.Callee)
		}
		result = &Struct{Layout: layout, Fields: in.values(f, instr.Args)}
	case ir.OpMakeVariant:
		layout := in.layouts[instr.Callee]
		if layout == nil || layout.Kind != ir.EnumLayout {
			return in.trap(f, blk, "unknown enum layout %s", instr.Callee)
		}
		result = &Variant{Layout: layout, Tag: instr.Index, Payload: in.values(f, instr.Args)}
	case ir.OpLoadField:
		s, ok := arg(0).(*Struct)
		if !ok || instr.Index >= len(s.Fields) {
			return in.trap(f, blk, "no field slot %d in %s", instr.Index, inspect(arg(0)))
		}
		result = s.Fields[instr.Index]
	case ir.OpDiscriminant:
		v, ok := arg(0).(*Variant)
		if !ok {
			return in.trap(f, blk, "discriminant of non-enum %s", inspect(arg(0)))
		}
		result = Int(v.Tag)
	case ir.OpLoadPayload:
		v, ok := arg(0).(*Variant)
		if !ok || instr.Index >= len(v.Payload) {
			return in.trap(f, blk, "no payload slot %d in %s", instr.Index, inspect(arg(0)))
		}
		result = v.Payload[instr.Index]
	default:
		return in.trap(f, blk, "unknown instruction %s", instr.Op)
	}
	if instr.Dest != ir.NoReg {
		f.regs[instr.Dest] = result
	}
	return nil
}

func (in *Interpreter) values(f *frame, regs []ir.Reg) []Value {
	out := make([]Value, len(regs))
	for i, r := range regs {
		out[i] = f.regs[r]
	}
	return out
}
