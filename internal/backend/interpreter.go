package backend

import (
	"context"
	"fmt"

	"github.com/funvibe/valang/internal/config"
	"github.com/funvibe/valang/internal/ir"
)

// RuntimeError is a trap raised while executing IR.
type RuntimeError struct {
	Function string
	Block    int
	Message  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error in %s (b%d): %s", e.Function, e.Block, e.Message)
}

// frame is one activation: the running function, its registers and the
// captured slots of the closure it belongs to.
type frame struct {
	fn       *ir.Function
	regs     []Value
	captures []Value
}

// Interpreter executes an IR module. It is the reference backend: a direct
// reading of the IR semantics, with tail-flagged calls reusing their frame.
type Interpreter struct {
	module  *ir.Module
	layouts map[string]*ir.Layout

	// MaxDepth bounds nested non-tail calls.
	MaxDepth int

	depth int
}

func NewInterpreter(m *ir.Module) *Interpreter {
	in := &Interpreter{module: m, layouts: make(map[string]*ir.Layout), MaxDepth: config.MaxCallDepth}
	for _, l := range m.Layouts {
		in.layouts[l.Name] = l
	}
	return in
}

func (in *Interpreter) Name() string { return "interpreter" }

// Run calls the function entry with args.
func (in *Interpreter) Run(ctx context.Context, entry string, args []Value) (Value, error) {
	fn := in.module.Function(entry)
	if fn == nil || fn.IsClosure {
		return nil, fmt.Errorf("no function %q in module", entry)
	}
	return in.call(ctx, fn, nil, args)
}

// Apply calls a closure value.
func (in *Interpreter) Apply(ctx context.Context, c *Closure, args []Value) (Value, error) {
	return in.call(ctx, c.Function, c.Captures, args)
}

func (in *Interpreter) call(ctx context.Context, fn *ir.Function, captures, args []Value) (Value, error) {
	if in.depth >= in.MaxDepth {
		return nil, &RuntimeError{Function: fn.Name, Message: "call stack exhausted"}
	}
	in.depth++
	defer func() { in.depth-- }()

	f, err := in.enter(fn, captures, args)
	if err != nil {
		return nil, err
	}
	return in.exec(ctx, f)
}

func (in *Interpreter) enter(fn *ir.Function, captures, args []Value) (*frame, error) {
	if len(args) != len(fn.Params) {
		return nil, &RuntimeError{
			Function: fn.Name,
			Message:  fmt.Sprintf("expects %d arguments, got %d", len(fn.Params), len(args)),
		}
	}
	if len(captures) != len(fn.Captures) {
		return nil, &RuntimeError{
			Function: fn.Name,
			Message:  fmt.Sprintf("expects %d captures, got %d", len(fn.Captures), len(captures)),
		}
	}
	f := &frame{fn: fn, regs: make([]Value, fn.Locals), captures: captures}
	for i, p := range fn.Params {
		f.regs[p] = args[i]
	}
	return f, nil
}

func (in *Interpreter) exec(ctx context.Context, f *frame) (Value, error) {
	blk := f.fn.Entry()
	if blk == nil {
		return nil, &RuntimeError{Function: f.fn.Name, Message: "function has no body"}
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tailCall := false
		for i, instr := range blk.Instrs {
			if instr.Tail && isTailReturn(blk, i) {
				next, err := in.prepareTail(f, blk, instr)
				if err != nil {
					return nil, err
				}
				if next != nil {
					f = next
					blk = f.fn.Entry()
					tailCall = true
					break
				}
			}
			if err := in.step(ctx, f, blk, instr); err != nil {
				return nil, err
			}
		}
		if tailCall {
			continue
		}

		t := blk.Term
		switch t.Kind {
		case ir.TermReturn:
			return f.regs[t.Value], nil
		case ir.TermJump:
			blk = f.fn.Blocks[t.Targets[0]]
		case ir.TermBranch:
			cond, ok := f.regs[t.Value].(Bool)
			if !ok {
				return nil, in.trap(f, blk, "branch on non-Bool %s", inspect(f.regs[t.Value]))
			}
			if cond {
				blk = f.fn.Blocks[t.Targets[0]]
			} else {
				blk = f.fn.Blocks[t.Targets[1]]
			}
		case ir.TermSwitch:
			target, err := in.dispatch(f, blk, t)
			if err != nil {
				return nil, err
			}
			blk = f.fn.Blocks[target]
		default:
			return nil, in.trap(f, blk, "reached unreachable code")
		}
	}
}

// isTailReturn reports whether instruction i is the last of blk and the
// block returns its result.
func isTailReturn(blk *ir.Block, i int) bool {
	return i == len(blk.Instrs)-1 && blk.Term != nil &&
		blk.Term.Kind == ir.TermReturn && blk.Term.Value == blk.Instrs[i].Dest
}

// prepareTail builds the frame a tail call continues in. It returns nil for a
// call that cannot replace the frame.
func (in *Interpreter) prepareTail(f *frame, blk *ir.Block, instr *ir.Instr) (*frame, error) {
	var (
		fn       *ir.Function
		captures []Value
		args     = make([]Value, 0, len(instr.Args))
	)
	switch instr.Op {
	case ir.OpCall:
		fn = in.module.Function(instr.Callee)
		if fn == nil {
			return nil, in.trap(f, blk, "call of unknown function %s", instr.Callee)
		}
		for _, a := range instr.Args {
			args = append(args, f.regs[a])
		}
	case ir.OpCallIndirect:
		c, ok := f.regs[instr.Args[0]].(*Closure)
		if !ok {
			return nil, in.trap(f, blk, "call of non-function %s", inspect(f.regs[instr.Args[0]]))
		}
		fn, captures = c.Function, c.Captures
		for _, a := range instr.Args[1:] {
			args = append(args, f.regs[a])
		}
	default:
		return nil, nil
	}
	return in.enter(fn, captures, args)
}

func (in *Interpreter) dispatch(f *frame, blk *ir.Block, t *ir.Terminator) (int, error) {
	var key int64
	switch v := f.regs[t.Value].(type) {
	case Int:
		key = int64(v)
	default:
		return 0, in.trap(f, blk, "switch on non-Int %s", inspect(v))
	}
	for _, c := range t.Cases {
		if c.Value == key {
			return c.Target, nil
		}
	}
	if t.Default < 0 {
		return 0, in.trap(f, blk, "no switch case for %d", key)
	}
	return t.Default, nil
}

func (in *Interpreter) trap(f *frame, blk *ir.Block, format string, args ...interface{}) error {
	return &RuntimeError{Function: f.fn.Name, Block: blk.ID, Message: fmt.Sprintf(format, args...)}
}

func inspect(v Value) string {
	if v == nil {
		return "<undefined>"
	}
	return v.Inspect()
}
