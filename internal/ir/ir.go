// Package ir defines the flat intermediate representation produced by
// lowering: functions made of basic blocks of register instructions.
package ir

import "fmt"

// Reg is a virtual register local to one function.
type Reg int

// NoReg marks an unused register operand.
const NoReg Reg = -1

func (r Reg) String() string {
	if r == NoReg {
		return "_"
	}
	return fmt.Sprintf("r%d", int(r))
}

// Op is an instruction opcode.
type Op byte

const (
	OpConst        Op = iota // Dest = Const
	OpCopy                   // Dest = Args[0]
	OpUnary                  // Dest = Operator Args[0]
	OpBinary                 // Dest = Args[0] Operator Args[1]
	OpCall                   // Dest = Callee(Args...)
	OpCallIndirect           // Dest = Args[0](Args[1:]...)
	OpMakeClosure            // Dest = closure of Callee capturing Args
	OpLoadCapture            // Dest = capture slot Index of the running closure
	OpNewCell                // Dest = new cell holding Args[0]
	OpLoadCell               // Dest = contents of cell Args[0]
	OpStoreCell              // cell Args[0] = Args[1]
	OpMakeStruct             // Dest = layout Callee with slots Args
	OpMakeVariant            // Dest = layout Callee, tag Index, payload Args
	OpLoadField              // Dest = slot Index of struct Args[0]
	OpDiscriminant           // Dest = tag of enum value Args[0]
	OpLoadPayload            // Dest = payload slot Index of enum value Args[0]
)

var opNames = [...]string{
	OpConst:        "const",
	OpCopy:         "copy",
	OpUnary:        "unary",
	OpBinary:       "binary",
	OpCall:         "call",
	OpCallIndirect: "call.indirect",
	OpMakeClosure:  "closure",
	OpLoadCapture:  "capture",
	OpNewCell:      "cell.new",
	OpLoadCell:     "cell.load",
	OpStoreCell:    "cell.store",
	OpMakeStruct:   "struct",
	OpMakeVariant:  "variant",
	OpLoadField:    "field",
	OpDiscriminant: "discriminant",
	OpLoadPayload:  "payload",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", byte(op))
}

// ValueKind is the kind of a constant operand.
type ValueKind byte

const (
	UnitValue ValueKind = iota
	IntValue
	BoolValue
	StringValue
)

// Value is a constant.
type Value struct {
	Kind ValueKind
	Int  int64
	Bool bool
	Str  string
}

func Int(v int64) Value     { return Value{Kind: IntValue, Int: v} }
func Bool(v bool) Value     { return Value{Kind: BoolValue, Bool: v} }
func String(v string) Value { return Value{Kind: StringValue, Str: v} }
func Unit() Value           { return Value{Kind: UnitValue} }

func (v Value) String() string {
	switch v.Kind {
	case IntValue:
		return fmt.Sprintf("%d", v.Int)
	case BoolValue:
		return fmt.Sprintf("%t", v.Bool)
	case StringValue:
		return fmt.Sprintf("%q", v.Str)
	}
	return "()"
}

// Instr is one instruction. Only the fields its Op uses are set.
type Instr struct {
	Op       Op
	Dest     Reg
	Args     []Reg
	Const    Value
	Operator string // Unary and Binary
	Callee   string // function name for Call and MakeClosure; layout name for MakeStruct and MakeVariant
	Index    int    // capture, field or payload slot; variant tag
	Tail     bool   // the call's result is returned directly
}

// TermKind is the kind of a block terminator.
type TermKind byte

const (
	TermUnreachable TermKind = iota
	TermReturn
	TermJump
	TermBranch
	TermSwitch
)

var termNames = [...]string{
	TermUnreachable: "unreachable",
	TermReturn:      "return",
	TermJump:        "jump",
	TermBranch:      "branch",
	TermSwitch:      "switch",
}

func (k TermKind) String() string {
	if int(k) < len(termNames) {
		return termNames[k]
	}
	return fmt.Sprintf("term(%d)", byte(k))
}

// Case is one arm of a Switch.
type Case struct {
	Value  int64
	Target int
}

// Terminator ends a block.
//
//	Return:  return Value
//	Jump:    goto Targets[0]
//	Branch:  if Value goto Targets[0] else goto Targets[1]
//	Switch:  goto the case equal to Value, else Default (-1: no default)
type Terminator struct {
	Kind    TermKind
	Value   Reg
	Targets []int
	Cases   []Case
	Default int
}

// Block is a basic block. Its ID is its index in Function.Blocks.
type Block struct {
	ID     int
	Label  string
	Instrs []*Instr
	Term   *Terminator
}

// Function is a lowered top-level function or closure. Params occupy the
// first registers. Closures read their captured values with LoadCapture.
type Function struct {
	Name       string
	Params     []Reg
	Captures   []string
	Locals     int // number of registers used
	Blocks     []*Block
	ReturnType string
	IsClosure  bool
}

// Entry returns the first block, or nil for an empty function.
func (f *Function) Entry() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// LayoutKind distinguishes struct and enum layouts.
type LayoutKind byte

const (
	StructLayout LayoutKind = iota
	EnumLayout
)

// VariantLayout is one enum variant; its fields occupy payload slots 0..n-1.
type VariantLayout struct {
	Name   string
	Tag    int
	Fields []string
}

// Layout is the fixed record shape of a struct or enum value. A struct has
// one slot per field. An enum has a leading discriminant slot followed by a
// payload region sized to its largest variant. Aggregate slots hold references.
type Layout struct {
	Name     string
	Kind     LayoutKind
	Fields   []string
	Variants []*VariantLayout
}

// PayloadSize is the number of payload slots of an enum layout.
func (l *Layout) PayloadSize() int {
	n := 0
	for _, v := range l.Variants {
		if len(v.Fields) > n {
			n = len(v.Fields)
		}
	}
	return n
}

// Size is the number of slots a value of this layout occupies.
func (l *Layout) Size() int {
	if l.Kind == EnumLayout {
		return 1 + l.PayloadSize()
	}
	return len(l.Fields)
}

// Module is the lowered form of one compilation unit.
type Module struct {
	Unit      string // compilation unit id
	Layouts   []*Layout
	Functions []*Function
}

// Function returns the function named name, or nil.
func (m *Module) Function(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Layout returns the layout named name, or nil.
func (m *Module) Layout(name string) *Layout {
	for _, l := range m.Layouts {
		if l.Name == name {
			return l
		}
	}
	return nil
}
