package ir

import (
	"fmt"
	"strings"
)

// Pretty returns a human-readable listing of the module.
func Pretty(m *Module) string {
	var sb strings.Builder

	for _, l := range m.Layouts {
		writeLayout(&sb, l)
	}
	for i, f := range m.Functions {
		if i > 0 || len(m.Layouts) > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(Disassemble(f))
	}
	return sb.String()
}

func writeLayout(sb *strings.Builder, l *Layout) {
	switch l.Kind {
	case StructLayout:
		sb.WriteString(fmt.Sprintf("struct %s [%d] { %s }\n", l.Name, l.Size(), strings.Join(l.Fields, ", ")))
	case EnumLayout:
		variants := make([]string, len(l.Variants))
		for i, v := range l.Variants {
			variants[i] = fmt.Sprintf("%d:%s", v.Tag, v.Name)
			if len(v.Fields) > 0 {
				variants[i] += "(" + strings.Join(v.Fields, ", ") + ")"
			}
		}
		sb.WriteString(fmt.Sprintf("enum %s [%d] { %s }\n", l.Name, l.Size(), strings.Join(variants, ", ")))
	}
}

// Disassemble returns the listing of one function.
func Disassemble(f *Function) string {
	var sb strings.Builder

	kind := "fn"
	if f.IsClosure {
		kind = "closure"
	}
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}
	sb.WriteString(fmt.Sprintf("%s %s(%s) -> %s", kind, f.Name, strings.Join(params, ", "), f.ReturnType))
	if len(f.Captures) > 0 {
		sb.WriteString(fmt.Sprintf(" captures [%s]", strings.Join(f.Captures, ", ")))
	}
	sb.WriteString(fmt.Sprintf(" locals %d\n", f.Locals))

	for _, b := range f.Blocks {
		sb.WriteString(fmt.Sprintf("b%d:", b.ID))
		if b.Label != "" {
			sb.WriteString(" ; " + b.Label)
		}
		sb.WriteString("\n")
		for _, in := range b.Instrs {
			sb.WriteString("    ")
			sb.WriteString(FormatInstr(in))
			sb.WriteString("\n")
		}
		sb.WriteString("    ")
		sb.WriteString(FormatTerm(b.Term))
		sb.WriteString("\n")
	}
	return sb.String()
}

func regList(regs []Reg) string {
	parts := make([]string, len(regs))
	for i, r := range regs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

// FormatInstr renders one instruction.
func FormatInstr(in *Instr) string {
	var body string
	switch in.Op {
	case OpConst:
		body = fmt.Sprintf("const %s", in.Const)
	case OpCopy:
		body = fmt.Sprintf("copy %s", regList(in.Args))
	case OpUnary:
		body = fmt.Sprintf("%s%s", in.Operator, regList(in.Args))
	case OpBinary:
		body = fmt.Sprintf("%s %s %s", in.Args[0], in.Operator, in.Args[1])
	case OpCall:
		body = fmt.Sprintf("call %s(%s)", in.Callee, regList(in.Args))
	case OpCallIndirect:
		body = fmt.Sprintf("call.indirect %s(%s)", in.Args[0], regList(in.Args[1:]))
	case OpMakeClosure:
		body = fmt.Sprintf("closure %s [%s]", in.Callee, regList(in.Args))
	case OpLoadCapture:
		body = fmt.Sprintf("capture %d", in.Index)
	case OpMakeStruct:
		body = fmt.Sprintf("struct %s {%s}", in.Callee, regList(in.Args))
	case OpMakeVariant:
		body = fmt.Sprintf("variant %s#%d(%s)", in.Callee, in.Index, regList(in.Args))
	case OpLoadField, OpLoadPayload:
		body = fmt.Sprintf("%s %s.%d", in.Op, regList(in.Args), in.Index)
	case OpStoreCell:
		return fmt.Sprintf("cell.store %s <- %s", in.Args[0], in.Args[1])
	default:
		body = fmt.Sprintf("%s %s", in.Op, regList(in.Args))
	}
	if in.Tail {
		body = "tail " + body
	}
	return fmt.Sprintf("%s = %s", in.Dest, body)
}

// FormatTerm renders a terminator.
func FormatTerm(t *Terminator) string {
	if t == nil {
		return "<no terminator>"
	}
	switch t.Kind {
	case TermReturn:
		return fmt.Sprintf("return %s", t.Value)
	case TermJump:
		return fmt.Sprintf("jump b%d", t.Targets[0])
	case TermBranch:
		return fmt.Sprintf("branch %s ? b%d : b%d", t.Value, t.Targets[0], t.Targets[1])
	case TermSwitch:
		cases := make([]string, len(t.Cases))
		for i, c := range t.Cases {
			cases[i] = fmt.Sprintf("%d => b%d", c.Value, c.Target)
		}
		if t.Default >= 0 {
			cases = append(cases, fmt.Sprintf("_ => b%d", t.Default))
		}
		return fmt.Sprintf("switch %s [%s]", t.Value, strings.Join(cases, ", "))
	}
	return t.Kind.String()
}
