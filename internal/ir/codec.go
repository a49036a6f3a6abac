package ir

import (
	"bytes"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Wire format:
// - Magic number (4 bytes): "VLIR"
// - Version (1 byte): 0x01
// - Module message in protobuf wire encoding
//
// Field numbers:
//
//	Module:     1 unit, 2 layouts, 3 functions
//	Layout:     1 name, 2 kind, 3 fields, 4 variants
//	Variant:    1 name, 2 tag, 3 fields
//	Function:   1 name, 2 params (packed), 3 captures, 4 locals, 5 blocks, 6 return type, 7 closure
//	Block:      1 id, 2 label, 3 instrs, 4 terminator
//	Instr:      1 op, 2 dest, 3 args (packed), 4 const, 5 operator, 6 callee, 7 index, 8 tail
//	Value:      1 kind, 2 int, 3 bool, 4 string
//	Terminator: 1 kind, 2 value, 3 targets (packed), 4 cases, 5 default
//	Case:       1 value, 2 target
//
// Signed numbers use zigzag encoding; zero values are omitted.

var irMagic = []byte{'V', 'L', 'I', 'R'}

const irFormatVersion byte = 0x01

// Marshal encodes m in the IR wire format.
func Marshal(m *Module) []byte {
	b := make([]byte, 0, 1024)
	b = append(b, irMagic...)
	b = append(b, irFormatVersion)
	return append(b, encodeModule(m)...)
}

// Unmarshal decodes a module written by Marshal.
func Unmarshal(data []byte) (*Module, error) {
	if len(data) < len(irMagic)+1 {
		return nil, fmt.Errorf("ir data too short")
	}
	if !bytes.Equal(data[:len(irMagic)], irMagic) {
		return nil, fmt.Errorf("invalid magic number, expected VLIR")
	}
	if v := data[len(irMagic)]; v != irFormatVersion {
		return nil, fmt.Errorf("unsupported ir format version %d", v)
	}
	m, err := decodeModule(data[len(irMagic)+1:])
	if err != nil {
		return nil, fmt.Errorf("ir decoding failed: %w", err)
	}
	return m, nil
}

// --- encoding ---

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// appendStrings writes every element, including empty ones, so positions survive.
func appendStrings(b []byte, num protowire.Number, ss []string) []byte {
	for _, s := range ss {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, s)
	}
	return b
}

func appendInt(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func appendPacked(b []byte, num protowire.Number, vals []int64) []byte {
	if len(vals) == 0 {
		return b
	}
	var packed []byte
	for _, v := range vals {
		packed = protowire.AppendVarint(packed, protowire.EncodeZigZag(v))
	}
	return appendMessage(b, num, packed)
}

func regsToInts(regs []Reg) []int64 {
	out := make([]int64, len(regs))
	for i, r := range regs {
		out[i] = int64(r)
	}
	return out
}

func intsToInts(xs []int) []int64 {
	out := make([]int64, len(xs))
	for i, x := range xs {
		out[i] = int64(x)
	}
	return out
}

func encodeModule(m *Module) []byte {
	var b []byte
	b = appendString(b, 1, m.Unit)
	for _, l := range m.Layouts {
		b = appendMessage(b, 2, encodeLayout(l))
	}
	for _, f := range m.Functions {
		b = appendMessage(b, 3, encodeFunction(f))
	}
	return b
}

func encodeLayout(l *Layout) []byte {
	var b []byte
	b = appendString(b, 1, l.Name)
	b = appendInt(b, 2, int64(l.Kind))
	b = appendStrings(b, 3, l.Fields)
	for _, v := range l.Variants {
		var vb []byte
		vb = appendString(vb, 1, v.Name)
		vb = appendInt(vb, 2, int64(v.Tag))
		vb = appendStrings(vb, 3, v.Fields)
		b = appendMessage(b, 4, vb)
	}
	return b
}

func encodeFunction(f *Function) []byte {
	var b []byte
	b = appendString(b, 1, f.Name)
	b = appendPacked(b, 2, regsToInts(f.Params))
	b = appendStrings(b, 3, f.Captures)
	b = appendInt(b, 4, int64(f.Locals))
	for _, blk := range f.Blocks {
		b = appendMessage(b, 5, encodeBlock(blk))
	}
	b = appendString(b, 6, f.ReturnType)
	b = appendBool(b, 7, f.IsClosure)
	return b
}

func encodeBlock(blk *Block) []byte {
	var b []byte
	b = appendInt(b, 1, int64(blk.ID))
	b = appendString(b, 2, blk.Label)
	for _, in := range blk.Instrs {
		b = appendMessage(b, 3, encodeInstr(in))
	}
	if blk.Term != nil {
		b = appendMessage(b, 4, encodeTerm(blk.Term))
	}
	return b
}

func encodeInstr(in *Instr) []byte {
	var b []byte
	b = appendInt(b, 1, int64(in.Op))
	b = appendInt(b, 2, int64(in.Dest))
	b = appendPacked(b, 3, regsToInts(in.Args))
	if in.Op == OpConst {
		b = appendMessage(b, 4, encodeValue(in.Const))
	}
	b = appendString(b, 5, in.Operator)
	b = appendString(b, 6, in.Callee)
	b = appendInt(b, 7, int64(in.Index))
	b = appendBool(b, 8, in.Tail)
	return b
}

func encodeValue(v Value) []byte {
	var b []byte
	b = appendInt(b, 1, int64(v.Kind))
	b = appendInt(b, 2, v.Int)
	b = appendBool(b, 3, v.Bool)
	b = appendString(b, 4, v.Str)
	return b
}

func encodeTerm(t *Terminator) []byte {
	var b []byte
	b = appendInt(b, 1, int64(t.Kind))
	b = appendInt(b, 2, int64(t.Value))
	b = appendPacked(b, 3, intsToInts(t.Targets))
	for _, c := range t.Cases {
		var cb []byte
		cb = appendInt(cb, 1, c.Value)
		cb = appendInt(cb, 2, int64(c.Target))
		b = appendMessage(b, 4, cb)
	}
	b = appendInt(b, 5, int64(t.Default))
	return b
}

// --- decoding ---

// field is one decoded field: v for varints, data for length-delimited values.
type field struct {
	num  protowire.Number
	v    uint64
	data []byte
}

func (f field) int() int64 { return protowire.DecodeZigZag(f.v) }

func (f field) str() string { return string(f.data) }

// eachField calls fn for every field of msg, skipping unknown wire types.
func eachField(msg []byte, fn func(f field) error) error {
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if n < 0 {
			return protowire.ParseError(n)
		}
		msg = msg[n:]

		var f field
		f.num = num
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(msg)
		case protowire.BytesType:
			f.data, n = protowire.ConsumeBytes(msg)
		default:
			n = protowire.ConsumeFieldValue(num, typ, msg)
			if n < 0 {
				return protowire.ParseError(n)
			}
			msg = msg[n:]
			continue
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		msg = msg[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func unpack(data []byte) ([]int64, error) {
	var out []int64
	for len(data) > 0 {
		v, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		out = append(out, protowire.DecodeZigZag(v))
		data = data[n:]
	}
	return out, nil
}

func unpackRegs(data []byte) ([]Reg, error) {
	vals, err := unpack(data)
	if err != nil {
		return nil, err
	}
	regs := make([]Reg, len(vals))
	for i, v := range vals {
		regs[i] = Reg(v)
	}
	return regs, nil
}

func decodeModule(data []byte) (*Module, error) {
	m := &Module{}
	err := eachField(data, func(f field) error {
		switch f.num {
		case 1:
			m.Unit = f.str()
		case 2:
			l, err := decodeLayout(f.data)
			if err != nil {
				return err
			}
			m.Layouts = append(m.Layouts, l)
		case 3:
			fn, err := decodeFunction(f.data)
			if err != nil {
				return err
			}
			m.Functions = append(m.Functions, fn)
		}
		return nil
	})
	return m, err
}

func decodeLayout(data []byte) (*Layout, error) {
	l := &Layout{}
	err := eachField(data, func(f field) error {
		switch f.num {
		case 1:
			l.Name = f.str()
		case 2:
			l.Kind = LayoutKind(f.int())
		case 3:
			l.Fields = append(l.Fields, f.str())
		case 4:
			v := &VariantLayout{}
			if err := eachField(f.data, func(vf field) error {
				switch vf.num {
				case 1:
					v.Name = vf.str()
				case 2:
					v.Tag = int(vf.int())
				case 3:
					v.Fields = append(v.Fields, vf.str())
				}
				return nil
			}); err != nil {
				return err
			}
			l.Variants = append(l.Variants, v)
		}
		return nil
	})
	return l, err
}

func decodeFunction(data []byte) (*Function, error) {
	fn := &Function{}
	err := eachField(data, func(f field) error {
		var err error
		switch f.num {
		case 1:
			fn.Name = f.str()
		case 2:
			fn.Params, err = unpackRegs(f.data)
		case 3:
			fn.Captures = append(fn.Captures, f.str())
		case 4:
			fn.Locals = int(f.int())
		case 5:
			var blk *Block
			blk, err = decodeBlock(f.data)
			if err == nil {
				fn.Blocks = append(fn.Blocks, blk)
			}
		case 6:
			fn.ReturnType = f.str()
		case 7:
			fn.IsClosure = protowire.DecodeBool(f.v)
		}
		return err
	})
	return fn, err
}

func decodeBlock(data []byte) (*Block, error) {
	blk := &Block{}
	err := eachField(data, func(f field) error {
		switch f.num {
		case 1:
			blk.ID = int(f.int())
		case 2:
			blk.Label = f.str()
		case 3:
			in, err := decodeInstr(f.data)
			if err != nil {
				return err
			}
			blk.Instrs = append(blk.Instrs, in)
		case 4:
			t, err := decodeTerm(f.data)
			if err != nil {
				return err
			}
			blk.Term = t
		}
		return nil
	})
	return blk, err
}

func decodeInstr(data []byte) (*Instr, error) {
	in := &Instr{}
	err := eachField(data, func(f field) error {
		var err error
		switch f.num {
		case 1:
			in.Op = Op(f.int())
		case 2:
			in.Dest = Reg(f.int())
		case 3:
			in.Args, err = unpackRegs(f.data)
		case 4:
			in.Const, err = decodeValue(f.data)
		case 5:
			in.Operator = f.str()
		case 6:
			in.Callee = f.str()
		case 7:
			in.Index = int(f.int())
		case 8:
			in.Tail = protowire.DecodeBool(f.v)
		}
		return err
	})
	return in, err
}

func decodeValue(data []byte) (Value, error) {
	var v Value
	err := eachField(data, func(f field) error {
		switch f.num {
		case 1:
			v.Kind = ValueKind(f.int())
		case 2:
			v.Int = f.int()
		case 3:
			v.Bool = protowire.DecodeBool(f.v)
		case 4:
			v.Str = f.str()
		}
		return nil
	})
	return v, err
}

func decodeTerm(data []byte) (*Terminator, error) {
	t := &Terminator{}
	err := eachField(data, func(f field) error {
		switch f.num {
		case 1:
			t.Kind = TermKind(f.int())
		case 2:
			t.Value = Reg(f.int())
		case 3:
			vals, err := unpack(f.data)
			if err != nil {
				return err
			}
			for _, v := range vals {
				t.Targets = append(t.Targets, int(v))
			}
		case 4:
			var c Case
			if err := eachField(f.data, func(cf field) error {
				switch cf.num {
				case 1:
					c.Value = cf.int()
				case 2:
					c.Target = int(cf.int())
				}
				return nil
			}); err != nil {
				return err
			}
			t.Cases = append(t.Cases, c)
		case 5:
			t.Default = int(f.int())
		}
		return nil
	})
	return t, err
}
