package lower

import (
	"fmt"

	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/ir"
	"github.com/funvibe/valang/internal/symbols"
	"github.com/funvibe/valang/internal/typesystem"
)

// A match is compiled to a decision tree over occurrences: the subject and
// the fields loaded out of it. Each row holds the remaining patterns of one
// arm; a nil pattern matches anything without binding.

type occurrence struct {
	reg ir.Reg
	typ typesystem.Type
}

type binding struct {
	sym *symbols.Symbol
	reg ir.Reg
}

type row struct {
	pats  []ast.Pattern
	binds []binding
	arm   int
}

type matchCompiler struct {
	b     *builder
	match *ast.MatchExpression
	arms  []*ir.Block // entry block of each arm, nil while unreached
}

// match lowers a match expression. In return mode every arm returns its
// value; otherwise the arms meet in a join block and the result register
// is returned.
func (b *builder) match(n *ast.MatchExpression, returns bool) ir.Reg {
	subject := b.expr(n.Subject)
	t := b.l.ctx.TypeOf(n.Subject)
	if t == nil {
		b.fail(n.Token, "match subject has no type")
		return ir.NoReg
	}

	mc := &matchCompiler{b: b, match: n, arms: make([]*ir.Block, len(n.Arms))}
	rows := make([]row, len(n.Arms))
	for i, arm := range n.Arms {
		rows[i] = row{pats: []ast.Pattern{arm.Pattern}, arm: i}
	}
	mc.compile([]occurrence{{reg: subject, typ: t}}, rows)

	result := ir.NoReg
	var end *ir.Block
	if !returns {
		result = b.newReg()
		end = b.newBlock("match end")
	}
	for i, arm := range n.Arms {
		if mc.arms[i] == nil {
			continue // unreachable arm
		}
		b.start(mc.arms[i])
		if returns {
			b.lowerReturn(arm.Body)
			continue
		}
		b.move(result, b.blockValue(arm.Body))
		b.jump(end)
	}
	if returns {
		b.cur = nil
		return ir.NoReg
	}
	b.start(end)
	return result
}

func refutable(p ast.Pattern) bool {
	switch p.(type) {
	case nil, *ast.WildcardPattern, *ast.BindingPattern:
		return false
	}
	return true
}

// bindingOf returns the binding p introduces for the value in reg, if any.
func (mc *matchCompiler) bindingOf(p ast.Pattern, reg ir.Reg) (binding, bool) {
	bp, ok := p.(*ast.BindingPattern)
	if !ok {
		return binding{}, false
	}
	sym := mc.b.l.ctx.Declarations[bp.Name]
	if sym == nil {
		mc.b.fail(bp.Token, "pattern binding %s has no symbol", bp.Name.Value)
		return binding{}, false
	}
	return binding{sym: sym, reg: reg}, true
}

func (mc *matchCompiler) compile(occs []occurrence, rows []row) {
	b := mc.b
	if b.failed() {
		return
	}
	if len(rows) == 0 {
		b.unreachable()
		return
	}

	first := rows[0]
	col := -1
	for i, p := range first.pats {
		if refutable(p) {
			col = i
			break
		}
	}
	if col < 0 {
		mc.enterArm(occs, first)
		return
	}

	occ := occs[col]
	if info := b.l.types.Enum(occ.typ); info != nil {
		mc.switchVariant(occs, rows, col, info)
		return
	}
	if info := b.l.types.Struct(occ.typ); info != nil {
		mc.destructure(occs, rows, col, info)
		return
	}
	switch {
	case typesystem.Equal(occ.typ, typesystem.Bool):
		mc.switchBool(occs, rows, col)
	case typesystem.Equal(occ.typ, typesystem.Int):
		mc.switchInt(occs, rows, col)
	case typesystem.Equal(occ.typ, typesystem.String):
		mc.switchString(occs, rows, col)
	default:
		b.fail(mc.match.Token, "cannot match on %v", occ.typ)
	}
}

// enterArm binds the first row's names and jumps to its arm. Every path into
// an arm copies a name into the same register, so the body is emitted once.
func (mc *matchCompiler) enterArm(occs []occurrence, r row) {
	b := mc.b
	binds := r.binds
	for i, p := range r.pats {
		if bd, ok := mc.bindingOf(p, occs[i].reg); ok {
			binds = append(binds, bd)
		}
	}
	if mc.arms[r.arm] == nil {
		mc.arms[r.arm] = b.newBlock(fmt.Sprintf("arm %d", r.arm))
	}
	for _, bd := range binds {
		dst, ok := b.locals[bd.sym]
		if !ok {
			dst = b.newReg()
			b.locals[bd.sym] = dst
		}
		b.move(dst, bd.reg)
	}
	b.jump(mc.arms[r.arm])
}

// splice replaces column col of r with sub, binding the column first if it
// is a name.
func (mc *matchCompiler) splice(r row, col int, reg ir.Reg, sub []ast.Pattern) row {
	pats := make([]ast.Pattern, 0, len(r.pats)-1+len(sub))
	pats = append(pats, r.pats[:col]...)
	pats = append(pats, sub...)
	pats = append(pats, r.pats[col+1:]...)

	binds := r.binds
	if bd, ok := mc.bindingOf(r.pats[col], reg); ok {
		binds = append(append([]binding(nil), r.binds...), bd)
	}
	return row{pats: pats, binds: binds, arm: r.arm}
}

func spliceOccs(occs []occurrence, col int, sub []occurrence) []occurrence {
	out := make([]occurrence, 0, len(occs)-1+len(sub))
	out = append(out, occs[:col]...)
	out = append(out, sub...)
	return append(out, occs[col+1:]...)
}

// defaults keeps the rows whose column col matches anything.
func (mc *matchCompiler) defaults(rows []row, col int, reg ir.Reg) []row {
	var out []row
	for _, r := range rows {
		if !refutable(r.pats[col]) {
			out = append(out, mc.splice(r, col, reg, nil))
		}
	}
	return out
}

func (mc *matchCompiler) switchVariant(occs []occurrence, rows []row, col int, info *typesystem.EnumInfo) {
	b := mc.b
	occ := occs[col]

	var tags []*typesystem.VariantInfo
	seen := make(map[int]bool)
	for _, r := range rows {
		if vp, ok := r.pats[col].(*ast.VariantPattern); ok {
			v := info.Variant(vp.Variant.Value)
			if v != nil && !seen[v.Tag] {
				seen[v.Tag] = true
				tags = append(tags, v)
			}
		}
	}

	tag := b.emit(b.value(ir.OpDiscriminant, occ.reg))
	term := &ir.Terminator{Kind: ir.TermSwitch, Value: tag, Default: -1}
	blocks := make([]*ir.Block, len(tags))
	for i, v := range tags {
		blocks[i] = b.newBlock(info.Name + "::" + v.Name)
		term.Cases = append(term.Cases, ir.Case{Value: int64(v.Tag), Target: blocks[i].ID})
	}
	var fallback *ir.Block
	if len(tags) < len(info.Variants) {
		fallback = b.newBlock("match default")
		term.Default = fallback.ID
	}
	b.terminate(term)

	for i, v := range tags {
		b.start(blocks[i])
		fields := make([]occurrence, len(v.Fields))
		for j, f := range v.Fields {
			r := b.emit(&ir.Instr{Op: ir.OpLoadPayload, Dest: b.newReg(), Args: []ir.Reg{occ.reg}, Index: j})
			fields[j] = occurrence{reg: r, typ: f.Type}
		}
		var sub []row
		for _, r := range rows {
			switch p := r.pats[col].(type) {
			case *ast.VariantPattern:
				if p.Variant.Value != v.Name {
					continue
				}
				elems := make([]ast.Pattern, len(v.Fields))
				copy(elems, p.Elements)
				sub = append(sub, mc.splice(r, col, occ.reg, elems))
			default:
				if !refutable(p) {
					sub = append(sub, mc.splice(r, col, occ.reg, make([]ast.Pattern, len(v.Fields))))
				}
			}
		}
		mc.compile(spliceOccs(occs, col, fields), sub)
	}

	if fallback != nil {
		b.start(fallback)
		mc.compile(spliceOccs(occs, col, nil), mc.defaults(rows, col, occ.reg))
	}
}

// destructure loads every field of a struct occurrence. A struct pattern
// always matches its type, so no test is emitted.
func (mc *matchCompiler) destructure(occs []occurrence, rows []row, col int, info *typesystem.StructInfo) {
	b := mc.b
	occ := occs[col]
	fields := make([]occurrence, len(info.Fields))
	for i, f := range info.Fields {
		r := b.emit(&ir.Instr{Op: ir.OpLoadField, Dest: b.newReg(), Args: []ir.Reg{occ.reg}, Index: i})
		fields[i] = occurrence{reg: r, typ: f.Type}
	}
	sub := make([]row, 0, len(rows))
	for _, r := range rows {
		elems := make([]ast.Pattern, len(info.Fields))
		if sp, ok := r.pats[col].(*ast.StructPattern); ok {
			for _, f := range sp.Fields {
				if i := info.FieldIndex(f.Name.Value); i >= 0 {
					elems[i] = f.Pattern
				}
			}
		}
		sub = append(sub, mc.splice(r, col, occ.reg, elems))
	}
	mc.compile(spliceOccs(occs, col, fields), sub)
}

// literalRows keeps the rows that can match the literal value v.
func (mc *matchCompiler) literalRows(rows []row, col int, reg ir.Reg, v interface{}) []row {
	var out []row
	for _, r := range rows {
		lp, ok := r.pats[col].(*ast.LiteralPattern)
		if ok && lp.Value != v {
			continue
		}
		if ok || !refutable(r.pats[col]) {
			out = append(out, mc.splice(r, col, reg, nil))
		}
	}
	return out
}

func (mc *matchCompiler) switchBool(occs []occurrence, rows []row, col int) {
	b := mc.b
	occ := occs[col]
	rest := spliceOccs(occs, col, nil)

	then := b.newBlock("match true")
	otherwise := b.newBlock("match false")
	b.branch(occ.reg, then, otherwise)

	b.start(then)
	mc.compile(rest, mc.literalRows(rows, col, occ.reg, true))
	b.start(otherwise)
	mc.compile(rest, mc.literalRows(rows, col, occ.reg, false))
}

// literals lists the distinct literal values of column col in row order.
func literals(rows []row, col int) []interface{} {
	var out []interface{}
	seen := make(map[interface{}]bool)
	for _, r := range rows {
		if lp, ok := r.pats[col].(*ast.LiteralPattern); ok && !seen[lp.Value] {
			seen[lp.Value] = true
			out = append(out, lp.Value)
		}
	}
	return out
}

func (mc *matchCompiler) switchInt(occs []occurrence, rows []row, col int) {
	b := mc.b
	occ := occs[col]
	rest := spliceOccs(occs, col, nil)
	values := literals(rows, col)

	term := &ir.Terminator{Kind: ir.TermSwitch, Value: occ.reg}
	blocks := make([]*ir.Block, len(values))
	for i, v := range values {
		n, _ := v.(int64)
		blocks[i] = b.newBlock(fmt.Sprintf("match %d", n))
		term.Cases = append(term.Cases, ir.Case{Value: n, Target: blocks[i].ID})
	}
	fallback := b.newBlock("match default")
	term.Default = fallback.ID
	b.terminate(term)

	for i, v := range values {
		b.start(blocks[i])
		mc.compile(rest, mc.literalRows(rows, col, occ.reg, v))
	}
	b.start(fallback)
	mc.compile(rest, mc.defaults(rows, col, occ.reg))
}

// switchString tests the string literals of column col one after another.
func (mc *matchCompiler) switchString(occs []occurrence, rows []row, col int) {
	b := mc.b
	occ := occs[col]
	rest := spliceOccs(occs, col, nil)

	for _, v := range literals(rows, col) {
		s, _ := v.(string)
		lit := b.constant(ir.String(s))
		eq := b.emit(&ir.Instr{Op: ir.OpBinary, Dest: b.newReg(), Args: []ir.Reg{occ.reg, lit}, Operator: "=="})
		then := b.newBlock(fmt.Sprintf("match %q", s))
		next := b.newBlock("match next")
		b.branch(eq, then, next)

		b.start(then)
		mc.compile(rest, mc.literalRows(rows, col, occ.reg, v))
		b.start(next)
	}
	mc.compile(rest, mc.defaults(rows, col, occ.reg))
}
