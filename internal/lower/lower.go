// Package lower turns a checked, tail-annotated program into IR.
package lower

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/ir"
	"github.com/funvibe/valang/internal/pipeline"
	"github.com/funvibe/valang/internal/symbols"
	"github.com/funvibe/valang/internal/token"
	"github.com/funvibe/valang/internal/typesystem"
)

// Lowerer builds the IR module of one unit.
type Lowerer struct {
	ctx       *pipeline.PipelineContext
	types     *typesystem.Registry
	module    *ir.Module
	tailCalls bool

	closures map[string]int // closures created per top-level function, for naming

	err    error
	errTok token.Token
}

func New(ctx *pipeline.PipelineContext) *Lowerer {
	types := ctx.Types
	if types == nil {
		types = typesystem.NewRegistry()
	}
	return &Lowerer{
		ctx:       ctx,
		types:     types,
		module:    &ir.Module{Unit: ctx.UnitID.String()},
		tailCalls: ctx.Options.TailCalls(),
		closures:  make(map[string]int),
	}
}

// Lower lowers program. The returned error is an invariant violation: it
// means an earlier stage let an ill-formed program through.
func (l *Lowerer) Lower(program *ast.Program) (*ir.Module, error) {
	l.lowerLayouts()
	for _, item := range program.Items {
		fn, ok := item.(*ast.FunctionStatement)
		if !ok {
			continue
		}
		l.lowerFunction(fn)
		if l.err != nil {
			return nil, errors.Wrapf(l.err, "lowering function %s", fn.Name.Value)
		}
	}
	return l.module, nil
}

// ErrorToken is the source location of the failure returned by Lower.
func (l *Lowerer) ErrorToken() token.Token { return l.errTok }

// fail records the first invariant violation.
func (l *Lowerer) fail(tok token.Token, err error) {
	if l.err == nil {
		l.err = err
		l.errTok = tok
	}
}

func (l *Lowerer) lowerLayouts() {
	for _, name := range l.types.Order {
		if info, ok := l.types.Structs[name]; ok {
			layout := &ir.Layout{Name: name, Kind: ir.StructLayout}
			for _, f := range info.Fields {
				layout.Fields = append(layout.Fields, f.Name)
			}
			l.module.Layouts = append(l.module.Layouts, layout)
			continue
		}
		if info, ok := l.types.Enums[name]; ok {
			layout := &ir.Layout{Name: name, Kind: ir.EnumLayout}
			for _, v := range info.Variants {
				vl := &ir.VariantLayout{Name: v.Name, Tag: v.Tag}
				for _, f := range v.Fields {
					vl.Fields = append(vl.Fields, f.Name)
				}
				layout.Variants = append(layout.Variants, vl)
			}
			l.module.Layouts = append(l.module.Layouts, layout)
		}
	}
}

func (l *Lowerer) lowerFunction(fn *ast.FunctionStatement) {
	sym := l.ctx.Declarations[fn.Name]
	if sym == nil {
		l.fail(fn.Name.Token, errors.Errorf("function %s has no symbol", fn.Name.Value))
		return
	}
	ft, ok := sym.Type.(typesystem.TFunc)
	if !ok {
		l.fail(fn.Name.Token, errors.Errorf("function %s has type %v", fn.Name.Value, sym.Type))
		return
	}
	f := &ir.Function{Name: fn.Name.Value, ReturnType: ft.ReturnType.String()}
	l.module.Functions = append(l.module.Functions, f)

	b := newBuilder(l, f, fn.Name.Value, nil)
	b.bindParams(fn.Parameters)
	b.lowerReturn(fn.Body)
	b.finish()
}

// lowerClosure emits a closure's function and returns its name. captures is
// the closure's capture list in slot order.
func (l *Lowerer) lowerClosure(owner string, fl *ast.FunctionLiteral, captures []*symbols.Symbol) string {
	l.closures[owner]++
	name := fmt.Sprintf("%s$closure%d", owner, l.closures[owner])

	ret := "Unit"
	if ft, ok := l.ctx.TypeOf(fl).(typesystem.TFunc); ok {
		ret = ft.ReturnType.String()
	}
	f := &ir.Function{Name: name, ReturnType: ret, IsClosure: true}
	for _, c := range captures {
		f.Captures = append(f.Captures, c.Name)
	}
	l.module.Functions = append(l.module.Functions, f)

	b := newBuilder(l, f, owner, captures)
	b.bindParams(fl.Parameters)
	b.lowerReturn(fl.Body)
	b.finish()
	return name
}
