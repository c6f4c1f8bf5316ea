package translate

import (
	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/ir"
	"github.com/aergoio/cvmc/internal/meta"
	"github.com/aergoio/cvmc/internal/syslib"
)

func (d *Driver) translateExp(e *ast.Exp) *ir.Exp {
	switch e.Kind {
	case ast.ExpLit:
		return d.translateLit(e)
	case ast.ExpID:
		return d.translateIDRef(e)
	case ast.ExpBinary:
		return &ir.Exp{
			Kind:  ir.EBinary,
			Meta:  e.Meta,
			BinOp: int(e.BinOp),
			L:     d.translateExp(e.L),
			R:     d.translateExp(e.R),
		}
	case ast.ExpUnary:
		return &ir.Exp{Kind: ir.EUnary, Meta: e.Meta, UnOp: int(e.UnOp), L: d.translateExp(e.L)}
	case ast.ExpCall:
		return d.translateCall(e)
	case ast.ExpTuple:
		elems := make([]*ir.Exp, len(e.TupElems))
		for i, el := range e.TupElems {
			elems[i] = d.translateExp(el)
		}
		return &ir.Exp{Kind: ir.ETuple, Meta: e.Meta, Elems: elems}
	case ast.ExpField:
		return &ir.Exp{Kind: ir.ELoad, Meta: e.Meta, Base: d.lvalueAddr(e)}
	case ast.ExpIndex:
		return &ir.Exp{Kind: ir.ELoad, Meta: e.Meta, Base: d.lvalueAddr(e)}
	default:
		panic("translate: unhandled expression kind")
	}
}

func (d *Driver) translateLit(e *ast.Exp) *ir.Exp {
	out := &ir.Exp{Kind: ir.ELit, Meta: e.Meta}
	switch e.LitKind {
	case ast.LitBool:
		if e.LitBool {
			out.LitInt = 1
		}
	case ast.LitInt:
		out.LitInt = e.LitInt
	case ast.LitFloat:
		out.LitFlt = e.LitFlt
	case ast.LitString:
		out.LitStr = e.LitStr
		out.DataAddr = d.ir.Sgmt.Add(append([]byte(e.LitStr), 0))
	}
	return out
}

func (d *Driver) translateIDRef(e *ast.Exp) *ir.Exp {
	id := d.arena.ID(e.ID)
	if id.Var != nil && id.Var.Kind != ast.Global {
		if idx, ok := d.localIdx[e.ID]; ok {
			return &ir.Exp{Kind: ir.ELocal, Meta: e.Meta, Idx: idx}
		}
	}
	return &ir.Exp{
		Kind: ir.ELoad,
		Meta: e.Meta,
		Base: &ir.Exp{
			Kind: ir.EAddr,
			Base: &ir.Exp{Kind: ir.ELocal, Idx: d.fn.HeapIdx},
			Off:  id.Meta.Addr,
		},
	}
}

// lvalueAddr computes the address expression an lvalue store/load targets:
// a contract-global field, a struct field, or an array/map element.
func (d *Driver) lvalueAddr(e *ast.Exp) *ir.Exp {
	switch e.Kind {
	case ast.ExpID:
		id := d.arena.ID(e.ID)
		return &ir.Exp{
			Kind: ir.EAddr,
			Base: &ir.Exp{Kind: ir.ELocal, Idx: d.fn.HeapIdx},
			Off:  id.Meta.Addr,
		}
	case ast.ExpField:
		id := d.arena.ID(e.ID)
		recvAddr := d.translateExp(e.FieldRecv)
		return &ir.Exp{Kind: ir.EAddr, Base: recvAddr, Off: id.Meta.Addr}
	case ast.ExpIndex:
		return d.translateIndexAddr(e)
	default:
		return d.translateExp(e)
	}
}

// translateIndexAddr lowers array/map element access into a syslib helper
// call returning the element's address (original_source/contract/native/
// syslib.c's array/map accessors are opaque host calls from the compiler's
// point of view: the element layout is owned by the runtime, not computed
// at compile time).
func (d *Driver) translateIndexAddr(e *ast.Exp) *ir.Exp {
	recv := d.translateExp(e.IdxRecv)
	key := d.translateExp(e.IdxKey)
	name := "array$addr"
	if meta.IsMap(e.IdxRecv.Meta) {
		name = "map$addr"
	}
	return syslib.Call2(d.ir, name, recv, key, e.Meta)
}

func isSyslibCall(e *ast.Exp) bool { return e.QName != "" }

func (d *Driver) translateCall(e *ast.Exp) *ir.Exp {
	args := make([]*ir.Exp, len(e.CallArgs))
	for i, a := range e.CallArgs {
		args[i] = d.translateExp(a)
	}

	callee := d.arena.ID(e.ID)
	indirect := e.Recv != nil && meta.IsInterface(e.Recv.Meta)

	out := &ir.Exp{Kind: ir.ECall, Meta: e.Meta, Args: args, Indirect: indirect}
	if indirect {
		out.TableBase = &ir.Exp{
			Kind: ir.ELoad,
			Base: &ir.Exp{Kind: ir.EAddr, Base: d.translateExp(e.Recv), Off: 0},
		}
		out.TableRel = callee.Idx
	} else if !isSyslibCall(e) {
		out.CalleeIdx = &callee.Idx
	}
	if e.Recv != nil {
		recvAddr := d.translateExp(e.Recv)
		out.Args = append([]*ir.Exp{recvAddr}, out.Args...)
	}

	abi := &ir.Abi{Name: callee.Name}
	if e.QName != "" {
		abi.Module = e.QName
	}
	// Syslib imports and constructors return through a native Wasm result;
	// every other callee is a contract method, whose result comes back
	// through a trailing return-slot pointer (translateFn appends one ret$i
	// parameter per declared result, so the call must supply the slot).
	native := e.QName != "" || (callee.Fn != nil && callee.Fn.IsCtor)
	switch {
	case meta.IsVoid(e.Meta):
	case meta.IsTuple(e.Meta):
		// Multi-value results pass through trailing return-slot pointers,
		// not a native multi-value return (spec.md §4.4 design note,
		// grounded on gen_stmt.c's stmt_gen_return pointer-store pattern).
	case native:
		abi.Result, abi.HasResult = valTypeOf(e.Meta), true
	default:
		off := meta.ALIGN64(d.fn.Usage)
		d.fn.Usage = off + 8
		out.HasRetSlot, out.RetSlotOff = true, off
		out.Args = append(out.Args, &ir.Exp{
			Kind: ir.EAddr,
			Base: &ir.Exp{Kind: ir.ELocal, Idx: d.fn.StackIdx},
			Off:  off,
		})
	}

	paramTypes := make([]ir.ValType, len(out.Args))
	for i, a := range out.Args {
		if a.Meta != nil {
			paramTypes[i] = valTypeOf(a.Meta)
		} else {
			paramTypes[i] = ir.I32
		}
	}
	abi.Params = paramTypes
	out.Abi = abi
	d.ir.AddAbi(abi)
	return out
}
