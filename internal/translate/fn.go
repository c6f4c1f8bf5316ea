package translate

import (
	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/ir"
	"github.com/aergoio/cvmc/internal/meta"
)

// translateFn builds one ir.Fn from a checked ast FN id (spec.md §4.4 steps
// 3-6), grounded on original_source/contract/native/trans_id.c's
// id_trans_ctor for the constructor-specific prologue.
func (d *Driver) translateFn(cont *ast.Id, contBlk *ast.Block, fn *ast.Id) *ir.Fn {
	irFn := ir.NewFn(fn.Self)
	irFn.IsCtor = fn.Fn.IsCtor
	irFn.ContID = cont.Self
	irFn.ContBase = d.contBase

	prevFn, prevLocalIdx := d.fn, d.localIdx
	d.fn = irFn
	d.localIdx = map[ast.IDHandle]int{}
	defer func() { d.fn, d.localIdx = prevFn, prevLocalIdx }()

	var paramTypes []ir.ValType

	// Wasm locals must list every parameter (in signature order) before any
	// additional local, so a constructor's cont$addr -- which is seeded
	// from heap$offset rather than received as an argument -- is declared
	// after its real parameters instead of before them (spec.md §4.4 step
	// 3; non-constructors take cont$addr as the implicit first argument).
	if !fn.Fn.IsCtor {
		irFn.HeapIdx = irFn.AddLocal(&ir.Local{Name: "cont$addr", Type: ir.I32})
		paramTypes = append(paramTypes, ir.I32)
	}

	for _, ph := range fn.Fn.Params {
		p := d.arena.ID(ph)
		vt := valTypeOf(p.Meta)
		idx := irFn.AddLocal(&ir.Local{Name: p.Name, Type: vt, ID: p.Self})
		d.localIdx[p.Self] = idx
		paramTypes = append(paramTypes, vt)
	}

	var retSlots []int
	if !fn.Fn.IsCtor {
		for i := range fn.Fn.Results {
			idx := irFn.AddLocal(&ir.Local{Name: retSlotName(i), Type: ir.I32})
			retSlots = append(retSlots, idx)
			paramTypes = append(paramTypes, ir.I32)
		}
	}

	if fn.Fn.IsCtor {
		irFn.HeapIdx = irFn.AddLocal(&ir.Local{Name: "cont$addr", Type: ir.I32})
	}
	irFn.ReloopIdx = irFn.AddLocal(&ir.Local{Name: "relooper$helper", Type: ir.I32})
	irFn.StackIdx = irFn.AddLocal(&ir.Local{Name: "stack$addr", Type: ir.I32})

	abi := &ir.Abi{Name: fn.Name, Params: paramTypes}
	if fn.Fn.IsCtor {
		abi.Result, abi.HasResult = ir.I32, true
	}
	irFn.Abi = abi

	entry := irFn.NewBb()
	exit := irFn.NewBb()
	irFn.EntryBB = entry.Num
	irFn.ExitBB = exit.Num
	entry.Next = exit.Num

	if fn.Fn.IsCtor {
		d.buildCtorPrologue(entry, cont, contBlk)
	}

	body := d.arena.Block(fn.Fn.Body)
	entry.Stmts = append(entry.Stmts, d.translateBlock(body, retSlots)...)

	if irFn.Usage > 0 {
		prologue := &ir.Stmt{
			Kind:          ir.SAssign,
			AssignIsLocal: true,
			AssignIdx:     irFn.StackIdx,
			AssignVal: &ir.Exp{
				Kind: ir.EBinary,
				BinOp: int(ast.OpSub),
				L:    &ir.Exp{Kind: ir.EGlobal, Idx: globalStackOffset},
				R:    &ir.Exp{Kind: ir.ELit, LitInt: int64(meta.ALIGN64(irFn.Usage))},
			},
		}
		entry.Stmts = append([]*ir.Stmt{prologue}, entry.Stmts...)
		exit.Stmts = append(exit.Stmts, &ir.Stmt{
			Kind:            ir.SAssign,
			AssignGlobal:    true,
			AssignGlobalIdx: globalStackOffset,
			AssignVal:       &ir.Exp{Kind: ir.ELocal, Idx: irFn.StackIdx},
		})
	}

	if fn.Fn.IsCtor {
		exit.Stmts = append(exit.Stmts, &ir.Stmt{
			Kind:       ir.SReturn,
			RetVals:    []*ir.Exp{{Kind: ir.ELocal, Idx: irFn.HeapIdx}},
			RetAddrIdx: nil,
		})
	}

	return irFn
}

// globalStackOffset is the reserved index of the module-wide mutable
// "stack$offset" global codegen materializes in env_gen (spec.md §4.5).
const globalStackOffset = 0

func retSlotName(i int) string {
	return "ret$" + itoa(i)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}

// buildCtorPrologue lowers the constructor's implicit heap allocation: the
// fresh local is seeded from the rolling heap$offset global, every declared
// global variable's default expression is stored into its slot, then
// heap$offset is advanced past this contract's storage (spec.md §4.4 step 3,
// trans_id.c's id_trans_ctor).
func (d *Driver) buildCtorPrologue(entry *ir.Bb, cont *ast.Id, contBlk *ast.Block) {
	entry.Stmts = append(entry.Stmts, &ir.Stmt{
		Kind:          ir.SAssign,
		AssignIsLocal: true,
		AssignIdx:     d.fn.HeapIdx,
		AssignVal:     &ir.Exp{Kind: ir.EGlobal, Idx: globalHeapOffset},
	})

	for _, h := range contBlk.Ids {
		id := d.arena.ID(h)
		if id.Kind != ast.VarID || id.Var == nil || id.Var.Kind != ast.Global {
			continue
		}
		var val *ir.Exp
		if id.Var.Default != nil {
			val = d.translateExp(id.Var.Default)
		} else {
			val = zeroValue(id.Meta)
		}
		entry.Stmts = append(entry.Stmts, &ir.Stmt{
			Kind: ir.SAssign,
			AssignAddr: &ir.Exp{
				Kind: ir.EAddr,
				Base: &ir.Exp{Kind: ir.ELocal, Idx: d.fn.HeapIdx},
				Off:  id.Meta.Addr,
			},
			AssignSize: meta.Iosz(id.Meta),
			AssignVal:  val,
		})
	}

	size := d.ir.Offset - d.contBase
	entry.Stmts = append(entry.Stmts, &ir.Stmt{
		Kind:            ir.SAssign,
		AssignGlobal:    true,
		AssignGlobalIdx: globalHeapOffset,
		AssignVal: &ir.Exp{
			Kind:  ir.EBinary,
			BinOp: int(ast.OpAdd),
			L:     &ir.Exp{Kind: ir.EGlobal, Idx: globalHeapOffset},
			R:     &ir.Exp{Kind: ir.ELit, LitInt: int64(size)},
		},
	})
}

// globalHeapOffset is the reserved index of the module-wide mutable
// "heap$offset" global tracking the next free persistent-storage address.
const globalHeapOffset = 1

func zeroValue(m *meta.Meta) *ir.Exp {
	switch {
	case meta.IsFpoint(m):
		return &ir.Exp{Kind: ir.ELit, LitFlt: 0}
	default:
		return &ir.Exp{Kind: ir.ELit, LitInt: 0}
	}
}
