// Package translate implements the Translator (spec.md §4.4): it lowers a
// checked ast.Arena into an ir.Ir, assigning function indices, per-interface
// vtable slots, contract storage offsets and local slots along the way.
// Grounded on original_source/contract/native/trans_id.c's id_trans_ctor and
// the disabled add_init_stmt/add_tmp_vars blocks it documents.
package translate

import (
	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/errlist"
	"github.com/aergoio/cvmc/internal/ir"
	"github.com/aergoio/cvmc/internal/meta"
	"github.com/aergoio/cvmc/internal/pos"
)

// contIdxSize is the width of the implicit cont$idx field every contract's
// storage reserves at offset 0 (the function-table base index used by
// call_indirect dispatch, spec.md design note §9).
const contIdxSize = 4

// Driver carries translate's running state: the arena being lowered, the
// ir.Ir being built, and the per-function scratch state reset by each call
// to translateFn.
type Driver struct {
	arena *ast.Arena
	errs  *errlist.Accumulator
	ir    *ir.Ir

	fn       *ir.Fn
	localIdx map[ast.IDHandle]int
	contBase int // this contract's storage base; its cont$idx header sits at offset 0 from it
}

// Translate is the entry point. root must be the same checked root block
// passed to check.Driver.Check.
func Translate(a *ast.Arena, root ast.BlockHandle, errs *errlist.Accumulator) *ir.Ir {
	d := &Driver{arena: a, errs: errs, ir: ir.New()}
	d.translateRoot(root)
	return d.ir
}

func (d *Driver) translateRoot(root ast.BlockHandle) {
	blk := d.arena.Block(root)

	for _, h := range blk.Ids {
		id := d.arena.ID(h)
		if id.Kind == ast.ItfID {
			d.assignInterfaceIdx(id)
		}
	}
	for _, h := range blk.Ids {
		id := d.arena.ID(h)
		if id.Kind == ast.ContID {
			d.translateContract(id)
		}
	}
}

// assignInterfaceIdx gives every member of itf a relative vtable index in
// declaration order, starting at 1: index 0 is reserved for the constructor
// (spec.md §4.4 step 2, trans_id.c's id_trans_interface).
func (d *Driver) assignInterfaceIdx(itf *ast.Id) {
	blk := d.arena.Block(itf.Itf.Body)
	if blk == nil {
		return
	}
	idx := 1
	for _, h := range blk.Ids {
		m := d.arena.ID(h)
		if m.Kind == ast.FnID {
			m.Idx = idx
			idx++
		}
	}
}

func (d *Driver) findInterface(name string) *ast.Id {
	for i := 0; i < d.arena.NumIDs(); i++ {
		id := d.arena.ID(ast.IDHandle(i))
		if id.Kind == ast.ItfID && id.Name == name {
			return id
		}
	}
	return nil
}

// translateContract reorders the contract's functions, lays out its
// persistent storage, and lowers every function (spec.md §4.4 steps 1, 3-6).
func (d *Driver) translateContract(cont *ast.Id) {
	blk := d.arena.Block(cont.Cont.Body)
	if blk == nil {
		return
	}

	var fns []*ast.Id
	hasCtor := false
	for _, h := range blk.Ids {
		id := d.arena.ID(h)
		if id.Kind == ast.FnID {
			fns = append(fns, id)
			if id.Fn != nil && id.Fn.IsCtor {
				hasCtor = true
			}
		}
	}
	if !hasCtor {
		fns = append(fns, d.synthesizeCtor())
	}
	ordered := d.orderFns(cont, fns)

	base := d.ir.Offset
	offset := base + contIdxSize
	for _, h := range blk.Ids {
		id := d.arena.ID(h)
		if id.Kind == ast.VarID && id.Var != nil && id.Var.Kind == ast.Global {
			id.Meta.Addr = offset - base
			offset += meta.Iosz(id.Meta)
			offset = meta.ALIGN64(offset)
		}
	}
	d.ir.Offset = meta.ALIGN64(offset)
	d.contBase = base
	// Contract storage and data blobs share the low-memory allocation
	// space: blobs added while lowering function bodies land after the
	// statically reserved storage region, so Sgmt.Offset ends up covering
	// both (spec.md §8 scenario 2: __STACK_TOP initializes past storage).
	if d.ir.Sgmt.Offset < d.ir.Offset {
		d.ir.Sgmt.Offset = d.ir.Offset
	}

	for _, fn := range ordered {
		irFn := d.translateFn(cont, blk, fn)
		fn.Idx = len(d.ir.Fns)
		d.ir.AddFn(irFn)
	}
}

// synthesizeCtor builds an implicit, empty-bodied constructor for a
// contract that declares none, so the storage-init prologue (spec.md §4.4
// Policies: globals are "materialised inside the constructor, not at
// declaration site") still runs and position 0 of the contract's function
// table is never left empty (spec.md §8 scenario 1: "one function
// (synthesised constructor) ... table entry 0 = constructor").
func (d *Driver) synthesizeCtor() *ast.Id {
	h := d.arena.NewID(ast.FnID, "new", pos.None)
	id := d.arena.ID(h)
	id.Meta = &meta.Meta{Type: meta.Void}
	id.Fn = &ast.FnInfo{Body: ast.NoBlock, IsCtor: true}
	return id
}

// orderFns applies spec.md §4.4 step 1: interface-conformance reordering
// followed by forcing the constructor (if any) to index 0.
func (d *Driver) orderFns(cont *ast.Id, fns []*ast.Id) []*ast.Id {
	var ctor *ast.Id
	rest := make([]*ast.Id, 0, len(fns))
	for _, f := range fns {
		if f.Fn != nil && f.Fn.IsCtor {
			ctor = f
			continue
		}
		rest = append(rest, f)
	}

	if cont.Cont.Impl != "" {
		if itf := d.findInterface(cont.Cont.Impl); itf != nil {
			if itfBlk := d.arena.Block(itf.Itf.Body); itfBlk != nil {
				matched := make([]*ast.Id, len(itfBlk.Ids))
				var unmatched []*ast.Id
				for _, f := range rest {
					placed := false
					for i, h := range itfBlk.Ids {
						m := d.arena.ID(h)
						if m.Name == f.Name {
							matched[i] = f
							placed = true
							break
						}
					}
					if !placed {
						unmatched = append(unmatched, f)
					}
				}
				rest = rest[:0]
				for _, f := range matched {
					if f != nil {
						rest = append(rest, f)
					}
				}
				rest = append(rest, unmatched...)
			}
		}
	}

	if ctor != nil {
		return append([]*ast.Id{ctor}, rest...)
	}
	return rest
}

// valTypeOf maps a Meta to the Wasm value type its slot/local occupies
// (spec.md §3): every aggregate and object reference is an I32 pointer.
func valTypeOf(m *meta.Meta) ir.ValType {
	switch m.Type {
	case meta.Int64, meta.Uint64:
		return ir.I64
	case meta.Fpoint32:
		return ir.F32
	case meta.Fpoint64:
		return ir.F64
	default:
		return ir.I32
	}
}
