package check

import (
	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/errlist"
)

func (d *Driver) checkContract(id *ast.Id) {
	prevCont, prevQual, prevBlk := d.contID, d.qualID, d.blk
	d.contID = d.idHandle(id)
	d.qualID = d.contID
	defer func() { d.contID, d.qualID, d.blk = prevCont, prevQual, prevBlk }()

	blk := d.arena.Block(id.Cont.Body)
	if blk == nil {
		return
	}
	d.blk = blk

	ctorCount := 0
	var fns []*ast.Id

	for _, h := range blk.Ids {
		m := d.arena.ID(h)
		switch m.Kind {
		case ast.StructID:
			d.checkStruct(m)
		case ast.EnumID:
			d.checkEnum(m)
		case ast.VarID:
			d.checkVariable(m)
		case ast.FnID:
			fns = append(fns, m)
			if m.Fn != nil && m.Fn.IsCtor {
				ctorCount++
			}
		}
	}
	if ctorCount > 1 {
		d.errs.Push(errlist.RedefinedID, id.Pos, "contract %q declares more than one constructor", id.Name)
	}
	for _, fn := range fns {
		d.checkFunction(fn)
	}

	if id.Cont.Impl != "" {
		d.checkImplements(id, blk, id.Cont.Impl)
	}
}

// checkImplements verifies every member of the named interface has a
// same-named, same-signature function on the contract (spec.md §4.3).
func (d *Driver) checkImplements(cont *ast.Id, contBlk *ast.Block, itfName string) {
	itfID := d.findTopLevel(itfName, ast.ItfID)
	if itfID == nil {
		d.errs.Push(errlist.UndefinedType, cont.Pos, "undefined interface %q", itfName)
		return
	}
	itfBlk := d.arena.Block(itfID.Itf.Body)
	if itfBlk == nil {
		return
	}
	for _, h := range itfBlk.Ids {
		member := d.arena.ID(h)
		match := findByName(d.arena, contBlk.Ids, member.Name)
		if match == nil || match.Kind != ast.FnID {
			d.errs.Push(errlist.NotImplemented, cont.Pos, "contract %q does not implement %q.%s", cont.Name, itfName, member.Name)
			continue
		}
		if !d.fnSignaturesEqual(member, match) {
			d.errs.Push(errlist.NotImplemented, match.Pos, "contract %q method %s has a signature incompatible with interface %q", cont.Name, member.Name, itfName)
		}
	}
}

// fnSignaturesEqual compares two FN ids for interface-conformance purposes:
// same arity, same parameter types pairwise, and same result types (spec.md
// §4.3: "matching name, parameter types and result type").
func (d *Driver) fnSignaturesEqual(a, b *ast.Id) bool {
	if len(a.Fn.Params) != len(b.Fn.Params) || len(a.Fn.Results) != len(b.Fn.Results) {
		return false
	}
	for i := range a.Fn.Params {
		pa := d.arena.ID(a.Fn.Params[i])
		pb := d.arena.ID(b.Fn.Params[i])
		if pa.Meta.Type != pb.Meta.Type {
			return false
		}
	}
	for i := range a.Fn.Results {
		if a.Fn.Results[i].Type != b.Fn.Results[i].Type {
			return false
		}
	}
	return true
}

func (d *Driver) checkInterface(id *ast.Id) {
	prevQual, prevBlk := d.qualID, d.blk
	d.qualID = d.idHandle(id)
	defer func() { d.qualID, d.blk = prevQual, prevBlk }()

	blk := d.arena.Block(id.Itf.Body)
	if blk == nil {
		return
	}
	d.blk = blk
	for _, h := range blk.Ids {
		m := d.arena.ID(h)
		if m.Kind != ast.FnID {
			d.errs.Push(errlist.NotAllowed, m.Pos, "interface %q may only declare functions, got %s %q", id.Name, m.Kind, m.Name)
			continue
		}
		if m.Fn.IsCtor {
			d.errs.Push(errlist.NotAllowed, m.Pos, "interface %q may not declare a constructor", id.Name)
			continue
		}
		if m.Fn.Body != ast.NoBlock {
			d.errs.Push(errlist.NotAllowed, m.Pos, "interface method %q may not have a body", m.Name)
		}
		d.checkSignature(m)
	}
}

func (d *Driver) checkStruct(id *ast.Id) {
	seen := map[string]bool{}
	for _, h := range id.Struct.Fields {
		f := d.arena.ID(h)
		if seen[f.Name] {
			d.errs.Push(errlist.RedefinedID, f.Pos, "duplicate field %q in struct %q", f.Name, id.Name)
			continue
		}
		seen[f.Name] = true
		d.resolveType(f.Meta)
	}
}

func (d *Driver) checkEnum(id *ast.Id) {
	seen := map[string]bool{}
	for _, v := range id.Enum.Values {
		if seen[v] {
			d.errs.Push(errlist.RedefinedID, id.Pos, "duplicate enum value %q in %q", v, id.Name)
		}
		seen[v] = true
	}
}

func (d *Driver) checkSignature(fn *ast.Id) {
	for _, h := range fn.Fn.Params {
		p := d.arena.ID(h)
		d.resolveType(p.Meta)
	}
	for _, r := range fn.Fn.Results {
		d.resolveType(r)
	}
}

func (d *Driver) findTopLevel(name string, kind ast.IDKind) *ast.Id {
	root := d.blk
	for root.Up != ast.NoBlock {
		root = d.arena.Block(root.Up)
	}
	for _, h := range root.Ids {
		id := d.arena.ID(h)
		if id.Name == name && id.Kind == kind {
			return id
		}
	}
	return nil
}

func findByName(a *ast.Arena, ids []ast.IDHandle, name string) *ast.Id {
	for _, h := range ids {
		id := a.ID(h)
		if id.Name == name {
			return id
		}
	}
	return nil
}

func (d *Driver) idHandle(id *ast.Id) ast.IDHandle {
	return id.Self
}
