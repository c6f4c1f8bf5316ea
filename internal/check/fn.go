package check

import (
	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/errlist"
	"github.com/aergoio/cvmc/internal/meta"
)

func (d *Driver) checkFunction(id *ast.Id) {
	prevFn, prevQual, prevBlk := d.fnID, d.qualID, d.blk
	d.fnID = d.idHandle(id)
	defer func() { d.fnID, d.qualID, d.blk = prevFn, prevQual, prevBlk }()

	for _, h := range id.Fn.Params {
		p := d.arena.ID(h)
		d.resolveType(p.Meta)
		if p.Var != nil {
			p.Var.Decl = p.Meta
		}
	}
	for _, r := range id.Fn.Results {
		d.resolveType(r)
	}

	body := d.arena.Block(id.Fn.Body)
	if body == nil {
		return // interface member, or native/extern declaration with no body
	}
	d.qualID = d.contID
	d.checkBlock(body)
}

// checkBlock checks every declared Id in blk (resolving each variable's type
// and checking its default) then every Stmt, in source order. No slot index
// is assigned here.
func (d *Driver) checkBlock(blk *ast.Block) {
	prevBlk := d.blk
	d.blk = blk
	defer func() { d.blk = prevBlk }()

	for _, h := range blk.Ids {
		id := d.arena.ID(h)
		if id.Kind == ast.VarID {
			d.checkVariable(id)
		}
	}
	for _, s := range blk.Stmts {
		d.checkStmt(s)
	}
}

func (d *Driver) checkVariable(id *ast.Id) {
	d.resolveType(id.Meta)
	if id.Var == nil {
		return
	}
	id.Var.Decl = id.Meta

	if id.Var.ArrSize != nil {
		d.checkExp(id.Var.ArrSize)
		if !meta.IsInteger(id.Var.ArrSize.Meta) {
			d.errs.Push(errlist.TypeMismatch, id.Var.ArrSize.Pos, "array size must be a constant integer")
		} else if id.Var.ArrSize.Kind == ast.ExpLit && id.Var.ArrSize.LitInt < 0 {
			d.errs.Push(errlist.TypeMismatch, id.Var.ArrSize.Pos, "array size must be non-negative")
		}
	}

	if id.Var.Default != nil {
		d.checkExp(id.Var.Default)
		if !assignable(id.Meta, id.Var.Default.Meta) {
			d.errs.Push(errlist.TypeMismatch, id.Var.Default.Pos,
				"cannot initialize %s with value of type %s", meta.ToStr(id.Meta), meta.ToStr(id.Var.Default.Meta))
		}
	}
}

// assignable reports whether a value of type src may be stored into a
// variable of type dst: equal types, integers of the same signedness at any
// width, or any two floating-point types. It only answers the question; no
// conversion is inserted.
func assignable(dst, src *meta.Meta) bool {
	if meta.Equals(dst, src) {
		return true
	}
	if meta.IsInteger(dst) && meta.IsInteger(src) && meta.IsSigned(dst) == meta.IsSigned(src) {
		return true
	}
	if meta.IsFpoint(dst) && meta.IsFpoint(src) {
		return true
	}
	return false
}
