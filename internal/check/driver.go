// Package check implements the Check Driver (spec.md §4.3): a top-down
// name-resolution and type check over the AST that fills in Meta, Id
// bindings and IsUsed without ever changing the AST's shape. It does not
// assign slot indices; translate assigns them when it lowers each function.
package check

import (
	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/errlist"
	"github.com/aergoio/cvmc/internal/meta"
	"github.com/aergoio/cvmc/internal/resolve"
)

// Flags mirrors spec.md §6's flag_t: the subset of compile flags the check
// phase itself consults (most flags are codegen/translate concerns).
type Flags struct {
	Debug bool
}

// Driver carries the check phase's temporary context: the current block,
// the enclosing contract/interface being checked (cont_id), the qualifier
// used to resolve qualified field/type lookups (qual_id), and the current
// function (fn_id) — the same four fields the original check_t held.
type Driver struct {
	arena *ast.Arena
	errs  *errlist.Accumulator
	flag  Flags

	blk    *ast.Block
	contID ast.IDHandle
	qualID ast.IDHandle
	fnID   ast.IDHandle

	jumpStack []jumpCtx
}

func NewDriver(a *ast.Arena, errs *errlist.Accumulator, flag Flags) *Driver {
	return &Driver{arena: a, errs: errs, flag: flag, contID: ast.NoID, qualID: ast.NoID, fnID: ast.NoID}
}

// Check is the entry point (spec.md §4.3). root must have no enclosing
// block and no Stmts: only top-level contract/interface declarations.
func (d *Driver) Check(root ast.BlockHandle) error {
	return errlist.Try(func() { d.check(root) })
}

func (d *Driver) check(root ast.BlockHandle) {
	blk := d.arena.Block(root)
	if blk == nil || !blk.IsRoot() {
		panic("check: root block must have no enclosing block")
	}
	if len(blk.Stmts) != 0 {
		panic("check: root block must contain only declarations")
	}

	d.blk = blk
	for _, h := range blk.Ids {
		id := d.arena.ID(h)
		switch id.Kind {
		case ast.ContID:
			d.checkContract(id)
		case ast.ItfID:
			d.checkInterface(id)
		case ast.FnID:
			// internal/syslib.Load populates the root block with the
			// catalogue's native declarations (spec.md §4.6) alongside
			// user contracts/interfaces; they carry no body and need no
			// further checking, only visibility to unqualified lookup.
		default:
			d.errs.Push(errlist.NotAllowed, id.Pos, "only contracts and interfaces may appear at top level, got %s %q", id.Kind, id.Name)
		}
	}
}

// resolveType is the meta_check equivalent (spec.md §4.3, check_meta.c):
// resolves a meta.None "unresolved named reference" sentinel to a concrete
// type, and recurses into Map key/value descriptors to enforce the key
// comparability and (per original_source/check_meta.c) value-not-tuple
// rules.
func (d *Driver) resolveType(m *meta.Meta) {
	if meta.IsNone(m) {
		name := m.Name
		var id *ast.Id
		if d.qualID != ast.NoID {
			qual := d.arena.ID(d.qualID)
			id = resolve.IDSearchFld(d.arena, qual, name, d.qualID == d.contID)
		} else {
			id = resolve.BlkSearchID(d.arena, d.blk, name, 0)
		}
		if id == nil || !(id.Kind == ast.StructID || id.Kind == ast.ContID || id.Kind == ast.ItfID) {
			d.errs.Push(errlist.UndefinedType, m.Pos, "undefined type %q", name)
			return
		}
		id.IsUsed = true
		meta.Copy(m, id.Meta)
		m.Name = name
		return
	}
	if meta.IsMap(m) {
		if len(m.Elems) != 2 {
			panic("check: map meta must carry exactly 2 element descriptors")
		}
		k, v := m.Elems[0], m.Elems[1]
		d.resolveType(k)
		d.resolveType(v)
		if !meta.IsComparable(k) {
			d.errs.Push(errlist.NotComparableType, k.Pos, "map key type %s is not comparable", meta.ToStr(k))
		}
		if meta.IsTuple(v) {
			d.errs.Push(errlist.NotSupported, v.Pos, "map value type may not be a tuple")
		}
	}
	if meta.IsTuple(m) || meta.IsArray(m) {
		for _, e := range m.Elems {
			d.resolveType(e)
		}
	}
}
