// Package fixture builds small checked-and-ready ast.Arena trees for the
// scenarios spec.md §8 describes, shared between package tests that need a
// realistic arena without a parser (out of scope, per spec.md §1) and
// cmd/cvmc's --fixture smoke-test flag.
package fixture

import (
	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/meta"
	"github.com/aergoio/cvmc/internal/pos"
)

// Empty builds spec.md §8's "empty contract" scenario: one contract, no
// globals, no functions, no constructor.
func Empty(a *ast.Arena) ast.BlockHandle {
	root := a.NewBlock(ast.NoBlock)
	contID := a.NewID(ast.ContID, "Empty", pos.None)
	contBlk := a.NewBlock(root)
	id := a.ID(contID)
	id.Meta = meta.New(meta.Object)
	id.Cont = &ast.ContInfo{Body: contBlk}
	a.Block(root).AddID(contID)
	return root
}

// Counter builds a minimal but constructor-bearing contract: one int32
// global "count" defaulted to 7, and a constructor "new" that runs the
// implicit storage-init prologue and nothing else. Realistic enough to
// drive internal/interpret's FLAG_TEST path end to end.
func Counter(a *ast.Arena) ast.BlockHandle {
	root := a.NewBlock(ast.NoBlock)
	contID := a.NewID(ast.ContID, "Counter", pos.None)
	contBlk := a.NewBlock(root)
	cont := a.ID(contID)
	cont.Meta = meta.New(meta.Object)
	cont.Cont = &ast.ContInfo{Body: contBlk}
	a.Block(root).AddID(contID)

	varID := a.NewID(ast.VarID, "count", pos.None)
	v := a.ID(varID)
	v.Meta = meta.New(meta.Int32)
	v.Var = &ast.VarInfo{
		Decl:    v.Meta,
		Default: &ast.Exp{Kind: ast.ExpLit, LitKind: ast.LitInt, LitInt: 7, Meta: meta.New(meta.Int32)},
		Kind:    ast.Global,
	}
	a.Block(contBlk).AddID(varID)

	ctorID := a.NewID(ast.FnID, "new", pos.None)
	ctorBlk := a.NewBlock(contBlk)
	ctor := a.ID(ctorID)
	ctor.Meta = &meta.Meta{Type: meta.Void}
	ctor.Fn = &ast.FnInfo{Body: ctorBlk, IsCtor: true}
	a.Block(contBlk).AddID(ctorID)

	return root
}
