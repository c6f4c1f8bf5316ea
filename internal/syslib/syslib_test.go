package syslib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/ir"
	"github.com/aergoio/cvmc/internal/meta"
)

func TestLookupFindsCatalogEntries(t *testing.T) {
	fn := Lookup("abs_i32")
	require.NotNil(t, fn)
	require.Equal(t, []ir.ValType{ir.I32}, fn.Params)
	require.True(t, fn.HasResult)

	require.Nil(t, Lookup("does_not_exist"))
}

func TestLoadSynthesizesTopLevelFNIds(t *testing.T) {
	a := ast.NewArena()
	root := a.NewBlock(ast.NoBlock)
	Load(a, root)

	blk := a.Block(root)
	require.Len(t, blk.Ids, len(Catalog))

	byName := make(map[string]*ast.Id, len(blk.Ids))
	for _, h := range blk.Ids {
		id := a.ID(h)
		require.Equal(t, ast.FnID, id.Kind)
		require.Equal(t, ModuleName, id.Fn.Import)
		require.Equal(t, ast.NoBlock, id.Fn.Body)
		byName[id.Name] = id
	}

	pow := byName["pow_i32"]
	require.NotNil(t, pow)
	require.Len(t, pow.Fn.Params, 2)
	require.Len(t, pow.Fn.Results, 1)

	malloc := byName["alloca"]
	require.NotNil(t, malloc)
	require.Len(t, malloc.Fn.Results, 1)
}

func TestCall1And2RegisterAbiOnce(t *testing.T) {
	irv := ir.New()
	arg := &ir.Exp{Kind: ir.ELit}

	e1 := Call1(irv, "sqrt_i32", arg, meta.New(meta.Int32))
	require.Equal(t, ir.ECall, e1.Kind)
	require.Len(t, irv.Abis, 1)

	e2 := Call2(irv, "pow_i32", arg, arg, meta.New(meta.Int32))
	require.Len(t, e2.Args, 2)
	require.Len(t, irv.Abis, 2)

	// Calling the same entry again must not duplicate the ABI.
	Call1(irv, "sqrt_i32", arg, meta.New(meta.Int32))
	require.Len(t, irv.Abis, 2)
}

func TestCallPanicsOnUnknownName(t *testing.T) {
	irv := ir.New()
	require.Panics(t, func() {
		Call1(irv, "not_a_real_fn", &ir.Exp{}, meta.New(meta.Int32))
	})
}
