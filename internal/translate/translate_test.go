package translate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/errlist"
	"github.com/aergoio/cvmc/internal/ir"
	"github.com/aergoio/cvmc/internal/meta"
	"github.com/aergoio/cvmc/internal/pos"
)

// buildEmptyContract constructs the fixture for spec.md §8's "empty
// contract" scenario: one contract, no globals, no functions.
func buildEmptyContract(a *ast.Arena) ast.BlockHandle {
	root := a.NewBlock(ast.NoBlock)
	contID := a.NewID(ast.ContID, "Empty", pos.None)
	contBlk := a.NewBlock(root)
	id := a.ID(contID)
	id.Meta = meta.New(meta.Object)
	id.Cont = &ast.ContInfo{Body: contBlk}
	a.Block(root).AddID(contID)
	return root
}

func TestTranslateEmptyContract(t *testing.T) {
	a := ast.NewArena()
	root := buildEmptyContract(a)
	errs := errlist.New()

	out := Translate(a, root, errs)

	require.False(t, errs.HasError())
	require.Len(t, out.Fns, 1)
	require.True(t, out.Fns[0].IsCtor)
	require.Equal(t, 0, a.ID(out.Fns[0].ID).Idx)
}

// buildGlobalDefaultContract builds spec.md §8's "global variable with
// default" scenario: a constructor-less contract declaring one global int32
// with a literal default, verifying translate lays it out right after the
// cont$idx header and advances the rolling heap offset accordingly.
func buildGlobalDefaultContract(a *ast.Arena) (ast.BlockHandle, ast.IDHandle) {
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
	v.Var = &ast.VarInfo{Decl: v.Meta, Default: &ast.Exp{Kind: ast.ExpLit, LitKind: ast.LitInt, LitInt: 7, Meta: meta.New(meta.Int32)}, Kind: ast.Global}
	a.Block(contBlk).AddID(varID)

	return root, varID
}

func TestTranslateGlobalDefaultLayout(t *testing.T) {
	a := ast.NewArena()
	root, varID := buildGlobalDefaultContract(a)
	errs := errlist.New()

	out := Translate(a, root, errs)

	require.False(t, errs.HasError())
	v := a.ID(varID)
	require.Equal(t, 4, v.Meta.Addr) // immediately after the 4-byte cont$idx header
	require.Equal(t, meta.ALIGN64(4+4), out.Offset)
}

// buildInterfaceContract builds spec.md §8 scenario 3: an interface I
// declaring one method f, and a contract C implementing I with its own
// constructor and its own f. Grounded on spec.md §3's invariant that a
// contract's same-named function occupies the same position idx as the
// interface member, and on codegen.layoutVtables' base-is-the-constructor
// arithmetic (base + TableRel must equal the callee's absolute index).
func buildInterfaceContract(a *ast.Arena) (itfMethod, ctor, method ast.IDHandle, root ast.BlockHandle) {
	root = a.NewBlock(ast.NoBlock)

	itfID := a.NewID(ast.ItfID, "I", pos.None)
	itf := a.ID(itfID)
	itf.Meta = meta.New(meta.Interface)
	itfBlk := a.NewBlock(root)
	itf.Itf = &ast.ItfInfo{Body: itfBlk}
	a.Block(root).AddID(itfID)

	itfMethod = a.NewID(ast.FnID, "f", pos.None)
	a.ID(itfMethod).Meta = &meta.Meta{Type: meta.Void}
	a.ID(itfMethod).Fn = &ast.FnInfo{Body: ast.NoBlock}
	a.Block(itfBlk).AddID(itfMethod)

	contID := a.NewID(ast.ContID, "C", pos.None)
	cont := a.ID(contID)
	cont.Meta = meta.New(meta.Object)
	contBlk := a.NewBlock(root)
	cont.Cont = &ast.ContInfo{Body: contBlk, Impl: "I"}
	a.Block(root).AddID(contID)

	ctor = a.NewID(ast.FnID, "new", pos.None)
	a.ID(ctor).Meta = &meta.Meta{Type: meta.Void}
	a.ID(ctor).Fn = &ast.FnInfo{Body: ast.NoBlock, IsCtor: true}
	a.Block(contBlk).AddID(ctor)

	method = a.NewID(ast.FnID, "f", pos.None)
	a.ID(method).Meta = &meta.Meta{Type: meta.Void}
	a.ID(method).Fn = &ast.FnInfo{Body: ast.NoBlock}
	a.Block(contBlk).AddID(method)

	return itfMethod, ctor, method, root
}

// buildMethodCallContract builds a contract with a result-bearing method
// "get" and a second method "use" whose body calls it, the shape that
// exercises the trailing return-slot protocol for contract-method results
// (spec.md §4.4: results travel through caller-supplied slot pointers, not
// native Wasm results).
func buildMethodCallContract(a *ast.Arena) ast.BlockHandle {
	root := a.NewBlock(ast.NoBlock)
	contID := a.NewID(ast.ContID, "Acc", pos.None)
	contBlk := a.NewBlock(root)
	cont := a.ID(contID)
	cont.Meta = meta.New(meta.Object)
	cont.Cont = &ast.ContInfo{Body: contBlk}
	a.Block(root).AddID(contID)

	getID := a.NewID(ast.FnID, "get", pos.None)
	get := a.ID(getID)
	get.Meta = &meta.Meta{Type: meta.Void}
	get.Fn = &ast.FnInfo{Body: ast.NoBlock, Results: []*meta.Meta{meta.New(meta.Int32)}}
	a.Block(contBlk).AddID(getID)

	useID := a.NewID(ast.FnID, "use", pos.None)
	useBlk := a.NewBlock(contBlk)
	use := a.ID(useID)
	use.Meta = &meta.Meta{Type: meta.Void}
	use.Fn = &ast.FnInfo{Body: useBlk}
	a.Block(useBlk).Stmts = append(a.Block(useBlk).Stmts, &ast.Stmt{
		Kind: ast.StmtExp,
		Exp:  &ast.Exp{Kind: ast.ExpCall, Name: "get", ID: getID, Meta: meta.New(meta.Int32)},
	})
	a.Block(contBlk).AddID(useID)

	return root
}

func TestTranslateMethodCallUsesReturnSlot(t *testing.T) {
	a := ast.NewArena()
	root := buildMethodCallContract(a)
	errs := errlist.New()

	out := Translate(a, root, errs)
	require.False(t, errs.HasError())

	var use *ir.Fn
	for _, fn := range out.Fns {
		if fn.Abi.Name == "use" {
			use = fn
		}
	}
	require.NotNil(t, use)
	require.Equal(t, 8, use.Usage)

	entry := use.Bbs[use.EntryBB]
	require.Len(t, entry.Stmts, 2)

	// The frame prologue precedes the body once the call reserved its slot.
	require.True(t, entry.Stmts[0].AssignIsLocal)
	require.Equal(t, use.StackIdx, entry.Stmts[0].AssignIdx)

	call := entry.Stmts[1].Exp
	require.Equal(t, ir.ECall, call.Kind)
	require.True(t, call.HasRetSlot)
	require.Equal(t, 0, call.RetSlotOff)
	require.False(t, call.Abi.HasResult)
	require.Len(t, call.Args, 1)
	slot := call.Args[0]
	require.Equal(t, ir.EAddr, slot.Kind)
	require.Equal(t, use.StackIdx, slot.Base.Idx)

	// The frame epilogue releases the reservation on the exit block.
	exit := use.Bbs[use.ExitBB]
	require.NotEmpty(t, exit.Stmts)
	last := exit.Stmts[len(exit.Stmts)-1]
	require.True(t, last.AssignGlobal)
	require.Equal(t, globalStackOffset, last.AssignGlobalIdx)
	require.Equal(t, use.StackIdx, last.AssignVal.Idx)
}

func TestTranslateInterfaceMemberIdxMatchesContractMethod(t *testing.T) {
	a := ast.NewArena()
	itfMethod, ctor, method, root := buildInterfaceContract(a)
	errs := errlist.New()

	Translate(a, root, errs)
	require.False(t, errs.HasError())

	// Index 0 is reserved for the constructor; I's only member starts at 1.
	require.Equal(t, 1, a.ID(itfMethod).Idx)

	// The contract's absolute function indices must differ from the
	// constructor's by exactly the interface's relative vtable index, so
	// codegen's contVtable[contID] (the constructor's own absolute index)
	// plus TableRel (the interface member's idx) lands on the method.
	require.Equal(t, a.ID(ctor).Idx+a.ID(itfMethod).Idx, a.ID(method).Idx)
}
