package check

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/errlist"
	"github.com/aergoio/cvmc/internal/meta"
	"github.com/aergoio/cvmc/internal/pos"
)

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

func TestCheckEmptyContractPasses(t *testing.T) {
	a := ast.NewArena()
	root := buildEmptyContract(a)
	errs := errlist.New()

	d := NewDriver(a, errs, Flags{})
	require.NoError(t, d.Check(root))
	require.False(t, errs.HasError())
}

func TestCheckRejectsTopLevelVariable(t *testing.T) {
	a := ast.NewArena()
	root := a.NewBlock(ast.NoBlock)
	varID := a.NewID(ast.VarID, "stray", pos.None)
	a.ID(varID).Meta = meta.New(meta.Int32)
	a.Block(root).AddID(varID)

	errs := errlist.New()
	d := NewDriver(a, errs, Flags{})
	require.NoError(t, d.Check(root))
	require.True(t, errs.HasError())
}

// buildUndefinedFieldContract builds a contract declaring a struct field
// whose type name never resolves, exercising resolveType's undefined-type
// diagnostic (spec.md §4.3, check_meta.c).
func buildUndefinedFieldContract(a *ast.Arena) ast.BlockHandle {
	root := a.NewBlock(ast.NoBlock)
	contID := a.NewID(ast.ContID, "Holder", pos.None)
	contBlk := a.NewBlock(root)
	cont := a.ID(contID)
	cont.Meta = meta.New(meta.Object)
	cont.Cont = &ast.ContInfo{Body: contBlk}
	a.Block(root).AddID(contID)

	structID := a.NewID(ast.StructID, "Box", pos.None)
	s := a.ID(structID)
	fieldID := a.NewID(ast.VarID, "payload", pos.None)
	field := a.ID(fieldID)
	field.Meta = &meta.Meta{Type: meta.None, Name: "Nonexistent"}
	s.Struct = &ast.StructInfo{Fields: []ast.IDHandle{fieldID}}
	a.Block(contBlk).AddID(structID)

	return root
}

func TestCheckUndefinedStructFieldType(t *testing.T) {
	a := ast.NewArena()
	root := buildUndefinedFieldContract(a)
	errs := errlist.New()

	d := NewDriver(a, errs, Flags{})
	require.NoError(t, d.Check(root))
	require.True(t, errs.HasError())
}

func TestCheckDuplicateConstructorRejected(t *testing.T) {
	a := ast.NewArena()
	root := a.NewBlock(ast.NoBlock)
	contID := a.NewID(ast.ContID, "TwoCtors", pos.None)
	contBlk := a.NewBlock(root)
	cont := a.ID(contID)
	cont.Meta = meta.New(meta.Object)
	cont.Cont = &ast.ContInfo{Body: contBlk}
	a.Block(root).AddID(contID)

	for _, name := range []string{"new", "init"} {
		fnID := a.NewID(ast.FnID, name, pos.None)
		fnBlk := a.NewBlock(contBlk)
		fn := a.ID(fnID)
		fn.Meta = &meta.Meta{Type: meta.Void}
		fn.Fn = &ast.FnInfo{Body: fnBlk, IsCtor: true}
		a.Block(contBlk).AddID(fnID)
	}

	errs := errlist.New()
	d := NewDriver(a, errs, Flags{})
	require.NoError(t, d.Check(root))
	require.True(t, errs.HasError())
}

// buildInterfaceImplContract builds an interface I declaring one method
// `f(int32) int32` and a contract C implementing I whose own f's single
// parameter has paramType instead of int32, exercising fnSignaturesEqual's
// parameter-type comparison (spec.md §4.3).
func buildInterfaceImplContract(a *ast.Arena, paramType meta.Type) ast.BlockHandle {
	root := a.NewBlock(ast.NoBlock)

	itfID := a.NewID(ast.ItfID, "I", pos.None)
	itf := a.ID(itfID)
	itf.Meta = meta.New(meta.Interface)
	itfBlk := a.NewBlock(root)
	itf.Itf = &ast.ItfInfo{Body: itfBlk}
	a.Block(root).AddID(itfID)

	itfMethodID := a.NewID(ast.FnID, "f", pos.None)
	itfMethod := a.ID(itfMethodID)
	itfMethod.Meta = &meta.Meta{Type: meta.Void}
	itfParamID := a.NewID(ast.VarID, "a", pos.None)
	a.ID(itfParamID).Meta = meta.New(meta.Int32)
	a.ID(itfParamID).Var = &ast.VarInfo{Decl: meta.New(meta.Int32), Kind: ast.ParamIn}
	itfMethod.Fn = &ast.FnInfo{
		Params:  []ast.IDHandle{itfParamID},
		Results: []*meta.Meta{meta.New(meta.Int32)},
		Body:    ast.NoBlock,
	}
	a.Block(itfBlk).AddID(itfMethodID)

	contID := a.NewID(ast.ContID, "C", pos.None)
	cont := a.ID(contID)
	cont.Meta = meta.New(meta.Object)
	contBlk := a.NewBlock(root)
	cont.Cont = &ast.ContInfo{Body: contBlk, Impl: "I"}
	a.Block(root).AddID(contID)

	fnID := a.NewID(ast.FnID, "f", pos.None)
	fn := a.ID(fnID)
	fn.Meta = &meta.Meta{Type: meta.Void}
	paramID := a.NewID(ast.VarID, "a", pos.None)
	a.ID(paramID).Meta = meta.New(paramType)
	a.ID(paramID).Var = &ast.VarInfo{Decl: meta.New(paramType), Kind: ast.ParamIn}
	fnBlk := a.NewBlock(contBlk)
	fn.Fn = &ast.FnInfo{
		Params:  []ast.IDHandle{paramID},
		Results: []*meta.Meta{meta.New(meta.Int32)},
		Body:    fnBlk,
	}
	a.Block(contBlk).AddID(fnID)

	return root
}

func TestCheckMissingInterfaceMethodNotImplemented(t *testing.T) {
	a := ast.NewArena()
	root := buildInterfaceImplContract(a, meta.Int32)

	// Drop f from C: an implementing contract with no same-named function
	// must fail with NOT_IMPLEMENTED (spec.md §8 scenario 3).
	for _, h := range a.Block(root).Ids {
		id := a.ID(h)
		if id.Kind == ast.ContID {
			a.Block(id.Cont.Body).Ids = nil
		}
	}

	errs := errlist.New()
	d := NewDriver(a, errs, Flags{})
	require.NoError(t, d.Check(root))
	require.True(t, errs.HasError())
	var found bool
	for _, e := range errs.Errors() {
		if e.Kind == errlist.NotImplemented {
			found = true
		}
	}
	require.True(t, found)
}

func TestCheckTwiceIsIdempotent(t *testing.T) {
	a := ast.NewArena()
	root := buildInterfaceImplContract(a, meta.Int32)

	errs := errlist.New()
	d := NewDriver(a, errs, Flags{})
	require.NoError(t, d.Check(root))
	require.False(t, errs.HasError())

	require.NoError(t, d.Check(root))
	require.Empty(t, errs.Errors())
}

// buildMapVarContract declares one contract global of the given map meta,
// exercising resolveType's key-comparability and value-not-tuple rules
// (spec.md §8 scenario 4, check_meta.c).
func buildMapVarContract(a *ast.Arena, keyMeta *meta.Meta) ast.BlockHandle {
	root := a.NewBlock(ast.NoBlock)
	contID := a.NewID(ast.ContID, "Store", pos.None)
	contBlk := a.NewBlock(root)
	cont := a.ID(contID)
	cont.Meta = meta.New(meta.Object)
	cont.Cont = &ast.ContInfo{Body: contBlk}
	a.Block(root).AddID(contID)

	varID := a.NewID(ast.VarID, "m", pos.None)
	v := a.ID(varID)
	v.Meta = &meta.Meta{Type: meta.Map, Size: 4, Elems: []*meta.Meta{keyMeta, meta.New(meta.Int32)}}
	v.Var = &ast.VarInfo{Decl: v.Meta, Kind: ast.Global}
	a.Block(contBlk).AddID(varID)

	return root
}

func TestCheckMapKeyMustBeComparable(t *testing.T) {
	a := ast.NewArena()
	root := buildMapVarContract(a, meta.New(meta.Int32))
	errs := errlist.New()
	d := NewDriver(a, errs, Flags{})
	require.NoError(t, d.Check(root))
	require.False(t, errs.HasError())

	a = ast.NewArena()
	tupleKey := &meta.Meta{Type: meta.Tuple, Elems: []*meta.Meta{meta.New(meta.Int32)}}
	root = buildMapVarContract(a, tupleKey)
	errs = errlist.New()
	d = NewDriver(a, errs, Flags{})
	require.NoError(t, d.Check(root))
	require.True(t, errs.HasError())
	var found bool
	for _, e := range errs.Errors() {
		if e.Kind == errlist.NotComparableType {
			found = true
		}
	}
	require.True(t, found)
}

func TestCheckImplementsRejectsMismatchedParamType(t *testing.T) {
	a := ast.NewArena()
	root := buildInterfaceImplContract(a, meta.String)
	errs := errlist.New()

	d := NewDriver(a, errs, Flags{})
	require.NoError(t, d.Check(root))
	require.True(t, errs.HasError())
}

func TestCheckImplementsAcceptsMatchingParamType(t *testing.T) {
	a := ast.NewArena()
	root := buildInterfaceImplContract(a, meta.Int32)
	errs := errlist.New()

	d := NewDriver(a, errs, Flags{})
	require.NoError(t, d.Check(root))
	require.False(t, errs.HasError())
}
