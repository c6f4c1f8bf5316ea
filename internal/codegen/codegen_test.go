package codegen_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/codegen"
	"github.com/aergoio/cvmc/internal/errlist"
	"github.com/aergoio/cvmc/internal/meta"
	"github.com/aergoio/cvmc/internal/pos"
	"github.com/aergoio/cvmc/internal/translate"
)

// buildEmptyContract mirrors translate_test.go's fixture of the same name:
// spec.md §8's "empty contract" scenario, one contract with no globals and
// no functions, just enough for codegen to have something to serialize.
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

func TestModuleEmptyContractProducesValidBinary(t *testing.T) {
	a := ast.NewArena()
	root := buildEmptyContract(a)
	errs := errlist.New()
	ir := translate.Translate(a, root, errs)
	require.False(t, errs.HasError())

	out, err := codegen.Module(ir, codegen.Flags{}, errlist.New())
	require.NoError(t, err)
	require.NotEmpty(t, out)
	// \0asm magic plus version.
	require.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, out[:8])
}

func TestModuleDebugEmitsNameSection(t *testing.T) {
	a := ast.NewArena()
	root := buildEmptyContract(a)
	errs := errlist.New()
	ir := translate.Translate(a, root, errs)
	require.False(t, errs.HasError())

	out, err := codegen.Module(ir, codegen.Flags{Debug: true}, errlist.New())
	require.NoError(t, err)
	require.True(t, bytes.Contains(out, []byte("name")))
	require.True(t, bytes.Contains(out, []byte("new"))) // the synthesized constructor's debug name

	plain, err := codegen.Module(ir, codegen.Flags{}, errlist.New())
	require.NoError(t, err)
	require.Less(t, len(plain), len(out))
}

func TestModuleDumpsWatWhenRequested(t *testing.T) {
	a := ast.NewArena()
	root := buildEmptyContract(a)
	errs := errlist.New()
	ir := translate.Translate(a, root, errs)
	require.False(t, errs.HasError())

	var wat bytes.Buffer
	_, err := codegen.Module(ir, codegen.Flags{Wat: &wat}, errlist.New())
	require.NoError(t, err)
	require.Contains(t, wat.String(), "(module")
	require.Contains(t, wat.String(), "__STACK_TOP")
}

func TestModuleRejectsOversizeBinary(t *testing.T) {
	a := ast.NewArena()
	root := buildEmptyContract(a)
	errs := errlist.New()
	ir := translate.Translate(a, root, errs)
	require.False(t, errs.HasError())

	_, err := codegen.Module(ir, codegen.Flags{MaxSize: 1}, errlist.New())
	require.Error(t, err)
}
