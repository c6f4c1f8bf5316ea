package cvmc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aergoio/cvmc"
	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/config"
	"github.com/aergoio/cvmc/internal/fixture"
)

func TestCompileEmptyContractWritesModule(t *testing.T) {
	dir := t.TempDir()
	a := ast.NewArena()
	root := fixture.Empty(a)

	artifacts, err := cvmc.Compile(a, root, cvmc.Options{OutDir: dir})
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	require.Equal(t, "Empty", artifacts[0].Contract)
	require.NotEmpty(t, artifacts[0].Path)
	require.NotEmpty(t, artifacts[0].Wasm)
}

func TestCompileRejectsOversizeBinary(t *testing.T) {
	dir := t.TempDir()
	a := ast.NewArena()
	root := fixture.Empty(a)

	_, err := cvmc.Compile(a, root, cvmc.Options{
		OutDir: dir,
		Flags:  config.Flags{MaxSize: 1},
	})
	require.Error(t, err)
}

func TestCompileFlagTestInterpretsConstructor(t *testing.T) {
	dir := t.TempDir()
	a := ast.NewArena()
	root := fixture.Counter(a)

	artifacts, err := cvmc.Compile(a, root, cvmc.Options{
		OutDir: dir,
		Flags:  config.Flags{Test: true},
	})
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	require.Empty(t, artifacts[0].Path)
	require.NotNil(t, artifacts[0].Interpreted)
}
