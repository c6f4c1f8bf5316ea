package relooper

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aergoio/cvmc/internal/ir"
)

func TestReconstructWrapsEntryAndAppendsExit(t *testing.T) {
	fn := ir.NewFn(0)
	entry := fn.NewBb()
	exit := fn.NewBb()
	fn.EntryBB, fn.ExitBB = entry.Num, exit.Num

	entry.Stmts = []*ir.Stmt{{Kind: ir.SReturn}}
	exit.Stmts = []*ir.Stmt{{Kind: ir.SReturn, RetVals: []*ir.Exp{{Kind: ir.ELocal}}}}

	out := Reconstruct(fn)

	require.Len(t, out, 2)
	require.Equal(t, ir.SBlk, out[0].Kind)
	require.Equal(t, ExitLabel, out[0].Label)
	require.Same(t, entry.Stmts[0], out[0].Blk[0])
	require.Same(t, exit.Stmts[0], out[1])
}
