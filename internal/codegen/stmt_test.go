package codegen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aergoio/cvmc/internal/ir"
	"github.com/aergoio/cvmc/internal/meta"
	"github.com/aergoio/cvmc/internal/wasmbin"
)

// TestEmitSwitchLowersToLabeledIfChain locks in the SWITCH lowering shape
// (spec.md §4.5, §8 scenario 5): a labeled outer block wrapping one if per
// valued case (scrutinee compared with i32.eq inside each guard), the
// default case as the innermost else, and BREAK branching out of the
// outer block.
func TestEmitSwitchLowersToLabeledIfChain(t *testing.T) {
	g := &Gen{b: wasmbin.NewBuilder(), abiFuncIdx: map[string]uint32{}, contVtable: map[int]int32{}}
	fc := &fnCtx{g: g, fn: ir.NewFn(0)}

	i32lit := func(v int64) *ir.Exp {
		return &ir.Exp{Kind: ir.ELit, LitInt: v, Meta: meta.New(meta.Int32)}
	}
	s := &ir.Stmt{
		Kind:        ir.SSwitch,
		SwitchLabel: "switch_blk_1",
		SwitchScrut: i32lit(2),
		SwitchCases: []*ir.Stmt{
			{Kind: ir.SCase, CaseVal: i32lit(1), CaseBody: []*ir.Stmt{{Kind: ir.SNop}}},
			{Kind: ir.SCase, CaseVal: i32lit(2), CaseBody: []*ir.Stmt{{Kind: ir.SBr, Label: "switch_blk_1"}}},
			{Kind: ir.SCase, CaseBody: []*ir.Stmt{{Kind: ir.SNop}}}, // default
		},
	}

	asm := wasmbin.NewAsm()
	fc.emitSwitch(asm, s)
	out := asm.Bytes()

	require.Equal(t, wasmbin.OpBlock, out[0])
	require.Equal(t, wasmbin.OpEnd, out[len(out)-1])

	// One if per valued case; the default case emits its body bare.
	require.Equal(t, 2, bytes.Count(out, []byte{wasmbin.OpIf, wasmbin.BlockTypeEmpty}))
	require.Equal(t, 2, bytes.Count(out, []byte{wasmbin.OpI32Eq}))

	// The scrutinee (2) is re-evaluated per guard, plus once as case 2's
	// own value; case 1's value appears exactly once.
	require.Equal(t, 3, bytes.Count(out, []byte{wasmbin.OpI32Const, 0x02}))
	require.Equal(t, 1, bytes.Count(out, []byte{wasmbin.OpI32Const, 0x01}))

	// BREAK inside case 2 branches out of the switch's labeled block:
	// depth 2 skips the two enclosing if labels (case 1's and case 2's own)
	// to reach the outer block.
	require.True(t, bytes.Contains(out, []byte{wasmbin.OpBr, 0x02}))

	// The label stack is fully unwound once the switch closes.
	require.Empty(t, fc.labels)
}

// TestEmitLoopExitBranchTargetsOuterBlock locks in the FOR lowering's
// branch depths (spec.md §4.5): the negated-condition br_if must exit the
// outer block (depth 1, past the loop header's own label), and the back
// edge re-enters the loop at depth 0.
func TestEmitLoopExitBranchTargetsOuterBlock(t *testing.T) {
	g := &Gen{b: wasmbin.NewBuilder(), abiFuncIdx: map[string]uint32{}, contVtable: map[int]int32{}}
	fc := &fnCtx{g: g, fn: ir.NewFn(0)}

	s := &ir.Stmt{
		Kind:      ir.SLoop,
		LoopLabel: "normal_blk_1",
		LoopCond:  &ir.Exp{Kind: ir.ELit, LitInt: 1, Meta: meta.New(meta.Bool)},
		LoopBody:  []*ir.Stmt{{Kind: ir.SNop}},
	}

	asm := wasmbin.NewAsm()
	fc.emitLoop(asm, s)
	out := asm.Bytes()

	require.True(t, bytes.Contains(out, []byte{wasmbin.OpI32Eqz, wasmbin.OpBrIf, 0x01}))
	require.True(t, bytes.Contains(out, []byte{wasmbin.OpBr, 0x00, wasmbin.OpEnd}))
	require.Empty(t, fc.labels)
}
