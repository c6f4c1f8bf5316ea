package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aergoio/cvmc/internal/ir"
	"github.com/aergoio/cvmc/internal/wasmbin"
)

// TestBinOpcodeI64CoversEveryOp locks in that every ast_BinOp has an I64
// opcode of its own, not just add/sub/mul -- the gap a previous revision
// left, which silently fell through to the I32 table for int64/uint64
// div, mod, bitwise, shift, and comparison operations.
func TestBinOpcodeI64CoversEveryOp(t *testing.T) {
	cases := []struct {
		op     ast_BinOp
		signed bool
		want   byte
	}{
		{opAdd, true, wasmbin.OpI64Add},
		{opSub, true, wasmbin.OpI64Sub},
		{opMul, true, wasmbin.OpI64Mul},
		{opDiv, true, wasmbin.OpI64DivS},
		{opDiv, false, wasmbin.OpI64DivU},
		{opMod, true, wasmbin.OpI64RemS},
		{opMod, false, wasmbin.OpI64RemU},
		{opAnd, true, wasmbin.OpI64And},
		{opOr, true, wasmbin.OpI64Or},
		{opLogAnd, true, wasmbin.OpI64And},
		{opLogOr, true, wasmbin.OpI64Or},
		{opXor, true, wasmbin.OpI64Xor},
		{opShl, true, wasmbin.OpI64Shl},
		{opShr, true, wasmbin.OpI64ShrS},
		{opShr, false, wasmbin.OpI64ShrU},
		{opLt, true, wasmbin.OpI64LtS},
		{opLt, false, wasmbin.OpI64LtU},
		{opLe, true, wasmbin.OpI64LeS},
		{opLe, false, wasmbin.OpI64LeU},
		{opGt, true, wasmbin.OpI64GtS},
		{opGt, false, wasmbin.OpI64GtU},
		{opGe, true, wasmbin.OpI64GeS},
		{opGe, false, wasmbin.OpI64GeU},
		{opEq, true, wasmbin.OpI64Eq},
		{opNe, true, wasmbin.OpI64Ne},
	}
	for _, c := range cases {
		require.Equal(t, c.want, binOpcode(c.op, ir.I64, c.signed))
	}
}

// TestBinOpcodeI32UnsignedVariants locks in that div/mod/shr/comparisons on
// an unsigned I32 operand pick the *U wasm opcode, not the signed default.
func TestBinOpcodeI32UnsignedVariants(t *testing.T) {
	require.Equal(t, wasmbin.OpI32DivU, binOpcode(opDiv, ir.I32, false))
	require.Equal(t, wasmbin.OpI32RemU, binOpcode(opMod, ir.I32, false))
	require.Equal(t, wasmbin.OpI32ShrU, binOpcode(opShr, ir.I32, false))
	require.Equal(t, wasmbin.OpI32LtU, binOpcode(opLt, ir.I32, false))
	require.Equal(t, wasmbin.OpI32GeU, binOpcode(opGe, ir.I32, false))

	require.Equal(t, wasmbin.OpI32DivS, binOpcode(opDiv, ir.I32, true))
	require.Equal(t, wasmbin.OpI32LtS, binOpcode(opLt, ir.I32, true))
}
