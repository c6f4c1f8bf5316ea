package wasmbin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeU32(t *testing.T) {
	cases := []struct {
		in  uint32
		out []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{624485, []byte{0xe5, 0x8e, 0x26}},
	}
	for _, c := range cases {
		got := EncodeU32(nil, c.in)
		require.Equal(t, c.out, got)
	}
}

func TestEncodeI32Signed(t *testing.T) {
	cases := []struct {
		in  int32
		out []byte
	}{
		{0, []byte{0x00}},
		{-1, []byte{0x7f}},
		{-123456, []byte{0xc0, 0xbb, 0x78}},
		{624485, []byte{0xe5, 0x8e, 0x26}},
	}
	for _, c := range cases {
		got := EncodeI32(nil, c.in)
		require.Equal(t, c.out, got)
	}
}

func TestBuilderEmitsValidHeaderAndSections(t *testing.T) {
	b := NewBuilder()
	b.SetMemory(1, 1, true)
	asm := NewAsm()
	asm.I32Const(42).End()
	fnIdx := b.AddFunction(nil, []byte{ValTypeI32}, nil, asm.Bytes())
	b.AddExport("answer", 0x00, fnIdx)

	require.NoError(t, b.Validate())
	out := b.Emit()
	require.Equal(t, []byte(magic), out[:4])
	require.Equal(t, []byte(version), out[4:8])
}

func TestValidateRejectsDanglingExport(t *testing.T) {
	b := NewBuilder()
	b.AddExport("missing", 0x00, 7)
	require.Error(t, b.Validate())
}

func TestDecodeRoundTrips(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 624485, 1<<32 - 1} {
		enc := EncodeU32(nil, v)
		got, n := DecodeU32(enc)
		require.Equal(t, v, got)
		require.Equal(t, len(enc), n)
	}
	for _, v := range []int64{0, -1, 63, -64, 624485, -123456, 1 << 40, -(1 << 40)} {
		enc := EncodeI64(nil, v)
		got, n := DecodeI64(enc)
		require.Equal(t, v, got)
		require.Equal(t, len(enc), n)
	}
}

func TestNameSectionCarriesFunctionNames(t *testing.T) {
	b := NewBuilder()
	asm := NewAsm()
	asm.End()
	idx := b.AddFunction(nil, nil, nil, asm.Bytes())
	b.SetFuncName(idx, "ctor")

	out := b.Emit()
	require.Contains(t, string(out), "name")
	require.Contains(t, string(out), "ctor")
}

func TestWatDisassemblesBody(t *testing.T) {
	b := NewBuilder()
	asm := NewAsm()
	asm.Block(func(inner *Asm) {
		inner.I32Const(42)
		inner.LocalSet(0)
		inner.BrIf(0)
	})
	asm.End()
	idx := b.AddFunction(nil, nil, []LocalGroup{{Count: 1, Type: ValTypeI32}}, asm.Bytes())
	b.SetFuncName(idx, "f")
	b.AddGlobal(&Global{Type: ValTypeI32, Mutable: true, InitOp: OpI32Const, InitI32: 8})

	wat := b.Wat()
	require.Contains(t, wat, "(module")
	require.Contains(t, wat, "(func $f")
	require.Contains(t, wat, "i32.const 42")
	require.Contains(t, wat, "local.set 0")
	require.Contains(t, wat, "br_if 0")
	require.Contains(t, wat, "(global $g0 (mut i32) (i32.const 8))")
}

func TestAsmStructuredControlBalancesEnd(t *testing.T) {
	a := NewAsm()
	a.Block(func(inner *Asm) {
		inner.Loop(func(l *Asm) {
			l.I32Const(1)
			l.BrIf(0)
		})
	})
	out := a.Bytes()
	require.Equal(t, OpBlock, out[0])
	require.Equal(t, byte(OpEnd), out[len(out)-1])
}
