package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddAbiDedupsBySignature(t *testing.T) {
	ir := New()
	a := &Abi{Module: "syslib", Name: "abs32", Params: []ValType{I32}, Result: I32, HasResult: true}
	b := &Abi{Module: "syslib", Name: "abs32", Params: []ValType{I32}, Result: I32, HasResult: true}
	ir.AddAbi(a)
	ir.AddAbi(b)
	require.Len(t, ir.Abis, 1)

	c := &Abi{Module: "syslib", Name: "abs64", Params: []ValType{I64}, Result: I64, HasResult: true}
	ir.AddAbi(c)
	require.Len(t, ir.Abis, 2)
}

func TestAbiEqualComparesEveryField(t *testing.T) {
	base := &Abi{Module: "syslib", Name: "pow32", Params: []ValType{I32, I32}, Result: I32, HasResult: true}
	require.True(t, base.Equal(&Abi{Module: "syslib", Name: "pow32", Params: []ValType{I32, I32}, Result: I32, HasResult: true}))
	require.False(t, base.Equal(&Abi{Module: "other", Name: "pow32", Params: []ValType{I32, I32}, Result: I32, HasResult: true}))
	require.False(t, base.Equal(&Abi{Module: "syslib", Name: "pow32", Params: []ValType{I32}, Result: I32, HasResult: true}))
	require.False(t, base.Equal(&Abi{Module: "syslib", Name: "pow32", Params: []ValType{I32, I64}, Result: I32, HasResult: true}))
	require.False(t, base.Equal(&Abi{Module: "syslib", Name: "pow32", Params: []ValType{I32, I32}, Result: I64, HasResult: true}))
}

func TestSgmtAddAlignsAndTracksOffset(t *testing.T) {
	s := &Sgmt{}
	a1 := s.Add([]byte("hi"))
	require.Equal(t, 0, a1)
	require.Equal(t, 8, s.Offset) // "hi" is 2 bytes, aligned up to 8

	a2 := s.Add([]byte("twelve bytes"))
	require.Equal(t, 8, a2)
	require.Equal(t, 24, s.Offset) // 12 bytes aligned up to 16, plus base 8

	require.Equal(t, len(s.Addrs), len(s.Datas))
	require.Equal(t, len(s.Addrs), len(s.Lens))
	require.True(t, s.Addrs[1] > s.Addrs[0])
}

func TestFnNewBbAssignsSequentialNums(t *testing.T) {
	fn := NewFn(0)
	entry := fn.NewBb()
	exit := fn.NewBb()
	require.Equal(t, 0, entry.Num)
	require.Equal(t, 1, exit.Num)
	require.Equal(t, -1, entry.Next)
	require.Equal(t, -1, entry.Br)
	require.Len(t, fn.Bbs, 2)
}

func TestFnAddLocalReturnsIndex(t *testing.T) {
	fn := NewFn(0)
	i0 := fn.AddLocal(&Local{Name: "cont$addr", Type: I32})
	i1 := fn.AddLocal(&Local{Name: "relooper$helper", Type: I32})
	require.Equal(t, 0, i0)
	require.Equal(t, 1, i1)
	require.Len(t, fn.Locals, 2)
}
