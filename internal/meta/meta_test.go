package meta

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCopyEqualsRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		src := genMeta(t, 3)
		dst := &Meta{}
		Copy(dst, src)

		require.True(t, Equals(src, dst))
		if diff := cmp.Diff(src, dst, cmpopts.IgnoreFields(Meta{}, "Pos")); diff != "" {
			t.Fatalf("copy diverged from source (-src +dst):\n%s", diff)
		}
	})
}

func TestComparability(t *testing.T) {
	cases := []struct {
		m    *Meta
		want bool
	}{
		{New(Int32), true},
		{New(Uint64), true},
		{New(String), true},
		{New(Bool), true},
		{&Meta{Type: Tuple, Elems: []*Meta{New(Int32), New(Int32)}}, false},
		{&Meta{Type: Array, Elems: []*Meta{New(Int32)}, ArrLen: 4}, false},
		{&Meta{Type: Object, Name: "Point"}, false},
	}
	for _, c := range cases {
		require.Equal(t, c.want, IsComparable(c.m), ToStr(c.m))
	}
}

func TestAlign64(t *testing.T) {
	require.Equal(t, 0, ALIGN64(0))
	require.Equal(t, 8, ALIGN64(1))
	require.Equal(t, 8, ALIGN64(8))
	require.Equal(t, 16, ALIGN64(9))
}

// genMeta builds a random Meta tree up to depth levels deep, used to
// exercise Copy/Equals across primitive, tuple and map shapes.
func genMeta(t *rapid.T, depth int) *Meta {
	if depth == 0 {
		return rapid.SampledFrom([]*Meta{
			New(Bool), New(Int32), New(Int64), New(Uint32), New(String),
		}).Draw(t, "leaf")
	}
	switch rapid.IntRange(0, 2).Draw(t, "kind") {
	case 0:
		return genMeta(t, 0)
	case 1:
		return &Meta{Type: Tuple, Elems: []*Meta{genMeta(t, depth-1), genMeta(t, depth-1)}}
	default:
		return &Meta{Type: Map, Elems: []*Meta{genMeta(t, 0), genMeta(t, depth-1)}}
	}
}
