package errlist

import (
	"bytes"
	"testing"

	"github.com/aergoio/cvmc/internal/pos"
	"github.com/stretchr/testify/require"
)

func TestPushNonFatalContinues(t *testing.T) {
	acc := New()
	acc.Push(UndefinedID, pos.Pos{Line: 1, Col: 2}, "undefined id %q", "x")
	require.True(t, acc.HasError())
	require.Len(t, acc.Errors(), 1)
}

func TestFatalAbortsViaTry(t *testing.T) {
	acc := New()
	err := Try(func() {
		acc.Push(UndefinedID, pos.None, "ok so far")
		acc.Push(BinaryOverflow, pos.None, "binary too large: %d", 2<<20)
		t.Fatal("unreachable: Fatal severity must abort before this line")
	})
	require.Error(t, err)
	var fe *FatalError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, BinaryOverflow, fe.Err.Kind)
}

func TestReportFormat(t *testing.T) {
	errs := []Error{{Kind: UndefinedType, Sev: Err, Pos: pos.Pos{Path: "c.src", Line: 3, Col: 5}, Message: "bad"}}
	var buf bytes.Buffer
	Report(&buf, errs, false)
	require.Equal(t, "c.src:3:5: ERROR: bad\n", buf.String())
}
