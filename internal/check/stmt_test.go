package check

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/errlist"
	"github.com/aergoio/cvmc/internal/meta"
	"github.com/aergoio/cvmc/internal/pos"
)

// buildStringSwitch builds a "switch on a string" statement with two
// case blocks holding the given literal values, exercising litKey's
// LitKind-aware duplicate-value key (checkSwitch).
func buildStringSwitch(a *ast.Arena, root ast.BlockHandle, first, second string) *ast.Stmt {
	switchBlk := a.NewBlock(root)
	a.Block(switchBlk).AddStmt(&ast.Stmt{
		Kind:    ast.StmtCase,
		CaseVal: &ast.Exp{Kind: ast.ExpLit, LitKind: ast.LitString, LitStr: first, Meta: &meta.Meta{}},
	})
	a.Block(switchBlk).AddStmt(&ast.Stmt{
		Kind:    ast.StmtCase,
		CaseVal: &ast.Exp{Kind: ast.ExpLit, LitKind: ast.LitString, LitStr: second, Meta: &meta.Meta{}},
	})
	return &ast.Stmt{Kind: ast.StmtSwitch, SwitchBlk: switchBlk, Pos: pos.None}
}

func TestCheckSwitchDistinctStringCasesNotFlaggedDuplicate(t *testing.T) {
	a := ast.NewArena()
	root := a.NewBlock(ast.NoBlock)
	s := buildStringSwitch(a, root, "foo", "bar")

	errs := errlist.New()
	d := NewDriver(a, errs, Flags{})
	d.checkSwitch(s)

	require.False(t, errs.HasError())
}

func TestCheckSwitchDuplicateStringCaseFlagged(t *testing.T) {
	a := ast.NewArena()
	root := a.NewBlock(ast.NoBlock)
	s := buildStringSwitch(a, root, "foo", "foo")

	errs := errlist.New()
	d := NewDriver(a, errs, Flags{})
	d.checkSwitch(s)

	require.True(t, errs.HasError())
}

func TestCheckSwitchDuplicateIntCaseStillFlagged(t *testing.T) {
	a := ast.NewArena()
	root := a.NewBlock(ast.NoBlock)
	switchBlk := a.NewBlock(root)
	a.Block(switchBlk).AddStmt(&ast.Stmt{
		Kind:    ast.StmtCase,
		CaseVal: &ast.Exp{Kind: ast.ExpLit, LitKind: ast.LitInt, LitInt: 0, Meta: &meta.Meta{}},
	})
	a.Block(switchBlk).AddStmt(&ast.Stmt{
		Kind:    ast.StmtCase,
		CaseVal: &ast.Exp{Kind: ast.ExpLit, LitKind: ast.LitInt, LitInt: 0, Meta: &meta.Meta{}},
	})
	s := &ast.Stmt{Kind: ast.StmtSwitch, SwitchBlk: switchBlk, Pos: pos.None}

	errs := errlist.New()
	d := NewDriver(a, errs, Flags{})
	d.checkSwitch(s)

	require.True(t, errs.HasError())
}
