package ir

import "github.com/aergoio/cvmc/internal/pos"

// StmtKind mirrors ast.StmtKind; IR statements are the same shape as AST
// statements but every identifier has been resolved to a slot index or heap
// address and every RETURN has been rewritten to branch to the function's
// exit block (spec.md §4.4).
type StmtKind int

const (
	SNop StmtKind = iota
	SExp
	SAssign
	SIf
	SLoop
	SSwitch
	SCase
	SReturn
	SBr // unconditional or guarded branch to Label (lowers CONTINUE/BREAK/early RETURN)
	SBlk
)

type Stmt struct {
	Kind StmtKind
	Pos  pos.Pos // source position the statement lowers from, for debug records

	Exp *Exp // SExp

	AssignIdx  int  // local index, used when AssignIsLocal
	AssignAddr *Exp // heap/stack address expression, used when !AssignIsLocal && !AssignGlobal
	AssignIsLocal bool
	AssignGlobal  bool // true for global.set (e.g. advancing heap$offset/stack$offset), overrides AssignIsLocal
	AssignGlobalIdx int
	AssignSize int // byte width of the store, used when !AssignIsLocal && !AssignGlobal
	AssignVal  *Exp

	IfCond  *Exp
	IfBody  []*Stmt
	ElseBody []*Stmt

	LoopLabel string
	LoopInit  *Stmt
	LoopCond  *Exp
	LoopPost  *Stmt
	LoopBody  []*Stmt

	SwitchLabel  string
	SwitchScrut  *Exp
	SwitchCases  []*Stmt // each SCase

	CaseLabel string
	CaseVal   *Exp // nil for default
	CaseBody  []*Stmt

	// SReturn: each RetVals[i] is stored through the local RetAddrIdx[i] (the
	// i'th return-slot pointer), then control branches to the function's
	// exit block.
	RetVals    []*Exp
	RetAddrIdx []int

	Label      string // SBr target label, or the label an SBlk can be branched out of
	Cond       *Exp   // SBr optional guard, nil means unconditional
	IsContinue bool   // SBr only: true re-enters the named loop's condition check, false exits it (or exits a switch)

	Blk []*Stmt // SBlk
}
