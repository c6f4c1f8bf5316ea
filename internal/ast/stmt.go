package ast

import "github.com/aergoio/cvmc/internal/pos"

// StmtKind is the Stmt tagged-variant discriminant (spec.md §3).
type StmtKind int

const (
	StmtNull StmtKind = iota
	StmtExp
	StmtAssign
	StmtIf
	StmtLoop
	StmtSwitch
	StmtCase
	StmtReturn
	StmtContinue
	StmtBreak
	StmtGoto
	StmtDdl
	StmtBlk
)

// LoopKind enumerates the LOOP statement's init/cond/post shapes. Only For
// is given a lowering (spec.md §9 open question; SPEC_FULL.md §14.3): any
// other kind is rejected by check before translate ever sees it.
type LoopKind int

const (
	LoopFor LoopKind = iota
	LoopWhile
	LoopDoWhile
)

// Stmt is the tagged-variant statement node. Exactly one payload field is
// populated per Kind (StmtNull has none).
type Stmt struct {
	Kind StmtKind
	Pos  pos.Pos

	Exp *Exp // STMT_EXP

	AssignL *Exp // STMT_ASSIGN
	AssignR *Exp

	IfCond    *Exp // STMT_IF
	IfBlk     BlockHandle
	ElifStmts []*Stmt // each itself a STMT_IF, chained right-to-left
	ElseBlk   BlockHandle

	LoopKind LoopKind // STMT_LOOP
	LoopInit *Stmt
	LoopCond *Exp
	LoopPost *Stmt
	LoopBody BlockHandle

	SwitchScrutinee *Exp // STMT_SWITCH, nil means "switch true" style
	SwitchBlk       BlockHandle

	CaseVal   *Exp // STMT_CASE, nil means default
	CaseStmts []*Stmt

	RetArg *Exp       // STMT_RETURN, nil means bare "return"
	RetIDs []IDHandle // RETURN ids (return-slot pointers), one per value

	JumpLabel string // STMT_CONTINUE / STMT_BREAK
	JumpCond  *Exp   // optional guard, nil means unconditional

	Blk BlockHandle // STMT_BLK
}
