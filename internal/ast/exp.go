package ast

import (
	"github.com/aergoio/cvmc/internal/meta"
	"github.com/aergoio/cvmc/internal/pos"
)

// ExpKind is the Exp tagged-variant discriminant (spec.md §3).
type ExpKind int

const (
	ExpLit ExpKind = iota
	ExpID          // identifier reference, resolved to Id
	ExpLocal       // already-slotted local/global reference (post-translate)
	ExpGlobal
	ExpBinary
	ExpUnary
	ExpCall
	ExpTuple
	ExpField
	ExpIndex
)

type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLogAnd
	OpLogOr
)

type UnOp int

const (
	OpNeg UnOp = iota
	OpNot
	OpBitNot
)

// LitKind distinguishes the literal payload's Go representation.
type LitKind int

const (
	LitBool LitKind = iota
	LitInt
	LitFloat
	LitString
)

// Exp is the tagged-variant expression node. Every Exp carries its resolved
// Meta and, where one is required (identifier ref, call, field access), a
// bound Id handle filled in by check (spec.md §8 invariant).
type Exp struct {
	Kind ExpKind
	Pos  pos.Pos
	Meta *meta.Meta
	ID   IDHandle // bound id; NoID until resolved, or never applicable (e.g. literals)

	// ExpLit
	LitKind LitKind
	LitBool bool
	LitInt  int64
	LitFlt  float64
	LitStr  string

	// ExpID / ExpLocal / ExpGlobal
	Name string

	// ExpBinary / ExpUnary
	BinOp BinOp
	UnOp  UnOp
	L, R  *Exp

	// ExpCall
	Recv     *Exp  // nil for a free function call, non-nil for a method call
	CallArgs []*Exp
	QName    string // qualified import name, filled in for syslib/cross-contract calls

	// ExpTuple
	TupElems []*Exp

	// ExpField
	FieldName string
	FieldRecv *Exp

	// ExpIndex
	IdxRecv *Exp
	IdxKey  *Exp
}
