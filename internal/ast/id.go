package ast

import (
	"github.com/aergoio/cvmc/internal/meta"
	"github.com/aergoio/cvmc/internal/pos"
)

// IDKind is the Id tagged-variant discriminant (spec.md §3). Every dispatch
// over Id must switch exhaustively on Kind; adding a kind means touching
// every such switch (design note, spec.md §9).
type IDKind int

const (
	VarID IDKind = iota
	FnID
	ContID
	ItfID
	StructID
	EnumID
	TupleID
	LabelID
	ReturnID
)

func (k IDKind) String() string {
	switch k {
	case VarID:
		return "VAR"
	case FnID:
		return "FN"
	case ContID:
		return "CONT"
	case ItfID:
		return "ITF"
	case StructID:
		return "STRUCT"
	case EnumID:
		return "ENUM"
	case TupleID:
		return "TUPLE"
	case LabelID:
		return "LABEL"
	case ReturnID:
		return "RETURN"
	default:
		return "?"
	}
}

// VarKind distinguishes how a VAR id is bound: an incoming parameter, a
// function-local, a contract-global (persistent storage), or a constant
// that check is expected to have folded to a literal by translate time.
type VarKind int

const (
	ParamIn VarKind = iota
	Local
	Global
	Const
)

// Id is the tagged-variant AST declaration node. Exactly one of the *Info
// fields below is populated, selected by Kind.
type Id struct {
	Self IDHandle // this id's own handle, set once by Arena.NewID
	Kind IDKind
	Name string
	Pos  pos.Pos

	Meta *meta.Meta

	Up  IDHandle    // enclosing declaration (e.g. a FN's enclosing CONT), NoID at top level
	Blk BlockHandle // block this id is declared inside, NoBlock if not applicable

	Idx     int  // slot / vtable index; -1 means unassigned
	IsUsed  bool // set true by the resolver on every successful bind
	Private bool // struct/contract member accessible only from within the same contract instance

	Fn     *FnInfo
	Cont   *ContInfo
	Itf    *ItfInfo
	Struct *StructInfo
	Enum   *EnumInfo
	Var    *VarInfo
	Tuple  *TupleInfo
	Label  *LabelInfo
}

// FnInfo is the payload of a FN id: its signature and, once parsed, its body.
type FnInfo struct {
	Params  []IDHandle // VAR ids, kind ParamIn; cont$addr is prepended by translate, not stored here
	Results []*meta.Meta
	Body    BlockHandle
	IsCtor  bool
	// Import names the host module a syslib declaration resolves to at the
	// Wasm ABI boundary ("syslib" for every entry in internal/syslib's
	// catalogue), or "" for an ordinary contract/free function. Set by
	// internal/syslib.Load when it synthesizes the catalogue's Id nodes;
	// check copies it onto Exp.QName at call-resolution time (spec.md §4.6).
	Import string
}

// ContInfo is the payload of a CONT id.
type ContInfo struct {
	Body BlockHandle
	// Impl is the name of the interface this contract implements, or "" if
	// it implements none. Resolved to an ItfInfo by check (spec.md §4.3).
	Impl string
}

type ItfInfo struct {
	Body BlockHandle
}

type StructInfo struct {
	Fields []IDHandle // VAR ids
}

type EnumInfo struct {
	Values []string
}

// VarInfo is the payload of a VAR id.
type VarInfo struct {
	Decl    *meta.Meta // declared type, possibly meta.None until check resolves it
	Default *Exp       // default-value expression, nil if none
	Kind    VarKind
	// ArrSize is the (must be constant, non-negative) array-size expression
	// for array-typed declarations, nil otherwise.
	ArrSize *Exp
}

// TupleInfo is the payload of a synthetic TUPLE id used to destructure
// multi-value returns/assignments.
type TupleInfo struct {
	Elems []IDHandle
}

// LabelInfo is the payload of a LABEL id: the block a BREAK/CONTINUE with a
// matching name should branch out of.
type LabelInfo struct {
	Target BlockHandle
}
