package ir

import "github.com/aergoio/cvmc/internal/meta"

type ExpKind int

const (
	ELit ExpKind = iota
	ELocal
	EGlobal
	ELoad // load from heap/stack address (field/index access)
	EBinary
	EUnary
	ECall
	ETuple
	EAddr // compute an address expression (cont$addr + off, stack$addr + off)
)

type Exp struct {
	Kind ExpKind
	Meta *meta.Meta

	// ELit
	LitBool bool
	LitInt  int64
	LitFlt  float64
	LitStr  string
	DataAddr int // set once the literal has been placed into the Sgmt, for string/array literals

	// ELocal / EGlobal
	Idx int

	// ELoad / EAddr
	Base *Exp // the cont$addr / stack$addr local reference being offset
	Off  int

	// EBinary / EUnary
	BinOp int
	UnOp  int
	L, R  *Exp

	// ECall
	Abi    *Abi
	Args   []*Exp
	Indirect bool // true for cross-contract/interface calls (call_indirect)
	TableBase *Exp // cont$idx expression, used when Indirect
	TableRel  int  // relative vtable index within the callee's table segment
	// CalleeIdx points at the callee ast.Id's Idx field for a direct,
	// non-imported call. It is read only after translate finishes (every
	// function's Idx is assigned by then), which lets a call built before
	// its forward-referenced callee is translated still resolve correctly.
	CalleeIdx *int
	// HasRetSlot marks a call whose callee returns through a trailing
	// return-slot pointer rather than a native Wasm result (every contract
	// method, spec.md §4.4): translate reserved RetSlotOff bytes on the
	// caller's stack frame, appended stack$addr+RetSlotOff as the final
	// argument, and codegen loads the result back from there after the call.
	HasRetSlot bool
	RetSlotOff int

	// ETuple
	Elems []*Exp
}
