// Package ir is the IR Model (spec.md §3, §4.4): functions, basic blocks,
// ABI descriptors and the data segment produced by the Translator and
// consumed by Codegen.
package ir

import "github.com/aergoio/cvmc/internal/ast"

// Wasm value types, the only four primitive kinds the module builder
// understands; everything else (object, array, map, string, tuple) is
// represented in linear memory as an I32 pointer.
type ValType int

const (
	I32 ValType = iota
	I64
	F32
	F64
)

// Abi is a tuple (module, name, param-types, result-type) describing a
// function at the Wasm import boundary (spec.md §3).
type Abi struct {
	Module  string
	Name    string
	Params  []ValType
	Result  ValType
	HasResult bool
}

// Equal reports whether a and b describe the same import signature,
// the test Ir.AddAbi uses to avoid registering duplicates (mirrors
// original_source/contract/native/ir_md.c's md_add_abi linear scan).
func (a *Abi) Equal(b *Abi) bool {
	if a.Module != b.Module || a.Name != b.Name || a.Result != b.Result || a.HasResult != b.HasResult {
		return false
	}
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	return true
}

// Local is one declared local of a function: its Wasm value type and,
// for named source locals, the Id it was slotted from.
type Local struct {
	Name string
	Type ValType
	ID   ast.IDHandle
}

// Bb is a basic block: an ordered statement list plus at most two outgoing
// branches (spec.md §3). Stmts are IR-level (post-translate) statements;
// see fn.go.
type Bb struct {
	Num   int
	Stmts []*Stmt

	// Next is the unconditional successor, -1 if this Bb ends in RETURN.
	Next int
	// Br is the conditional successor (taken when BrCond evaluates truthy),
	// -1 if this Bb has no conditional branch.
	Br     int
	BrCond *Exp
}

// Di is one debug-info record: an emitted-expression handle paired with the
// source line/col it lowers from (spec.md §3). InstrHandle is opaque to ir
// and is assigned by codegen once the corresponding Wasm expression exists.
type Di struct {
	InstrHandle int
	Line, Col   int
}

// Sgmt is the rolling data segment (spec.md §3): parallel ordered sequences
// describing initial-memory blobs, with Offset the next free address.
type Sgmt struct {
	Offset int
	Addrs  []int
	Datas  [][]byte
	Lens   []int
}

// Add appends one data blob at the current offset, advances Offset past it
// (8-byte aligned), and returns the address the blob was placed at.
func (s *Sgmt) Add(data []byte) int {
	addr := s.Offset
	s.Addrs = append(s.Addrs, addr)
	s.Datas = append(s.Datas, data)
	s.Lens = append(s.Lens, len(data))
	s.Offset += alignUp(len(data), 8)
	return addr
}

func alignUp(n, a int) int {
	return (n + a - 1) &^ (a - 1)
}

// Fn is one IR function (spec.md §3, §4.4).
type Fn struct {
	ID  ast.IDHandle
	Abi *Abi

	Bbs     []*Bb
	EntryBB int
	ExitBB  int

	Locals []*Local

	HeapIdx   int // local index holding cont$addr
	StackIdx  int // local index holding stack$addr
	ReloopIdx int // local index reserved for the relooper's scratch helper

	Usage int // accumulated stack-frame bytes

	// Dis are the function's debug records, appended by codegen (one per
	// lowered statement) when FLAG_DEBUG is set; empty otherwise.
	Dis []Di

	IsCtor  bool
	ContID  ast.IDHandle // owning contract, used by codegen to emit the cont$idx store for constructors
	ContBase int         // this contract's storage base offset (excludes the cont$idx header)
}

func NewFn(id ast.IDHandle) *Fn {
	return &Fn{ID: id, EntryBB: -1, ExitBB: -1}
}

func (f *Fn) AddLocal(l *Local) int {
	f.Locals = append(f.Locals, l)
	return len(f.Locals) - 1
}

func (f *Fn) NewBb() *Bb {
	bb := &Bb{Num: len(f.Bbs), Next: -1, Br: -1}
	f.Bbs = append(f.Bbs, bb)
	return bb
}

// Ir is the translator's output: an ordered function list, the ABI
// descriptors those functions import, and the data segment accumulated
// while lowering string literals.
type Ir struct {
	Fns  []*Fn
	Abis []*Abi
	Sgmt *Sgmt

	Offset int // rolling heap offset, advanced by each constructor (spec.md §4.4)
}

func New() *Ir {
	return &Ir{Sgmt: &Sgmt{}}
}

func (ir *Ir) AddFn(fn *Fn) { ir.Fns = append(ir.Fns, fn) }

// AddAbi registers abi if an equal one is not already present, mirroring
// original_source/contract/native/ir_md.c's md_add_abi dedup scan.
func (ir *Ir) AddAbi(abi *Abi) {
	for _, old := range ir.Abis {
		if old.Equal(abi) {
			return
		}
	}
	ir.Abis = append(ir.Abis, abi)
}
