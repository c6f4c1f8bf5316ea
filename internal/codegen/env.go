package codegen

import (
	"github.com/aergoio/cvmc/internal/errlist"
	"github.com/aergoio/cvmc/internal/ir"
	"github.com/aergoio/cvmc/internal/meta"
	"github.com/aergoio/cvmc/internal/pos"
	"github.com/aergoio/cvmc/internal/syslib"
	"github.com/aergoio/cvmc/internal/wasmbin"
)

// importGen registers every imported function ABI before any local
// function index is assigned: imports occupy the low indices of the
// combined function index space, so they must all be declared before
// emitFunctions adds the first body. The allocator is registered
// unconditionally (spec.md §4.5 step 4).
func (g *Gen) importGen() {
	if alloca := syslib.Lookup("alloca"); alloca != nil {
		g.addImport(alloca.Abi())
	}
	for _, abi := range g.ir.Abis {
		if abi.Module == "" {
			continue // resolved to a local function index once emitFunctions runs
		}
		g.addImport(abi)
	}
}

// envGen materializes the module's ambient environment after every function
// body has been emitted: linear memory, the heap$offset/stack$offset
// globals, the exported __STACK_TOP/__STACK_MAX globals, and the data
// segment the Translator accumulated for string literals. It runs after
// fn_gen because the data segment is
// only final once the last body is out (spec.md §4.5 step 4, gen_md.c's
// comment-documented env_gen ordering).
//
// Memory layout: contract storage and data blobs occupy low memory
// ([0, Sgmt.Offset), the shared counter translate maintains), the stack
// region sits directly above it (frames descend from its ceiling toward
// __STACK_TOP, the exported floor), and heap$offset starts at 0 so the
// constructor's instance allocation lands exactly on the statically
// reserved storage region.
func (g *Gen) envGen() {
	stackSize := g.flags.StackSize
	if stackSize <= 0 {
		stackSize = defaultStackSize
	}

	if g.ir.Sgmt.Offset > stackSize {
		g.errs.Push(errlist.StackOverflow, pos.None, "static data and storage (%d bytes) exceed the configured stack size (%d)", g.ir.Sgmt.Offset, stackSize)
	}

	floor := meta.ALIGN64(g.ir.Sgmt.Offset)
	memPages := MemPages(g.ir, stackSize)
	g.b.AddMemoryImport(syslib.ModuleName, "memory", memPages, memPages, true)

	g.b.AddGlobal(&wasmbin.Global{Type: wasmbin.ValTypeI32, Mutable: true, InitOp: wasmbin.OpI32Const, InitI32: int32(floor + stackSize)})
	g.b.AddGlobal(&wasmbin.Global{Type: wasmbin.ValTypeI32, Mutable: true, InitOp: wasmbin.OpI32Const, InitI32: 0})

	// __STACK_TOP/__STACK_MAX are the spec.md §6 output-contract globals:
	// exported so the host and internal/interpret's FLAG_TEST runtime can
	// read the reserved stack region without reaching into module internals.
	stackTopIdx := g.b.AddGlobal(&wasmbin.Global{Type: wasmbin.ValTypeI32, Mutable: true, InitOp: wasmbin.OpI32Const, InitI32: int32(meta.ALIGN64(g.ir.Sgmt.Offset))})
	stackMaxIdx := g.b.AddGlobal(&wasmbin.Global{Type: wasmbin.ValTypeI32, Mutable: false, InitOp: wasmbin.OpI32Const, InitI32: int32(stackSize)})
	g.b.AddExport("__STACK_TOP", wasmbin.ExportKindGlobal, stackTopIdx)
	g.b.AddExport("__STACK_MAX", wasmbin.ExportKindGlobal, stackMaxIdx)

	for i, addr := range g.ir.Sgmt.Addrs {
		g.b.AddData(int32(addr), g.ir.Sgmt.Datas[i])
	}
}

// addImport registers abi's host import by (module, name) at most once,
// mirroring original_source/contract/native/ir_md.c's md_add_abi dedup scan
// one layer up, at the wasmbin-import level.
func (g *Gen) addImport(abi *ir.Abi) {
	key := abi.Module + "." + abi.Name
	if _, ok := g.abiFuncIdx[key]; ok {
		return
	}
	idx := g.b.AddFunctionImport(abi.Module, abi.Name, valTypes(abi.Params), resultTypes(abi))
	g.abiFuncIdx[key] = idx
	g.importedFns++
	if g.flags.Debug {
		g.b.SetFuncName(idx, key)
	}
}

const wasmPageSize = 64 * 1024

// MemPages computes the linear-memory page count a compiled contract's
// module (or its interpret.Run counterpart) imports: spec.md §6 states the
// memory import carries 0 initial pages, but a contract with any persistent
// storage or stack frame needs more than that to ever run, so this sizes it
// to cover the static data/storage region plus the stack above it
// (documented in DESIGN.md as a deliberate deviation from the literal
// wording, not an oversight). Exported so internal/interpret can size its
// host module's memory export to match exactly what envGen imported.
func MemPages(irv *ir.Ir, stackSize int) uint32 {
	if stackSize <= 0 {
		stackSize = defaultStackSize
	}
	return uint32((meta.ALIGN64(irv.Sgmt.Offset)+stackSize)/wasmPageSize + 1)
}

func valTypes(vts []ir.ValType) []byte {
	out := make([]byte, len(vts))
	for i, vt := range vts {
		out[i] = valTypeByte(vt)
	}
	return out
}

func resultTypes(abi *ir.Abi) []byte {
	if !abi.HasResult {
		return nil
	}
	return []byte{valTypeByte(abi.Result)}
}

func valTypeByte(vt ir.ValType) byte {
	switch vt {
	case ir.I64:
		return wasmbin.ValTypeI64
	case ir.F32:
		return wasmbin.ValTypeF32
	case ir.F64:
		return wasmbin.ValTypeF64
	default:
		return wasmbin.ValTypeI32
	}
}
