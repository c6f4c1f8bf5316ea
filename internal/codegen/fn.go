package codegen

import (
	"github.com/aergoio/cvmc/internal/ir"
	"github.com/aergoio/cvmc/internal/relooper"
	"github.com/aergoio/cvmc/internal/wasmbin"
)

// emitFunctions lowers every ir.Fn into a wasmbin function body, in ir.Fns
// order so each function's position matches the absolute Wasm function
// index translate/codegen already assumed while building calls and vtables
// (spec.md §4.5, gen.c's top-level per-function loop).
func (g *Gen) emitFunctions() {
	for _, fn := range g.ir.Fns {
		g.emitFn(fn)
	}
}

func (g *Gen) emitFn(fn *ir.Fn) {
	asm := wasmbin.NewAsm()

	if fn.IsCtor {
		// The cont$idx store runs before the body's prologue has seeded the
		// cont$addr local, so it addresses the storage area through the
		// heap$offset global directly -- same value, already live.
		base := g.contVtable[int(fn.ContID)]
		asm.GlobalGet(globalHeapOffset)
		asm.I32Const(base)
		asm.Store(wasmbin.OpI32Store, 2, 0)
	}

	// The exit block's statements carry the epilogue, including the
	// constructor's own `return cont$addr` (translate/fn.go), so nothing
	// is appended here beyond the body terminator.
	stmts := relooper.Reconstruct(fn)
	fc := &fnCtx{g: g, fn: fn}
	fc.emitStmts(asm, stmts)

	asm.End()

	numParams := len(fn.Abi.Params)
	locals := groupLocals(fn.Locals[numParams:])

	idx := g.b.AddFunction(valTypes(fn.Abi.Params), resultTypes(fn.Abi), locals, asm.Bytes())
	if g.flags.Debug {
		g.b.SetFuncName(idx, fn.Abi.Name)
	}
	if fn.Abi.Module == "" {
		g.abiFuncIdx[fn.Abi.Name] = idx
		// Every contract method (and its constructor) is exported by name:
		// the host dispatches a cross-contract/external call by looking up
		// the callee's Wasm export, and internal/interpret's FLAG_TEST path
		// invokes the constructor export directly without ever writing a
		// .wasm file (spec.md §6, SPEC_FULL.md §12).
		g.b.AddExport(fn.Abi.Name, wasmbin.ExportKindFunc, idx)
	}
}

// groupLocals runs wasmbin's locals encoding of run-length groups (the
// binary format requires locals of the same type to be grouped together).
func groupLocals(locals []*ir.Local) []wasmbin.LocalGroup {
	var groups []wasmbin.LocalGroup
	for _, l := range locals {
		t := valTypeByte(l.Type)
		if n := len(groups); n > 0 && groups[n-1].Type == t {
			groups[n-1].Count++
			continue
		}
		groups = append(groups, wasmbin.LocalGroup{Count: 1, Type: t})
	}
	return groups
}
