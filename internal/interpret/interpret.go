// Package interpret is the optional FLAG_TEST path (spec.md §6): instead of
// writing a .wasm file, instantiate the bytes Codegen just produced with a
// real Wasm runtime and invoke the constructor export so a test can assert
// on post-state in-process.
//
// Grounded on the teacher repo itself: tetratelabs/wazero is a Wasm runtime,
// and SPEC_FULL.md §12 notes this is the one place the distilled spec asks
// for exactly what the teacher provides. Host functions satisfying the
// "syslib" import set are wired as Go closures via wazero's HostModuleBuilder
// the same way wazero's own examples build a WASI-less custom host module.
package interpret

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/aergoio/cvmc/internal/ir"
	"github.com/aergoio/cvmc/internal/syslib"
)

// Result carries what a FLAG_TEST caller needs to assert on: the
// constructor's returned cont$addr and a snapshot of linear memory at the
// point the constructor returned.
type Result struct {
	ContAddr uint32
	Memory   []byte
}

// Run instantiates wasmBytes against a host "syslib" module covering every
// internal/syslib.Catalog entry, then calls the export named ctorName (the
// compiled contract's constructor) with no arguments and snapshots memory
// afterward. memPages must match what internal/codegen's env builder sized
// the module's memory import to, or instantiation fails on a memory-size
// mismatch.
func Run(ctx context.Context, wasmBytes []byte, ctorName string, memPages uint32) (*Result, error) {
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	if _, err := newHostModule(ctx, rt, memPages); err != nil {
		return nil, fmt.Errorf("interpret: building syslib host module: %w", err)
	}

	mod, err := rt.Instantiate(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("interpret: instantiating module: %w", err)
	}
	defer mod.Close(ctx)

	ctor := mod.ExportedFunction(ctorName)
	if ctor == nil {
		return nil, fmt.Errorf("interpret: module does not export constructor %q", ctorName)
	}
	results, err := ctor.Call(ctx)
	if err != nil {
		return nil, fmt.Errorf("interpret: calling constructor %q: %w", ctorName, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("interpret: constructor %q returned no value", ctorName)
	}

	mem := mod.Memory()
	data, ok := mem.Read(0, mem.Size())
	if !ok {
		return nil, fmt.Errorf("interpret: reading linear memory")
	}
	snapshot := make([]byte, len(data))
	copy(snapshot, data)

	return &Result{ContAddr: uint32(results[0]), Memory: snapshot}, nil
}

// newHostModule builds and instantiates the "syslib" host module: memory
// plus one Go closure per internal/syslib.Catalog entry. Only array$addr,
// map$addr and the 32/64-bit abs/pow/sqrt trio are ever emitted by
// internal/codegen today -- the rest of the catalogue (malloc/memcpy,
// strcat/strcmp, the mpz_* bignum bridge, the 128-bit variants) exists to
// satisfy the import set but is never called by generated code, so those
// get a zero-returning stub. That's enough for a FLAG_TEST caller to
// exercise the scenarios spec.md §8 describes without requiring full
// bignum semantics in-process.
func newHostModule(ctx context.Context, rt wazero.Runtime, memPages uint32) (api.Module, error) {
	b := rt.NewHostModuleBuilder(syslib.ModuleName)
	b = b.ExportMemoryWithMax("memory", memPages, memPages)

	for _, fn := range syslib.Catalog {
		params := valueTypes(fn.Params)
		results := resultTypes(fn)
		b.NewFunctionBuilder().
			WithGoModuleFunction(hostFunc(fn), params, results).
			Export(fn.Name)
	}

	return b.Instantiate(ctx)
}

func valueTypes(params []ir.ValType) []api.ValueType {
	out := make([]api.ValueType, len(params))
	for i, p := range params {
		out[i] = valueType(p)
	}
	return out
}

func resultTypes(fn syslib.Fn) []api.ValueType {
	if !fn.HasResult {
		return nil
	}
	return []api.ValueType{valueType(fn.Result)}
}

func valueType(vt ir.ValType) api.ValueType {
	switch vt {
	case ir.I64:
		return api.ValueTypeI64
	case ir.F32:
		return api.ValueTypeF32
	case ir.F64:
		return api.ValueTypeF64
	default:
		return api.ValueTypeI32
	}
}

// hostFunc returns the Go closure backing one catalogue entry. abs/pow/sqrt
// at the 32/64-bit widths get real arithmetic; everything else (including
// array$addr/map$addr, which would require a host-side array/map layout
// this package has no reason to own) returns zeros of the right arity.
func hostFunc(fn syslib.Fn) api.GoModuleFunc {
	switch fn.Name {
	case "abs_i32":
		return func(_ context.Context, _ api.Module, stack []uint64) {
			v := int32(uint32(stack[0]))
			if v < 0 {
				v = -v
			}
			stack[0] = uint64(uint32(v))
		}
	case "abs_i64":
		return func(_ context.Context, _ api.Module, stack []uint64) {
			v := int64(stack[0])
			if v < 0 {
				v = -v
			}
			stack[0] = uint64(v)
		}
	case "pow_i32":
		return func(_ context.Context, _ api.Module, stack []uint64) {
			base, exp := int32(uint32(stack[0])), int32(uint32(stack[1]))
			stack[0] = uint64(uint32(ipow32(base, exp)))
		}
	case "pow_i64":
		return func(_ context.Context, _ api.Module, stack []uint64) {
			base, exp := int64(stack[0]), int64(stack[1])
			stack[0] = uint64(ipow64(base, exp))
		}
	case "sqrt_i32":
		return func(_ context.Context, _ api.Module, stack []uint64) {
			v := int32(uint32(stack[0]))
			stack[0] = uint64(uint32(isqrt32(v)))
		}
	case "sqrt_i64":
		return func(_ context.Context, _ api.Module, stack []uint64) {
			v := int64(stack[0])
			stack[0] = uint64(isqrt64(v))
		}
	default:
		resultCount := 0
		if fn.HasResult {
			resultCount = 1
		}
		return func(_ context.Context, _ api.Module, stack []uint64) {
			for i := 0; i < resultCount; i++ {
				stack[i] = 0
			}
		}
	}
}

func ipow32(base, exp int32) int32 {
	var r int32 = 1
	for ; exp > 0; exp-- {
		r *= base
	}
	return r
}

func ipow64(base, exp int64) int64 {
	var r int64 = 1
	for ; exp > 0; exp-- {
		r *= base
	}
	return r
}

func isqrt32(v int32) int32 {
	if v < 0 {
		return 0
	}
	return int32(isqrt64(int64(v)))
}

func isqrt64(v int64) int64 {
	if v <= 0 {
		return 0
	}
	r := v
	for {
		next := (r + v/r) / 2
		if next >= r {
			return r
		}
		r = next
	}
}
