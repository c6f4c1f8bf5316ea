// Package codegen implements Codegen (spec.md §4.5): it lowers an ir.Ir
// into a wasmbin.Module and serializes it, enforcing the binary size guard
// (ERROR_BINARY_OVERFLOW) on the way out. Grounded on
// original_source/contract/native/gen.c and gen_md.c for the overall
// module-assembly sequence (imports, then function bodies, then env_gen,
// then validation and the size check), and gen_stmt.c for per-statement
// lowering.
package codegen

import (
	"io"

	"github.com/aergoio/cvmc/internal/errlist"
	"github.com/aergoio/cvmc/internal/ir"
	"github.com/aergoio/cvmc/internal/pos"
	"github.com/aergoio/cvmc/internal/wasmbin"
)

// Flags is the subset of spec.md §6's flag_t that codegen itself consults.
type Flags struct {
	Debug     bool
	OptLvl    int
	StackSize int       // bytes; 0 means the default (64KiB)
	MaxSize   int       // bytes; 0 means the default 1 MiB host limit
	Wat       io.Writer // FLAG_DUMP_WAT: textual disassembly destination, nil means off
}

const defaultStackSize = 64 * 1024

// defaultMaxSize is the binary size guard applied when Flags.MaxSize is 0:
// the host runtime rejects modules over 1 MiB (spec.md §6).
const defaultMaxSize = 1 << 20

// globalStackOffset/globalHeapOffset mirror translate's reserved global
// indices (translate/fn.go) so env_gen materializes them at the indices
// the Translator already assumed while lowering stack$addr/cont$addr.
const (
	globalStackOffset = 0
	globalHeapOffset  = 1
)

// Gen carries one compilation's codegen state: the module builder, the
// function-index -> Wasm-function-index map (1:1 once imports are
// accounted for), and the per-contract vtable layout computed from the
// ir's function ordering.
type Gen struct {
	ir    *ir.Ir
	flags Flags
	b     *wasmbin.Builder
	errs  *errlist.Accumulator

	importedFns int
	abiFuncIdx  map[string]uint32 // Abi.Module+"." +Abi.Name -> function index, for syslib/cross-contract calls

	contVtable map[int]int32 // ContID (as int) -> contract's constructor's absolute function/table index (vtable index 0)
}

// Module is the entry point (spec.md §4.5). It returns the serialized Wasm
// bytes; the caller (the root cvmc package) is responsible for writing them
// to disk under the contract's name.
func Module(ir *ir.Ir, flags Flags, errs *errlist.Accumulator) ([]byte, error) {
	g := &Gen{ir: ir, flags: flags, b: wasmbin.NewBuilder(), errs: errs, abiFuncIdx: map[string]uint32{}, contVtable: map[int]int32{}}
	var out []byte
	err := errlist.Try(func() {
		// Imports first (they occupy the low function indices), then the
		// function bodies, then the environment: env_gen runs after fn_gen
		// because the data segment and ABI set are only final once every
		// body has been emitted (spec.md §4.5 step 4, gen_md.c).
		g.importGen()
		g.layoutVtables()
		g.emitFunctions()
		g.envGen()
		if verr := g.b.Validate(); verr != nil {
			errs.Push(errlist.NotAllowed, pos.None, "%s", verr)
			return
		}
		if flags.Wat != nil {
			_, _ = io.WriteString(flags.Wat, g.b.Wat())
		}
		if !flags.Debug && flags.OptLvl > 0 {
			g.b.Optimize()
		}
		maxSize := flags.MaxSize
		if maxSize == 0 {
			maxSize = defaultMaxSize
		}
		bytes, serr := g.b.CheckSize(maxSize)
		if serr != nil {
			errs.Push(errlist.BinaryOverflow, pos.None, "%s", serr)
			return
		}
		out = bytes
	})
	if err != nil {
		return nil, err
	}
	if errs.HasError() {
		return nil, errFromAccumulator(errs)
	}
	return out, nil
}

func errFromAccumulator(errs *errlist.Accumulator) error {
	all := errs.Errors()
	if len(all) == 0 {
		return nil
	}
	return &codegenError{all[len(all)-1]}
}

type codegenError struct{ e errlist.Error }

func (c *codegenError) Error() string { return c.e.String() }
