package wasmbin

import (
	"fmt"
	"os"
)

// Builder is the incremental module-construction API Codegen drives,
// standing in for the original compiler's BinaryenModule handle
// (original_source/contract/native/gen.c, gen_md.c).
type Builder struct {
	mod *Module
}

func NewBuilder() *Builder {
	return &Builder{mod: &Module{}}
}

// AddType interns a function signature, returning its type index.
func (b *Builder) AddType(params, results []byte) uint32 {
	ft := &FuncType{Params: params, Results: results}
	for i, old := range b.mod.Types {
		if old.equal(ft) {
			return uint32(i)
		}
	}
	b.mod.Types = append(b.mod.Types, ft)
	return uint32(len(b.mod.Types) - 1)
}

// AddFunctionImport appends an imported function and returns its function
// index within the combined import+local function index space.
func (b *Builder) AddFunctionImport(module, name string, params, results []byte) uint32 {
	typeIdx := b.AddType(params, results)
	b.mod.Imports = append(b.mod.Imports, &Import{Module: module, Name: name, Kind: ExportKindFunc, TypeIdx: typeIdx})
	return b.importedFuncCount() - 1
}

func (b *Builder) importedFuncCount() uint32 {
	var n uint32
	for _, imp := range b.mod.Imports {
		if imp.Kind == ExportKindFunc {
			n++
		}
	}
	return n
}

// AddMemoryImport imports linear memory (min/max in 64KiB pages) instead of
// defining it locally, the shape the syslib host environment expects.
func (b *Builder) AddMemoryImport(module, name string, min, max uint32, hasMax bool) {
	b.mod.Imports = append(b.mod.Imports, &Import{Module: module, Name: name, Kind: ExportKindMemory, MemMin: min, MemMax: max, MemHasMax: hasMax})
}

// SetMemory defines module-owned linear memory.
func (b *Builder) SetMemory(min, max uint32, hasMax bool) {
	b.mod.Memory = &Memory{Min: min, Max: max, HasMax: hasMax}
}

// SetTable reserves a funcref table of at least size entries for
// call_indirect dispatch (interface/cross-contract calls, spec.md §4.5).
func (b *Builder) SetTable(size uint32) {
	b.mod.Table = true
	if size > b.mod.TableMin {
		b.mod.TableMin = size
	}
}

// AddGlobal defines a module-owned global with a constant initializer.
func (b *Builder) AddGlobal(g *Global) uint32 {
	b.mod.Globals = append(b.mod.Globals, g)
	return uint32(len(b.mod.Globals) - 1)
}

// AddFunction defines a module function body and returns its absolute
// function index (imports occupy the low indices).
func (b *Builder) AddFunction(params, results []byte, locals []LocalGroup, body []byte) uint32 {
	typeIdx := b.AddType(params, results)
	b.mod.FuncTypeIdx = append(b.mod.FuncTypeIdx, typeIdx)
	b.mod.Funcs = append(b.mod.Funcs, &Function{TypeIdx: typeIdx, Locals: locals, Body: body})
	return b.importedFuncCount() + uint32(len(b.mod.Funcs)) - 1
}

// SetFuncName records a debug name for the function at absolute index idx
// (imports included); names are serialized into a "name" custom section.
func (b *Builder) SetFuncName(idx uint32, name string) {
	if b.mod.FuncNames == nil {
		b.mod.FuncNames = map[uint32]string{}
	}
	b.mod.FuncNames[idx] = name
}

// AddExport exports a function, memory, or global by absolute index.
func (b *Builder) AddExport(name string, kind byte, idx uint32) {
	b.mod.Exports = append(b.mod.Exports, &Export{Name: name, Kind: kind, Idx: idx})
}

// AddElem populates table entries starting at offset with the given
// absolute function indices (one contract's vtable segment).
func (b *Builder) AddElem(offset int32, funcIdx []uint32) {
	b.mod.Elems = append(b.mod.Elems, &Elem{Offset: offset, FuncIdx: funcIdx})
}

// AddData places a data blob at the given linear-memory offset.
func (b *Builder) AddData(offset int32, data []byte) {
	b.mod.Datas = append(b.mod.Datas, &Data{Offset: offset, Bytes: data})
}

// Validate performs the structural checks the original delegated to
// BinaryenModuleValidate, limited to these: exported functions and globals
// and element-segment entries must reference in-range indices, element
// segments need a table, and data segments need a memory. Type indices and
// the instructions inside function bodies are not checked. It does not re-verify operand-stack type soundness, which
// Check already guarantees before translation ever runs.
func (b *Builder) Validate() error {
	m := b.mod
	numFuncs := b.importedFuncCount() + uint32(len(m.Funcs))
	for _, e := range m.Exports {
		if e.Kind == ExportKindFunc && e.Idx >= numFuncs {
			return fmt.Errorf("wasmbin: export %q references out-of-range function %d", e.Name, e.Idx)
		}
		if e.Kind == ExportKindGlobal && e.Idx >= uint32(len(m.Globals)) {
			return fmt.Errorf("wasmbin: export %q references out-of-range global %d", e.Name, e.Idx)
		}
	}
	for _, el := range m.Elems {
		if !m.Table {
			return fmt.Errorf("wasmbin: element segment present without a table")
		}
		for _, fi := range el.FuncIdx {
			if fi >= numFuncs {
				return fmt.Errorf("wasmbin: element segment references out-of-range function %d", fi)
			}
		}
	}
	if m.Memory == nil {
		hasMemImport := false
		for _, imp := range m.Imports {
			if imp.Kind == ExportKindMemory {
				hasMemImport = true
			}
		}
		if len(m.Datas) > 0 && !hasMemImport {
			return fmt.Errorf("wasmbin: data segments present without memory")
		}
	}
	return nil
}

// Optimize is a pass-through: the original pipeline ran Binaryen's
// optimizer here, but this encoder has no peephole/DCE passes of its own
// (DESIGN.md records why this stays a no-op rather than a hand-rolled
// optimizer).
func (b *Builder) Optimize() {}

// Emit serializes the built module to bytes.
func (b *Builder) Emit() []byte {
	return Encode(b.mod)
}

// CheckSize serializes the module and enforces maxSize (spec.md's binary
// size guard / ERROR_BINARY_OVERFLOW) without touching the filesystem.
// maxSize <= 0 means no limit.
func (b *Builder) CheckSize(maxSize int) ([]byte, error) {
	out := b.Emit()
	if maxSize > 0 && len(out) > maxSize {
		return out, fmt.Errorf("wasmbin: module size %d exceeds limit %d", len(out), maxSize)
	}
	return out, nil
}

// WriteFile serializes and writes the module to path, enforcing maxSize
// (spec.md's binary size guard / ERROR_BINARY_OVERFLOW).
func (b *Builder) WriteFile(path string, maxSize int) ([]byte, error) {
	out, err := b.CheckSize(maxSize)
	if err != nil {
		return out, err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return out, fmt.Errorf("wasmbin: write %s: %w", path, err)
	}
	return out, nil
}
