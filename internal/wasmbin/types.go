package wasmbin

// Value type encodings (Wasm MVP binary opcodes for types).
const (
	ValTypeI32 byte = 0x7f
	ValTypeI64 byte = 0x7e
	ValTypeF32 byte = 0x7d
	ValTypeF64 byte = 0x7c
)

// Section id bytes, in module order.
const (
	SecCustom   byte = 0
	SecType     byte = 1
	SecImport   byte = 2
	SecFunction byte = 3
	SecTable    byte = 4
	SecMemory   byte = 5
	SecGlobal   byte = 6
	SecExport   byte = 7
	SecStart    byte = 8
	SecElement  byte = 9
	SecCode     byte = 10
	SecData     byte = 11
)

const magic = "\x00asm"
const version = "\x01\x00\x00\x00"

// FuncType is a (params) -> (results) signature, deduplicated by index in
// the type section.
type FuncType struct {
	Params  []byte
	Results []byte
}

func (f *FuncType) equal(o *FuncType) bool {
	if len(f.Params) != len(o.Params) || len(f.Results) != len(o.Results) {
		return false
	}
	for i := range f.Params {
		if f.Params[i] != o.Params[i] {
			return false
		}
	}
	for i := range f.Results {
		if f.Results[i] != o.Results[i] {
			return false
		}
	}
	return true
}

// Import describes one imported function, memory, or global.
type Import struct {
	Module, Name string
	Kind         byte // 0x00 func, 0x02 memory, 0x03 global
	TypeIdx      uint32
	MemMin, MemMax uint32
	MemHasMax      bool
	GlobalType     byte
	GlobalMutable  bool
}

// Export describes one exported function, memory, or global.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// Export/import kind bytes, named for readability at call sites
// (Builder.AddExport, Builder.Validate).
const (
	ExportKindFunc   byte = 0x00
	ExportKindMemory byte = 0x02
	ExportKindGlobal byte = 0x03
)

// Global is a module-defined global with a constant init expression
// (only i32.const/i64.const/f32.const/f64.const initializers are needed
// by this compiler: §STACK_TOP/§STACK_MAX and similar constants).
type Global struct {
	Type    byte
	Mutable bool
	InitOp  byte // I32Const/I64Const/F32Const/F64Const opcode
	InitI32 int32
	InitI64 int64
	InitF32 float32
	InitF64 float64
}

// Elem is an active element segment populating the function table
// (contract/interface dispatch vtables, spec.md §4.5).
type Elem struct {
	Offset  int32
	FuncIdx []uint32
}

// Data is an active data segment (string literal bytes), mirroring ir.Sgmt
// entries one-to-one.
type Data struct {
	Offset int32
	Bytes  []byte
}

// Function is a module-defined function: its type index, declared locals
// (grouped by run), and already-encoded instruction bytes for the body.
type Function struct {
	TypeIdx uint32
	Locals  []LocalGroup
	Body    []byte // raw encoded instruction stream, terminated by 0x0b (end)
}

type LocalGroup struct {
	Count uint32
	Type  byte
}

// Module is the in-progress module image assembled by Builder and
// serialized by Encode.
type Module struct {
	Types    []*FuncType
	Imports  []*Import
	FuncTypeIdx []uint32 // type index per module-defined function, parallel to Funcs
	Funcs    []*Function
	Table    bool
	TableMin uint32
	Memory   *Memory
	Globals  []*Global
	Exports  []*Export
	Elems    []*Elem
	Datas    []*Data

	// FuncNames maps absolute function index (imports included) to a
	// debug name, emitted as a "name" custom section when non-empty
	// (FLAG_DEBUG, spec.md §4.5 step 5).
	FuncNames map[uint32]string
}

type Memory struct {
	Min    uint32
	Max    uint32
	HasMax bool
}
