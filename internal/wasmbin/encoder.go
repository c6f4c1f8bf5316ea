package wasmbin

import "sort"

// Encode serializes m into a complete Wasm binary module, in the fixed
// section order the format requires (type, import, function, table,
// memory, global, export, start, element, code, data).
func Encode(m *Module) []byte {
	out := make([]byte, 0, 4096)
	out = append(out, magic...)
	out = append(out, version...)

	if len(m.Types) > 0 {
		out = appendSection(out, SecType, encodeTypeSection(m))
	}
	if len(m.Imports) > 0 {
		out = appendSection(out, SecImport, encodeImportSection(m))
	}
	if len(m.Funcs) > 0 {
		out = appendSection(out, SecFunction, encodeFunctionSection(m))
	}
	if m.Table {
		out = appendSection(out, SecTable, encodeTableSection(m))
	}
	if m.Memory != nil {
		out = appendSection(out, SecMemory, encodeMemorySection(m))
	}
	if len(m.Globals) > 0 {
		out = appendSection(out, SecGlobal, encodeGlobalSection(m))
	}
	if len(m.Exports) > 0 {
		out = appendSection(out, SecExport, encodeExportSection(m))
	}
	if len(m.Elems) > 0 {
		out = appendSection(out, SecElement, encodeElementSection(m))
	}
	if len(m.Funcs) > 0 {
		out = appendSection(out, SecCode, encodeCodeSection(m))
	}
	if len(m.Datas) > 0 {
		out = appendSection(out, SecData, encodeDataSection(m))
	}
	if len(m.FuncNames) > 0 {
		out = appendSection(out, SecCustom, encodeNameSection(m))
	}
	return out
}

// encodeNameSection emits the standard "name" custom section, function-name
// subsection only, sorted by index as the format requires.
func encodeNameSection(m *Module) []byte {
	idxs := make([]uint32, 0, len(m.FuncNames))
	for idx := range m.FuncNames {
		idxs = append(idxs, idx)
	}
	sort.Slice(idxs, func(i, j int) bool { return idxs[i] < idxs[j] })

	var sub []byte
	sub = EncodeU32(sub, uint32(len(idxs)))
	for _, idx := range idxs {
		sub = EncodeU32(sub, idx)
		sub = EncodeName(sub, m.FuncNames[idx])
	}

	var b []byte
	b = EncodeName(b, "name")
	b = append(b, 0x01) // function names subsection
	b = EncodeBytes(b, sub)
	return b
}

func appendSection(out []byte, id byte, payload []byte) []byte {
	out = append(out, id)
	out = EncodeBytes(out, payload)
	return out
}

func encodeTypeSection(m *Module) []byte {
	var b []byte
	b = EncodeU32(b, uint32(len(m.Types)))
	for _, t := range m.Types {
		b = append(b, 0x60)
		b = EncodeU32(b, uint32(len(t.Params)))
		b = append(b, t.Params...)
		b = EncodeU32(b, uint32(len(t.Results)))
		b = append(b, t.Results...)
	}
	return b
}

func encodeImportSection(m *Module) []byte {
	var b []byte
	b = EncodeU32(b, uint32(len(m.Imports)))
	for _, imp := range m.Imports {
		b = EncodeName(b, imp.Module)
		b = EncodeName(b, imp.Name)
		b = append(b, imp.Kind)
		switch imp.Kind {
		case 0x00:
			b = EncodeU32(b, imp.TypeIdx)
		case 0x02:
			b = encodeLimits(b, imp.MemMin, imp.MemMax, imp.MemHasMax)
		case 0x03:
			b = append(b, imp.GlobalType)
			b = append(b, boolByte(imp.GlobalMutable))
		}
	}
	return b
}

func encodeLimits(b []byte, min, max uint32, hasMax bool) []byte {
	if hasMax {
		b = append(b, 0x01)
		b = EncodeU32(b, min)
		b = EncodeU32(b, max)
	} else {
		b = append(b, 0x00)
		b = EncodeU32(b, min)
	}
	return b
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

func encodeFunctionSection(m *Module) []byte {
	var b []byte
	b = EncodeU32(b, uint32(len(m.FuncTypeIdx)))
	for _, idx := range m.FuncTypeIdx {
		b = EncodeU32(b, idx)
	}
	return b
}

func encodeTableSection(m *Module) []byte {
	var b []byte
	b = EncodeU32(b, 1)
	b = append(b, 0x70) // funcref
	b = encodeLimits(b, m.TableMin, m.TableMin, true)
	return b
}

func encodeMemorySection(m *Module) []byte {
	var b []byte
	b = EncodeU32(b, 1)
	b = encodeLimits(b, m.Memory.Min, m.Memory.Max, m.Memory.HasMax)
	return b
}

func encodeGlobalSection(m *Module) []byte {
	var b []byte
	b = EncodeU32(b, uint32(len(m.Globals)))
	for _, g := range m.Globals {
		b = append(b, g.Type)
		b = append(b, boolByte(g.Mutable))
		b = append(b, g.InitOp)
		switch g.InitOp {
		case OpI32Const:
			b = EncodeI32(b, g.InitI32)
		case OpI64Const:
			b = EncodeI64(b, g.InitI64)
		case OpF32Const:
			b = appendF32(b, g.InitF32)
		case OpF64Const:
			b = appendF64(b, g.InitF64)
		}
		b = append(b, OpEnd)
	}
	return b
}

func encodeExportSection(m *Module) []byte {
	var b []byte
	b = EncodeU32(b, uint32(len(m.Exports)))
	for _, e := range m.Exports {
		b = EncodeName(b, e.Name)
		b = append(b, e.Kind)
		b = EncodeU32(b, e.Idx)
	}
	return b
}

func encodeElementSection(m *Module) []byte {
	var b []byte
	b = EncodeU32(b, uint32(len(m.Elems)))
	for _, el := range m.Elems {
		b = EncodeU32(b, 0) // table index 0
		b = append(b, OpI32Const)
		b = EncodeI32(b, el.Offset)
		b = append(b, OpEnd)
		b = EncodeU32(b, uint32(len(el.FuncIdx)))
		for _, fi := range el.FuncIdx {
			b = EncodeU32(b, fi)
		}
	}
	return b
}

func encodeCodeSection(m *Module) []byte {
	var b []byte
	b = EncodeU32(b, uint32(len(m.Funcs)))
	for _, fn := range m.Funcs {
		body := encodeFuncBody(fn)
		b = EncodeBytes(b, body)
	}
	return b
}

func encodeFuncBody(fn *Function) []byte {
	var b []byte
	b = EncodeU32(b, uint32(len(fn.Locals)))
	for _, lg := range fn.Locals {
		b = EncodeU32(b, lg.Count)
		b = append(b, lg.Type)
	}
	b = append(b, fn.Body...)
	return b
}

func encodeDataSection(m *Module) []byte {
	var b []byte
	b = EncodeU32(b, uint32(len(m.Datas)))
	for _, d := range m.Datas {
		b = EncodeU32(b, 0) // memory index 0
		b = append(b, OpI32Const)
		b = EncodeI32(b, d.Offset)
		b = append(b, OpEnd)
		b = EncodeBytes(b, d.Bytes)
	}
	return b
}

func appendF32(b []byte, v float32) []byte {
	bits := float32bits(v)
	return append(b, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
}

func appendF64(b []byte, v float64) []byte {
	bits := float64bits(v)
	out := b
	for i := 0; i < 8; i++ {
		out = append(out, byte(bits>>(8*i)))
	}
	return out
}
