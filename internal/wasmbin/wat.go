package wasmbin

import (
	"fmt"
	"math"
	"strings"
)

// Wat renders the module in a WAT-like text form (FLAG_DUMP_WAT, spec.md
// §6). The output is meant for human inspection of what codegen emitted,
// the role BinaryenModulePrint played in the original pipeline; it is not
// guaranteed to round-trip through a wat parser.
func (b *Builder) Wat() string { return Wat(b.mod) }

func Wat(m *Module) string {
	var w strings.Builder
	w.WriteString("(module\n")

	numImportedFuncs := uint32(0)
	for _, imp := range m.Imports {
		switch imp.Kind {
		case ExportKindFunc:
			fmt.Fprintf(&w, "  (import %q %q (func %s (type %d)))\n",
				imp.Module, imp.Name, funcRef(m, numImportedFuncs), imp.TypeIdx)
			numImportedFuncs++
		case ExportKindMemory:
			fmt.Fprintf(&w, "  (import %q %q (memory %s))\n", imp.Module, imp.Name, limits(imp.MemMin, imp.MemMax, imp.MemHasMax))
		case ExportKindGlobal:
			fmt.Fprintf(&w, "  (import %q %q (global %s))\n", imp.Module, imp.Name, valTypeName(imp.GlobalType))
		}
	}

	if m.Table {
		fmt.Fprintf(&w, "  (table %d funcref)\n", m.TableMin)
	}
	if m.Memory != nil {
		fmt.Fprintf(&w, "  (memory %s)\n", limits(m.Memory.Min, m.Memory.Max, m.Memory.HasMax))
	}
	for i, g := range m.Globals {
		fmt.Fprintf(&w, "  (global $g%d %s (%s))\n", i, globalType(g), globalInit(g))
	}
	for _, e := range m.Exports {
		fmt.Fprintf(&w, "  (export %q (%s %d))\n", e.Name, exportKindName(e.Kind), e.Idx)
	}
	for _, el := range m.Elems {
		fmt.Fprintf(&w, "  (elem (i32.const %d) func%s)\n", el.Offset, joinIdx(el.FuncIdx))
	}
	for _, d := range m.Datas {
		fmt.Fprintf(&w, "  (data (i32.const %d) %q)\n", d.Offset, string(d.Bytes))
	}

	for i, fn := range m.Funcs {
		idx := numImportedFuncs + uint32(i)
		fmt.Fprintf(&w, "  (func %s (type %d)%s\n", funcRef(m, idx), fn.TypeIdx, localsText(fn.Locals))
		disasm(&w, fn.Body)
		w.WriteString("  )\n")
	}

	w.WriteString(")\n")
	return w.String()
}

func funcRef(m *Module, idx uint32) string {
	if name, ok := m.FuncNames[idx]; ok {
		return "$" + name
	}
	return fmt.Sprintf("(;%d;)", idx)
}

func limits(min, max uint32, hasMax bool) string {
	if hasMax {
		return fmt.Sprintf("%d %d", min, max)
	}
	return fmt.Sprintf("%d", min)
}

func globalType(g *Global) string {
	if g.Mutable {
		return "(mut " + valTypeName(g.Type) + ")"
	}
	return valTypeName(g.Type)
}

func globalInit(g *Global) string {
	switch g.InitOp {
	case OpI64Const:
		return fmt.Sprintf("i64.const %d", g.InitI64)
	case OpF32Const:
		return fmt.Sprintf("f32.const %g", g.InitF32)
	case OpF64Const:
		return fmt.Sprintf("f64.const %g", g.InitF64)
	default:
		return fmt.Sprintf("i32.const %d", g.InitI32)
	}
}

func exportKindName(kind byte) string {
	switch kind {
	case ExportKindMemory:
		return "memory"
	case ExportKindGlobal:
		return "global"
	default:
		return "func"
	}
}

func valTypeName(vt byte) string {
	switch vt {
	case ValTypeI64:
		return "i64"
	case ValTypeF32:
		return "f32"
	case ValTypeF64:
		return "f64"
	default:
		return "i32"
	}
}

func joinIdx(idxs []uint32) string {
	var w strings.Builder
	for _, i := range idxs {
		fmt.Fprintf(&w, " %d", i)
	}
	return w.String()
}

func localsText(locals []LocalGroup) string {
	if len(locals) == 0 {
		return ""
	}
	var w strings.Builder
	w.WriteString(" (local")
	for _, lg := range locals {
		for i := uint32(0); i < lg.Count; i++ {
			w.WriteString(" " + valTypeName(lg.Type))
		}
	}
	w.WriteString(")")
	return w.String()
}

// disasm walks a function body's raw instruction bytes, printing one
// mnemonic per line, indenting on block/loop/if and dedenting on end. The
// body's terminating end (depth 0) closes the function.
func disasm(w *strings.Builder, body []byte) {
	depth := 0
	i := 0
	for i < len(body) {
		op := body[i]
		i++
		switch op {
		case OpBlock, OpLoop, OpIf:
			line(w, depth, structName(op))
			depth++
			i++ // block type byte
		case OpElse:
			line(w, depth-1, "else")
		case OpEnd:
			if depth == 0 {
				return
			}
			depth--
			line(w, depth, "end")
		case OpBr, OpBrIf, OpCall, OpLocalGet, OpLocalSet, OpLocalTee, OpGlobalGet, OpGlobalSet:
			v, n := DecodeU32(body[i:])
			i += n
			line(w, depth, fmt.Sprintf("%s %d", opName(op), v))
		case OpCallIndirect:
			typeIdx, n := DecodeU32(body[i:])
			i += n
			_, n = DecodeU32(body[i:]) // table index
			i += n
			line(w, depth, fmt.Sprintf("call_indirect (type %d)", typeIdx))
		case OpI32Const, OpI64Const:
			v, n := DecodeI64(body[i:])
			i += n
			line(w, depth, fmt.Sprintf("%s %d", opName(op), v))
		case OpF32Const:
			bits := uint32(body[i]) | uint32(body[i+1])<<8 | uint32(body[i+2])<<16 | uint32(body[i+3])<<24
			i += 4
			line(w, depth, fmt.Sprintf("f32.const %g", math.Float32frombits(bits)))
		case OpF64Const:
			var bits uint64
			for k := 0; k < 8; k++ {
				bits |= uint64(body[i+k]) << (8 * k)
			}
			i += 8
			line(w, depth, fmt.Sprintf("f64.const %g", math.Float64frombits(bits)))
		default:
			if isMemOp(op) {
				align, n := DecodeU32(body[i:])
				i += n
				off, n := DecodeU32(body[i:])
				i += n
				line(w, depth, fmt.Sprintf("%s align=%d offset=%d", opName(op), align, off))
				continue
			}
			line(w, depth, opName(op))
		}
	}
}

func line(w *strings.Builder, depth int, text string) {
	w.WriteString(strings.Repeat("  ", depth+2))
	w.WriteString(text)
	w.WriteByte('\n')
}

func structName(op byte) string {
	switch op {
	case OpLoop:
		return "loop"
	case OpIf:
		return "if"
	default:
		return "block"
	}
}

func isMemOp(op byte) bool {
	return op >= OpI32Load && op <= OpI32Store16
}

func opName(op byte) string {
	switch op {
	case OpUnreachable:
		return "unreachable"
	case OpNop:
		return "nop"
	case OpBr:
		return "br"
	case OpBrIf:
		return "br_if"
	case OpReturn:
		return "return"
	case OpCall:
		return "call"
	case OpDrop:
		return "drop"
	case OpSelect:
		return "select"
	case OpLocalGet:
		return "local.get"
	case OpLocalSet:
		return "local.set"
	case OpLocalTee:
		return "local.tee"
	case OpGlobalGet:
		return "global.get"
	case OpGlobalSet:
		return "global.set"
	case OpI32Load:
		return "i32.load"
	case OpI64Load:
		return "i64.load"
	case OpF32Load:
		return "f32.load"
	case OpF64Load:
		return "f64.load"
	case OpI32Load8S:
		return "i32.load8_s"
	case OpI32Load8U:
		return "i32.load8_u"
	case OpI32Load16S:
		return "i32.load16_s"
	case OpI32Load16U:
		return "i32.load16_u"
	case OpI32Store:
		return "i32.store"
	case OpI64Store:
		return "i64.store"
	case OpF32Store:
		return "f32.store"
	case OpF64Store:
		return "f64.store"
	case OpI32Store8:
		return "i32.store8"
	case OpI32Store16:
		return "i32.store16"
	case OpI32Const:
		return "i32.const"
	case OpI64Const:
		return "i64.const"
	case OpI32Eqz:
		return "i32.eqz"
	case OpI32Eq:
		return "i32.eq"
	case OpI32Ne:
		return "i32.ne"
	case OpI32LtS:
		return "i32.lt_s"
	case OpI32LtU:
		return "i32.lt_u"
	case OpI32GtS:
		return "i32.gt_s"
	case OpI32GtU:
		return "i32.gt_u"
	case OpI32LeS:
		return "i32.le_s"
	case OpI32LeU:
		return "i32.le_u"
	case OpI32GeS:
		return "i32.ge_s"
	case OpI32GeU:
		return "i32.ge_u"
	case OpI32Add:
		return "i32.add"
	case OpI32Sub:
		return "i32.sub"
	case OpI32Mul:
		return "i32.mul"
	case OpI32DivS:
		return "i32.div_s"
	case OpI32DivU:
		return "i32.div_u"
	case OpI32RemS:
		return "i32.rem_s"
	case OpI32RemU:
		return "i32.rem_u"
	case OpI32And:
		return "i32.and"
	case OpI32Or:
		return "i32.or"
	case OpI32Xor:
		return "i32.xor"
	case OpI32Shl:
		return "i32.shl"
	case OpI32ShrS:
		return "i32.shr_s"
	case OpI32ShrU:
		return "i32.shr_u"
	case OpI64Eqz:
		return "i64.eqz"
	case OpI64Eq:
		return "i64.eq"
	case OpI64Ne:
		return "i64.ne"
	case OpI64LtS:
		return "i64.lt_s"
	case OpI64LtU:
		return "i64.lt_u"
	case OpI64GtS:
		return "i64.gt_s"
	case OpI64GtU:
		return "i64.gt_u"
	case OpI64LeS:
		return "i64.le_s"
	case OpI64LeU:
		return "i64.le_u"
	case OpI64GeS:
		return "i64.ge_s"
	case OpI64GeU:
		return "i64.ge_u"
	case OpI64Add:
		return "i64.add"
	case OpI64Sub:
		return "i64.sub"
	case OpI64Mul:
		return "i64.mul"
	case OpI64DivS:
		return "i64.div_s"
	case OpI64DivU:
		return "i64.div_u"
	case OpI64RemS:
		return "i64.rem_s"
	case OpI64RemU:
		return "i64.rem_u"
	case OpI64And:
		return "i64.and"
	case OpI64Or:
		return "i64.or"
	case OpI64Xor:
		return "i64.xor"
	case OpI64Shl:
		return "i64.shl"
	case OpI64ShrS:
		return "i64.shr_s"
	case OpI64ShrU:
		return "i64.shr_u"
	case OpF64Add:
		return "f64.add"
	case OpF64Sub:
		return "f64.sub"
	case OpF64Mul:
		return "f64.mul"
	case OpF64Div:
		return "f64.div"
	default:
		return fmt.Sprintf("op(0x%02x)", op)
	}
}
