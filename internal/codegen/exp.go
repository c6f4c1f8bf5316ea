package codegen

import (
	"github.com/aergoio/cvmc/internal/ir"
	"github.com/aergoio/cvmc/internal/meta"
	"github.com/aergoio/cvmc/internal/wasmbin"
)

func (fc *fnCtx) emitExp(asm *wasmbin.Asm, e *ir.Exp) {
	switch e.Kind {
	case ir.ELit:
		fc.emitLit(asm, e)
	case ir.ELocal:
		asm.LocalGet(uint32(e.Idx))
	case ir.EGlobal:
		asm.GlobalGet(uint32(e.Idx))
	case ir.EAddr:
		fc.emitExp(asm, e.Base)
		if e.Off != 0 {
			asm.I32Const(int32(e.Off))
			asm.Binary(wasmbin.OpI32Add)
		}
	case ir.ELoad:
		fc.emitExp(asm, e.Base)
		size := 4
		if e.Meta != nil {
			size = e.Meta.Size
		}
		asm.Load(loadOp(size), alignFor(size), 0)
	case ir.EBinary:
		fc.emitBinary(asm, e)
	case ir.EUnary:
		fc.emitUnary(asm, e)
	case ir.ECall:
		fc.emitCall(asm, e)
	case ir.ETuple:
		for _, el := range e.Elems {
			fc.emitExp(asm, el)
		}
	default:
		panic("codegen: unhandled ir expression kind")
	}
}

// emitLit lowers a literal: string literals were already placed into the
// data segment by translate (DataAddr), so they push their pointer; every
// other literal pushes its value in the Wasm value type its Meta carries.
func (fc *fnCtx) emitLit(asm *wasmbin.Asm, e *ir.Exp) {
	if e.Meta != nil && meta.IsString(e.Meta) {
		asm.I32Const(int32(e.DataAddr))
		return
	}
	vt := ir.I32
	if e.Meta != nil {
		vt = valTypeOfMeta(e.Meta)
	}
	switch vt {
	case ir.I64:
		asm.I64Const(e.LitInt)
	case ir.F32:
		asm.F32Const(float32(e.LitFlt))
	case ir.F64:
		asm.F64Const(e.LitFlt)
	default:
		asm.I32Const(int32(e.LitInt))
	}
}

func valTypeOfMeta(m *meta.Meta) ir.ValType {
	switch m.Type {
	case meta.Int64, meta.Uint64:
		return ir.I64
	case meta.Fpoint32:
		return ir.F32
	case meta.Fpoint64:
		return ir.F64
	default:
		return ir.I32
	}
}

func (fc *fnCtx) emitBinary(asm *wasmbin.Asm, e *ir.Exp) {
	fc.emitExp(asm, e.L)
	fc.emitExp(asm, e.R)
	vt := ir.I32
	signed := true
	if e.L.Meta != nil {
		vt = valTypeOfMeta(e.L.Meta)
		signed = meta.IsSigned(e.L.Meta)
	}
	asm.Binary(binOpcode(ast_BinOp(e.BinOp), vt, signed))
}

func (fc *fnCtx) emitUnary(asm *wasmbin.Asm, e *ir.Exp) {
	switch ast_UnOp(e.UnOp) {
	case unOpNot:
		fc.emitExp(asm, e.L)
		asm.Unary(wasmbin.OpI32Eqz)
	case unOpNeg:
		// No native negate opcode: lower as 0 - x.
		vt := ir.I32
		if e.L.Meta != nil {
			vt = valTypeOfMeta(e.L.Meta)
		}
		if vt == ir.F64 || vt == ir.F32 {
			if vt == ir.F64 {
				asm.F64Const(0)
			} else {
				asm.F32Const(0)
			}
		} else if vt == ir.I64 {
			asm.I64Const(0)
		} else {
			asm.I32Const(0)
		}
		fc.emitExp(asm, e.L)
		asm.Binary(binOpcode(opSub, vt, true))
	case unOpBitNot:
		fc.emitExp(asm, e.L)
		asm.I32Const(-1)
		asm.Binary(wasmbin.OpI32Xor)
	}
}

// ast_BinOp/ast_UnOp/unOp* mirror internal/ast's BinOp/UnOp integer values
// without importing internal/ast (ir and codegen stay one layer removed
// from the parser's AST); translate is the only package that needs both.
type ast_BinOp int
type ast_UnOp int

const (
	opAdd ast_BinOp = iota
	opSub
	opMul
	opDiv
	opMod
	opAnd
	opOr
	opXor
	opShl
	opShr
	opEq
	opNe
	opLt
	opLe
	opGt
	opGe
	opLogAnd
	opLogOr
)

const (
	unOpNeg ast_UnOp = iota
	unOpNot
	unOpBitNot
)

// binOpcode picks the Wasm opcode for op against operands of Wasm type vt,
// honoring signed carries the sign of the *operand* meta.Type (meta.IsSigned)
// for every op whose result differs between signed and unsigned interpretation
// (div, rem, shift-right, the ordered comparisons); Wasm's add/sub/mul/and/or/
// xor/eq/ne are two's-complement and bit-identical either way.
func binOpcode(op ast_BinOp, vt ir.ValType, signed bool) byte {
	if vt == ir.I64 {
		switch op {
		case opAdd:
			return wasmbin.OpI64Add
		case opSub:
			return wasmbin.OpI64Sub
		case opMul:
			return wasmbin.OpI64Mul
		case opDiv:
			if signed {
				return wasmbin.OpI64DivS
			}
			return wasmbin.OpI64DivU
		case opMod:
			if signed {
				return wasmbin.OpI64RemS
			}
			return wasmbin.OpI64RemU
		case opAnd, opLogAnd:
			return wasmbin.OpI64And
		case opOr, opLogOr:
			return wasmbin.OpI64Or
		case opXor:
			return wasmbin.OpI64Xor
		case opShl:
			return wasmbin.OpI64Shl
		case opShr:
			if signed {
				return wasmbin.OpI64ShrS
			}
			return wasmbin.OpI64ShrU
		case opEq:
			return wasmbin.OpI64Eq
		case opNe:
			return wasmbin.OpI64Ne
		case opLt:
			if signed {
				return wasmbin.OpI64LtS
			}
			return wasmbin.OpI64LtU
		case opLe:
			if signed {
				return wasmbin.OpI64LeS
			}
			return wasmbin.OpI64LeU
		case opGt:
			if signed {
				return wasmbin.OpI64GtS
			}
			return wasmbin.OpI64GtU
		case opGe:
			if signed {
				return wasmbin.OpI64GeS
			}
			return wasmbin.OpI64GeU
		default:
			return wasmbin.OpI64Add
		}
	}
	if vt == ir.F64 {
		switch op {
		case opAdd:
			return wasmbin.OpF64Add
		case opSub:
			return wasmbin.OpF64Sub
		case opMul:
			return wasmbin.OpF64Mul
		case opDiv:
			return wasmbin.OpF64Div
		}
	}
	switch op {
	case opAdd:
		return wasmbin.OpI32Add
	case opSub:
		return wasmbin.OpI32Sub
	case opMul:
		return wasmbin.OpI32Mul
	case opDiv:
		if signed {
			return wasmbin.OpI32DivS
		}
		return wasmbin.OpI32DivU
	case opMod:
		if signed {
			return wasmbin.OpI32RemS
		}
		return wasmbin.OpI32RemU
	case opAnd, opLogAnd:
		return wasmbin.OpI32And
	case opOr, opLogOr:
		return wasmbin.OpI32Or
	case opXor:
		return wasmbin.OpI32Xor
	case opShl:
		return wasmbin.OpI32Shl
	case opShr:
		if signed {
			return wasmbin.OpI32ShrS
		}
		return wasmbin.OpI32ShrU
	case opEq:
		return wasmbin.OpI32Eq
	case opNe:
		return wasmbin.OpI32Ne
	case opLt:
		if signed {
			return wasmbin.OpI32LtS
		}
		return wasmbin.OpI32LtU
	case opLe:
		if signed {
			return wasmbin.OpI32LeS
		}
		return wasmbin.OpI32LeU
	case opGt:
		if signed {
			return wasmbin.OpI32GtS
		}
		return wasmbin.OpI32GtU
	case opGe:
		if signed {
			return wasmbin.OpI32GeS
		}
		return wasmbin.OpI32GeU
	default:
		return wasmbin.OpI32Add
	}
}

// emitCall lowers a direct, imported, or interface/cross-contract call.
// Syslib imports and constructors push their result natively; a contract
// method's result comes back through the trailing return-slot pointer
// translate reserved on the caller's stack frame (HasRetSlot), so the call
// itself pushes nothing and the result is loaded from the slot afterwards.
func (fc *fnCtx) emitCall(asm *wasmbin.Asm, e *ir.Exp) {
	for _, a := range e.Args {
		fc.emitExp(asm, a)
	}
	switch {
	case e.Indirect:
		fc.emitExp(asm, e.TableBase)
		if e.TableRel != 0 {
			asm.I32Const(int32(e.TableRel))
			asm.Binary(wasmbin.OpI32Add)
		}
		typeIdx := fc.g.b.AddType(valTypes(e.Abi.Params), resultTypes(e.Abi))
		asm.CallIndirect(typeIdx)
	case e.Abi.Module != "":
		idx := fc.g.abiFuncIdx[e.Abi.Module+"."+e.Abi.Name]
		asm.Call(idx)
	case e.CalleeIdx != nil:
		idx := uint32(fc.g.importedFns + *e.CalleeIdx)
		asm.Call(idx)
	default:
		idx := fc.g.abiFuncIdx[e.Abi.Name]
		asm.Call(idx)
	}
	if e.HasRetSlot {
		asm.LocalGet(uint32(fc.fn.StackIdx))
		if e.RetSlotOff != 0 {
			asm.I32Const(int32(e.RetSlotOff))
			asm.Binary(wasmbin.OpI32Add)
		}
		size := 4
		if e.Meta != nil {
			size = e.Meta.Size
		}
		asm.Load(loadOp(size), alignFor(size), 0)
	}
}
