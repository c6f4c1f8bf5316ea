package codegen

import (
	"github.com/aergoio/cvmc/internal/ir"
	"github.com/aergoio/cvmc/internal/wasmbin"
)

// fnCtx carries one function body's emission state: the enclosing Gen, the
// ir.Fn being lowered, and a stack mirroring every Wasm block/loop/if
// construct currently open, used to turn CONTINUE/BREAK/early-RETURN
// labels into the numeric branch depths the binary format requires
// (original_source/contract/native/gen_stmt.c's label handling, reworked
// here around explicit depth bookkeeping instead of Binaryen's named
// break targets).
type fnCtx struct {
	g      *Gen
	fn     *ir.Fn
	labels []labelEntry
}

type labelEntry struct {
	label  string
	isLoop bool // true only for the construct CONTINUE should target (the loop itself)
}

func (fc *fnCtx) push(label string, isLoop bool) { fc.labels = append(fc.labels, labelEntry{label, isLoop}) }
func (fc *fnCtx) pop()                           { fc.labels = fc.labels[:len(fc.labels)-1] }

// depthTo returns the branch depth reaching the named construct. A loop
// pushes two same-named entries (the exit block, then the loop header), so
// the wantLoop flag selects which of the pair to land on: a CONTINUE takes
// the loop header, a BREAK or lowered RETURN the block around it. Every
// open if also occupies an entry (anonymous, never matched by name) because
// Wasm branch depths count if labels too.
func (fc *fnCtx) depthTo(label string, wantLoop bool) uint32 {
	for i := len(fc.labels) - 1; i >= 0; i-- {
		e := fc.labels[i]
		if e.label != label || e.isLoop != wantLoop {
			continue
		}
		return uint32(len(fc.labels) - 1 - i)
	}
	return 0
}

func (fc *fnCtx) emitStmts(asm *wasmbin.Asm, stmts []*ir.Stmt) {
	for _, s := range stmts {
		fc.emitStmt(asm, s)
	}
}

func (fc *fnCtx) emitStmt(asm *wasmbin.Asm, s *ir.Stmt) {
	if fc.g.flags.Debug && s.Pos.Line != 0 {
		// The instruction handle is the statement's byte offset into the
		// function body, recorded before any of its expressions are emitted.
		fc.fn.Dis = append(fc.fn.Dis, ir.Di{InstrHandle: len(asm.Bytes()), Line: s.Pos.Line, Col: s.Pos.Col})
	}
	switch s.Kind {
	case ir.SNop:
	case ir.SExp:
		fc.emitExp(asm, s.Exp)
		if s.Exp.Meta != nil && !isVoidMeta(s.Exp) {
			asm.Drop()
		}
	case ir.SAssign:
		fc.emitAssign(asm, s)
	case ir.SIf:
		fc.emitIf(asm, s)
	case ir.SLoop:
		fc.emitLoop(asm, s)
	case ir.SSwitch:
		fc.emitSwitch(asm, s)
	case ir.SReturn:
		fc.emitReturn(asm, s)
	case ir.SBr:
		fc.emitBr(asm, s)
	case ir.SBlk:
		fc.push(s.Label, false)
		asm.Block(func(inner *wasmbin.Asm) { fc.emitStmts(inner, s.Blk) })
		fc.pop()
	default:
		panic("codegen: unhandled ir statement kind")
	}
}

func isVoidMeta(e *ir.Exp) bool {
	return e.Kind == ir.ECall && e.Abi != nil && !e.Abi.HasResult && !e.HasRetSlot
}

func (fc *fnCtx) emitAssign(asm *wasmbin.Asm, s *ir.Stmt) {
	switch {
	case s.AssignGlobal:
		fc.emitExp(asm, s.AssignVal)
		asm.GlobalSet(uint32(s.AssignGlobalIdx))
	case s.AssignIsLocal:
		fc.emitExp(asm, s.AssignVal)
		asm.LocalSet(uint32(s.AssignIdx))
	default:
		fc.emitExp(asm, s.AssignAddr)
		fc.emitExp(asm, s.AssignVal)
		asm.Store(storeOp(s.AssignSize), alignFor(s.AssignSize), 0)
	}
}

func storeOp(size int) byte {
	switch size {
	case 1:
		return wasmbin.OpI32Store8
	case 2:
		return wasmbin.OpI32Store16
	case 8:
		return wasmbin.OpI64Store
	default:
		return wasmbin.OpI32Store
	}
}

func loadOp(size int) byte {
	switch size {
	case 1:
		return wasmbin.OpI32Load8U
	case 2:
		return wasmbin.OpI32Load16U
	case 8:
		return wasmbin.OpI64Load
	default:
		return wasmbin.OpI32Load
	}
}

func alignFor(size int) uint32 {
	switch size {
	case 1:
		return 0
	case 2:
		return 1
	case 8:
		return 3
	default:
		return 2
	}
}

func (fc *fnCtx) emitIf(asm *wasmbin.Asm, s *ir.Stmt) {
	fc.emitExp(asm, s.IfCond)
	fc.push("", false)
	asm.If(
		func(then *wasmbin.Asm) { fc.emitStmts(then, s.IfBody) },
		elseFn(fc, s.ElseBody),
	)
	fc.pop()
}

func elseFn(fc *fnCtx, body []*ir.Stmt) func(*wasmbin.Asm) {
	if len(body) == 0 {
		return nil
	}
	return func(e *wasmbin.Asm) { fc.emitStmts(e, body) }
}

// emitLoop lowers a FOR loop as block{ loop{ br_if-out-on-false-cond; body;
// post; br-continue } }: the outer block is the BREAK target, the inner
// loop is the CONTINUE target (spec.md §4.5, §9 design note on for-loop
// lowering).
func (fc *fnCtx) emitLoop(asm *wasmbin.Asm, s *ir.Stmt) {
	if s.LoopInit != nil {
		fc.emitStmt(asm, s.LoopInit)
	}
	fc.push(s.LoopLabel, false)
	asm.Block(func(outer *wasmbin.Asm) {
		fc.push(s.LoopLabel, true)
		outer.Loop(func(inner *wasmbin.Asm) {
			if s.LoopCond != nil {
				fc.emitExp(inner, s.LoopCond)
				inner.Unary(wasmbin.OpI32Eqz)
				inner.BrIf(fc.depthTo(s.LoopLabel, false))
			}
			fc.emitStmts(inner, s.LoopBody)
			if s.LoopPost != nil {
				fc.emitStmt(inner, s.LoopPost)
			}
			inner.Br(0)
		})
		fc.pop()
	})
	fc.pop()
}

// emitSwitch lowers a SWITCH as a right-folded if/else-if chain wrapped in
// a labeled block so BREAK can exit it (spec.md §4.5; no case falls through
// to the next, matching original_source/contract/native/gen_stmt.c's
// stmt_gen_switch which builds one BinaryenIf per case rather than a
// br_table).
func (fc *fnCtx) emitSwitch(asm *wasmbin.Asm, s *ir.Stmt) {
	fc.push(s.SwitchLabel, false)
	asm.Block(func(inner *wasmbin.Asm) { fc.emitSwitchCases(inner, s, 0) })
	fc.pop()
}

func (fc *fnCtx) emitSwitchCases(asm *wasmbin.Asm, s *ir.Stmt, i int) {
	if i >= len(s.SwitchCases) {
		return
	}
	c := s.SwitchCases[i]
	if c.CaseVal == nil {
		fc.emitStmts(asm, c.CaseBody)
		return
	}
	fc.emitCaseCond(asm, s, c)
	fc.push("", false)
	asm.If(
		func(then *wasmbin.Asm) { fc.emitStmts(then, c.CaseBody) },
		func(els *wasmbin.Asm) { fc.emitSwitchCases(els, s, i+1) },
	)
	fc.pop()
}

func (fc *fnCtx) emitCaseCond(asm *wasmbin.Asm, s *ir.Stmt, c *ir.Stmt) {
	if s.SwitchScrut == nil {
		fc.emitExp(asm, c.CaseVal)
		return
	}
	fc.emitExp(asm, s.SwitchScrut)
	fc.emitExp(asm, c.CaseVal)
	asm.Binary(wasmbin.OpI32Eq)
}

// emitReturn stores every result into its return-slot pointer, then
// branches to the relooper-reconstructed exit block. The one RETURN with no
// slot pointers at all is the constructor's epilogue (appended to exit_bb
// by translate/fn.go): it returns cont$addr as a native Wasm value.
func (fc *fnCtx) emitReturn(asm *wasmbin.Asm, s *ir.Stmt) {
	if len(s.RetVals) == 1 && s.RetAddrIdx == nil {
		fc.emitExp(asm, s.RetVals[0])
		asm.Return()
		return
	}
	for i, val := range s.RetVals {
		if i >= len(s.RetAddrIdx) {
			break
		}
		asm.LocalGet(uint32(s.RetAddrIdx[i]))
		fc.emitExp(asm, val)
		asm.Store(storeOp(retSlotSize(val)), alignFor(retSlotSize(val)), 0)
	}
	asm.Br(fc.depthTo("$exit", false))
}

func retSlotSize(e *ir.Exp) int {
	if e.Meta != nil {
		return e.Meta.Size
	}
	return 4
}

func (fc *fnCtx) emitBr(asm *wasmbin.Asm, s *ir.Stmt) {
	depth := fc.depthTo(s.Label, s.IsContinue)
	if s.Cond != nil {
		fc.emitExp(asm, s.Cond)
		asm.BrIf(depth)
		return
	}
	asm.Br(depth)
}
