package translate

import (
	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/ir"
	"github.com/aergoio/cvmc/internal/meta"
)

// translateBlock lowers every declared local in blk (registering a Wasm
// local for scalars, a stack-relative slot for aggregates) followed by
// every statement, in source order.
func (d *Driver) translateBlock(blk *ast.Block, retSlots []int) []*ir.Stmt {
	if blk == nil {
		return nil
	}
	var out []*ir.Stmt
	for _, h := range blk.Ids {
		id := d.arena.ID(h)
		if id.Kind != ast.VarID || id.Var == nil || id.Var.Kind != ast.Local {
			continue
		}
		out = append(out, d.declareLocal(id)...)
	}
	for _, s := range blk.Stmts {
		if st := d.translateStmt(s, retSlots); st != nil {
			out = append(out, st)
		}
	}
	return out
}

// declareLocal binds a function-body VAR id to storage: a plain Wasm local
// for scalars, or a stack$addr-relative slot (advancing fn.Usage) for
// anything that does not fit a single value slot.
func (d *Driver) declareLocal(id *ast.Id) []*ir.Stmt {
	if isScalar(id.Meta) {
		idx := d.fn.AddLocal(&ir.Local{Name: id.Name, Type: valTypeOf(id.Meta), ID: id.Self})
		d.localIdx[id.Self] = idx
		if id.Var.Default == nil {
			return nil
		}
		return []*ir.Stmt{{
			Kind:          ir.SAssign,
			AssignIsLocal: true,
			AssignIdx:     idx,
			AssignVal:     d.translateExp(id.Var.Default),
		}}
	}

	off := meta.ALIGN64(d.fn.Usage)
	id.Meta.Addr = off
	d.fn.Usage = off + meta.Iosz(id.Meta)

	if id.Var.Default == nil {
		return nil
	}
	return []*ir.Stmt{{
		Kind: ir.SAssign,
		AssignAddr: &ir.Exp{
			Kind: ir.EAddr,
			Base: &ir.Exp{Kind: ir.ELocal, Idx: d.fn.StackIdx},
			Off:  off,
		},
		AssignSize: meta.Iosz(id.Meta),
		AssignVal:  d.translateExp(id.Var.Default),
	}}
}

func isScalar(m *meta.Meta) bool {
	return meta.IsPrimitive(m) || meta.IsObject(m) || meta.IsInterface(m)
}

func (d *Driver) translateStmt(s *ast.Stmt, retSlots []int) *ir.Stmt {
	st := d.lowerStmt(s, retSlots)
	if st != nil {
		st.Pos = s.Pos
	}
	return st
}

func (d *Driver) lowerStmt(s *ast.Stmt, retSlots []int) *ir.Stmt {
	switch s.Kind {
	case ast.StmtNull:
		return nil
	case ast.StmtExp:
		return &ir.Stmt{Kind: ir.SExp, Exp: d.translateExp(s.Exp)}
	case ast.StmtAssign:
		return d.translateAssign(s)
	case ast.StmtIf:
		return d.translateIf(s, retSlots)
	case ast.StmtLoop:
		return d.translateLoop(s, retSlots)
	case ast.StmtSwitch:
		return d.translateSwitch(s, retSlots)
	case ast.StmtReturn:
		return d.translateReturn(s, retSlots)
	case ast.StmtContinue:
		return &ir.Stmt{Kind: ir.SBr, Label: s.JumpLabel, Cond: d.maybeExp(s.JumpCond), IsContinue: true}
	case ast.StmtBreak:
		return &ir.Stmt{Kind: ir.SBr, Label: s.JumpLabel, Cond: d.maybeExp(s.JumpCond)}
	case ast.StmtBlk:
		return &ir.Stmt{Kind: ir.SBlk, Blk: d.translateBlock(d.arena.Block(s.Blk), retSlots)}
	default:
		panic("translate: unhandled statement kind")
	}
}

func (d *Driver) maybeExp(e *ast.Exp) *ir.Exp {
	if e == nil {
		return nil
	}
	return d.translateExp(e)
}

func (d *Driver) translateAssign(s *ast.Stmt) *ir.Stmt {
	val := d.translateExp(s.AssignR)
	return d.assignTo(s.AssignL, val)
}

// assignTo lowers a store to an lvalue expression: a local.set for locals,
// or a sized heap/stack store for globals, fields and array/map elements.
func (d *Driver) assignTo(lhs *ast.Exp, val *ir.Exp) *ir.Stmt {
	if lhs.Kind == ast.ExpID {
		id := d.arena.ID(lhs.ID)
		if id.Var != nil && id.Var.Kind != ast.Global {
			if idx, ok := d.localIdx[lhs.ID]; ok {
				return &ir.Stmt{Kind: ir.SAssign, AssignIsLocal: true, AssignIdx: idx, AssignVal: val}
			}
		}
	}
	addr := d.lvalueAddr(lhs)
	return &ir.Stmt{Kind: ir.SAssign, AssignAddr: addr, AssignSize: meta.Iosz(lhs.Meta), AssignVal: val}
}

func (d *Driver) translateIf(s *ast.Stmt, retSlots []int) *ir.Stmt {
	out := &ir.Stmt{
		Kind:   ir.SIf,
		IfCond: d.translateExp(s.IfCond),
		IfBody: d.translateBlock(d.arena.Block(s.IfBlk), retSlots),
	}
	if len(s.ElifStmts) > 0 {
		out.ElseBody = []*ir.Stmt{d.translateIf(s.ElifStmts[0], retSlots)}
	} else if eb := d.arena.Block(s.ElseBlk); eb != nil {
		out.ElseBody = d.translateBlock(eb, retSlots)
	}
	return out
}

func (d *Driver) translateLoop(s *ast.Stmt, retSlots []int) *ir.Stmt {
	body := d.arena.Block(s.LoopBody)
	label := ""
	if body != nil {
		label = body.Name
	}
	var init, post *ir.Stmt
	if s.LoopInit != nil {
		init = d.translateStmt(s.LoopInit, retSlots)
	}
	if s.LoopPost != nil {
		post = d.translateStmt(s.LoopPost, retSlots)
	}
	return &ir.Stmt{
		Kind:      ir.SLoop,
		LoopLabel: label,
		LoopInit:  init,
		LoopCond:  d.maybeExp(s.LoopCond),
		LoopPost:  post,
		LoopBody:  d.translateBlock(body, retSlots),
	}
}

func (d *Driver) translateSwitch(s *ast.Stmt, retSlots []int) *ir.Stmt {
	blk := d.arena.Block(s.SwitchBlk)
	out := &ir.Stmt{
		Kind:        ir.SSwitch,
		SwitchLabel: blkName(blk),
		SwitchScrut: d.maybeExp(s.SwitchScrutinee),
	}
	if blk == nil {
		return out
	}
	for _, cs := range blk.Stmts {
		if cs.Kind != ast.StmtCase {
			continue
		}
		c := &ir.Stmt{Kind: ir.SCase, CaseVal: d.maybeExp(cs.CaseVal)}
		for _, st := range cs.CaseStmts {
			if t := d.translateStmt(st, retSlots); t != nil {
				c.CaseBody = append(c.CaseBody, t)
			}
		}
		out.SwitchCases = append(out.SwitchCases, c)
	}
	return out
}

func blkName(b *ast.Block) string {
	if b == nil {
		return ""
	}
	return b.Name
}

// translateReturn lowers RETURN into stores to the return-slot pointer
// parameters followed by a branch to the function's exit block (spec.md
// §4.4; constructors are handled separately since they use a native Wasm
// return of cont$addr, appended directly by translateFn).
func (d *Driver) translateReturn(s *ast.Stmt, retSlots []int) *ir.Stmt {
	if s.RetArg == nil {
		return &ir.Stmt{Kind: ir.SBr, Label: "$exit"}
	}
	var vals []*ir.Exp
	if s.RetArg.Kind == ast.ExpTuple {
		for _, e := range s.RetArg.TupElems {
			vals = append(vals, d.translateExp(e))
		}
	} else {
		vals = []*ir.Exp{d.translateExp(s.RetArg)}
	}
	return &ir.Stmt{Kind: ir.SReturn, RetVals: vals, RetAddrIdx: retSlots}
}
