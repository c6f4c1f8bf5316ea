package check

import (
	"strconv"

	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/errlist"
	"github.com/aergoio/cvmc/internal/meta"
)

// jumpCtx is one entry of the Driver's enclosing-construct stack, used to
// validate and label CONTINUE/BREAK (spec.md §4.3, §4.5).
type jumpCtx struct {
	label  string
	isLoop bool // true for LOOP, false for SWITCH
}

func (d *Driver) checkStmt(s *ast.Stmt) {
	switch s.Kind {
	case ast.StmtNull:
	case ast.StmtExp:
		d.checkExp(s.Exp)
	case ast.StmtAssign:
		d.checkAssign(s)
	case ast.StmtIf:
		d.checkIf(s)
	case ast.StmtLoop:
		d.checkLoop(s)
	case ast.StmtSwitch:
		d.checkSwitch(s)
	case ast.StmtReturn:
		d.checkReturn(s)
	case ast.StmtContinue, ast.StmtBreak:
		d.checkJump(s)
	case ast.StmtGoto:
		d.errs.Push(errlist.NotSupported, s.Pos, "goto is not supported")
	case ast.StmtDdl:
		d.errs.Push(errlist.NotSupported, s.Pos, "data-definition statements are not supported")
	case ast.StmtBlk:
		if b := d.arena.Block(s.Blk); b != nil {
			d.checkBlock(b)
		}
	default:
		panic("check: unhandled statement kind")
	}
}

func (d *Driver) checkAssign(s *ast.Stmt) {
	d.checkExp(s.AssignL)
	d.checkExp(s.AssignR)

	if !isLvalue(s.AssignL) {
		d.errs.Push(errlist.NotAllowed, s.AssignL.Pos, "left-hand side of assignment is not assignable")
		return
	}

	if s.AssignL.Kind == ast.ExpTuple {
		if s.AssignR.Kind != ast.ExpTuple {
			d.errs.Push(errlist.NotSupported, s.AssignR.Pos, "tuple assignment requires a tuple right-hand side")
			return
		}
		if len(s.AssignL.TupElems) != len(s.AssignR.TupElems) {
			d.errs.Push(errlist.NotSupported, s.AssignR.Pos, "tuple assignment arity mismatch: %d vs %d",
				len(s.AssignL.TupElems), len(s.AssignR.TupElems))
			return
		}
		// Tuple-to-tuple assignment is flagged unsupported even with equal
		// arity (spec.md §9 open question; SPEC_FULL.md §14.1): surfaced
		// here at check time instead of silently reaching codegen.
		d.errs.Push(errlist.NotSupported, s.Pos, "tuple-to-tuple assignment is not supported")
		return
	}

	if !assignable(s.AssignL.Meta, s.AssignR.Meta) {
		d.errs.Push(errlist.TypeMismatch, s.AssignR.Pos, "cannot assign %s to %s",
			meta.ToStr(s.AssignR.Meta), meta.ToStr(s.AssignL.Meta))
	}
}

func isLvalue(e *ast.Exp) bool {
	switch e.Kind {
	case ast.ExpID, ast.ExpLocal, ast.ExpGlobal, ast.ExpField, ast.ExpIndex, ast.ExpTuple:
		return true
	default:
		return false
	}
}

func (d *Driver) checkIf(s *ast.Stmt) {
	d.checkExp(s.IfCond)
	if !meta.IsBool(s.IfCond.Meta) {
		d.errs.Push(errlist.TypeMismatch, s.IfCond.Pos, "if condition must be bool, got %s", meta.ToStr(s.IfCond.Meta))
	}
	if b := d.arena.Block(s.IfBlk); b != nil {
		d.checkBlock(b)
	}
	for _, elif := range s.ElifStmts {
		d.checkIf(elif)
	}
	if b := d.arena.Block(s.ElseBlk); b != nil {
		d.checkBlock(b)
	}
}

func (d *Driver) checkLoop(s *ast.Stmt) {
	if s.LoopKind != ast.LoopFor {
		d.errs.Push(errlist.NotSupported, s.Pos, "only for-loops are supported")
		return
	}
	if s.LoopInit != nil {
		d.checkStmt(s.LoopInit)
	}
	if s.LoopCond != nil {
		d.checkExp(s.LoopCond)
		if !meta.IsBool(s.LoopCond.Meta) {
			d.errs.Push(errlist.TypeMismatch, s.LoopCond.Pos, "loop condition must be bool")
		}
	}
	if s.LoopPost != nil {
		d.checkStmt(s.LoopPost)
	}
	b := d.arena.Block(s.LoopBody)
	if b == nil {
		return
	}
	if b.Name == "" {
		b.Name = labelFor("normal_blk", b.Num)
	}
	d.jumpStack = append(d.jumpStack, jumpCtx{label: b.Name, isLoop: true})
	d.checkBlock(b)
	d.jumpStack = d.jumpStack[:len(d.jumpStack)-1]
}

func labelFor(prefix string, num int) string {
	return prefix + "_" + strconv.Itoa(num)
}

func (d *Driver) checkSwitch(s *ast.Stmt) {
	var scrutMeta *meta.Meta
	if s.SwitchScrutinee != nil {
		d.checkExp(s.SwitchScrutinee)
		scrutMeta = s.SwitchScrutinee.Meta
	}

	blk := d.arena.Block(s.SwitchBlk)
	if blk == nil {
		return
	}
	if blk.Name == "" {
		blk.Name = labelFor("switch_blk", blk.Num)
	}
	d.jumpStack = append(d.jumpStack, jumpCtx{label: blk.Name, isLoop: false})
	defer func() { d.jumpStack = d.jumpStack[:len(d.jumpStack)-1] }()

	seen := map[any]bool{}
	dfltSeen := false
	for _, cs := range blk.Stmts {
		if cs.Kind != ast.StmtCase {
			continue
		}
		if cs.CaseVal == nil {
			if dfltSeen {
				d.errs.Push(errlist.RedefinedID, cs.Pos, "switch has more than one default case")
			}
			dfltSeen = true
		} else {
			d.checkExp(cs.CaseVal)
			if scrutMeta != nil && !meta.IsComparable(cs.CaseVal.Meta) {
				d.errs.Push(errlist.NotComparableType, cs.CaseVal.Pos, "case value type %s is not comparable", meta.ToStr(cs.CaseVal.Meta))
			}
			if cs.CaseVal.Kind == ast.ExpLit {
				key := litKey(cs.CaseVal)
				if seen[key] {
					d.errs.Push(errlist.RedefinedID, cs.CaseVal.Pos, "duplicate case value")
				}
				seen[key] = true
			}
		}
		for _, st := range cs.CaseStmts {
			d.checkStmt(st)
		}
	}
}

// litKey builds a comparable key for a case literal that distinguishes its
// LitKind, so a string case "bar" and an int case 0 (LitInt's zero value)
// never collide in checkSwitch's duplicate-value map.
func litKey(e *ast.Exp) any {
	switch e.LitKind {
	case ast.LitBool:
		return e.LitBool
	case ast.LitString:
		return e.LitStr
	case ast.LitFloat:
		return e.LitFlt
	default:
		return e.LitInt
	}
}

func (d *Driver) checkReturn(s *ast.Stmt) {
	fn := d.arena.ID(d.fnID)
	if fn == nil || fn.Fn == nil {
		d.errs.Push(errlist.NotAllowed, s.Pos, "return outside of a function")
		return
	}
	results := fn.Fn.Results

	if s.RetArg == nil {
		if len(results) != 0 {
			d.errs.Push(errlist.ArityMismatch, s.Pos, "function %q expects %d return value(s)", fn.Name, len(results))
		}
		return
	}
	d.checkExp(s.RetArg)

	var vals []*meta.Meta
	if s.RetArg.Kind == ast.ExpTuple {
		for _, e := range s.RetArg.TupElems {
			vals = append(vals, e.Meta)
		}
	} else {
		vals = []*meta.Meta{s.RetArg.Meta}
	}

	if len(vals) != len(results) {
		d.errs.Push(errlist.ArityMismatch, s.Pos, "function %q returns %d value(s), expected %d", fn.Name, len(vals), len(results))
		return
	}
	for i, v := range vals {
		if !assignable(results[i], v) {
			d.errs.Push(errlist.TypeMismatch, s.Pos, "return value %d: cannot convert %s to %s", i, meta.ToStr(v), meta.ToStr(results[i]))
		}
	}
}

func (d *Driver) checkJump(s *ast.Stmt) {
	if s.JumpCond != nil {
		d.checkExp(s.JumpCond)
		if !meta.IsBool(s.JumpCond.Meta) {
			d.errs.Push(errlist.TypeMismatch, s.JumpCond.Pos, "conditional break/continue guard must be bool")
		}
	}

	// CONTINUE must target the nearest enclosing LOOP; BREAK may target the
	// nearest enclosing LOOP or SWITCH (spec.md §4.3, §4.5).
	for i := len(d.jumpStack) - 1; i >= 0; i-- {
		ctx := d.jumpStack[i]
		if s.Kind == ast.StmtContinue && !ctx.isLoop {
			continue
		}
		s.JumpLabel = ctx.label
		return
	}
	d.errs.Push(errlist.NotAllowed, s.Pos, "break/continue outside of a loop or switch")
}
