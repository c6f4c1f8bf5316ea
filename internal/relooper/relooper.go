// Package relooper reconstructs a function's structured control flow for
// Codegen (spec.md §4.5, design note §9).
//
// The Translator never produces a flattened multi-basic-block CFG: IF, LOOP
// and SWITCH stay nested ir.Stmt trees, the same shape
// original_source/contract/native/gen_stmt.c builds its BinaryenIf/
// BinaryenLoop/BinaryenBreak nodes from directly off ast_stmt_t, with no
// CFG-flattening pass in between. The one place a real graph edge survives
// translation is RETURN, which must reach the function's epilogue uniformly
// whether it appears in tail position or nested inside an IF/LOOP/SWITCH.
// Reconstruct's whole job is stitching that single entry_bb -> exit_bb edge:
// wrap the function body in an outer labeled block so every RETURN can
// lower to a branch out of it, then run the exit block's statements
// (epilogue, stack/heap teardown, final return) once, in one place.
package relooper

import "github.com/aergoio/cvmc/internal/ir"

// ExitLabel is the branch target every lowered RETURN targets (an ir.SBr
// with this Label, or the branch codegen emits at the end of an
// ir.SReturn), regardless of how deeply it is nested.
const ExitLabel = "$exit"

// Reconstruct returns the function's final statement list: the entry
// block's statements wrapped in a block labeled ExitLabel, followed by the
// exit block's statements: the stack$offset restore when the function
// reserved a stack frame, then, for a constructor only, the native return
// of cont$addr (an ordinary function's RETURN has already stored every
// result before branching out).
func Reconstruct(fn *ir.Fn) []*ir.Stmt {
	entry := fn.Bbs[fn.EntryBB]
	exit := fn.Bbs[fn.ExitBB]

	wrapped := &ir.Stmt{Kind: ir.SBlk, Label: ExitLabel, Blk: entry.Stmts}
	out := []*ir.Stmt{wrapped}
	out = append(out, exit.Stmts...)
	return out
}
