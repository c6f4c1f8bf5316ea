// Package log builds the *zap.Logger that cvmc.Compile takes as an explicit
// option (spec.md §9 design note: "global mutable state... model them as
// explicit context objects threaded through the pipeline rather than as
// singletons") and logs from at each phase boundary; the check, translate
// and codegen packages themselves take no logger. Only phase-boundary and
// fatal compile-error events are logged here; per-diagnostic detail stays in internal/errlist
// (SPEC_FULL.md §11).
package log

import "go.uber.org/zap"

// New builds a development-friendly console logger when debug is true
// (human-readable, debug level and up) and a production JSON logger
// otherwise (info level and up), the same split cmd/cvmc's --debug flag
// drives for every other phase-boundary knob.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Nop returns a logger that discards everything, used by callers (notably
// package-level tests) that exercise the pipeline without caring about its
// diagnostic output.
func Nop() *zap.Logger { return zap.NewNop() }

// PhaseBoundary logs entry into one of the three pipeline phases (check,
// translate, codegen) at Debug level: an info-level log per phase would be
// noisy for every contract in a multi-contract compile, but is useful to
// have available under --debug.
func PhaseBoundary(l *zap.Logger, phase, contract string) {
	l.Debug("phase boundary", zap.String("phase", phase), zap.String("contract", contract))
}

// Fatal logs the error that ended compilation in a phase -- the
// FATAL-severity diagnostic that aborted check, or any error codegen.Module
// returns (a FATAL-severity STACK_OVERFLOW or BINARY_OVERFLOW, or an
// ordinary error such as a failed validation) -- before the caller converts
// it into a returned error; kind carries that phase's name ("check" or
// "codegen"). Accumulated non-fatal check and translate errors are not
// logged (spec.md §7).
func Fatal(l *zap.Logger, kind, contract, message string) {
	l.Error("fatal compile error", zap.String("kind", kind), zap.String("contract", contract), zap.String("message", message))
}
