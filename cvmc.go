// Package cvmc wires the Check Driver, Translator and Codegen into the
// single-entry-point pipeline spec.md §1/§6 describes: one checked Arena in,
// one Wasm module per top-level contract out. Grounded on the teacher
// repo's top-level package (wazero.go), which plays the same role of
// exposing a small functional-options surface over an otherwise internal/
// implementation.
package cvmc

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/check"
	"github.com/aergoio/cvmc/internal/codegen"
	"github.com/aergoio/cvmc/internal/config"
	"github.com/aergoio/cvmc/internal/errlist"
	"github.com/aergoio/cvmc/internal/interpret"
	"github.com/aergoio/cvmc/internal/ir"
	"github.com/aergoio/cvmc/internal/log"
	"github.com/aergoio/cvmc/internal/metrics"
	"github.com/aergoio/cvmc/internal/syslib"
	"github.com/aergoio/cvmc/internal/translate"
)

// Options configures one Compile call. A zero Options is valid: it logs
// nowhere, records no metrics, and writes output under the current
// directory, matching config.Flags{}'s zero value.
type Options struct {
	Flags   config.Flags
	OutDir  string // defaults to "."
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	// WatOut receives the textual disassembly when Flags.DumpWat is set;
	// nil means os.Stdout, matching the CLI's "print before write" behavior.
	WatOut io.Writer
}

// Artifact is one compiled contract's output (spec.md §6): the serialized
// module bytes, the path they were written to (empty under FLAG_TEST, since
// no file is written), and -- only under FLAG_TEST -- the in-process
// interpretation result.
type Artifact struct {
	Contract    string
	Wasm        []byte
	Path        string
	Interpreted *interpret.Result
}

// Compile is the pipeline entry point. root must be the top-level block a
// parser (out of scope here, see internal/syslib's doc comment) would have
// produced: zero or more CONT/ITF declarations and nothing else. Syslib's
// native declarations are injected into root before checking.
//
// Per spec.md's "one Wasm module per contract" output contract, each
// top-level contract is translated and code-generated independently, in
// declaration order, sharing only the single upfront check pass: a
// contract's persistent storage and function-table layout are private to
// its own module, never offset by another contract's footprint.
func Compile(a *ast.Arena, root ast.BlockHandle, opts Options) ([]Artifact, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}
	outDir := opts.OutDir
	if outDir == "" {
		outDir = "."
	}
	var watOut io.Writer
	if opts.Flags.DumpWat {
		watOut = opts.WatOut
		if watOut == nil {
			watOut = os.Stdout
		}
	}

	syslib.Load(a, root)

	errs := errlist.New()
	log.PhaseBoundary(logger, "check", "*")
	drv := check.NewDriver(a, errs, check.Flags{Debug: opts.Flags.Debug})
	if err := drv.Check(root); err != nil {
		log.Fatal(logger, "check", "*", err.Error())
		return nil, err
	}
	if errs.HasError() {
		return nil, reportErr(errs)
	}

	blk := a.Block(root)
	var itfs []ast.IDHandle
	var conts []ast.IDHandle
	for _, h := range blk.Ids {
		switch a.ID(h).Kind {
		case ast.ItfID:
			itfs = append(itfs, h)
		case ast.ContID:
			conts = append(conts, h)
		}
	}

	artifacts := make([]Artifact, 0, len(conts))
	for _, contH := range conts {
		cont := a.ID(contH)
		t0 := time.Now()

		view := a.NewBlock(ast.NoBlock)
		viewBlk := a.Block(view)
		for _, h := range itfs {
			viewBlk.AddID(h)
		}
		viewBlk.AddID(contH)

		log.PhaseBoundary(logger, "translate", cont.Name)
		irv := translate.Translate(a, view, errs)
		if errs.HasError() {
			return artifacts, reportErr(errs)
		}

		log.PhaseBoundary(logger, "codegen", cont.Name)
		wasmBytes, err := codegen.Module(irv, codegen.Flags{
			Debug:     opts.Flags.Debug,
			OptLvl:    opts.Flags.OptLvl,
			StackSize: opts.Flags.StackSize,
			MaxSize:   opts.Flags.MaxSize,
			Wat:       watOut,
		}, errs)
		elapsed := time.Since(t0)
		if opts.Metrics != nil {
			size := len(wasmBytes)
			opts.Metrics.ObserveCompile(elapsed, size)
		}
		if err != nil {
			log.Fatal(logger, "codegen", cont.Name, err.Error())
			if opts.Metrics != nil {
				opts.Metrics.ObserveError(errorKind(err))
			}
			return artifacts, err
		}

		art := Artifact{Contract: cont.Name, Wasm: wasmBytes}
		if opts.Flags.Test {
			res, ierr := interpret.Run(context.Background(), wasmBytes, constructorName(irv), codegen.MemPages(irv, opts.Flags.StackSize))
			if ierr != nil {
				return artifacts, ierr
			}
			art.Interpreted = res
		} else {
			path := filepath.Join(outDir, cont.Name+".wasm")
			if werr := os.WriteFile(path, wasmBytes, 0o644); werr != nil {
				return artifacts, fmt.Errorf("cvmc: writing %s: %w", path, werr)
			}
			art.Path = path
		}

		artifacts = append(artifacts, art)
	}

	return artifacts, nil
}

// constructorName finds the one function ir.Ir marks IsCtor; every
// contract has exactly one by construction (translate.translateContract
// synthesizes an implicit ctor when a contract declares none, and always
// forces the constructor to index 0, spec.md §8 scenario 1).
func constructorName(irv *ir.Ir) string {
	for _, fn := range irv.Fns {
		if fn.IsCtor {
			return fn.Abi.Name
		}
	}
	return ""
}

func reportErr(errs *errlist.Accumulator) error {
	all := errs.Errors()
	if len(all) == 0 {
		return nil
	}
	return fmt.Errorf("cvmc: %s", all[len(all)-1].String())
}

func errorKind(err error) string {
	if err == nil {
		return ""
	}
	return "codegen"
}
