// Command cvmc is the compiler's command-line front end: it binds
// spec.md §6's flag_t to cobra/viper (internal/config), builds one of
// internal/fixture's sample contracts in place of the out-of-scope
// lexer/parser, and runs it through cvmc.Compile.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aergoio/cvmc"
	"github.com/aergoio/cvmc/internal/ast"
	"github.com/aergoio/cvmc/internal/config"
	"github.com/aergoio/cvmc/internal/fixture"
	"github.com/aergoio/cvmc/internal/log"
	"github.com/aergoio/cvmc/internal/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var outDir string
	var fixtureName string
	var metricsAddr string

	root := &cobra.Command{
		Use:   "cvmc",
		Short: "Compile contract sources into Wasm modules",
	}

	fs := root.Flags()
	v := config.Bind(fs)
	fs.StringVar(&outDir, "out-dir", ".", "directory to write compiled .wasm files into")
	fs.StringVar(&fixtureName, "fixture", "counter", "sample contract to compile: empty|counter")
	fs.StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address")

	root.RunE = func(c *cobra.Command, args []string) error {
		flags := config.Load(v)

		logger, err := log.New(flags.Debug)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		m := metrics.New()
		if metricsAddr != "" {
			go serveMetrics(logger, metricsAddr, m)
		}

		a := ast.NewArena()
		rootBlk, err := buildFixture(a, fixtureName)
		if err != nil {
			return err
		}

		artifacts, err := cvmc.Compile(a, rootBlk, cvmc.Options{
			Flags:   flags,
			OutDir:  outDir,
			Logger:  logger,
			Metrics: m,
		})
		if err != nil {
			return err
		}

		for _, art := range artifacts {
			if art.Path != "" {
				fmt.Printf("%s: wrote %s (%s)\n", art.Contract, art.Path, units.HumanSize(float64(len(art.Wasm))))
			} else {
				fmt.Printf("%s: cont$addr=%d, memory=%s\n", art.Contract, art.Interpreted.ContAddr, units.HumanSize(float64(len(art.Interpreted.Memory))))
			}
		}
		return nil
	}

	return root
}

func buildFixture(a *ast.Arena, name string) (ast.BlockHandle, error) {
	switch name {
	case "empty":
		return fixture.Empty(a), nil
	case "counter":
		return fixture.Counter(a), nil
	default:
		return ast.NoBlock, fmt.Errorf("unknown fixture %q", name)
	}
}

func serveMetrics(logger *zap.Logger, addr string, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	logger.Info("serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server exited", zap.Error(err))
	}
}
