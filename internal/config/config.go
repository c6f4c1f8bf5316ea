// Package config loads compile flags the way the teacher stack's CLI does:
// cobra flags bound through viper, so the same Flags can come from
// CVMC_-prefixed environment variables or the command line (spec.md §6's
// flag_t). No config file is read.
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Flags mirrors spec.md §6's flag_t in full; individual phases only read
// the subset relevant to them (check.Flags, codegen.Flags are narrower
// views constructed from this one).
type Flags struct {
	Test     bool // FLAG_TEST: instantiate the produced module in-process after compiling
	Debug    bool // FLAG_DEBUG: keep debug-info records, skip the final optimize pass
	DumpWat  bool // FLAG_DUMP_WAT: also print a textual disassembly of the result
	OptLvl   int
	StackSize int
	MaxSize   int
}

// Bind registers every flag on fs and returns a *viper.Viper pre-configured
// to read CVMC_-prefixed environment variables as a fallback, the same
// override precedence (flag > env > default) the teacher's cmd/wazero
// entry point uses for its runtime config.
func Bind(fs *pflag.FlagSet) *viper.Viper {
	fs.Bool("test", false, "instantiate the compiled module in-process and report its post-state")
	fs.Bool("debug", false, "keep debug-info records and skip optimization")
	fs.Bool("dump-wat", false, "print a textual disassembly alongside the binary")
	fs.Int("opt-level", 1, "optimization level (0-3)")
	fs.Int("stack-size", 64*1024, "reserved stack size in bytes")
	fs.Int("max-size", 0, "maximum binary size in bytes, 0 means the 1 MiB host limit")

	v := viper.New()
	v.SetEnvPrefix("cvmc")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(fs)
	return v
}

// Load reads every bound flag out of v into a Flags value.
func Load(v *viper.Viper) Flags {
	return Flags{
		Test:      v.GetBool("test"),
		Debug:     v.GetBool("debug"),
		DumpWat:   v.GetBool("dump-wat"),
		OptLvl:    v.GetInt("opt-level"),
		StackSize: v.GetInt("stack-size"),
		MaxSize:   v.GetInt("max-size"),
	}
}
