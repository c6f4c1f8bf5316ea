package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("cvmc", pflag.ContinueOnError)
	v := Bind(fs)
	require.NoError(t, fs.Parse(nil))

	flags := Load(v)
	require.False(t, flags.Test)
	require.False(t, flags.Debug)
	require.Equal(t, 1, flags.OptLvl)
	require.Equal(t, 64*1024, flags.StackSize)
	require.Equal(t, 0, flags.MaxSize)
}

func TestLoadFromFlags(t *testing.T) {
	fs := pflag.NewFlagSet("cvmc", pflag.ContinueOnError)
	v := Bind(fs)
	require.NoError(t, fs.Parse([]string{"--test", "--max-size=4096"}))

	flags := Load(v)
	require.True(t, flags.Test)
	require.Equal(t, 4096, flags.MaxSize)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CVMC_DEBUG", "true")

	fs := pflag.NewFlagSet("cvmc", pflag.ContinueOnError)
	v := Bind(fs)
	require.NoError(t, fs.Parse(nil))

	flags := Load(v)
	require.True(t, flags.Debug)
}
