package main

import (
	"flag"
	"io"
	"testing"

	"github.com/brettbedarf/mailfs/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFlags(t *testing.T, args ...string) (*flag.FlagSet, *options) {
	t.Helper()
	fs := flag.NewFlagSet("mailfs", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var opts options
	defineFlags(fs, &opts)
	require.NoError(t, fs.Parse(args))
	return fs, &opts
}

func TestFlagOverrideKeepsFileValues(t *testing.T) {
	t.Parallel()
	cfg := config.NewDefaultConfig()
	verbose, backend := config.DebugVerbose, config.MemoryBackend
	cfg.Merge(&config.ConfigOverride{LogLvl: &verbose, Backend: &backend})

	fs, opts := parseFlags(t, "ls", "/")
	override := flagOverride(fs, opts)
	assert.Nil(t, override.LogLvl)
	assert.Nil(t, override.Backend)
	assert.Nil(t, override.Root)
	assert.Nil(t, override.CreateRoot)

	cfg.Merge(override)
	assert.Equal(t, config.VerbosityToLogLevel(config.DebugVerbose), cfg.LogLvl)
	assert.Equal(t, config.MemoryBackend, cfg.Backend)
}

func TestFlagOverrideAppliesSetFlags(t *testing.T) {
	t.Parallel()
	fs, opts := parseFlags(t, "-v", "5", "-root", "/srv/mail", "-create-root", "-backend", "posix", "ls", "/")

	override := flagOverride(fs, opts)

	require.NotNil(t, override.LogLvl)
	assert.Equal(t, config.TraceVerbose, *override.LogLvl)
	require.NotNil(t, override.Root)
	assert.Equal(t, "/srv/mail", *override.Root)
	require.NotNil(t, override.CreateRoot)
	assert.True(t, *override.CreateRoot)
	require.NotNil(t, override.Backend)
	assert.Equal(t, config.PosixBackend, *override.Backend)
	assert.Equal(t, []string{"ls", "/"}, fs.Args())
}

func TestFlagOverrideLongVerbose(t *testing.T) {
	t.Parallel()
	fs, opts := parseFlags(t, "-verbose", "1")

	override := flagOverride(fs, opts)

	require.NotNil(t, override.LogLvl)
	assert.Equal(t, config.ErrorVerbose, *override.LogLvl)
}
