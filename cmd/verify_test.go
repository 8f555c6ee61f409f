package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildOptions reads the package-level flag variables, so these tests
// save and restore them and do not run in parallel.
func stashFlags(t *testing.T) {
	t.Helper()
	savedCfg, savedTimeout := cfgFile, timeout
	savedDepth, savedSolver := maxDepth, solverCommand
	t.Cleanup(func() {
		cfgFile, timeout = savedCfg, savedTimeout
		maxDepth, solverCommand = savedDepth, savedSolver
	})
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kinduce.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestBuildOptionsDefaults(t *testing.T) {
	stashFlags(t)
	cfgFile, maxDepth, solverCommand = "", 0, ""

	opts, err := buildOptions(verifyCmd)
	require.NoError(t, err)
	assert.Zero(t, opts.MaxDepth)
	assert.Nil(t, opts.Solver)
}

func TestBuildOptionsConfigFile(t *testing.T) {
	stashFlags(t)
	cfgFile = writeConfig(t, "solver:\n  command: z3\n  args: [-in]\nmax-depth: 42\ntimeout: 30s\n")
	maxDepth, solverCommand = 0, ""
	timeout = 5 * time.Minute

	opts, err := buildOptions(verifyCmd)
	require.NoError(t, err)
	assert.Equal(t, 42, opts.MaxDepth)
	assert.NotNil(t, opts.Solver)
	// The configuration timeout applies when the flag was left alone.
	assert.Equal(t, 30*time.Second, timeout)
}

func TestBuildOptionsFlagsOverrideConfig(t *testing.T) {
	stashFlags(t)
	cfgFile = writeConfig(t, "max-depth: 42\n")
	maxDepth, solverCommand = 7, "z3 -in"

	opts, err := buildOptions(verifyCmd)
	require.NoError(t, err)
	assert.Equal(t, 7, opts.MaxDepth)
	assert.NotNil(t, opts.Solver)
}

func TestBuildOptionsMissingConfig(t *testing.T) {
	stashFlags(t)
	cfgFile = filepath.Join(t.TempDir(), "absent.yaml")

	_, err := buildOptions(verifyCmd)
	assert.Error(t, err)
}
