package kinduce

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinduce/kinduce/internal/logic"
	"github.com/kinduce/kinduce/internal/system"
)

// toggleSystem flips a boolean every step, starting from true.
func toggleSystem(t *testing.T) *system.System {
	t.Helper()
	flag := logic.Curr("flag", logic.Bool)
	sys, err := system.New(
		[]system.Var{{Name: "flag", Sort: logic.Bool}},
		logic.Eq(flag, logic.True()),
		logic.Eq(logic.Next("flag", logic.Bool), logic.Not(flag)),
		[]system.Prop{
			{Name: "tautology", Body: logic.Or(flag, logic.Not(flag))},
			{Name: "always-set", Body: flag},
		},
	)
	require.NoError(t, err)
	return sys
}

func TestVerifyAllWithBuiltinSolver(t *testing.T) {
	t.Parallel()

	results, err := VerifyAll(context.Background(), toggleSystem(t), Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	tautology := results[0]
	assert.Equal(t, "tautology", tautology.Property)
	assert.Equal(t, StatusProved, tautology.Status)

	// The toggle falsifies `flag` on the second step.
	alwaysSet := results[1]
	assert.Equal(t, "always-set", alwaysSet.Property)
	assert.Equal(t, StatusFalsified, alwaysSet.Status)
	assert.Equal(t, 1, alwaysSet.Depth)
	require.NotNil(t, alwaysSet.Trace)
	require.Len(t, alwaysSet.Trace.Steps, 2)
	assert.True(t, logic.B(true).Equal(alwaysSet.Trace.Steps[0]["flag"]))
	assert.True(t, logic.B(false).Equal(alwaysSet.Trace.Steps[1]["flag"]))
}

func TestVerifySingleProperty(t *testing.T) {
	t.Parallel()

	res, err := Verify(context.Background(), toggleSystem(t), "tautology", Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusProved, res.Status)
}

func TestVerifyCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Verify(ctx, toggleSystem(t), "tautology", Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, res.Status)
	assert.Equal(t, "cancelled", res.Reason)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kinduce.yaml")
	doc := `solver:
  command: z3
  args: ["-in"]
max-depth: 42
timeout: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "z3", config.Solver.Command)
	assert.Equal(t, []string{"-in"}, config.Solver.Args)
	assert.Equal(t, 42, config.MaxDepth)
	assert.Equal(t, Duration(30*time.Second), config.Timeout)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfigFactoryDefaultsToSAT(t *testing.T) {
	t.Parallel()

	var config Config
	sess, err := config.Factory()()
	require.NoError(t, err)
	require.NoError(t, sess.Close())
}
