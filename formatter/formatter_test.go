package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kinduce/kinduce/internal/engine"
	"github.com/kinduce/kinduce/internal/logic"
	"github.com/kinduce/kinduce/internal/system"
)

func TestFormatVerdicts(t *testing.T) {
	t.Parallel()

	f := NewPlain()

	t.Run("proved", func(t *testing.T) {
		t.Parallel()
		out := f.FormatResult(*engine.Proved("mutex", 2))
		assert.Equal(t, "mutex: proved (by induction at depth 2)\n", out)
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		out := f.FormatResult(*engine.Inconclusive("mutex", 10, engine.ReasonDepthExhausted))
		assert.Equal(t, "mutex: unknown at depth 10: depth exhausted\n", out)
	})

	t.Run("falsified with trace", func(t *testing.T) {
		t.Parallel()
		trace := &engine.Trace{
			Vars: []system.Var{{Name: "x", Sort: logic.Int}, {Name: "b", Sort: logic.Bool}},
			Steps: []map[string]logic.Val{
				{"x": logic.I(0), "b": logic.B(true)},
				{"x": logic.I(-1), "b": logic.B(false)},
			},
		}
		out := f.FormatResult(*engine.Falsified("non-negative", 1, trace))
		want := "non-negative: falsified (counterexample of length 1)\n" +
			"  step 0 | x = 0 b = true\n" +
			"  step 1 | x = (- 1) b = false\n"
		assert.Equal(t, want, out)
	})
}

func TestFormatBatch(t *testing.T) {
	t.Parallel()

	f := NewPlain()
	out := f.Format([]engine.Outcome{
		*engine.Proved("a", 1),
		*engine.Inconclusive("b", 3, engine.ReasonCancelled),
	})
	assert.Equal(t,
		"a: proved (by induction at depth 1)\n"+
			"\n"+
			"b: unknown at depth 3: cancelled\n",
		out)
}
