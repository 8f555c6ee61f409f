package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinduce/kinduce/internal/logic"
	"github.com/kinduce/kinduce/internal/solver"
	"github.com/kinduce/kinduce/internal/system"
)

func TestVerifyProves(t *testing.T) {
	t.Parallel()

	sys := counterSystem(t, 1)
	bmcSess := &fakeSession{answers: []solver.Answer{solver.Unsat, solver.Unsat}}
	indSess := &fakeSession{answers: []solver.Answer{solver.Unsat}}

	out, err := Verify(context.Background(), sys, "non-negative",
		Options{Factory: fakeFactory(bmcSess, indSess)})
	require.NoError(t, err)
	assert.Equal(t, StatusProved, out.Status)
	assert.Equal(t, 1, out.Depth)
	assert.True(t, bmcSess.closed)
	assert.True(t, indSess.closed)
}

func TestVerifyFalsificationBeatsProof(t *testing.T) {
	t.Parallel()

	// At depth 1 the scripted oracle reports both a counterexample
	// and an inductive proof; the counterexample is the verdict.
	sys := counterSystem(t, -1)
	bmcSess := &fakeSession{
		answers: []solver.Answer{solver.Unsat, solver.Sat},
		model: solver.Model{
			intStep("x", 0): logic.I(0),
			intStep("x", 1): logic.I(-1),
		},
	}
	indSess := &fakeSession{answers: []solver.Answer{solver.Unsat}}

	out, err := Verify(context.Background(), sys, "non-negative",
		Options{Factory: fakeFactory(bmcSess, indSess)})
	require.NoError(t, err)
	assert.Equal(t, StatusFalsified, out.Status)
	assert.Equal(t, 1, out.Depth)
	require.NotNil(t, out.Trace)
	assert.True(t, logic.I(-1).Equal(out.Trace.Steps[1]["x"]))
}

func TestVerifyFalsifiesAtDepthZero(t *testing.T) {
	t.Parallel()

	// A counterexample in the initial state concludes in the very
	// first round, before induction ever runs.
	sys := counterSystem(t, 1)
	bmcSess := &fakeSession{
		answers: []solver.Answer{solver.Sat},
		model:   solver.Model{intStep("x", 0): logic.I(-1)},
	}
	indSess := &fakeSession{answers: []solver.Answer{solver.Unsat}}

	out, err := Verify(context.Background(), sys, "non-negative",
		Options{Factory: fakeFactory(bmcSess, indSess)})
	require.NoError(t, err)
	assert.Equal(t, StatusFalsified, out.Status)
	assert.Equal(t, 0, out.Depth)
	require.NotNil(t, out.Trace)
	require.Len(t, out.Trace.Steps, 1)
	// Induction was never consulted.
	assert.Len(t, indSess.answers, 1)
}

func TestVerifyDepthExhausted(t *testing.T) {
	t.Parallel()

	sys := counterSystem(t, 1)
	// BMC never finds a counterexample; induction never concludes.
	bmcSess := &fakeSession{answers: []solver.Answer{solver.Unsat, solver.Unsat, solver.Unsat, solver.Unsat}}
	indSess := &fakeSession{answers: []solver.Answer{solver.Sat, solver.Sat, solver.Sat}}

	out, err := Verify(context.Background(), sys, "non-negative",
		Options{Factory: fakeFactory(bmcSess, indSess), MaxDepth: 3})
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, out.Status)
	assert.Equal(t, ReasonDepthExhausted, out.Reason)
	assert.Equal(t, 3, out.Depth)
}

func TestVerifyCancellation(t *testing.T) {
	t.Parallel()

	sys := counterSystem(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := Verify(ctx, sys, "non-negative",
		Options{Factory: fakeFactory(&fakeSession{}, &fakeSession{})})
	require.NoError(t, err)
	assert.Equal(t, StatusUnknown, out.Status)
	assert.Equal(t, ReasonCancelled, out.Reason)
}

func TestVerifyUnknownProperty(t *testing.T) {
	t.Parallel()

	sys := counterSystem(t, 1)
	_, err := Verify(context.Background(), sys, "absent",
		Options{Factory: fakeFactory(&fakeSession{}, &fakeSession{})})
	assert.Error(t, err)
}

func TestVerifyRequiresFactory(t *testing.T) {
	t.Parallel()

	sys := counterSystem(t, 1)
	_, err := Verify(context.Background(), sys, "non-negative", Options{})
	assert.Error(t, err)
}

func TestVerifyAllStrengthens(t *testing.T) {
	t.Parallel()

	// Two properties over the counter. The first proves at depth 1
	// and must be conjoined into the second property's hypothesis
	// before its next round.
	x := logic.Curr("x", logic.Int)
	first := logic.Ge(x, logic.IntC(0))
	second := logic.Ge(x, logic.IntC(-10))
	sys, err := system.New(
		[]system.Var{{Name: "x", Sort: logic.Int}},
		logic.Eq(x, logic.IntC(0)),
		logic.Eq(logic.Next("x", logic.Int), logic.Add(x, logic.IntC(1))),
		[]system.Prop{{Name: "tight", Body: first}, {Name: "loose", Body: second}},
	)
	require.NoError(t, err)

	// Sessions are created per property in declaration order, BMC
	// first: tight-bmc, tight-ind, loose-bmc, loose-ind.
	tightBMC := &fakeSession{answers: []solver.Answer{solver.Unsat, solver.Unsat}}
	tightInd := &fakeSession{answers: []solver.Answer{solver.Unsat}}
	looseBMC := &fakeSession{answers: []solver.Answer{solver.Unsat, solver.Unsat, solver.Unsat}}
	looseInd := &fakeSession{answers: []solver.Answer{solver.Sat, solver.Unsat}}

	outs, err := VerifyAll(context.Background(), sys,
		Options{Factory: fakeFactory(tightBMC, tightInd, looseBMC, looseInd)})
	require.NoError(t, err)
	require.Len(t, outs, 2)

	assert.Equal(t, "tight", outs[0].Property)
	assert.Equal(t, StatusProved, outs[0].Status)
	assert.Equal(t, "loose", outs[1].Property)
	assert.Equal(t, StatusProved, outs[1].Status)

	// The proved invariant reached the open induction session.
	found := false
	for _, a := range looseInd.asserts {
		if first.Equal(a.Term) {
			found = true
		}
	}
	assert.True(t, found, "proved invariant was not conjoined into the remaining hypothesis")
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()

	assert.Contains(t, Proved("p", 2).String(), "proved")
	assert.Contains(t, Inconclusive("p", 4, ReasonDepthExhausted).String(), "unresolved")

	trace := &Trace{
		Vars:  []system.Var{{Name: "x", Sort: logic.Int}},
		Steps: []map[string]logic.Val{{"x": logic.I(0)}, {"x": logic.I(-1)}},
	}
	out := Falsified("p", 1, trace)
	assert.Contains(t, out.String(), "falsified")
	assert.Equal(t, "step 0: x = 0\nstep 1: x = (- 1)", trace.String())
}
