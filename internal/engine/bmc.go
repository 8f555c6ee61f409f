package engine

import (
	"context"
	"fmt"

	"github.com/kinduce/kinduce/internal/logic"
	"github.com/kinduce/kinduce/internal/solver"
	"github.com/kinduce/kinduce/internal/system"
)

// BMC searches for a counterexample trace of increasing length. The
// session grows incrementally: the initial predicate is asserted
// once, each round checks the negated property at the current depth
// inside a push/pop scope, then extends the unrolling by one
// transition instance.
type BMC struct {
	sys   *system.System
	sess  solver.Session
	name  string
	prop  logic.Term
	depth int
}

// NewBMC prepares a bounded search for the named property, declaring
// the step-0 variables and asserting the initial predicate.
func NewBMC(sys *system.System, sess solver.Session, name string) (*BMC, error) {
	prop, ok := sys.Prop(name)
	if !ok {
		return nil, fmt.Errorf("unknown property `%s`", name)
	}
	b := &BMC{sys: sys, sess: sess, name: name, prop: prop}

	u, err := system.Unroll(sys, 0)
	if err != nil {
		return nil, err
	}
	for _, v := range u.Vars[0] {
		if err := sess.Declare(v); err != nil {
			return nil, err
		}
	}
	if err := sess.Assert(u.Init); err != nil {
		return nil, err
	}
	return b, nil
}

// Depth returns the next depth to be checked.
func (b *BMC) Depth() int {
	return b.depth
}

// Step checks for a counterexample of length depth. A nil outcome
// means no counterexample exists at this depth and the search has
// been extended for the next round. A sat answer is definitive
// falsification; unknown is terminal.
func (b *BMC) Step(ctx context.Context) (*Outcome, error) {
	k := b.depth

	if err := b.sess.Push(); err != nil {
		return nil, err
	}
	if err := b.sess.Assert(system.Assertion{Term: logic.Not(b.prop), Base: k}); err != nil {
		return nil, err
	}

	ans, err := b.sess.CheckSat(ctx)
	if err != nil {
		return nil, err
	}
	switch ans {
	case solver.Sat:
		trace, err := b.extractTrace(k)
		if err != nil {
			return nil, err
		}
		return Falsified(b.name, k, trace), nil

	case solver.Unsat:
		if err := b.sess.Pop(); err != nil {
			return nil, err
		}
		return nil, b.extend(k)

	default:
		return Inconclusive(b.name, k, fmt.Sprintf("solver inconclusive at depth %d", k)), nil
	}
}

// extend declares the step-k+1 variables and chains one more
// transition instance, using the unroller's placement so both proof
// strategies share one encoding convention.
func (b *BMC) extend(k int) error {
	u, err := system.Unroll(b.sys, k+1)
	if err != nil {
		return err
	}
	for _, v := range u.Vars[k+1] {
		if err := b.sess.Declare(v); err != nil {
			return err
		}
	}
	if err := b.sess.Assert(u.Trans[k]); err != nil {
		return err
	}
	b.depth = k + 1
	return nil
}

// extractTrace reads the satisfying assignment across steps 0..k.
func (b *BMC) extractTrace(k int) (*Trace, error) {
	u, err := system.Unroll(b.sys, k)
	if err != nil {
		return nil, err
	}
	var all []system.StepVar
	for _, step := range u.Vars {
		all = append(all, step...)
	}
	model, err := b.sess.Values(all)
	if err != nil {
		return nil, err
	}

	trace := &Trace{Vars: b.sys.Vars()}
	for step := 0; step <= k; step++ {
		vals := make(map[string]logic.Val, len(trace.Vars))
		for _, sv := range u.Vars[step] {
			vals[sv.Name] = model[sv]
		}
		trace.Steps = append(trace.Steps, vals)
	}
	return trace, nil
}
