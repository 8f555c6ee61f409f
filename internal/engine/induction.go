package engine

import (
	"context"
	"fmt"

	"github.com/kinduce/kinduce/internal/logic"
	"github.com/kinduce/kinduce/internal/solver"
	"github.com/kinduce/kinduce/internal/system"
)

// Induction attempts to prove the property inductively: assuming it
// holds on k consecutive states chained by the transition relation,
// it must hold on the next. The session holds no initial predicate;
// the hypothesis steps grow as the candidate depth increases. An
// unsat inductive step at depth k, combined with BMC having survived
// through k, proves the property at all depths.
type Induction struct {
	sys      *system.System
	sess     solver.Session
	name     string
	prop     logic.Term
	strength []logic.Term
	k        int
}

// NewInduction prepares the inductive search at candidate depth 1.
// Invariants already proved for other properties may be supplied and
// are conjoined into the hypothesis (property strengthening).
func NewInduction(sys *system.System, sess solver.Session, name string, strength ...logic.Term) (*Induction, error) {
	prop, ok := sys.Prop(name)
	if !ok {
		return nil, fmt.Errorf("unknown property `%s`", name)
	}
	ind := &Induction{
		sys:      sys,
		sess:     sess,
		name:     name,
		prop:     prop,
		strength: append([]logic.Term(nil), strength...),
		k:        1,
	}

	u, err := system.Unroll(sys, 1)
	if err != nil {
		return nil, err
	}
	for step := 0; step <= 1; step++ {
		for _, v := range u.Vars[step] {
			if err := sess.Declare(v); err != nil {
				return nil, err
			}
		}
	}
	if err := sess.Assert(u.Trans[0]); err != nil {
		return nil, err
	}
	if err := ind.assertHypothesis(0); err != nil {
		return nil, err
	}
	return ind, nil
}

// Depth returns the current candidate depth.
func (ind *Induction) Depth() int {
	return ind.k
}

// assertHypothesis assumes the property and the strengthening
// invariants at the given step.
func (ind *Induction) assertHypothesis(step int) error {
	if err := ind.sess.Assert(system.Assertion{Term: ind.prop, Base: step}); err != nil {
		return err
	}
	for _, inv := range ind.strength {
		if err := ind.sess.Assert(system.Assertion{Term: inv, Base: step}); err != nil {
			return err
		}
	}
	return nil
}

// Strengthen conjoins a newly proved invariant into the hypothesis,
// at every step already assumed and at all future ones.
func (ind *Induction) Strengthen(inv logic.Term) error {
	ind.strength = append(ind.strength, inv)
	for step := 0; step < ind.k; step++ {
		if err := ind.sess.Assert(system.Assertion{Term: inv, Base: step}); err != nil {
			return err
		}
	}
	return nil
}

// Step checks the inductive step at the current candidate depth. A
// nil outcome means the step was sat (a spurious predecessor exists)
// and the candidate depth has been extended. Unsat is a proof;
// unknown is terminal.
func (ind *Induction) Step(ctx context.Context) (*Outcome, error) {
	k := ind.k

	if err := ind.sess.Push(); err != nil {
		return nil, err
	}
	if err := ind.sess.Assert(system.Assertion{Term: logic.Not(ind.prop), Base: k}); err != nil {
		return nil, err
	}

	ans, err := ind.sess.CheckSat(ctx)
	if err != nil {
		return nil, err
	}
	switch ans {
	case solver.Unsat:
		return Proved(ind.name, k), nil

	case solver.Sat:
		if err := ind.sess.Pop(); err != nil {
			return nil, err
		}
		return nil, ind.extend(k)

	default:
		return Inconclusive(ind.name, k, fmt.Sprintf("solver inconclusive at depth %d", k)), nil
	}
}

// extend grows the hypothesis chain from candidate depth k to k+1:
// the property is assumed at step k, the step-k+1 variables appear
// and one more transition instance chains them.
func (ind *Induction) extend(k int) error {
	if err := ind.assertHypothesis(k); err != nil {
		return err
	}
	u, err := system.Unroll(ind.sys, k+1)
	if err != nil {
		return err
	}
	for _, v := range u.Vars[k+1] {
		if err := ind.sess.Declare(v); err != nil {
			return err
		}
	}
	if err := ind.sess.Assert(u.Trans[k]); err != nil {
		return err
	}
	ind.k = k + 1
	return nil
}
