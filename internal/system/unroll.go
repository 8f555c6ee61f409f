package system

import (
	"fmt"

	"github.com/kinduce/kinduce/internal/logic"
)

// StepVar is a state variable instantiated at an absolute time step.
type StepVar struct {
	Var
	Step int
}

func (v StepVar) String() string {
	return logic.StepSym(v.Name, v.Step)
}

// Assertion is a term anchored at an absolute base step: references
// at offset d denote step Base+d.
type Assertion struct {
	Term logic.Term
	Base int
}

// Unrolling is the depth-k instantiation of a system: variables for
// absolute steps 0..k, the initial predicate at step 0 and k
// transition instances chaining step i to i+1. It is a pure function
// of (system, k) and shared by both proof engines so they agree on
// one encoding.
type Unrolling struct {
	Depth int
	Vars  [][]StepVar
	Init  Assertion
	Trans []Assertion
}

// Unroll instantiates the system at depth k (k >= 0).
func Unroll(s *System, k int) (*Unrolling, error) {
	if k < 0 {
		return nil, fmt.Errorf("cannot unroll to negative depth %d", k)
	}
	u := &Unrolling{
		Depth: k,
		Vars:  make([][]StepVar, k+1),
		Init:  Assertion{Term: s.Init(), Base: 0},
	}
	for step := 0; step <= k; step++ {
		vars := make([]StepVar, 0, len(s.vars))
		for _, v := range s.vars {
			vars = append(vars, StepVar{Var: v, Step: step})
		}
		u.Vars[step] = vars
	}
	for i := 0; i < k; i++ {
		u.Trans = append(u.Trans, Assertion{Term: s.Trans(), Base: i})
	}
	return u, nil
}
