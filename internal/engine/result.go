// Package engine implements the proof strategies: bounded model
// checking, k-induction and the orchestrator racing them to the
// first conclusive verdict.
package engine

import (
	"fmt"
	"strings"

	"github.com/kinduce/kinduce/internal/logic"
	"github.com/kinduce/kinduce/internal/system"
)

// Status is the kind of a proof outcome.
type Status int

const (
	// StatusUnknown: neither strategy concluded.
	StatusUnknown Status = iota
	// StatusProved: the property holds at all depths.
	StatusProved
	// StatusFalsified: a counterexample trace was found.
	StatusFalsified
)

func (s Status) String() string {
	switch s {
	case StatusProved:
		return "proved"
	case StatusFalsified:
		return "falsified"
	default:
		return "unknown"
	}
}

// Inconclusive-outcome reasons.
const (
	ReasonCancelled      = "cancelled"
	ReasonDepthExhausted = "depth exhausted"
)

// Trace is a counterexample: one assignment of the state variables
// per step, from the initial state to the violating state.
type Trace struct {
	Vars  []system.Var
	Steps []map[string]logic.Val
}

func (t *Trace) String() string {
	var b strings.Builder
	for step, vals := range t.Steps {
		fmt.Fprintf(&b, "step %d:", step)
		for _, v := range t.Vars {
			fmt.Fprintf(&b, " %s = %s", v.Name, vals[v.Name])
		}
		if step+1 < len(t.Steps) {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Outcome is the verdict for one property. Depth always carries the
// depth reached, so callers can tell "holds up to depth 12,
// unresolved beyond" from "proved for all depths".
type Outcome struct {
	Property string
	Status   Status
	Depth    int
	Reason   string
	Trace    *Trace
}

func (o Outcome) String() string {
	switch o.Status {
	case StatusProved:
		return fmt.Sprintf("property `%s` proved by induction at depth %d", o.Property, o.Depth)
	case StatusFalsified:
		return fmt.Sprintf("property `%s` falsified at depth %d", o.Property, o.Depth)
	default:
		return fmt.Sprintf("property `%s` unresolved at depth %d (%s)", o.Property, o.Depth, o.Reason)
	}
}

// Falsified creates a counterexample outcome.
func Falsified(prop string, depth int, trace *Trace) *Outcome {
	return &Outcome{Property: prop, Status: StatusFalsified, Depth: depth, Trace: trace}
}

// Proved creates a proved outcome.
func Proved(prop string, depth int) *Outcome {
	return &Outcome{Property: prop, Status: StatusProved, Depth: depth}
}

// Inconclusive creates an unknown outcome with a reason.
func Inconclusive(prop string, depth int, reason string) *Outcome {
	return &Outcome{Property: prop, Status: StatusUnknown, Depth: depth, Reason: reason}
}
