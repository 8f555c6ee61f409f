// Package solver wraps external satisfiability oracles behind a
// narrow incremental session protocol: declare step variables, assert
// anchored terms, push/pop backtracking scopes, check satisfiability
// and read models. Misusing the protocol is a programming error,
// reported through distinct sentinel errors and never conflated with
// an oracle answering `unknown`.
package solver

import (
	"context"
	"errors"

	"github.com/kinduce/kinduce/internal/logic"
	"github.com/kinduce/kinduce/internal/system"
)

// Answer is an oracle verdict for a check-sat call.
type Answer int

const (
	Unknown Answer = iota
	Sat
	Unsat
)

func (a Answer) String() string {
	switch a {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Model is a satisfying assignment for declared step variables.
type Model map[system.StepVar]logic.Val

// Protocol errors. These indicate adapter misuse by the caller and
// are never recovered from.
var (
	// ErrNoModel: Values called without a pending sat answer.
	ErrNoModel = errors.New("solver: no model available")
	// ErrNoScope: Pop called with no matching Push.
	ErrNoScope = errors.New("solver: no scope to pop")
	// ErrClosed: the session was already closed.
	ErrClosed = errors.New("solver: session closed")
	// ErrUndeclared: an assertion references an undeclared variable.
	ErrUndeclared = errors.New("solver: undeclared variable")
	// ErrUnsupportedSort: the backend cannot represent the sort.
	ErrUnsupportedSort = errors.New("solver: unsupported sort")
)

// Session is one stateful conversation with a satisfiability oracle.
// Calls on a session are strictly ordered and must come from a single
// goroutine; concurrency across sessions is free. Pop restores
// exactly the declarations and assertions present at the matching
// Push.
type Session interface {
	// Declare introduces a step variable.
	Declare(v system.StepVar) error
	// Assert adds an anchored term to the current scope.
	Assert(a system.Assertion) error
	// Push opens a backtracking scope.
	Push() error
	// Pop discards everything since the matching Push.
	Pop() error
	// CheckSat decides the conjunction of all live assertions. It is
	// the only blocking operation; cancelling the context tears the
	// oracle down and surfaces the context error.
	CheckSat(ctx context.Context) (Answer, error)
	// Values reads the satisfying assignment for the given variables.
	// Only valid immediately after a Sat answer, before any further
	// declaration or assertion.
	Values(vars []system.StepVar) (Model, error)
	// Close releases the oracle. The session is unusable afterwards.
	Close() error
}

// Factory opens fresh oracle sessions. Each proof strategy holds its
// own session so the two searches never contend on one backtracking
// stack.
type Factory func() (Session, error)
