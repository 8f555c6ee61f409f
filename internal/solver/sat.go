package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/kinduce/kinduce/internal/logic"
	"github.com/kinduce/kinduce/internal/system"
)

// SAT is a pure-Go session for all-boolean systems. Asserted terms
// are Tseitin-encoded into CNF and decided in process with gini, so
// boolean models verify without an external solver binary. Push/Pop
// snapshot assertion frames; each CheckSat encodes the live frames
// into a fresh solver instance.
type SAT struct {
	frames []*satFrame
	model  Model
	closed bool
}

type satFrame struct {
	decls   []system.StepVar
	asserts []system.Assertion
}

// NewSAT opens a boolean-only session.
func NewSAT() *SAT {
	return &SAT{frames: []*satFrame{{}}}
}

// SATFactory builds boolean-only sessions.
func SATFactory() (Session, error) {
	return NewSAT(), nil
}

func (s *SAT) top() *satFrame {
	return s.frames[len(s.frames)-1]
}

func (s *SAT) Declare(v system.StepVar) error {
	if s.closed {
		return ErrClosed
	}
	if v.Sort != logic.Bool {
		return fmt.Errorf("%w: `%s` has sort `%s`", ErrUnsupportedSort, v.Name, v.Sort)
	}
	s.model = nil
	s.top().decls = append(s.top().decls, v)
	return nil
}

func (s *SAT) Assert(a system.Assertion) error {
	if s.closed {
		return ErrClosed
	}
	if a.Term.Typ() != logic.Bool {
		return fmt.Errorf("%w: asserted term has sort `%s`", ErrUnsupportedSort, a.Term.Typ())
	}
	s.model = nil
	s.top().asserts = append(s.top().asserts, a)
	return nil
}

func (s *SAT) Push() error {
	if s.closed {
		return ErrClosed
	}
	s.model = nil
	s.frames = append(s.frames, &satFrame{})
	return nil
}

func (s *SAT) Pop() error {
	if s.closed {
		return ErrClosed
	}
	if len(s.frames) == 1 {
		return ErrNoScope
	}
	s.model = nil
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}

func (s *SAT) CheckSat(ctx context.Context) (Answer, error) {
	if s.closed {
		return Unknown, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return Unknown, err
	}
	s.model = nil

	enc := newTseitin()
	for _, f := range s.frames {
		for _, v := range f.decls {
			enc.declare(v)
		}
	}
	for _, f := range s.frames {
		for _, a := range f.asserts {
			root, err := enc.encode(a.Term, a.Base)
			if err != nil {
				return Unknown, err
			}
			enc.clause(root)
		}
	}

	res, err := solveCtx(ctx, enc.g)
	if err != nil {
		return Unknown, err
	}
	switch res {
	case 1:
		model := make(Model, len(enc.vars))
		for sym, lit := range enc.vars {
			model[sym] = logic.B(enc.g.Value(lit))
		}
		s.model = model
		return Sat, nil
	case -1:
		return Unsat, nil
	default:
		return Unknown, nil
	}
}

// satPoll is how often a running solve is checked against the
// context. The gini Solve handle is not goroutine safe, so
// cancellation is a poll on the owning goroutine.
const satPoll = time.Millisecond

// solveCtx decides the accumulated clauses, stopping the solver when
// ctx is cancelled. Returns gini's result codes: 1 sat, -1 unsat,
// 0 unknown.
func solveCtx(ctx context.Context, g *gini.Gini) (int, error) {
	if ctx.Done() == nil {
		return g.Solve(), nil
	}
	work := g.GoSolve()
	poll := time.NewTicker(satPoll)
	defer poll.Stop()
	for {
		if res, done := work.Test(); done {
			return res, nil
		}
		select {
		case <-ctx.Done():
			work.Stop()
			return 0, ctx.Err()
		case <-poll.C:
		}
	}
}

func (s *SAT) Values(vars []system.StepVar) (Model, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.model == nil {
		return nil, ErrNoModel
	}
	out := make(Model, len(vars))
	for _, v := range vars {
		val, ok := s.model[v]
		if !ok {
			return nil, fmt.Errorf("%w: `%s`", ErrUndeclared, v)
		}
		out[v] = val
	}
	return out, nil
}

func (s *SAT) Close() error {
	s.closed = true
	s.frames = nil
	s.model = nil
	return nil
}

// tseitin allocates one literal per subformula and emits the
// defining clauses.
type tseitin struct {
	g    *gini.Gini
	next z.Var
	vars map[system.StepVar]z.Lit
	// troof is a literal constrained to true, standing in for
	// constant subterms.
	troof z.Lit
}

func newTseitin() *tseitin {
	t := &tseitin{g: gini.New(), vars: make(map[system.StepVar]z.Lit)}
	t.troof = t.fresh()
	t.clause(t.troof)
	return t
}

func (t *tseitin) fresh() z.Lit {
	t.next++
	return t.next.Pos()
}

func (t *tseitin) clause(lits ...z.Lit) {
	for _, m := range lits {
		t.g.Add(m)
	}
	t.g.Add(z.LitNull)
}

func (t *tseitin) declare(v system.StepVar) {
	if _, ok := t.vars[v]; !ok {
		t.vars[v] = t.fresh()
	}
}

func (t *tseitin) encode(term logic.Term, base int) (z.Lit, error) {
	switch term := term.(type) {
	case logic.Cst:
		b, err := logic.AsBool(term.Val)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnsupportedSort, err)
		}
		if b {
			return t.troof, nil
		}
		return t.troof.Not(), nil

	case logic.Ref:
		sv := system.StepVar{
			Var:  system.Var{Name: term.Name, Sort: term.Sort},
			Step: base + term.Offset,
		}
		lit, ok := t.vars[sv]
		if !ok {
			return 0, fmt.Errorf("%w: `%s`", ErrUndeclared, sv)
		}
		return lit, nil

	case logic.App:
		args := make([]z.Lit, len(term.Args))
		for i, a := range term.Args {
			if a.Typ() != logic.Bool {
				return 0, fmt.Errorf("%w: operand of `%s` has sort `%s`", ErrUnsupportedSort, term.Op, a.Typ())
			}
			lit, err := t.encode(a, base)
			if err != nil {
				return 0, err
			}
			args[i] = lit
		}
		return t.encodeApp(term.Op, args)

	default:
		return 0, fmt.Errorf("%w: term `%s`", ErrUnsupportedSort, term)
	}
}

func (t *tseitin) encodeApp(op logic.Op, args []z.Lit) (z.Lit, error) {
	switch op {
	case logic.OpNot:
		return args[0].Not(), nil

	case logic.OpAnd:
		return t.conj(args), nil

	case logic.OpOr:
		return t.disj(args), nil

	case logic.OpImplies:
		// a1 => ... => an is (or !a1 ... !a_{n-1} an).
		lits := make([]z.Lit, len(args))
		for i, a := range args[:len(args)-1] {
			lits[i] = a.Not()
		}
		lits[len(args)-1] = args[len(args)-1]
		return t.disj(lits), nil

	case logic.OpEq:
		// All-equal over booleans: conjunction of pairwise
		// equivalences with the first argument.
		equivs := make([]z.Lit, 0, len(args)-1)
		for _, a := range args[1:] {
			equivs = append(equivs, t.equiv(args[0], a))
		}
		return t.conj(equivs), nil

	case logic.OpIte:
		// (ite c a b) is (or (and c a) (and !c b)).
		c, a, b := args[0], args[1], args[2]
		return t.disj([]z.Lit{t.conj([]z.Lit{c, a}), t.conj([]z.Lit{c.Not(), b})}), nil

	default:
		return 0, fmt.Errorf("%w: operator `%s` is not boolean", ErrUnsupportedSort, op)
	}
}

func (t *tseitin) conj(args []z.Lit) z.Lit {
	if len(args) == 1 {
		return args[0]
	}
	p := t.fresh()
	long := make([]z.Lit, 0, len(args)+1)
	long = append(long, p)
	for _, a := range args {
		t.clause(p.Not(), a)
		long = append(long, a.Not())
	}
	t.clause(long...)
	return p
}

func (t *tseitin) disj(args []z.Lit) z.Lit {
	if len(args) == 1 {
		return args[0]
	}
	p := t.fresh()
	long := make([]z.Lit, 0, len(args)+1)
	long = append(long, p.Not())
	for _, a := range args {
		t.clause(p, a.Not())
		long = append(long, a)
	}
	t.clause(long...)
	return p
}

func (t *tseitin) equiv(a, b z.Lit) z.Lit {
	p := t.fresh()
	t.clause(p.Not(), a.Not(), b)
	t.clause(p.Not(), a, b.Not())
	t.clause(p, a, b)
	t.clause(p, a.Not(), b.Not())
	return p
}
