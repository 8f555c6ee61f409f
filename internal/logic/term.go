package logic

import "strings"

// Term is a typed expression tree over constants, step-indexed
// variable references and operator applications. Terms are immutable
// once built; NewApp type-checks at construction time.
type Term interface {
	isTerm()
	Typ() Typ
	String() string
	Equal(other Term) bool
}

// Cst is a constant term.
type Cst struct {
	Val Val
}

func (Cst) isTerm()    {}
func (c Cst) Typ() Typ { return c.Val.Typ() }
func (c Cst) String() string {
	return c.Val.String()
}

func (c Cst) Equal(other Term) bool {
	o, ok := other.(Cst)
	return ok && c.Val.Equal(o.Val)
}

// Ref is a reference to a state variable at a relative step offset:
// offset 0 is the current state, offset 1 the next state. Offsets
// beyond 1 only appear transiently while unrolling.
type Ref struct {
	Name   string
	Sort   Typ
	Offset int
}

func (Ref) isTerm()    {}
func (r Ref) Typ() Typ { return r.Sort }
func (r Ref) String() string {
	if r.Offset == 0 {
		return r.Name
	}
	return r.Name + strings.Repeat("'", r.Offset)
}

func (r Ref) Equal(other Term) bool {
	o, ok := other.(Ref)
	return ok && r == o
}

// App is an operator application.
type App struct {
	Op   Op
	Args []Term
	typ  Typ
}

func (App) isTerm()    {}
func (a App) Typ() Typ { return a.typ }
func (a App) String() string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(a.Op.String())
	for _, arg := range a.Args {
		b.WriteString(" ")
		b.WriteString(arg.String())
	}
	b.WriteString(")")
	return b.String()
}

func (a App) Equal(other Term) bool {
	o, ok := other.(App)
	if !ok || a.Op != o.Op || len(a.Args) != len(o.Args) {
		return false
	}
	for i := range a.Args {
		if !a.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// NewApp builds an operator application, type-checking the operands.
// Trivial unary (+ x), (and x), (or x) applications collapse to their
// single argument; unary minus of a constant folds into a constant.
func NewApp(op Op, args ...Term) (Term, error) {
	typ, err := op.typeCheck(args)
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		switch op {
		case OpAdd, OpAnd, OpOr:
			return args[0], nil
		case OpSub:
			if c, ok := args[0].(Cst); ok {
				if v, err := EvalApp(OpSub, []Val{c.Val}); err == nil {
					return Cst{Val: v}, nil
				}
			}
		}
	}
	return App{Op: op, Args: args, typ: typ}, nil
}

// MustApp is NewApp for applications known to be well-typed; it
// panics on a type error.
func MustApp(op Op, args ...Term) Term {
	t, err := NewApp(op, args...)
	if err != nil {
		panic(err)
	}
	return t
}

// Helper constructors.

// Const wraps a value into a constant term.
func Const(v Val) Term {
	return Cst{Val: v}
}

// True is the boolean constant true.
func True() Term {
	return Cst{Val: B(true)}
}

// False is the boolean constant false.
func False() Term {
	return Cst{Val: B(false)}
}

// IntC is an integer constant term.
func IntC(i int64) Term {
	return Cst{Val: I(i)}
}

// Curr references variable name at the current step.
func Curr(name string, sort Typ) Term {
	return Ref{Name: name, Sort: sort}
}

// Next references variable name at the next step.
func Next(name string, sort Typ) Term {
	return Ref{Name: name, Sort: sort, Offset: 1}
}

// Not negates a boolean term.
func Not(t Term) Term {
	return MustApp(OpNot, t)
}

// And conjoins boolean terms.
func And(args ...Term) Term {
	return MustApp(OpAnd, args...)
}

// Or disjoins boolean terms.
func Or(args ...Term) Term {
	return MustApp(OpOr, args...)
}

// Implies builds an implication chain.
func Implies(args ...Term) Term {
	return MustApp(OpImplies, args...)
}

// Eq equates terms of one type.
func Eq(args ...Term) Term {
	return MustApp(OpEq, args...)
}

// Ge builds a >= relation.
func Ge(args ...Term) Term {
	return MustApp(OpGe, args...)
}

// Add sums arithmetic terms.
func Add(args ...Term) Term {
	return MustApp(OpAdd, args...)
}

// Sub subtracts arithmetic terms (unary minus when given one).
func Sub(args ...Term) Term {
	return MustApp(OpSub, args...)
}

// Ite builds an if-then-else term.
func Ite(cnd, thn, els Term) Term {
	return MustApp(OpIte, cnd, thn, els)
}
