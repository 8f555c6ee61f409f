package logic

import "fmt"

// Op is an operator of the term language. Applications are n-ary
// wherever the underlying SMT theory allows it.
type Op int

const (
	_ Op = iota
	OpIte
	OpImplies
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpIDiv
	OpMod
	OpGe
	OpLe
	OpGt
	OpLt
	OpEq
	OpNot
	OpAnd
	OpOr
)

func (op Op) String() string {
	switch op {
	case OpIte:
		return "ite"
	case OpImplies:
		return "=>"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpIDiv:
		return "div"
	case OpMod:
		return "mod"
	case OpGe:
		return ">="
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpLt:
		return "<"
	case OpEq:
		return "="
	case OpNot:
		return "not"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return "?"
	}
}

// OpOf parses an operator from its surface syntax. Returns false if
// the string does not name an operator.
func OpOf(s string) (Op, bool) {
	switch s {
	case "ite":
		return OpIte, true
	case "=>", "implies":
		return OpImplies, true
	case "+":
		return OpAdd, true
	case "-":
		return OpSub, true
	case "*":
		return OpMul, true
	case "/":
		return OpDiv, true
	case "div":
		return OpIDiv, true
	case "mod", "%":
		return OpMod, true
	case ">=":
		return OpGe, true
	case "<=":
		return OpLe, true
	case ">":
		return OpGt, true
	case "<":
		return OpLt, true
	case "=", "==":
		return OpEq, true
	case "not", "!":
		return OpNot, true
	case "and", "&&":
		return OpAnd, true
	case "or", "||":
		return OpOr, true
	default:
		return 0, false
	}
}

// MinArity returns the minimal number of arguments for the operator.
func (op Op) MinArity() int {
	switch op {
	case OpNot, OpAdd, OpSub, OpAnd, OpOr:
		return 1
	case OpIte:
		return 3
	default:
		return 2
	}
}

// MaxArity returns the maximal number of arguments for the operator,
// or 0 if unbounded.
func (op Op) MaxArity() int {
	switch op {
	case OpNot:
		return 1
	case OpMod, OpDiv, OpIDiv:
		return 2
	case OpIte:
		return 3
	default:
		return 0
	}
}

// IsRelation reports whether the operator is an arithmetic relation.
func (op Op) IsRelation() bool {
	switch op {
	case OpGe, OpLe, OpGt, OpLt:
		return true
	default:
		return false
	}
}

// TypeError reports an ill-typed operator application or an arity
// violation.
type TypeError struct {
	Op  Op
	Msg string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("`%s`: %s", e.Op, e.Msg)
}

func typeErrf(op Op, format string, args ...any) error {
	return &TypeError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// typeCheck validates an application of op to args and returns the
// type of the resulting term.
func (op Op) typeCheck(args []Term) (Typ, error) {
	if len(args) < op.MinArity() {
		return 0, typeErrf(op, "expects at least %d argument(s), got %d", op.MinArity(), len(args))
	}
	if max := op.MaxArity(); max > 0 && len(args) > max {
		return 0, typeErrf(op, "expects at most %d argument(s), got %d", max, len(args))
	}

	switch op {
	case OpIte:
		if args[0].Typ() != Bool {
			return 0, typeErrf(op, "expected first argument of type `bool`, got `%s`", args[0].Typ())
		}
		if thn, els := args[1].Typ(), args[2].Typ(); thn != els {
			return 0, typeErrf(op, "branches should have the same type, got `%s` and `%s`", thn, els)
		}
		return args[1].Typ(), nil

	case OpImplies, OpAnd, OpOr, OpNot:
		for _, a := range args {
			if a.Typ() != Bool {
				return 0, typeErrf(op, "arguments must all be boolean, found `%s`", a.Typ())
			}
		}
		return Bool, nil

	case OpEq:
		first := args[0].Typ()
		for _, a := range args[1:] {
			if a.Typ() != first {
				return 0, typeErrf(op, "arguments must all have the same type, found `%s` and `%s`", first, a.Typ())
			}
		}
		return Bool, nil

	default:
		// Arithmetic operators and relations.
		first := args[0].Typ()
		if !first.IsArith() {
			return 0, typeErrf(op, "arguments must have an arithmetic type, unexpected `%s`", first)
		}
		for _, a := range args[1:] {
			if a.Typ() != first {
				return 0, typeErrf(op, "arguments must all have the same type, found `%s` and `%s`", first, a.Typ())
			}
		}
		if (op == OpIDiv || op == OpMod) && first != Int {
			return 0, typeErrf(op, "can only be applied to integer arguments, found `%s`", first)
		}
		switch {
		case op == OpDiv:
			return Rat, nil
		case op.IsRelation():
			return Bool, nil
		default:
			return first, nil
		}
	}
}
