package logic

import (
	"fmt"
	"math/big"
)

// EvalApp applies an operator to constant values. It assumes the
// application passed arity checking; argument type mismatches are
// reported as errors since they indicate an ill-typed term slipped
// through construction.
func EvalApp(op Op, args []Val) (Val, error) {
	if len(args) < op.MinArity() {
		return nil, typeErrf(op, "expects at least %d argument(s), got %d", op.MinArity(), len(args))
	}
	if max := op.MaxArity(); max > 0 && len(args) > max {
		return nil, typeErrf(op, "expects at most %d argument(s), got %d", max, len(args))
	}

	switch op {
	case OpIte:
		cnd, err := AsBool(args[0])
		if err != nil {
			return nil, err
		}
		if cnd {
			return args[1], nil
		}
		return args[2], nil

	case OpImplies:
		// a1 => a2 => ... => an: true as soon as any antecedent is
		// false, otherwise the last argument.
		for _, v := range args[:len(args)-1] {
			b, err := AsBool(v)
			if err != nil {
				return nil, err
			}
			if !b {
				return B(true), nil
			}
		}
		return args[len(args)-1], nil

	case OpNot:
		b, err := AsBool(args[0])
		if err != nil {
			return nil, err
		}
		return B(!b), nil

	case OpAnd:
		for _, v := range args {
			b, err := AsBool(v)
			if err != nil {
				return nil, err
			}
			if !b {
				return B(false), nil
			}
		}
		return B(true), nil

	case OpOr:
		for _, v := range args {
			b, err := AsBool(v)
			if err != nil {
				return nil, err
			}
			if b {
				return B(true), nil
			}
		}
		return B(false), nil

	case OpEq:
		for _, v := range args[1:] {
			if !args[0].Equal(v) {
				return B(false), nil
			}
		}
		return B(true), nil

	case OpGe, OpLe, OpGt, OpLt:
		// Chainable: (< a b c) means a < b and b < c.
		for i := 0; i+1 < len(args); i++ {
			cmp, err := compareArith(op, args[i], args[i+1])
			if err != nil {
				return nil, err
			}
			if !cmp {
				return B(false), nil
			}
		}
		return B(true), nil

	case OpAdd:
		return foldArith(op, args, func(l, r *big.Int) *big.Int { return new(big.Int).Add(l, r) },
			func(l, r *big.Rat) *big.Rat { return new(big.Rat).Add(l, r) })

	case OpSub:
		if len(args) == 1 {
			switch v := args[0].(type) {
			case IntVal:
				return BigI(new(big.Int).Neg(v.Val)), nil
			case RatVal:
				return BigR(new(big.Rat).Neg(v.Val)), nil
			default:
				return nil, typeErrf(op, "cannot negate `%s`", args[0])
			}
		}
		return foldArith(op, args, func(l, r *big.Int) *big.Int { return new(big.Int).Sub(l, r) },
			func(l, r *big.Rat) *big.Rat { return new(big.Rat).Sub(l, r) })

	case OpMul:
		return foldArith(op, args, func(l, r *big.Int) *big.Int { return new(big.Int).Mul(l, r) },
			func(l, r *big.Rat) *big.Rat { return new(big.Rat).Mul(l, r) })

	case OpDiv:
		res, err := toRat(args[0])
		if err != nil {
			return nil, err
		}
		for _, v := range args[1:] {
			r, err := toRat(v)
			if err != nil {
				return nil, err
			}
			if r.Sign() == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			res = new(big.Rat).Quo(res, r)
		}
		return BigR(res), nil

	case OpIDiv, OpMod:
		lft, err := AsInt(args[0])
		if err != nil {
			return nil, err
		}
		rgt, err := AsInt(args[1])
		if err != nil {
			return nil, err
		}
		if rgt.Sign() == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		if op == OpIDiv {
			return BigI(new(big.Int).Quo(lft, rgt)), nil
		}
		return BigI(new(big.Int).Mod(lft, rgt)), nil

	default:
		return nil, fmt.Errorf("cannot evaluate operator `%s`", op)
	}
}

func toRat(v Val) (*big.Rat, error) {
	switch v := v.(type) {
	case IntVal:
		return new(big.Rat).SetInt(v.Val), nil
	case RatVal:
		return v.Val, nil
	default:
		return nil, fmt.Errorf("expected arithmetic value, found `%s`", v)
	}
}

func compareArith(op Op, lft, rgt Val) (bool, error) {
	var cmp int
	switch l := lft.(type) {
	case IntVal:
		r, err := AsInt(rgt)
		if err != nil {
			return false, err
		}
		cmp = l.Val.Cmp(r)
	case RatVal:
		r, err := AsRat(rgt)
		if err != nil {
			return false, err
		}
		cmp = l.Val.Cmp(r)
	default:
		return false, typeErrf(op, "cannot compare `%s` and `%s`", lft, rgt)
	}
	switch op {
	case OpGe:
		return cmp >= 0, nil
	case OpLe:
		return cmp <= 0, nil
	case OpGt:
		return cmp > 0, nil
	default:
		return cmp < 0, nil
	}
}

func foldArith(
	op Op,
	args []Val,
	onInt func(l, r *big.Int) *big.Int,
	onRat func(l, r *big.Rat) *big.Rat,
) (Val, error) {
	switch first := args[0].(type) {
	case IntVal:
		res := first.Val
		for _, v := range args[1:] {
			r, err := AsInt(v)
			if err != nil {
				return nil, typeErrf(op, "cannot apply to `%s` and `%s`", args[0], v)
			}
			res = onInt(res, r)
		}
		return BigI(res), nil
	case RatVal:
		res := first.Val
		for _, v := range args[1:] {
			r, err := AsRat(v)
			if err != nil {
				return nil, typeErrf(op, "cannot apply to `%s` and `%s`", args[0], v)
			}
			res = onRat(res, r)
		}
		return BigR(res), nil
	default:
		return nil, typeErrf(op, "arguments must be arithmetic, found `%s`", args[0])
	}
}

// Eval evaluates a ground term under the given variable valuation.
// The lookup receives each reference and returns its value; a miss is
// an evaluation error.
func Eval(t Term, lookup func(Ref) (Val, bool)) (Val, error) {
	switch t := t.(type) {
	case Cst:
		return t.Val, nil
	case Ref:
		v, ok := lookup(t)
		if !ok {
			return nil, fmt.Errorf("no value for variable `%s`", t)
		}
		return v, nil
	case App:
		args := make([]Val, len(t.Args))
		for i, a := range t.Args {
			v, err := Eval(a, lookup)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return EvalApp(t.Op, args)
	default:
		return nil, fmt.Errorf("cannot evaluate term `%s`", t)
	}
}
