package logic

import (
	"fmt"
	"math/big"
)

// Val represents a constant value: a boolean, an arbitrary-precision
// integer or an arbitrary-precision rational.
type Val interface {
	isVal()
	Typ() Typ
	String() string
	Equal(other Val) bool
}

// BoolVal is a boolean constant.
type BoolVal struct {
	Val bool
}

func (BoolVal) isVal()   {}
func (BoolVal) Typ() Typ { return Bool }
func (v BoolVal) String() string {
	return fmt.Sprintf("%t", v.Val)
}

func (v BoolVal) Equal(other Val) bool {
	o, ok := other.(BoolVal)
	return ok && v.Val == o.Val
}

// IntVal is an integer constant.
type IntVal struct {
	Val *big.Int
}

func (IntVal) isVal()   {}
func (IntVal) Typ() Typ { return Int }
func (v IntVal) String() string {
	if v.Val.Sign() < 0 {
		return fmt.Sprintf("(- %s)", new(big.Int).Neg(v.Val))
	}
	return v.Val.String()
}

func (v IntVal) Equal(other Val) bool {
	o, ok := other.(IntVal)
	return ok && v.Val.Cmp(o.Val) == 0
}

// RatVal is a rational constant.
type RatVal struct {
	Val *big.Rat
}

func (RatVal) isVal()   {}
func (RatVal) Typ() Typ { return Rat }
func (v RatVal) String() string {
	num, den := v.Val.Num(), v.Val.Denom()
	if num.Sign() < 0 {
		return fmt.Sprintf("(- (/ %s %s))", new(big.Int).Neg(num), den)
	}
	return fmt.Sprintf("(/ %s %s)", num, den)
}

func (v RatVal) Equal(other Val) bool {
	o, ok := other.(RatVal)
	return ok && v.Val.Cmp(o.Val) == 0
}

// Helper constructors.

// B creates a boolean value.
func B(b bool) Val {
	return BoolVal{Val: b}
}

// I creates an integer value from an int64.
func I(i int64) Val {
	return IntVal{Val: big.NewInt(i)}
}

// BigI creates an integer value from a big.Int.
func BigI(i *big.Int) Val {
	return IntVal{Val: i}
}

// R creates a rational value num/den.
func R(num, den int64) Val {
	return RatVal{Val: big.NewRat(num, den)}
}

// BigR creates a rational value from a big.Rat.
func BigR(r *big.Rat) Val {
	return RatVal{Val: r}
}

// AsBool unwraps a boolean value.
func AsBool(v Val) (bool, error) {
	if b, ok := v.(BoolVal); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected boolean, found `%s`", v)
}

// AsInt unwraps an integer value.
func AsInt(v Val) (*big.Int, error) {
	if i, ok := v.(IntVal); ok {
		return i.Val, nil
	}
	return nil, fmt.Errorf("expected integer, found `%s`", v)
}

// AsRat unwraps a rational value.
func AsRat(v Val) (*big.Rat, error) {
	if r, ok := v.(RatVal); ok {
		return r.Val, nil
	}
	return nil, fmt.Errorf("expected rational, found `%s`", v)
}
