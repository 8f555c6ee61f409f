package logic

// Typ is the type of a term: boolean, integer or rational.
type Typ int

const (
	Bool Typ = iota
	Int
	Rat
)

func (t Typ) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Rat:
		return "rat"
	default:
		return "?"
	}
}

// IsArith reports whether the type is an arithmetic one.
func (t Typ) IsArith() bool {
	return t == Int || t == Rat
}

// SMT returns the SMT-LIB 2 sort name for the type.
func (t Typ) SMT() string {
	switch t {
	case Bool:
		return "Bool"
	case Int:
		return "Int"
	case Rat:
		return "Real"
	default:
		return "?"
	}
}
