package logic

import (
	"fmt"
	"io"
	"strings"
)

// StepSym renders the SMT-LIB 2 symbol of variable name at an
// absolute step, following the `name@step` convention.
func StepSym(name string, step int) string {
	return fmt.Sprintf("%s@%d", name, step)
}

// WriteSMT renders the term in SMT-LIB 2 syntax, placing variable
// references at absolute steps relative to base: a reference with
// offset d is rendered at step base+d.
func WriteSMT(w io.Writer, t Term, base int) error {
	switch t := t.(type) {
	case Cst:
		_, err := io.WriteString(w, t.Val.String())
		return err
	case Ref:
		_, err := io.WriteString(w, StepSym(t.Name, base+t.Offset))
		return err
	case App:
		if _, err := fmt.Fprintf(w, "(%s", t.Op); err != nil {
			return err
		}
		for _, a := range t.Args {
			if _, err := io.WriteString(w, " "); err != nil {
				return err
			}
			if err := WriteSMT(w, a, base); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, ")")
		return err
	default:
		return fmt.Errorf("cannot render term `%s`", t)
	}
}

// SMT renders the term in SMT-LIB 2 syntax at the given base step.
func SMT(t Term, base int) string {
	var b strings.Builder
	// strings.Builder writes never fail.
	_ = WriteSMT(&b, t, base)
	return b.String()
}
