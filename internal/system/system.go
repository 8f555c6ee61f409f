// Package system defines the finite-state transition system model
// checked by the proof engines: typed state variables, an initial
// predicate, a transition predicate and named candidate properties.
package system

import (
	"fmt"

	"github.com/kinduce/kinduce/internal/logic"
)

// Var is a state variable with global, step-independent identity.
type Var struct {
	Name string
	Sort logic.Typ
}

func (v Var) String() string {
	return fmt.Sprintf("%s: %s", v.Name, v.Sort)
}

// System is a finalized transition system. Init and properties
// reference only current-state (offset 0) variables; the transition
// predicate may reference offsets 0 and 1. Systems are immutable
// after construction; engines only read them.
type System struct {
	vars      []Var
	index     map[string]logic.Typ
	init      logic.Term
	trans     logic.Term
	propNames []string
	props     map[string]logic.Term
}

// Prop is a named candidate property over current-state variables.
type Prop struct {
	Name string
	Body logic.Term
}

// New validates and assembles a transition system.
func New(vars []Var, init, trans logic.Term, props []Prop) (*System, error) {
	index := make(map[string]logic.Typ, len(vars))
	for _, v := range vars {
		if _, ok := index[v.Name]; ok {
			return nil, fmt.Errorf("state variable `%s` declared twice", v.Name)
		}
		index[v.Name] = v.Sort
	}

	s := &System{
		vars:  append([]Var(nil), vars...),
		index: index,
		init:  init,
		trans: trans,
		props: make(map[string]logic.Term, len(props)),
	}

	if err := s.checkTerm("init", init, 0); err != nil {
		return nil, err
	}
	if err := s.checkTerm("trans", trans, 1); err != nil {
		return nil, err
	}
	for _, p := range props {
		if _, ok := s.props[p.Name]; ok {
			return nil, fmt.Errorf("property `%s` declared twice", p.Name)
		}
		if err := s.checkTerm(fmt.Sprintf("property `%s`", p.Name), p.Body, 0); err != nil {
			return nil, err
		}
		if p.Body.Typ() != logic.Bool {
			return nil, fmt.Errorf("property `%s` must be boolean, found `%s`", p.Name, p.Body.Typ())
		}
		s.propNames = append(s.propNames, p.Name)
		s.props[p.Name] = p.Body
	}

	if init.Typ() != logic.Bool {
		return nil, fmt.Errorf("init predicate must be boolean, found `%s`", init.Typ())
	}
	if trans.Typ() != logic.Bool {
		return nil, fmt.Errorf("transition predicate must be boolean, found `%s`", trans.Typ())
	}

	return s, nil
}

// checkTerm verifies every reference names a declared variable with
// its declared type and stays within the allowed step offsets.
func (s *System) checkTerm(what string, t logic.Term, maxOffset int) error {
	for _, r := range logic.Refs(t) {
		sort, ok := s.index[r.Name]
		if !ok {
			return fmt.Errorf("%s references undeclared variable `%s`", what, r.Name)
		}
		if sort != r.Sort {
			return fmt.Errorf("%s references `%s` as `%s`, declared `%s`", what, r.Name, r.Sort, sort)
		}
		if r.Offset < 0 || r.Offset > maxOffset {
			return fmt.Errorf("%s references `%s` at illegal step offset %d", what, r.Name, r.Offset)
		}
	}
	return nil
}

// Vars returns the state variables in declaration order.
func (s *System) Vars() []Var {
	return append([]Var(nil), s.vars...)
}

// Init returns the initial predicate.
func (s *System) Init() logic.Term {
	return s.init
}

// Trans returns the transition predicate.
func (s *System) Trans() logic.Term {
	return s.trans
}

// Props returns the property names in declaration order.
func (s *System) Props() []string {
	return append([]string(nil), s.propNames...)
}

// Prop returns the named property.
func (s *System) Prop(name string) (logic.Term, bool) {
	t, ok := s.props[name]
	return t, ok
}
