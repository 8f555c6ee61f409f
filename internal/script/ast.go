// Package script turns parsed verification scripts into transition
// systems. The textual grammar lives in a separate front end; this
// package consumes its output AST and owns semantic scoping:
// shadowing, duplicate and undefined names, next-state references.
package script

import (
	"fmt"

	"github.com/kinduce/kinduce/internal/logic"
)

// Span locates an AST node in the script source.
type Span struct {
	Line int
	Col  int
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Col)
}

// Expr is a script expression node.
type Expr interface {
	isExpr()
	Pos() Span
	String() string
}

// Ident references a declared variable or let binding.
type Ident struct {
	Name string
	Span Span
}

func (Ident) isExpr()     {}
func (e Ident) Pos() Span { return e.Span }
func (e Ident) String() string {
	return e.Name
}

// NextIdent references the next-state value of a state variable.
// Only legal inside the transition block.
type NextIdent struct {
	Name string
	Span Span
}

func (NextIdent) isExpr()     {}
func (e NextIdent) Pos() Span { return e.Span }
func (e NextIdent) String() string {
	return e.Name + "'"
}

// Lit is a literal constant.
type Lit struct {
	Val  logic.Val
	Span Span
}

func (Lit) isExpr()     {}
func (e Lit) Pos() Span { return e.Span }
func (e Lit) String() string {
	return e.Val.String()
}

// Apply is an n-ary operator application.
type Apply struct {
	Op   logic.Op
	Args []Expr
	Span Span
}

func (Apply) isExpr()     {}
func (e Apply) Pos() Span { return e.Span }
func (e Apply) String() string {
	s := "(" + e.Op.String()
	for _, a := range e.Args {
		s += " " + a.String()
	}
	return s + ")"
}

// LetIn binds names to expressions for the scope of its body. The
// bindings are sequential: each may reference the previous ones.
type LetIn struct {
	Bindings []Binding
	Body     Expr
	Span     Span
}

func (LetIn) isExpr()     {}
func (e LetIn) Pos() Span { return e.Span }
func (e LetIn) String() string {
	s := "(let ("
	for i, b := range e.Bindings {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("(%s %s)", b.Name, b.RHS)
	}
	return s + ") " + e.Body.String() + ")"
}

// Binding is a single let binding.
type Binding struct {
	Name string
	RHS  Expr
	Span Span
}

// Decl declares a typed state variable.
type Decl struct {
	Name string
	Sort logic.Typ
	Span Span
}

// PropDef is a named candidate property.
type PropDef struct {
	Name string
	Body Expr
	Span Span
}

// Script is a parsed verification script: state variable
// declarations, top-level let bindings, the init and trans blocks and
// named candidate properties.
type Script struct {
	Decls []Decl
	Lets  []Binding
	Init  Expr
	Trans Expr
	Props []PropDef
}

// Constructor helpers, mainly for tests and embedders assembling
// scripts without the textual front end.

// ID references a variable.
func ID(name string) Expr {
	return Ident{Name: name}
}

// NextID references a variable's next-state value.
func NextID(name string) Expr {
	return NextIdent{Name: name}
}

// BoolLit creates a boolean literal.
func BoolLit(b bool) Expr {
	return Lit{Val: logic.B(b)}
}

// IntLit creates an integer literal.
func IntLit(i int64) Expr {
	return Lit{Val: logic.I(i)}
}

// RatLit creates a rational literal.
func RatLit(num, den int64) Expr {
	return Lit{Val: logic.R(num, den)}
}

// Ap creates an operator application.
func Ap(op logic.Op, args ...Expr) Expr {
	return Apply{Op: op, Args: args}
}

// Let creates a let expression with a single binding.
func Let(name string, rhs, body Expr) Expr {
	return LetIn{Bindings: []Binding{{Name: name, RHS: rhs}}, Body: body}
}
