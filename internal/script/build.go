package script

import (
	"fmt"

	"github.com/kinduce/kinduce/internal/logic"
	"github.com/kinduce/kinduce/internal/system"
)

// ErrorKind classifies build errors.
type ErrorKind int

const (
	// DuplicateDeclaration: a name declared twice in the same scope.
	DuplicateDeclaration ErrorKind = iota
	// UnboundVariable: a name used with no reaching declaration.
	UnboundVariable
	// UnknownNextReference: a next-state reference to a name that is
	// not a state variable.
	UnknownNextReference
	// BadType: an ill-typed operator application.
	BadType
)

func (k ErrorKind) String() string {
	switch k {
	case DuplicateDeclaration:
		return "duplicate declaration"
	case UnboundVariable:
		return "unbound variable"
	case UnknownNextReference:
		return "unknown next-state reference"
	case BadType:
		return "type error"
	default:
		return "?"
	}
}

// BuildError aborts system construction; the script is rejected as a
// whole.
type BuildError struct {
	Kind ErrorKind
	Name string
	Span Span
	Err  error
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("%s at %s", e.Kind, e.Span)
	if e.Name != "" {
		msg = fmt.Sprintf("%s: `%s` at %s", e.Kind, e.Name, e.Span)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Diagnostic is a non-fatal warning produced while building.
type Diagnostic struct {
	Message string
	Span    Span
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at %s", d.Message, d.Span)
}

// builder walks the script AST against a scope stack.
type builder struct {
	sc    *scope
	diags []Diagnostic
}

// Build resolves the script's scoping and assembles a flat, immutable
// transition system, plus non-fatal diagnostics such as unused let
// bindings.
func Build(s *Script) (*system.System, []Diagnostic, error) {
	b := &builder{sc: newScope()}

	var vars []system.Var
	for _, d := range s.Decls {
		if !b.sc.declare(d.Name, &binding{term: logic.Curr(d.Name, d.Sort), span: d.Span}) {
			return nil, nil, &BuildError{Kind: DuplicateDeclaration, Name: d.Name, Span: d.Span}
		}
		vars = append(vars, system.Var{Name: d.Name, Sort: d.Sort})
	}

	// Top-level lets share the root scope with the declarations, so a
	// let reusing a declared name is a duplicate, not a shadow.
	for _, l := range s.Lets {
		rhs, err := b.resolve(l.RHS, false)
		if err != nil {
			return nil, nil, err
		}
		if !b.sc.declare(l.Name, &binding{term: rhs, let: true, span: l.Span}) {
			return nil, nil, &BuildError{Kind: DuplicateDeclaration, Name: l.Name, Span: l.Span}
		}
	}

	init, err := b.resolve(s.Init, false)
	if err != nil {
		return nil, nil, err
	}
	trans, err := b.resolve(s.Trans, true)
	if err != nil {
		return nil, nil, err
	}

	var props []system.Prop
	for _, p := range s.Props {
		body, err := b.resolve(p.Body, false)
		if err != nil {
			return nil, nil, err
		}
		props = append(props, system.Prop{Name: p.Name, Body: body})
	}

	b.reportUnused(b.sc.pop())

	sys, err := system.New(vars, init, trans, props)
	if err != nil {
		return nil, nil, err
	}
	return sys, b.diags, nil
}

// resolve converts an expression node into a term, resolving names
// against the current scope. nextOK permits next-state references;
// only the transition block sets it.
func (b *builder) resolve(e Expr, nextOK bool) (logic.Term, error) {
	switch e := e.(type) {
	case Lit:
		return logic.Const(e.Val), nil

	case Ident:
		bind, ok := b.sc.lookup(e.Name)
		if !ok {
			return nil, &BuildError{Kind: UnboundVariable, Name: e.Name, Span: e.Span}
		}
		bind.used = true
		return bind.term, nil

	case NextIdent:
		if !nextOK {
			return nil, &BuildError{Kind: UnknownNextReference, Name: e.Name, Span: e.Span,
				Err: fmt.Errorf("next-state references are only legal in the transition block")}
		}
		bind, ok := b.sc.lookup(e.Name)
		if !ok {
			return nil, &BuildError{Kind: UnboundVariable, Name: e.Name, Span: e.Span}
		}
		if bind.let {
			return nil, &BuildError{Kind: UnknownNextReference, Name: e.Name, Span: e.Span,
				Err: fmt.Errorf("`%s` is let-bound, not a state variable", e.Name)}
		}
		bind.used = true
		return logic.Reindex(bind.term, 1), nil

	case Apply:
		args := make([]logic.Term, len(e.Args))
		for i, a := range e.Args {
			t, err := b.resolve(a, nextOK)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		t, err := logic.NewApp(e.Op, args...)
		if err != nil {
			return nil, &BuildError{Kind: BadType, Span: e.Span, Err: err}
		}
		return t, nil

	case LetIn:
		b.sc.push()
		for _, bind := range e.Bindings {
			rhs, err := b.resolve(bind.RHS, nextOK)
			if err != nil {
				b.sc.pop()
				return nil, err
			}
			if !b.sc.declare(bind.Name, &binding{term: rhs, let: true, span: bind.Span}) {
				b.sc.pop()
				return nil, &BuildError{Kind: DuplicateDeclaration, Name: bind.Name, Span: bind.Span}
			}
		}
		body, err := b.resolve(e.Body, nextOK)
		b.reportUnused(b.sc.pop())
		if err != nil {
			return nil, err
		}
		return body, nil

	default:
		return nil, fmt.Errorf("unexpected expression node %T", e)
	}
}

func (b *builder) reportUnused(frame map[string]*binding) {
	for name, bind := range frame {
		if bind.let && !bind.used {
			b.diags = append(b.diags, Diagnostic{
				Message: fmt.Sprintf("unused let binding `%s`", name),
				Span:    bind.span,
			})
		}
	}
}
