package logic

// Reindex returns a copy of the term with every variable reference's
// step offset shifted by delta. Reindexing by delta then by -delta is
// the identity.
func Reindex(t Term, delta int) Term {
	if delta == 0 {
		return t
	}
	switch t := t.(type) {
	case Cst:
		return t
	case Ref:
		return Ref{Name: t.Name, Sort: t.Sort, Offset: t.Offset + delta}
	case App:
		args := make([]Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = Reindex(a, delta)
		}
		return App{Op: t.Op, Args: args, typ: t.typ}
	default:
		return t
	}
}

// Substitute replaces variable references by terms. The mapping is
// keyed by variable name and gives the replacement for offset 0; a
// reference at a higher offset receives the replacement reindexed to
// that offset. Replacements must have the referenced variable's type;
// this is the caller's responsibility (let elimination substitutes
// terms that were built against the binding's declared type).
func Substitute(t Term, subst map[string]Term) Term {
	if len(subst) == 0 {
		return t
	}
	switch t := t.(type) {
	case Cst:
		return t
	case Ref:
		if repl, ok := subst[t.Name]; ok {
			return Reindex(repl, t.Offset)
		}
		return t
	case App:
		args := make([]Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = Substitute(a, subst)
		}
		return App{Op: t.Op, Args: args, typ: t.typ}
	default:
		return t
	}
}

// Refs collects the distinct variable references of a term in
// first-occurrence order.
func Refs(t Term) []Ref {
	var out []Ref
	seen := make(map[Ref]struct{})
	var walk func(Term)
	walk = func(t Term) {
		switch t := t.(type) {
		case Ref:
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		case App:
			for _, a := range t.Args {
				walk(a)
			}
		}
	}
	walk(t)
	return out
}

// MaxOffset returns the largest step offset referenced by the term,
// or -1 if the term references no variable.
func MaxOffset(t Term) int {
	max := -1
	for _, r := range Refs(t) {
		if r.Offset > max {
			max = r.Offset
		}
	}
	return max
}
