package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/kinduce/kinduce/internal/logic"
)

// The JSON form of a script mirrors the AST one-to-one so that any
// front end can hand systems over without linking against the parser:
//
//	{
//	  "vars":  [["cnt", "int"], ["reset", "bool"]],
//	  "lets":  [["inc", ["+", "cnt", 1]]],
//	  "init":  ["=", "cnt", 0],
//	  "trans": ["=", "cnt'", ["ite", "reset", 0, "inc"]],
//	  "props": [["cnt-positive", [">=", "cnt", 0]]]
//	}
//
// Expressions are JSON s-expressions: a string is an identifier (a
// trailing apostrophe marks a next-state reference), numbers and
// booleans are literals, `"p/q"` strings inside a ["rat", ...] node
// are rationals and an array is an operator application or a
// ["let", [[name, rhs], ...], body] form.

type jsonScript struct {
	Vars  [][2]string       `json:"vars"`
	Lets  []json.RawMessage `json:"lets,omitempty"`
	Init  json.RawMessage   `json:"init"`
	Trans json.RawMessage   `json:"trans"`
	Props []json.RawMessage `json:"props"`
}

// DecodeJSON reads a script from its JSON interchange form.
func DecodeJSON(data []byte) (*Script, error) {
	var raw jsonScript
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("malformed script: %w", err)
	}

	s := &Script{}
	for _, v := range raw.Vars {
		sort, err := sortOf(v[1])
		if err != nil {
			return nil, err
		}
		s.Decls = append(s.Decls, Decl{Name: v[0], Sort: sort})
	}

	for _, l := range raw.Lets {
		name, rhs, err := decodePair(l)
		if err != nil {
			return nil, fmt.Errorf("malformed let binding: %w", err)
		}
		s.Lets = append(s.Lets, Binding{Name: name, RHS: rhs})
	}

	var err error
	if s.Init, err = decodeExpr(raw.Init); err != nil {
		return nil, fmt.Errorf("malformed init: %w", err)
	}
	if s.Trans, err = decodeExpr(raw.Trans); err != nil {
		return nil, fmt.Errorf("malformed trans: %w", err)
	}
	for _, p := range raw.Props {
		name, body, err := decodePair(p)
		if err != nil {
			return nil, fmt.Errorf("malformed property: %w", err)
		}
		s.Props = append(s.Props, PropDef{Name: name, Body: body})
	}
	return s, nil
}

func sortOf(s string) (logic.Typ, error) {
	switch s {
	case "bool":
		return logic.Bool, nil
	case "int":
		return logic.Int, nil
	case "rat":
		return logic.Rat, nil
	default:
		return 0, fmt.Errorf("unknown type `%s`", s)
	}
}

// decodePair decodes a two-element [name, expr] array.
func decodePair(raw json.RawMessage) (string, Expr, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", nil, err
	}
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("expected [name, expression], got %d element(s)", len(parts))
	}
	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return "", nil, err
	}
	e, err := decodeExpr(parts[1])
	if err != nil {
		return "", nil, err
	}
	return name, e, nil
}

func decodeExpr(raw json.RawMessage) (Expr, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return exprOf(v)
}

func exprOf(v any) (Expr, error) {
	switch v := v.(type) {
	case bool:
		return BoolLit(v), nil

	case json.Number:
		i, ok := new(big.Int).SetString(v.String(), 10)
		if !ok {
			return nil, fmt.Errorf("non-integer literal `%s` (use [\"rat\", \"p/q\"])", v)
		}
		return Lit{Val: logic.BigI(i)}, nil

	case string:
		if name, next := strings.CutSuffix(v, "'"); next {
			return NextID(name), nil
		}
		return ID(v), nil

	case []any:
		return appOf(v)

	default:
		return nil, fmt.Errorf("unexpected expression element %T", v)
	}
}

func appOf(parts []any) (Expr, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty application")
	}
	head, ok := parts[0].(string)
	if !ok {
		return nil, fmt.Errorf("application head must be an operator name, got %v", parts[0])
	}

	switch head {
	case "rat":
		if len(parts) != 2 {
			return nil, fmt.Errorf("`rat` expects one `\"p/q\"` argument")
		}
		lit, ok := parts[1].(string)
		if !ok {
			return nil, fmt.Errorf("`rat` expects a string argument")
		}
		r, ok := new(big.Rat).SetString(lit)
		if !ok {
			return nil, fmt.Errorf("malformed rational `%s`", lit)
		}
		return Lit{Val: logic.BigR(r)}, nil

	case "let":
		if len(parts) != 3 {
			return nil, fmt.Errorf("`let` expects bindings and a body")
		}
		rawBinds, ok := parts[1].([]any)
		if !ok {
			return nil, fmt.Errorf("`let` bindings must be an array")
		}
		var binds []Binding
		for _, rb := range rawBinds {
			pair, ok := rb.([]any)
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("`let` binding must be a [name, expression] pair")
			}
			name, ok := pair[0].(string)
			if !ok {
				return nil, fmt.Errorf("`let` binding name must be a string")
			}
			rhs, err := exprOf(pair[1])
			if err != nil {
				return nil, err
			}
			binds = append(binds, Binding{Name: name, RHS: rhs})
		}
		body, err := exprOf(parts[2])
		if err != nil {
			return nil, err
		}
		return LetIn{Bindings: binds, Body: body}, nil

	default:
		op, ok := logic.OpOf(head)
		if !ok {
			return nil, fmt.Errorf("unknown operator `%s`", head)
		}
		args := make([]Expr, 0, len(parts)-1)
		for _, p := range parts[1:] {
			a, err := exprOf(p)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		return Apply{Op: op, Args: args}, nil
	}
}
