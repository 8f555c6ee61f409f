package solver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/big"
	"os/exec"
	"strings"

	"github.com/kinduce/kinduce/internal/logic"
	"github.com/kinduce/kinduce/internal/system"
)

// SMTLib drives an external SMT-LIB 2 solver process (z3, cvc5, ...)
// over its standard streams. Declarations use the `name@step` symbol
// convention so every step variable has a distinct, session-private
// identity.
type SMTLib struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	out      *bufio.Reader
	depth    int
	hasModel bool
	closed   bool
}

// NewSMTLib spawns the solver process. The command is the solver
// binary plus the arguments that make it read SMT-LIB 2 from stdin
// (for z3: `z3 -in`).
func NewSMTLib(command string, args ...string) (*SMTLib, error) {
	cmd := exec.Command(command, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("solver stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("solver stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawning solver `%s`: %w", command, err)
	}

	s := &SMTLib{cmd: cmd, stdin: stdin, out: bufio.NewReader(stdout)}
	if err := s.send("(set-option :produce-models true)"); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// SMTLibFactory builds sessions over the given solver command line.
func SMTLibFactory(command string, args ...string) Factory {
	return func() (Session, error) {
		return NewSMTLib(command, args...)
	}
}

func (s *SMTLib) send(line string) error {
	if s.closed {
		return ErrClosed
	}
	if _, err := io.WriteString(s.stdin, line+"\n"); err != nil {
		return fmt.Errorf("writing to solver: %w", err)
	}
	return nil
}

func (s *SMTLib) Declare(v system.StepVar) error {
	s.hasModel = false
	return s.send(fmt.Sprintf("(declare-const %s %s)", logic.StepSym(v.Name, v.Step), v.Sort.SMT()))
}

func (s *SMTLib) Assert(a system.Assertion) error {
	s.hasModel = false
	return s.send(fmt.Sprintf("(assert %s)", logic.SMT(a.Term, a.Base)))
}

func (s *SMTLib) Push() error {
	if err := s.send("(push 1)"); err != nil {
		return err
	}
	s.hasModel = false
	s.depth++
	return nil
}

func (s *SMTLib) Pop() error {
	if s.closed {
		return ErrClosed
	}
	if s.depth == 0 {
		return ErrNoScope
	}
	if err := s.send("(pop 1)"); err != nil {
		return err
	}
	s.hasModel = false
	s.depth--
	return nil
}

// CheckSat submits a check-sat command and blocks on the solver's
// answer. Cancelling the context kills the solver process; the
// session is then unusable and the context error is surfaced so the
// caller can report the run as cancelled rather than inconclusive.
func (s *SMTLib) CheckSat(ctx context.Context) (Answer, error) {
	s.hasModel = false
	if err := s.send("(check-sat)"); err != nil {
		return Unknown, err
	}

	type reply struct {
		line string
		err  error
	}
	ch := make(chan reply, 1)
	go func() {
		line, err := s.out.ReadString('\n')
		ch <- reply{line: strings.TrimSpace(line), err: err}
	}()

	select {
	case <-ctx.Done():
		_ = s.kill()
		return Unknown, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return Unknown, fmt.Errorf("reading solver answer: %w", r.err)
		}
		switch r.line {
		case "sat":
			s.hasModel = true
			return Sat, nil
		case "unsat":
			return Unsat, nil
		case "unknown", "timeout":
			return Unknown, nil
		default:
			return Unknown, fmt.Errorf("unexpected solver answer `%s`", r.line)
		}
	}
}

func (s *SMTLib) Values(vars []system.StepVar) (Model, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if !s.hasModel {
		return nil, ErrNoModel
	}

	syms := make([]string, len(vars))
	for i, v := range vars {
		syms[i] = logic.StepSym(v.Name, v.Step)
	}
	if err := s.send(fmt.Sprintf("(get-value (%s))", strings.Join(syms, " "))); err != nil {
		return nil, err
	}

	raw, err := s.readSExpr()
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	return parseModel(raw, vars)
}

// readSExpr consumes one balanced s-expression from the solver.
func (s *SMTLib) readSExpr() (string, error) {
	var b strings.Builder
	depth := 0
	for {
		r, _, err := s.out.ReadRune()
		if err != nil {
			return "", err
		}
		b.WriteRune(r)
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return b.String(), nil
			}
		}
	}
}

func (s *SMTLib) kill() error {
	s.closed = true
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	return s.cmd.Wait()
}

func (s *SMTLib) Close() error {
	if s.closed {
		return nil
	}
	_ = s.send("(exit)")
	_ = s.stdin.Close()
	s.closed = true
	return s.cmd.Wait()
}

// sexp is a parsed s-expression: either an atom or a list.
type sexp struct {
	atom string
	list []sexp
}

func parseSExpr(input string) (sexp, error) {
	toks := tokenize(input)
	e, rest, err := parseTokens(toks)
	if err != nil {
		return sexp{}, err
	}
	if len(rest) != 0 {
		return sexp{}, fmt.Errorf("trailing tokens in `%s`", input)
	}
	return e, nil
}

func tokenize(input string) []string {
	input = strings.ReplaceAll(input, "(", " ( ")
	input = strings.ReplaceAll(input, ")", " ) ")
	return strings.Fields(input)
}

func parseTokens(toks []string) (sexp, []string, error) {
	if len(toks) == 0 {
		return sexp{}, nil, fmt.Errorf("unexpected end of solver output")
	}
	tok := toks[0]
	toks = toks[1:]
	if tok == "(" {
		var list []sexp
		for {
			if len(toks) == 0 {
				return sexp{}, nil, fmt.Errorf("unbalanced solver output")
			}
			if toks[0] == ")" {
				return sexp{list: list}, toks[1:], nil
			}
			e, rest, err := parseTokens(toks)
			if err != nil {
				return sexp{}, nil, err
			}
			list = append(list, e)
			toks = rest
		}
	}
	if tok == ")" {
		return sexp{}, nil, fmt.Errorf("unbalanced solver output")
	}
	return sexp{atom: tok}, toks, nil
}

// parseModel interprets a get-value response, a list of
// (symbol value) pairs, against the requested variables.
func parseModel(raw string, vars []system.StepVar) (Model, error) {
	root, err := parseSExpr(raw)
	if err != nil {
		return nil, err
	}
	if root.list == nil {
		return nil, fmt.Errorf("malformed model `%s`", raw)
	}

	byName := make(map[string]system.StepVar, len(vars))
	for _, v := range vars {
		byName[logic.StepSym(v.Name, v.Step)] = v
	}

	model := make(Model, len(vars))
	for _, pair := range root.list {
		if len(pair.list) != 2 || pair.list[0].atom == "" {
			return nil, fmt.Errorf("malformed model entry in `%s`", raw)
		}
		v, ok := byName[pair.list[0].atom]
		if !ok {
			continue
		}
		val, err := parseValue(pair.list[1], v.Sort)
		if err != nil {
			return nil, err
		}
		model[v] = val
	}

	for _, v := range vars {
		if _, ok := model[v]; !ok {
			return nil, fmt.Errorf("model is missing `%s`", v)
		}
	}
	return model, nil
}

func parseValue(e sexp, sort logic.Typ) (logic.Val, error) {
	switch sort {
	case logic.Bool:
		switch e.atom {
		case "true":
			return logic.B(true), nil
		case "false":
			return logic.B(false), nil
		}
		return nil, fmt.Errorf("malformed boolean value")

	case logic.Int:
		i, err := parseIntValue(e)
		if err != nil {
			return nil, err
		}
		return logic.BigI(i), nil

	case logic.Rat:
		r, err := parseRatValue(e)
		if err != nil {
			return nil, err
		}
		return logic.BigR(r), nil

	default:
		return nil, fmt.Errorf("unknown sort `%s`", sort)
	}
}

func parseIntValue(e sexp) (*big.Int, error) {
	if e.atom != "" {
		if i, ok := new(big.Int).SetString(e.atom, 10); ok {
			return i, nil
		}
		return nil, fmt.Errorf("malformed integer value `%s`", e.atom)
	}
	// Negative integers come back as (- n).
	if len(e.list) == 2 && e.list[0].atom == "-" {
		i, err := parseIntValue(e.list[1])
		if err != nil {
			return nil, err
		}
		return i.Neg(i), nil
	}
	return nil, fmt.Errorf("malformed integer value")
}

func parseRatValue(e sexp) (*big.Rat, error) {
	if e.atom != "" {
		// Plain or decimal numeral.
		if r, ok := new(big.Rat).SetString(e.atom); ok {
			return r, nil
		}
		return nil, fmt.Errorf("malformed rational value `%s`", e.atom)
	}
	if len(e.list) == 2 && e.list[0].atom == "-" {
		r, err := parseRatValue(e.list[1])
		if err != nil {
			return nil, err
		}
		return r.Neg(r), nil
	}
	// Quotients come back as (/ p q).
	if len(e.list) == 3 && e.list[0].atom == "/" {
		num, err := parseRatValue(e.list[1])
		if err != nil {
			return nil, err
		}
		den, err := parseRatValue(e.list[2])
		if err != nil {
			return nil, err
		}
		if den.Sign() == 0 {
			return nil, fmt.Errorf("malformed rational value: zero denominator")
		}
		return num.Quo(num, den), nil
	}
	return nil, fmt.Errorf("malformed rational value")
}
