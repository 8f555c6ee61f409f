// Package kinduce proves or disproves safety properties of finite
// transition systems by racing bounded model checking against
// k-induction at increasing depths, backed by a satisfiability
// oracle.
package kinduce

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kinduce/kinduce/internal/engine"
	"github.com/kinduce/kinduce/internal/solver"
	"github.com/kinduce/kinduce/internal/system"
)

// Result is the verdict for one property.
type Result = engine.Outcome

// Trace is a counterexample run, one state per step.
type Trace = engine.Trace

// Status is the kind of verdict.
type Status = engine.Status

const (
	StatusUnknown   = engine.StatusUnknown
	StatusProved    = engine.StatusProved
	StatusFalsified = engine.StatusFalsified
)

// Options configures a verification run.
type Options struct {
	// MaxDepth bounds the explored depth (default engine.DefaultMaxDepth).
	MaxDepth int
	// Solver opens oracle sessions. Defaults to the built-in SAT
	// backend, which handles all-boolean systems.
	Solver solver.Factory
	// Logger receives progress events. Nil disables logging.
	Logger *zap.Logger
}

func (o Options) engineOpts() engine.Options {
	factory := o.Solver
	if factory == nil {
		factory = solver.SATFactory
	}
	return engine.Options{
		MaxDepth: o.MaxDepth,
		Factory:  factory,
		Logger:   o.Logger,
	}
}

// Verify decides the named property of the system: falsified with a
// counterexample trace, proved by induction, or unknown with a
// reason. Cancelling the context yields an unknown verdict, never a
// wrong one.
func Verify(ctx context.Context, sys *system.System, prop string, opts Options) (Result, error) {
	return engine.Verify(ctx, sys, prop, opts.engineOpts())
}

// VerifyAll decides every property of the system, in declaration
// order. Properties proved along the way strengthen the induction
// hypotheses of those still undecided.
func VerifyAll(ctx context.Context, sys *system.System, opts Options) ([]Result, error) {
	return engine.VerifyAll(ctx, sys, opts.engineOpts())
}

// Duration wraps time.Duration so yaml configuration can spell
// timeouts as `30s` or `5m`.
type Duration time.Duration

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Config is the yaml configuration file accepted by the CLI.
type Config struct {
	// Solver is the external SMT-LIB 2 solver command line, e.g.
	// `z3 -in`. Empty selects the built-in SAT backend.
	Solver struct {
		Command string   `yaml:"command"`
		Args    []string `yaml:"args"`
	} `yaml:"solver"`
	MaxDepth int      `yaml:"max-depth"`
	Timeout  Duration `yaml:"timeout"`
}

// Factory builds the solver factory the configuration selects.
func (c Config) Factory() solver.Factory {
	if c.Solver.Command == "" {
		return solver.SATFactory
	}
	return solver.SMTLibFactory(c.Solver.Command, c.Solver.Args...)
}

// LoadConfig parses a yaml configuration file.
func LoadConfig(path string) (Config, error) {
	var config Config

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
