package engine

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kinduce/kinduce/internal/logic"
	"github.com/kinduce/kinduce/internal/solver"
	"github.com/kinduce/kinduce/internal/system"
)

// DefaultMaxDepth bounds the search when the caller does not.
const DefaultMaxDepth = 100

// Options configures a verification run.
type Options struct {
	// MaxDepth bounds the explored depth; DefaultMaxDepth when zero.
	MaxDepth int
	// Factory opens oracle sessions; two per property.
	Factory solver.Factory
	// Logger receives per-depth progress. Nil disables logging.
	Logger *zap.Logger
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// search is the per-property pair of strategies. Each owns a private
// oracle session so the two never contend on one backtracking stack.
type search struct {
	name string
	bmc  *BMC
	ind  *Induction

	bmcOut *Outcome
	indOut *Outcome
}

func (s *search) close() {
	// Session teardown also aborts any oracle left mid-flight.
	// Errors here cannot change the verdict.
	_ = s.bmc.sess.Close()
	_ = s.ind.sess.Close()
}

// Verify runs BMC and k-induction for one property until a strategy
// concludes or the depth bound is exhausted.
func Verify(ctx context.Context, sys *system.System, prop string, opts Options) (Outcome, error) {
	outs, err := verify(ctx, sys, []string{prop}, opts)
	if err != nil {
		return Outcome{}, err
	}
	return outs[0], nil
}

// VerifyAll verifies every property of the system. All open
// properties advance through the same depth rounds; a property
// concluded either way leaves the race, and a proved one is conjoined
// into the induction hypotheses of those still open.
func VerifyAll(ctx context.Context, sys *system.System, opts Options) ([]Outcome, error) {
	return verify(ctx, sys, sys.Props(), opts)
}

func verify(ctx context.Context, sys *system.System, props []string, opts Options) ([]Outcome, error) {
	if opts.Factory == nil {
		return nil, errors.New("engine: no solver factory configured")
	}
	log := opts.logger()
	maxDepth := opts.maxDepth()

	open := make([]*search, 0, len(props))
	defer func() {
		for _, s := range open {
			s.close()
		}
	}()
	for _, name := range props {
		s, err := newSearch(sys, name, opts.Factory)
		if err != nil {
			return nil, err
		}
		open = append(open, s)
	}

	done := make(map[string]Outcome, len(props))

	for depth := 0; depth <= maxDepth && len(open) > 0; depth++ {
		if err := runRound(ctx, open, depth); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				for _, s := range open {
					done[s.name] = *Inconclusive(s.name, depth, ReasonCancelled)
				}
				open = closeAll(open)
				break
			}
			return nil, err
		}

		var still []*search
		var proved []logic.Term
		for _, s := range open {
			out := s.conclude()
			if out == nil {
				still = append(still, s)
				continue
			}
			log.Info("property concluded",
				zap.String("property", s.name),
				zap.String("status", out.Status.String()),
				zap.Int("depth", out.Depth))
			done[s.name] = *out
			s.close()

			if out.Status == StatusProved {
				inv, _ := sys.Prop(s.name)
				proved = append(proved, inv)
			}
		}
		// A proved invariant is sound to assume when proving the
		// remaining properties.
		for _, inv := range proved {
			for _, other := range still {
				if err := other.ind.Strengthen(inv); err != nil {
					return nil, err
				}
			}
		}
		open = still
		if len(open) > 0 {
			log.Debug("round inconclusive",
				zap.Int("depth", depth), zap.Int("open", len(open)))
		}
	}

	for _, s := range open {
		done[s.name] = *Inconclusive(s.name, maxDepth, ReasonDepthExhausted)
	}
	open = closeAll(open)

	outs := make([]Outcome, len(props))
	for i, name := range props {
		outs[i] = done[name]
	}
	return outs, nil
}

func newSearch(sys *system.System, name string, factory solver.Factory) (*search, error) {
	bmcSess, err := factory()
	if err != nil {
		return nil, err
	}
	bmc, err := NewBMC(sys, bmcSess, name)
	if err != nil {
		_ = bmcSess.Close()
		return nil, err
	}
	indSess, err := factory()
	if err != nil {
		_ = bmcSess.Close()
		return nil, err
	}
	ind, err := NewInduction(sys, indSess, name)
	if err != nil {
		_ = bmcSess.Close()
		_ = indSess.Close()
		return nil, err
	}
	return &search{name: name, bmc: bmc, ind: ind}, nil
}

// runRound advances every open property by one depth, running the
// two strategies of each as concurrent tasks joined before the next
// round. Induction starts at depth 1; its round-0 slot is idle.
func runRound(ctx context.Context, open []*search, depth int) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range open {
		s := s
		s.bmcOut, s.indOut = nil, nil

		g.Go(func() error {
			out, err := s.bmc.Step(ctx)
			s.bmcOut = out
			return err
		})
		if depth >= 1 {
			g.Go(func() error {
				out, err := s.ind.Step(ctx)
				s.indOut = out
				return err
			})
		}
	}
	return g.Wait()
}

// conclude merges the round's strategy outcomes for one property.
// Falsification is definitive and takes precedence over a concurrent
// proof; a proof beats inconclusiveness; a single strategy going
// terminal-unknown ends the race for this property.
func (s *search) conclude() *Outcome {
	if s.bmcOut != nil && s.bmcOut.Status == StatusFalsified {
		return s.bmcOut
	}
	if s.indOut != nil && s.indOut.Status == StatusProved {
		return s.indOut
	}
	if s.bmcOut != nil {
		return s.bmcOut
	}
	return s.indOut
}

func closeAll(open []*search) []*search {
	for _, s := range open {
		s.close()
	}
	return nil
}
