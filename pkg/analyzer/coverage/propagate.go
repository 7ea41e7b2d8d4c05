// Package coverage computes effective test coverage per function: direct
// line coverage from an external report, plus coverage inherited indirectly
// from well-tested callers, propagated through the call graph.
package coverage

import (
	"math"
	"sort"

	"github.com/burden-dev/burden/pkg/analyzer/callgraph"
	"github.com/burden-dev/burden/pkg/analyzer/memo"
	"github.com/burden-dev/burden/pkg/models"
)

const (
	// DefaultWellTestedGate is the direct-coverage fraction above which a
	// function is considered well tested: propagation stops for it, and its
	// coverage can flow downward to its callees.
	DefaultWellTestedGate = 0.8
	// DefaultDecay discounts a caller's coverage per hop of distance.
	DefaultDecay = 0.7
	// DefaultMaxDepth bounds the upward walk.
	DefaultMaxDepth = 3
)

// Propagator computes effective coverage. It is a pure function of
// (function id, graph snapshot, coverage records); results are memoizable
// and safe to compute in parallel per function.
type Propagator struct {
	gate     float64
	decay    float64
	maxDepth int
}

// Option configures a Propagator.
type Option func(*Propagator)

// WithGate overrides the well-tested gate (fraction in (0, 1]).
func WithGate(gate float64) Option {
	return func(p *Propagator) {
		if gate > 0 && gate <= 1 {
			p.gate = gate
		}
	}
}

// WithDecay overrides the per-hop decay factor.
func WithDecay(decay float64) Option {
	return func(p *Propagator) {
		if decay > 0 && decay <= 1 {
			p.decay = decay
		}
	}
}

// WithMaxDepth overrides the hop limit.
func WithMaxDepth(depth int) Option {
	return func(p *Propagator) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// New creates a Propagator with the default gate, decay, and depth.
func New(opts ...Option) *Propagator {
	p := &Propagator{
		gate:     DefaultWellTestedGate,
		decay:    DefaultDecay,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Records maps functions to their externally sourced direct coverage.
type Records map[models.FunctionID]models.CoverageRecord

// Effective computes the effective coverage for id.
//
// A function at or above the gate is already well tested: indirect is zero
// and propagation is skipped. Otherwise the caller graph is walked breadth
// first up to the hop limit; every well-tested caller at distance d
// contributes its coverage discounted by decay^d. Callers below the gate are
// not terminal, their own callers are still visited. Contributions are
// aggregated by maximum, never summed, so overlapping caller paths cannot
// double-count.
func (p *Propagator) Effective(id models.FunctionID, g *callgraph.Graph, records Records) models.EffectiveCoverage {
	rec, hasData := records[id]
	out := models.EffectiveCoverage{
		Direct:  rec.Direct,
		HasData: hasData,
	}

	if hasData && rec.Direct >= p.gate {
		out.Effective = rec.Direct
		return out
	}

	for _, caller := range g.TransitiveCallers(id, p.maxDepth) {
		callerRec, ok := records[caller.ID]
		if !ok || callerRec.Direct < p.gate {
			continue
		}
		contribution := callerRec.Direct * math.Pow(p.decay, float64(caller.Distance))
		out.Sources = append(out.Sources, models.CoverageSource{
			Caller:         caller.ID,
			CallerCoverage: callerRec.Direct,
			HopDistance:    caller.Distance,
			Contribution:   contribution,
		})
		if contribution > out.Indirect {
			out.Indirect = contribution
		}
	}

	sort.SliceStable(out.Sources, func(i, j int) bool {
		if out.Sources[i].HopDistance != out.Sources[j].HopDistance {
			return out.Sources[i].HopDistance < out.Sources[j].HopDistance
		}
		return out.Sources[i].Caller.Less(out.Sources[j].Caller)
	})

	out.Effective = math.Max(out.Direct, out.Indirect)
	return out
}

// EffectiveCached is Effective with memoization through an explicit cache.
func (p *Propagator) EffectiveCached(id models.FunctionID, g *callgraph.Graph, records Records, cache *memo.Cache[models.EffectiveCoverage]) models.EffectiveCoverage {
	return cache.GetOrCompute(id, memo.KindCoverage, func() models.EffectiveCoverage {
		return p.Effective(id, g, records)
	})
}
