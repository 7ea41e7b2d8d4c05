package debt

import (
	"github.com/burden-dev/burden/pkg/models"
)

// Weights controls how much each factor contributes to the final score.
type Weights struct {
	Coverage   float64 `json:"coverage" koanf:"coverage"`
	Complexity float64 `json:"complexity" koanf:"complexity"`
	Dependency float64 `json:"dependency" koanf:"dependency"`
}

// DefaultWeights returns the standard factor weighting. Coverage dominates:
// untested complex code is the debt this tool exists to find.
func DefaultWeights() Weights {
	return Weights{
		Coverage:   0.50,
		Complexity: 0.35,
		Dependency: 0.15,
	}
}

// Normalized rescales the weights to sum to 1. A degenerate all-zero set
// falls back to the defaults.
func (w Weights) Normalized() Weights {
	sum := w.Coverage + w.Complexity + w.Dependency
	if sum <= 0 {
		return DefaultWeights()
	}
	return Weights{
		Coverage:   w.Coverage / sum,
		Complexity: w.Complexity / sum,
		Dependency: w.Dependency / sum,
	}
}

// normalizeComplexity maps combined complexity onto the 0-10 factor scale.
// The trivial range is nearly free so that decomposing a dense function into
// many simple ones lowers the aggregate: a hundred straight-line helpers must
// weigh less than ten dense monsters. Above the readable knee the curve is
// strongly compressed so a 40-branch monster does not drown out everything
// else.
func normalizeComplexity(combined float64) float64 {
	switch {
	case combined <= 0:
		return 0
	case combined <= 3:
		return combined * 0.1
	case combined <= 5:
		return 0.3 + (combined-3)*1.35
	case combined <= 10:
		return 3 + (combined-5)*0.6
	default:
		extra := (combined - 10) * 0.2
		if extra > 4 {
			extra = 4
		}
		return 6 + extra
	}
}

// coverageFactor scores the coverage gap, scaled by the function's complexity
// factor so an untested one-liner is not flagged alongside an untested
// monster. Missing coverage data falls back to treating the function as fully
// uncovered; the breakdown records the fallback.
func coverageFactor(cov models.EffectiveCoverage, complexityFactor float64) float64 {
	gap := 1.0
	if cov.HasData {
		gap = 1.0 - cov.Effective
		if gap < 0 {
			gap = 0
		}
	}
	return gap * complexityFactor
}

// callerBuckets maps upstream caller counts onto the 0-10 scale. Exact
// counts matter less than magnitude; buckets keep scores stable when a
// refactor shifts a couple of call sites.
func callerBucket(callers int) float64 {
	switch {
	case callers <= 0:
		return 0
	case callers <= 2:
		return 2
	case callers <= 5:
		return 4
	case callers <= 10:
		return 6
	case callers <= 20:
		return 8
	default:
		return 10
	}
}

const centralityBlend = 0.3

// dependencyFactor blends the bucketed caller count with normalized PageRank
// centrality. PageRank catches hub functions whose direct caller count
// understates how much of the graph funnels through them.
func dependencyFactor(callers int, pagerank float64) float64 {
	return (1-centralityBlend)*callerBucket(callers) + centralityBlend*pagerank*10
}
