// Package complexity computes structural complexity per function and applies
// bounded entropy dampening for mechanically repetitive code shapes.
//
// Two separate adjustments exist and must not be conflated. Dispatch
// rescaling recounts the branch contribution of a recognized same-subject
// dispatch chain logarithmically (log2 of the arm count instead of one per
// arm); the result is the undamped complexity. Entropy dampening then
// multiplies by a factor bounded to [0.7, 1.0], and the damped value is
// additionally floored at 50% of the undamped one.
package complexity

import (
	"math"

	"github.com/burden-dev/burden/pkg/analyzer/memo"
	"github.com/burden-dev/burden/pkg/ir"
	"github.com/burden-dev/burden/pkg/models"
)

const (
	// DefaultEntropyThreshold is the normalized token entropy below which a
	// body is considered repetitive enough to dampen.
	DefaultEntropyThreshold = 0.4
	// DefaultPatternWeight scales pattern repetition into the dampening
	// factor.
	DefaultPatternWeight = 0.5
	// DefaultMinDispatchArms is the smallest chain treated as dispatch.
	DefaultMinDispatchArms = 3

	// MinDampeningFactor caps how much the entropy mechanism may remove.
	MinDampeningFactor = 0.7
	// MinDampedRatio floors the damped value relative to the undamped one.
	MinDampedRatio = 0.5
)

// Analyzer computes ComplexityMetrics from extraction records. It is a pure
// per-function computation, safe to run in parallel.
type Analyzer struct {
	entropyThreshold float64
	patternWeight    float64
	minDispatchArms  int
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithEntropyThreshold sets the dampening trigger threshold (0-1).
func WithEntropyThreshold(t float64) Option {
	return func(a *Analyzer) {
		if t >= 0 && t <= 1 {
			a.entropyThreshold = t
		}
	}
}

// WithPatternWeight sets the repetition weight (0-1).
func WithPatternWeight(w float64) Option {
	return func(a *Analyzer) {
		if w >= 0 && w <= 1 {
			a.patternWeight = w
		}
	}
}

// WithMinDispatchArms sets the minimum chain length recognized as dispatch.
func WithMinDispatchArms(n int) Option {
	return func(a *Analyzer) {
		if n >= 2 {
			a.minDispatchArms = n
		}
	}
}

// New creates an Analyzer with default thresholds.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		entropyThreshold: DefaultEntropyThreshold,
		patternWeight:    DefaultPatternWeight,
		minDispatchArms:  DefaultMinDispatchArms,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes the adjusted complexity metrics for one function.
func (a *Analyzer) Analyze(fn ir.FunctionRecord) models.ComplexityMetrics {
	m := models.ComplexityMetrics{
		Cyclomatic:      fn.Cyclomatic,
		Cognitive:       fn.Cognitive,
		MaxNesting:      fn.MaxNesting,
		Lines:           fn.Lines,
		DampeningFactor: 1.0,
	}

	undampedCyc := float64(fn.Cyclomatic)
	undampedCog := float64(fn.Cognitive)

	if arms := a.detectDispatch(fn.Arms); arms > 0 {
		m.DispatchArms = arms
		undampedCyc = rescaleArms(undampedCyc, arms)
		undampedCog = rescaleArms(undampedCog, arms)
	}

	entropy := scoreEntropy(fn.Tokens)
	if entropy != nil {
		m.Entropy = entropy
		m.DampeningFactor = a.dampeningFactor(*entropy)
	}

	m.AdjustedCyclomatic = applyDampening(undampedCyc, m.DampeningFactor)
	m.AdjustedCognitive = applyDampening(undampedCog, m.DampeningFactor)
	return m
}

// AnalyzeCached is Analyze with memoization through an explicit cache.
func (a *Analyzer) AnalyzeCached(fn ir.FunctionRecord, cache *memo.Cache[models.ComplexityMetrics]) models.ComplexityMetrics {
	return cache.GetOrCompute(fn.ID, memo.KindComplexity, func() models.ComplexityMetrics {
		return a.Analyze(fn)
	})
}

// rescaleArms swaps the linear per-arm contribution for a logarithmic one.
// Each arm past the recognized shape adds nothing once the reader sees
// "dispatch on X"; log2 keeps very wide dispatchers slightly costlier.
func rescaleArms(raw float64, arms int) float64 {
	logWeight := math.Ceil(math.Log2(float64(arms)))
	rescaled := raw - float64(arms) + logWeight
	if rescaled < 1 {
		return 1
	}
	return rescaled
}

// dampeningFactor derives the bounded multiplier from the entropy score.
// High-entropy bodies are left alone; repetitive low-entropy bodies are
// dampened proportionally to how much of the body is repeated patterns.
func (a *Analyzer) dampeningFactor(e models.EntropyScore) float64 {
	if e.TokenEntropy >= a.entropyThreshold {
		return 1.0
	}
	factor := 1.0 - e.PatternRepetition*a.patternWeight
	if factor < MinDampeningFactor {
		return MinDampeningFactor
	}
	if factor > 1.0 {
		return 1.0
	}
	return factor
}

func applyDampening(undamped, factor float64) float64 {
	damped := undamped * factor
	if floor := undamped * MinDampedRatio; damped < floor {
		return floor
	}
	return damped
}
