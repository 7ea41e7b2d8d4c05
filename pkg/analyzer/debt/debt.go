// Package debt composes the per-function analyses into a single ranked debt
// score. The composer owns the pipeline: build the call graph from an
// extraction inventory, run complexity, coverage propagation, purity and role
// classification per function in parallel, then weight the factors into a
// final 0-10 score.
package debt

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/burden-dev/burden/pkg/analyzer/callgraph"
	"github.com/burden-dev/burden/pkg/analyzer/complexity"
	"github.com/burden-dev/burden/pkg/analyzer/coverage"
	"github.com/burden-dev/burden/pkg/analyzer/memo"
	"github.com/burden-dev/burden/pkg/analyzer/purity"
	"github.com/burden-dev/burden/pkg/analyzer/roles"
	"github.com/burden-dev/burden/pkg/ir"
	"github.com/burden-dev/burden/pkg/models"
)

// MaxScore caps every final score.
const MaxScore = 10.0

// MinRetainedRatio is the combined floor: entropy dampening and the role
// multiplier together never remove more than half of the raw score.
const MinRetainedRatio = 0.5

// Analyzer scores an inventory. Construct with New; safe for a single run at
// a time.
type Analyzer struct {
	weights     Weights
	complexity  *complexity.Analyzer
	purity      *purity.Analyzer
	roles       *roles.Classifier
	coverage    *coverage.Propagator
	adjustments Adjustments
	entryPreds  []callgraph.Predicate
	maxWorkers  int
	explain     bool
}

// Option configures the Analyzer.
type Option func(*Analyzer)

// WithWeights sets the factor weights. They are normalized to sum 1 at
// scoring time.
func WithWeights(w Weights) Option {
	return func(a *Analyzer) { a.weights = w }
}

// WithComplexityOptions forwards options to the complexity analyzer.
func WithComplexityOptions(opts ...complexity.Option) Option {
	return func(a *Analyzer) { a.complexity = complexity.New(opts...) }
}

// WithRoleOptions forwards options to the role classifier.
func WithRoleOptions(opts ...roles.Option) Option {
	return func(a *Analyzer) { a.roles = roles.New(opts...) }
}

// WithCoverageOptions forwards options to the coverage propagator.
func WithCoverageOptions(opts ...coverage.Option) Option {
	return func(a *Analyzer) { a.coverage = coverage.New(opts...) }
}

// WithAdjustments supplies validated external adjustment bonuses.
func WithAdjustments(adj Adjustments) Option {
	return func(a *Analyzer) { a.adjustments = adj }
}

// WithEntryPredicates extends entry-point detection beyond the defaults.
func WithEntryPredicates(preds ...callgraph.Predicate) Option {
	return func(a *Analyzer) { a.entryPreds = preds }
}

// WithMaxWorkers bounds the scoring worker pool. Values <= 0 mean 2x NumCPU.
func WithMaxWorkers(n int) Option {
	return func(a *Analyzer) { a.maxWorkers = n }
}

// WithDiagnostics enables the per-function diagnostics snapshot in the
// report.
func WithDiagnostics(enabled bool) Option {
	return func(a *Analyzer) { a.explain = enabled }
}

// New creates a debt Analyzer with default settings.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		weights:    DefaultWeights(),
		complexity: complexity.New(),
		purity:     purity.New(),
		roles:      roles.New(),
		coverage:   coverage.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze scores every non-test function in the inventory. A failed function
// becomes an errored DebtItem; only graph construction errors abort the run.
func (a *Analyzer) Analyze(ctx context.Context, inv *ir.Inventory, records coverage.Records) (*models.DebtReport, error) {
	graphOpts := []callgraph.Option{}
	if len(a.entryPreds) > 0 {
		graphOpts = append(graphOpts, callgraph.WithEntryPredicates(append(callgraph.DefaultPredicates(), a.entryPreds...)...))
	}
	g, err := callgraph.FromInventory(inv, graphOpts...)
	if err != nil {
		return nil, err
	}
	centrality := g.NormalizedPageRank()
	weights := a.weights.Normalized()

	covCache := memo.New[models.EffectiveCoverage]()
	cxCache := memo.New[models.ComplexityMetrics]()
	purCache := memo.New[models.PurityAnalysis]()

	report := &models.DebtReport{
		Summary: models.DebtSummary{
			TotalFunctions: len(inv.Functions),
			FilesAnalyzed:  inv.Files,
			AnalyzedAt:     time.Now().UTC(),
		},
	}
	if a.explain {
		report.Diagnostics = make(map[string]models.FunctionDiagnostics, len(inv.Functions))
	}

	workers := a.maxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}

	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(workers)
	for _, fn := range inv.Functions {
		if fn.IsTest {
			continue
		}
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			item, diag := a.scoreOne(fn, g, records, weights, centrality, covCache, cxCache, purCache)

			mu.Lock()
			defer mu.Unlock()
			report.Items = append(report.Items, item)
			if item.Error != "" {
				report.Summary.Errored++
			} else {
				report.Summary.Scored++
			}
			if diag.Coverage.HasData {
				report.Summary.WithCoverage++
			}
			if a.explain {
				report.Diagnostics[fn.ID.String()] = diag
			}
		})
	}
	p.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	models.SortDebtItems(report.Items)
	return report, nil
}

// scoreOne runs the full factor pipeline for a single function.
func (a *Analyzer) scoreOne(
	fn ir.FunctionRecord,
	g *callgraph.Graph,
	records coverage.Records,
	weights Weights,
	centrality map[models.FunctionID]float64,
	covCache *memo.Cache[models.EffectiveCoverage],
	cxCache *memo.Cache[models.ComplexityMetrics],
	purCache *memo.Cache[models.PurityAnalysis],
) (models.DebtItem, models.FunctionDiagnostics) {
	if err := fn.ID.Validate(); err != nil {
		return models.DebtItem{Function: fn.ID, Error: err.Error()}, models.FunctionDiagnostics{}
	}

	cx := a.complexity.AnalyzeCached(fn, cxCache)
	cov := a.coverage.EffectiveCached(fn.ID, g, records, covCache)
	pur := a.purity.AnalyzeCached(fn, purCache)
	role := a.roles.Classify(fn, g, cx, pur)

	diag := models.FunctionDiagnostics{
		Complexity: cx,
		Coverage:   cov,
		Purity:     pur,
		Role:       role,
		NodeClass:  g.Classify(fn.ID),
	}

	item := models.DebtItem{
		Function: fn.ID,
		Factors: models.FactorBreakdown{
			RoleMultiplier:  role.Multiplier,
			Adjustment:      a.adjustments.For(fn.ID),
			CoverageMissing: !cov.HasData,
		},
	}

	// Simple and well tested: nothing to pay down.
	if cx.IsTrivial() && cov.HasData && cov.Effective >= coverage.DefaultWellTestedGate {
		return item, diag
	}

	item.Factors.Complexity = normalizeComplexity(cx.CombinedComplexity())
	item.Factors.Coverage = coverageFactor(cov, item.Factors.Complexity)
	item.Factors.Dependency = dependencyFactor(g.CallerCount(fn.ID), centrality[fn.ID])

	base := weights.Complexity*item.Factors.Complexity +
		weights.Coverage*item.Factors.Coverage +
		weights.Dependency*item.Factors.Dependency
	score := base*role.Multiplier + item.Factors.Adjustment

	// Raw score: same factors without entropy dampening and without the role
	// multiplier. Entropy dampening never hits its own internal floor within
	// [0.7, 1.0], so dividing it back out reconstructs the undamped value.
	undamped := normalizeComplexity(cx.CombinedComplexity() / cx.DampeningFactor)
	raw := weights.Complexity*undamped +
		weights.Coverage*coverageFactor(cov, undamped) +
		weights.Dependency*item.Factors.Dependency

	if floor := raw * MinRetainedRatio; score < floor {
		score = floor
		item.Factors.FloorApplied = true
	}
	if score > MaxScore {
		score = MaxScore
	}
	if score < 0 {
		score = 0
	}
	item.Score = score
	return item, diag
}
