// Package analysis orchestrates extraction and scoring behind a service
// facade, translating configuration into analyzer options.
package analysis

import (
	"context"
	"fmt"
	"sort"

	"github.com/burden-dev/burden/internal/cache"
	"github.com/burden-dev/burden/pkg/analyzer/callgraph"
	"github.com/burden-dev/burden/pkg/analyzer/complexity"
	"github.com/burden-dev/burden/pkg/analyzer/coverage"
	"github.com/burden-dev/burden/pkg/analyzer/debt"
	"github.com/burden-dev/burden/pkg/analyzer/purity"
	"github.com/burden-dev/burden/pkg/analyzer/roles"
	"github.com/burden-dev/burden/pkg/config"
	"github.com/burden-dev/burden/pkg/ir"
	"github.com/burden-dev/burden/pkg/models"
)

// Service orchestrates code analysis operations.
type Service struct {
	config *config.Config
	cache  *cache.Cache
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithCache sets the extraction cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.LoadOrDefault(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		c, err := cache.New(s.config.Cache.Dir, s.config.Cache.TTL, s.config.Cache.Enabled)
		if err != nil {
			// Unusable cache dir degrades to uncached extraction.
			c, _ = cache.New("", 0, false)
		}
		s.cache = c
	}
	return s
}

// Config returns the active configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// DebtOptions configures debt scoring.
type DebtOptions struct {
	// AdjustmentsFile overrides the configured adjustments file.
	AdjustmentsFile string
	// Explain attaches per-function diagnostics to the report.
	Explain bool
	// MaxWorkers bounds scoring concurrency; <= 0 uses the default.
	MaxWorkers int
}

// AnalyzeDebt scores every non-test function in the inventory.
func (s *Service) AnalyzeDebt(ctx context.Context, inv *ir.Inventory, records coverage.Records, opts DebtOptions) (*models.DebtReport, error) {
	cfg := s.config

	analyzerOpts := []debt.Option{
		debt.WithWeights(debt.Weights{
			Coverage:   cfg.Scoring.CoverageWeight,
			Complexity: cfg.Scoring.ComplexityWeight,
			Dependency: cfg.Scoring.DependencyWeight,
		}),
		debt.WithComplexityOptions(s.complexityOptions()...),
		debt.WithRoleOptions(roles.WithMultipliers(s.multipliers())),
		debt.WithCoverageOptions(
			coverage.WithGate(cfg.Coverage.WellTestedGate),
			coverage.WithDecay(cfg.Coverage.Decay),
			coverage.WithMaxDepth(cfg.Coverage.MaxHops),
		),
		debt.WithDiagnostics(opts.Explain),
	}

	if preds := s.entryPredicates(); len(preds) > 0 {
		analyzerOpts = append(analyzerOpts, debt.WithEntryPredicates(preds...))
	}
	if opts.MaxWorkers > 0 {
		analyzerOpts = append(analyzerOpts, debt.WithMaxWorkers(opts.MaxWorkers))
	}

	adjustmentsFile := opts.AdjustmentsFile
	if adjustmentsFile == "" {
		adjustmentsFile = cfg.Scoring.AdjustmentsFile
	}
	if adjustmentsFile != "" {
		adj, err := debt.LoadAdjustments(adjustmentsFile)
		if err != nil {
			return nil, fmt.Errorf("loading adjustments: %w", err)
		}
		analyzerOpts = append(analyzerOpts, debt.WithAdjustments(adj))
	}

	return debt.New(analyzerOpts...).Analyze(ctx, inv, records)
}

// LoadCoverage parses an LCOV report and maps it onto the inventory.
// An empty path yields empty records: every function then scores with the
// coverage-missing fallback.
func (s *Service) LoadCoverage(path string, inv *ir.Inventory) (coverage.Records, error) {
	if path == "" {
		path = s.config.Coverage.File
	}
	if path == "" {
		return coverage.Records{}, nil
	}

	profile, err := coverage.LoadLCOVFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading coverage: %w", err)
	}
	return profile.Records(inv), nil
}

// CoverageItem pairs a function with its effective coverage.
type CoverageItem struct {
	Function models.FunctionID        `json:"function"`
	Coverage models.EffectiveCoverage `json:"coverage"`
}

// AnalyzeCoverage computes effective coverage for every non-test function,
// least covered first.
func (s *Service) AnalyzeCoverage(inv *ir.Inventory, records coverage.Records) ([]CoverageItem, error) {
	g, err := s.BuildGraph(inv)
	if err != nil {
		return nil, err
	}

	cfg := s.config.Coverage
	prop := coverage.New(
		coverage.WithGate(cfg.WellTestedGate),
		coverage.WithDecay(cfg.Decay),
		coverage.WithMaxDepth(cfg.MaxHops),
	)

	items := make([]CoverageItem, 0, len(inv.Functions))
	for _, fn := range inv.Functions {
		if fn.IsTest {
			continue
		}
		items = append(items, CoverageItem{
			Function: fn.ID,
			Coverage: prop.Effective(fn.ID, g, records),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		ei, ej := items[i].Coverage.Effective, items[j].Coverage.Effective
		if ei != ej {
			return ei < ej
		}
		return items[i].Function.Less(items[j].Function)
	})
	return items, nil
}

// ComplexityItem pairs a function with its complexity metrics.
type ComplexityItem struct {
	Function models.FunctionID        `json:"function"`
	Metrics  models.ComplexityMetrics `json:"metrics"`
}

// AnalyzeComplexity computes dampened complexity for every non-test function,
// ordered by combined complexity descending.
func (s *Service) AnalyzeComplexity(inv *ir.Inventory) []ComplexityItem {
	cx := complexity.New(s.complexityOptions()...)

	items := make([]ComplexityItem, 0, len(inv.Functions))
	for _, fn := range inv.Functions {
		if fn.IsTest {
			continue
		}
		items = append(items, ComplexityItem{
			Function: fn.ID,
			Metrics:  cx.Analyze(fn),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := items[i].Metrics.CombinedComplexity(), items[j].Metrics.CombinedComplexity()
		if ci != cj {
			return ci > cj
		}
		return items[i].Function.Less(items[j].Function)
	})
	return items
}

// PurityItem pairs a function with its purity classification.
type PurityItem struct {
	Function models.FunctionID     `json:"function"`
	Purity   models.PurityAnalysis `json:"purity"`
}

// AnalyzePurity classifies every non-test function, in inventory order.
func (s *Service) AnalyzePurity(inv *ir.Inventory) []PurityItem {
	var pure purity.Analyzer

	items := make([]PurityItem, 0, len(inv.Functions))
	for _, fn := range inv.Functions {
		if fn.IsTest {
			continue
		}
		items = append(items, PurityItem{
			Function: fn.ID,
			Purity:   pure.Analyze(fn),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Function.Less(items[j].Function)
	})
	return items
}

// BuildGraph constructs the call graph with configured entry points.
func (s *Service) BuildGraph(inv *ir.Inventory) (*callgraph.Graph, error) {
	opts := []callgraph.Option{}
	if preds := s.entryPredicates(); len(preds) > 0 {
		all := append(callgraph.DefaultPredicates(), preds...)
		opts = append(opts, callgraph.WithEntryPredicates(all...))
	}
	return callgraph.FromInventory(inv, opts...)
}

func (s *Service) complexityOptions() []complexity.Option {
	cfg := s.config.Complexity
	return []complexity.Option{
		complexity.WithEntropyThreshold(cfg.EntropyThreshold),
		complexity.WithPatternWeight(cfg.PatternWeight),
		complexity.WithMinDispatchArms(cfg.MinDispatchArms),
	}
}

func (s *Service) multipliers() roles.Multipliers {
	cfg := s.config.Scoring
	return roles.Multipliers{
		models.RolePureLogic:    cfg.PureLogicMultiplier,
		models.RoleOrchestrator: cfg.OrchestratorMultiplier,
		models.RoleIOWrapper:    cfg.IOWrapperMultiplier,
		models.RoleEntryPoint:   cfg.EntryPointMultiplier,
		models.RolePatternMatch: cfg.PatternMatchMultiplier,
	}
}

func (s *Service) entryPredicates() []callgraph.Predicate {
	patterns := s.config.Graph.EntryPointPatterns
	preds := make([]callgraph.Predicate, 0, len(patterns))
	for _, p := range patterns {
		preds = append(preds, callgraph.NamePattern(p))
	}
	return preds
}
