package models

import (
	"sort"
	"time"
)

// FactorBreakdown explains how a debt score was composed. Every factor is on
// the 0-10 scale used by the composer before weighting.
type FactorBreakdown struct {
	Complexity     float64 `json:"complexity"`
	Coverage       float64 `json:"coverage"`
	Dependency     float64 `json:"dependency"`
	RoleMultiplier float64 `json:"role_multiplier"`
	Adjustment     float64 `json:"adjustment,omitempty"`

	// CoverageMissing marks the complexity-only fallback taken when no
	// coverage record existed for the function.
	CoverageMissing bool `json:"coverage_missing,omitempty"`
	// FloorApplied marks items whose combined dampening hit the 50% floor.
	FloorApplied bool `json:"floor_applied,omitempty"`
}

// DebtItem is one scored function. Items are immutable snapshots for a run;
// a failed per-function analysis is reported as an item with Error set and
// never aborts the batch.
type DebtItem struct {
	Function FunctionID      `json:"function"`
	Score    float64         `json:"score"`
	Factors  FactorBreakdown `json:"factors"`
	Error    string          `json:"error,omitempty"`
}

// FunctionDiagnostics is the per-function transparency snapshot: everything a
// downstream consumer needs to see why a score came out the way it did.
type FunctionDiagnostics struct {
	Complexity ComplexityMetrics  `json:"complexity"`
	Coverage   EffectiveCoverage  `json:"coverage"`
	Purity     PurityAnalysis     `json:"purity"`
	Role       RoleClassification `json:"role"`
	NodeClass  NodeClass          `json:"node_class"`
}

// DebtReport is the terminal output of a scoring run.
type DebtReport struct {
	Items       []DebtItem                     `json:"items"`
	Diagnostics map[string]FunctionDiagnostics `json:"diagnostics,omitempty"`
	Summary     DebtSummary                    `json:"summary"`
}

// DebtSummary provides aggregate statistics for a run.
type DebtSummary struct {
	TotalFunctions int       `json:"total_functions"`
	Scored         int       `json:"scored"`
	Errored        int       `json:"errored"`
	FilesAnalyzed  int       `json:"files_analyzed"`
	WithCoverage   int       `json:"with_coverage"`
	AnalyzedAt     time.Time `json:"analyzed_at"`
}

// SortDebtItems orders items descending by score, breaking ties by
// (file asc, start line asc) so identical inputs always produce identical
// output order.
func SortDebtItems(items []DebtItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Function.Less(items[j].Function)
	})
}
