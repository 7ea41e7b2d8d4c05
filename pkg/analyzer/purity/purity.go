// Package purity classifies functions by mutation scope. Extraction records
// raw mutation sites and a scope table; this package resolves each site
// against the scope and derives a purity level with a confidence estimate.
//
// Ambiguity always resolves toward impurity: a write whose root cannot be
// found in the local scope is an external mutation, never a local one.
package purity

import (
	"sort"

	"github.com/burden-dev/burden/pkg/analyzer/memo"
	"github.com/burden-dev/burden/pkg/ir"
	"github.com/burden-dev/burden/pkg/models"
)

const (
	// MinConfidence floors the confidence estimate.
	MinConfidence = 0.5

	externalReadPenalty = 0.80
	upvaluePenalty      = 0.85
	manyMutationPenalty = 0.95
	manyMutationCount   = 5
)

// Analyzer resolves mutation sites into a purity classification. Stateless
// and safe for concurrent use.
type Analyzer struct{}

// New creates a purity Analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze classifies one function. The scope table must include the receiver
// binding when the function is a method; extraction emits it with ByValue set
// for owned receivers only.
func (a *Analyzer) Analyze(fn ir.FunctionRecord) models.PurityAnalysis {
	scope := make(map[string]ir.Binding, len(fn.Scope))
	for _, b := range fn.Scope {
		scope[b.Name] = b
	}

	p := models.PurityAnalysis{
		HasIO:     fn.HasIO,
		HasUnsafe: fn.HasUnsafe,
	}

	for _, site := range fn.Mutations {
		m := models.Mutation{Path: site.Path, Line: site.Line}
		switch classify(site, scope) {
		case models.MutationLocal:
			m.Target = models.MutationLocal
			p.LocalMutations = append(p.LocalMutations, m)
		case models.MutationUpvalue:
			m.Target = models.MutationUpvalue
			p.UpvalueMutations = append(p.UpvalueMutations, m)
		default:
			m.Target = models.MutationExternal
			p.ExternalMutations = append(p.ExternalMutations, m)
		}
	}
	sortMutations(p.LocalMutations)
	sortMutations(p.UpvalueMutations)
	sortMutations(p.ExternalMutations)

	p.ModifiesExternalState = len(p.ExternalMutations) > 0
	p.AccessesExternalState = len(fn.ExternalReads) > 0 || fn.ReceiverMode == ir.ReceiverRef

	p.Level = level(p)
	p.Confidence = confidence(p)
	return p
}

// AnalyzeCached is Analyze with memoization through an explicit cache.
func (a *Analyzer) AnalyzeCached(fn ir.FunctionRecord, cache *memo.Cache[models.PurityAnalysis]) models.PurityAnalysis {
	return cache.GetOrCompute(fn.ID, memo.KindPurity, func() models.PurityAnalysis {
		return a.Analyze(fn)
	})
}

// classify resolves a single mutation site against the scope table.
func classify(site ir.MutationSite, scope map[string]ir.Binding) models.MutationTarget {
	if site.InClosure {
		return models.MutationUpvalue
	}
	b, ok := scope[site.Root]
	if !ok {
		return models.MutationExternal
	}
	if b.ByValue {
		// Owned binding. A deref still escapes: the pointee may live
		// anywhere.
		if site.Deref {
			return models.MutationExternal
		}
		return models.MutationLocal
	}
	// Reference-like binding. Rebinding the name itself is local; writing
	// through it is not.
	if site.FieldAccess || site.Deref {
		return models.MutationExternal
	}
	return models.MutationLocal
}

func level(p models.PurityAnalysis) models.PurityLevel {
	if p.ModifiesExternalState || p.HasIO || p.HasUnsafe {
		return models.Impure
	}
	if len(p.LocalMutations) > 0 || len(p.UpvalueMutations) > 0 {
		return models.LocallyPure
	}
	if p.AccessesExternalState {
		return models.ReadOnly
	}
	return models.StrictlyPure
}

func confidence(p models.PurityAnalysis) float64 {
	c := 1.0
	if p.AccessesExternalState && !p.ModifiesExternalState {
		c *= externalReadPenalty
	}
	if len(p.UpvalueMutations) > 0 {
		c *= upvaluePenalty
	}
	if len(p.LocalMutations) > manyMutationCount {
		c *= manyMutationPenalty
	}
	if c < MinConfidence {
		return MinConfidence
	}
	return c
}

func sortMutations(ms []models.Mutation) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].Line != ms[j].Line {
			return ms[i].Line < ms[j].Line
		}
		return ms[i].Path < ms[j].Path
	})
}
