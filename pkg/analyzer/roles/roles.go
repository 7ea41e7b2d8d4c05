// Package roles assigns each function an architectural role and the scoring
// multiplier that goes with it. Roles are decided in a fixed precedence
// order; the first matching rule wins.
package roles

import (
	"github.com/burden-dev/burden/pkg/analyzer/callgraph"
	"github.com/burden-dev/burden/pkg/ir"
	"github.com/burden-dev/burden/pkg/models"
)

// Default multipliers per role. Pure logic is weighted up: untested complex
// logic is the debt that matters most. Mechanical shapes are weighted down.
const (
	DefaultPureLogicMultiplier    = 1.2
	DefaultOrchestratorMultiplier = 0.8
	DefaultIOWrapperMultiplier    = 0.7
	DefaultEntryPointMultiplier   = 0.9
	DefaultPatternMatchMultiplier = 0.6
	DefaultUnknownMultiplier      = 1.0
)

// ioWrapperMaxComplexity bounds how much logic a function may carry and
// still count as a thin I/O wrapper.
const ioWrapperMaxComplexity = 3

// Multipliers maps each role to its scoring multiplier.
type Multipliers map[models.Role]float64

// DefaultMultipliers returns the standard multiplier table.
func DefaultMultipliers() Multipliers {
	return Multipliers{
		models.RolePureLogic:    DefaultPureLogicMultiplier,
		models.RoleOrchestrator: DefaultOrchestratorMultiplier,
		models.RoleIOWrapper:    DefaultIOWrapperMultiplier,
		models.RoleEntryPoint:   DefaultEntryPointMultiplier,
		models.RolePatternMatch: DefaultPatternMatchMultiplier,
		models.RoleUnknown:      DefaultUnknownMultiplier,
	}
}

// Classifier derives roles from the call graph plus per-function analyses.
type Classifier struct {
	multipliers Multipliers
}

// Option is a functional option for configuring Classifier.
type Option func(*Classifier)

// WithMultipliers overrides individual role multipliers. Roles absent from
// the map keep their defaults.
func WithMultipliers(m Multipliers) Option {
	return func(c *Classifier) {
		for role, mult := range m {
			if mult > 0 {
				c.multipliers[role] = mult
			}
		}
	}
}

// New creates a Classifier with default multipliers.
func New(opts ...Option) *Classifier {
	c := &Classifier{multipliers: DefaultMultipliers()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify assigns a role to one function. Precedence: entry point, then
// pattern match, then I/O wrapper, then orchestrator, then pure logic.
// Anything left is unknown, multiplier 1.0, so an unclassifiable function is
// never advantaged or penalized.
func (c *Classifier) Classify(
	fn ir.FunctionRecord,
	g *callgraph.Graph,
	complexity models.ComplexityMetrics,
	purity models.PurityAnalysis,
) models.RoleClassification {
	role := models.RoleUnknown
	switch {
	case g.IsEntryPoint(fn.ID):
		role = models.RoleEntryPoint
	case complexity.DispatchArms > 0:
		role = models.RolePatternMatch
	case purity.HasIO && complexity.Cyclomatic <= ioWrapperMaxComplexity:
		role = models.RoleIOWrapper
	case g.IsDelegator(fn.ID, complexity.Cyclomatic):
		role = models.RoleOrchestrator
	case purity.IsPure():
		role = models.RolePureLogic
	}
	return models.RoleClassification{
		Role:       role,
		Multiplier: c.multipliers[role],
	}
}
