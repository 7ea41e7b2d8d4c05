package models

// ComplexityMetrics represents structural complexity for a single function.
// Raw values come straight from branch counting; the adjusted values have
// entropy dampening and dispatch rescaling applied, bounded so that no
// function loses more than half of its raw complexity.
type ComplexityMetrics struct {
	Cyclomatic uint32 `json:"cyclomatic"`
	Cognitive  uint32 `json:"cognitive"`
	MaxNesting uint32 `json:"max_nesting"`
	Lines      int    `json:"lines"`

	AdjustedCyclomatic float64 `json:"adjusted_cyclomatic"`
	AdjustedCognitive  float64 `json:"adjusted_cognitive"`

	// DampeningFactor is in [0.7, 1.0]: a single mechanism never removes
	// more than 30% of the score.
	DampeningFactor float64       `json:"dampening_factor"`
	Entropy         *EntropyScore `json:"entropy,omitempty"`

	// DispatchArms is non-zero when the function body is a recognized
	// same-subject dispatch shape; the arm contribution is then rescaled
	// logarithmically instead of linearly.
	DispatchArms int `json:"dispatch_arms,omitempty"`
}

// EntropyScore captures token-level repetitiveness signals used to decide
// whether apparent complexity is mechanical rather than cognitive.
type EntropyScore struct {
	TokenEntropy      float64 `json:"token_entropy"`
	PatternRepetition float64 `json:"pattern_repetition"`
	BranchSimilarity  float64 `json:"branch_similarity"`
	UniqueVariables   int     `json:"unique_variables"`
}

// CombinedComplexity is the single number fed into score normalization.
func (m ComplexityMetrics) CombinedComplexity() float64 {
	return (m.AdjustedCyclomatic + m.AdjustedCognitive) / 2.0
}

// IsTrivial reports whether the function is simple enough that, when well
// tested, it carries no debt worth ranking.
func (m ComplexityMetrics) IsTrivial() bool {
	return m.Cyclomatic <= 3 && m.Cognitive <= 5
}
