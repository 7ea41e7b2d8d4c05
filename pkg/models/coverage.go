package models

// CoverageRecord is the per-function direct coverage input, sourced from an
// external coverage report. Fractions are in [0, 1].
type CoverageRecord struct {
	Direct       float64 `json:"direct"`
	LinesCovered int     `json:"lines_covered"`
	LinesTotal   int     `json:"lines_total"`
}

// CoverageSource records one indirect coverage contribution discovered while
// walking the caller graph.
type CoverageSource struct {
	Caller         FunctionID `json:"caller"`
	CallerCoverage float64    `json:"caller_coverage"`
	HopDistance    int        `json:"hop_distance"`
	Contribution   float64    `json:"contribution"`
}

// EffectiveCoverage is the derived coverage for a function after propagating
// coverage from well-tested callers. Effective is always max(Direct, Indirect).
type EffectiveCoverage struct {
	Direct    float64          `json:"direct"`
	Indirect  float64          `json:"indirect"`
	Effective float64          `json:"effective"`
	Sources   []CoverageSource `json:"sources,omitempty"`
	// HasData is false when no coverage record existed for the function.
	// Scoring then falls back to complexity-only and says so in the factor
	// breakdown instead of pretending 0% or 100%.
	HasData bool `json:"has_data"`
}
