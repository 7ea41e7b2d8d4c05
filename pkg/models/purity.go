package models

// PurityLevel classifies a function's mutation and I/O behavior.
type PurityLevel string

const (
	// StrictlyPure has no mutations and no external reads.
	StrictlyPure PurityLevel = "strictly_pure"
	// ReadOnly reads external state but mutates nothing.
	ReadOnly PurityLevel = "read_only"
	// LocallyPure mutates only locally-owned bindings (including owned
	// receivers); externally invisible.
	LocallyPure PurityLevel = "locally_pure"
	// Impure mutates external state, performs I/O, or uses unsafe code.
	Impure PurityLevel = "impure"
)

func (p PurityLevel) String() string { return string(p) }

// MutationTarget classifies what an assignment writes to.
type MutationTarget string

const (
	// MutationLocal targets a binding owned by the function (param by value,
	// let-bound local, field of an owned receiver).
	MutationLocal MutationTarget = "local"
	// MutationExternal targets state visible outside the function. Ambiguous
	// targets always resolve here, never to local.
	MutationExternal MutationTarget = "external"
	// MutationUpvalue targets a variable captured by a closure.
	MutationUpvalue MutationTarget = "upvalue"
)

func (t MutationTarget) String() string { return string(t) }

// Mutation records a single classified mutation site.
type Mutation struct {
	Target MutationTarget `json:"target"`
	Path   string         `json:"path"`
	Line   uint32         `json:"line"`
}

// PurityAnalysis is the derived purity classification for one function.
// Level is computed from the flags, never set independently: Impure requires
// at least one external mutation, I/O operation, or unsafe block.
type PurityAnalysis struct {
	Level      PurityLevel `json:"level"`
	Confidence float64     `json:"confidence"`

	ModifiesExternalState bool `json:"modifies_external_state"`
	AccessesExternalState bool `json:"accesses_external_state"`
	HasIO                 bool `json:"has_io"`
	HasUnsafe             bool `json:"has_unsafe"`

	LocalMutations    []Mutation `json:"local_mutations,omitempty"`
	UpvalueMutations  []Mutation `json:"upvalue_mutations,omitempty"`
	ExternalMutations []Mutation `json:"external_mutations,omitempty"`
}

// IsPure reports whether the function has no externally visible effects.
func (p PurityAnalysis) IsPure() bool {
	return p.Level == StrictlyPure || p.Level == LocallyPure
}
