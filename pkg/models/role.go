package models

// Role is the semantic role a function plays in the architecture. Roles whose
// apparent complexity overstates risk (dispatchers, wrappers, orchestrators)
// are dampened during scoring; complex pure logic is boosted.
type Role string

const (
	RolePureLogic    Role = "pure_logic"
	RoleOrchestrator Role = "orchestrator"
	RoleIOWrapper    Role = "io_wrapper"
	RoleEntryPoint   Role = "entry_point"
	RolePatternMatch Role = "pattern_match"
	RoleUnknown      Role = "unknown"
)

func (r Role) String() string { return string(r) }

// RoleClassification pairs a role with its scoring multiplier.
type RoleClassification struct {
	Role       Role    `json:"role"`
	Multiplier float64 `json:"multiplier"`
}
