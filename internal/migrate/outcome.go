package migrate

import "github.com/temirov/migrix/internal/targets"

// OutcomeKind classifies what a handler achieved for one target in one pass.
type OutcomeKind string

// Supported outcome kinds.
const (
	OutcomeNoOp              OutcomeKind = "noop"
	OutcomeCompleted         OutcomeKind = "completed"
	OutcomePostponed         OutcomeKind = "postponed"
	OutcomeTargetNotFound    OutcomeKind = "target_not_found"
	OutcomeInvalidInvocation OutcomeKind = "invalid_invocation"
)

// Outcome is the result of one handler invocation.
type Outcome struct {
	Pass     int
	Target   targets.Descriptor
	Kind     OutcomeKind
	Executed []string
}

// ExecutionRecord maps "{kind}-{name}" to the migrations a postponed target executed during one pass.
type ExecutionRecord map[string][]string

// Equal reports whether both records hold the same keys with the same sequences.
func (record ExecutionRecord) Equal(other ExecutionRecord) bool {
	if len(record) != len(other) {
		return false
	}
	for key, executed := range record {
		otherExecuted, exists := other[key]
		if !exists || len(executed) != len(otherExecuted) {
			return false
		}
		for index := range executed {
			if executed[index] != otherExecuted[index] {
				return false
			}
		}
	}
	return true
}

// RunReport summarises one orchestrator run.
type RunReport struct {
	Command       Command
	Passes        int
	Outcomes      []Outcome
	HelpDisplayed bool
}
