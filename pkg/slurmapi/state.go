package slurmapi

// State is a normalized job state. The canonical value of a recognized state
// is its long-form scheduler token; an unrecognized token passes through
// verbatim so diagnostics keep exactly what the scheduler said.
type State string

const (
	StatePending     State = "PENDING"
	StateRunning     State = "RUNNING"
	StateSuspended   State = "SUSPENDED"
	StateCompleted   State = "COMPLETED"
	StateCancelled   State = "CANCELLED"
	StateFailed      State = "FAILED"
	StateTimeout     State = "TIMEOUT"
	StateNodeFail    State = "NODE_FAIL"
	StatePreempted   State = "PREEMPTED"
	StateBootFail    State = "BOOT_FAIL"
	StateDeadline    State = "DEADLINE"
	StateOutOfMemory State = "OUT_OF_MEMORY"
)

// stateTokens maps every token slurm reports, including squeue/sacct
// abbreviations, to its canonical state.
var stateTokens = map[string]State{
	"PENDING":       StatePending,
	"PD":            StatePending,
	"RUNNING":       StateRunning,
	"R":             StateRunning,
	"SUSPENDED":     StateSuspended,
	"S":             StateSuspended,
	"COMPLETED":     StateCompleted,
	"CD":            StateCompleted,
	"CANCELLED":     StateCancelled,
	"CANCELLED+":    StateCancelled,
	"CA":            StateCancelled,
	"FAILED":        StateFailed,
	"F":             StateFailed,
	"TIMEOUT":       StateTimeout,
	"TO":            StateTimeout,
	"NODE_FAIL":     StateNodeFail,
	"NF":            StateNodeFail,
	"PREEMPTED":     StatePreempted,
	"PR":            StatePreempted,
	"BOOT_FAIL":     StateBootFail,
	"BF":            StateBootFail,
	"DEADLINE":      StateDeadline,
	"DL":            StateDeadline,
	"OUT_OF_MEMORY": StateOutOfMemory,
	"OOM":           StateOutOfMemory,
}

var knownStates = map[State]struct{}{
	StatePending:     {},
	StateRunning:     {},
	StateSuspended:   {},
	StateCompleted:   {},
	StateCancelled:   {},
	StateFailed:      {},
	StateTimeout:     {},
	StateNodeFail:    {},
	StatePreempted:   {},
	StateBootFail:    {},
	StateDeadline:    {},
	StateOutOfMemory: {},
}

// Classify maps a scheduler-reported state token to its canonical State.
// Total: unrecognized tokens come back unchanged with Known() == false, so a
// released client keeps parsing responses when the scheduler grows new states.
func Classify(token string) State {
	if s, ok := stateTokens[token]; ok {
		return s
	}
	return State(token)
}

// Known reports whether s is one of the canonical states.
func (s State) Known() bool {
	_, ok := knownStates[s]
	return ok
}

// IsLoopTerminal reports whether s ends a completion-wait loop. This is the
// narrow set existing pollers key on; scheduler-terminal outcomes like
// NODE_FAIL keep the loop running until its attempt cap.
func IsLoopTerminal(s State) bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled, StateTimeout:
		return true
	}
	return false
}

// IsTerminal reports whether the scheduler will never transition s further.
func IsTerminal(s State) bool {
	if IsLoopTerminal(s) {
		return true
	}
	switch s {
	case StateNodeFail, StatePreempted, StateBootFail, StateDeadline, StateOutOfMemory:
		return true
	}
	return false
}
