package core

// State describes the lifecycle position of a Runner. It is derived from
// the control signals and the loop's own progress rather than stored as an
// independent field, so observers always see a consistent view.
//
// Transitions: NotStarted -> Running -> (Paused <-> Running) -> Stopping -> Dead.
// Dead is terminal and is entered exactly once, always by the execution loop.
type State int32

const (
	// StateNotStarted means Start has not been called yet.
	StateNotStarted State = iota

	// StateRunning means the loop is cycling: invoking the task and
	// checking control signals between invocations.
	StateRunning

	// StatePaused means the loop observed a pause request and is blocked
	// waiting for resume or kill.
	StatePaused

	// StateStopping means a kill was requested but the loop has not yet
	// observed it (at most one task invocation may still be in flight).
	StateStopping

	// StateDead means the loop has exited permanently.
	StateDead
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopping:
		return "stopping"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}
