package core

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyStarted is returned by Start when the runner's goroutine
	// has already been spawned (including via the auto-start option).
	ErrAlreadyStarted = errors.New("threadify: runner already started")

	// ErrUncopyableStorage is returned by New when storage isolation is
	// requested (the default) but the initial mapping holds values that
	// cannot be deep-copied, such as channels or functions. Callers that
	// intentionally share such values must opt out with WithSharedStorage.
	ErrUncopyableStorage = errors.New("threadify: storage value cannot be deep-copied")

	// ErrTaskPanicked indicates a task invocation panicked. The panic is
	// recovered by the execution loop and reported as a task failure.
	ErrTaskPanicked = errors.New("threadify: task panicked")

	// ErrKeyNotFound is returned by typed storage accessors when the
	// requested key is not present.
	ErrKeyNotFound = errors.New("threadify: storage key not found")
)

// TaskError wraps a failure raised by a task invocation together with the
// cycle on which it occurred. Retrieve it from Runner.Err after the runner
// has died with the ignore-failures policy disabled.
type TaskError struct {
	// Cycle is the 1-based invocation count at which the task failed.
	Cycle uint64

	// Err is the error (or recovered panic, wrapped in ErrTaskPanicked)
	// returned by the task.
	Err error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("threadify: task failed on cycle %d: %v", e.Cycle, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }
