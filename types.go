package threadify

import "github.com/dwsmith/go-threadify/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the threadify package for most use cases.

// Task is the repeatable unit of work driven by a Runner
type Task = core.Task

// Runner drives a single Task on its own dedicated goroutine
type Runner = core.Runner

// Storage is the persistent key/value context passed to every invocation
type Storage = core.Storage

// State describes the lifecycle position of a Runner
type State = core.State

// Option configures a Runner at construction time
type Option = core.Option

// Logger is the structured logging interface used by runners
type Logger = core.Logger

// Field is a key-value pair for structured logging
type Field = core.Field

// Metrics is the sink interface for runner lifecycle metrics
type Metrics = core.Metrics

// RunnerStats is a point-in-time snapshot of a runner's observable state
type RunnerStats = core.RunnerStats

// TaskError wraps a fatal task failure with the cycle it occurred on
type TaskError = core.TaskError

// Lifecycle state constants
const (
	StateNotStarted State = core.StateNotStarted
	StateRunning    State = core.StateRunning
	StatePaused     State = core.StatePaused
	StateStopping   State = core.StateStopping
	StateDead       State = core.StateDead
)

// Sentinel errors
var (
	ErrAlreadyStarted    = core.ErrAlreadyStarted
	ErrUncopyableStorage = core.ErrUncopyableStorage
	ErrTaskPanicked      = core.ErrTaskPanicked
	ErrKeyNotFound       = core.ErrKeyNotFound
)

// Construction options
var (
	WithName               = core.WithName
	WithAutoStart          = core.WithAutoStart
	WithSharedStorage      = core.WithSharedStorage
	WithIgnoreTaskFailures = core.WithIgnoreTaskFailures
	WithLogger             = core.WithLogger
	WithMetrics            = core.WithMetrics
)

// Process-wide debug instrumentation
var (
	SetDebugOutput     = core.SetDebugOutput
	DebugOutputEnabled = core.DebugOutputEnabled
	SetDebugLogger     = core.SetDebugLogger
)

// Loggers
var (
	NewDefaultLogger = core.NewDefaultLogger
	NewNoOpLogger    = core.NewNoOpLogger
	NewSlogLogger    = core.NewSlogLogger
)

// F creates a structured logging Field
var F = core.F

// New constructs a Runner for the given task and initial storage mapping.
// See core.New for the full construction contract.
func New(task Task, initial map[string]any, opts ...Option) (*Runner, error) {
	return core.New(task, initial, opts...)
}

// NewStorage creates an empty Storage.
func NewStorage() *Storage {
	return core.NewStorage()
}

// StorageFromMap creates a Storage seeded from a plain map in sorted key order.
func StorageFromMap(values map[string]any) *Storage {
	return core.StorageFromMap(values)
}
