package core

import "time"

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting runner lifecycle metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods should be non-blocking and fast to avoid impacting the execution loop.
// Implementations must be safe for concurrent use by multiple runners.
type Metrics interface {
	// RecordCycle records one completed task invocation and its duration.
	RecordCycle(runnerName string, duration time.Duration)

	// RecordTaskFailure records a task error or recovered panic.
	RecordTaskFailure(runnerName string)

	// RecordStateChange records a lifecycle state transition.
	RecordStateChange(runnerName string, state State)

	// RecordPause records one completed pause interval and how long the
	// loop stayed parked.
	RecordPause(runnerName string, duration time.Duration)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordCycle is a no-op.
func (m *NilMetrics) RecordCycle(runnerName string, duration time.Duration) {}

// RecordTaskFailure is a no-op.
func (m *NilMetrics) RecordTaskFailure(runnerName string) {}

// RecordStateChange is a no-op.
func (m *NilMetrics) RecordStateChange(runnerName string, state State) {}

// RecordPause is a no-op.
func (m *NilMetrics) RecordPause(runnerName string, duration time.Duration) {}

// =============================================================================
// Stats snapshots
// =============================================================================

// RunnerStats represents runtime observability state for a runner.
type RunnerStats struct {
	Name       string
	State      State
	Cycles     uint64
	Failures   uint64
	Pauses     uint64
	StartedAt  time.Time
	FinishedAt time.Time
	LastCycle  time.Duration
}
