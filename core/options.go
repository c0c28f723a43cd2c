package core

type runnerConfig struct {
	name string

	autoStart     bool
	sharedStorage bool
	ignoreErrors  bool

	logger  Logger
	metrics Metrics
}

// Option configures a Runner at construction time.
type Option func(*runnerConfig)

// WithName sets a human-friendly runner name used in logs, traces and
// metric labels. Default is "runner-" followed by a short random id.
func WithName(name string) Option {
	return func(c *runnerConfig) { c.name = name }
}

// WithAutoStart controls whether New spawns the execution loop immediately.
// Default is false; call Start explicitly.
func WithAutoStart(v bool) Option {
	return func(c *runnerConfig) { c.autoStart = v }
}

// WithSharedStorage disables the deep copy of the initial storage mapping.
// The runner and the caller then share the same values, enabling intentional
// cross-goroutine communication (e.g. a channel stored as a value), but all
// thread-safety obligations for shared values move to the caller.
//
// Without this option, New fails with ErrUncopyableStorage when the initial
// mapping holds values that cannot be deep-copied.
func WithSharedStorage() Option {
	return func(c *runnerConfig) { c.sharedStorage = true }
}

// WithIgnoreTaskFailures controls the failure policy. When true, a task
// error (or recovered panic) is logged and counted and the loop keeps
// cycling; storage mutations made before the failure are retained. When
// false (the default), the first failure kills the loop and the error is
// retrievable from Runner.Err.
func WithIgnoreTaskFailures(v bool) Option {
	return func(c *runnerConfig) { c.ignoreErrors = v }
}

// WithLogger sets the logger used for failure reporting. If not set, a
// DefaultLogger is used. Diagnostic tracing is separate and process-wide;
// see SetDebugOutput.
func WithLogger(logger Logger) Option {
	return func(c *runnerConfig) { c.logger = logger }
}

// WithMetrics sets the metrics sink. Default is NilMetrics.
func WithMetrics(metrics Metrics) Option {
	return func(c *runnerConfig) { c.metrics = metrics }
}
