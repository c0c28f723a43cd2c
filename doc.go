// Package threadify provides a controllable background task runner for Go.
//
// Each Runner owns exactly one goroutine that repeatedly invokes a
// user-supplied task function against a persistent, ordered key/value
// storage context. The owning goroutine steers the runner through a small
// lifecycle controller: pause, unpause, kill, and join, all safe to call
// from any goroutine.
//
// # Quick Start
//
//	task := func(s *threadify.Storage) (bool, error) {
//		n, _ := s.GetInt("count")
//		s.Set("count", n+1)
//		time.Sleep(250 * time.Millisecond)
//		return true, nil // keep running
//	}
//
//	runner, err := threadify.New(task, map[string]any{"count": 0})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := runner.Start(); err != nil {
//		log.Fatal(err)
//	}
//
//	time.Sleep(2 * time.Second)
//	runner.Kill(true) // request termination and wait for it
//
// # Key Concepts
//
// Task: the repeatable unit of work. It returns (true, nil) to keep
// running, (false, nil) to self-terminate, or an error to report a failure.
// Failures either kill the runner (default) or are logged and swallowed
// when the runner is built with WithIgnoreTaskFailures(true).
//
// Storage: ordered, string-keyed, heterogeneous state passed to every
// invocation. By default the initial mapping is deep-copied at
// construction, isolating the runner from later caller mutation.
// WithSharedStorage opts out of the copy for intentional cross-goroutine
// communication, e.g. a channel stored as a value.
//
// Lifecycle: NotStarted -> Running -> (Paused <-> Running) -> Stopping ->
// Dead. Control signals are checked strictly between task invocations,
// never during one, so tasks need not be cancellation-aware; the cost is
// that pause/kill latency is bounded below by the task's own per-call
// duration, with at most one invocation in flight after a request.
//
// # Debug Output
//
// A process-wide toggle traces every state transition and signal
// observation across all runners:
//
//	threadify.SetDebugOutput(true)
//
// # Observability
//
// Runners accept a metrics sink via WithMetrics; the
// observability/prometheus subpackage provides a client_golang exporter
// and a snapshot poller for Stats().
package threadify
