package core

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Task is the unit of work driven by a Runner. It is invoked repeatedly
// with the runner's storage context and reports its outcome:
//
//   - (true, nil): keep running, invoke again on the next cycle
//   - (false, nil): self-terminate, the runner transitions to dead
//   - (_, err): failure, handled per the ignore-failures policy
//
// Tasks that need pacing sleep inside their own body; the runner inserts no
// delay between cycles.
type Task func(s *Storage) (bool, error)

// Runner drives a single Task on its own dedicated goroutine until the task
// self-terminates, fails fatally, or the controller requests termination.
//
// The controller methods (Start, Pause, Unpause, Kill, Join and the
// observers) may be called from any goroutine. Control signals are checked
// strictly between task invocations, never during one: a task that blocks
// internally delays responsiveness to pause/kill by its own per-call
// duration, and at most one invocation is in flight after a request.
type Runner struct {
	name    string
	task    Task
	storage *Storage

	signals *controlSignals
	logger  Logger
	metrics Metrics

	ignoreErrors bool

	startMu  sync.Mutex
	launched atomic.Bool

	failureMu sync.Mutex
	failure   error

	cycles   atomic.Uint64
	failures atomic.Uint64
	pauses   atomic.Uint64

	statsMu    sync.Mutex
	startedAt  time.Time
	finishedAt time.Time
	lastCycle  time.Duration
}

// New constructs a Runner for the given task and initial storage mapping.
//
// By default the initial mapping is deep-copied, so later mutation of the
// caller's map (or of values reachable from it) never affects the runner
// and vice versa. New fails with ErrUncopyableStorage when a copy is
// requested but a value cannot be deep-copied; opt out with
// WithSharedStorage to share such values intentionally.
//
// A nil task defaults to a heartbeat task that prints a dot every 250ms,
// matching the library's original demo behavior.
func New(task Task, initial map[string]any, opts ...Option) (*Runner, error) {
	cfg := runnerConfig{
		logger:  NewDefaultLogger(),
		metrics: &NilMetrics{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.name == "" {
		cfg.name = "runner-" + uuid.NewString()[:8]
	}
	if task == nil {
		task = heartbeatTask
	}

	storage := StorageFromMap(initial)
	if !cfg.sharedStorage {
		copied, err := storage.Clone()
		if err != nil {
			return nil, err
		}
		storage = copied
	}

	r := &Runner{
		name:         cfg.name,
		task:         task,
		storage:      storage,
		signals:      newControlSignals(),
		logger:       cfg.logger,
		metrics:      cfg.metrics,
		ignoreErrors: cfg.ignoreErrors,
	}

	if cfg.autoStart {
		// Cannot fail: nothing else has seen the runner yet.
		_ = r.Start()
	}
	return r, nil
}

// heartbeatTask is the default task: a dot four times a second, forever.
func heartbeatTask(s *Storage) (bool, error) {
	fmt.Print(".")
	time.Sleep(250 * time.Millisecond)
	return true, nil
}

// Name returns the runner's name.
func (r *Runner) Name() string {
	return r.name
}

// Start spawns the execution loop on its own goroutine, transitioning the
// runner from not-started to running. It fails with ErrAlreadyStarted when
// called more than once, including after auto-start.
func (r *Runner) Start() error {
	r.startMu.Lock()
	defer r.startMu.Unlock()
	if r.launched.Load() {
		return ErrAlreadyStarted
	}
	r.statsMu.Lock()
	r.startedAt = time.Now()
	r.statsMu.Unlock()
	r.launched.Store(true)
	r.traceState(StateNotStarted, StateRunning)
	r.metrics.RecordStateChange(r.name, StateRunning)
	go r.loop()
	return nil
}

// Pause requests that the loop stop invoking the task after the current
// invocation completes. When waitUntilPaused is true, Pause blocks until
// the loop acknowledges (or has already terminated, in which case it
// returns immediately). Requests are idempotent; pausing a dead runner is
// a no-op.
//
// Pausing a runner that was never started records the request: the loop
// will park before its first task invocation once started. The wait is
// skipped in that case so the caller is not blocked indefinitely.
func (r *Runner) Pause(waitUntilPaused bool) {
	debugTrace("pause requested", F("runner", r.name), F("wait", waitUntilPaused))
	r.signals.requestPause(waitUntilPaused && r.launched.Load())
}

// Unpause withdraws any pause request, letting a parked loop resume on its
// next check. No-op if the runner is not paused.
func (r *Runner) Unpause() {
	debugTrace("unpause requested", F("runner", r.name))
	r.signals.clearPause()
}

// Kill requests termination. The loop observes the request on its next
// between-invocations check; there is no hard cancellation of an
// in-progress invocation. When waitUntilDead is true, Kill blocks until
// the loop has exited. Idempotent and safe on an already-dead runner.
func (r *Runner) Kill(waitUntilDead bool) {
	debugTrace("kill requested", F("runner", r.name), F("wait", waitUntilDead))
	r.signals.requestKill()
	if waitUntilDead && r.launched.Load() {
		<-r.signals.done
	}
}

// Join blocks until the loop reaches the dead state or the timeout
// elapses. A timeout <= 0 waits indefinitely. It reports whether the
// runner is dead; false means the wait timed out (or the runner was never
// started).
func (r *Runner) Join(timeout time.Duration) bool {
	if !r.launched.Load() {
		return false
	}
	if timeout <= 0 {
		<-r.signals.done
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-r.signals.done:
		return true
	case <-timer.C:
		return r.signals.isTerminated()
	}
}

// IsAlive reports whether the execution loop has been started and has not
// yet terminated. A paused runner is alive.
func (r *Runner) IsAlive() bool {
	return r.launched.Load() && !r.signals.isTerminated()
}

// IsPaused reports whether the loop is currently parked on a pause request.
func (r *Runner) IsPaused() bool {
	return r.signals.isPaused()
}

// State derives the current lifecycle state from the control signals.
func (r *Runner) State() State {
	if !r.launched.Load() {
		return StateNotStarted
	}
	s := r.signals
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.terminated:
		return StateDead
	case s.paused:
		return StatePaused
	case s.killRequested:
		return StateStopping
	default:
		return StateRunning
	}
}

// Err returns the fatal task failure that killed the loop, or nil. It is
// populated before the runner reports dead, so it is safe to read after
// Kill(true) or a successful Join. Failures swallowed by the
// ignore-failures policy are not recorded here.
func (r *Runner) Err() error {
	r.failureMu.Lock()
	defer r.failureMu.Unlock()
	return r.failure
}

// Storage returns the runner's storage context. The loop's current task
// invocation is the only writer, so callers must read it only while the
// runner is paused, dead, or not yet started.
func (r *Runner) Storage() *Storage {
	return r.storage
}

// Stats returns a snapshot of the runner's observable state.
func (r *Runner) Stats() RunnerStats {
	r.statsMu.Lock()
	startedAt, finishedAt, lastCycle := r.startedAt, r.finishedAt, r.lastCycle
	r.statsMu.Unlock()
	return RunnerStats{
		Name:       r.name,
		State:      r.State(),
		Cycles:     r.cycles.Load(),
		Failures:   r.failures.Load(),
		Pauses:     r.pauses.Load(),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		LastCycle:  lastCycle,
	}
}

// loop is the execution loop. It owns the paused and terminated flags and
// performs the single transition to dead when it exits.
func (r *Runner) loop() {
	defer r.die()

	s := r.signals
	for {
		s.mu.Lock()
		if s.killRequested {
			s.mu.Unlock()
			debugTrace("kill observed", F("runner", r.name))
			return
		}
		if s.pauseRequested {
			r.parkUntilResumeOrKill()
			continue
		}
		s.mu.Unlock()

		cont, err := r.invoke()
		if err != nil {
			r.failures.Add(1)
			r.metrics.RecordTaskFailure(r.name)
			if r.ignoreErrors {
				r.logger.Warn("task failure ignored",
					F("runner", r.name), F("cycle", r.cycles.Load()), F("error", err))
				continue
			}
			r.setFailure(&TaskError{Cycle: r.cycles.Load(), Err: err})
			r.logger.Error("task failed, stopping runner",
				F("runner", r.name), F("cycle", r.cycles.Load()), F("error", err))
			return
		}
		if !cont {
			debugTrace("task self-terminated", F("runner", r.name), F("cycle", r.cycles.Load()))
			return
		}
	}
}

// parkUntilResumeOrKill acknowledges a pause request and blocks on the
// condition variable until the request is withdrawn or a kill arrives.
// Called with signals.mu held; returns with it released.
func (r *Runner) parkUntilResumeOrKill() {
	s := r.signals
	s.paused = true
	s.cond.Broadcast()
	s.mu.Unlock()

	// Hooks run outside the signals mutex so implementations may call the
	// runner's observers without deadlocking.
	r.traceState(StateRunning, StatePaused)
	r.metrics.RecordStateChange(r.name, StatePaused)
	parkedAt := time.Now()

	s.mu.Lock()
	for s.pauseRequested && !s.killRequested {
		s.cond.Wait()
	}
	s.paused = false
	s.cond.Broadcast()
	s.mu.Unlock()

	r.pauses.Add(1)
	r.metrics.RecordPause(r.name, time.Since(parkedAt))
	r.traceState(StatePaused, StateRunning)
	r.metrics.RecordStateChange(r.name, StateRunning)
}

// invoke runs one task invocation with panic recovery. A recovered panic
// is reported as a task failure wrapping ErrTaskPanicked. The invocation
// counts as a cycle whether it succeeds, errors, or panics.
func (r *Runner) invoke() (cont bool, err error) {
	startedAt := time.Now()
	r.cycles.Add(1)
	defer func() {
		duration := time.Since(startedAt)
		r.statsMu.Lock()
		r.lastCycle = duration
		r.statsMu.Unlock()
		r.metrics.RecordCycle(r.name, duration)
		if rec := recover(); rec != nil {
			cont = false
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, rec)
		}
	}()
	return r.task(r.storage)
}

// die performs the runner's single transition to the dead state.
func (r *Runner) die() {
	r.statsMu.Lock()
	r.finishedAt = time.Now()
	r.statsMu.Unlock()

	r.traceState(StateStopping, StateDead)
	r.metrics.RecordStateChange(r.name, StateDead)
	r.signals.markTerminated()
}

func (r *Runner) setFailure(err error) {
	r.failureMu.Lock()
	r.failure = err
	r.failureMu.Unlock()
}

func (r *Runner) traceState(from, to State) {
	debugTrace("state transition", F("runner", r.name), F("from", from), F("to", to))
}
