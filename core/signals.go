package core

import "sync"

// controlSignals carries controller intent across to the execution loop.
// The controller side writes only the request flags; the loop side writes
// only the observed flags. Every access goes through mu, which makes
// request-setting linearizable with respect to the loop's between-cycle
// checks: once a request call returns, the loop sees it on its next check.
//
// The done channel is closed exactly once, by the loop, when it exits; it
// exists so Join can wait with a timeout, which sync.Cond cannot do.
type controlSignals struct {
	mu   sync.Mutex
	cond *sync.Cond

	// Controller-written.
	pauseRequested bool
	killRequested  bool

	// Loop-written.
	paused     bool
	terminated bool

	done chan struct{}
}

func newControlSignals() *controlSignals {
	s := &controlSignals{done: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// requestPause sets the pause request. When wait is true it blocks until
// the loop acknowledges by setting paused, or until the loop terminates.
func (s *controlSignals) requestPause(wait bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminated {
		return
	}
	s.pauseRequested = true
	s.cond.Broadcast()
	if wait {
		for !s.paused && !s.terminated {
			s.cond.Wait()
		}
	}
}

// clearPause withdraws any pause request, letting a paused loop resume.
func (s *controlSignals) clearPause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauseRequested = false
	s.cond.Broadcast()
}

// requestKill sets the kill request. Termination itself stays asynchronous;
// callers wait on done if they need to block until death.
func (s *controlSignals) requestKill() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.killRequested = true
	s.cond.Broadcast()
}

// isPaused reports the loop-observed paused flag.
func (s *controlSignals) isPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// isTerminated reports the loop-observed terminated flag.
func (s *controlSignals) isTerminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminated
}

// markTerminated is the loop's single, final transition. It wakes every
// waiter: cond waiters (pause acknowledgment) and done waiters (join/kill).
func (s *controlSignals) markTerminated() {
	s.mu.Lock()
	s.paused = false
	s.terminated = true
	s.cond.Broadcast()
	s.mu.Unlock()
	close(s.done)
}
