package core

import (
	"sync"
	"sync/atomic"
)

// Debug instrumentation is process-wide: a single toggle affects every
// Runner instance currently and subsequently active. It traces lifecycle
// state transitions and signal observations and has no effect on
// scheduling or correctness.

var (
	debugOutput atomic.Bool

	debugMu     sync.RWMutex
	debugLogger Logger = NewDefaultLogger()
)

// SetDebugOutput enables or disables diagnostic tracing of lifecycle state
// transitions and signal observations for all runners. Default is disabled.
func SetDebugOutput(enabled bool) {
	debugOutput.Store(enabled)
}

// DebugOutputEnabled reports whether diagnostic tracing is enabled.
func DebugOutputEnabled() bool {
	return debugOutput.Load()
}

// SetDebugLogger replaces the logger used for diagnostic tracing.
// A nil logger restores the default.
func SetDebugLogger(logger Logger) {
	debugMu.Lock()
	defer debugMu.Unlock()
	if logger == nil {
		logger = NewDefaultLogger()
	}
	debugLogger = logger
}

// debugTrace emits a trace line when debug output is enabled.
func debugTrace(msg string, fields ...Field) {
	if !debugOutput.Load() {
		return
	}
	debugMu.RLock()
	logger := debugLogger
	debugMu.RUnlock()
	logger.Debug(msg, fields...)
}
