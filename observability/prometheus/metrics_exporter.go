package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/dwsmith/go-threadify/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	CycleDurationBuckets []float64
	PauseDurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	cycleDurationSeconds *prom.HistogramVec
	pauseDurationSeconds *prom.HistogramVec
	taskFailureTotal     *prom.CounterVec
	runnerState          *prom.GaugeVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "threadify"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	cycleBuckets := opts.CycleDurationBuckets
	if len(cycleBuckets) == 0 {
		cycleBuckets = prom.DefBuckets
	}
	pauseBuckets := opts.PauseDurationBuckets
	if len(pauseBuckets) == 0 {
		pauseBuckets = prom.DefBuckets
	}

	cycleVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "cycle_duration_seconds",
		Help:      "Task invocation duration in seconds.",
		Buckets:   cycleBuckets,
	}, []string{"runner"})
	pauseVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "pause_duration_seconds",
		Help:      "Time spent parked per pause interval in seconds.",
		Buckets:   pauseBuckets,
	}, []string{"runner"})
	failureVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_failure_total",
		Help:      "Total number of task errors and recovered panics.",
	}, []string{"runner"})
	stateVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "runner_state",
		Help:      "Current lifecycle state (0=not_started, 1=running, 2=paused, 3=stopping, 4=dead).",
	}, []string{"runner"})

	var err error
	if cycleVec, err = registerCollector(reg, cycleVec); err != nil {
		return nil, err
	}
	if pauseVec, err = registerCollector(reg, pauseVec); err != nil {
		return nil, err
	}
	if failureVec, err = registerCollector(reg, failureVec); err != nil {
		return nil, err
	}
	if stateVec, err = registerCollector(reg, stateVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		cycleDurationSeconds: cycleVec,
		pauseDurationSeconds: pauseVec,
		taskFailureTotal:     failureVec,
		runnerState:          stateVec,
	}, nil
}

// RecordCycle records task invocation duration.
func (m *MetricsExporter) RecordCycle(runnerName string, duration time.Duration) {
	if m == nil {
		return
	}
	m.cycleDurationSeconds.WithLabelValues(normalizeLabel(runnerName, "unknown")).Observe(duration.Seconds())
}

// RecordTaskFailure records task error and panic events.
func (m *MetricsExporter) RecordTaskFailure(runnerName string) {
	if m == nil {
		return
	}
	m.taskFailureTotal.WithLabelValues(normalizeLabel(runnerName, "unknown")).Inc()
}

// RecordStateChange records lifecycle state transitions.
func (m *MetricsExporter) RecordStateChange(runnerName string, state core.State) {
	if m == nil {
		return
	}
	m.runnerState.WithLabelValues(normalizeLabel(runnerName, "unknown")).Set(float64(state))
}

// RecordPause records completed pause intervals.
func (m *MetricsExporter) RecordPause(runnerName string, duration time.Duration) {
	if m == nil {
		return
	}
	m.pauseDurationSeconds.WithLabelValues(normalizeLabel(runnerName, "unknown")).Observe(duration.Seconds())
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
