package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/dwsmith/go-threadify/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// RunnerSnapshotProvider provides current runner stats snapshots.
// *threadify.Runner satisfies it via its Stats method.
type RunnerSnapshotProvider interface {
	Stats() core.RunnerStats
}

// SnapshotPoller periodically exports runner Stats() snapshots into
// Prometheus gauges. It complements MetricsExporter: the exporter records
// events as they happen, the poller publishes point-in-time state for
// runners that were constructed without a metrics sink.
type SnapshotPoller struct {
	interval time.Duration

	runnersMu sync.RWMutex
	runners   map[string]RunnerSnapshotProvider

	runnerAlive    *prom.GaugeVec
	runnerPaused   *prom.GaugeVec
	runnerCycles   *prom.GaugeVec
	runnerFailures *prom.GaugeVec
	runnerPauses   *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	runnerAlive := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadify",
		Name:      "runner_alive",
		Help:      "Runner alive state (1=alive, 0=dead or not started).",
	}, []string{"runner"})
	runnerPaused := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadify",
		Name:      "runner_paused",
		Help:      "Runner paused state (1=paused, 0=otherwise).",
	}, []string{"runner"})
	runnerCycles := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadify",
		Name:      "runner_cycles",
		Help:      "Completed task invocation count snapshot.",
	}, []string{"runner"})
	runnerFailures := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadify",
		Name:      "runner_failures",
		Help:      "Task failure count snapshot.",
	}, []string{"runner"})
	runnerPauses := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "threadify",
		Name:      "runner_pauses",
		Help:      "Completed pause interval count snapshot.",
	}, []string{"runner"})

	var err error
	if runnerAlive, err = registerCollector(reg, runnerAlive); err != nil {
		return nil, err
	}
	if runnerPaused, err = registerCollector(reg, runnerPaused); err != nil {
		return nil, err
	}
	if runnerCycles, err = registerCollector(reg, runnerCycles); err != nil {
		return nil, err
	}
	if runnerFailures, err = registerCollector(reg, runnerFailures); err != nil {
		return nil, err
	}
	if runnerPauses, err = registerCollector(reg, runnerPauses); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:       interval,
		runners:        make(map[string]RunnerSnapshotProvider),
		runnerAlive:    runnerAlive,
		runnerPaused:   runnerPaused,
		runnerCycles:   runnerCycles,
		runnerFailures: runnerFailures,
		runnerPauses:   runnerPauses,
	}, nil
}

// AddRunner adds or replaces a runner snapshot provider by name.
func (p *SnapshotPoller) AddRunner(name string, provider RunnerSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "runner")
	p.runnersMu.Lock()
	p.runners[name] = provider
	p.runnersMu.Unlock()
}

// RemoveRunner drops a runner from polling.
func (p *SnapshotPoller) RemoveRunner(name string) {
	if p == nil {
		return
	}
	p.runnersMu.Lock()
	delete(p.runners, normalizeLabel(name, "runner"))
	p.runnersMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.runnersMu.RLock()
	defer p.runnersMu.RUnlock()

	for name, provider := range p.runners {
		stats := provider.Stats()
		alive := stats.State == core.StateRunning ||
			stats.State == core.StatePaused ||
			stats.State == core.StateStopping
		if alive {
			p.runnerAlive.WithLabelValues(name).Set(1)
		} else {
			p.runnerAlive.WithLabelValues(name).Set(0)
		}
		if stats.State == core.StatePaused {
			p.runnerPaused.WithLabelValues(name).Set(1)
		} else {
			p.runnerPaused.WithLabelValues(name).Set(0)
		}
		p.runnerCycles.WithLabelValues(name).Set(float64(stats.Cycles))
		p.runnerFailures.WithLabelValues(name).Set(float64(stats.Failures))
		p.runnerPauses.WithLabelValues(name).Set(float64(stats.Pauses))
	}
}
