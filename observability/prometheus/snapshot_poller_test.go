package prometheus

import (
	"context"
	"testing"
	"time"

	"github.com/dwsmith/go-threadify/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type runnerStub struct {
	stats core.RunnerStats
}

func (s runnerStub) Stats() core.RunnerStats { return s.stats }

func TestSnapshotPoller_CollectsRunnerStats(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	poller.AddRunner("runner-a", runnerStub{stats: core.RunnerStats{
		State:    core.StatePaused,
		Cycles:   12,
		Failures: 2,
		Pauses:   3,
	}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	defer poller.Stop()

	time.Sleep(30 * time.Millisecond)

	if got := testutil.ToFloat64(poller.runnerAlive.WithLabelValues("runner-a")); got != 1 {
		t.Errorf("runner_alive = %v, want 1", got)
	}
	if got := testutil.ToFloat64(poller.runnerPaused.WithLabelValues("runner-a")); got != 1 {
		t.Errorf("runner_paused = %v, want 1", got)
	}
	if got := testutil.ToFloat64(poller.runnerCycles.WithLabelValues("runner-a")); got != 12 {
		t.Errorf("runner_cycles = %v, want 12", got)
	}
	if got := testutil.ToFloat64(poller.runnerFailures.WithLabelValues("runner-a")); got != 2 {
		t.Errorf("runner_failures = %v, want 2", got)
	}
	if got := testutil.ToFloat64(poller.runnerPauses.WithLabelValues("runner-a")); got != 3 {
		t.Errorf("runner_pauses = %v, want 3", got)
	}
}

func TestSnapshotPoller_DeadRunnerReportsNotAlive(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	poller.AddRunner("runner-dead", runnerStub{stats: core.RunnerStats{
		State:  core.StateDead,
		Cycles: 5,
	}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	defer poller.Stop()

	time.Sleep(30 * time.Millisecond)

	if got := testutil.ToFloat64(poller.runnerAlive.WithLabelValues("runner-dead")); got != 0 {
		t.Errorf("runner_alive = %v, want 0", got)
	}
	if got := testutil.ToFloat64(poller.runnerPaused.WithLabelValues("runner-dead")); got != 0 {
		t.Errorf("runner_paused = %v, want 0", got)
	}
}

func TestSnapshotPoller_StartStopIdempotent(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	ctx := context.Background()
	poller.Start(ctx)
	poller.Start(ctx)
	poller.Stop()
	poller.Stop()
}

func TestSnapshotPoller_WithLiveRunner(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	task := func(s *core.Storage) (bool, error) {
		time.Sleep(time.Millisecond)
		return true, nil
	}
	runner, err := core.New(task, nil, core.WithName("live"), core.WithAutoStart(true))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer runner.Kill(true)

	poller.AddRunner(runner.Name(), runner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	defer poller.Stop()

	time.Sleep(30 * time.Millisecond)

	if got := testutil.ToFloat64(poller.runnerAlive.WithLabelValues("live")); got != 1 {
		t.Errorf("runner_alive = %v, want 1", got)
	}
	if got := testutil.ToFloat64(poller.runnerCycles.WithLabelValues("live")); got < 1 {
		t.Errorf("runner_cycles = %v, want >= 1", got)
	}
}
