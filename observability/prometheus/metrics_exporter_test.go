package prometheus

import (
	"testing"
	"time"

	"github.com/dwsmith/go-threadify/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsExporter_RecordMethods(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("threadify", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	exporter.RecordCycle("runner-a", 250*time.Millisecond)
	exporter.RecordTaskFailure("runner-a")
	exporter.RecordStateChange("runner-a", core.StatePaused)
	exporter.RecordPause("runner-a", 100*time.Millisecond)

	failureTotal := testutil.ToFloat64(exporter.taskFailureTotal.WithLabelValues("runner-a"))
	if failureTotal != 1 {
		t.Fatalf("failure total = %v, want 1", failureTotal)
	}

	state := testutil.ToFloat64(exporter.runnerState.WithLabelValues("runner-a"))
	if state != float64(core.StatePaused) {
		t.Fatalf("runner state = %v, want %v", state, float64(core.StatePaused))
	}

	cycleCount, err := histogramSampleCount(exporter.cycleDurationSeconds.WithLabelValues("runner-a"))
	if err != nil {
		t.Fatalf("histogramSampleCount failed: %v", err)
	}
	if cycleCount != 1 {
		t.Fatalf("cycle sample count = %d, want 1", cycleCount)
	}

	pauseCount, err := histogramSampleCount(exporter.pauseDurationSeconds.WithLabelValues("runner-a"))
	if err != nil {
		t.Fatalf("histogramSampleCount failed: %v", err)
	}
	if pauseCount != 1 {
		t.Fatalf("pause sample count = %d, want 1", pauseCount)
	}
}

func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("threadify", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("first NewMetricsExporter failed: %v", err)
	}
	second, err := NewMetricsExporter("threadify", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("second NewMetricsExporter failed: %v", err)
	}

	first.RecordTaskFailure("runner-a")
	second.RecordTaskFailure("runner-a")

	got := testutil.ToFloat64(first.taskFailureTotal.WithLabelValues("runner-a"))
	if got != 2 {
		t.Fatalf("shared failure counter = %v, want 2", got)
	}
}

func TestMetricsExporter_EmptyLabelNormalized(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	exporter.RecordTaskFailure("")

	got := testutil.ToFloat64(exporter.taskFailureTotal.WithLabelValues("unknown"))
	if got != 1 {
		t.Fatalf("normalized failure counter = %v, want 1", got)
	}
}

func histogramSampleCount(observer prom.Observer) (uint64, error) {
	collector, ok := observer.(prom.Collector)
	if !ok {
		return 0, nil
	}

	metricCh := make(chan prom.Metric, 1)
	collector.Collect(metricCh)
	close(metricCh)
	for metric := range metricCh {
		msg := &dto.Metric{}
		if err := metric.Write(msg); err != nil {
			return 0, err
		}
		if msg.Histogram != nil {
			return msg.Histogram.GetSampleCount(), nil
		}
	}
	return 0, nil
}
