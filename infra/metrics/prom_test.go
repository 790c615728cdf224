package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/promanage/core/factory"
	coremetrics "github.com/kilianp07/promanage/core/metrics"
)

func TestPromSink_RecordScheduleRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	run := coremetrics.ScheduleRun{
		Time:               time.Now(),
		SlotCount:          2,
		Jobs:               4,
		Scheduled:          2,
		Unscheduled:        2,
		ScheduledRevenue:   115,
		UnscheduledRevenue: 37,
		Duration:           50 * time.Microsecond,
	}
	if err := sink.RecordScheduleRun(run); err != nil {
		t.Fatalf("record error: %v", err)
	}
	expected := `
# HELP schedule_runs_total Total number of scheduling runs
# TYPE schedule_runs_total counter
schedule_runs_total{slot_count="2"} 1
`
	if err := testutil.CollectAndCompare(sink.runs, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if v := testutil.ToFloat64(sink.captured); v != 115 {
		t.Errorf("captured revenue %v", v)
	}
	if v := testutil.ToFloat64(sink.missed); v != 37 {
		t.Errorf("missed revenue %v", v)
	}
	if v := testutil.ToFloat64(sink.filled); v != 2 {
		t.Errorf("filled %v", v)
	}
	if n := testutil.CollectAndCount(sink.duration); n != 1 {
		t.Errorf("expected one histogram, got %d", n)
	}
}

func TestPromSink_ReRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if err := second.RecordJobAdded(coremetrics.JobAddedEvent{}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if v := testutil.ToFloat64(first.jobsAdded); v != 1 {
		t.Fatalf("expected shared counter, got %v", v)
	}
}

func TestRegisteredSinks(t *testing.T) {
	s, err := coremetrics.NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("nil config: %v", err)
	}
	if _, ok := s.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink")
	}
}

func TestRegisteredPrometheusSinkUsesDefaultRegistry(t *testing.T) {
	cfg := []factory.ModuleConfig{{Type: "prometheus"}}
	s, err := coremetrics.NewMetricsSink(cfg)
	if err != nil {
		t.Fatalf("prometheus sink: %v", err)
	}
	first, ok := s.(*PromSink)
	if !ok {
		t.Fatalf("expected *PromSink, got %T", s)
	}
	again, err := coremetrics.NewMetricsSink(cfg)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	before := testutil.ToFloat64(first.jobsAdded)
	if err := again.(*PromSink).RecordJobAdded(coremetrics.JobAddedEvent{}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if v := testutil.ToFloat64(first.jobsAdded); v != before+1 {
		t.Fatalf("expected sinks to share the default registry collectors, got %v", v)
	}
}
