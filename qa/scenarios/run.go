package scenarios

import (
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/promanage/core/metrics"
	"github.com/kilianp07/promanage/core/model"
	"github.com/kilianp07/promanage/core/scheduler"
	"github.com/kilianp07/promanage/infra/metrics"
)

func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	s, err := scheduler.New(sc.SchedulerConfig())
	if err != nil {
		if sc.Expected.Error != "" {
			checkError(t, sc, err)
			return
		}
		t.Fatalf("scheduler: %v", err)
	}
	jobs := make([]model.Job, len(sc.Jobs))
	for i, j := range sc.Jobs {
		jobs[i] = j.ToModel()
	}

	started := time.Now()
	res, err := s.Schedule(jobs)
	if sc.Expected.Error != "" {
		checkError(t, sc, err)
		return
	}
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}
	if err := sink.RecordScheduleRun(coremetrics.NewScheduleRun(res, len(jobs), started, time.Since(started))); err != nil {
		t.Fatalf("record: %v", err)
	}

	if got := slotIDs(res); !slices.Equal(got, sc.Expected.Slots) {
		t.Errorf("scenario %s slots: expected %q, got %q", sc.Name, sc.Expected.Slots, got)
	}
	if got := jobIDs(res.Unscheduled); !slices.Equal(got, sc.Expected.Unscheduled) {
		t.Errorf("scenario %s unscheduled: expected %q, got %q", sc.Name, sc.Expected.Unscheduled, got)
	}
	var rejected []string
	for _, r := range res.Rejected {
		rejected = append(rejected, r.Job.ID)
	}
	if !slices.Equal(rejected, sc.Expected.Rejected) {
		t.Errorf("scenario %s rejected: expected %q, got %q", sc.Name, sc.Expected.Rejected, rejected)
	}
	if !near(res.ScheduledRevenue(), sc.Expected.ScheduledRevenue) {
		t.Errorf("scenario %s scheduled revenue: expected %v, got %v", sc.Name, sc.Expected.ScheduledRevenue, res.ScheduledRevenue())
	}
	if !near(res.UnscheduledRevenue(), sc.Expected.UnscheduledRevenue) {
		t.Errorf("scenario %s unscheduled revenue: expected %v, got %v", sc.Name, sc.Expected.UnscheduledRevenue, res.UnscheduledRevenue())
	}

	if got := gaugeValue(t, reg, "schedule_captured_revenue"); !near(got, sc.Expected.ScheduledRevenue) {
		t.Errorf("scenario %s captured revenue gauge: expected %v, got %v", sc.Name, sc.Expected.ScheduledRevenue, got)
	}
	if got := gaugeValue(t, reg, "schedule_slots_filled"); int(got) != res.Filled() {
		t.Errorf("scenario %s filled gauge: expected %d, got %v", sc.Name, res.Filled(), got)
	}
}

func checkError(t *testing.T, sc *Scenario, err error) {
	t.Helper()
	var want error
	switch sc.Expected.Error {
	case "invalid_job":
		want = scheduler.ErrInvalidJob
	case "invalid_configuration":
		want = scheduler.ErrInvalidConfiguration
	default:
		t.Fatalf("scenario %s: unknown expected error %q", sc.Name, sc.Expected.Error)
	}
	if err == nil {
		t.Fatalf("scenario %s expected an error", sc.Name)
	}
	if !errors.Is(err, want) {
		t.Fatalf("scenario %s: expected %v, got %v", sc.Name, want, err)
	}
}

func slotIDs(res scheduler.Result) []string {
	out := make([]string, len(res.Slots))
	for i, s := range res.Slots {
		if j, ok := s.Job(); ok {
			out[i] = j.ID
		}
	}
	return out
}

func jobIDs(jobs []model.Job) []string {
	var out []string
	for _, j := range jobs {
		out = append(out, j.ID)
	}
	return out
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func gaugeValue(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == name && len(f.GetMetric()) > 0 {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
