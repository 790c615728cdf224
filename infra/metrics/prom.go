package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/promanage/core/metrics"
)

// PromSink records scheduling runs in Prometheus metrics.
type PromSink struct {
	runs        *prometheus.CounterVec
	duration    prometheus.Histogram
	filled      prometheus.Gauge
	unscheduled prometheus.Gauge
	captured    prometheus.Gauge
	missed      prometheus.Gauge
	jobsAdded   prometheus.Counter
}

// NewPromSink registers scheduling metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_runs_total",
		Help: "Total number of scheduling runs",
	}, []string{"slot_count"}))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_duration_seconds",
		Help:    "Time spent computing a schedule",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	}))
	if err != nil {
		return nil, err
	}
	filled, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_slots_filled",
		Help: "Number of occupied slots in the last schedule",
	}))
	if err != nil {
		return nil, err
	}
	unscheduled, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_unscheduled_jobs",
		Help: "Number of jobs left out of the last schedule",
	}))
	if err != nil {
		return nil, err
	}
	captured, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_captured_revenue",
		Help: "Revenue of the jobs placed in the last schedule",
	}))
	if err != nil {
		return nil, err
	}
	missed, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_missed_revenue",
		Help: "Revenue of the jobs left out of the last schedule",
	}))
	if err != nil {
		return nil, err
	}
	jobsAdded, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jobs_added_total",
		Help: "Total number of jobs added to the store",
	}))
	if err != nil {
		return nil, err
	}
	return &PromSink{
		runs:        runs,
		duration:    duration,
		filled:      filled,
		unscheduled: unscheduled,
		captured:    captured,
		missed:      missed,
		jobsAdded:   jobsAdded,
	}, nil
}

// register returns the already registered collector when c is a duplicate.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}

// RecordScheduleRun updates counters and gauges for the run.
func (s *PromSink) RecordScheduleRun(run coremetrics.ScheduleRun) error {
	s.runs.WithLabelValues(strconv.Itoa(run.SlotCount)).Inc()
	s.duration.Observe(run.Duration.Seconds())
	s.filled.Set(float64(run.Scheduled))
	s.unscheduled.Set(float64(run.Unscheduled))
	s.captured.Set(run.ScheduledRevenue)
	s.missed.Set(run.UnscheduledRevenue)
	return nil
}

// RecordJobAdded increments the job intake counter.
func (s *PromSink) RecordJobAdded(coremetrics.JobAddedEvent) error {
	s.jobsAdded.Inc()
	return nil
}
