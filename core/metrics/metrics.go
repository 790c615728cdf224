package metrics

import (
	"time"

	"github.com/kilianp07/promanage/core/model"
	"github.com/kilianp07/promanage/core/scheduler"
)

// ScheduleRun summarizes one scheduling run.
type ScheduleRun struct {
	Time               time.Time
	SlotCount          int
	Jobs               int
	Scheduled          int
	Unscheduled        int
	Rejected           int
	ScheduledRevenue   float64
	UnscheduledRevenue float64
	Duration           time.Duration
}

// NewScheduleRun derives the run summary from a result.
func NewScheduleRun(res scheduler.Result, jobs int, started time.Time, took time.Duration) ScheduleRun {
	return ScheduleRun{
		Time:               started,
		SlotCount:          len(res.Slots),
		Jobs:               jobs,
		Scheduled:          res.Filled(),
		Unscheduled:        len(res.Unscheduled),
		Rejected:           len(res.Rejected),
		ScheduledRevenue:   res.ScheduledRevenue(),
		UnscheduledRevenue: res.UnscheduledRevenue(),
		Duration:           took,
	}
}

// MetricsSink records scheduling runs for observability purposes.
type MetricsSink interface {
	RecordScheduleRun(run ScheduleRun) error
}

// JobAddedEvent is emitted when a job enters the store.
type JobAddedEvent struct {
	Job  model.Job
	Time time.Time
}

// JobRecorder is implemented by sinks that track job intake.
type JobRecorder interface {
	RecordJobAdded(ev JobAddedEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordScheduleRun(ScheduleRun) error { return nil }
func (NopSink) RecordJobAdded(JobAddedEvent) error  { return nil }

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordScheduleRun forwards the run to all sinks, returning the first error.
func (m *MultiSink) RecordScheduleRun(run ScheduleRun) error {
	for _, s := range m.Sinks {
		if err := s.RecordScheduleRun(run); err != nil {
			return err
		}
	}
	return nil
}

// RecordJobAdded forwards to sinks implementing JobRecorder.
func (m *MultiSink) RecordJobAdded(ev JobAddedEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(JobRecorder); ok {
			if err := rec.RecordJobAdded(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases every child sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		CloseSink(s)
	}
}

// CloseSink closes s when it implements Close, with or without an error
// result. Close errors are dropped.
func CloseSink(s MetricsSink) {
	switch c := s.(type) {
	case interface{ Close() }:
		c.Close()
	case interface{ Close() error }:
		_ = c.Close()
	}
}
