// Package events defines the events published on the service event bus.
//
// Available event types:
//   - JobAdded: a job entered the store
//   - ScheduleComputed: a scheduling run finished
package events

import (
	"time"

	"github.com/kilianp07/promanage/core/metrics"
	"github.com/kilianp07/promanage/core/model"
	"github.com/kilianp07/promanage/core/scheduler"
)

// JobAdded is published after a job has been stored.
type JobAdded struct {
	Job  model.Job
	Time time.Time
}

// ScheduleComputed is published after every successful scheduling run.
type ScheduleComputed struct {
	Result scheduler.Result
	Run    metrics.ScheduleRun
	// Labels holds one display name per slot.
	Labels []string
}
