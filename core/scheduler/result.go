package scheduler

import (
	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/promanage/core/model"
)

// Placement is a job together with the 0-based slot it occupies.
type Placement struct {
	Slot int       `json:"slot"`
	Job  model.Job `json:"job"`
}

// Rejection records a job refused by validation under the skip policy.
type Rejection struct {
	Job    model.Job `json:"job"`
	Reason string    `json:"reason"`
}

// Result is the outcome of one scheduling run.
type Result struct {
	// Slots has exactly one entry per period, in period order.
	Slots []Slot `json:"slots"`
	// Unscheduled lists ineligible jobs in input order followed by jobs
	// that found no free slot, in processing order.
	Unscheduled []model.Job `json:"unscheduled"`
	// Rejected is only filled when validation runs with the skip policy.
	Rejected []Rejection `json:"rejected,omitempty"`
}

// Scheduled returns the placed jobs in slot order.
func (r Result) Scheduled() []Placement {
	var out []Placement
	for i, s := range r.Slots {
		if j, ok := s.Job(); ok {
			out = append(out, Placement{Slot: i, Job: j})
		}
	}
	return out
}

// Filled returns the number of occupied slots.
func (r Result) Filled() int {
	n := 0
	for _, s := range r.Slots {
		if !s.Empty() {
			n++
		}
	}
	return n
}

// ScheduledRevenue sums the revenue of every placed job.
func (r Result) ScheduledRevenue() float64 {
	var rev []float64
	for _, s := range r.Slots {
		if j, ok := s.Job(); ok {
			rev = append(rev, j.Revenue)
		}
	}
	return floats.Sum(rev)
}

// UnscheduledRevenue sums the revenue of the jobs that could not be placed.
func (r Result) UnscheduledRevenue() float64 {
	rev := make([]float64, len(r.Unscheduled))
	for i, j := range r.Unscheduled {
		rev[i] = j.Revenue
	}
	return floats.Sum(rev)
}

// place puts j in the latest free slot within its deadline and reports
// whether one was found.
func (r *Result) place(j model.Job) bool {
	for i := j.LatestSlot(len(r.Slots)); i >= 0; i-- {
		if r.Slots[i].Empty() {
			r.Slots[i] = Occupied(j)
			return true
		}
	}
	return false
}
