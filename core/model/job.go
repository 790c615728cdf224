package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidJob is returned (wrapped) when a job record fails validation.
var ErrInvalidJob = errors.New("invalid job")

// Job is a revenue-generating task that occupies exactly one slot when placed.
type Job struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// Deadline is the last 1-based slot the job may run in.
	Deadline int `json:"deadline"`
	// Revenue is captured only if the job is placed.
	Revenue float64 `json:"revenue"`
}

// Eligible reports whether the job can be considered for any slot at all.
func (j Job) Eligible() bool { return j.Deadline >= 1 }

// LatestSlot returns the 0-based index of the last slot the job may occupy
// in a schedule of slotCount slots. The result is negative for ineligible jobs.
func (j Job) LatestSlot(slotCount int) int {
	return min(j.Deadline, slotCount) - 1
}

// InvalidJobError describes why a job was refused.
type InvalidJobError struct {
	JobID  string
	Reason string
}

func (e *InvalidJobError) Error() string {
	if e.JobID == "" {
		return fmt.Sprintf("invalid job: %s", e.Reason)
	}
	return fmt.Sprintf("invalid job %s: %s", e.JobID, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidJob.
func (e *InvalidJobError) Unwrap() error { return ErrInvalidJob }

// Validate checks the record-level invariants: identifier and title present,
// revenue finite and non-negative. Deadlines are not checked; a job whose
// deadline is below one simply ends up unscheduled.
func (j Job) Validate() error {
	switch {
	case strings.TrimSpace(j.ID) == "":
		return &InvalidJobError{Reason: "missing id"}
	case strings.TrimSpace(j.Title) == "":
		return &InvalidJobError{JobID: j.ID, Reason: "missing title"}
	case math.IsNaN(j.Revenue) || math.IsInf(j.Revenue, 0):
		return &InvalidJobError{JobID: j.ID, Reason: "revenue is not finite"}
	case j.Revenue < 0:
		return &InvalidJobError{JobID: j.ID, Reason: fmt.Sprintf("negative revenue %.2f", j.Revenue)}
	}
	return nil
}

// String renders a short human form used in logs.
func (j Job) String() string {
	return fmt.Sprintf("%s %q (day %d, %.2f)", j.ID, j.Title, j.Deadline, j.Revenue)
}

// MarshalJSON writes a NaN or infinite revenue as null, which encoding/json
// would otherwise refuse.
func (j Job) MarshalJSON() ([]byte, error) {
	type plain Job
	return json.Marshal(struct {
		plain
		Revenue *float64 `json:"revenue"`
	}{plain(j), FiniteOrNil(j.Revenue)})
}

// FiniteOrNil returns a pointer to v, or nil when v is NaN or infinite.
func FiniteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
