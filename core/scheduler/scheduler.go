package scheduler

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/kilianp07/promanage/core/model"
)

// Schedule places jobs into slotCount slots without any input validation.
// Jobs with a deadline below one are reported as unscheduled. Jobs with equal
// revenue keep their input order. NaN or infinite revenue is accepted here and
// makes the result totals non-finite; the JSON encoders write those as null.
func Schedule(jobs []model.Job, slotCount int) (Result, error) {
	return schedule(jobs, slotCount, ValidationNone)
}

// Scheduler runs the sequencing algorithm with a fixed configuration.
// It holds no state between calls and is safe for concurrent use.
type Scheduler struct {
	config SchedulerConfig
}

// New returns a Scheduler for cfg after applying defaults and validating it.
func New(cfg SchedulerConfig) (*Scheduler, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{config: cfg}, nil
}

// Config returns the effective configuration.
func (s *Scheduler) Config() SchedulerConfig { return s.config }

// Schedule places jobs according to the configured slot count and
// validation policy.
func (s *Scheduler) Schedule(jobs []model.Job) (Result, error) {
	return schedule(jobs, s.config.SlotCount, s.config.Validation)
}

func schedule(jobs []model.Job, slotCount int, policy ValidationPolicy) (Result, error) {
	if slotCount < 1 {
		return Result{}, fmt.Errorf("%w: slot count %d must be at least 1", ErrInvalidConfiguration, slotCount)
	}
	res := Result{Slots: make([]Slot, slotCount)}
	candidates := make([]model.Job, 0, len(jobs))
	seen := make(map[string]struct{}, len(jobs))
	for _, j := range jobs {
		if policy != ValidationNone {
			if err := validate(j, seen); err != nil {
				if policy == ValidationStrict {
					return Result{}, err
				}
				res.Rejected = append(res.Rejected, Rejection{Job: j, Reason: err.Error()})
				continue
			}
		}
		if !j.Eligible() {
			res.Unscheduled = append(res.Unscheduled, j)
			continue
		}
		candidates = append(candidates, j)
	}

	slices.SortStableFunc(candidates, byRevenueDesc)

	for _, j := range candidates {
		if !res.place(j) {
			res.Unscheduled = append(res.Unscheduled, j)
		}
	}
	return res, nil
}

// byRevenueDesc orders by revenue, highest first. NaN sorts after every number.
func byRevenueDesc(a, b model.Job) int {
	return cmp.Compare(b.Revenue, a.Revenue)
}

func validate(j model.Job, seen map[string]struct{}) error {
	if err := j.Validate(); err != nil {
		return err
	}
	if _, dup := seen[j.ID]; dup {
		return &model.InvalidJobError{JobID: j.ID, Reason: "duplicate id"}
	}
	seen[j.ID] = struct{}{}
	return nil
}
