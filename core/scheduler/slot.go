package scheduler

import (
	"encoding/json"

	"github.com/kilianp07/promanage/core/model"
)

// Slot is one period of the schedule. The zero value is an empty slot.
type Slot struct {
	job      model.Job
	occupied bool
}

// Occupied returns a slot holding j.
func Occupied(j model.Job) Slot { return Slot{job: j, occupied: true} }

// Empty reports whether no job was placed in the slot.
func (s Slot) Empty() bool { return !s.occupied }

// Job returns the placed job and true, or the zero Job and false.
func (s Slot) Job() (model.Job, bool) { return s.job, s.occupied }

// MarshalJSON encodes an empty slot as null and an occupied slot as its job.
func (s Slot) MarshalJSON() ([]byte, error) {
	if !s.occupied {
		return []byte("null"), nil
	}
	return json.Marshal(s.job)
}
