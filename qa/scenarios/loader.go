// Package scenarios runs scheduling scenarios described in YAML files
// against the scheduler and the Prometheus sink.
package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/promanage/core/model"
	"github.com/kilianp07/promanage/core/scheduler"
)

// JobDef describes one job. A missing title defaults to the id; an explicit
// empty title is kept.
type JobDef struct {
	ID       string  `yaml:"id"`
	Title    *string `yaml:"title"`
	Deadline int     `yaml:"deadline"`
	Revenue  float64 `yaml:"revenue"`
}

func (j JobDef) ToModel() model.Job {
	title := j.ID
	if j.Title != nil {
		title = *j.Title
	}
	return model.Job{ID: j.ID, Title: title, Deadline: j.Deadline, Revenue: j.Revenue}
}

// Expected lists job ids per slot; an empty string marks an empty slot.
// Error names the sentinel the run must fail with: "invalid_job" or
// "invalid_configuration".
type Expected struct {
	Slots              []string `yaml:"slots"`
	Unscheduled        []string `yaml:"unscheduled"`
	Rejected           []string `yaml:"rejected,omitempty"`
	ScheduledRevenue   float64  `yaml:"scheduled_revenue"`
	UnscheduledRevenue float64  `yaml:"unscheduled_revenue"`
	Error              string   `yaml:"error,omitempty"`
}

type Scenario struct {
	Name        string                     `yaml:"name"`
	Description string                     `yaml:"description,omitempty"`
	SlotCount   int                        `yaml:"slot_count"`
	Validation  scheduler.ValidationPolicy `yaml:"validation,omitempty"`
	Jobs        []JobDef                   `yaml:"jobs"`
	Expected    Expected                   `yaml:"expected"`
}

func (s Scenario) SchedulerConfig() scheduler.SchedulerConfig {
	cfg := scheduler.SchedulerConfig{SlotCount: s.SlotCount, Validation: s.Validation}
	cfg.SetDefaults()
	return cfg
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
