package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidationPolicy selects how the scheduler reacts to malformed jobs.
type ValidationPolicy string

const (
	// ValidationNone processes every job as given; negative revenue ranks last.
	ValidationNone ValidationPolicy = "none"
	// ValidationStrict aborts the whole run on the first invalid job.
	ValidationStrict ValidationPolicy = "strict"
	// ValidationSkip moves invalid jobs to Result.Rejected and continues.
	ValidationSkip ValidationPolicy = "skip"
)

// DefaultSlotCount is one working week.
const DefaultSlotCount = 5

// DefaultSlotLabels names the periods of a working week.
var DefaultSlotLabels = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// SchedulerConfig defines the planning horizon loaded from configuration.
type SchedulerConfig struct {
	SlotCount  int              `json:"slot_count" yaml:"slot_count"`
	SlotLabels []string         `json:"slot_labels" yaml:"slot_labels"`
	Validation ValidationPolicy `json:"validation" yaml:"validation"`
}

// SetDefaults fills unset fields with a five-day week and no validation.
func (c *SchedulerConfig) SetDefaults() {
	if c.SlotCount == 0 {
		c.SlotCount = DefaultSlotCount
	}
	if len(c.SlotLabels) == 0 {
		c.SlotLabels = slices.Clone(DefaultSlotLabels)
	}
	if c.Validation == "" {
		c.Validation = ValidationNone
	}
}

// Validate checks the slot count and validation policy.
func (c SchedulerConfig) Validate() error {
	if c.SlotCount < 1 {
		return fmt.Errorf("%w: slot_count must be positive, got %d", ErrInvalidConfiguration, c.SlotCount)
	}
	switch c.Validation {
	case ValidationNone, ValidationStrict, ValidationSkip:
	default:
		return fmt.Errorf("%w: unknown validation policy %q", ErrInvalidConfiguration, c.Validation)
	}
	return nil
}

// Label returns the display name of the 0-based slot i.
func (c SchedulerConfig) Label(i int) string {
	if i >= 0 && i < len(c.SlotLabels) && c.SlotLabels[i] != "" {
		return c.SlotLabels[i]
	}
	return fmt.Sprintf("Slot %d", i+1)
}

// LoadConfig loads SchedulerConfig from a JSON or YAML file, picking the
// format from the file extension.
func LoadConfig(path string) (SchedulerConfig, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" && ext != ".json" {
		return SchedulerConfig{}, fmt.Errorf("unsupported config format: %s", ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return SchedulerConfig{}, err
	}
	defer f.Close()
	return DecodeConfig(f, strings.TrimPrefix(ext, "."))
}

// DecodeConfig reads from r to decode a SchedulerConfig.
func DecodeConfig(r io.Reader, format string) (SchedulerConfig, error) {
	var cfg SchedulerConfig
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	return cfg, nil
}
