package jobstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// DefaultPrefix is used by sequential ids when none is configured.
const DefaultPrefix = "PRJ"

// Id schemes accepted by NewIDGenerator.
const (
	SchemeSequential = "sequential"
	SchemeUUID       = "uuid"
)

// IDGenerator derives a fresh job id from the ids already in use.
type IDGenerator interface {
	Next(existing []string) string
}

// SequentialIDs produces PRJ001, PRJ002, ... continuing after the highest
// numbered id carrying the prefix.
type SequentialIDs struct {
	Prefix string
	Width  int
}

// NewSequentialIDs returns a generator padding numbers to three digits.
func NewSequentialIDs(prefix string) SequentialIDs {
	return SequentialIDs{Prefix: prefix, Width: 3}
}

// Next returns the id following the highest existing one.
func (s SequentialIDs) Next(existing []string) string {
	highest := 0
	for _, id := range existing {
		rest, ok := strings.CutPrefix(id, s.Prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		highest = max(highest, n)
	}
	return fmt.Sprintf("%s%0*d", s.Prefix, s.Width, highest+1)
}

// UUIDs produces random version 4 ids.
type UUIDs struct{}

// Next ignores existing ids; collisions are not a practical concern.
func (UUIDs) Next([]string) string { return uuid.NewString() }

// NewIDGenerator selects a generator by scheme name.
func NewIDGenerator(scheme, prefix string) (IDGenerator, error) {
	switch scheme {
	case "", SchemeSequential:
		if prefix == "" {
			prefix = DefaultPrefix
		}
		return NewSequentialIDs(prefix), nil
	case SchemeUUID:
		return UUIDs{}, nil
	default:
		return nil, fmt.Errorf("unknown id scheme %s", scheme)
	}
}
