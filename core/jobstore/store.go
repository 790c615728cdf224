// Package jobstore defines the job repository consumed by the scheduling
// service together with an in-memory implementation and id generators.
package jobstore

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/kilianp07/promanage/core/model"
)

// ErrDuplicateID is returned when a job with the same id is already stored.
var ErrDuplicateID = errors.New("job id already exists")

// Store persists job records. ListJobs returns a consistent snapshot ordered
// by id.
type Store interface {
	ListJobs(ctx context.Context) ([]model.Job, error)
	NextJobID(ctx context.Context) (string, error)
	AddJob(ctx context.Context, j model.Job) error
	Close() error
}

// MemoryStore keeps jobs in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]model.Job
	ids  IDGenerator
}

// NewMemoryStore returns an empty store. A nil generator defaults to
// sequential PRJ ids.
func NewMemoryStore(ids IDGenerator) *MemoryStore {
	if ids == nil {
		ids = NewSequentialIDs(DefaultPrefix)
	}
	return &MemoryStore{jobs: make(map[string]model.Job), ids: ids}
}

// ListJobs returns a copy of all jobs ordered by id.
func (m *MemoryStore) ListJobs(ctx context.Context) ([]model.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]model.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j)
	}
	m.mu.RUnlock()
	slices.SortFunc(out, func(a, b model.Job) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// NextJobID returns the id the next added job should use.
func (m *MemoryStore) NextJobID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	existing := make([]string, 0, len(m.jobs))
	for id := range m.jobs {
		existing = append(existing, id)
	}
	return m.ids.Next(existing), nil
}

// AddJob stores j. Ids must be unique.
func (m *MemoryStore) AddJob(ctx context.Context, j model.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[j.ID]; ok {
		return ErrDuplicateID
	}
	m.jobs[j.ID] = j
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
