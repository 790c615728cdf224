package app

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/promanage/config"
	"github.com/kilianp07/promanage/core/events"
	"github.com/kilianp07/promanage/core/factory"
	coremetrics "github.com/kilianp07/promanage/core/metrics"
	"github.com/kilianp07/promanage/core/model"
	"github.com/kilianp07/promanage/core/scheduler"
)

func newService(t *testing.T, mutate func(*config.Config)) *Service {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
		cfg.SetDefaults()
	}
	svc, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestAddJobAssignsSequentialIDs(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	a, err := svc.AddJob(ctx, "  Website redesign ", 2, 1500)
	require.NoError(t, err)
	b, err := svc.AddJob(ctx, "Mobile app", 5, 3200.5)
	require.NoError(t, err)

	assert.Equal(t, model.Job{ID: "PRJ001", Title: "Website redesign", Deadline: 2, Revenue: 1500}, a)
	assert.Equal(t, "PRJ002", b.ID)

	jobs, err := svc.ListJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Job{a, b}, jobs)
}

func TestAddJobValidation(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	cases := []struct {
		name     string
		title    string
		deadline int
		revenue  float64
	}{
		{"blank title", "   ", 1, 10},
		{"deadline zero", "x", 0, 10},
		{"deadline past horizon", "x", 6, 10},
		{"zero revenue", "x", 1, 0},
		{"negative revenue", "x", 1, -5},
		{"nan revenue", "x", 1, math.NaN()},
		{"inf revenue", "x", 1, math.Inf(1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.AddJob(ctx, c.title, c.deadline, c.revenue)
			assert.ErrorIs(t, err, model.ErrInvalidJob)
		})
	}
	jobs, err := svc.ListJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestAddJobConcurrentIDsAreUnique(t *testing.T) {
	svc := newService(t, nil)
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddJob(context.Background(), "job", 1, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	jobs, err := svc.ListJobs(context.Background())
	require.NoError(t, err)
	assert.Len(t, jobs, 20)
	assert.Equal(t, "PRJ020", jobs[19].ID)
}

func TestGenerateScheduleEmptyStore(t *testing.T) {
	svc := newService(t, nil)
	res, err := svc.GenerateSchedule(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Slots, 5)
	assert.Zero(t, res.Filled())
	assert.Empty(t, res.Unscheduled)
}

func TestGenerateSchedule(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	sub := svc.bus.Subscribe()

	for _, j := range []struct {
		title    string
		deadline int
		revenue  float64
	}{
		{"Alpha", 2, 100}, {"Beta", 1, 19}, {"Gamma", 2, 27}, {"Delta", 1, 25}, {"Epsilon", 3, 15},
	} {
		_, err := svc.AddJob(ctx, j.title, j.deadline, j.revenue)
		require.NoError(t, err)
	}
	res, err := svc.GenerateSchedule(ctx)
	require.NoError(t, err)

	ids := make([]string, 0)
	for _, p := range res.Scheduled() {
		ids = append(ids, p.Job.ID)
	}
	assert.Equal(t, []string{"PRJ003", "PRJ001", "PRJ005"}, ids)
	assert.InDelta(t, 142.0, res.ScheduledRevenue(), 1e-9)
	assert.InDelta(t, 44.0, res.UnscheduledRevenue(), 1e-9)

	var computed *events.ScheduleComputed
	timeout := time.After(time.Second)
	for computed == nil {
		select {
		case ev := <-sub:
			if e, ok := ev.(events.ScheduleComputed); ok {
				computed = &e
			}
		case <-timeout:
			t.Fatal("no ScheduleComputed event")
		}
	}
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}, computed.Labels)
	assert.Equal(t, 5, computed.Run.Jobs)
	assert.Equal(t, 3, computed.Run.Scheduled)
}

func TestGenerateScheduleStrictRejectsStoredJob(t *testing.T) {
	svc := newService(t, func(c *config.Config) { c.Scheduler.Validation = scheduler.ValidationStrict })
	require.NoError(t, svc.store.AddJob(context.Background(), model.Job{ID: "PRJ001", Title: "", Deadline: 1, Revenue: 1}))
	_, err := svc.GenerateSchedule(context.Background())
	assert.ErrorIs(t, err, model.ErrInvalidJob)
}

func TestCustomHorizon(t *testing.T) {
	svc := newService(t, func(c *config.Config) {
		c.Scheduler.SlotCount = 2
		c.Scheduler.SlotLabels = []string{"AM"}
	})
	_, err := svc.AddJob(context.Background(), "x", 3, 1)
	assert.ErrorIs(t, err, model.ErrInvalidJob)
	assert.Equal(t, "AM", svc.Labels().Label(0))
	assert.Equal(t, "Slot 2", svc.Labels().Label(1))
}

func TestSQLiteBackendPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.db")
	mutate := func(c *config.Config) {
		c.Store.Backend = config.BackendSQLite
		c.Store.Path = path
	}
	cfg := config.Default()
	mutate(cfg)
	svc, err := New(cfg)
	require.NoError(t, err)
	_, err = svc.AddJob(context.Background(), "persisted", 1, 10)
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	svc = newService(t, mutate)
	job, err := svc.AddJob(context.Background(), "second", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "PRJ002", job.ID)
}

func TestNewErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "postgres"
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "statsd"}}
	_, err = New(cfg)
	assert.Error(t, err)
}

type closingSink struct{ closed int }

func (*closingSink) RecordScheduleRun(coremetrics.ScheduleRun) error { return nil }
func (c *closingSink) Close()                                        { c.closed++ }

func TestNewClosesSinkWhenPublisherFails(t *testing.T) {
	sink := &closingSink{}
	require.NoError(t, coremetrics.RegisterMetricsSink("app-closing", func(map[string]any) (coremetrics.MetricsSink, error) {
		return sink, nil
	}))
	cfg := config.Default()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "app-closing"}}
	cfg.MQTT.Enabled = true
	cfg.MQTT.Broker = "tcp://127.0.0.1:1883"
	// TLS without key material fails before any dial.
	cfg.MQTT.UseTLS = true
	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mqtt publisher")
	assert.Equal(t, 1, sink.closed)
}

func TestCloseReleasesSink(t *testing.T) {
	sink := &closingSink{}
	require.NoError(t, coremetrics.RegisterMetricsSink("app-closing-ok", func(map[string]any) (coremetrics.MetricsSink, error) {
		return sink, nil
	}))
	cfg := config.Default()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "app-closing-ok"}}
	svc, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Close())
	assert.Equal(t, 1, sink.closed)
}

func TestHandler(t *testing.T) {
	svc := newService(t, func(c *config.Config) { c.HTTP.Token = "tok" })
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRunStopsOnCancel(t *testing.T) {
	svc := newService(t, func(c *config.Config) { c.HTTP.Addr = "127.0.0.1:0" })
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}
