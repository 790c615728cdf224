package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kilianp07/promanage/api/schedule"
	"github.com/kilianp07/promanage/app/plugins"
	"github.com/kilianp07/promanage/config"
	"github.com/kilianp07/promanage/core/events"
	"github.com/kilianp07/promanage/core/jobstore"
	coremetrics "github.com/kilianp07/promanage/core/metrics"
	"github.com/kilianp07/promanage/core/model"
	"github.com/kilianp07/promanage/core/scheduler"
	"github.com/kilianp07/promanage/infra/logger"
	"github.com/kilianp07/promanage/infra/metrics"
	"github.com/kilianp07/promanage/infra/mqtt"
	"github.com/kilianp07/promanage/internal/eventbus"
	"github.com/kilianp07/promanage/pkg/export"
)

// Service wires the job store, the scheduler and the observers of scheduling
// runs.
type Service struct {
	cfg       *config.Config
	store     jobstore.Store
	sched     *scheduler.Scheduler
	sink      coremetrics.MetricsSink
	bus       *eventbus.Bus
	publisher *mqtt.Publisher
	log       logger.Logger

	// addMu serializes id allocation and insertion.
	addMu   sync.Mutex
	cancel  context.CancelFunc
	workers []<-chan struct{}
	now     func() time.Time
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logg := logger.New("service")

	sched, err := scheduler.New(cfg.Scheduler)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	store, err := plugins.NewStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("job store: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	var pub *mqtt.Publisher
	if cfg.MQTT.Enabled {
		pub, err = mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			coremetrics.CloseSink(sink)
			_ = store.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	svc := &Service{
		cfg:       cfg,
		store:     store,
		sched:     sched,
		sink:      sink,
		bus:       eventbus.New(),
		publisher: pub,
		log:       logg,
		cancel:    cancel,
		now:       time.Now,
	}
	svc.workers = append(svc.workers, metrics.StartEventCollector(ctx, svc.bus, sink, logger.New("metrics")))
	if pub != nil {
		svc.workers = append(svc.workers, mqtt.StartScheduleForwarder(ctx, svc.bus, pub, logger.New("mqtt")))
	}
	return svc, nil
}

// Labels names the slots of the configured horizon.
func (s *Service) Labels() export.Labeler { return s.sched.Config() }

// SchedulerConfig returns the effective scheduler configuration.
func (s *Service) SchedulerConfig() scheduler.SchedulerConfig { return s.sched.Config() }

// AddJob validates the input, assigns the next id and stores the job.
func (s *Service) AddJob(ctx context.Context, title string, deadline int, revenue float64) (model.Job, error) {
	title = strings.TrimSpace(title)
	slotCount := s.sched.Config().SlotCount
	switch {
	case title == "":
		return model.Job{}, fmt.Errorf("%w: title is required", model.ErrInvalidJob)
	case deadline < 1 || deadline > slotCount:
		return model.Job{}, fmt.Errorf("%w: deadline must be between 1 and %d, got %d", model.ErrInvalidJob, slotCount, deadline)
	case !(revenue > 0) || math.IsInf(revenue, 0):
		return model.Job{}, fmt.Errorf("%w: revenue must be a positive number, got %v", model.ErrInvalidJob, revenue)
	}

	s.addMu.Lock()
	defer s.addMu.Unlock()
	id, err := s.store.NextJobID(ctx)
	if err != nil {
		return model.Job{}, fmt.Errorf("next job id: %w", err)
	}
	job := model.Job{ID: id, Title: title, Deadline: deadline, Revenue: revenue}
	if err := s.store.AddJob(ctx, job); err != nil {
		return model.Job{}, fmt.Errorf("add job %s: %w", id, err)
	}
	s.bus.Publish(events.JobAdded{Job: job, Time: s.now()})
	s.log.Infof("job %s added", job.ID)
	return job, nil
}

// ListJobs returns every stored job ordered by id.
func (s *Service) ListJobs(ctx context.Context) ([]model.Job, error) {
	return s.store.ListJobs(ctx)
}

// GenerateSchedule schedules every stored job and publishes the outcome.
func (s *Service) GenerateSchedule(ctx context.Context) (scheduler.Result, error) {
	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		return scheduler.Result{}, fmt.Errorf("list jobs: %w", err)
	}
	started := s.now()
	res, err := s.sched.Schedule(jobs)
	if err != nil {
		return scheduler.Result{}, err
	}
	run := coremetrics.NewScheduleRun(res, len(jobs), started, time.Since(started))

	cfg := s.sched.Config()
	labels := make([]string, cfg.SlotCount)
	for i := range labels {
		labels[i] = cfg.Label(i)
	}
	s.bus.Publish(events.ScheduleComputed{Result: res, Run: run, Labels: labels})
	s.log.Debugw("schedule computed", map[string]any{
		"jobs":                run.Jobs,
		"scheduled":           run.Scheduled,
		"unscheduled":         run.Unscheduled,
		"rejected":            run.Rejected,
		"scheduled_revenue":   run.ScheduledRevenue,
		"unscheduled_revenue": run.UnscheduledRevenue,
		"duration_us":         run.Duration.Microseconds(),
	})
	return res, nil
}

// Handler returns the REST API of the service.
func (s *Service) Handler() http.Handler {
	return schedule.NewRouter(s, s.cfg.HTTP.Token)
}

// Run serves the REST API, and the metrics endpoint when configured, until
// the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	srv := &http.Server{Addr: s.cfg.HTTP.Addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("serving API on %s", s.cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close drains pending events and releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	for _, done := range s.workers {
		<-done
	}
	s.cancel()
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	coremetrics.CloseSink(s.sink)
	return s.store.Close()
}
