package metrics

import (
	"context"

	"github.com/kilianp07/promanage/core/events"
	coremetrics "github.com/kilianp07/promanage/core/metrics"
	"github.com/kilianp07/promanage/infra/logger"
	"github.com/kilianp07/promanage/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled or the bus is closed. The returned
// channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.ScheduleComputed:
					if err := sink.RecordScheduleRun(e.Run); err != nil {
						log.Warnf("record schedule run: %v", err)
					}
				case events.JobAdded:
					if r, ok := sink.(coremetrics.JobRecorder); ok {
						if err := r.RecordJobAdded(coremetrics.JobAddedEvent{Job: e.Job, Time: e.Time}); err != nil {
							log.Warnf("record job added: %v", err)
						}
					}
				}
			}
		}
	}()
	return done
}
