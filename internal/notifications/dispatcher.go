package notifications

import (
	"context"
	"log/slog"
	"sync"

	"queuedisplay/internal/logging"
)

const dispatchQueueSize = 64

type job struct {
	event   Event
	payload Payload
}

// Dispatcher delivers notifications off the caller's goroutine. Events are
// sent in order; when the queue is full new events are dropped.
type Dispatcher struct {
	svc    Service
	logger *slog.Logger
	jobs   chan job
	once   sync.Once
}

// NewDispatcher wraps svc with a bounded delivery queue.
func NewDispatcher(svc Service, logger *slog.Logger) *Dispatcher {
	if svc == nil {
		svc = noopService{}
	}
	return &Dispatcher{
		svc:    svc,
		logger: logging.NewComponentLogger(logger, "notifications"),
		jobs:   make(chan job, dispatchQueueSize),
	}
}

// Run delivers queued events until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.once.Do(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case j := <-d.jobs:
				if err := d.svc.Publish(ctx, j.event, j.payload); err != nil {
					logging.WarnWithContext(d.logger, "notification delivery failed", "notification_failed",
						logging.String("event", string(j.event)),
						logging.Error(err),
						logging.String(logging.FieldImpact, "operator was not notified"),
						logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic and network access"),
					)
				}
			}
		}
	})
}

// Enqueue schedules an event without blocking.
func (d *Dispatcher) Enqueue(event Event, payload Payload) bool {
	select {
	case d.jobs <- job{event: event, payload: payload}:
		return true
	default:
		d.logger.Debug("notification queue full; event dropped", logging.String("event", string(event)))
		return false
	}
}

// Publish delivers synchronously through the wrapped service.
func (d *Dispatcher) Publish(ctx context.Context, event Event, payload Payload) error {
	return d.svc.Publish(ctx, event, payload)
}
