package service

import (
	"context"
	drive "drive_diagnostics"
	"time"

	"drive_diagnostics/internal/logger"
	"drive_diagnostics/internal/repository"
)

// appendTimeout bounds each journal write; the engine tick must not stall on a
// slow disk.
const appendTimeout = 2 * time.Second

// EventSource emits batches of journal events as they happen.
type EventSource interface {
	OnEvents(fn func([]drive.DiagnosticEvent))
}

// EventRecorder persists engine events into the journal.
type EventRecorder struct {
	events repository.EventRepo
	log    *logger.Logger
}

func NewEventRecorder(events repository.EventRepo, log *logger.Logger) *EventRecorder {
	return &EventRecorder{
		events: events,
		log:    log.Named("recorder"),
	}
}

// Attach subscribes the recorder to the source's event stream.
func (r *EventRecorder) Attach(src EventSource) {
	src.OnEvents(r.record)
}

func (r *EventRecorder) record(events []drive.DiagnosticEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	for _, ev := range events {
		if err := r.events.Append(ctx, ev); err != nil {
			r.log.Errorw("append diagnostic event",
				"kind", ev.Kind,
				"component", ev.ComponentID,
				"code", ev.Code,
				"error", err,
			)
		}
	}
}
