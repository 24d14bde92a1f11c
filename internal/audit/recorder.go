package audit

import (
	"context"
	"log/slog"

	"github.com/Soozey/MADAVOLA/pkg/requestcontext"
)

// Recorder is the producer side of the audit pipeline. Record never blocks
// the calling operation: events are buffered and, when the buffer is full,
// dropped with a warning.
type Recorder struct {
	inbox  chan Event
	logger *slog.Logger
}

const defaultBuffer = 1024

func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{
		inbox:  make(chan Event, defaultBuffer),
		logger: logger,
	}
}

// Record enqueues an event. Missing timestamps are stamped from the
// request-scoped clock.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	select {
	case r.inbox <- event:
	default:
		r.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", event.Action,
			"entity_type", event.EntityType,
			"entity_id", event.EntityID,
		)
	}
}

// Inbox exposes the consumer end for the worker.
func (r *Recorder) Inbox() <-chan Event { return r.inbox }
