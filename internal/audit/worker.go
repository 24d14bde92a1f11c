package audit

import (
	"context"
	"log/slog"
)

// Worker drains recorded events into a sink. Sink failures are logged and the
// event is dropped; the trail is best-effort by contract and operations are
// never retried on its behalf.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run consumes until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Append(ctx, event); err != nil {
				w.logger.WarnContext(ctx, "audit sink append failed, event dropped",
					"error", err,
					"action", event.Action,
				)
			}
		}
	}
}
