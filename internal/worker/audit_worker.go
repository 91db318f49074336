package worker

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/ezinne-pharmarcy/backend/internal/events"
	"github.com/ezinne-pharmarcy/backend/internal/mq"
)

// AuditWorker forwards queued audit events to a message broker.
type AuditWorker struct {
	events    <-chan events.Event
	publisher mq.Publisher
	queue     string
	logger    *zap.Logger
	done      chan struct{}
}

// StartAuditWorker launches the forwarding loop; it stops when ctx is cancelled.
// It returns nil when there is nothing to forward.
func StartAuditWorker(ctx context.Context, source <-chan events.Event, publisher mq.Publisher, queue string, logger *zap.Logger) *AuditWorker {
	if source == nil || publisher == nil {
		return nil
	}
	w := &AuditWorker{
		events:    source,
		publisher: publisher,
		queue:     queue,
		logger:    logger,
		done:      make(chan struct{}),
	}
	go w.run(ctx)
	return w
}

// Done is closed once the worker has stopped.
func (w *AuditWorker) Done() <-chan struct{} {
	return w.done
}

func (w *AuditWorker) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.events:
			if !ok {
				return
			}
			w.forward(ctx, event)
		}
	}
}

func (w *AuditWorker) forward(ctx context.Context, event events.Event) {
	body, err := json.Marshal(event)
	if err != nil {
		w.logger.Error("encode audit event", zap.String("event_id", event.ID), zap.Error(err))
		return
	}
	attrs := map[string]string{"event_type": string(event.Type)}
	if _, err := w.publisher.Publish(ctx, w.queue, body, attrs); err != nil {
		w.logger.Warn("forward audit event", zap.String("event_id", event.ID), zap.Error(err))
	}
}
