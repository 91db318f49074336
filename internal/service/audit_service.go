package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ezinne-pharmarcy/backend/internal/events"
)

// AuditService records authentication and account events. Every event is
// logged; when forwarding is enabled it is also queued for the audit worker.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	queue      chan events.Event
}

// NewAuditService creates the service. A positive buffer enables forwarding.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, buffer int) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &AuditService{dispatcher: dispatcher, logger: logger}
	if buffer > 0 {
		a.queue = make(chan events.Event, buffer)
	}
	return a
}

// RegisterHandlers subscribes to every audit event type.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(a.handle, events.AuditTypes...)
}

// Events returns the forwarding queue, or nil when forwarding is disabled.
func (a *AuditService) Events() <-chan events.Event {
	return a.queue
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	a.logger.Info("audit",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("account_id", event.Actor.AccountID),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload),
	)
	if a.queue == nil {
		return nil
	}
	select {
	case a.queue <- event:
	default:
		a.logger.Warn("audit queue full; event not forwarded", zap.String("event_id", event.ID))
	}
	return nil
}
