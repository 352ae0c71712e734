package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/querydesk/internal/events"
)

// EventForwarder ships events to an external sink such as a message broker.
type EventForwarder interface {
	Forward(ctx context.Context, event events.Event) error
}

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	forwarder  EventForwarder
	logger     *zap.Logger
}

// NewNotificationService creates the service. forwarder may be nil.
func NewNotificationService(dispatcher events.Dispatcher, forwarder EventForwarder, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		forwarder:  forwarder,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventQueryCreated, n.handleQueryCreated)
	n.dispatcher.Subscribe(events.EventQueryClosed, n.handleQueryClosed)
}

func (n *NotificationService) handleQueryCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("QueryCreated",
		zap.Int64("query_id", event.QueryID),
		zap.String("actor", event.Actor.Username),
		zap.Any("payload", event.Payload))
	return n.forward(ctx, event)
}

func (n *NotificationService) handleQueryClosed(ctx context.Context, event events.Event) error {
	n.logger.Info("QueryClosed",
		zap.Int64("query_id", event.QueryID),
		zap.String("actor", event.Actor.Username),
		zap.Any("payload", event.Payload))
	return n.forward(ctx, event)
}

func (n *NotificationService) forward(ctx context.Context, event events.Event) error {
	if n.forwarder == nil {
		return nil
	}
	if err := n.forwarder.Forward(ctx, event); err != nil {
		n.logger.Error("forward event",
			zap.String("event_type", string(event.Type)),
			zap.Int64("query_id", event.QueryID),
			zap.Error(err))
		return err
	}
	return nil
}
