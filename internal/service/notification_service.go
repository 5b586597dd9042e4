package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/smartcommunity/portal/internal/events"
	"github.com/smartcommunity/portal/internal/observability"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	forwarder  *events.Forwarder
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewNotificationService creates the service. forwarder and metrics may be nil.
func NewNotificationService(dispatcher events.Dispatcher, forwarder *events.Forwarder, metrics *observability.Metrics, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		forwarder:  forwarder,
		metrics:    metrics,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events and returns the event types it handles.
func (n *NotificationService) RegisterHandlers() []events.EventType {
	if n.dispatcher == nil {
		return nil
	}
	n.dispatcher.Subscribe(events.EventVisitorIssued, n.handleVisitorIssued)
	n.dispatcher.Subscribe(events.EventVisitorCheckedIn, n.handleVisitorCheckedIn)
	return []events.EventType{events.EventVisitorIssued, events.EventVisitorCheckedIn}
}

// Forwarding reports whether handled events are also published to NATS.
func (n *NotificationService) Forwarding() bool {
	return n.forwarder != nil
}

func (n *NotificationService) handleVisitorIssued(ctx context.Context, event events.Event) error {
	n.logger.Info("VisitorIssued",
		zap.String("visitor_id", event.VisitorID),
		zap.String("resident_id", event.Actor.UserID),
		zap.Any("payload", event.Payload))
	n.metrics.RecordVisitorEvent(string(event.Type))
	return n.forwarder.Forward(ctx, event)
}

func (n *NotificationService) handleVisitorCheckedIn(ctx context.Context, event events.Event) error {
	n.logger.Info("VisitorCheckedIn",
		zap.String("visitor_id", event.VisitorID),
		zap.String("verified_by", event.Actor.UserID),
		zap.Any("payload", event.Payload))
	n.metrics.RecordVisitorEvent(string(event.Type))
	return n.forwarder.Forward(ctx, event)
}
