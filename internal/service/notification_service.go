package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/atlasdesk/support-service/internal/config"
	"github.com/atlasdesk/support-service/internal/events"
)

// NotificationService reacts to domain events with best-effort notifications.
// Delivery is a stub: the intent is logged and, when configured, would be
// handed to the mail relay or webhook endpoint. Failures never propagate back
// into the operation that raised the event.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService constructs the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{logger: logger, cfg: cfg}
}

// Register subscribes the service to every event type it handles.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, s.handle)
	dispatcher.Subscribe(events.EventTicketStatusChanged, s.handle)
	dispatcher.Subscribe(events.EventTicketPriorityChanged, s.handle)
	dispatcher.Subscribe(events.EventTicketAssigned, s.handle)
	dispatcher.Subscribe(events.EventTicketCommentAdded, s.handle)
	dispatcher.Subscribe(events.EventInterventionAdded, s.handle)
}

func (s *NotificationService) handle(ctx context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("tenant_id", event.TenantID),
		zap.String("ticket_id", event.TicketID),
	}
	if event.ActorUserID != nil {
		fields = append(fields, zap.String("actor_user_id", *event.ActorUserID))
	}
	s.logger.Info("notification dispatched", fields...)

	// TODO: hand off to the mail relay once the shared template service lands.
	if s.cfg.WebhookURL != "" {
		s.logger.Debug("webhook notification queued",
			zap.String("url", s.cfg.WebhookURL),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}
