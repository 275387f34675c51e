package worker

import (
	"go.uber.org/zap"

	"github.com/atlasdesk/support-service/internal/config"
	"github.com/atlasdesk/support-service/internal/events"
	"github.com/atlasdesk/support-service/internal/service"
)

// StartNotificationWorker wires the notification service into the dispatcher.
// Delivery runs inline with publication; this indirection keeps main free of
// subscription details and leaves room for a queued worker later.
func StartNotificationWorker(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *service.NotificationService {
	notifications := service.NewNotificationService(logger.Named("notifications"), cfg)
	notifications.Register(dispatcher)
	return notifications
}
