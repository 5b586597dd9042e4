package worker

import (
	"go.uber.org/zap"

	"github.com/smartcommunity/portal/internal/service"
)

// StartVisitorEventWorker subscribes the visitor event handlers to the dispatcher.
func StartVisitorEventWorker(notifications *service.NotificationService, logger *zap.Logger) {
	if notifications == nil {
		logger.Warn("visitor event worker disabled")
		return
	}
	kinds := notifications.RegisterHandlers()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	logger.Info("visitor event worker started",
		zap.Strings("events", names),
		zap.Bool("nats_forwarding", notifications.Forwarding()))
}
