package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// Subscribers are the in-process consumers of ticket events. Nil members are
// skipped.
type Subscribers struct {
	Notifications *service.NotificationService
	Publisher     *events.RedisPublisher
	Dashboard     *service.DashboardService
}

// StartNotificationWorker registers event consumers on the dispatcher.
func StartNotificationWorker(dispatcher events.Dispatcher, subs Subscribers, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if subs.Notifications != nil {
		subs.Notifications.RegisterHandlers()
	}
	if subs.Publisher != nil {
		events.SubscribeTickets(dispatcher, subs.Publisher.Handle)
		logger.Info("ticket events fan out to redis", zap.String("channel", subs.Publisher.Channel()))
	}
	if subs.Dashboard != nil {
		events.SubscribeTickets(dispatcher, subs.Dashboard.HandleTicketEvent)
	}
}
