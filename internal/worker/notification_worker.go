package worker

import (
	"github.com/updesk/helpdesk/internal/events"
	"github.com/updesk/helpdesk/internal/service"
)

// StartNotificationWorker subscribes the notification bridge to the event
// stream.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers(dispatcher)
}
