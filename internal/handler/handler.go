package handler

import "hirelink/internal/service"

type Handlers struct {
	Application  *ApplicationHandler
	Chat         *ChatHandler
	Notification *NotificationHandler
	Device       *DeviceHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Application:  NewApplicationHandler(services.Application),
		Chat:         NewChatHandler(services.Chat),
		Notification: NewNotificationHandler(services.Notification),
		Device:       NewDeviceHandler(services.Notification),
	}
}
