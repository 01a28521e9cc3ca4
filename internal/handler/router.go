package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"hirelink/internal/metrics"
	"hirelink/internal/middleware"
	"hirelink/internal/service/auth"
)

func SetupRoutes(app *fiber.App, h *Handlers, authService auth.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	v1 := app.Group("/api/v1")
	protected := v1.Group("", middleware.AuthRequired(authService))

	protected.Post("/jobs/:jobId/applications", h.Application.Submit)

	applications := protected.Group("/applications")
	applications.Get("/job/:jobId", h.Application.ListForJob)
	applications.Get("/employer", h.Application.ListForEmployer)
	applications.Get("/mine", h.Application.ListMine)
	applications.Get("/:applicationId", h.Application.Get)
	applications.Put("/:applicationId/status", h.Application.UpdateStatus)

	chats := protected.Group("/chats")
	chats.Get("/", h.Chat.List)
	chats.Get("/application/:applicationId", h.Chat.GetOrCreate)
	chats.Get("/:chatId", h.Chat.GetMessages)
	chats.Post("/:chatId/messages", h.Chat.SendMessage)
	chats.Put("/:chatId/read", h.Chat.MarkRead)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Put("/read-all", h.Notification.MarkAllAsRead)
	notifications.Put("/:id/read", h.Notification.MarkAsRead)
	notifications.Put("/:notificationId/application-status", h.Application.UpdateStatusFromNotification)

	users := protected.Group("/users")
	users.Put("/me/device-token", h.Device.Register)
	users.Delete("/me/device-token", h.Device.Clear)
}
