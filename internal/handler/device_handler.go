package handler

import (
	"github.com/gofiber/fiber/v2"

	"hirelink/internal/domain"
	"hirelink/internal/middleware"
	"hirelink/internal/service/notification"
)

type DeviceHandler struct {
	notifService notification.Service
}

func NewDeviceHandler(notifService notification.Service) *DeviceHandler {
	return &DeviceHandler{notifService: notifService}
}

func (h *DeviceHandler) Register(c *fiber.Ctx) error {
	var input domain.RegisterDeviceTokenInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	if err := h.notifService.RegisterDeviceToken(c.UserContext(), middleware.GetCurrentUserID(c), input.Token); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}

func (h *DeviceHandler) Clear(c *fiber.Ctx) error {
	if err := h.notifService.ClearDeviceToken(c.UserContext(), middleware.GetCurrentUserID(c)); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}
