package handler

import (
	"github.com/gofiber/fiber/v2"

	"hirelink/internal/domain"
	"hirelink/internal/middleware"
	"hirelink/internal/service/application"
)

type ApplicationHandler struct {
	appService application.Service
}

func NewApplicationHandler(appService application.Service) *ApplicationHandler {
	return &ApplicationHandler{appService: appService}
}

func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	jobID, err := parseUUIDParam(c, "jobId", "job")
	if err != nil {
		return err
	}

	var input domain.SubmitApplicationInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return middleware.BadRequest("Invalid request body")
		}
	}

	app, err := h.appService.Submit(c.UserContext(), jobID, middleware.GetCurrentUserID(c), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(app)
}

func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	appID, err := parseUUIDParam(c, "applicationId", "application")
	if err != nil {
		return err
	}

	app, err := h.appService.GetByID(c.UserContext(), appID, middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(app)
}

func (h *ApplicationHandler) ListForJob(c *fiber.Ctx) error {
	jobID, err := parseUUIDParam(c, "jobId", "job")
	if err != nil {
		return err
	}

	apps, err := h.appService.ListForJob(c.UserContext(), jobID, middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(apps)
}

func (h *ApplicationHandler) ListForEmployer(c *fiber.Ctx) error {
	apps, err := h.appService.ListForEmployer(c.UserContext(), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(apps)
}

func (h *ApplicationHandler) ListMine(c *fiber.Ctx) error {
	apps, err := h.appService.ListForApplicant(c.UserContext(), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(apps)
}

func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	appID, err := parseUUIDParam(c, "applicationId", "application")
	if err != nil {
		return err
	}

	var input domain.TransitionApplicationInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	app, err := h.appService.Transition(c.UserContext(), appID, middleware.GetCurrentUserID(c), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(app)
}

func (h *ApplicationHandler) UpdateStatusFromNotification(c *fiber.Ctx) error {
	notifID, err := parseUUIDParam(c, "notificationId", "notification")
	if err != nil {
		return err
	}

	var input domain.TransitionApplicationInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	app, err := h.appService.TransitionFromNotification(c.UserContext(), notifID, middleware.GetCurrentUserID(c), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(app)
}
