package handler

import (
	"github.com/gofiber/fiber/v2"

	"hirelink/internal/domain"
	"hirelink/internal/middleware"
	"hirelink/internal/service/chat"
)

type ChatHandler struct {
	chatService chat.Service
}

func NewChatHandler(chatService chat.Service) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) GetOrCreate(c *fiber.Ctx) error {
	appID, err := parseUUIDParam(c, "applicationId", "application")
	if err != nil {
		return err
	}

	result, err := h.chatService.GetOrCreate(c.UserContext(), appID, middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ChatHandler) List(c *fiber.Ctx) error {
	summaries, err := h.chatService.ListForUser(c.UserContext(), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(summaries)
}

func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	chatID, err := parseUUIDParam(c, "chatId", "chat")
	if err != nil {
		return err
	}

	result, err := h.chatService.GetMessages(c.UserContext(), chatID, middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	chatID, err := parseUUIDParam(c, "chatId", "chat")
	if err != nil {
		return err
	}

	var input domain.SendMessageInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	result, err := h.chatService.SendMessage(c.UserContext(), chatID, middleware.GetCurrentUserID(c), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	chatID, err := parseUUIDParam(c, "chatId", "chat")
	if err != nil {
		return err
	}

	result, err := h.chatService.MarkRead(c.UserContext(), chatID, middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
