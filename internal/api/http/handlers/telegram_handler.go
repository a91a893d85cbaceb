package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/updesk/helpdesk/internal/service"
)

// TelegramHandler receives webhook updates from Telegram.
type TelegramHandler struct {
	service *service.TelegramService
	logger  *zap.Logger
}

// NewTelegramHandler constructs handler.
func NewTelegramHandler(telegramService *service.TelegramService, logger *zap.Logger) *TelegramHandler {
	return &TelegramHandler{service: telegramService, logger: logger}
}

// Webhook POST /telegram/webhook. Telegram retries non-2xx responses, so the
// endpoint acknowledges every update regardless of processing outcome.
func (h *TelegramHandler) Webhook(c *fiber.Ctx) error {
	var update tgbotapi.Update
	if err := c.BodyParser(&update); err != nil {
		h.logger.Warn("unparseable telegram update", zap.Error(err))
		return c.JSON(fiber.Map{"ok": true})
	}

	h.service.ProcessUpdate(c.UserContext(), update)
	return c.JSON(fiber.Map{"ok": true})
}
