package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/updesk/helpdesk/internal/api/dto"
	"github.com/updesk/helpdesk/internal/auth"
	"github.com/updesk/helpdesk/internal/domain"
	"github.com/updesk/helpdesk/internal/service"
	"github.com/updesk/helpdesk/pkg/util"
)

// messageTimestampLayout is the display format for conversation entries.
const messageTimestampLayout = "02/01/2006 15:04"

// MessagesHandler exposes the ticket conversation endpoints.
type MessagesHandler struct {
	service *service.MessageService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(messageService *service.MessageService) *MessagesHandler {
	return &MessagesHandler{service: messageService}
}

// ListMessages GET /tickets/:id/messages.
func (h *MessagesHandler) ListMessages(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return util.NewUnauthorized("user required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	interactions, err := h.service.ListMessages(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(interactions))
	for i := range interactions {
		items = append(items, messageResponse(&interactions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddMessage POST /tickets/:id/messages. A persisted message whose
// notification failed is reported as a partial success.
func (h *MessagesHandler) AddMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	body := req.Body()
	if body == "" {
		return util.NewValidationError("message body required", nil)
	}

	interaction, err := h.service.PostPanelMessage(c.UserContext(), principal.User, ticketID, service.PostMessageInput{
		Message:       body,
		EmailOverride: req.Email,
		NameOverride:  req.Nome,
	})
	if err != nil {
		if errors.Is(err, service.ErrNotificationFailed) {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"status":  "parcial",
				"message": "mensagem registrada, mas a notificação falhou",
				"data":    messageResponse(interaction),
			})
		}
		return err
	}
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   messageResponse(interaction),
	})
}

func messageResponse(interaction *domain.Interaction) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         interaction.ID,
		TicketID:   interaction.TicketID,
		UserID:     interaction.UserID,
		AuthorName: interaction.AuthorName,
		Message:    interaction.Message,
		Origin:     interaction.Origin,
		Timestamp:  interaction.CreatedAt.Format(messageTimestampLayout),
	}
}
