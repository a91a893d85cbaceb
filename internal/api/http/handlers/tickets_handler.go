package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/updesk/helpdesk/internal/api/dto"
	"github.com/updesk/helpdesk/internal/auth"
	"github.com/updesk/helpdesk/internal/domain"
	"github.com/updesk/helpdesk/internal/service"
	"github.com/updesk/helpdesk/pkg/util"
)

// TicketsHandler manages the ticket lifecycle endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Propose POST /tickets/propose.
func (h *TicketsHandler) Propose(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	var req dto.ProposeTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	proposal, err := h.service.Propose(c.UserContext(), principal.User, service.ProposeTicketInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Attachment:     req.Attachment,
		AttachmentName: req.AttachmentName,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketProposalResponse{
		DraftID:           proposal.DraftID,
		Title:             proposal.Title,
		Description:       proposal.Description,
		Category:          proposal.Category,
		Priority:          proposal.Priority,
		SuggestedSolution: proposal.SuggestedSolution,
	}})
}

// Confirm POST /tickets/confirm.
func (h *TicketsHandler) Confirm(c *fiber.Ctx) error {
	return h.createFromDraft(c, h.service.Confirm)
}

// ResolveByAI POST /tickets/resolved-by-ai.
func (h *TicketsHandler) ResolveByAI(c *fiber.Ctx) error {
	return h.createFromDraft(c, h.service.ResolveByAI)
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return util.NewUnauthorized("user required")
	}
	input := service.ListTicketsInput{Search: c.Query("q")}
	if statusStr := strings.TrimSpace(c.Query("status")); statusStr != "" {
		status := domain.TicketStatus(statusStr)
		input.Status = &status
	}
	tickets, err := h.service.ListTickets(c.UserContext(), input)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return util.NewUnauthorized("user required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// Claim POST /tickets/:id/claim.
func (h *TicketsHandler) Claim(c *fiber.Ctx) error {
	return h.transition(c, func(ctx *fiber.Ctx, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
		return h.service.Claim(ctx.UserContext(), actor, ticketID)
	})
}

// Transfer POST /tickets/:id/transfer.
func (h *TicketsHandler) Transfer(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.TransferTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Transfer(c.UserContext(), principal.User, ticketID, service.TransferInput{
		Destination: req.Destination,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ReturnToTriage POST /tickets/:id/return-to-triage.
func (h *TicketsHandler) ReturnToTriage(c *fiber.Ctx) error {
	return h.transition(c, func(ctx *fiber.Ctx, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
		return h.service.ReturnToTriage(ctx.UserContext(), actor, ticketID)
	})
}

// Reopen POST /tickets/:id/reopen.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	return h.transition(c, func(ctx *fiber.Ctx, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
		return h.service.Reopen(ctx.UserContext(), actor, ticketID)
	})
}

// CloseTicket POST /tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	return h.transition(c, func(ctx *fiber.Ctx, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
		return h.service.Close(ctx.UserContext(), actor, ticketID)
	})
}

func (h *TicketsHandler) createFromDraft(c *fiber.Ctx, create func(context.Context, *domain.User, string) (*domain.Ticket, error)) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	var req dto.ConfirmTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.DraftID) == "" {
		return util.NewValidationError("draft_id required", nil)
	}
	ticket, err := create(c.UserContext(), principal.User, req.DraftID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket)})
}

func (h *TicketsHandler) transition(c *fiber.Ctx, apply func(*fiber.Ctx, *domain.User, int64) (*domain.Ticket, error)) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("user required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	ticket, err := apply(c, principal.User, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func parseTicketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, util.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:             ticket.ID,
		Title:          ticket.Title,
		Category:       ticket.Category,
		Priority:       ticket.Priority,
		Status:         ticket.Status,
		RequesterID:    ticket.RequesterID,
		AssigneeID:     ticket.AssigneeID,
		CreatedAt:      ticket.CreatedAt,
		LastModifiedAt: ticket.LastModifiedAt,
	}
}

func ticketDetail(ticket *domain.Ticket) dto.TicketDetailResponse {
	return dto.TicketDetailResponse{
		ID:                ticket.ID,
		Title:             ticket.Title,
		Description:       ticket.Description,
		Category:          ticket.Category,
		Priority:          ticket.Priority,
		Status:            ticket.Status,
		RequesterID:       ticket.RequesterID,
		RequesterEmail:    ticket.RequesterEmail,
		RequesterName:     ticket.RequesterName,
		AssigneeID:        ticket.AssigneeID,
		SuggestedSolution: ticket.SuggestedSolution,
		AttachmentName:    ticket.AttachmentName,
		CreatedAt:         ticket.CreatedAt,
		LastModifiedAt:    ticket.LastModifiedAt,
	}
}
