package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/updesk/helpdesk/internal/api/dto"
	"github.com/updesk/helpdesk/internal/auth"
	"github.com/updesk/helpdesk/internal/domain"
	"github.com/updesk/helpdesk/internal/service"
	"github.com/updesk/helpdesk/pkg/util"
)

// TriageHandler exposes the support queue.
type TriageHandler struct {
	service *service.TicketService
}

// NewTriageHandler constructs handler.
func NewTriageHandler(ticketService *service.TicketService) *TriageHandler {
	return &TriageHandler{service: ticketService}
}

// ListQueue GET /triage/tickets.
func (h *TriageHandler) ListQueue(c *fiber.Ctx) error {
	if _, ok := auth.PrincipalFromContext(c); !ok {
		return util.NewUnauthorized("user required")
	}

	page, err := h.service.Triage(c.UserContext(), parseTriageQuery(c))
	if err != nil {
		return err
	}

	items := make([]dto.TicketSummary, 0, len(page.Tickets))
	for i := range page.Tickets {
		items = append(items, ticketSummary(&page.Tickets[i]))
	}
	return c.JSON(fiber.Map{"data": dto.TriagePageResponse{
		Tickets:  items,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Counters: dto.TriageCountersResponse{
			AwaitingTriage: page.Counters.AwaitingTriage,
			HandledToday:   page.Counters.HandledToday,
			PendingOver24h: page.Counters.PendingOver24h,
		},
	}})
}

func parseTriageQuery(c *fiber.Ctx) service.TriageQuery {
	query := service.TriageQuery{
		Search:     c.Query("q"),
		DateRange:  c.Query("date_range"),
		OrderBy:    c.Query("order_by"),
		Descending: strings.EqualFold(c.Query("direction"), "desc"),
		Page:       parseIntQuery(c.Query("page"), 1),
		PageSize:   parseIntQuery(c.Query("page_size"), 20),
	}
	if statusStr := strings.TrimSpace(c.Query("status")); statusStr != "" {
		status := domain.TicketStatus(statusStr)
		query.Status = &status
	}
	if priorityStr := strings.TrimSpace(c.Query("priority")); priorityStr != "" {
		priority := domain.TicketPriority(priorityStr)
		query.Priority = &priority
	}
	return query
}

func parseIntQuery(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
