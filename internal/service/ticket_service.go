package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/updesk/helpdesk/internal/ai"
	"github.com/updesk/helpdesk/internal/domain"
	"github.com/updesk/helpdesk/internal/events"
	"github.com/updesk/helpdesk/internal/repository"
	"github.com/updesk/helpdesk/pkg/util"
)

// TriageAdvisor produces a suggested solution and urgency for a draft.
type TriageAdvisor interface {
	Suggest(ctx context.Context, title, description string) ai.Suggestion
}

// TicketService drives the ticket lifecycle: the propose/confirm opening
// flow, triage claims and transfers, and closure.
type TicketService struct {
	tickets    repository.TicketRepository
	drafts     repository.DraftStore
	advisor    TriageAdvisor
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewTicketService creates the lifecycle service.
func NewTicketService(
	tickets repository.TicketRepository,
	drafts repository.DraftStore,
	advisor TriageAdvisor,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *TicketService {
	return &TicketService{
		tickets:    tickets,
		drafts:     drafts,
		advisor:    advisor,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// ProposeTicketInput is the requester's raw request before AI consultation.
type ProposeTicketInput struct {
	Title          string
	Description    string
	Category       string
	Attachment     []byte
	AttachmentName *string
}

// TicketProposal is the AI-enriched draft awaiting the requester's decision.
type TicketProposal struct {
	DraftID           string
	Title             string
	Description       string
	Category          string
	Priority          domain.TicketPriority
	SuggestedSolution string
}

// Propose consults the AI for a suggestion and parks the enriched draft until
// the requester confirms or accepts the suggestion. The AI never blocks the
// flow: on failure the draft carries the fallback text and priority
// "Não Classificada".
func (s *TicketService) Propose(ctx context.Context, actor *domain.User, input ProposeTicketInput) (*TicketProposal, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, util.NewValidationError("title and description are required", nil)
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = "Geral"
	}

	suggestion := s.advisor.Suggest(ctx, title, description)

	draft := domain.TicketDraft{
		Title:             title,
		Description:       description,
		Category:          category,
		Priority:          suggestion.Priority,
		SuggestedSolution: suggestion.Solution,
		Attachment:        input.Attachment,
		AttachmentName:    input.AttachmentName,
	}
	draftID, err := s.drafts.Save(ctx, actor.ID, draft)
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	s.logger.Info("ticket proposed",
		zap.Int64("requester_id", actor.ID),
		zap.String("draft_id", draftID),
		zap.String("priority", string(suggestion.Priority)))

	return &TicketProposal{
		DraftID:           draftID,
		Title:             draft.Title,
		Description:       draft.Description,
		Category:          draft.Category,
		Priority:          draft.Priority,
		SuggestedSolution: draft.SuggestedSolution,
	}, nil
}

// Confirm opens the drafted ticket for human support.
func (s *TicketService) Confirm(ctx context.Context, actor *domain.User, draftID string) (*domain.Ticket, error) {
	return s.createFromDraft(ctx, actor, draftID, domain.TicketStatusOpen, events.EventTicketCreated)
}

// ResolveByAI records the drafted ticket as already solved by the suggestion.
func (s *TicketService) ResolveByAI(ctx context.Context, actor *domain.User, draftID string) (*domain.Ticket, error) {
	return s.createFromDraft(ctx, actor, draftID, domain.TicketStatusResolvedByAI, events.EventTicketResolvedByAI)
}

func (s *TicketService) createFromDraft(ctx context.Context, actor *domain.User, draftID string, status domain.TicketStatus, eventType events.EventType) (*domain.Ticket, error) {
	draft, err := s.drafts.Get(ctx, actor.ID, draftID)
	if err != nil {
		if errors.Is(err, repository.ErrDraftNotFound) {
			return nil, util.NewNotFound("ticket draft", map[string]any{"draft_id": draftID})
		}
		return nil, util.NewInternalError(err)
	}

	priority := draft.Priority
	if priority == "" {
		priority = domain.TicketPriorityUnclassified
	}

	ticket := &domain.Ticket{
		Title:          draft.Title,
		Description:    draft.Description,
		Category:       draft.Category,
		Priority:       priority,
		Status:         status,
		RequesterID:    actor.ID,
		Attachment:     draft.Attachment,
		AttachmentName: draft.AttachmentName,
	}
	if actor.Email != "" {
		email := actor.Email
		ticket.RequesterEmail = &email
	}
	if actor.Name != "" {
		name := actor.Name
		ticket.RequesterName = &name
	}
	if draft.SuggestedSolution != "" {
		solution := draft.SuggestedSolution
		ticket.SuggestedSolution = &solution
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, util.NewInternalError(err)
	}

	if err := s.drafts.Delete(ctx, actor.ID, draftID); err != nil {
		s.logger.Warn("failed to delete consumed draft",
			zap.String("draft_id", draftID), zap.Error(err))
	}

	s.publish(ctx, eventType, ticket.ID, &actor.ID, events.TicketCreatedPayload{
		Title:    ticket.Title,
		Category: ticket.Category,
		Priority: ticket.Priority,
	})

	s.logger.Info("ticket created",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("status", string(ticket.Status)))
	return ticket, nil
}

// GetTicket fetches one ticket.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, util.NewInternalError(err)
	}
	return ticket, nil
}

// ListTicketsInput filters the panel listing.
type ListTicketsInput struct {
	Search string
	Status *domain.TicketStatus
}

// ListTickets returns the panel view, newest first.
func (s *TicketService) ListTickets(ctx context.Context, input ListTicketsInput) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Search:     input.Search,
		Status:     input.Status,
		OrderBy:    "created_at",
		Descending: true,
		Limit:      100,
	})
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return tickets, nil
}

// Claim moves an open ticket to "Em Atendimento" under the acting agent.
func (s *TicketService) Claim(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	return s.transition(ctx, actor, ticketID, func(ticket *domain.Ticket) {
		ticket.Status = domain.TicketStatusInProgress
		assignee := actor.ID
		ticket.AssigneeID = &assignee
		now := s.now()
		ticket.LastModifiedAt = &now
	})
}

// TransferInput describes where a triaged ticket should go. Destination is
// "triage" to release it back to the queue or "self" to take it over.
type TransferInput struct {
	Destination string
	Priority    *domain.TicketPriority
}

// Transfer re-routes a ticket, optionally reclassifying its priority.
func (s *TicketService) Transfer(ctx context.Context, actor *domain.User, ticketID int64, input TransferInput) (*domain.Ticket, error) {
	if input.Destination != "triage" && input.Destination != "self" {
		return nil, util.NewValidationError("destination must be 'triage' or 'self'", nil)
	}
	return s.transition(ctx, actor, ticketID, func(ticket *domain.Ticket) {
		if input.Priority != nil {
			ticket.Priority = *input.Priority
		}
		if input.Destination == "triage" {
			ticket.Status = domain.TicketStatusOpen
			ticket.AssigneeID = nil
		} else {
			ticket.Status = domain.TicketStatusInProgress
			assignee := actor.ID
			ticket.AssigneeID = &assignee
		}
		now := s.now()
		ticket.LastModifiedAt = &now
	})
}

// ReturnToTriage releases a ticket back to the open queue without touching
// the activity timestamp.
func (s *TicketService) ReturnToTriage(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	return s.transition(ctx, actor, ticketID, func(ticket *domain.Ticket) {
		ticket.Status = domain.TicketStatusOpen
		ticket.AssigneeID = nil
	})
}

// Reopen puts a resolved ticket back into the open queue.
func (s *TicketService) Reopen(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	return s.transition(ctx, actor, ticketID, func(ticket *domain.Ticket) {
		ticket.Status = domain.TicketStatusOpen
		ticket.AssigneeID = nil
	})
}

// Close marks the ticket resolved. The assignment is released so only
// in-progress tickets carry an assignee.
func (s *TicketService) Close(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	return s.transition(ctx, actor, ticketID, func(ticket *domain.Ticket) {
		ticket.Status = domain.TicketStatusResolved
		ticket.AssigneeID = nil
		now := s.now()
		ticket.LastModifiedAt = &now
	})
}

func (s *TicketService) transition(ctx context.Context, actor *domain.User, ticketID int64, mutate func(*domain.Ticket)) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, util.NewInternalError(err)
	}

	oldStatus := ticket.Status
	mutate(ticket)

	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, util.NewInternalError(err)
	}

	if oldStatus != ticket.Status {
		s.publish(ctx, events.EventTicketStatusChanged, ticket.ID, &actor.ID, events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		})
	}

	s.logger.Info("ticket transitioned",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(ticket.Status)),
		zap.Int64("actor_id", actor.ID))
	return ticket, nil
}

// Triage date-range filters.
const (
	DateRangeToday      = "today"
	DateRangeLast7Days  = "7d"
	DateRangeLast30Days = "30d"
)

// TriageQuery parametrizes the triage queue listing.
type TriageQuery struct {
	Search     string
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	DateRange  string
	OrderBy    string
	Descending bool
	Page       int
	PageSize   int
}

// TriageCounters summarize the queue for the support dashboard.
type TriageCounters struct {
	AwaitingTriage int64
	HandledToday   int64
	PendingOver24h int64
}

// TriagePage is one page of the triage queue plus its counters.
type TriagePage struct {
	Tickets  []domain.Ticket
	Total    int64
	Page     int
	PageSize int
	Counters TriageCounters
}

// Triage lists the support queue. Without an explicit status the queue shows
// open tickets only.
func (s *TicketService) Triage(ctx context.Context, query TriageQuery) (*TriagePage, error) {
	status := query.Status
	if status == nil {
		open := domain.TicketStatusOpen
		status = &open
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	orderBy := query.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}

	now := s.now()
	filter := repository.TicketFilter{
		Search:      query.Search,
		Status:      status,
		Priority:    query.Priority,
		CreatedFrom: dateRangeStart(now, query.DateRange),
		OrderBy:     orderBy,
		Descending:  query.Descending,
		Limit:       pageSize,
		Offset:      (page - 1) * pageSize,
	}

	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	total, err := s.tickets.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	counters, err := s.triageCounters(ctx, now)
	if err != nil {
		return nil, err
	}

	return &TriagePage{
		Tickets:  tickets,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Counters: *counters,
	}, nil
}

func (s *TicketService) triageCounters(ctx context.Context, now time.Time) (*TriageCounters, error) {
	awaiting, err := s.tickets.CountByStatus(ctx, domain.TicketStatusOpen)
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	handledToday, err := s.tickets.CountInProgressModifiedSince(ctx, midnight)
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	pending, err := s.tickets.CountOpenCreatedBefore(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	return &TriageCounters{
		AwaitingTriage: awaiting,
		HandledToday:   handledToday,
		PendingOver24h: pending,
	}, nil
}

// dateRangeStart maps a named range to its inclusive lower bound.
func dateRangeStart(now time.Time, dateRange string) *time.Time {
	var start time.Time
	switch dateRange {
	case DateRangeToday:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case DateRangeLast7Days:
		start = now.AddDate(0, 0, -7)
	case DateRangeLast30Days:
		start = now.AddDate(0, 0, -30)
	default:
		return nil
	}
	return &start
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, ticketID int64, actorID *int64, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		TicketID:    ticketID,
		ActorUserID: actorID,
		Timestamp:   s.now().UTC(),
		Payload:     payload,
	})
}
