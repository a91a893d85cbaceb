package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/updesk/helpdesk/internal/domain"
	"github.com/updesk/helpdesk/internal/events"
	"github.com/updesk/helpdesk/internal/repository"
	"github.com/updesk/helpdesk/pkg/util"
)

// ErrNotificationFailed marks a message that was persisted but not fully
// delivered to the side channels. The interaction itself is committed.
var ErrNotificationFailed = errors.New("support notification failed")

// Notifier is the cross-channel bridge the message flow depends on.
type Notifier interface {
	Notify(ctx context.Context, message, recipientEmail, recipientName string, ticketID *int64) error
	NotifyTelegramOnly(ctx context.Context, message string) error
}

// MessageService appends panel messages to a ticket's conversation and fans
// them out to Telegram and e-mail.
type MessageService struct {
	tickets      repository.TicketRepository
	interactions repository.InteractionRepository
	notifier     Notifier
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// NewMessageService creates the service.
func NewMessageService(
	tickets repository.TicketRepository,
	interactions repository.InteractionRepository,
	notifier Notifier,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *MessageService {
	return &MessageService{
		tickets:      tickets,
		interactions: interactions,
		notifier:     notifier,
		dispatcher:   dispatcher,
		logger:       logger,
	}
}

// PostMessageInput carries the message body plus optional contact overrides
// supplied by the caller.
type PostMessageInput struct {
	Message       string
	EmailOverride string
	NameOverride  string
}

// PostPanelMessage records a support-panel message on the ticket and notifies
// the requester. The interaction is always returned when persisted, even if
// delivery failed; callers distinguish the partial case via
// ErrNotificationFailed.
func (s *MessageService) PostPanelMessage(ctx context.Context, actor *domain.User, ticketID int64, input PostMessageInput) (*domain.Interaction, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, util.NewValidationError("message must not be empty", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, util.NewInternalError(err)
	}

	actorID := actor.ID
	interaction := &domain.Interaction{
		TicketID: ticketID,
		UserID:   &actorID,
		Message:  message,
		Origin:   domain.OriginPanel,
	}
	if err := s.interactions.Create(ctx, interaction); err != nil {
		return nil, util.NewInternalError(err)
	}

	s.publishMessageAdded(ctx, interaction, &actorID)

	email, name := resolveRecipient(input, actor, ticket)
	text := fmt.Sprintf("[Chamado #%d]\n%s", ticketID, message)

	if email == "" {
		if err := s.notifier.NotifyTelegramOnly(ctx, text); err != nil {
			s.logger.Warn("telegram-only notification failed",
				zap.Int64("ticket_id", ticketID), zap.Error(err))
		}
		return interaction, nil
	}

	if err := s.notifier.Notify(ctx, text, email, name, &ticketID); err != nil {
		return interaction, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return interaction, nil
}

// ListMessages returns the ticket conversation in chronological order.
func (s *MessageService) ListMessages(ctx context.Context, ticketID int64) ([]domain.Interaction, error) {
	interactions, err := s.interactions.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	return interactions, nil
}

// resolveRecipient walks the contact fallback chain: explicit override, then
// the acting principal, then the contact snapshot on the ticket.
func resolveRecipient(input PostMessageInput, actor *domain.User, ticket *domain.Ticket) (email, name string) {
	email = strings.TrimSpace(input.EmailOverride)
	if email == "" && actor != nil {
		email = actor.Email
	}
	if email == "" && ticket.RequesterEmail != nil {
		email = *ticket.RequesterEmail
	}

	name = strings.TrimSpace(input.NameOverride)
	if name == "" && actor != nil {
		name = actor.Name
	}
	if name == "" && ticket.RequesterName != nil {
		name = *ticket.RequesterName
	}
	return email, name
}

// truncatePreview cuts text at a rune boundary so the payload stays valid
// UTF-8 even when a multi-byte character straddles the byte limit.
func truncatePreview(text string, maxBytes int) string {
	if len(text) <= maxBytes {
		return text
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func (s *MessageService) publishMessageAdded(ctx context.Context, interaction *domain.Interaction, actorID *int64) {
	if s.dispatcher == nil {
		return
	}
	preview := truncatePreview(interaction.Message, 120)
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:          uuid.NewString(),
		Type:        events.EventTicketMessageAdded,
		TicketID:    interaction.TicketID,
		ActorUserID: actorID,
		Timestamp:   interaction.CreatedAt,
		Payload: events.TicketMessageAddedPayload{
			InteractionID: interaction.ID,
			Origin:        interaction.Origin,
			BodyPreview:   preview,
		},
	})
}
