package service

import (
	"context"
	"errors"
	"regexp"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/updesk/helpdesk/internal/domain"
	"github.com/updesk/helpdesk/internal/repository"
)

// ticketRefPattern matches the first "#<digits>" ticket reference in a
// Telegram message.
var ticketRefPattern = regexp.MustCompile(`#(\d+)`)

// TelegramService correlates inbound Telegram replies with tickets and
// appends them to the conversation log as the shared support account.
type TelegramService struct {
	tickets        repository.TicketRepository
	interactions   repository.InteractionRepository
	supportActorID int64
	logger         *zap.Logger
}

// NewTelegramService creates the correlator.
func NewTelegramService(
	tickets repository.TicketRepository,
	interactions repository.InteractionRepository,
	supportActorID int64,
	logger *zap.Logger,
) *TelegramService {
	return &TelegramService{
		tickets:        tickets,
		interactions:   interactions,
		supportActorID: supportActorID,
		logger:         logger,
	}
}

// ProcessUpdate handles one webhook update. Updates that cannot be correlated
// are logged and dropped; the webhook acknowledges Telegram regardless, so
// this method never reports an error.
func (s *TelegramService) ProcessUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil {
		message = update.EditedMessage
	}
	if message == nil {
		s.logger.Debug("telegram update without message; ignoring",
			zap.Int("update_id", update.UpdateID))
		return
	}
	if message.Text == "" {
		s.logger.Debug("telegram message without text; ignoring",
			zap.Int("message_id", message.MessageID))
		return
	}

	ticketID, ok := extractTicketID(message)
	if !ok {
		s.logger.Warn("telegram message without ticket reference; dropping",
			zap.Int("message_id", message.MessageID))
		return
	}

	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("telegram message references unknown ticket; dropping",
				zap.Int64("ticket_id", ticketID),
				zap.Int("message_id", message.MessageID))
		} else {
			s.logger.Error("failed to load ticket for telegram message",
				zap.Int64("ticket_id", ticketID), zap.Error(err))
		}
		return
	}

	actorID := s.supportActorID
	interaction := &domain.Interaction{
		TicketID: ticketID,
		UserID:   &actorID,
		Message:  message.Text,
		Origin:   domain.OriginTelegram,
	}
	if err := s.interactions.Create(ctx, interaction); err != nil {
		s.logger.Error("failed to store telegram reply",
			zap.Int64("ticket_id", ticketID), zap.Error(err))
		return
	}

	s.logger.Info("telegram reply registered",
		zap.Int64("ticket_id", ticketID),
		zap.Int64("interaction_id", interaction.ID))
}

// extractTicketID looks for a "#<id>" reference in the message text, then in
// the text of the message being replied to.
func extractTicketID(message *tgbotapi.Message) (int64, bool) {
	if id, ok := matchTicketRef(message.Text); ok {
		return id, true
	}
	if message.ReplyToMessage != nil {
		return matchTicketRef(message.ReplyToMessage.Text)
	}
	return 0, false
}

func matchTicketRef(text string) (int64, bool) {
	match := ticketRefPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
