package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/updesk/helpdesk/internal/domain"
	"github.com/updesk/helpdesk/internal/events"
	"github.com/updesk/helpdesk/internal/repository"
)

// TelegramNotifier is the outbound Telegram capability the bridge needs.
type TelegramNotifier interface {
	Configured() bool
	SendMessage(text string) (int, error)
}

// Mailer is the outbound e-mail capability the bridge needs.
type Mailer interface {
	Configured() bool
	Send(to, subject, body string) error
}

// NotificationService fans a support message out to Telegram and e-mail.
// Both legs are side channels: a missing integration is a logged no-op, and
// failures never roll back the write that triggered the notification.
type NotificationService struct {
	telegram TelegramNotifier
	mailer   Mailer
	links    repository.TelegramLinkRepository
	logger   *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(telegram TelegramNotifier, mailer Mailer, links repository.TelegramLinkRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		telegram: telegram,
		mailer:   mailer,
		links:    links,
		logger:   logger,
	}
}

// RegisterHandlers subscribes the bridge to lifecycle events.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
}

// Notify sends the support message to Telegram and a confirmation e-mail to
// the requester. A non-nil error means at least one configured leg failed;
// the caller decides how to surface that.
func (n *NotificationService) Notify(ctx context.Context, message, recipientEmail, recipientName string, ticketID *int64) error {
	name := recipientName
	if name == "" {
		name = "N/D"
	}
	text := fmt.Sprintf("Nova mensagem de suporte (UpDesk)\n\nUsuário: %s\nE-mail: %s\n\nMensagem:\n%s",
		name, recipientEmail, message)

	telegramErr := n.sendTelegram(ctx, text, ticketID)

	subject := "Recebemos sua mensagem - UpDesk"
	body := fmt.Sprintf("Olá %s,\n\nRecebemos a sua mensagem de suporte no UpDesk:\n\n%s\n\n"+
		"Nossa equipe entrará em contato em breve.\n\nAtenciosamente,\nEquipe UpDesk",
		recipientName, message)
	emailErr := n.sendEmail(recipientEmail, subject, body)

	if telegramErr != nil {
		return telegramErr
	}
	return emailErr
}

// NotifyTelegramOnly sends a clearly flagged Telegram-only message when the
// requester's e-mail could not be resolved. Not having an e-mail is not an
// error; only a failed Telegram send is reported.
func (n *NotificationService) NotifyTelegramOnly(ctx context.Context, message string) error {
	return n.sendTelegram(ctx, message+"\n\n(⚠️ E-mail do solicitante não disponível)", nil)
}

func (n *NotificationService) sendTelegram(ctx context.Context, text string, ticketID *int64) error {
	if !n.telegram.Configured() {
		n.logger.Warn("telegram not configured (TELEGRAM_BOT_TOKEN/TELEGRAM_CHAT_ID missing); skipping send")
		return nil
	}

	messageID, err := n.telegram.SendMessage(text)
	if err != nil {
		n.logger.Error("telegram send failed", zap.Error(err))
		return err
	}

	if ticketID != nil {
		link := &domain.TelegramLink{TicketID: *ticketID, TelegramMessageID: messageID}
		if err := n.links.Create(ctx, link); err != nil {
			n.logger.Error("failed to store telegram link",
				zap.Int64("ticket_id", *ticketID),
				zap.Int("telegram_message_id", messageID),
				zap.Error(err))
		} else {
			n.logger.Info("telegram link stored",
				zap.Int64("ticket_id", *ticketID),
				zap.Int("telegram_message_id", messageID))
		}
	}
	return nil
}

func (n *NotificationService) sendEmail(to, subject, body string) error {
	if !n.mailer.Configured() {
		n.logger.Warn("smtp not configured (SMTP_SERVER/SMTP_USERNAME/SMTP_PASSWORD missing); skipping e-mail")
		return nil
	}
	if err := n.mailer.Send(to, subject, body); err != nil {
		n.logger.Error("e-mail send failed", zap.String("to", to), zap.Error(err))
		return err
	}
	return nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	text := fmt.Sprintf("Novo chamado aberto (UpDesk)\n\n[Chamado #%d] %s\nCategoria: %s\nPrioridade: %s",
		event.TicketID, payload.Title, payload.Category, payload.Priority)
	ticketID := event.TicketID
	return n.sendTelegram(ctx, text, &ticketID)
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket status changed",
		zap.Int64("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	return nil
}
