package service

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/updesk/helpdesk/internal/domain"
)

func newTelegramFixture() (*TelegramService, *fakeTicketRepo, *fakeInteractionRepo) {
	tickets := newFakeTicketRepo()
	interactions := &fakeInteractionRepo{}
	svc := NewTelegramService(tickets, interactions, 1, zap.NewNop())
	return svc, tickets, interactions
}

func messageUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{MessageID: 100, Text: text}}
}

func TestProcessUpdateRegistersReply(t *testing.T) {
	svc, tickets, interactions := newTelegramFixture()
	tickets.seed(&domain.Ticket{ID: 42, Status: domain.TicketStatusOpen})

	svc.ProcessUpdate(context.Background(), messageUpdate("Obrigado! Resolvendo o #42 agora."))

	require.Len(t, interactions.interactions, 1)
	interaction := interactions.interactions[0]
	assert.Equal(t, int64(42), interaction.TicketID)
	assert.Equal(t, domain.OriginTelegram, interaction.Origin)
	require.NotNil(t, interaction.UserID)
	assert.Equal(t, int64(1), *interaction.UserID)
	assert.Equal(t, "Obrigado! Resolvendo o #42 agora.", interaction.Message)
}

func TestProcessUpdateCorrelatesViaRepliedMessage(t *testing.T) {
	svc, tickets, interactions := newTelegramFixture()
	tickets.seed(&domain.Ticket{ID: 7, Status: domain.TicketStatusOpen})

	update := tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 101,
		Text:      "Pode reiniciar o computador?",
		ReplyToMessage: &tgbotapi.Message{
			MessageID: 90,
			Text:      "[Chamado #7]\nImpressora parada",
		},
	}}
	svc.ProcessUpdate(context.Background(), update)

	require.Len(t, interactions.interactions, 1)
	assert.Equal(t, int64(7), interactions.interactions[0].TicketID)
	assert.Equal(t, "Pode reiniciar o computador?", interactions.interactions[0].Message)
}

func TestProcessUpdateOwnTextWinsOverReply(t *testing.T) {
	svc, tickets, interactions := newTelegramFixture()
	tickets.seed(&domain.Ticket{ID: 7, Status: domain.TicketStatusOpen})
	tickets.seed(&domain.Ticket{ID: 8, Status: domain.TicketStatusOpen})

	update := tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID:      102,
		Text:           "Movendo para o #8",
		ReplyToMessage: &tgbotapi.Message{Text: "[Chamado #7]\nalgo"},
	}}
	svc.ProcessUpdate(context.Background(), update)

	require.Len(t, interactions.interactions, 1)
	assert.Equal(t, int64(8), interactions.interactions[0].TicketID)
}

func TestProcessUpdateHandlesEditedMessage(t *testing.T) {
	svc, tickets, interactions := newTelegramFixture()
	tickets.seed(&domain.Ticket{ID: 5, Status: domain.TicketStatusOpen})

	update := tgbotapi.Update{EditedMessage: &tgbotapi.Message{MessageID: 103, Text: "correção no #5"}}
	svc.ProcessUpdate(context.Background(), update)

	require.Len(t, interactions.interactions, 1)
	assert.Equal(t, int64(5), interactions.interactions[0].TicketID)
}

func TestProcessUpdateDropsUncorrelatedMessage(t *testing.T) {
	svc, tickets, interactions := newTelegramFixture()
	tickets.seed(&domain.Ticket{ID: 5, Status: domain.TicketStatusOpen})

	svc.ProcessUpdate(context.Background(), messageUpdate("sem referência nenhuma"))

	assert.Empty(t, interactions.interactions)
}

func TestProcessUpdateDropsUnknownTicket(t *testing.T) {
	svc, _, interactions := newTelegramFixture()

	svc.ProcessUpdate(context.Background(), messageUpdate("resolvido o #999"))

	assert.Empty(t, interactions.interactions)
}

func TestProcessUpdateIgnoresNonMessageUpdates(t *testing.T) {
	svc, _, interactions := newTelegramFixture()

	svc.ProcessUpdate(context.Background(), tgbotapi.Update{UpdateID: 1})
	svc.ProcessUpdate(context.Background(), messageUpdate(""))

	assert.Empty(t, interactions.interactions)
}

func TestProcessUpdateSurvivesStorageFailure(t *testing.T) {
	svc, tickets, interactions := newTelegramFixture()
	tickets.seed(&domain.Ticket{ID: 5, Status: domain.TicketStatusOpen})
	interactions.createErr = errors.New("db down")

	svc.ProcessUpdate(context.Background(), messageUpdate("#5 ok"))

	assert.Empty(t, interactions.interactions)
}
