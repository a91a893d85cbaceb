package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/updesk/helpdesk/internal/events"
)

type fakeTelegram struct {
	configured bool
	sendErr    error
	nextID     int
	sent       []string
}

func (f *fakeTelegram) Configured() bool { return f.configured }

func (f *fakeTelegram) SendMessage(text string) (int, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.sent = append(f.sent, text)
	f.nextID++
	return f.nextID, nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	configured bool
	sendErr    error
	sent       []sentMail
}

func (f *fakeMailer) Configured() bool { return f.configured }

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func newBridge(tg *fakeTelegram, mailer *fakeMailer, links *fakeLinkRepo) *NotificationService {
	return NewNotificationService(tg, mailer, links, zap.NewNop())
}

func TestNotifySendsBothLegsAndStoresLink(t *testing.T) {
	tg := &fakeTelegram{configured: true}
	mailer := &fakeMailer{configured: true}
	links := &fakeLinkRepo{}
	bridge := newBridge(tg, mailer, links)

	ticketID := int64(42)
	err := bridge.Notify(context.Background(), "[Chamado #42]\nSegue atualização", "ana@example.com", "Ana", &ticketID)

	require.NoError(t, err)
	require.Len(t, tg.sent, 1)
	assert.Contains(t, tg.sent[0], "Nova mensagem de suporte (UpDesk)")
	assert.Contains(t, tg.sent[0], "Usuário: Ana")
	assert.Contains(t, tg.sent[0], "E-mail: ana@example.com")
	assert.Contains(t, tg.sent[0], "[Chamado #42]")

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ana@example.com", mailer.sent[0].to)
	assert.Equal(t, "Recebemos sua mensagem - UpDesk", mailer.sent[0].subject)
	assert.True(t, strings.HasPrefix(mailer.sent[0].body, "Olá Ana,"))

	require.Len(t, links.links, 1)
	assert.Equal(t, int64(42), links.links[0].TicketID)
	assert.Equal(t, 1, links.links[0].TelegramMessageID)
}

func TestNotifyMissingNameUsesPlaceholder(t *testing.T) {
	tg := &fakeTelegram{configured: true}
	bridge := newBridge(tg, &fakeMailer{}, &fakeLinkRepo{})

	err := bridge.Notify(context.Background(), "msg", "ana@example.com", "", nil)

	require.NoError(t, err)
	require.Len(t, tg.sent, 1)
	assert.Contains(t, tg.sent[0], "Usuário: N/D")
}

func TestNotifyUnconfiguredLegsAreNoOps(t *testing.T) {
	tg := &fakeTelegram{configured: false}
	mailer := &fakeMailer{configured: false}
	links := &fakeLinkRepo{}
	bridge := newBridge(tg, mailer, links)

	ticketID := int64(7)
	err := bridge.Notify(context.Background(), "msg", "ana@example.com", "Ana", &ticketID)

	require.NoError(t, err)
	assert.Empty(t, tg.sent)
	assert.Empty(t, mailer.sent)
	assert.Empty(t, links.links)
}

func TestNotifyTelegramFailureStillAttemptsEmail(t *testing.T) {
	tg := &fakeTelegram{configured: true, sendErr: errors.New("api down")}
	mailer := &fakeMailer{configured: true}
	links := &fakeLinkRepo{}
	bridge := newBridge(tg, mailer, links)

	ticketID := int64(7)
	err := bridge.Notify(context.Background(), "msg", "ana@example.com", "Ana", &ticketID)

	require.Error(t, err)
	assert.Len(t, mailer.sent, 1)
	assert.Empty(t, links.links)
}

func TestNotifyLinkStoreFailureDoesNotFailNotify(t *testing.T) {
	tg := &fakeTelegram{configured: true}
	links := &fakeLinkRepo{err: errors.New("db down")}
	bridge := newBridge(tg, &fakeMailer{configured: true}, links)

	ticketID := int64(7)
	err := bridge.Notify(context.Background(), "msg", "ana@example.com", "Ana", &ticketID)

	require.NoError(t, err)
	assert.Len(t, tg.sent, 1)
}

func TestNotifyTelegramOnlyFlagsMissingEmail(t *testing.T) {
	tg := &fakeTelegram{configured: true}
	links := &fakeLinkRepo{}
	bridge := newBridge(tg, &fakeMailer{configured: true}, links)

	err := bridge.NotifyTelegramOnly(context.Background(), "[Chamado #9]\noi")

	require.NoError(t, err)
	require.Len(t, tg.sent, 1)
	assert.True(t, strings.HasSuffix(tg.sent[0], "(⚠️ E-mail do solicitante não disponível)"))
	assert.Empty(t, links.links)
}

func TestTicketCreatedEventAnnouncesOnTelegram(t *testing.T) {
	tg := &fakeTelegram{configured: true}
	links := &fakeLinkRepo{}
	bridge := newBridge(tg, &fakeMailer{}, links)

	dispatcher := events.NewInMemoryDispatcher()
	bridge.RegisterHandlers(dispatcher)

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketCreated,
		TicketID: 5,
		Payload: events.TicketCreatedPayload{
			Title:    "Sem internet",
			Category: "Rede",
			Priority: "Alta",
		},
	})

	require.NoError(t, err)
	require.Len(t, tg.sent, 1)
	assert.Contains(t, tg.sent[0], "[Chamado #5] Sem internet")
	assert.Len(t, links.links, 1)
}
