package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/updesk/helpdesk/internal/domain"
	"github.com/updesk/helpdesk/internal/repository"
	"github.com/updesk/helpdesk/internal/service"
)

type stubTicketRepo struct {
	known map[int64]bool
}

func (r *stubTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error { return nil }
func (r *stubTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error { return nil }

func (r *stubTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	if r.known[id] {
		return &domain.Ticket{ID: id, Status: domain.TicketStatusOpen}, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *stubTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, nil
}

func (r *stubTicketRepo) CountWithFilter(ctx context.Context, filter repository.TicketFilter) (int64, error) {
	return 0, nil
}

func (r *stubTicketRepo) CountByStatus(ctx context.Context, status domain.TicketStatus) (int64, error) {
	return 0, nil
}

func (r *stubTicketRepo) CountInProgressModifiedSince(ctx context.Context, since time.Time) (int64, error) {
	return 0, nil
}

func (r *stubTicketRepo) CountOpenCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type stubInteractionRepo struct {
	mu    sync.Mutex
	saved []domain.Interaction
}

func (r *stubInteractionRepo) Create(ctx context.Context, interaction *domain.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	interaction.ID = int64(len(r.saved) + 1)
	interaction.CreatedAt = time.Now()
	r.saved = append(r.saved, *interaction)
	return nil
}

func (r *stubInteractionRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Interaction, error) {
	return nil, nil
}

func newWebhookApp(t *testing.T) (*fiber.App, *stubInteractionRepo) {
	t.Helper()
	tickets := &stubTicketRepo{known: map[int64]bool{42: true}}
	interactions := &stubInteractionRepo{}
	telegramService := service.NewTelegramService(tickets, interactions, 1, zap.NewNop())
	handler := NewTelegramHandler(telegramService, zap.NewNop())

	app := fiber.New()
	app.Post("/telegram/webhook", handler.Webhook)
	return app, interactions
}

func postWebhook(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", "/telegram/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return resp.StatusCode, parsed
}

func TestWebhookRegistersCorrelatedReply(t *testing.T) {
	app, interactions := newWebhookApp(t)

	status, body := postWebhook(t, app, `{"update_id":1,"message":{"message_id":10,"text":"Resolvendo o #42"}}`)

	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["ok"])
	require.Len(t, interactions.saved, 1)
	assert.Equal(t, int64(42), interactions.saved[0].TicketID)
	assert.Equal(t, domain.OriginTelegram, interactions.saved[0].Origin)
}

func TestWebhookAcknowledgesUncorrelatedUpdate(t *testing.T) {
	app, interactions := newWebhookApp(t)

	status, body := postWebhook(t, app, `{"update_id":2,"message":{"message_id":11,"text":"sem numero"}}`)

	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["ok"])
	assert.Empty(t, interactions.saved)
}

func TestWebhookAcknowledgesMalformedPayload(t *testing.T) {
	app, interactions := newWebhookApp(t)

	status, body := postWebhook(t, app, `{not json`)

	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["ok"])
	assert.Empty(t, interactions.saved)
}
