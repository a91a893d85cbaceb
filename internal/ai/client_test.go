package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/updesk/helpdesk/internal/config"
	"github.com/updesk/helpdesk/internal/domain"
)

type fakeProvider struct {
	responses []fakeResponse
	models    []ModelInfo
	listErr   error

	calls             []string
	generateDeadlines []bool
	listDeadlines     []bool
}

type fakeResponse struct {
	text string
	err  error
}

func (p *fakeProvider) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	_, hasDeadline := ctx.Deadline()
	p.generateDeadlines = append(p.generateDeadlines, hasDeadline)
	p.calls = append(p.calls, model)
	idx := len(p.calls) - 1
	if idx >= len(p.responses) {
		return "", errors.New("unexpected call")
	}
	return p.responses[idx].text, p.responses[idx].err
}

func (p *fakeProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	_, hasDeadline := ctx.Deadline()
	p.listDeadlines = append(p.listDeadlines, hasDeadline)
	return p.models, p.listErr
}

func newTestClient(t *testing.T, provider Provider) (*TriageClient, *[]time.Duration) {
	t.Helper()
	client := NewTriageClient(provider, zap.NewNop(), config.GeminiConfig{
		Model:          "gemini-pro",
		MaxAttempts:    2,
		BackoffSeconds: 1,
	})
	var sleeps []time.Duration
	client.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return client, &sleeps
}

func TestSuggestParsesUrgencyAndSolution(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{text: "Urgência: Alta\nSolução: Reinicie o roteador e teste novamente."},
	}}
	client, _ := newTestClient(t, provider)

	suggestion := client.Suggest(context.Background(), "Sem internet", "Nada carrega")

	assert.Equal(t, domain.TicketPriorityHigh, suggestion.Priority)
	assert.Equal(t, "Reinicie o roteador e teste novamente.", suggestion.Solution)
	assert.Len(t, provider.calls, 1)
}

func TestSuggestFreeFormResponseKeepsTextMinusUrgencyLine(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{text: "Urgência: baixa\nVerifique o cabo de rede antes de qualquer coisa."},
	}}
	client, _ := newTestClient(t, provider)

	suggestion := client.Suggest(context.Background(), "t", "d")

	assert.Equal(t, domain.TicketPriorityLow, suggestion.Priority)
	assert.Equal(t, "Verifique o cabo de rede antes de qualquer coisa.", suggestion.Solution)
}

func TestSuggestUnrecognizedResponseFallsBackToUnclassified(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{text: "Tente reiniciar o equipamento."},
	}}
	client, _ := newTestClient(t, provider)

	suggestion := client.Suggest(context.Background(), "t", "d")

	assert.Equal(t, domain.TicketPriorityUnclassified, suggestion.Priority)
	assert.Equal(t, "Tente reiniciar o equipamento.", suggestion.Solution)
}

func TestSuggestQuotaExhaustedShortCircuits(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{err: errors.Join(ErrQuotaExhausted, errors.New("429"))},
	}}
	client, sleeps := newTestClient(t, provider)

	suggestion := client.Suggest(context.Background(), "t", "d")

	assert.Equal(t, quotaFallbackMessage, suggestion.Solution)
	assert.Equal(t, domain.TicketPriorityUnclassified, suggestion.Priority)
	assert.Len(t, provider.calls, 1)
	assert.Empty(t, *sleeps)
}

func TestSuggestReselectsModelOnNotFound(t *testing.T) {
	provider := &fakeProvider{
		responses: []fakeResponse{
			{err: errors.Join(ErrModelNotFound, errors.New("404"))},
			{text: "Urgência: Média\nSolução: Limpe o cache."},
		},
		models: []ModelInfo{
			{Name: "models/gemini-1.5-flash", GenerationMethods: []string{"generateContent"}},
			{Name: "models/gemini-1.5-pro", GenerationMethods: []string{"generateContent"}},
			{Name: "models/embedding-001", GenerationMethods: []string{"embedContent"}},
		},
	}
	client, sleeps := newTestClient(t, provider)

	suggestion := client.Suggest(context.Background(), "t", "d")

	require.Len(t, provider.calls, 2)
	assert.Equal(t, "gemini-pro", provider.calls[0])
	assert.Equal(t, "gemini-1.5-pro", provider.calls[1])
	assert.Equal(t, "gemini-1.5-pro", client.ActiveModel())
	assert.Equal(t, []time.Duration{reselectDelay}, *sleeps)
	assert.Equal(t, domain.TicketPriorityMedium, suggestion.Priority)
	assert.Equal(t, "Limpe o cache.", suggestion.Solution)
}

func TestSuggestExhaustsAttemptsWithBackoff(t *testing.T) {
	provider := &fakeProvider{responses: []fakeResponse{
		{err: errors.New("boom")},
		{err: errors.New("boom again")},
	}}
	client, sleeps := newTestClient(t, provider)

	suggestion := client.Suggest(context.Background(), "t", "d")

	assert.Equal(t, fallbackMessage, suggestion.Solution)
	assert.Equal(t, domain.TicketPriorityUnclassified, suggestion.Priority)
	assert.Len(t, provider.calls, 2)
	assert.Equal(t, []time.Duration{time.Second}, *sleeps)
}

func TestSuggestWithoutProviderUsesFallback(t *testing.T) {
	client, _ := newTestClient(t, nil)

	suggestion := client.Suggest(context.Background(), "t", "d")

	assert.Equal(t, fallbackMessage, suggestion.Solution)
	assert.Equal(t, domain.TicketPriorityUnclassified, suggestion.Priority)
}

func TestAutoSelectModelPrefersFlash(t *testing.T) {
	provider := &fakeProvider{models: []ModelInfo{
		{Name: "models/gemini-1.5-pro", GenerationMethods: []string{"generateContent"}},
		{Name: "models/gemini-1.5-flash", GenerationMethods: []string{"generateContent"}},
	}}
	client, _ := newTestClient(t, provider)

	client.AutoSelectModel(context.Background())

	assert.Equal(t, "gemini-1.5-flash", client.ActiveModel())
}

func TestProviderCallsCarryBoundedDeadline(t *testing.T) {
	provider := &fakeProvider{
		responses: []fakeResponse{{text: "Urgência: Alta\nSolução: ok"}},
		models: []ModelInfo{
			{Name: "models/gemini-1.5-flash", GenerationMethods: []string{"generateContent"}},
		},
	}
	client, _ := newTestClient(t, provider)

	// The caller passes an undeadlined context; each outbound call still
	// gets its own bounded one.
	client.AutoSelectModel(context.Background())
	client.Suggest(context.Background(), "t", "d")

	require.Len(t, provider.listDeadlines, 1)
	assert.True(t, provider.listDeadlines[0])
	require.Len(t, provider.generateDeadlines, 1)
	assert.True(t, provider.generateDeadlines[0])
}

func TestAutoSelectModelKeepsConfiguredOnListFailure(t *testing.T) {
	provider := &fakeProvider{listErr: errors.New("unreachable")}
	client, _ := newTestClient(t, provider)

	client.AutoSelectModel(context.Background())

	assert.Equal(t, "gemini-pro", client.ActiveModel())
}
