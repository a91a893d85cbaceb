package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/updesk/helpdesk/internal/config"
	"github.com/updesk/helpdesk/internal/domain"
)

const promptTemplate = `Aja como um especialista de suporte técnico de TI (Nível 1). Um usuário está relatando o seguinte problema:
- Título do Chamado: "%s"
- Descrição do Problema: "%s"

Primeiro, classifique a urgência deste chamado como 'Baixa', 'Média' ou 'Alta' com base na descrição.
Em seguida, forneça uma solução clara e em formato de passo a passo para um usuário final.
A resposta deve ser direta e fácil de entender. Se não tiver certeza, sugira coletar mais informações que poderiam ajudar no diagnóstico.

Formato da resposta:
Urgência: [Classificação da Urgência]
Solução: [Solução detalhada em passos]
`

const (
	fallbackMessage = "Não foi possível obter uma sugestão da IA no momento. " +
		"Por favor, prossiga com a abertura do chamado."
	quotaFallbackMessage = "Não foi possível obter uma sugestão da IA no momento (limite de uso/quota). " +
		"Por favor, prossiga com a abertura do chamado."
)

// reselectDelay is the short pause before retrying with a newly chosen model.
const reselectDelay = 500 * time.Millisecond

var (
	urgencyPattern  = regexp.MustCompile(`(?i)Urgência:\s*(Baixa|Média|Alta)`)
	solutionPattern = regexp.MustCompile(`(?is)Solução:\s*(.*)`)
)

// Preference substrings for dynamic model selection, best first. Startup
// favors flash models; the in-call reselection favors pro.
var (
	startupModelPrefs  = []string{"flash", "pro", "2.5", "2.0"}
	reselectModelPrefs = []string{"pro", "flash", "flash-lite", "2.5", "2.0"}
)

// Suggestion is the usable pair the triage client always returns.
type Suggestion struct {
	Solution string
	Priority domain.TicketPriority
}

// TriageClient consults the generative model for a suggested fix and an
// urgency classification. Suggest never fails: upstream errors degrade to a
// fixed fallback text with priority "Não Classificada".
type TriageClient struct {
	provider    Provider
	logger      *zap.Logger
	maxAttempts int
	backoff     time.Duration
	callTimeout time.Duration
	sleep       func(time.Duration)

	mu    sync.Mutex
	model string
}

// NewTriageClient builds the client. A nil provider (no API key configured)
// makes every consultation return the textual fallback.
func NewTriageClient(provider Provider, logger *zap.Logger, cfg config.GeminiConfig) *TriageClient {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 2
	}
	backoff := time.Duration(cfg.BackoffSeconds) * time.Second
	if backoff <= 0 {
		backoff = time.Second
	}
	callTimeout := cfg.Timeout()
	if callTimeout <= 0 {
		callTimeout = 15 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-pro"
	}
	return &TriageClient{
		provider:    provider,
		logger:      logger,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		callTimeout: callTimeout,
		sleep:       time.Sleep,
		model:       model,
	}
}

// ActiveModel returns the model id used for the next consultation.
func (c *TriageClient) ActiveModel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

func (c *TriageClient) setActiveModel(model string) {
	c.mu.Lock()
	c.model = model
	c.mu.Unlock()
}

// AutoSelectModel probes the provider's model list once at startup and
// adopts the best generateContent-capable candidate. Best-effort: failures
// keep the configured model.
func (c *TriageClient) AutoSelectModel(ctx context.Context) {
	if c.provider == nil {
		return
	}
	chosen, ok := c.pickModel(ctx, startupModelPrefs)
	if !ok {
		return
	}
	c.setActiveModel(chosen)
	c.logger.Info("ai model auto-selected", zap.String("model", chosen))
}

// Suggest consults the model for a suggested solution and urgency. It makes
// at most maxAttempts calls, reselects the model on not-found failures and
// short-circuits on quota exhaustion.
func (c *TriageClient) Suggest(ctx context.Context, title, description string) Suggestion {
	if c.provider == nil {
		c.logger.Warn("GEMINI_API_KEY not configured; using textual fallback")
		return Suggestion{Solution: fallbackMessage, Priority: domain.TicketPriorityUnclassified}
	}

	prompt := fmt.Sprintf(promptTemplate, title, description)
	model := c.ActiveModel()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		text, err := c.generate(ctx, model, prompt)
		if err == nil {
			return parseSuggestion(text)
		}

		c.logger.Error("ai consultation failed",
			zap.Int("attempt", attempt),
			zap.String("model", model),
			zap.Error(err))

		if errors.Is(err, ErrQuotaExhausted) {
			c.logger.Error("ai quota exhausted; skipping remaining attempts")
			return Suggestion{Solution: quotaFallbackMessage, Priority: domain.TicketPriorityUnclassified}
		}

		if errors.Is(err, ErrModelNotFound) {
			if chosen, ok := c.pickModel(ctx, reselectModelPrefs); ok {
				c.setActiveModel(chosen)
				c.logger.Info("ai model reselected", zap.String("model", chosen))
				model = chosen
				c.sleep(reselectDelay)
				continue
			}
		}

		if attempt < c.maxAttempts {
			c.sleep(c.backoff * time.Duration(attempt))
		}
	}

	c.logger.Error("all ai consultation attempts failed; using textual fallback")
	return Suggestion{Solution: fallbackMessage, Priority: domain.TicketPriorityUnclassified}
}

// generate runs one provider call under the configured per-call deadline, so
// an unresponsive provider cannot hang the caller past the timeout.
func (c *TriageClient) generate(ctx context.Context, model, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return c.provider.GenerateText(callCtx, model, prompt)
}

// pickModel lists available models and returns the best generateContent
// candidate under the given substring preferences.
func (c *TriageClient) pickModel(ctx context.Context, prefs []string) (string, bool) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	models, err := c.provider.ListModels(callCtx)
	if err != nil {
		c.logger.Warn("unable to list ai models", zap.Error(err))
		return "", false
	}

	candidates := make([]string, 0, len(models))
	for _, model := range models {
		if model.Name != "" && model.SupportsGeneration() {
			candidates = append(candidates, model.Name)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	score := func(name string) int {
		lower := strings.ToLower(name)
		for i, pref := range prefs {
			if strings.Contains(lower, pref) {
				return i
			}
		}
		return len(prefs)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return score(candidates[i]) < score(candidates[j])
	})

	return strings.TrimPrefix(candidates[0], "models/"), true
}

// parseSuggestion extracts the urgency label and the solution body from the
// model's two-line response shape. Unrecognized urgency degrades to
// "Não Classificada" with the urgency line stripped from the solution.
func parseSuggestion(text string) Suggestion {
	priority := domain.TicketPriorityUnclassified
	urgencyMatch := urgencyPattern.FindStringSubmatch(text)
	if urgencyMatch != nil {
		priority = normalizePriority(urgencyMatch[1])
	}

	if solutionMatch := solutionPattern.FindStringSubmatch(text); solutionMatch != nil {
		return Suggestion{Solution: strings.TrimSpace(solutionMatch[1]), Priority: priority}
	}

	solution := text
	if urgencyMatch != nil {
		solution = strings.Replace(solution, urgencyMatch[0], "", 1)
	}
	return Suggestion{Solution: strings.TrimSpace(solution), Priority: priority}
}

func normalizePriority(label string) domain.TicketPriority {
	switch strings.ToLower(label) {
	case "baixa":
		return domain.TicketPriorityLow
	case "média":
		return domain.TicketPriorityMedium
	case "alta":
		return domain.TicketPriorityHigh
	default:
		return domain.TicketPriorityUnclassified
	}
}
