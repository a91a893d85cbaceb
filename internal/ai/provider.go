package ai

import (
	"context"
	"errors"
)

// Provider failure classes the triage client reacts to. Any other error is
// treated as transient and retried with backoff.
var (
	// ErrModelNotFound signals the active model id is unknown or does not
	// support text generation; triggers dynamic model reselection.
	ErrModelNotFound = errors.New("ai: model not found")
	// ErrQuotaExhausted signals quota/billing exhaustion; short-circuits
	// retries straight to the textual fallback.
	ErrQuotaExhausted = errors.New("ai: quota exhausted")
)

// ModelInfo describes one model advertised by the provider.
type ModelInfo struct {
	Name              string
	GenerationMethods []string
}

// SupportsGeneration reports whether the model can serve generateContent.
func (m ModelInfo) SupportsGeneration() bool {
	for _, method := range m.GenerationMethods {
		if method == "generateContent" {
			return true
		}
	}
	return false
}

// Provider abstracts the generative-text backend so retry and model
// selection policies can be exercised without network access.
type Provider interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
	ListModels(ctx context.Context) ([]ModelInfo, error)
}
