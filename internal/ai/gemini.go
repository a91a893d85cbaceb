package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiProvider adapts the Google Gemini SDK to the Provider interface.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider builds a provider authenticated with the given API key.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

// Close releases the underlying client.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// GenerateText runs one generateContent call against the given model.
func (p *GeminiProvider) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	resp, err := p.client.GenerativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyError(err)
	}
	return responseText(resp), nil
}

// ListModels returns the models the API key has access to.
func (p *GeminiProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var models []ModelInfo
	it := p.client.ListModels(ctx)
	for {
		info, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, classifyError(err)
		}
		models = append(models, ModelInfo{
			Name:              info.Name,
			GenerationMethods: info.SupportedGenerationMethods,
		})
	}
	return models, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String()
}

func classifyError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return errors.Join(ErrModelNotFound, err)
		case http.StatusTooManyRequests:
			return errors.Join(ErrQuotaExhausted, err)
		}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "quota") {
		return errors.Join(ErrQuotaExhausted, err)
	}
	if strings.Contains(msg, "not_found") || strings.Contains(msg, "is not found") {
		return errors.Join(ErrModelNotFound, err)
	}
	return err
}
