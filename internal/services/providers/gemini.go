package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"NeoFin/internal/domain/models"
	domsvc "NeoFin/internal/domain/service"
	"NeoFin/pkg/config"
)

// GeminiCompleter answers chat turns through the Gemini API.
type GeminiCompleter struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGeminiCompleter(ctx context.Context, cfg config.LLMConfig) (*GeminiCompleter, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini: %w", domsvc.ErrNotConfigured)
	}
	client, err := newGenAIClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	return &GeminiCompleter{client: client, model: cfg.GeminiModel, temperature: float32(cfg.Temperature)}, nil
}

func newGenAIClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return client, nil
}

// splitSystem moves system messages into one instruction and maps the rest
// onto Gemini's user/model roles.
func splitSystem(messages []models.Message) (string, []*genai.Content) {
	var system []string
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			system = append(system, m.Content)
		case models.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), contents
}

func (g *GeminiCompleter) Complete(ctx context.Context, messages []models.Message) (string, error) {
	system, contents := splitSystem(messages)
	if len(contents) == 0 {
		return "", errors.New("gemini: no user content")
	}
	temp := g.temperature
	cfg := &genai.GenerateContentConfig{Temperature: &temp}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

var _ domsvc.CompletionService = (*GeminiCompleter)(nil)
