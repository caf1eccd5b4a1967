package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"NeoFin/internal/domain/models"
	domsvc "NeoFin/internal/domain/service"
	"NeoFin/pkg/config"
)

// GroqCompleter talks to Groq's OpenAI-compatible chat completions endpoint.
type GroqCompleter struct {
	base        *HTTPServiceBase
	model       string
	temperature float64
}

func NewGroqCompleter(cfg config.LLMConfig, opts ...BaseOption) (*GroqCompleter, error) {
	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("groq: %w", domsvc.ErrNotConfigured)
	}
	opts = append([]BaseOption{WithTimeout(cfg.Timeout)}, opts...)
	return &GroqCompleter{
		base:        NewHTTPServiceBase("groq", cfg.GroqBaseURL, bearer(cfg.GroqAPIKey), opts...),
		model:       cfg.GroqModel,
		temperature: cfg.Temperature,
	}, nil
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type groqResponse struct {
	Choices []struct {
		Message groqMessage `json:"message"`
	} `json:"choices"`
}

func (g *GroqCompleter) Complete(ctx context.Context, messages []models.Message) (string, error) {
	req := groqRequest{Model: g.model, Temperature: g.temperature}
	for _, m := range messages {
		req.Messages = append(req.Messages, groqMessage{Role: string(m.Role), Content: m.Content})
	}
	var resp groqResponse
	if err := g.base.PostJSON(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("groq: empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ domsvc.CompletionService = (*GroqCompleter)(nil)
