package providers

import (
	"context"
	"errors"
	"fmt"

	domsvc "NeoFin/internal/domain/service"
)

// OllamaEmbedder calls a local Ollama server, one prompt per request.
type OllamaEmbedder struct {
	base  *HTTPServiceBase
	model string
}

func NewOllamaEmbedder(baseURL, model string, opts ...BaseOption) *OllamaEmbedder {
	return &OllamaEmbedder{
		base:  NewHTTPServiceBase("ollama", baseURL, nil, opts...),
		model: model,
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (o *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for i, t := range texts {
		var resp ollamaResponse
		if err := o.base.PostJSON(ctx, "/api/embeddings", ollamaRequest{Model: o.model, Prompt: t}, &resp); err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		if len(resp.Embedding) == 0 {
			return nil, errors.New("ollama: empty embedding")
		}
		out = append(out, resp.Embedding)
	}
	return out, nil
}

var _ domsvc.Embedder = (*OllamaEmbedder)(nil)
