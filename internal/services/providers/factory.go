package providers

import (
	"context"
	"fmt"

	domsvc "NeoFin/internal/domain/service"
	"NeoFin/pkg/config"
)

// MarketData is what a market provider offers: history for analysis and quotes for narration.
type MarketData interface {
	domsvc.PriceHistoryService
	domsvc.QuoteService
}

// NewCompleter builds the chat provider selected by cfg.Provider.
func NewCompleter(ctx context.Context, cfg config.LLMConfig) (domsvc.CompletionService, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiCompleter(ctx, cfg)
	case "groq", "":
		return NewGroqCompleter(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// NewEmbedder builds the embedding provider. The genai backend reuses the Gemini key.
func NewEmbedder(ctx context.Context, cfg config.EmbeddingConfig, geminiKey string) (domsvc.Embedder, error) {
	switch cfg.Provider {
	case "genai":
		return NewGenAIEmbedder(ctx, geminiKey, cfg.GenAIModel)
	case "ollama", "":
		return NewOllamaEmbedder(cfg.OllamaURL, cfg.Model, WithTimeout(cfg.Timeout)), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

func NewMarketData(cfg config.MarketConfig) (MarketData, error) {
	switch cfg.Provider {
	case "eodhd":
		return NewEODHDMarket(cfg)
	case "yahoo", "":
		return NewYahooMarket(cfg), nil
	default:
		return nil, fmt.Errorf("unknown market provider %q", cfg.Provider)
	}
}
