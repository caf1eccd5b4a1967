package service

import (
	"context"
	"errors"
	"time"

	"NeoFin/internal/domain/models"
)

// ErrNotConfigured is returned by features whose collaborator has no credentials.
var ErrNotConfigured = errors.New("not configured")

// CompletionService turns a message sequence into one assistant reply.
type CompletionService interface {
	Complete(ctx context.Context, messages []models.Message) (string, error)
}

// SearchService answers a free-text query with a text summary of results.
type SearchService interface {
	Search(ctx context.Context, query string) (string, error)
}

// QuoteService returns a live snapshot for a ticker.
type QuoteService interface {
	Quote(ctx context.Context, symbol string) (models.Quote, error)
}

// PriceHistoryService returns the adjusted daily closes of symbol in [from, to].
// An empty series with a nil error means the provider has no data for it.
type PriceHistoryService interface {
	History(ctx context.Context, symbol string, from, to time.Time) (models.PriceSeries, error)
}

// Embedder maps texts to vectors of a fixed dimension.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// TextExtractor pulls plain text out of a document.
type TextExtractor interface {
	Extract(doc models.Document) (string, error)
}

// Retriever returns the chunks most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]models.Chunk, error)
}
