package usecase

import (
	"context"
	"regexp"
	"strings"

	"NeoFin/internal/domain/models"
	domrepo "NeoFin/internal/domain/repository"
	domsvc "NeoFin/internal/domain/service"
	applogger "NeoFin/pkg/logger"
)

// tickerPattern matches words that look like US tickers: 1-5 capital letters.
var tickerPattern = regexp.MustCompile(`\b[A-Z]{1,5}\b`)

// ExtractTickers returns the distinct ticker-like tokens of text in order of appearance.
func ExtractTickers(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range tickerPattern.FindAllString(text, -1) {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// enricher wraps the optional collaborators. Each call is made once and its
// failure is reported as a value, never as an error.
type enricher struct {
	search  domsvc.SearchService
	quotes  domsvc.QuoteService
	log     *applogger.Logger
	metrics domrepo.Metrics
}

func (e enricher) news(ctx context.Context, query string) models.Enrichment[string] {
	if e.search == nil {
		return models.EnrichmentFailed[string](models.ReasonNotConfigured, domsvc.ErrNotConfigured)
	}
	res, err := e.search.Search(ctx, query)
	e.metrics.RecordCollaboratorCall("search", err)
	if err != nil {
		e.log.Warn("web search failed", applogger.String("query", query), applogger.Error(err))
		return models.EnrichmentFailed[string](models.ReasonUpstream, err)
	}
	if strings.TrimSpace(res) == "" {
		return models.EnrichmentFailed[string](models.ReasonEmpty, nil)
	}
	return models.Enriched(res)
}

func (e enricher) quote(ctx context.Context, symbol string) models.Enrichment[models.Quote] {
	if e.quotes == nil {
		return models.EnrichmentFailed[models.Quote](models.ReasonNotConfigured, domsvc.ErrNotConfigured)
	}
	q, err := e.quotes.Quote(ctx, symbol)
	e.metrics.RecordCollaboratorCall("quote", err)
	if err != nil {
		e.log.Warn("quote failed", applogger.String("symbol", symbol), applogger.Error(err))
		return models.EnrichmentFailed[models.Quote](models.ReasonUpstream, err)
	}
	return models.Enriched(q)
}

func (e enricher) retrieve(ctx context.Context, r domsvc.Retriever, query string, k int) models.Enrichment[[]models.Chunk] {
	chunks, err := r.Retrieve(ctx, query, k)
	e.metrics.RecordCollaboratorCall("retriever", err)
	if err != nil {
		e.log.Warn("knowledge base retrieval failed", applogger.Error(err))
		return models.EnrichmentFailed[[]models.Chunk](models.ReasonUpstream, err)
	}
	if len(chunks) == 0 {
		return models.EnrichmentFailed[[]models.Chunk](models.ReasonEmpty, nil)
	}
	return models.Enriched(chunks)
}
