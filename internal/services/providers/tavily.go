package providers

import (
	"context"
	"fmt"
	"strings"

	domsvc "NeoFin/internal/domain/service"
	"NeoFin/pkg/config"
)

// TavilySearcher runs live web searches through the Tavily API.
type TavilySearcher struct {
	base       *HTTPServiceBase
	maxResults int
}

func NewTavilySearcher(cfg config.SearchConfig, opts ...BaseOption) (*TavilySearcher, error) {
	if cfg.TavilyAPIKey == "" {
		return nil, fmt.Errorf("tavily: %w", domsvc.ErrNotConfigured)
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}
	opts = append([]BaseOption{WithTimeout(cfg.Timeout)}, opts...)
	return &TavilySearcher{
		base:       NewHTTPServiceBase("tavily", cfg.BaseURL, bearer(cfg.TavilyAPIKey), opts...),
		maxResults: maxResults,
	}, nil
}

type tavilyRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type tavilyResponse struct {
	Answer  string         `json:"answer"`
	Results []tavilyResult `json:"results"`
}

// Search returns the top results rendered as plain text, or "" when nothing matched.
func (t *TavilySearcher) Search(ctx context.Context, query string) (string, error) {
	var resp tavilyResponse
	if err := t.base.PostJSON(ctx, "/search", tavilyRequest{Query: query, MaxResults: t.maxResults}, &resp); err != nil {
		return "", err
	}
	return renderResults(resp.Results), nil
}

func renderResults(results []tavilyResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s (%s)\n%s", i+1, strings.TrimSpace(r.Title), r.URL, strings.TrimSpace(r.Content))
	}
	return b.String()
}

var _ domsvc.SearchService = (*TavilySearcher)(nil)
