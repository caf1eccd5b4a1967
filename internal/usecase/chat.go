package usecase

import (
	"context"
	"fmt"
	"strings"

	"NeoFin/internal/domain/models"
	domrepo "NeoFin/internal/domain/repository"
	domsvc "NeoFin/internal/domain/service"
	"NeoFin/internal/session"
	applogger "NeoFin/pkg/logger"
)

// DefaultTopK is how many knowledge-base chunks go into a turn's context.
const DefaultTopK = 4

type ChatOption func(*ChatAssistant)

func WithChatSearch(s domsvc.SearchService) ChatOption {
	return func(c *ChatAssistant) { c.enrich.search = s }
}

func WithChatQuotes(q domsvc.QuoteService) ChatOption {
	return func(c *ChatAssistant) { c.enrich.quotes = q }
}

func WithChatTopK(k int) ChatOption {
	return func(c *ChatAssistant) {
		if k > 0 {
			c.topK = k
		}
	}
}

func WithChatLogger(l *applogger.Logger) ChatOption {
	return func(c *ChatAssistant) {
		if l != nil {
			c.log = l
			c.enrich.log = l
		}
	}
}

func WithChatMetrics(m domrepo.Metrics) ChatOption {
	return func(c *ChatAssistant) {
		if m != nil {
			c.metrics = m
			c.enrich.metrics = m
		}
	}
}

// ChatAssistant answers one conversation turn, grounding the reply in the
// session's documents, live search results and live quotes when enabled.
type ChatAssistant struct {
	completion domsvc.CompletionService
	sessions   *session.Manager
	enrich     enricher
	topK       int
	log        *applogger.Logger
	metrics    domrepo.Metrics
}

// NewChatAssistant accepts a nil completion service; Reply then reports ErrNotConfigured.
func NewChatAssistant(completion domsvc.CompletionService, sessions *session.Manager, opts ...ChatOption) *ChatAssistant {
	c := &ChatAssistant{
		completion: completion,
		sessions:   sessions,
		topK:       DefaultTopK,
		log:        applogger.Nop(),
		metrics:    domrepo.NopMetrics{},
	}
	c.enrich = enricher{log: c.log, metrics: c.metrics}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reply logs the user's message, builds the context and asks the model once.
// The caller must hold the session (see session.Manager.Acquire). On a
// completion failure the user's message stays in the log and the error is
// returned with whatever warnings were collected.
func (c *ChatAssistant) Reply(ctx context.Context, s *session.Session, text string, opts models.ChatOptions) (models.ChatReply, error) {
	var reply models.ChatReply
	text = strings.TrimSpace(text)
	if text == "" {
		return reply, fmt.Errorf("empty message")
	}
	if c.completion == nil {
		return reply, fmt.Errorf("chat: %w", domsvc.ErrNotConfigured)
	}
	if err := c.sessions.Append(ctx, s, models.Message{Role: models.RoleUser, Content: text}); err != nil {
		return reply, err
	}

	extra, warnings := c.buildContext(ctx, s, text, opts)
	reply.Warnings = warnings

	history := s.History()
	messages := make([]models.Message, 0, len(history)+1)
	messages = append(messages, models.Message{
		Role:    models.RoleSystem,
		Content: withContext(chatSystemPrompt(opts.Profile, opts.Mode), extra),
	})
	for _, m := range history {
		if m.Role == models.RoleSystem {
			continue
		}
		messages = append(messages, models.Message{Role: m.Role, Content: m.Content})
	}

	answer, err := c.completion.Complete(ctx, messages)
	c.metrics.RecordCollaboratorCall("completion", err)
	c.metrics.RecordChatTurn(string(opts.Mode), err)
	if err != nil {
		c.log.Warn("chat completion failed", applogger.String("session_id", s.ID), applogger.Error(err))
		return reply, fmt.Errorf("getting response: %w", err)
	}
	reply.Reply = answer
	if err := c.sessions.Append(ctx, s, models.Message{Role: models.RoleAssistant, Content: answer}); err != nil {
		reply.Warnings = append(reply.Warnings, "the reply could not be saved to the conversation log")
	}
	c.log.Info("chat turn answered",
		applogger.String("session_id", s.ID),
		applogger.String("mode", string(opts.Mode)),
		applogger.Int("warnings", len(reply.Warnings)),
	)
	return reply, nil
}

// buildContext gathers the enrichments for the last user message. Order is
// fixed: knowledge base, web search, then one block per ticker.
func (c *ChatAssistant) buildContext(ctx context.Context, s *session.Session, query string, opts models.ChatOptions) (string, []string) {
	var b strings.Builder
	var warnings []string
	warn := func(msg string) {
		if msg != "" {
			warnings = append(warnings, msg)
		}
	}

	if r := s.Retriever(); r != nil {
		res := c.enrich.retrieve(ctx, r, query, c.topK)
		if res.OK() {
			b.WriteString(knowledgeBlock(res.Value))
		} else if res.Reason != models.ReasonEmpty {
			warn(res.Notice("Knowledge base retrieval"))
		}
	}

	if opts.WebSearch {
		res := c.enrich.news(ctx, query)
		switch {
		case res.OK():
			b.WriteString(searchBlock(res.Value))
		case res.Reason == models.ReasonNotConfigured:
			warn("Web search is enabled, but TAVILY_API_KEY is not configured.")
		case res.Reason != models.ReasonEmpty:
			warn(res.Notice("Web search"))
		}
	}

	if opts.StockData {
		for _, sym := range ExtractTickers(query) {
			res := c.enrich.quote(ctx, sym)
			if res.OK() {
				b.WriteString(stockBlock(sym, describeQuote(res.Value)))
				continue
			}
			if res.Reason == models.ReasonNotConfigured {
				warn(res.Notice("Live stock data"))
				break
			}
			warn(res.Notice("Stock data for " + sym))
		}
	}
	return b.String(), warnings
}
