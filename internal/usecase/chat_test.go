package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NeoFin/internal/domain/models"
	domsvc "NeoFin/internal/domain/service"
	"NeoFin/internal/services/rag"
)

func TestExtractTickers(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "TSLA"}, ExtractTickers("Compare AAPL with TSLA, then AAPL again"))
	assert.Equal(t, []string{"I", "ETF"}, ExtractTickers("I like this ETF"))
	assert.Empty(t, ExtractTickers("nothing in caps here"))
	assert.Empty(t, ExtractTickers("GOOGLEX is too long"))
}

func TestReplyLogsBothSidesAndUsesMode(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t)
	s, err := sessions.Create(ctx)
	require.NoError(t, err)
	llm := &fakeCompletion{reply: "Diversify."}
	c := NewChatAssistant(llm, sessions)

	out, err := c.Reply(ctx, s, "how should I invest?", models.ChatOptions{Profile: models.RiskLow, Mode: models.ModeConcise})
	require.NoError(t, err)
	assert.Equal(t, "Diversify.", out.Reply)
	assert.Empty(t, out.Warnings)

	hist := s.History()
	require.Len(t, hist, 2)
	assert.Equal(t, models.RoleUser, hist[0].Role)
	assert.Equal(t, models.RoleAssistant, hist[1].Role)

	msgs := llm.last()
	require.Len(t, msgs, 2)
	assert.Contains(t, systemPrompt(msgs), "**Low Risk**")
	assert.Contains(t, systemPrompt(msgs), "(Concise Mode)")
	assert.NotContains(t, systemPrompt(msgs), "Use the following context")
	assert.Equal(t, "how should I invest?", msgs[1].Content)
}

func TestReplySendsWholeConversation(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t)
	s, err := sessions.Create(ctx)
	require.NoError(t, err)
	llm := &fakeCompletion{reply: "ok"}
	c := NewChatAssistant(llm, sessions)

	_, err = c.Reply(ctx, s, "first", models.ChatOptions{Profile: models.RiskMedium})
	require.NoError(t, err)
	_, err = c.Reply(ctx, s, "second", models.ChatOptions{Profile: models.RiskMedium})
	require.NoError(t, err)

	msgs := llm.last()
	require.Len(t, msgs, 4)
	assert.Equal(t, "first", msgs[1].Content)
	assert.Equal(t, models.RoleAssistant, msgs[2].Role)
	assert.Equal(t, "second", msgs[3].Content)
	assert.Contains(t, systemPrompt(msgs), "(Detailed Mode)")
}

func TestReplyEnrichments(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t)
	s, err := sessions.Create(ctx)
	require.NoError(t, err)

	chunks := []models.Chunk{{Source: "a.txt", Text: "bond ladders reduce risk"}, {Source: "a.txt", Index: 1, Text: "crypto is volatile"}}
	idx, err := rag.Build(ctx, keywordEmbedder{words: []string{"bond", "crypto"}}, chunks)
	require.NoError(t, err)
	s.AttachKnowledgeBase(idx, []string{"a.txt"})

	llm := &fakeCompletion{reply: "ok"}
	quotes := &fakeQuotes{fail: map[string]bool{"ZZZ": true}}
	search := &fakeSearch{result: "[1] News (http://n)\nbody"}
	c := NewChatAssistant(llm, sessions, WithChatQuotes(quotes), WithChatSearch(search))

	out, err := c.Reply(ctx, s, "Is AAPL better than a bond? What about ZZZ and AAPL?", models.ChatOptions{
		Profile: models.RiskMedium, Mode: models.ModeDetailed, WebSearch: true, StockData: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "ZZZ"}, quotes.symbols)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "ZZZ")

	sys := systemPrompt(llm.last())
	assert.Contains(t, sys, "Use the following context to answer the user's question:")
	assert.Contains(t, sys, "Source 1:\nbond ladders reduce risk")
	assert.Contains(t, sys, "--- START (Live Web Search Results) ---\n[1] News")
	assert.Contains(t, sys, "--- START (Live Stock Data: AAPL) ---")
	assert.NotContains(t, sys, "Live Stock Data: ZZZ")
}

func TestReplyWarnsWhenSearchNotConfigured(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t)
	s, err := sessions.Create(ctx)
	require.NoError(t, err)
	c := NewChatAssistant(&fakeCompletion{reply: "ok"}, sessions)

	out, err := c.Reply(ctx, s, "news?", models.ChatOptions{Profile: models.RiskHigh, WebSearch: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Web search is enabled, but TAVILY_API_KEY is not configured."}, out.Warnings)
}

func TestReplyCompletionFailureKeepsUserMessage(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t)
	s, err := sessions.Create(ctx)
	require.NoError(t, err)
	c := NewChatAssistant(&fakeCompletion{err: errors.New("timeout")}, sessions)

	_, err = c.Reply(ctx, s, "hello", models.ChatOptions{Profile: models.RiskMedium})
	require.Error(t, err)
	hist := s.History()
	require.Len(t, hist, 1)
	assert.Equal(t, "hello", hist[0].Content)
}

func TestReplyWithoutModel(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t)
	s, err := sessions.Create(ctx)
	require.NoError(t, err)
	_, err = NewChatAssistant(nil, sessions).Reply(ctx, s, "hi", models.ChatOptions{})
	assert.True(t, errors.Is(err, domsvc.ErrNotConfigured))
	assert.Empty(t, s.History())
}
