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

func newKB(t *testing.T) (*KnowledgeBase, *KnowledgeBase) {
	t.Helper()
	sessions := newSessions(t)
	with := NewKnowledgeBase(rag.NewPDFExtractor(), keywordEmbedder{words: []string{"etf", "bond"}}, rag.NewSplitter(1000, 200), sessions, nil)
	without := NewKnowledgeBase(rag.NewPDFExtractor(), nil, rag.NewSplitter(1000, 200), sessions, nil)
	return with, without
}

func TestIngestAttachesRetriever(t *testing.T) {
	ctx := context.Background()
	kb, _ := newKB(t)
	s, err := kb.sessions.Create(ctx)
	require.NoError(t, err)

	report, err := kb.Ingest(ctx, s, []models.Document{
		{Name: "notes.txt", Data: []byte("ETF basics and bond ladders")},
		{Name: "scan.png", Data: []byte{0x89, 0x50}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"notes.txt"}, report.Documents)
	assert.Equal(t, 1, report.Chunks)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "scan.png")
	require.NotNil(t, s.Retriever())
	assert.Equal(t, []string{"notes.txt"}, s.Documents())

	require.NoError(t, kb.Clear(ctx, s.ID))
	assert.Nil(t, s.Retriever())
}

func TestIngestErrors(t *testing.T) {
	ctx := context.Background()
	kb, noEmbed := newKB(t)
	s, err := kb.sessions.Create(ctx)
	require.NoError(t, err)

	_, err = kb.Ingest(ctx, s, nil)
	assert.True(t, errors.Is(err, ErrNoDocuments))

	_, err = noEmbed.Ingest(ctx, s, []models.Document{{Name: "a.txt", Data: []byte("x")}})
	assert.True(t, errors.Is(err, domsvc.ErrNotConfigured))

	_, err = kb.Ingest(ctx, s, []models.Document{{Name: "blank.txt", Data: []byte("   ")}})
	assert.True(t, errors.Is(err, ErrNoText))
	assert.Nil(t, s.Retriever())
}
