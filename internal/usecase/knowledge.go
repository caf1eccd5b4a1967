package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"NeoFin/internal/domain/models"
	domsvc "NeoFin/internal/domain/service"
	"NeoFin/internal/services/rag"
	"NeoFin/internal/session"
	applogger "NeoFin/pkg/logger"
)

var (
	ErrNoDocuments = errors.New("no documents uploaded")
	ErrNoText      = errors.New("no extractable text in the uploaded documents")
)

// IngestReport summarises one knowledge-base build.
type IngestReport struct {
	Documents []string `json:"documents"`
	Chunks    int      `json:"chunks"`
	Warnings  []string `json:"warnings,omitempty"`
}

// KnowledgeBase turns uploaded documents into a session-scoped retriever.
type KnowledgeBase struct {
	extractor domsvc.TextExtractor
	embedder  domsvc.Embedder
	splitter  *rag.Splitter
	sessions  *session.Manager
	log       *applogger.Logger
}

// NewKnowledgeBase accepts a nil embedder; Ingest then reports ErrNotConfigured.
func NewKnowledgeBase(extractor domsvc.TextExtractor, embedder domsvc.Embedder, splitter *rag.Splitter, sessions *session.Manager, l *applogger.Logger) *KnowledgeBase {
	if l == nil {
		l = applogger.Nop()
	}
	return &KnowledgeBase{extractor: extractor, embedder: embedder, splitter: splitter, sessions: sessions, log: l}
}

// Ingest indexes docs and attaches the result to the session, replacing any
// previous index. Documents that cannot be read are skipped with a warning.
func (k *KnowledgeBase) Ingest(ctx context.Context, s *session.Session, docs []models.Document) (IngestReport, error) {
	var report IngestReport
	if len(docs) == 0 {
		return report, ErrNoDocuments
	}
	if k.embedder == nil {
		return report, fmt.Errorf("knowledge base: %w", domsvc.ErrNotConfigured)
	}

	var chunks []models.Chunk
	for _, doc := range docs {
		text, err := k.extractor.Extract(doc)
		if err != nil {
			k.log.Warn("document skipped", applogger.String("document", doc.Name), applogger.Error(err))
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s could not be read: %v", doc.Name, err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			report.Warnings = append(report.Warnings, doc.Name+" has no text layer")
			continue
		}
		chunks = append(chunks, rag.ChunkDocument(k.splitter, doc.Name, text)...)
		report.Documents = append(report.Documents, doc.Name)
	}
	if len(chunks) == 0 {
		return report, ErrNoText
	}

	idx, err := rag.Build(ctx, k.embedder, chunks)
	if err != nil {
		return report, fmt.Errorf("build knowledge base: %w", err)
	}
	s.AttachKnowledgeBase(idx, report.Documents)
	report.Chunks = idx.Len()
	k.log.Info("knowledge base built",
		applogger.String("session_id", s.ID),
		applogger.Strings("documents", report.Documents),
		applogger.Int("chunks", report.Chunks),
	)
	return report, nil
}

func (k *KnowledgeBase) Clear(ctx context.Context, sessionID string) error {
	return k.sessions.ClearKnowledgeBase(ctx, sessionID)
}
