package session

import (
	"sync"
	"time"

	"NeoFin/internal/domain/models"
	domsvc "NeoFin/internal/domain/service"
)

// Session is one user's conversation context: the message log and the
// optional knowledge-base retriever built from their uploads.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.RWMutex
	history    []models.Message
	retriever  domsvc.Retriever
	documents  []string
	lastActive time.Time
}

func newSession(id string, now time.Time, history []models.Message) *Session {
	return &Session{ID: id, CreatedAt: now, lastActive: now, history: history}
}

// History returns a copy of the conversation log.
func (s *Session) History() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) append(now time.Time, msgs ...models.Message) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, msgs...)
	s.lastActive = now
	out := make([]models.Message, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) clearHistory() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}

// Retriever is nil until documents have been indexed.
func (s *Session) Retriever() domsvc.Retriever {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retriever
}

// Documents lists the names behind the current retriever.
func (s *Session) Documents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.documents...)
}

// AttachKnowledgeBase replaces any previous retriever.
func (s *Session) AttachKnowledgeBase(r domsvc.Retriever, documents []string) {
	s.mu.Lock()
	s.retriever = r
	s.documents = append([]string(nil), documents...)
	s.mu.Unlock()
}

func (s *Session) detachKnowledgeBase() {
	s.mu.Lock()
	s.retriever = nil
	s.documents = nil
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}
