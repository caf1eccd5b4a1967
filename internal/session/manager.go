package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"NeoFin/internal/domain/models"
	domrepo "NeoFin/internal/domain/repository"
	applogger "NeoFin/pkg/logger"
)

var (
	ErrNotFound = errors.New("session not found")
	// ErrBusy means another request is already being served for the session.
	ErrBusy = errors.New("session is busy")
)

// Option configures a Manager.
type Option func(*Manager)

func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithLockTTL bounds how long a crashed request can keep a session locked.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

func WithLogger(l *applogger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.l = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager owns live sessions. Logs are written through to the SessionStore;
// retrievers live only in this process.
type Manager struct {
	store   domrepo.SessionStore
	ttl     time.Duration
	lockTTL time.Duration
	l       *applogger.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(store domrepo.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		ttl:      24 * time.Hour,
		lockTTL:  3 * time.Minute,
		l:        applogger.Nop(),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Create(ctx context.Context) (*Session, error) {
	now := m.now()
	s := newSession(uuid.NewString(), now, nil)
	if err := m.store.SaveHistory(ctx, s.ID, []models.Message{}, m.ttl); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	m.mu.Lock()
	m.pruneLocked(now)
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.l.Debug("session created", applogger.String("session_id", s.ID))
	return s, nil
}

// Get returns a live session, rehydrating its log from the store when this
// process has not seen it yet.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		return s, nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	history, err := m.store.LoadHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if history == nil {
		return nil, ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	s = newSession(id, m.now(), history)
	m.sessions[id] = s
	return s, nil
}

// Append adds messages to the log and writes the log through to the store.
func (m *Manager) Append(ctx context.Context, s *Session, msgs ...models.Message) error {
	now := m.now()
	for i := range msgs {
		if msgs[i].At.IsZero() {
			msgs[i].At = now
		}
	}
	log := s.append(now, msgs...)
	if err := m.store.SaveHistory(ctx, s.ID, log, m.ttl); err != nil {
		m.l.Warn("session history write failed", applogger.String("session_id", s.ID), applogger.Error(err))
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (m *Manager) ClearHistory(ctx context.Context, id string) error {
	s, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	s.clearHistory()
	return m.store.SaveHistory(ctx, id, []models.Message{}, m.ttl)
}

func (m *Manager) ClearKnowledgeBase(ctx context.Context, id string) error {
	s, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	s.detachKnowledgeBase()
	return nil
}

func (m *Manager) Destroy(ctx context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if err := m.store.DeleteHistory(ctx, id); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	m.l.Debug("session destroyed", applogger.String("session_id", id))
	return nil
}

// Acquire locks the session for one request. The returned release must be
// called when the request is done; a second caller gets ErrBusy meanwhile.
func (m *Manager) Acquire(ctx context.Context, id string) (*Session, func(), error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	ok, err := m.store.Lock(ctx, id, m.lockTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("lock session: %w", err)
	}
	if !ok {
		return nil, nil, ErrBusy
	}
	release := func() {
		// the request context may already be cancelled
		if err := m.store.Unlock(context.Background(), id); err != nil {
			m.l.Warn("session unlock failed", applogger.String("session_id", id), applogger.Error(err))
		}
	}
	return s, release, nil
}

// Len reports how many sessions this process holds.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) pruneLocked(now time.Time) {
	for id, s := range m.sessions {
		if now.Sub(s.idleSince()) > m.ttl {
			delete(m.sessions, id)
		}
	}
}
