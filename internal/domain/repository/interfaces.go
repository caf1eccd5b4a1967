package repository

import (
	"context"
	"time"

	"NeoFin/internal/domain/models"
)

// PlanPublisher emits plan audit events to a stream.
type PlanPublisher interface {
	PublishPlan(ctx context.Context, ev models.PlanEvent) error
	Close() error
}

// PlanStore persists plan audit events.
type PlanStore interface {
	Init(ctx context.Context) error
	StorePlans(ctx context.Context, evs []models.PlanEvent) error
	RecentPlans(ctx context.Context, limit int) ([]models.PlanEvent, error)
	Close() error
}

// SessionStore keeps conversation logs between requests.
type SessionStore interface {
	SaveHistory(ctx context.Context, sessionID string, msgs []models.Message, ttl time.Duration) error
	LoadHistory(ctx context.Context, sessionID string) ([]models.Message, error)
	DeleteHistory(ctx context.Context, sessionID string) error
	Lock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, sessionID string) error
}

type Metrics interface {
	RecordCollaboratorCall(service string, err error)
	RecordError(kind string)
	RecordPlan(profile, outcome string)
	RecordChatTurn(mode string, err error)
	RecordEventPublished(backend string, err error)
	RecordLatency(op string, seconds float64)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordCollaboratorCall(string, error) {}
func (NopMetrics) RecordError(string) {}
func (NopMetrics) RecordPlan(string, string) {}
func (NopMetrics) RecordChatTurn(string, error) {}
func (NopMetrics) RecordEventPublished(string, error) {}
func (NopMetrics) RecordLatency(string, float64) {}
