package usecase

import (
	"context"
	"time"

	"NeoFin/internal/domain/models"
	domrepo "NeoFin/internal/domain/repository"
	applogger "NeoFin/pkg/logger"
)

// recordTimeout bounds one audit write so it never holds up a response for long.
const recordTimeout = 5 * time.Second

// PlanRecorder writes plan audit events to a stream or straight to a store.
// Failures are logged and counted, never returned.
type PlanRecorder struct {
	backend   string
	publisher domrepo.PlanPublisher
	store     domrepo.PlanStore
	log       *applogger.Logger
	metrics   domrepo.Metrics
}

// NewStreamRecorder publishes events (backend "kafka").
func NewStreamRecorder(pub domrepo.PlanPublisher, l *applogger.Logger, m domrepo.Metrics) *PlanRecorder {
	return newRecorder("kafka", pub, nil, l, m)
}

// NewStoreRecorder inserts events directly (backend "clickhouse").
func NewStoreRecorder(store domrepo.PlanStore, l *applogger.Logger, m domrepo.Metrics) *PlanRecorder {
	return newRecorder("clickhouse", nil, store, l, m)
}

func newRecorder(backend string, pub domrepo.PlanPublisher, store domrepo.PlanStore, l *applogger.Logger, m domrepo.Metrics) *PlanRecorder {
	if l == nil {
		l = applogger.Nop()
	}
	if m == nil {
		m = domrepo.NopMetrics{}
	}
	return &PlanRecorder{backend: backend, publisher: pub, store: store, log: l, metrics: m}
}

func (r *PlanRecorder) Backend() string { return r.backend }

func (r *PlanRecorder) Record(ctx context.Context, ev models.PlanEvent) {
	// detached from the request: a client hanging up must not drop the audit record
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	var err error
	switch {
	case r.publisher != nil:
		err = r.publisher.PublishPlan(ctx, ev)
	case r.store != nil:
		err = r.store.StorePlans(ctx, []models.PlanEvent{ev})
	default:
		return
	}
	r.metrics.RecordEventPublished(r.backend, err)
	if err != nil {
		r.log.Warn("plan audit write failed",
			applogger.String("backend", r.backend),
			applogger.String("plan_id", ev.ID),
			applogger.Error(err),
		)
	}
}

func (r *PlanRecorder) Close() error {
	if r.publisher != nil {
		return r.publisher.Close()
	}
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}
