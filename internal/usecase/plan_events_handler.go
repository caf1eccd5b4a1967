package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"NeoFin/internal/domain/models"
	domrepo "NeoFin/internal/domain/repository"
	pkgkafka "NeoFin/pkg/kafka"
)

// PlanEventsHandler consumes plan audit events from Kafka into the plan store.
type PlanEventsHandler struct {
	topic   string
	store   domrepo.PlanStore
	metrics domrepo.Metrics
}

func NewPlanEventsHandler(topic string, store domrepo.PlanStore, metrics domrepo.Metrics) *PlanEventsHandler {
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	return &PlanEventsHandler{topic: topic, store: store, metrics: metrics}
}

func (h *PlanEventsHandler) Topic() string { return h.topic }

func (h *PlanEventsHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.PlanEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("plan_event_unmarshal")
		return fmt.Errorf("decode plan event: %w", err)
	}
	if ev.ID == "" {
		h.metrics.RecordError("plan_event_invalid")
		return fmt.Errorf("plan event without id")
	}
	if !ev.At.IsZero() {
		h.metrics.RecordLatency("plan_event_e2e", time.Since(ev.At).Seconds())
	}

	start := time.Now()
	err := h.store.StorePlans(ctx, []models.PlanEvent{ev})
	h.metrics.RecordLatency("plan_event_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("plan_event_store")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*PlanEventsHandler)(nil)
