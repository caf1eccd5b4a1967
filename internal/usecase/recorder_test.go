package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NeoFin/internal/domain/models"
)

func TestRecorderCountsFailuresWithoutReturningThem(t *testing.T) {
	m := newCountingMetrics()
	pub := &fakePublisher{err: errors.New("broker down")}
	r := NewStreamRecorder(pub, nil, m)

	r.Record(context.Background(), models.PlanEvent{ID: "p1"})
	assert.Len(t, pub.events, 1)
	assert.Equal(t, 1, m.failed["kafka"])
	assert.Equal(t, "kafka", r.Backend())
}

func TestRecorderSurvivesCancelledRequest(t *testing.T) {
	m := newCountingMetrics()
	store := &fakePlanStore{}
	r := NewStoreRecorder(store, nil, m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Record(ctx, models.PlanEvent{ID: "p2"})
	require.Len(t, store.stored, 1)
	assert.Equal(t, 1, m.published["clickhouse"])
}

func TestPlanEventsHandlerStoresDecodedEvent(t *testing.T) {
	store := &fakePlanStore{}
	m := newCountingMetrics()
	h := NewPlanEventsHandler("neofin.plans", store, m)
	assert.Equal(t, "neofin.plans", h.Topic())

	ev := models.PlanEvent{ID: "p3", At: time.Now().UTC(), Profile: models.RiskHigh, Symbols: []string{"QQQ"}, Outcome: models.PlanNarrated}
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	require.NoError(t, h.Handle(context.Background(), b))
	require.Len(t, store.stored, 1)
	assert.Equal(t, models.RiskHigh, store.stored[0].Profile)
	assert.Equal(t, []string{"QQQ"}, store.stored[0].Symbols)
}

func TestPlanEventsHandlerRejectsGarbage(t *testing.T) {
	m := newCountingMetrics()
	h := NewPlanEventsHandler("t", &fakePlanStore{}, m)
	assert.Error(t, h.Handle(context.Background(), []byte("{not json")))
	assert.Error(t, h.Handle(context.Background(), []byte(`{"risk_profile":"Low Risk"}`)))
	assert.Equal(t, []string{"plan_event_unmarshal", "plan_event_invalid"}, m.errors)
}
