package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"NeoFin/internal/domain/models"
	"NeoFin/internal/repository"
	"NeoFin/internal/session"
	"NeoFin/pkg/cache"
)

type fakeCompletion struct {
	mu    sync.Mutex
	reply string
	err   error
	calls [][]models.Message
}

func (f *fakeCompletion) Complete(_ context.Context, msgs []models.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]models.Message(nil), msgs...))
	return f.reply, f.err
}

func (f *fakeCompletion) last() []models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

type fakeSearch struct {
	result  string
	err     error
	queries []string
}

func (f *fakeSearch) Search(_ context.Context, q string) (string, error) {
	f.queries = append(f.queries, q)
	return f.result, f.err
}

type fakeQuotes struct {
	fail    map[string]bool
	symbols []string
}

func (f *fakeQuotes) Quote(_ context.Context, sym string) (models.Quote, error) {
	f.symbols = append(f.symbols, sym)
	if f.fail[sym] {
		return models.Quote{}, errors.New("unknown ticker")
	}
	return models.Quote{Symbol: sym, CompanyName: sym + " Corp", CurrentPrice: 100}, nil
}

// synthHistory returns a smooth, slightly noisy upward series for every
// symbol, or a falling one when decline is set.
type synthHistory struct {
	empty   bool
	decline bool
	calls   int
}

func (h *synthHistory) History(_ context.Context, sym string, from, to time.Time) (models.PriceSeries, error) {
	h.calls++
	if h.empty {
		return models.PriceSeries{Symbol: sym}, nil
	}
	drift := 0.0002 + float64(len(sym))*0.00005
	if h.decline {
		drift = -drift
	}
	s := models.PriceSeries{Symbol: sym}
	for i := 0; i < 400; i++ {
		s.Dates = append(s.Dates, from.AddDate(0, 0, i))
		s.Closes = append(s.Closes, 100*math.Exp(drift*float64(i)+0.01*math.Sin(float64(i))))
	}
	return s, nil
}

type fakePublisher struct {
	events []models.PlanEvent
	err    error
}

func (f *fakePublisher) PublishPlan(_ context.Context, ev models.PlanEvent) error {
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

type fakePlanStore struct {
	stored []models.PlanEvent
	err    error
}

func (f *fakePlanStore) Init(context.Context) error { return nil }

func (f *fakePlanStore) StorePlans(_ context.Context, evs []models.PlanEvent) error {
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, evs...)
	return nil
}

func (f *fakePlanStore) RecentPlans(context.Context, int) ([]models.PlanEvent, error) {
	return f.stored, nil
}

func (f *fakePlanStore) Close() error { return nil }

// countingMetrics records plan outcomes and audit writes.
type countingMetrics struct {
	plans     []string
	published map[string]int
	failed    map[string]int
	errors    []string
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{published: map[string]int{}, failed: map[string]int{}}
}

func (m *countingMetrics) RecordCollaboratorCall(string, error) {}
func (m *countingMetrics) RecordError(kind string) { m.errors = append(m.errors, kind) }
func (m *countingMetrics) RecordPlan(_, outcome string) { m.plans = append(m.plans, outcome) }
func (m *countingMetrics) RecordChatTurn(string, error) {}
func (m *countingMetrics) RecordLatency(string, float64) {}
func (m *countingMetrics) RecordEventPublished(backend string, err error) {
	if err != nil {
		m.failed[backend]++
		return
	}
	m.published[backend]++
}

type keywordEmbedder struct{ words []string }

func (k keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, len(k.words))
		for j, w := range k.words {
			v[j] = float32(strings.Count(strings.ToLower(t), w))
		}
		out[i] = v
	}
	return out, nil
}

func newSessions(t *testing.T) *session.Manager {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	return session.NewManager(repository.NewCacheSessionStore(mc))
}

func systemPrompt(msgs []models.Message) string {
	if len(msgs) == 0 || msgs[0].Role != models.RoleSystem {
		return ""
	}
	return msgs[0].Content
}
