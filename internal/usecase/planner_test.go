package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NeoFin/internal/domain/models"
	domsvc "NeoFin/internal/domain/service"
	"NeoFin/internal/services/basket"
	"NeoFin/internal/services/performance"
)

func planInput(target, amount float64) models.PlanInput {
	return models.PlanInput{Target: target, Mode: models.Lumpsum, Amount: amount, Profile: models.RiskMedium}
}

func TestPlanStopsAtNonFiniteTenure(t *testing.T) {
	hist := &synthHistory{}
	llm := &fakeCompletion{reply: "x"}
	metrics := newCountingMetrics()
	p := NewGoalPlanner(performance.NewAnalyzer(hist), WithPlannerCompletion(llm), WithPlannerMetrics(metrics))

	res, err := p.Plan(context.Background(), planInput(1000, 5000))
	require.NoError(t, err)
	assert.Equal(t, models.PlanTenureOnly, res.Outcome)
	assert.Equal(t, models.TenureNotComputable, res.Tenure.Status)
	assert.Contains(t, res.Message, "Could not calculate tenure")
	assert.Nil(t, res.Basket)
	assert.Zero(t, hist.calls)
	assert.Empty(t, llm.calls)
	assert.Equal(t, []string{"tenure_only"}, metrics.plans)
}

func TestPlanExceedsHorizonStopsToo(t *testing.T) {
	hist := &synthHistory{}
	p := NewGoalPlanner(performance.NewAnalyzer(hist), WithPlannerCompletion(&fakeCompletion{}))
	in := models.PlanInput{Target: 1e9, Mode: models.SIP, Amount: 10, Profile: models.RiskLow, StepUp: true, StepUpPercent: 1}

	res, err := p.Plan(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.TenureExceedsHorizon, res.Tenure.Status)
	assert.Equal(t, "60+", res.Tenure.String())
	assert.Zero(t, hist.calls)
}

func TestPlanNeedsCompletion(t *testing.T) {
	p := NewGoalPlanner(performance.NewAnalyzer(&synthHistory{}))
	res, err := p.Plan(context.Background(), planInput(100000, 25000))
	assert.True(t, errors.Is(err, domsvc.ErrNotConfigured))
	assert.True(t, res.Tenure.IsFinite())
	assert.InDelta(t, 14.5, res.Tenure.Years, 1e-9)
}

func TestPlanNoMarketData(t *testing.T) {
	pub := &fakePublisher{}
	p := NewGoalPlanner(performance.NewAnalyzer(&synthHistory{empty: true}),
		WithPlannerCompletion(&fakeCompletion{reply: "x"}),
		WithPlannerRecorder(NewStreamRecorder(pub, nil, nil)),
	)
	res, err := p.Plan(context.Background(), planInput(100000, 25000))
	assert.True(t, errors.Is(err, ErrNoMarketData))
	assert.Equal(t, models.PlanNoMarketData, res.Outcome)
	require.Len(t, pub.events, 1)
	assert.Equal(t, models.PlanNoMarketData, pub.events[0].Outcome)
}

func TestPlanNoMarketDataForEveryProfile(t *testing.T) {
	for _, profile := range models.RiskProfiles {
		t.Run(string(profile), func(t *testing.T) {
			llm := &fakeCompletion{reply: "x"}
			p := NewGoalPlanner(performance.NewAnalyzer(&synthHistory{empty: true}), WithPlannerCompletion(llm))
			in := planInput(100000, 25000)
			in.Profile = profile

			res, err := p.Plan(context.Background(), in)
			assert.True(t, errors.Is(err, ErrNoMarketData))
			assert.False(t, errors.Is(err, ErrNoEligibleAssets))
			assert.Equal(t, models.PlanNoMarketData, res.Outcome)
			assert.Nil(t, res.Basket)
			assert.Empty(t, llm.calls)
		})
	}
}

func TestPlanNoEligibleAssets(t *testing.T) {
	llm := &fakeCompletion{reply: "x"}
	pub := &fakePublisher{}
	metrics := newCountingMetrics()
	p := NewGoalPlanner(performance.NewAnalyzer(&synthHistory{decline: true}),
		WithPlannerCompletion(llm),
		WithPlannerRecorder(NewStreamRecorder(pub, nil, nil)),
		WithPlannerMetrics(metrics),
	)
	in := planInput(100000, 25000)
	in.Profile = models.RiskHigh

	res, err := p.Plan(context.Background(), in)
	assert.True(t, errors.Is(err, ErrNoEligibleAssets))
	assert.False(t, errors.Is(err, ErrNoMarketData))
	assert.Equal(t, models.PlanNoEligibleAssets, res.Outcome)
	assert.Nil(t, res.Basket)
	assert.True(t, res.Tenure.IsFinite())
	assert.Empty(t, llm.calls)
	require.Len(t, pub.events, 1)
	assert.Equal(t, models.PlanNoEligibleAssets, pub.events[0].Outcome)
	assert.Empty(t, pub.events[0].Symbols)
	assert.Equal(t, []string{"no_eligible_assets"}, metrics.plans)
}

func TestPlanHappyPath(t *testing.T) {
	hist := &synthHistory{}
	llm := &fakeCompletion{reply: "Here is your basket."}
	quotes := &fakeQuotes{fail: map[string]bool{}}
	search := &fakeSearch{result: "markets are calm"}
	pub := &fakePublisher{}
	p := NewGoalPlanner(performance.NewAnalyzer(hist),
		WithPlannerCompletion(llm),
		WithPlannerQuotes(quotes),
		WithPlannerSearch(search),
		WithPlannerRecorder(NewStreamRecorder(pub, nil, nil)),
	)

	res, err := p.Plan(context.Background(), planInput(100000, 25000))
	require.NoError(t, err)
	assert.Equal(t, models.PlanNarrated, res.Outcome)
	assert.Equal(t, "Here is your basket.", res.Narrative)
	assert.Equal(t, len(basket.UniverseSymbols()), hist.calls)
	require.NotNil(t, res.Basket)
	assert.Len(t, res.Basket.Assets, basket.Size)
	assert.Equal(t, res.Basket.Symbols(), quotes.symbols)
	assert.Equal(t, []string{basket.QueryHint(models.RiskMedium)}, search.queries)
	assert.Equal(t, "markets are calm", res.News)

	msgs := llm.last()
	require.Len(t, msgs, 2)
	sys := systemPrompt(msgs)
	assert.Contains(t, sys, `named "NeoFin"`)
	assert.Contains(t, sys, "--- START DATA-DRIVEN CONTEXT ---")
	assert.Contains(t, sys, "Recent Market News:\nmarkets are calm")
	for _, sym := range res.Basket.Symbols() {
		assert.Contains(t, sys, "- "+sym+": Return=")
	}
	assert.Contains(t, msgs[1].Content, "$100,000.00")
	assert.Contains(t, msgs[1].Content, "$25,000.00 as a Lump Sum")
	assert.Contains(t, msgs[1].Content, "14.5 years")

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, res.Basket.Symbols(), ev.Symbols)
	assert.Equal(t, models.TenureFinite, ev.TenureState)
}

func TestPlanKeepsBasketWhenNarrationFails(t *testing.T) {
	quotes := &fakeQuotes{fail: map[string]bool{}}
	p := NewGoalPlanner(performance.NewAnalyzer(&synthHistory{}),
		WithPlannerCompletion(&fakeCompletion{err: errors.New("503 from model")}),
		WithPlannerQuotes(quotes),
	)
	res, err := p.Plan(context.Background(), planInput(100000, 25000))
	require.NoError(t, err)
	assert.Equal(t, models.PlanUnnarrated, res.Outcome)
	require.NotNil(t, res.Basket)
	assert.NotEmpty(t, res.Basket.Assets)
	assert.Empty(t, res.Narrative)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "503 from model")
}

func TestPlanEmbedsQuoteFailures(t *testing.T) {
	hist := &synthHistory{}
	scout := NewGoalPlanner(performance.NewAnalyzer(hist), WithPlannerCompletion(&fakeCompletion{reply: "ok"}))
	first, err := scout.Plan(context.Background(), planInput(100000, 25000))
	require.NoError(t, err)
	failing := first.Basket.Symbols()[0]

	llm := &fakeCompletion{reply: "ok"}
	p := NewGoalPlanner(performance.NewAnalyzer(hist),
		WithPlannerCompletion(llm),
		WithPlannerQuotes(&fakeQuotes{fail: map[string]bool{failing: true}}),
	)
	res, err := p.Plan(context.Background(), planInput(100000, 25000))
	require.NoError(t, err)
	require.NotEmpty(t, res.Quotes)
	assert.Nil(t, res.Quotes[0].Quote)
	assert.Contains(t, res.Quotes[0].Error, "unknown ticker")
	assert.NotNil(t, res.Quotes[1].Quote)
	assert.True(t, strings.Contains(systemPrompt(llm.last()), "Error fetching data for "+failing))
	assert.Equal(t, models.PlanNarrated, res.Outcome)
}

func TestPlanWithoutQuoteServiceStillNarrates(t *testing.T) {
	res, err := NewGoalPlanner(performance.NewAnalyzer(&synthHistory{}),
		WithPlannerCompletion(&fakeCompletion{reply: "ok"}),
	).Plan(context.Background(), planInput(100000, 25000))
	require.NoError(t, err)
	assert.Equal(t, models.PlanNarrated, res.Outcome)
	for _, q := range res.Quotes {
		assert.Contains(t, q.Error, "not configured")
	}
}

func TestPlanRejectsInvalidInput(t *testing.T) {
	p := NewGoalPlanner(performance.NewAnalyzer(&synthHistory{}))
	_, err := p.Plan(context.Background(), planInput(-1, 10))
	assert.True(t, errors.Is(err, models.ErrInvalidGoal))
}

func TestTenureOnly(t *testing.T) {
	p := NewGoalPlanner(performance.NewAnalyzer(&synthHistory{}))
	tr, err := p.Tenure(models.PlanInput{Target: 1e6, Mode: models.SIP, Amount: 1000, Profile: models.RiskMedium})
	require.NoError(t, err)
	assert.True(t, tr.IsFinite())
}
