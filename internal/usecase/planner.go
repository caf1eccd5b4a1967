package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"NeoFin/internal/domain/models"
	domrepo "NeoFin/internal/domain/repository"
	domsvc "NeoFin/internal/domain/service"
	"NeoFin/internal/services/basket"
	"NeoFin/internal/services/goal"
	"NeoFin/internal/services/performance"
	applogger "NeoFin/pkg/logger"
)

var (
	ErrNoMarketData     = errors.New("could not retrieve historical market data to build your plan")
	ErrNoEligibleAssets = errors.New("no assets in the universe match this risk profile")
)

// PlannerOption configures a GoalPlanner.
type PlannerOption func(*GoalPlanner)

func WithPlannerCompletion(c domsvc.CompletionService) PlannerOption {
	return func(p *GoalPlanner) { p.completion = c }
}

func WithPlannerSearch(s domsvc.SearchService) PlannerOption {
	return func(p *GoalPlanner) { p.enrich.search = s }
}

func WithPlannerQuotes(q domsvc.QuoteService) PlannerOption {
	return func(p *GoalPlanner) { p.enrich.quotes = q }
}

func WithPlannerRecorder(r *PlanRecorder) PlannerOption {
	return func(p *GoalPlanner) { p.recorder = r }
}

func WithPlannerLookback(years int) PlannerOption {
	return func(p *GoalPlanner) {
		if years > 0 {
			p.lookbackYears = years
		}
	}
}

func WithPlannerLogger(l *applogger.Logger) PlannerOption {
	return func(p *GoalPlanner) {
		if l != nil {
			p.log = l
			p.enrich.log = l
		}
	}
}

func WithPlannerMetrics(m domrepo.Metrics) PlannerOption {
	return func(p *GoalPlanner) {
		if m != nil {
			p.metrics = m
			p.enrich.metrics = m
		}
	}
}

// GoalPlanner turns a savings goal into a tenure estimate and, when the goal
// is reachable, a data-driven basket narrated by the language model.
type GoalPlanner struct {
	analyzer      *performance.Analyzer
	completion    domsvc.CompletionService
	enrich        enricher
	recorder      *PlanRecorder
	lookbackYears int
	log           *applogger.Logger
	metrics       domrepo.Metrics
	now           func() time.Time
}

func NewGoalPlanner(analyzer *performance.Analyzer, opts ...PlannerOption) *GoalPlanner {
	p := &GoalPlanner{
		analyzer:      analyzer,
		lookbackYears: performance.DefaultLookbackYears,
		log:           applogger.Nop(),
		metrics:       domrepo.NopMetrics{},
		now:           time.Now,
	}
	p.enrich = enricher{log: p.log, metrics: p.metrics}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tenure only runs the estimator; it never calls a collaborator.
func (p *GoalPlanner) Tenure(in models.PlanInput) (models.TenureResult, error) {
	g := in.Goal()
	if err := g.Validate(); err != nil {
		return models.TenureResult{}, err
	}
	return goal.EstimateTenure(g), nil
}

// Plan runs the full pipeline. The returned result is always populated with
// the tenure; the error is one of ErrNoMarketData, ErrNoEligibleAssets,
// ErrNotConfigured, a validation error or ctx's error. A failed narration is
// not an error: the basket is kept and the outcome says so.
func (p *GoalPlanner) Plan(ctx context.Context, in models.PlanInput) (models.PlanResult, error) {
	g := in.Goal()
	res := models.PlanResult{Goal: g, Profile: in.Profile}
	if err := g.Validate(); err != nil {
		return res, err
	}
	res.Tenure = goal.EstimateTenure(g)
	res.Message = res.Tenure.Message()

	if !res.Tenure.IsFinite() {
		res.Outcome = models.PlanTenureOnly
		p.finish(ctx, in, &res)
		return res, nil
	}
	if p.completion == nil {
		res.Outcome = models.PlanTenureOnly
		return res, fmt.Errorf("planning: %w", domsvc.ErrNotConfigured)
	}

	records, err := p.analyzer.Analyze(ctx, basket.UniverseSymbols(), p.lookbackYears)
	if err != nil {
		return res, err
	}
	if len(records) == 0 {
		res.Outcome = models.PlanNoMarketData
		p.finish(ctx, in, &res)
		return res, ErrNoMarketData
	}

	b := basket.Select(records, in.Profile)
	if len(b.Assets) == 0 {
		res.Outcome = models.PlanNoEligibleAssets
		p.finish(ctx, in, &res)
		return res, ErrNoEligibleAssets
	}
	res.Basket = &b

	for _, sym := range b.Symbols() {
		note := models.QuoteNote{Symbol: sym}
		if q := p.enrich.quote(ctx, sym); q.OK() {
			quote := q.Value
			note.Quote = &quote
		} else {
			note.Error = q.Notice("live data for " + sym)
		}
		res.Quotes = append(res.Quotes, note)
	}
	if p.enrich.search != nil {
		if news := p.enrich.news(ctx, b.QueryHint); news.OK() {
			res.News = news.Value
		} else {
			res.Warnings = append(res.Warnings, news.Notice("Market news search"))
		}
	}

	messages := []models.Message{
		{Role: models.RoleSystem, Content: plannerSystemPrompt(in.Profile, p.lookbackYears) + "\n\n" + planContext(b, res.Quotes, res.News, p.lookbackYears)},
		{Role: models.RoleUser, Content: planUserMessage(in, res.Tenure)},
	}
	narrative, err := p.completion.Complete(ctx, messages)
	p.metrics.RecordCollaboratorCall("completion", err)
	if err != nil {
		p.log.Warn("plan narration failed", applogger.String("profile", in.Profile.Short()), applogger.Error(err))
		res.Outcome = models.PlanUnnarrated
		res.Warnings = append(res.Warnings, "An error occurred while generating the recommendation: "+err.Error())
	} else {
		res.Outcome = models.PlanNarrated
		res.Narrative = narrative
	}
	p.finish(ctx, in, &res)
	return res, nil
}

func (p *GoalPlanner) finish(ctx context.Context, in models.PlanInput, res *models.PlanResult) {
	p.metrics.RecordPlan(in.Profile.Short(), string(res.Outcome))
	p.log.Info("plan computed",
		applogger.String("profile", in.Profile.Short()),
		applogger.String("mode", string(in.Mode)),
		applogger.String("tenure", res.Tenure.String()),
		applogger.String("outcome", string(res.Outcome)),
	)
	if p.recorder == nil {
		return
	}
	ev := models.PlanEvent{
		ID:          uuid.NewString(),
		At:          p.now().UTC(),
		Profile:     in.Profile,
		Mode:        in.Mode,
		Target:      in.Target,
		Amount:      in.Amount,
		StepUpRate:  res.Goal.StepUpRate,
		TenureState: res.Tenure.Status,
		TenureYears: res.Tenure.Years,
		Outcome:     res.Outcome,
	}
	if res.Basket != nil {
		ev.Symbols = res.Basket.Symbols()
	}
	p.recorder.Record(ctx, ev)
}
