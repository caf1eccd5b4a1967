// Package performance turns price history into annualised return and risk figures.
package performance

import (
	"context"
	"time"

	"NeoFin/internal/domain/models"
	"NeoFin/internal/domain/repository"
	"NeoFin/internal/domain/service"
	"NeoFin/internal/services/features"
	applogger "NeoFin/pkg/logger"
	"NeoFin/pkg/util"
)

// DefaultLookbackYears is the history window used for planning.
const DefaultLookbackYears = 15

type Option func(*Analyzer)

func WithLogger(l *applogger.Logger) Option {
	return func(a *Analyzer) { a.log = l }
}

func WithMetrics(m repository.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// WithClock fixes "now" (tests).
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// Analyzer computes AssetRecords for a list of symbols, one fetch at a time.
type Analyzer struct {
	prices  service.PriceHistoryService
	log     *applogger.Logger
	metrics repository.Metrics
	now     func() time.Time
}

func NewAnalyzer(prices service.PriceHistoryService, opts ...Option) *Analyzer {
	a := &Analyzer{
		prices:  prices,
		log:     applogger.Nop(),
		metrics: repository.NopMetrics{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns one record per symbol that has usable history, in input order.
// Symbols whose fetch fails, whose series is empty, or whose statistics are not
// finite are left out. An empty result means no usable data at all; the only
// error returned is cancellation of ctx.
func (a *Analyzer) Analyze(ctx context.Context, symbols []string, lookbackYears int) ([]models.AssetRecord, error) {
	if lookbackYears <= 0 {
		lookbackYears = DefaultLookbackYears
	}
	to := a.now()
	from := util.LookbackStart(to, lookbackYears)
	start := time.Now()
	defer func() { a.metrics.RecordLatency("analyze_universe", time.Since(start).Seconds()) }()

	out := make([]models.AssetRecord, 0, len(symbols))
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		series, err := a.prices.History(ctx, sym, from, to)
		a.metrics.RecordCollaboratorCall("price_history", err)
		if err != nil {
			a.log.Warn("price history unavailable", applogger.String("symbol", sym), applogger.Error(err))
			continue
		}
		rec, ok := Summarize(sym, series.Closes)
		if !ok {
			a.log.Debug("symbol skipped: no usable history", applogger.String("symbol", sym), applogger.Int("points", series.Len()))
			continue
		}
		out = append(out, rec)
	}

	a.log.Info("universe analyzed",
		applogger.Int("requested", len(symbols)),
		applogger.Int("usable", len(out)),
		applogger.Int("lookback_years", lookbackYears),
	)
	return out, nil
}

// Summarize computes the annualised record for one close series.
// ok is false when the series yields no returns or non-finite statistics.
func Summarize(symbol string, closes []float64) (rec models.AssetRecord, ok bool) {
	returns := features.ComputeLogReturns(closes)
	if len(returns) == 0 {
		return rec, false
	}
	ret, vol := features.AnnualizedStats(returns)
	sharpe := 0.0
	if vol != 0 {
		sharpe = ret / vol
	}
	if !features.IsFinite(ret, vol, sharpe) {
		return rec, false
	}
	return models.AssetRecord{
		Symbol:        symbol,
		ReturnPct:     features.Round(ret*100, 2),
		VolatilityPct: features.Round(vol*100, 2),
		Sharpe:        features.Round(sharpe, 2),
	}, true
}
