package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"NeoFin/internal/domain/models"
	domrepo "NeoFin/internal/domain/repository"
	pkgch "NeoFin/pkg/clickhouse"
	applogger "NeoFin/pkg/logger"
)

const planEventsTable = "plan_events"

const planEventsDDL = `
CREATE TABLE IF NOT EXISTS plan_events (
    id            String,
    at            DateTime64(3, 'UTC'),
    risk_profile  LowCardinality(String),
    mode          LowCardinality(String),
    target_amount Float64,
    contribution  Float64,
    step_up_rate  Float64,
    tenure_status LowCardinality(String),
    tenure_years  Float64,
    symbols       Array(String),
    outcome       LowCardinality(String)
) ENGINE = ReplacingMergeTree
ORDER BY (at, id)`

const planColumns = "id, at, risk_profile, mode, target_amount, contribution, step_up_rate, tenure_status, tenure_years, symbols, outcome"

// insertChunk caps rows per INSERT statement.
const insertChunk = 1000

// ClickHousePlanStore persists plan audit events.
type ClickHousePlanStore struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

func NewClickHousePlanStore(ch *pkgch.Client, l *applogger.Logger) *ClickHousePlanStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &ClickHousePlanStore{ch: ch, db: ch.DB(), l: l}
}

func (s *ClickHousePlanStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, planEventsDDL)
}

func (s *ClickHousePlanStore) StorePlans(ctx context.Context, evs []models.PlanEvent) error {
	for start := 0; start < len(evs); start += insertChunk {
		end := start + insertChunk
		if end > len(evs) {
			end = len(evs)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*11)
		for _, ev := range evs[start:end] {
			if ev.ID == "" {
				continue
			}
			symbols := ev.Symbols
			if symbols == nil {
				symbols = []string{}
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				ev.ID,
				ev.At.UTC(),
				ev.Profile.Short(),
				string(ev.Mode),
				ev.Target,
				ev.Amount,
				ev.StepUpRate,
				string(ev.TenureState),
				ev.TenureYears,
				symbols,
				string(ev.Outcome),
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", planEventsTable, planColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse insert plan_events failed", applogger.Int("rows", len(values)), applogger.Error(err))
			return fmt.Errorf("insert plan events: %w", err)
		}
	}
	return nil
}

func (s *ClickHousePlanStore) RecentPlans(ctx context.Context, limit int) ([]models.PlanEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY at DESC LIMIT ?", planColumns, planEventsTable)
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query plan events: %w", err)
	}
	defer rows.Close()

	var out []models.PlanEvent
	for rows.Next() {
		var (
			ev                          models.PlanEvent
			profile, mode, state, outcm string
		)
		if err := rows.Scan(&ev.ID, &ev.At, &profile, &mode, &ev.Target, &ev.Amount, &ev.StepUpRate,
			&state, &ev.TenureYears, &ev.Symbols, &outcm); err != nil {
			return nil, fmt.Errorf("scan plan event: %w", err)
		}
		ev.Profile, _ = models.ParseRiskProfile(profile)
		ev.Mode = models.ContributionMode(mode)
		ev.TenureState = models.TenureStatus(state)
		ev.Outcome = models.PlanOutcome(outcm)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Close is a no-op; the ClickHouse client is owned by the caller.
func (s *ClickHousePlanStore) Close() error { return nil }

var _ domrepo.PlanStore = (*ClickHousePlanStore)(nil)
