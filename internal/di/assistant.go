package di

import (
	"errors"

	"NeoFin/internal/session"
	"NeoFin/internal/usecase"
	"NeoFin/pkg/cache"
	"NeoFin/pkg/config"
	pkgch "NeoFin/pkg/clickhouse"
	pkgkafka "NeoFin/pkg/kafka"

	"github.com/google/wire"
)

// coreSet builds the use cases shared by the server and the CLI.
var coreSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideCache,
	ProvideKafkaProducer,
	ProvideClickHouseClient,
	ProvideCompletion,
	ProvideSearch,
	ProvideMarketData,
	ProvideEmbedder,
	ProvideSessionStore,
	ProvidePlanStore,
	ProvideSessionManager,
	ProvidePlanRecorder,
	ProvideAnalyzer,
	ProvidePlanner,
	ProvideChatAssistant,
	ProvideKnowledgeBase,
)

// Assistant is what an interactive front-end drives, without the HTTP
// server or the audit consumer.
type Assistant struct {
	Planner   *usecase.GoalPlanner
	Chat      *usecase.ChatAssistant
	Knowledge *usecase.KnowledgeBase
	Sessions  *session.Manager
	Features  config.Features

	closers []func() error
}

func ProvideAssistant(
	cfg *config.Config,
	planner *usecase.GoalPlanner,
	chat *usecase.ChatAssistant,
	kb *usecase.KnowledgeBase,
	sessions *session.Manager,
	recorder *usecase.PlanRecorder,
	producer *pkgkafka.Producer,
	ch *pkgch.Client,
	c cache.Service,
) *Assistant {
	a := &Assistant{
		Planner:   planner,
		Chat:      chat,
		Knowledge: kb,
		Sessions:  sessions,
		Features:  cfg.Features(),
	}
	if recorder != nil {
		a.closers = append(a.closers, recorder.Close)
	} else if producer != nil {
		a.closers = append(a.closers, producer.Close)
	}
	if ch != nil {
		a.closers = append(a.closers, ch.Close)
	}
	a.closers = append(a.closers, c.Close)
	return a
}

// Close releases every resource and reports all failures.
func (a *Assistant) Close() error {
	var errs []error
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
