package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"NeoFin/internal/domain/repository"
	domsvc "NeoFin/internal/domain/service"
	"NeoFin/internal/handler/api"
	internalrepo "NeoFin/internal/repository"
	"NeoFin/internal/service/ratelimit"
	"NeoFin/internal/services/performance"
	"NeoFin/internal/services/providers"
	"NeoFin/internal/services/rag"
	"NeoFin/internal/session"
	"NeoFin/internal/usecase"
	"NeoFin/pkg/cache"
	pkgch "NeoFin/pkg/clickhouse"
	"NeoFin/pkg/config"
	xhttp "NeoFin/pkg/http"
	pkgkafka "NeoFin/pkg/kafka"
	applogger "NeoFin/pkg/logger"
	"NeoFin/pkg/metrics"
	"NeoFin/pkg/server"

	"github.com/segmentio/kafka-go"
)

// Optional collaborators are returned as untyped nil so the use cases can
// test them against nil.

func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvideCache builds the store behind session logs and locks.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, error) {
	if cfg.Session.Store == "memory" {
		return cache.NewMemoryCache(
			cache.WithMemoryDefaultTTL(cfg.Session.TTL),
			cache.WithMemoryMaxSize(cfg.Session.MemoryMaxSize),
			cache.WithMemoryCleanup(cfg.Session.CleanupInterval),
		), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdle),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("session store ready", applogger.String("store", cfg.Session.Store), applogger.String("addr", cfg.Redis.Addr))
	if cfg.Session.Store == "layered" {
		return cache.NewLayeredCache(rc,
			cache.WithLayeredMemoryTTL(time.Minute),
			cache.WithLayeredMemorySize(cfg.Session.MemoryMaxSize),
		), nil
	}
	return rc, nil
}

func ProvideSessionStore(c cache.Service) repository.SessionStore {
	return internalrepo.NewCacheSessionStore(c)
}

func ProvideSessionManager(store repository.SessionStore, cfg *config.Config, l *applogger.Logger) *session.Manager {
	return session.NewManager(store,
		session.WithTTL(cfg.Session.TTL),
		session.WithLockTTL(cfg.Session.LockTTL),
		session.WithLogger(l),
	)
}

// ProvideCompletion returns nil when no chat model is configured.
func ProvideCompletion(cfg *config.Config, l *applogger.Logger) (domsvc.CompletionService, error) {
	c, err := providers.NewCompleter(context.Background(), cfg.LLM)
	if errors.Is(err, domsvc.ErrNotConfigured) {
		l.Warn("chat model not configured: chat and planning are disabled", applogger.String("provider", cfg.LLM.Provider))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("completion provider: %w", err)
	}
	return c, nil
}

// ProvideSearch returns nil without a Tavily key.
func ProvideSearch(cfg *config.Config, l *applogger.Logger) domsvc.SearchService {
	s, err := providers.NewTavilySearcher(cfg.Search)
	if err != nil {
		l.Info("web search disabled", applogger.Error(err))
		return nil
	}
	return s
}

func ProvideMarketData(cfg *config.Config) (providers.MarketData, error) {
	m, err := providers.NewMarketData(cfg.Market)
	if err != nil {
		return nil, fmt.Errorf("market provider: %w", err)
	}
	return m, nil
}

// ProvideEmbedder returns nil when the selected backend lacks credentials.
func ProvideEmbedder(cfg *config.Config, l *applogger.Logger) (domsvc.Embedder, error) {
	e, err := providers.NewEmbedder(context.Background(), cfg.Embedding, cfg.LLM.GeminiAPIKey)
	if errors.Is(err, domsvc.ErrNotConfigured) {
		l.Warn("embeddings not configured: knowledge base is disabled", applogger.String("provider", cfg.Embedding.Provider))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	return e, nil
}

// ProvideKafkaProducer is only built when something publishes: the plan
// audit stream or the error-log collector.
func ProvideKafkaProducer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 || (cfg.Audit.Backend != "kafka" && cfg.Log.CollectorTopic == "") {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	if cfg.Log.CollectorTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Log.CollectorTopic,
			Publisher:      producer,
		})
	}
	return producer, nil
}

// ProvideClickHouseClient connects only when plan events end up in ClickHouse.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	needed := cfg.Audit.Backend == "clickhouse" || (cfg.Audit.Backend == "kafka" && cfg.Kafka.Consumer.Enabled)
	if !needed {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

func ProvidePlanStore(ch *pkgch.Client, l *applogger.Logger) (repository.PlanStore, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHousePlanStore(ch, l)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("plan store schema: %w", err)
	}
	return store, nil
}

// ProvidePlanRecorder returns nil when auditing is off.
func ProvidePlanRecorder(cfg *config.Config, producer *pkgkafka.Producer, store repository.PlanStore, l *applogger.Logger, m repository.Metrics) *usecase.PlanRecorder {
	switch {
	case cfg.Audit.Backend == "kafka" && producer != nil:
		return usecase.NewStreamRecorder(internalrepo.NewKafkaPlanPublisher(producer, cfg.Kafka.Topic), l, m)
	case cfg.Audit.Backend == "clickhouse" && store != nil:
		return usecase.NewStoreRecorder(store, l, m)
	default:
		return nil
	}
}

func ProvideAnalyzer(market providers.MarketData, l *applogger.Logger, m repository.Metrics) *performance.Analyzer {
	return performance.NewAnalyzer(market, performance.WithLogger(l), performance.WithMetrics(m))
}

func ProvidePlanner(
	cfg *config.Config,
	analyzer *performance.Analyzer,
	market providers.MarketData,
	completion domsvc.CompletionService,
	search domsvc.SearchService,
	recorder *usecase.PlanRecorder,
	l *applogger.Logger,
	m repository.Metrics,
) *usecase.GoalPlanner {
	opts := []usecase.PlannerOption{
		usecase.WithPlannerCompletion(completion),
		usecase.WithPlannerSearch(search),
		usecase.WithPlannerQuotes(market),
		usecase.WithPlannerLookback(cfg.Market.LookbackYears),
		usecase.WithPlannerLogger(l),
		usecase.WithPlannerMetrics(m),
	}
	if recorder != nil {
		opts = append(opts, usecase.WithPlannerRecorder(recorder))
	}
	return usecase.NewGoalPlanner(analyzer, opts...)
}

func ProvideChatAssistant(
	cfg *config.Config,
	completion domsvc.CompletionService,
	search domsvc.SearchService,
	market providers.MarketData,
	sessions *session.Manager,
	l *applogger.Logger,
	m repository.Metrics,
) *usecase.ChatAssistant {
	return usecase.NewChatAssistant(completion, sessions,
		usecase.WithChatSearch(search),
		usecase.WithChatQuotes(market),
		usecase.WithChatTopK(cfg.RAG.TopK),
		usecase.WithChatLogger(l),
		usecase.WithChatMetrics(m),
	)
}

func ProvideKnowledgeBase(cfg *config.Config, embedder domsvc.Embedder, sessions *session.Manager, l *applogger.Logger) *usecase.KnowledgeBase {
	splitter := rag.NewSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	return usecase.NewKnowledgeBase(rag.NewPDFExtractor(), embedder, splitter, sessions, l)
}

// ProvideKafkaConsumer sinks the plan stream into ClickHouse when enabled.
func ProvideKafkaConsumer(cfg *config.Config, store repository.PlanStore, l *applogger.Logger, m repository.Metrics) (*pkgkafka.Consumer, error) {
	c := cfg.Kafka.Consumer
	if !c.Enabled || cfg.Audit.Backend != "kafka" || store == nil {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(c.GroupID),
		pkgkafka.WithConsumerWorkers(c.Workers),
		pkgkafka.WithConsumerBufferSize(c.BufferSize),
		pkgkafka.WithConsumerRetry(c.RetryMax, c.BackoffMin, c.BackoffMax),
		pkgkafka.WithConsumerDLQ(c.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.RegisterHandler(usecase.NewPlanEventsHandler(cfg.Kafka.Topic, store, m))
	consumer.OnHandled(func(topic string, _ kafka.Message, elapsed time.Duration, err error) {
		m.RecordLatency("consume_"+topic, elapsed.Seconds())
		if err != nil {
			m.RecordError("consume_" + topic)
		}
	})
	return consumer, nil
}

func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.PlanPerMinute, cfg.RateLimit.PlanBurst)
}

// ProvideHTTPHandler mounts every route group.
func ProvideHTTPHandler(
	cfg *config.Config,
	l *applogger.Logger,
	planner *usecase.GoalPlanner,
	limiter *ratelimit.Limiter,
	sessions *session.Manager,
	chat *usecase.ChatAssistant,
	kb *usecase.KnowledgeBase,
) xhttp.Handler {
	return xhttp.Handlers{
		api.NewPlannerHandler(l, planner, limiter, cfg.Features()),
		api.NewSessionsHandler(l, sessions, chat, kb, cfg.RAG.MaxUploadMB),
		api.NewChatSocketHandler(l, sessions, chat),
	}
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	consumer *pkgkafka.Consumer,
	recorder *usecase.PlanRecorder,
	producer *pkgkafka.Producer,
	ch *pkgch.Client,
	c cache.Service,
) *server.App {
	app := server.New(cfg, l, handler, consumer)
	// stop shipping error logs before the producer goes away
	app.OnClose("log collector", func() error {
		l.RemoveCollector()
		return nil
	})
	if recorder != nil {
		app.OnClose("plan recorder", recorder.Close)
	} else if producer != nil {
		app.OnClose("kafka producer", producer.Close)
	}
	if ch != nil {
		app.OnClose("clickhouse", ch.Close)
	}
	app.OnClose("session cache", c.Close)
	return app
}
