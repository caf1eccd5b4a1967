package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"NeoFin/pkg/util"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development"`
	Server      ServerConfig     `yaml:"server"`
	Log         LogConfig        `yaml:"log"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	LLM         LLMConfig        `yaml:"llm"`
	Search      SearchConfig     `yaml:"search"`
	Market      MarketConfig     `yaml:"market"`
	Embedding   EmbeddingConfig  `yaml:"embedding"`
	RAG         RAGConfig        `yaml:"rag"`
	Session     SessionConfig    `yaml:"session"`
	Redis       RedisConfig      `yaml:"redis"`
	RateLimit   RateLimitConfig  `yaml:"rate_limit"`
	Audit       AuditConfig      `yaml:"audit"`
	Kafka       KafkaConfig      `yaml:"kafka"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"180s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	CORS            bool          `yaml:"cors" default:"true"`
}

type LogConfig struct {
	Level          string `yaml:"level" default:"info"`
	Format         string `yaml:"format" default:"console"`
	Output         string `yaml:"output" default:"stdout"`
	CollectorTopic string `yaml:"collector_topic"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

// LLMConfig selects the chat model. Provider is "groq" or "gemini".
type LLMConfig struct {
	Provider     string        `yaml:"provider" default:"groq"`
	GroqAPIKey   string        `yaml:"groq_api_key"`
	GroqModel    string        `yaml:"groq_model" default:"llama-3.1-8b-instant"`
	GroqBaseURL  string        `yaml:"groq_base_url" default:"https://api.groq.com/openai/v1"`
	GeminiAPIKey string        `yaml:"gemini_api_key"`
	GeminiModel  string        `yaml:"gemini_model" default:"gemini-2.0-flash"`
	Temperature  float64       `yaml:"temperature" default:"0.7"`
	Timeout      time.Duration `yaml:"timeout" default:"60s"`
}

type SearchConfig struct {
	TavilyAPIKey string        `yaml:"tavily_api_key"`
	BaseURL      string        `yaml:"base_url" default:"https://api.tavily.com"`
	MaxResults   int           `yaml:"max_results" default:"3"`
	Timeout      time.Duration `yaml:"timeout" default:"20s"`
}

// MarketConfig selects the price/quote source. Provider is "yahoo" or "eodhd".
type MarketConfig struct {
	Provider      string        `yaml:"provider" default:"yahoo"`
	YahooBaseURL  string        `yaml:"yahoo_base_url" default:"https://query1.finance.yahoo.com"`
	EODHDAPIKey   string        `yaml:"eodhd_api_key"`
	EODHDBaseURL  string        `yaml:"eodhd_base_url" default:"https://eodhd.com/api"`
	LookbackYears int           `yaml:"lookback_years" default:"15"`
	Timeout       time.Duration `yaml:"timeout" default:"20s"`
}

// EmbeddingConfig selects the embedder. Provider is "ollama" (local) or "genai".
type EmbeddingConfig struct {
	Provider   string        `yaml:"provider" default:"ollama"`
	Model      string        `yaml:"model" default:"all-minilm"`
	OllamaURL  string        `yaml:"ollama_url" default:"http://localhost:11434"`
	GenAIModel string        `yaml:"genai_model" default:"text-embedding-004"`
	Timeout    time.Duration `yaml:"timeout" default:"60s"`
}

type RAGConfig struct {
	ChunkSize    int   `yaml:"chunk_size" default:"1000"`
	ChunkOverlap int   `yaml:"chunk_overlap" default:"200"`
	TopK         int   `yaml:"top_k" default:"4"`
	MaxUploadMB  int64 `yaml:"max_upload_mb" default:"32"`
}

// SessionConfig chooses where conversation logs live: memory, redis or layered.
type SessionConfig struct {
	Store   string        `yaml:"store" default:"memory"`
	TTL     time.Duration `yaml:"ttl" default:"24h"`
	LockTTL time.Duration `yaml:"lock_ttl" default:"3m"`
	// MemoryMaxSize bounds the in-process cache, or the L1 of the layered store.
	MemoryMaxSize   int           `yaml:"memory_max_size" default:"10000"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" default:"1m"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix" default:"neofin"`
	PoolSize int    `yaml:"pool_size" default:"10"`
	MinIdle  int    `yaml:"min_idle" default:"2"`
}

type RateLimitConfig struct {
	PlanPerMinute float64 `yaml:"plan_per_minute" default:"6"`
	PlanBurst     int     `yaml:"plan_burst" default:"2"`
}

// AuditConfig routes plan events: "" disables, "kafka" publishes, "clickhouse" inserts.
type AuditConfig struct {
	Backend string `yaml:"backend"`
}

type KafkaConfig struct {
	Brokers      []string            `yaml:"brokers"`
	Topic        string              `yaml:"topic" default:"neofin.plans"`
	RequiredAcks int                 `yaml:"required_acks" default:"-1"`
	Compression  string              `yaml:"compression" default:"gzip"`
	Producer     KafkaProducerConfig `yaml:"producer"`
	Consumer     KafkaConsumerConfig `yaml:"consumer"`
}

type KafkaProducerConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" default:"3"`
	BatchSize    int           `yaml:"batch_size" default:"50"`
	BatchTimeout time.Duration `yaml:"batch_timeout" default:"200ms"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	Async        bool          `yaml:"async"`
}

// KafkaConsumerConfig drives the in-process plan-event sink into ClickHouse.
type KafkaConsumerConfig struct {
	Enabled    bool          `yaml:"enabled"`
	GroupID    string        `yaml:"group_id" default:"neofin-plan-audit"`
	Workers    int           `yaml:"workers" default:"1"`
	BufferSize int           `yaml:"buffer_size" default:"16"`
	RetryMax   int           `yaml:"retry_max" default:"3"`
	BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
	BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
	DLQTopic   string        `yaml:"dlq_topic"`
}

type ClickHouseConfig struct {
	Host        string        `yaml:"host" default:"localhost"`
	Port        int           `yaml:"port" default:"9000"`
	Database    string        `yaml:"database" default:"default"`
	User        string        `yaml:"user" default:"default"`
	Password    string        `yaml:"password"`
	UseHTTP     bool          `yaml:"use_http"`
	AsyncInsert bool          `yaml:"async_insert"`
	DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads a YAML file on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	c := Default()
	if err := c.readFile(path); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv is Load with environment overrides applied before validation.
// An empty path uses defaults only. API keys are normally supplied this way.
func LoadWithEnv(path string) (*Config, error) {
	c := Default()
	if path != "" {
		if err := c.readFile(path); err != nil {
			return nil, err
		}
	}
	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) readFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from the given lookup (os.Getenv in production).
func (c *Config) ApplyEnv(getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str("GROQ_API_KEY", &c.LLM.GroqAPIKey)
	str("GROQ_MODEL_NAME", &c.LLM.GroqModel)
	str("GOOGLE_API_KEY", &c.LLM.GeminiAPIKey)
	str("LLM_PROVIDER", &c.LLM.Provider)
	str("TAVILY_API_KEY", &c.Search.TavilyAPIKey)
	str("EODHD_API_KEY", &c.Market.EODHDAPIKey)
	str("MARKET_PROVIDER", &c.Market.Provider)
	str("EMBEDDING_MODEL_NAME", &c.Embedding.Model)
	str("EMBEDDING_PROVIDER", &c.Embedding.Provider)
	str("OLLAMA_URL", &c.Embedding.OllamaURL)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("SESSION_STORE", &c.Session.Store)
	str("AUDIT_BACKEND", &c.Audit.Backend)
	str("LOG_LEVEL", &c.Log.Level)
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitCSV(v)
	}
	c.Server.Port = util.ParseIntDefault(getenv("PORT"), c.Server.Port)
	c.Kafka.Consumer.Enabled = util.ParseBoolDefault(getenv("KAFKA_CONSUMER_ENABLED"), c.Kafka.Consumer.Enabled)
}

// Validate checks structural settings. Missing API keys are not errors:
// they switch features off (see Features).
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.LLM.Provider {
	case "groq", "gemini":
	default:
		return fmt.Errorf("llm.provider must be 'groq' or 'gemini', got %q", c.LLM.Provider)
	}
	switch c.Market.Provider {
	case "yahoo", "eodhd":
	default:
		return fmt.Errorf("market.provider must be 'yahoo' or 'eodhd', got %q", c.Market.Provider)
	}
	if c.Market.Provider == "eodhd" && c.Market.EODHDAPIKey == "" {
		return fmt.Errorf("market.provider 'eodhd' needs market.eodhd_api_key (or EODHD_API_KEY)")
	}
	switch c.Embedding.Provider {
	case "ollama", "genai":
	default:
		return fmt.Errorf("embedding.provider must be 'ollama' or 'genai', got %q", c.Embedding.Provider)
	}
	switch c.Session.Store {
	case "memory", "redis", "layered":
	default:
		return fmt.Errorf("session.store must be memory, redis or layered, got %q", c.Session.Store)
	}
	switch c.Audit.Backend {
	case "", "clickhouse":
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("audit.backend 'kafka' needs kafka.brokers")
		}
	default:
		return fmt.Errorf("audit.backend must be empty, 'kafka' or 'clickhouse', got %q", c.Audit.Backend)
	}
	if c.RAG.ChunkSize <= 0 || c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("rag: need chunk_size > chunk_overlap >= 0")
	}
	if c.Market.LookbackYears <= 0 {
		return fmt.Errorf("market.lookback_years must be positive")
	}
	return nil
}

// Features reports which user-facing features the configuration enables.
type Features struct {
	Chat          bool `json:"chat"`
	Planning      bool `json:"planning"`
	WebSearch     bool `json:"web_search"`
	KnowledgeBase bool `json:"knowledge_base"`
}

func (c *Config) Features() Features {
	llm := c.LLMConfigured()
	kb := c.Embedding.Provider == "ollama" || c.LLM.GeminiAPIKey != ""
	return Features{
		Chat:          llm,
		Planning:      llm,
		WebSearch:     c.Search.TavilyAPIKey != "",
		KnowledgeBase: kb,
	}
}

// LLMConfigured reports whether the selected chat provider has a key.
func (c *Config) LLMConfigured() bool {
	if c.LLM.Provider == "gemini" {
		return c.LLM.GeminiAPIKey != ""
	}
	return c.LLM.GroqAPIKey != ""
}
