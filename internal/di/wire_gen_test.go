package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NeoFin/pkg/cache"
	"NeoFin/pkg/config"
	applogger "NeoFin/pkg/logger"
)

func TestUnconfiguredCollaboratorsAreUntypedNil(t *testing.T) {
	cfg := config.Default()
	l := applogger.Nop()

	completion, err := ProvideCompletion(cfg, l)
	require.NoError(t, err)
	assert.True(t, completion == nil)

	assert.True(t, ProvideSearch(cfg, l) == nil)

	cfg.Embedding.Provider = "genai"
	embedder, err := ProvideEmbedder(cfg, l)
	require.NoError(t, err)
	assert.True(t, embedder == nil)
}

func TestMemorySessionCacheFollowsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Session.MemoryMaxSize = 1
	c, err := ProvideCache(cfg, applogger.Nop())
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", "1", 0))
	require.NoError(t, c.Set(ctx, "b", "2", 0))
	var s string
	assert.ErrorIs(t, c.Get(ctx, "a", &s), cache.ErrCacheMiss)
	require.NoError(t, c.Get(ctx, "b", &s))
}

func TestOptionalInfrastructureStaysOff(t *testing.T) {
	cfg := config.Default()
	l := applogger.Nop()

	producer, err := ProvideKafkaProducer(cfg, l)
	require.NoError(t, err)
	assert.Nil(t, producer)

	ch, err := ProvideClickHouseClient(cfg)
	require.NoError(t, err)
	assert.Nil(t, ch)

	store, err := ProvidePlanStore(ch, l)
	require.NoError(t, err)
	assert.True(t, store == nil)
	assert.Nil(t, ProvidePlanRecorder(cfg, producer, store, l, nil))
}

func TestInitializeAppWithDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "error"

	app, err := InitializeApp(cfg)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.HTTP().Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"knowledge_base":true`)

	req := httptest.NewRequest(http.MethodPost, "/api/tenure", strings.NewReader(`{"target_amount":100000,"amount":25000}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	app.HTTP().Echo().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
