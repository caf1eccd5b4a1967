package providers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NeoFin/internal/domain/models"
	domsvc "NeoFin/internal/domain/service"
	"NeoFin/pkg/config"
	xhttp "NeoFin/pkg/http"
)

func TestGroqComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gk", r.Header.Get("Authorization"))
		var req groqRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "m1", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  hello  "}}]}`))
	}))
	defer srv.Close()

	g, err := NewGroqCompleter(config.LLMConfig{GroqAPIKey: "gk", GroqModel: "m1", GroqBaseURL: srv.URL})
	require.NoError(t, err)
	out, err := g.Complete(context.Background(), []models.Message{
		{Role: models.RoleSystem, Content: "be nice"},
		{Role: models.RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestGroqRequiresKey(t *testing.T) {
	_, err := NewGroqCompleter(config.LLMConfig{})
	assert.True(t, errors.Is(err, domsvc.ErrNotConfigured))
}

func TestGroqUpstreamErrorIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	g, err := NewGroqCompleter(config.LLMConfig{GroqAPIKey: "k", GroqBaseURL: srv.URL})
	require.NoError(t, err)
	_, err = g.Complete(context.Background(), []models.Message{{Role: models.RoleUser, Content: "x"}})
	var se *xhttp.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
}

func TestTavilySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		var req tavilyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 3, req.MaxResults)
		assert.Equal(t, "tsla news", req.Query)
		_, _ = w.Write([]byte(`{"results":[{"title":"A","url":"http://a","content":"alpha"},{"title":"B","url":"http://b","content":"beta"}]}`))
	}))
	defer srv.Close()

	s, err := NewTavilySearcher(config.SearchConfig{TavilyAPIKey: "tk", BaseURL: srv.URL})
	require.NoError(t, err)
	out, err := s.Search(context.Background(), "tsla news")
	require.NoError(t, err)
	assert.Equal(t, "[1] A (http://a)\nalpha\n\n[2] B (http://b)\nbeta", out)
}

func TestYahooHistoryMapsNullsToNaN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/SPY", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"SPY"},
			"timestamp":[1700000000,1700086400,1700172800],
			"indicators":{"quote":[{"close":[1,2,3]}],"adjclose":[{"adjclose":[10.5,null,11]}]}}],"error":null}}`))
	}))
	defer srv.Close()

	y := NewYahooMarket(config.MarketConfig{YahooBaseURL: srv.URL})
	s, err := y.History(context.Background(), "SPY", time.Unix(0, 0), time.Now())
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, 10.5, s.Closes[0])
	assert.True(t, math.IsNaN(s.Closes[1]))
	assert.Equal(t, 11.0, s.Closes[2])
	assert.Equal(t, int64(1700000000), s.Dates[0].Unix())
}

func TestYahooChartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	y := NewYahooMarket(config.MarketConfig{YahooBaseURL: srv.URL})
	_, err := y.Quote(context.Background(), "zzzz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

const yahooAAPLChart = `{"chart":{"result":[{"meta":{"symbol":"AAPL","longName":"Apple Inc.",
	"regularMarketPrice":190.5,"regularMarketDayHigh":191,"regularMarketDayLow":188,
	"fiftyTwoWeekHigh":200,"fiftyTwoWeekLow":150}}],"error":null}}`

func TestYahooQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v8/finance/chart/AAPL":
			_, _ = w.Write([]byte(yahooAAPLChart))
		case "/v1/finance/search":
			assert.Equal(t, "AAPL", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(`{"quotes":[
				{"symbol":"AAPL.MX","longname":"Apple Inc.","exchDisp":"Mexico","typeDisp":"Equity"},
				{"symbol":"AAPL","longname":"Apple Inc.","exchDisp":"NASDAQ","typeDisp":"Equity",
				 "sectorDisp":"Technology","industryDisp":"Consumer Electronics"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	q, err := NewYahooMarket(config.MarketConfig{YahooBaseURL: srv.URL}).Quote(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, "Apple Inc.", q.CompanyName)
	assert.Equal(t, 190.5, q.CurrentPrice)
	assert.Equal(t, 200.0, q.FiftyTwoWkHigh)
	assert.Equal(t, "Apple Inc. (AAPL), Equity listed on NASDAQ, Technology sector (Consumer Electronics).", q.Summary)
}

func TestYahooQuoteWithoutProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/finance/search" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(yahooAAPLChart))
	}))
	defer srv.Close()

	q, err := NewYahooMarket(config.MarketConfig{YahooBaseURL: srv.URL}).Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 190.5, q.CurrentPrice)
	assert.Empty(t, q.Summary)
	assert.Zero(t, q.MarketCap)
}

func TestEODHDTicker(t *testing.T) {
	assert.Equal(t, "SPY.US", eodhdTicker("spy"))
	assert.Equal(t, "BTC-USD.CC", eodhdTicker("BTC-USD"))
	assert.Equal(t, "VOD.LSE", eodhdTicker("VOD.LSE"))
}

func TestEODHDHistoryUsesAdjustedClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eod/QQQ.US", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("api_token"))
		assert.Equal(t, "2020-01-01", r.URL.Query().Get("from"))
		_, _ = w.Write([]byte(`[{"date":"2020-01-02","close":100,"adjusted_close":95.5},{"date":"2020-01-03","close":101,"adjusted_close":0}]`))
	}))
	defer srv.Close()

	m, err := NewEODHDMarket(config.MarketConfig{EODHDAPIKey: "key", EODHDBaseURL: srv.URL})
	require.NoError(t, err)
	s, err := m.History(context.Background(), "QQQ", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []float64{95.5, 101}, s.Closes)
}

func TestEODHDQuoteToleratesMissingFundamentals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/real-time/MSFT.US":
			_, _ = w.Write([]byte(`{"code":"MSFT.US","close":"NA","previousClose":410.2,"high":"NA","low":400}`))
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer srv.Close()

	m, err := NewEODHDMarket(config.MarketConfig{EODHDAPIKey: "key", EODHDBaseURL: srv.URL})
	require.NoError(t, err)
	q, err := m.Quote(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, 410.2, q.CurrentPrice)
	assert.Equal(t, 400.0, q.DayLow)
	assert.Equal(t, "MSFT", q.CompanyName)
}

func TestOllamaEmbedOnePromptPerCall(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-minilm", req.Model)
		_, _ = w.Write([]byte(`{"embedding":[0.1,0.2]}`))
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL, "all-minilm")
	vecs, err := e.Embed(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, vecs, 3)
	assert.Equal(t, 3, calls)
}

func TestSplitSystem(t *testing.T) {
	sys, contents := splitSystem([]models.Message{
		{Role: models.RoleSystem, Content: "s1"},
		{Role: models.RoleUser, Content: "u"},
		{Role: models.RoleAssistant, Content: "a"},
		{Role: models.RoleSystem, Content: "s2"},
	})
	assert.Equal(t, "s1\n\ns2", sys)
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
}

func TestFactoryRejectsUnknownProviders(t *testing.T) {
	_, err := NewCompleter(context.Background(), config.LLMConfig{Provider: "bogus"})
	assert.Error(t, err)
	_, err = NewMarketData(config.MarketConfig{Provider: "bogus"})
	assert.Error(t, err)
	_, err = NewEmbedder(context.Background(), config.EmbeddingConfig{Provider: "genai"}, "")
	assert.True(t, errors.Is(err, domsvc.ErrNotConfigured))
}
