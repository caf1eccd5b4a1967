package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NeoFin/internal/domain/models"
	"NeoFin/internal/repository"
	"NeoFin/internal/service/ratelimit"
	"NeoFin/internal/services/performance"
	"NeoFin/internal/services/rag"
	"NeoFin/internal/session"
	"NeoFin/internal/usecase"
	"NeoFin/pkg/cache"
	"NeoFin/pkg/config"
	xhttp "NeoFin/pkg/http"
)

type stubCompletion struct{ reply string }

func (s stubCompletion) Complete(context.Context, []models.Message) (string, error) {
	return s.reply, nil
}

type trendHistory struct{ empty, falling bool }

func (h trendHistory) History(_ context.Context, sym string, from, _ time.Time) (models.PriceSeries, error) {
	s := models.PriceSeries{Symbol: sym}
	if h.empty {
		return s, nil
	}
	drift := 0.0004
	if h.falling {
		drift = -drift
	}
	for i := 0; i < 400; i++ {
		s.Dates = append(s.Dates, from.AddDate(0, 0, i))
		s.Closes = append(s.Closes, 100*math.Exp(drift*float64(i)+0.01*math.Sin(float64(i))))
	}
	return s, nil
}

type wordEmbedder struct{}

func (wordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), float32(strings.Count(t, " ") + 1)}
	}
	return out, nil
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var errs []xhttp.AppError
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &errs))
	require.NotEmpty(t, errs)
	return errs[0].Code
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.RemoteAddr = "192.0.2.1:4000"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type testApp struct {
	echo     *echo.Echo
	sessions *session.Manager
}

func newPlannerApp(t *testing.T, planner *usecase.GoalPlanner, limiter *ratelimit.Limiter) *echo.Echo {
	t.Helper()
	e := echo.New()
	NewPlannerHandler(nil, planner, limiter, config.Features{Planning: true}).RegisterRoutes(e)
	return e
}

func newSessionsApp(t *testing.T) testApp {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	sessions := session.NewManager(repository.NewCacheSessionStore(mc))
	chat := usecase.NewChatAssistant(stubCompletion{reply: "Diversify."}, sessions)
	kb := usecase.NewKnowledgeBase(rag.NewPDFExtractor(), wordEmbedder{}, rag.NewSplitter(200, 20), sessions, nil)

	e := echo.New()
	xhttp.Handlers{
		NewSessionsHandler(nil, sessions, chat, kb, 1),
		NewChatSocketHandler(nil, sessions, chat),
	}.RegisterRoutes(e)
	return testApp{echo: e, sessions: sessions}
}

func TestHealthReportsFeatures(t *testing.T) {
	e := newPlannerApp(t, usecase.NewGoalPlanner(performance.NewAnalyzer(trendHistory{})), nil)
	rec := doJSON(e, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"planning":true`)
	assert.Contains(t, rec.Body.String(), `"chat":false`)
}

func TestTenureWorksWithoutCollaborators(t *testing.T) {
	e := newPlannerApp(t, usecase.NewGoalPlanner(performance.NewAnalyzer(trendHistory{})), nil)
	rec := doJSON(e, http.MethodPost, "/api/tenure", `{"target_amount":100000,"amount":25000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tenure  models.TenureResult `json:"tenure"`
		Message string              `json:"message"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &body))
	assert.Equal(t, models.TenureFinite, body.Tenure.Status)
	assert.InDelta(t, 14.5, body.Tenure.Years, 1e-9)
}

func TestTenureRejectsInvalidBody(t *testing.T) {
	e := newPlannerApp(t, usecase.NewGoalPlanner(performance.NewAnalyzer(trendHistory{})), nil)
	rec := doJSON(e, http.MethodPost, "/api/tenure", `{"amount":25000,"mode":"weekly"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "target_amount")
}

func TestPlanWithoutCompletionIsFeatureDisabled(t *testing.T) {
	e := newPlannerApp(t, usecase.NewGoalPlanner(performance.NewAnalyzer(trendHistory{})), nil)
	rec := doJSON(e, http.MethodPost, "/api/plan", `{"target_amount":100000,"amount":25000}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "ERR_FEATURE_DISABLED", errorCode(t, rec))
}

func TestPlanNarrated(t *testing.T) {
	planner := usecase.NewGoalPlanner(performance.NewAnalyzer(trendHistory{}),
		usecase.WithPlannerCompletion(stubCompletion{reply: "Buy nothing, hold steady."}))
	e := newPlannerApp(t, planner, nil)

	rec := doJSON(e, http.MethodPost, "/api/plan", `{"target_amount":100000,"amount":25000,"risk_profile":"medium"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res models.PlanResult
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &res))
	assert.Equal(t, models.PlanNarrated, res.Outcome)
	assert.Equal(t, "Buy nothing, hold steady.", res.Narrative)
	require.NotNil(t, res.Basket)
	assert.NotEmpty(t, res.Basket.Assets)
}

func TestPlanNoMarketDataIsUnprocessable(t *testing.T) {
	planner := usecase.NewGoalPlanner(performance.NewAnalyzer(trendHistory{empty: true}),
		usecase.WithPlannerCompletion(stubCompletion{reply: "x"}))
	e := newPlannerApp(t, planner, nil)

	rec := doJSON(e, http.MethodPost, "/api/plan", `{"target_amount":100000,"amount":25000}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "NO_MARKET_DATA", errorCode(t, rec))
}

func TestPlanNoEligibleAssetsIsUnprocessable(t *testing.T) {
	planner := usecase.NewGoalPlanner(performance.NewAnalyzer(trendHistory{falling: true}),
		usecase.WithPlannerCompletion(stubCompletion{reply: "x"}))
	e := newPlannerApp(t, planner, nil)

	rec := doJSON(e, http.MethodPost, "/api/plan", `{"target_amount":100000,"amount":25000,"risk_profile":"High Risk"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "NO_ELIGIBLE_ASSETS", errorCode(t, rec))
}

func TestPlanIsRateLimited(t *testing.T) {
	e := newPlannerApp(t, usecase.NewGoalPlanner(performance.NewAnalyzer(trendHistory{})), ratelimit.New(1, 1))

	first := doJSON(e, http.MethodPost, "/api/plan", `{"target_amount":100000,"amount":25000}`)
	second := doJSON(e, http.MethodPost, "/api/plan", `{"target_amount":100000,"amount":25000}`)
	assert.NotEqual(t, http.StatusTooManyRequests, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// tenure is never limited
	assert.Equal(t, http.StatusOK, doJSON(e, http.MethodPost, "/api/tenure", `{"target_amount":100000,"amount":25000}`).Code)
}

func createSession(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var view sessionView
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &view))
	require.NotEmpty(t, view.ID)
	return view.ID
}

func TestSessionConversationLifecycle(t *testing.T) {
	app := newSessionsApp(t)
	id := createSession(t, app.echo)

	rec := doJSON(app.echo, http.MethodPost, "/api/sessions/"+id+"/messages",
		`{"message":"how should I save?","web_search":false,"stock_data":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var reply models.ChatReply
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &reply))
	assert.Equal(t, "Diversify.", reply.Reply)

	rec = doJSON(app.echo, http.MethodGet, "/api/sessions/"+id+"/messages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view sessionView
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &view))
	require.Len(t, view.Messages, 2)
	assert.Equal(t, models.RoleUser, view.Messages[0].Role)
	assert.Equal(t, models.RoleAssistant, view.Messages[1].Role)

	assert.Equal(t, http.StatusNoContent, doJSON(app.echo, http.MethodDelete, "/api/sessions/"+id+"/messages", "").Code)
	rec = doJSON(app.echo, http.MethodGet, "/api/sessions/"+id+"/messages", "")
	view = sessionView{}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &view))
	assert.Empty(t, view.Messages)

	assert.Equal(t, http.StatusNoContent, doJSON(app.echo, http.MethodDelete, "/api/sessions/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, doJSON(app.echo, http.MethodGet, "/api/sessions/"+id+"/messages", "").Code)
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	app := newSessionsApp(t)
	rec := doJSON(app.echo, http.MethodPost, "/api/sessions/nope/messages", `{"message":"hi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBlankMessageRejected(t *testing.T) {
	app := newSessionsApp(t)
	id := createSession(t, app.echo)
	rec := doJSON(app.echo, http.MethodPost, "/api/sessions/"+id+"/messages", `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBusySessionConflicts(t *testing.T) {
	app := newSessionsApp(t)
	id := createSession(t, app.echo)

	_, release, err := app.sessions.Acquire(context.Background(), id)
	require.NoError(t, err)
	defer release()

	rec := doJSON(app.echo, http.MethodPost, "/api/sessions/"+id+"/messages", `{"message":"hello"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ERR_CONFLICT", errorCode(t, rec))
}

func upload(t *testing.T, e *echo.Echo, id string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/documents", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestUploadBuildsKnowledgeBase(t *testing.T) {
	app := newSessionsApp(t)
	id := createSession(t, app.echo)

	rec := upload(t, app.echo, id, map[string]string{
		"notes.txt": strings.Repeat("Index funds keep costs low. ", 20),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var report usecase.IngestReport
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &report))
	assert.Equal(t, []string{"notes.txt"}, report.Documents)
	assert.Greater(t, report.Chunks, 1)

	s, err := app.sessions.Get(context.Background(), id)
	require.NoError(t, err)
	assert.NotNil(t, s.Retriever())

	assert.Equal(t, http.StatusNoContent, doJSON(app.echo, http.MethodDelete, "/api/sessions/"+id+"/documents", "").Code)
	assert.Nil(t, s.Retriever())
}

func TestUploadWithoutFilesIsBadRequest(t *testing.T) {
	app := newSessionsApp(t)
	id := createSession(t, app.echo)
	rec := upload(t, app.echo, id, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadOfUnreadableDocumentsOnly(t *testing.T) {
	app := newSessionsApp(t)
	id := createSession(t, app.echo)
	rec := upload(t, app.echo, id, map[string]string{"image.png": "\x89PNG"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "image.png")
}
