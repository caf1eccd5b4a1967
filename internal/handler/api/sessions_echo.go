package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"NeoFin/internal/domain/models"
	"NeoFin/internal/service/metrics"
	"NeoFin/internal/session"
	"NeoFin/internal/usecase"
	xhttp "NeoFin/pkg/http"
	applogger "NeoFin/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SessionsHandler exposes the chat session lifecycle, the conversation and
// the per-session knowledge base.
type SessionsHandler struct {
	logger    *applogger.Logger
	sessions  *session.Manager
	chat      *usecase.ChatAssistant
	kb        *usecase.KnowledgeBase
	maxUpload int64
}

// NewSessionsHandler limits a whole document upload to maxUploadMB megabytes.
func NewSessionsHandler(logger *applogger.Logger, sessions *session.Manager, chat *usecase.ChatAssistant, kb *usecase.KnowledgeBase, maxUploadMB int64) *SessionsHandler {
	if logger == nil {
		logger = applogger.Nop()
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	metrics.Register()
	return &SessionsHandler{
		logger:    logger,
		sessions:  sessions,
		chat:      chat,
		kb:        kb,
		maxUpload: maxUploadMB << 20,
	}
}

func (h *SessionsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/sessions")
	g.POST("", h.Create)
	g.DELETE("/:id", h.Destroy)
	g.GET("/:id/messages", h.History)
	g.POST("/:id/messages", h.Send)
	g.DELETE("/:id/messages", h.ClearHistory)
	g.POST("/:id/documents", h.Upload)
	g.DELETE("/:id/documents", h.ClearDocuments)
}

type sessionView struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Documents []string         `json:"documents,omitempty"`
	Messages  []models.Message `json:"messages,omitempty"`
}

func (h *SessionsHandler) Create(c echo.Context) error {
	s, err := h.sessions.Create(c.Request().Context())
	if err != nil {
		h.logger.Error("session create failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not create a session"))
	}
	return xhttp.CreatedResponse(c, sessionView{ID: s.ID, CreatedAt: s.CreatedAt})
}

func (h *SessionsHandler) Destroy(c echo.Context) error {
	if err := h.sessions.Destroy(c.Request().Context(), c.Param("id")); err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err, "chat"))
	}
	return xhttp.NoContentResponse(c)
}

func (h *SessionsHandler) History(c echo.Context) error {
	s, err := h.sessions.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err, "chat"))
	}
	return xhttp.SuccessResponse(c, sessionView{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Documents: s.Documents(),
		Messages:  s.History(),
	})
}

func (h *SessionsHandler) ClearHistory(c echo.Context) error {
	if err := h.sessions.ClearHistory(c.Request().Context(), c.Param("id")); err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err, "chat"))
	}
	return xhttp.NoContentResponse(c)
}

// Send runs one chat turn. The session is held for the whole turn.
func (h *SessionsHandler) Send(c echo.Context) error {
	start := time.Now()
	defer metrics.Observe("chat", start)

	req := &models.ChatRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if strings.TrimSpace(req.Message) == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("message must not be blank"))
	}

	ctx := c.Request().Context()
	s, release, err := h.sessions.Acquire(ctx, c.Param("id"))
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err, "chat"))
	}
	defer release()

	reply, err := h.chat.Reply(ctx, s, req.Message, req.Options())
	if err != nil {
		appErr := toAppError(err, "chat")
		if len(reply.Warnings) > 0 {
			appErr.WithParam("warnings", reply.Warnings)
		}
		metrics.Fail("chat", appErr.Code)
		return xhttp.AppErrorResponse(c, appErr)
	}
	return xhttp.SuccessResponse(c, reply)
}

// Upload indexes the multipart "files" field into the session's knowledge
// base, replacing whatever was indexed before.
func (h *SessionsHandler) Upload(c echo.Context) error {
	start := time.Now()
	defer metrics.Observe("documents", start)

	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.maxUpload)
	form, err := c.MultipartForm()
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid upload: %v", err))
	}
	docs, err := readDocuments(form.File["files"])
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}

	ctx := c.Request().Context()
	s, release, err := h.sessions.Acquire(ctx, c.Param("id"))
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err, "knowledge base"))
	}
	defer release()

	report, err := h.kb.Ingest(ctx, s, docs)
	if err != nil {
		appErr := toAppError(err, "knowledge base")
		if len(report.Warnings) > 0 {
			appErr.WithParam("warnings", report.Warnings)
		}
		metrics.Fail("documents", appErr.Code)
		return xhttp.AppErrorResponse(c, appErr)
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *SessionsHandler) ClearDocuments(c echo.Context) error {
	if err := h.kb.Clear(c.Request().Context(), c.Param("id")); err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err, "knowledge base"))
	}
	return xhttp.NoContentResponse(c)
}

func readDocuments(files []*multipart.FileHeader) ([]models.Document, error) {
	docs := make([]models.Document, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		docs = append(docs, models.Document{Name: fh.Filename, Data: data})
	}
	return docs, nil
}
