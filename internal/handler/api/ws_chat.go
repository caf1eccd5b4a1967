package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"NeoFin/internal/domain/models"
	"NeoFin/internal/service/metrics"
	"NeoFin/internal/session"
	"NeoFin/internal/usecase"
	xhttp "NeoFin/pkg/http"
	applogger "NeoFin/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsMaxMessage = 64 << 10
)

// Frame types sent to the client.
const (
	frameSession = "session"
	frameReply   = "reply"
	frameError   = "error"
)

type wsFrame struct {
	Type      string   `json:"type"`
	SessionID string   `json:"session_id,omitempty"`
	Reply     string   `json:"reply,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
	Code      string   `json:"code,omitempty"`
	Message   string   `json:"message,omitempty"`
}

// ChatSocketHandler serves /ws/chat. Each connection owns a fresh session
// that is destroyed when the connection closes; client frames are
// ChatRequest bodies and are answered in order.
type ChatSocketHandler struct {
	logger   *applogger.Logger
	sessions *session.Manager
	chat     *usecase.ChatAssistant
	upgrader websocket.Upgrader
}

func NewChatSocketHandler(logger *applogger.Logger, sessions *session.Manager, chat *usecase.ChatAssistant) *ChatSocketHandler {
	if logger == nil {
		logger = applogger.Nop()
	}
	metrics.Register()
	return &ChatSocketHandler{
		logger:   logger,
		sessions: sessions,
		chat:     chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *ChatSocketHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/chat", h.Serve)
}

func (h *ChatSocketHandler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already wrote the error response
		h.logger.Warn("websocket upgrade failed", applogger.Error(err))
		return nil
	}
	defer conn.Close()

	// work is bound to the connection, not to the upgrade request
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := h.sessions.Create(ctx)
	if err != nil {
		h.logger.Error("websocket session create failed", applogger.Error(err))
		_ = h.write(conn, wsFrame{Type: frameError, Code: "ERR_INTERNAL", Message: "could not create a session"})
		return nil
	}
	defer func() {
		if err := h.sessions.Destroy(context.Background(), s.ID); err != nil {
			h.logger.Debug("websocket session already gone", applogger.String("session_id", s.ID), applogger.Error(err))
		}
	}()
	if err := h.write(conn, wsFrame{Type: frameSession, SessionID: s.ID}); err != nil {
		return nil
	}

	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go h.pingLoop(ctx, conn)

	h.logger.Info("websocket chat opened", applogger.String("session_id", s.ID))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", applogger.String("session_id", s.ID), applogger.Error(err))
			}
			break
		}
		if err := h.write(conn, h.turn(ctx, s.ID, data)); err != nil {
			h.logger.Warn("websocket write failed", applogger.String("session_id", s.ID), applogger.Error(err))
			break
		}
		// pongs are only processed while reading, so a slow turn must not count
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	}
	h.logger.Info("websocket chat closed", applogger.String("session_id", s.ID))
	return nil
}

// turn answers one client frame.
func (h *ChatSocketHandler) turn(ctx context.Context, sessionID string, data []byte) wsFrame {
	start := time.Now()
	defer metrics.Observe("ws_chat", start)

	req := models.ChatRequest{}
	if err := json.Unmarshal(data, &req); err != nil {
		return wsFrame{Type: frameError, Code: "ERR_BIND", Message: "frame is not valid JSON"}
	}
	if err := xhttp.PrepareStruct(ctx, &req); err != nil {
		return wsFrame{Type: frameError, Code: "ERR_BAD_REQUEST", Message: xhttp.ValidationMessage(err)}
	}
	if strings.TrimSpace(req.Message) == "" {
		return wsFrame{Type: frameError, Code: "ERR_BAD_REQUEST", Message: "message must not be blank"}
	}

	s, release, err := h.sessions.Acquire(ctx, sessionID)
	if err != nil {
		appErr := toAppError(err, "chat")
		return wsFrame{Type: frameError, Code: appErr.Code, Message: appErr.Message}
	}
	defer release()

	reply, err := h.chat.Reply(ctx, s, req.Message, req.Options())
	if err != nil {
		appErr := toAppError(err, "chat")
		metrics.Fail("ws_chat", appErr.Code)
		return wsFrame{Type: frameError, Code: appErr.Code, Message: appErr.Message, Warnings: reply.Warnings}
	}
	return wsFrame{Type: frameReply, Reply: reply.Reply, Warnings: reply.Warnings}
}

func (h *ChatSocketHandler) write(conn *websocket.Conn, f wsFrame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(f)
}

// pingLoop runs until the connection's context is cancelled.
func (h *ChatSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
