package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/thereayou/groupchat/internal/middleware"
	ws "github.com/thereayou/groupchat/internal/websocket"
)

// WebSocketHandler управляет WebSocket соединениями
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewWebSocketHandler создает новый WebSocket handler. "*" в списке
// origins разрешает любой источник.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string, log *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	allowAll := lo.Contains(allowed, "*")
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			// не браузерный клиент
			return true
		}
		return lo.Contains(allowed, strings.TrimRight(origin, "/"))
	}
}

// HandleWebSocket обрабатывает WebSocket соединения
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.log.Debug("websocket upgrade failed", "user", userID, "err", err)
		return
	}

	if _, err := h.hub.Serve(conn, userID); err != nil {
		h.log.Debug("websocket rejected", "user", userID, "err", err)
	}
}
