package ws

import (
	"net/http"
	"time"

	"agrocommunity_backend/internal/logger"
	"agrocommunity_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type HandlerConfig struct {
	SendBuffer     int
	PingPeriod     time.Duration
	AllowedOrigins []string
}

type WebSocketHandler struct {
	Registry *PresenceRegistry
	cfg      HandlerConfig
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(registry *PresenceRegistry, cfg HandlerConfig) *WebSocketHandler {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	if cfg.PingPeriod <= 0 {
		cfg.PingPeriod = 30 * time.Second
	}

	h := &WebSocketHandler{Registry: registry, cfg: cfg}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin allows everything when no origins are configured.
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// ServeWS upgrades GET /socket?userId=... and registers the connection.
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("userId query parameter is required"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		logger.CtxWithError(c.Request.Context(), "WebSocket upgrade failed", err, "user_id", userID)
		return
	}

	client := newClient(userID, conn, h.Registry, h.cfg.SendBuffer, h.cfg.PingPeriod)
	h.Registry.Register(userID, client)

	go client.writePump()
	go client.readPump()
}
