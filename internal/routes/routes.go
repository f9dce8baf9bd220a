package routes

import (
	"net/http"

	"agrocommunity_backend/internal/handlers"
	"agrocommunity_backend/internal/logger"
	"agrocommunity_backend/internal/metrics"
	"agrocommunity_backend/internal/middleware"
	"agrocommunity_backend/pkg/apperrors"
	"agrocommunity_backend/ws"

	"github.com/gin-gonic/gin"
)

// StaticMount serves locally stored media. Empty Dir disables it.
type StaticMount struct {
	URL string
	Dir string
}

// RegisterRoutes registers every HTTP and WebSocket route.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	session *middleware.SessionMiddleware,
	m *metrics.Metrics,
	static StaticMount,
) {
	ginRouter.NoRoute(apperrors.NoRouteHandler)

	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	ginRouter.GET("/metrics", gin.WrapH(m.Handler()))

	if static.Dir != "" && static.URL != "" {
		ginRouter.Static(static.URL, static.Dir)
	}

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)

		protected := api.Group("", session.Authenticate())
		appHandlers.UserHandler.RegisterRoutes(protected)
		appHandlers.PostHandler.RegisterRoutes(protected)
		appHandlers.MessageHandler.RegisterRoutes(protected)
	}

	// The handshake identifies the user by query parameter only.
	ginRouter.GET("/socket", wsHandler.ServeWS)
	logger.Info("WebSocket route /socket registered")
}
