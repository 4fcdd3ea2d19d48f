package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thereayou/groupchat/internal/database"
	"github.com/thereayou/groupchat/internal/handlers"
	"github.com/thereayou/groupchat/internal/middleware"
	"github.com/thereayou/groupchat/pkg/auth"
)

type RouterDeps struct {
	Log       *slog.Logger
	JWT       *auth.JWTManager
	Blacklist auth.Blacklist
	DB        *database.Database
	Metrics   *prometheus.Registry

	Auth      *handlers.AuthHandler
	Users     *handlers.UserHandler
	Groups    *handlers.GroupHandler
	Messages  *handlers.MessageHandler
	WebSocket *handlers.WebSocketHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log))

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := d.DB.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))

	APIEndpoints(r, d)
	return r
}

func APIEndpoints(r *gin.Engine, d RouterDeps) {
	requireAuth := middleware.AuthMiddleware(d.JWT, d.Blacklist)

	// Auth endpoints
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", d.Auth.Register)
		authGroup.POST("/login", d.Auth.Login)
		authGroup.POST("/logout", requireAuth, d.Auth.Logout)
	}

	r.GET("/ws", middleware.WSAuthMiddleware(d.JWT, d.Blacklist), d.WebSocket.HandleWebSocket)

	// API endpoints
	api := r.Group("/api", requireAuth)
	{
		api.GET("/me", d.Users.GetMe)
		api.PATCH("/me", d.Users.UpdateMe)
		api.GET("/users/:id", d.Users.GetUser)

		api.GET("/groups", d.Groups.ListMyGroups)
		api.POST("/groups", d.Groups.CreateGroup)
		api.GET("/groups/:id", d.Groups.GetGroup)
		api.POST("/groups/:id/join", d.Groups.JoinGroup)

		api.GET("/groups/:id/messages", d.Messages.GetMessages)
		api.POST("/groups/:id/messages", d.Messages.SendMessage)
	}
}
