package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/thereayou/groupchat/internal/config"
	"github.com/thereayou/groupchat/internal/database"
	"github.com/thereayou/groupchat/internal/handlers"
	"github.com/thereayou/groupchat/internal/services"
	"github.com/thereayou/groupchat/internal/websocket"
	"github.com/thereayou/groupchat/pkg/auth"
)

type Server struct {
	cfg        config.Config
	log        *slog.Logger
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Hub        *websocket.Hub
	Metrics    *prometheus.Registry
	Router     *gin.Engine
	handler    http.Handler
}

func NewServer(ctx context.Context, cfg config.Config, log *slog.Logger) (*Server, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("database connect failed: %w", err)
	}

	if cfg.SeedDefaultGroup {
		created, err := db.EnsureDefaultGroup(ctx)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("seed default group: %w", err)
		}
		if created {
			log.Info("default group created")
		}
	}

	s := &Server{
		cfg:        cfg,
		log:        log,
		DB:         db,
		JWTManager: auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		Metrics:    prometheus.NewRegistry(),
	}
	s.Metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	blacklist, err := s.connectBlacklist(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}

	hubOpts := []websocket.HubOption{websocket.WithMetrics(s.Metrics)}
	if cfg.WSEnforceRoomMembership {
		hubOpts = append(hubOpts, websocket.WithAuthorizer(services.NewMembershipAuthorizer(db)))
	}
	s.Hub = websocket.NewHub(log.With("component", "hub"), cfg.HubOptions(), hubOpts...)

	messageService := services.NewMessageService(db, db, s.Hub.Dispatcher(), log.With("component", "messages"))
	authService := services.NewAuthService(db, s.JWTManager, blacklist)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	s.Router = NewRouter(RouterDeps{
		Log:       log,
		JWT:       s.JWTManager,
		Blacklist: blacklist,
		DB:        db,
		Metrics:   s.Metrics,
		Auth:      handlers.NewAuthHandler(authService, log),
		Users:     handlers.NewUserHandler(db),
		Groups:    handlers.NewGroupHandler(db, s.Hub, log),
		Messages:  handlers.NewMessageHandler(messageService, log),
		WebSocket: handlers.NewWebSocketHandler(s.Hub, cfg.Origins(), log),
	})

	s.handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.Origins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(s.Router)

	return s, nil
}

// connectBlacklist подключает Redis; без REDIS_URL черный список живет в памяти
func (s *Server) connectBlacklist(ctx context.Context) (auth.Blacklist, error) {
	if s.cfg.RedisURL == "" {
		s.log.Warn("REDIS_URL not set, token blacklist is kept in memory")
		return auth.NewMemoryBlacklist(), nil
	}

	redisOpts, err := redis.ParseURL(s.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connect failed: %w", err)
	}

	s.Redis = rdb
	return auth.NewRedisBlacklist(rdb), nil
}

// Handler корневой http.Handler с CORS
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run обслуживает HTTP до отмены ctx, затем останавливает сервер и hub
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("server starting", "addr", httpServer.Addr, "env", s.cfg.AppEnv)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server run error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		// hijacked websocket соединения http.Server не закрывает, это делает hub
		err := httpServer.Shutdown(shutdownCtx)
		if hubErr := s.Hub.Shutdown(shutdownCtx); hubErr != nil {
			s.log.Warn("hub shutdown timed out", "err", hubErr)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	s.log.Info("server stopped cleanly")
	return nil
}

func (s *Server) Close() {
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if err := s.DB.Close(); err != nil {
		s.log.Warn("database close failed", "err", err)
	}
}
