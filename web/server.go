package web

import (
	"context"
	"net/http"

	"datachat/agent"
	"datachat/config"
	"datachat/database"
	"datachat/web/handlers"
	"datachat/web/middleware"
	"datachat/web/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router      *gin.Engine
	agentRouter *agent.Router
	logger      *zap.Logger
	config      *config.Config
	rateLimiter *middleware.SessionRateLimiter
}

func NewServer(agentRouter *agent.Router, logger *zap.Logger, cfg *config.Config, store *database.PostgresStore) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		// Add logger to context
		c.Set("logger", logger)
		c.Next()
	})

	rateLimiter := middleware.NewSessionRateLimiter(middleware.RateLimiterConfig{
		MessagesPerMinute: cfg.RateLimitMessagesPerMin,
		FilesPerHour:      cfg.RateLimitFilesPerHour,
		BurstSize:         cfg.RateLimitBurstSize,
		CleanupInterval:   cfg.CleanupInterval,
	}, logger)

	server := &Server{
		router:      router,
		agentRouter: agentRouter,
		logger:      logger,
		config:      cfg,
		rateLimiter: rateLimiter,
	}

	server.setupRoutes(store)
	return server
}

func (s *Server) setupRoutes(store *database.PostgresStore) {
	messageService := services.NewMessageService(store, s.logger)
	sessionService := services.NewSessionService(store, s.logger)
	chatHandler := handlers.NewChatHandler(
		s.agentRouter, store, messageService, sessionService, s.logger, s.config.MaxDatasetRows)

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	session := s.router.Group("/", middleware.SessionMiddleware(store))
	session.GET("/history", chatHandler.History)
	session.POST("/chat",
		middleware.RateLimitMiddleware(s.rateLimiter, "message"),
		chatHandler.SendMessage)
	session.POST("/reset", chatHandler.Reset)
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	s.rateLimiter.Stop()
	return srv.Shutdown(context.Background())
}
