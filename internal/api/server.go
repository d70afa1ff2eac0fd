// Package api exposes the decision engine over HTTP: on-demand
// analysis, per-strategy diagnostics, decision history, watchlist and
// strategy mode administration, plus a WebSocket feed of engine events.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ultron-engine/config"
	"ultron-engine/internal/auth"
	"ultron-engine/internal/cache"
	"ultron-engine/internal/database"
	"ultron-engine/internal/engine"
	"ultron-engine/internal/events"
	"ultron-engine/internal/scanner"
)

// Server represents the HTTP API server
type Server struct {
	router        *gin.Engine
	httpServer    *http.Server
	repo          *database.Repository
	cache         *cache.CacheService
	scanner       *scanner.Scanner
	engine        *engine.Engine
	modes         *scanner.ModeResolver
	eventBus      *events.EventBus
	authenticator *auth.Authenticator
	jwtManager    *auth.JWTManager
	cfg           config.ServerConfig
	wsHub         *WSHub
	logger        zerolog.Logger
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	repo *database.Repository,
	cacheService *cache.CacheService,
	sc *scanner.Scanner,
	eng *engine.Engine,
	modes *scanner.ModeResolver,
	eventBus *events.EventBus,
	authenticator *auth.Authenticator, // nil when auth is disabled
	jwtManager *auth.JWTManager, // nil when auth is disabled
	logger zerolog.Logger,
) *Server {
	if cfg.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	server := &Server{
		router:        router,
		repo:          repo,
		cache:         cacheService,
		scanner:       sc,
		engine:        eng,
		modes:         modes,
		eventBus:      eventBus,
		authenticator: authenticator,
		jwtManager:    jwtManager,
		cfg:           cfg,
		logger:        logger.With().Str("component", "api").Logger(),
	}

	server.wsHub = NewWSHub(logger)
	go server.wsHub.Run()
	eventBus.SubscribeAll(func(event events.Event) {
		server.wsHub.BroadcastEvent(event)
	})

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ws", s.handleWebSocket)

	api := s.router.Group("/api")
	{
		api.GET("/analyze", s.handleAnalyze)
		api.GET("/diagnostics", s.handleDiagnostics)
		api.GET("/session", s.handleSession)
		api.GET("/decisions", s.handleDecisions)
		api.GET("/decisions/last", s.handleLastDecision)
		api.GET("/strategies", s.handleGetStrategies)
		api.GET("/watchlist", s.handleGetWatchlist)
		api.GET("/scan/last", s.handleLastScan)
	}

	if s.authenticator != nil {
		s.router.POST("/api/auth/login", s.handleLogin)
	}

	// Mutations require auth when it is enabled.
	admin := s.router.Group("/api")
	if s.jwtManager != nil {
		admin.Use(auth.Middleware(s.jwtManager))
	}
	{
		admin.PUT("/strategies/:name", s.handleSetStrategyMode)
		admin.POST("/watchlist", s.handleAddWatchlist)
		// Symbols carry slashes (EUR/USD), so removal takes a query param.
		admin.DELETE("/watchlist", s.handleRemoveWatchlist)
		admin.POST("/scan", s.handleTriggerScan)
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	s.logger.Info().Str("addr", addr).Msg("API server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
