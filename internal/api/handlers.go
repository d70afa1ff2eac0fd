package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ultron-engine/internal/database"
	"ultron-engine/internal/engine"
	"ultron-engine/internal/market"
	"ultron-engine/internal/session"
	"ultron-engine/internal/strategy"
)

func (s *Server) handleHealth(c *gin.Context) {
	status := gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
	}

	if s.repo != nil {
		if err := s.repo.HealthCheck(c.Request.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
		} else {
			status["database"] = "ok"
		}
	}
	if s.cache != nil {
		if s.cache.IsHealthy() {
			status["redis"] = "ok"
		} else {
			status["redis"] = "degraded"
		}
	}
	status["websocket_clients"] = s.wsHub.GetClientCount()

	c.JSON(http.StatusOK, status)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	token, err := s.authenticator.Login(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   s.jwtManager.TokenDurationSeconds(),
	})
}

// handleAnalyze runs the full arbitration for one symbol on demand.
// Symbols with slashes (EUR/USD) arrive as a query parameter.
func (s *Server) handleAnalyze(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol query parameter is required"})
		return
	}

	decision, err := s.scanner.ScanSymbol(c.Request.Context(), symbol, c.Query("interval"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, decision)
}

// handleDiagnostics shadow-evaluates every strategy for a symbol,
// including disabled ones, without persisting or notifying.
func (s *Server) handleDiagnostics(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol query parameter is required"})
		return
	}

	candles, err := s.scanner.GetCandles(c.Request.Context(), symbol, c.Query("interval"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	modes, err := s.modes.Resolve(c.Request.Context())
	if err != nil {
		s.logger.Warn().Err(err).Msg("mode overrides unavailable for diagnostics")
	}

	verdicts := s.engine.Diagnostics(symbol, candles, modes, time.Now().UTC())

	c.JSON(http.StatusOK, gin.H{
		"symbol":    symbol,
		"candles":   len(candles),
		"modes":     modes,
		"verdicts":  verdicts,
		"evaluated": time.Now().UTC(),
	})
}

func (s *Server) handleSession(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol query parameter is required"})
		return
	}

	class := market.ClassifySymbol(symbol)
	now := time.Now().UTC()
	st := session.IsMarketOpen(class, now)

	resp := gin.H{
		"symbol":           symbol,
		"instrument_class": class,
		"open":             st.Open,
		"session":          st.Session,
	}
	if !st.Open {
		resp["next_open"] = session.NextOpen(class, now)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDecisions(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "decision history requires a database"})
		return
	}

	limit := parseIntDefault(c.Query("limit"), 50)
	if limit > 500 {
		limit = 500
	}

	if symbol := c.Query("symbol"); symbol != "" {
		decisions, err := s.repo.GetDecisionsBySymbol(c.Request.Context(), symbol, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"decisions": decisions})
		return
	}

	offset := parseIntDefault(c.Query("offset"), 0)
	decisions, err := s.repo.GetDecisionHistory(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"decisions": decisions, "limit": limit, "offset": offset})
}

func (s *Server) handleLastDecision(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol query parameter is required"})
		return
	}

	if s.cache != nil && s.cache.IsHealthy() {
		var decision engine.Decision
		found, err := s.cache.GetLastDecision(c.Request.Context(), symbol, &decision)
		if err == nil && found {
			c.JSON(http.StatusOK, decision)
			return
		}
	}

	if s.repo != nil {
		decisions, err := s.repo.GetDecisionsBySymbol(c.Request.Context(), symbol, 1)
		if err == nil && len(decisions) > 0 {
			c.JSON(http.StatusOK, decisions[0])
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "no decision recorded for " + symbol})
}

func (s *Server) handleGetStrategies(c *gin.Context) {
	modes, err := s.modes.Resolve(c.Request.Context())
	if err != nil {
		s.logger.Warn().Err(err).Msg("mode overrides unavailable")
	}

	strategies := make([]gin.H, 0, len(strategy.Names))
	for _, name := range strategy.Names {
		strategies = append(strategies, gin.H{
			"name": name,
			"mode": modes.ModeFor(name),
		})
	}
	c.JSON(http.StatusOK, gin.H{"strategies": strategies})
}

func (s *Server) handleSetStrategyMode(c *gin.Context) {
	name := c.Param("name")

	var req struct {
		Mode string `json:"mode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode is required (OFF, STANDARD or RISK)"})
		return
	}

	mode := strategy.ParseMode(req.Mode)
	if string(mode) != strings.ToUpper(req.Mode) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be OFF, STANDARD or RISK"})
		return
	}

	if err := s.modes.Set(c.Request.Context(), name, mode); err != nil {
		if err == strategy.ErrUnknownStrategy {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown strategy: " + name})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.eventBus.PublishStrategyModeChanged(name, string(mode))
	c.JSON(http.StatusOK, gin.H{"name": name, "mode": mode})
}

func (s *Server) handleGetWatchlist(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "watchlist requires a database"})
		return
	}

	entries, err := s.repo.GetWatchlist(c.Request.Context(), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"watchlist": entries})
}

func (s *Server) handleAddWatchlist(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "watchlist requires a database"})
		return
	}

	var req struct {
		Symbol   string `json:"symbol" binding:"required"`
		Interval string `json:"interval"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}
	if req.Interval == "" {
		req.Interval = "15min"
	}

	entry := &database.WatchlistEntry{
		Symbol:          req.Symbol,
		InstrumentClass: string(market.ClassifySymbol(req.Symbol)),
		Interval:        req.Interval,
		Enabled:         true,
	}
	if err := s.repo.AddWatchlistEntry(c.Request.Context(), entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.eventBus.PublishWatchlistChanged(entry.Symbol, "added")
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) handleRemoveWatchlist(c *gin.Context) {
	if s.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "watchlist requires a database"})
		return
	}

	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol query parameter is required"})
		return
	}
	if err := s.repo.RemoveWatchlistEntry(c.Request.Context(), symbol); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	s.eventBus.PublishWatchlistChanged(symbol, "removed")
	c.JSON(http.StatusOK, gin.H{"removed": symbol})
}

func (s *Server) handleTriggerScan(c *gin.Context) {
	result, err := s.scanner.ScanAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleLastScan(c *gin.Context) {
	result := s.scanner.GetLastResult()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no scan has completed yet"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
