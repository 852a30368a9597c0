// Package server exposes the scanner over HTTP and WebSocket.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/skinscout/internal/server/handler"
	"github.com/alanyoungcy/skinscout/internal/server/middleware"
	"github.com/alanyoungcy/skinscout/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
	// RateLimit is requests per second per client; zero disables limiting.
	RateLimit float64
	RateBurst int
}

// Handlers aggregates all HTTP handlers that the server needs to register.
// Alerts, Watchlist and Audit may be nil.
type Handlers struct {
	Health    *handler.HealthHandler
	Items     *handler.ItemHandler
	Watchlist *handler.WatchlistHandler
	Arb       *handler.ArbHandler
	Alerts    *handler.AlertHandler
	Audit     *handler.AuditHandler
	// Metrics serves the Prometheus exposition; nil skips /metrics.
	Metrics http.Handler
}

// Server is the headless HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer registers all routes and wraps them in the middleware chain.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	routes(mux, handlers, wsHub)

	var limiter *middleware.ClientLimiter
	if cfg.RateLimit > 0 {
		limiter = middleware.NewClientLimiter(cfg.RateLimit, cfg.RateBurst)
	}

	var h http.Handler = mux
	h = middleware.Auth(cfg.APIKey, "/api/health", "/metrics")(h)
	h = middleware.RateLimit(limiter)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return &Server{
		httpServer: srv,
		logger:     logger.With(slog.String("component", "server")),
	}
}

func routes(mux *http.ServeMux, handlers Handlers, wsHub *ws.Hub) {
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	mux.HandleFunc("GET /api/items/{item}/listings", handlers.Items.Listings)
	mux.HandleFunc("GET /api/items/{item}/cached", handlers.Items.Cached)
	mux.HandleFunc("GET /api/items/{item}/history", handlers.Items.History)
	mux.HandleFunc("GET /api/items/{item}/trends", handlers.Items.Trends)
	mux.HandleFunc("GET /api/items/{item}/trends/stored", handlers.Items.StoredTrends)
	mux.HandleFunc("GET /api/items/{item}/arbitrage", handlers.Arb.ListByItem)

	if handlers.Watchlist != nil {
		mux.HandleFunc("GET /api/watchlist", handlers.Watchlist.Watchlist)
	}

	mux.HandleFunc("GET /api/arbitrage/scan", handlers.Arb.Scan)
	mux.HandleFunc("GET /api/arbitrage/recent", handlers.Arb.ListRecent)
	mux.HandleFunc("GET /api/arbitrage/fees", handlers.Arb.Fees)

	if handlers.Alerts != nil {
		mux.HandleFunc("POST /api/alerts/check", handlers.Alerts.Check)
		mux.HandleFunc("GET /api/alerts/recent", handlers.Alerts.ListRecent)
	}

	if handlers.Audit != nil {
		mux.HandleFunc("GET /api/audit", handlers.Audit.List)
	}

	if handlers.Metrics != nil {
		mux.Handle("GET /metrics", handlers.Metrics)
	}
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}
}

// Handler returns the fully wrapped handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
