// Package feed implements the event feed server: it replays the historical
// order event log to each connected observer over a WebSocket, paced to feel
// live, and serves the restaurant reference data the observers resolve IDs
// against.
package feed

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/websocket"

	"github.com/elenichas/orders-dashboard-app/config"
	"github.com/elenichas/orders-dashboard-app/internal/domain"
	"github.com/elenichas/orders-dashboard-app/internal/eventlog"
	"github.com/elenichas/orders-dashboard-app/internal/metrics"
)

// Server is the HTTP server hosting the event delivery channel and the
// reference-data endpoint. The WebSocket upgrade is accepted only on the
// configured path; every other path on the listener is rejected.
type Server struct {
	config      config.Config
	router      *gin.Engine
	httpServer  *http.Server
	pacer       *Pacer
	restaurants []domain.Restaurant
	metrics     *metrics.Metrics
}

// NewServer creates a feed server over a loaded event log and restaurant
// list.
func NewServer(cfg config.Config, eventLog *eventlog.Log, restaurants []domain.Restaurant, collector *metrics.Metrics) *Server {
	server := &Server{
		config:      cfg,
		pacer:       NewPacer(eventLog.Events(), cfg.Feed.TailSize, cfg.Feed.Interval),
		restaurants: restaurants,
		metrics:     collector,
	}

	router := server.setupRouter()
	server.router = router

	server.httpServer = &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	return server
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter() *gin.Engine {
	if s.config.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Recovery middleware
	router.Use(gin.Recovery())

	if s.config.Server.CorsEnabled {
		router.Use(corsMiddleware(s.config.Server.CorsOrigins))
	}

	router.GET("/restaurants", s.handleRestaurants)

	wsHandler := websocket.Handler(s.handleObserver)
	router.GET(s.config.Feed.WSPath, gin.WrapH(wsHandler))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", s.handleMetrics)

	return router
}

// handleRestaurants serves the full restaurant reference list.
func (s *Server) handleRestaurants(c *gin.Context) {
	c.JSON(http.StatusOK, s.restaurants)
}

// handleMetrics returns all in-process metrics.
func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.metrics.GetAllMetrics())
}

// handleObserver runs one observer's paced replay. The connection stays open
// after the replay completes; the observer closing it ends the subscription
// and cancels any pending timed sends.
func (s *Server) handleObserver(conn *websocket.Conn) {
	s.metrics.IncrementCounter(metrics.CounterObserverConnects)
	s.metrics.AddGauge(metrics.GaugeActiveObservers, 1)
	log.Info().Str("remote", conn.Request().RemoteAddr).Msg("Observer connected")

	defer func() {
		_ = conn.Close()
		s.metrics.IncrementCounter(metrics.CounterObserverCloses)
		s.metrics.AddGauge(metrics.GaugeActiveObservers, -1)
		log.Info().Str("remote", conn.Request().RemoteAddr).Msg("Observer disconnected")
	}()

	replay := s.pacer.Start(func(event domain.OrderEvent) error {
		data, err := domain.MarshalEvent(event)
		if err != nil {
			return err
		}
		if err := websocket.Message.Send(conn, string(data)); err != nil {
			return err
		}
		s.metrics.IncrementCounter(metrics.CounterEventsSent)
		return nil
	})
	defer replay.Cancel()

	// Observers are receive-only. Block draining inbound frames until the
	// peer closes the connection, which terminates the replay schedule.
	var discard string
	for {
		if err := websocket.Message.Receive(conn, &discard); err != nil {
			return
		}
	}
}

// corsMiddleware mirrors the permissive headers the reference-data consumers
// expect, including preflight handling.
func corsMiddleware(origins []string) gin.HandlerFunc {
	origin := "*"
	if len(origins) == 1 {
		origin = origins[0]
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.Server.Address).Msg("Starting feed server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down feed server")

	// Create a timeout context for shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	log.Info().Msg("Feed server shut down successfully")
	return nil
}
