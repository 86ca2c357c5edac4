// Package api serves race predictions and schedules over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/f1-form/internal/config"
	"github.com/yourusername/f1-form/internal/datasource"
	"github.com/yourusername/f1-form/internal/logger"
	"github.com/yourusername/f1-form/internal/metrics"
	"github.com/yourusername/f1-form/internal/ml"
)

const serviceName = "f1-form"

// Server is the prediction API. The serving context is fixed for the server's lifetime.
type Server struct {
	cfg     *config.Config
	serving *ml.ServingContext
	source  datasource.DataSource
	cache   *ml.PredictionCache
	audit   *logger.AuditLogger
	mlLog   *logger.MLLogger
	logger  *logrus.Logger
	engine  *gin.Engine
	server  *http.Server
	ready   atomic.Bool
	started time.Time
}

// NewServer builds the gin engine and registers every route
func NewServer(cfg *config.Config, serving *ml.ServingContext, source datasource.DataSource, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.IsProduction() || cfg.IsStaging() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		serving: serving,
		source:  source,
		audit:   logger.NewAuditLogger(log),
		mlLog:   logger.NewMLLogger(log),
		logger:  log,
		started: time.Now(),
	}
	if ttl := cfg.Prediction.CacheTTL(); ttl > 0 {
		s.cache = ml.NewPredictionCache(ttl, cfg.Prediction.CacheMaxSize)
	}
	if serving != nil {
		metrics.UpdateServingDrivers(serving.Drivers())
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(s.audit))
	engine.Use(corsMiddleware(cfg.Server.CorsAllowedOrigins))
	engine.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, errors.New("route not found"))
	})

	engine.GET("/health", s.handleHealth)
	engine.GET("/ready", s.handleReady)
	engine.GET("/model", s.handleModel)
	engine.GET("/schedule/:year", s.handleSchedule)
	engine.GET("/predict/:year/:race", s.handlePredict)
	if cfg.Metrics.Enabled {
		engine.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	s.engine = engine
	return s
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.engine
}

// SetReady marks the server as ready to accept traffic
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady returns whether the server is ready
func (s *Server) IsReady() bool {
	return s.ready.Load()
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.ListenAddr(),
		Handler:      s.engine,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.server.Addr).Info("API server starting")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.SetReady(s.serving != nil)

	select {
	case err, ok := <-errCh:
		s.SetReady(false)
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.SetReady(false)
	s.logger.Warn("Shutdown signal received, stopping API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("Graceful shutdown completed")
	return nil
}
