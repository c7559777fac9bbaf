// Package server exposes the analyzer over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/seo-optimizer/metasight/analyzer"
	"github.com/seo-optimizer/metasight/config"
	"github.com/seo-optimizer/metasight/logging"
	"github.com/seo-optimizer/metasight/metrics"
	"github.com/seo-optimizer/metasight/middleware"
)

const shutdownTimeout = 30 * time.Second

// Server wires the analyzer, statistics and metrics into a gin router
type Server struct {
	router     *gin.Engine
	analyzer   *analyzer.Analyzer
	statistics *logging.Statistics
	metrics    *metrics.Metrics
	logger     logrus.FieldLogger
	port       string
}

// New builds the router. statistics and m may be nil.
func New(cfg config.Config, a *analyzer.Analyzer, statistics *logging.Statistics, m *metrics.Metrics, logger logrus.FieldLogger) *Server {
	gin.SetMode(cfg.GinMode)

	s := &Server{
		router:     gin.New(),
		analyzer:   a,
		statistics: statistics,
		metrics:    m,
		logger:     logger,
		port:       cfg.Port,
	}

	r := s.router
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics(m))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept-Encoding", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	r.Use(cors.New(corsConfig))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	if statistics != nil {
		r.Use(middleware.StatsMiddleware(statistics, logger))
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	api := r.Group("/api")
	api.Use(rateLimiter.RateLimit())
	{
		api.GET("/health", s.health)
		api.POST("/analyze", s.analyze)
		api.POST("/extract", s.extract)
		api.GET("/report", s.renderReport)
		api.GET("/statistics", s.requestStatistics)
		api.GET("/statistics/monthly", s.monthlyStatistics)
	}

	r.GET("/metrics", gin.WrapH(m.Handler()))

	return s
}

// Handler returns the HTTP handler serving all routes
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured port until ctx is cancelled, then shuts down
// gracefully and flushes statistics.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Server starting on http://localhost:%s", s.port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server forced to shutdown: %w", err))
	}
	if s.statistics != nil {
		if err := s.statistics.Save(); err != nil {
			errs = append(errs, fmt.Errorf("failed to save request statistics: %w", err))
		}
	}
	if err := s.analyzer.Shutdown(); err != nil {
		errs = append(errs, err)
	}

	s.logger.Info("Server stopped")
	return errors.Join(errs...)
}
