package core

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/user/traffic-silencer/internal/logger"
	"github.com/user/traffic-silencer/internal/metrics"
)

func (s *Service) startMetricsServer() {
	cfg := s.GetConfig()
	if cfg == nil || cfg.Metrics.Listen == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              cfg.Metrics.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.mu.Lock()
	s.metricsServer = srv
	s.mu.Unlock()

	logger.SafeGo("metricsServer", func() {
		logger.Info("Serving metrics on http://%s/metrics", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed: %v", err)
		}
	})
}

func (s *Service) stopMetricsServer() {
	s.mu.Lock()
	srv := s.metricsServer
	s.metricsServer = nil
	s.mu.Unlock()
	if srv == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warning("Metrics server shutdown: %v", err)
	}
}
