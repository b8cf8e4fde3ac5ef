package core

import (
	"context"
	"errors"
	"time"

	"github.com/user/traffic-silencer/internal/logger"
	"github.com/user/traffic-silencer/internal/metrics"
)

// Start triggers the first pass immediately and then one pass per interval.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return errors.New("service already stopped")
	}
	s.running = true
	ctx := s.ctx
	s.mu.Unlock()

	logger.Info("Starting collection every %s", s.interval)
	s.startMetricsServer()

	s.trigger(ctx)
	go s.pollLoop(ctx)
	return nil
}

// Stop cancels the scheduler and in-flight passes and waits for them. A
// stopped service cannot be started again.
func (s *Service) Stop() error {
	logger.Info("Stopping service...")
	s.cancel()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.stopMetricsServer()
	s.passes.Wait()
	logger.Info("Service stopped")
	return nil
}

// Pass runs one complete collection pass synchronously. A pass whose
// collection yields no snapshot leaves the model unchanged.
func (s *Service) Pass(ctx context.Context) {
	start := time.Now()

	if err := s.rules.Load(ctx); err != nil {
		logger.Warning("Rule reload failed, keeping previous rules: %v", err)
	}
	snap := s.collector.Collect(ctx)
	if ctx.Err() != nil {
		logger.Debug("Pass cancelled, snapshot discarded")
		return
	}
	if snap == nil {
		logger.Warning("Pass produced no snapshot, keeping the current model")
		return
	}
	s.engine.Apply(snap)

	elapsed := time.Since(start)
	metrics.Get().PassesTotal.Inc()
	metrics.Get().PassDuration.Observe(elapsed.Seconds())
	logger.Debug("Pass finished in %s: %d executables, %d processes", elapsed, snap.Len(), snap.ProcessCount())

	s.recordPass(start, elapsed)
}

func (s *Service) pollLoop(ctx context.Context) {
	defer logger.Recover("pollLoop")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.trigger(ctx)
		}
	}
}

// trigger starts a pass in its own goroutine. A pass that starts while
// another is still running proceeds anyway; only the first clears the flag.
func (s *Service) trigger(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.passes.Add(1)
	s.mu.Unlock()

	logger.SafeGo("collectionPass", func() {
		defer s.passes.Done()

		owner := s.inFlight.SetToIf(false, true)
		if owner {
			defer s.inFlight.UnSet()
		} else {
			metrics.Get().PassesOverlapping.Inc()
			logger.Warning("Collection pass started while the previous one is still running")
		}
		s.Pass(ctx)
	})
}
