package core

import (
	"fmt"

	"github.com/user/traffic-silencer/internal/config"
	"github.com/user/traffic-silencer/internal/logger"
)

// GetConfig returns the current configuration, or nil for a service built
// without a config file.
func (s *Service) GetConfig() *config.Config {
	if s.configManager == nil {
		return nil
	}
	return s.configManager.Get()
}

// UpdateConfig validates and saves the configuration. The debug flag applies
// immediately; interval, workers and paths apply on next start.
func (s *Service) UpdateConfig(cfg *config.Config) error {
	if s.configManager == nil {
		return fmt.Errorf("service has no config file")
	}
	if err := s.configManager.Update(cfg); err != nil {
		return err
	}
	logger.SetDebug(cfg.Log.Debug)
	return nil
}

// ReloadConfig re-reads the configuration file from disk.
func (s *Service) ReloadConfig() error {
	if s.configManager == nil {
		return fmt.Errorf("service has no config file")
	}
	if err := s.configManager.Load(); err != nil {
		return err
	}
	logger.SetDebug(s.configManager.Get().Log.Debug)
	return nil
}

// SetDebugLogging switches DEBUG output and persists the choice.
func (s *Service) SetDebugLogging(enabled bool) error {
	cfg := s.GetConfig()
	if cfg == nil {
		return fmt.Errorf("service has no config file")
	}
	updated := *cfg
	updated.Log.Debug = enabled
	if err := s.UpdateConfig(&updated); err != nil {
		return err
	}
	if enabled {
		logger.Info("Debug logging enabled")
	} else {
		logger.Info("Debug logging disabled")
	}
	return nil
}
