package config

import (
	"fmt"
	"net"
)

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Version < 1 {
		return fmt.Errorf("invalid config version")
	}
	if c.RefreshInterval < 1 || c.RefreshInterval > 3600 {
		return fmt.Errorf("refresh_interval must be between 1 and 3600 seconds")
	}
	if c.Workers < 0 || c.Workers > 256 {
		return fmt.Errorf("workers must be between 0 and 256")
	}
	if c.IconCacheSize < 1 {
		return fmt.Errorf("icon_cache_size must be positive")
	}
	if c.NetshPath == "" {
		return fmt.Errorf("netsh_path is required")
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}
	return nil
}

// Validate validates metrics configuration.
func (m *Metrics) Validate() error {
	if m.Listen == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(m.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", m.Listen, err)
	}
	return nil
}
