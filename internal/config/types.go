// Package config handles Traffic Silencer configuration loading, saving, and validation.
package config

import (
	"runtime"
	"time"
)

// Config represents the main configuration structure.
type Config struct {
	Version         int     `yaml:"version"`
	RefreshInterval int     `yaml:"refresh_interval"` // seconds between collection passes
	Workers         int     `yaml:"workers"`          // probe workers, 0 = number of CPUs
	IconCacheSize   int     `yaml:"icon_cache_size"`
	NetshPath       string  `yaml:"netsh_path"`
	Log             Log     `yaml:"log"`
	Metrics         Metrics `yaml:"metrics"`
}

// Log configuration.
type Log struct {
	Debug bool   `yaml:"debug"`
	Dir   string `yaml:"dir,omitempty"` // empty = next to the executable
}

// Metrics configuration for the Prometheus endpoint.
type Metrics struct {
	Listen string `yaml:"listen,omitempty"` // e.g. 127.0.0.1:9464, empty = disabled
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version:         1,
		RefreshInterval: 5,
		Workers:         0,
		IconCacheSize:   512,
		NetshPath:       defaultNetshPath(),
		Log: Log{
			Debug: false,
		},
	}
}

// Interval returns the refresh interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

// WorkerCount returns the effective number of probe workers.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}
