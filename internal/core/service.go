// Package core runs the periodic collection passes and exposes the model and
// block toggles to the presentation layer.
package core

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/tevino/abool"

	"github.com/user/traffic-silencer/internal/config"
	"github.com/user/traffic-silencer/internal/firewall"
	"github.com/user/traffic-silencer/internal/iconres"
	"github.com/user/traffic-silencer/internal/logger"
	"github.com/user/traffic-silencer/internal/process"
	"github.com/user/traffic-silencer/internal/reconcile"
	"github.com/user/traffic-silencer/internal/snapshot"
)

// RuleStore is the firewall rule cache used by the service.
type RuleStore interface {
	Load(ctx context.Context) error
	Exists(executablePath string) bool
	Add(ctx context.Context, executablePath string) bool
	Remove(ctx context.Context, executablePath string) bool
	Paths() []string
}

// Collector produces process snapshots.
type Collector interface {
	Collect(ctx context.Context) *snapshot.Snapshot
}

// StatusListener is a callback invoked after every collection pass.
type StatusListener func(status *Status)

// Service schedules collection passes and owns the reconciliation engine.
type Service struct {
	mu             sync.RWMutex
	configManager  *config.Manager
	rules          RuleStore
	collector      Collector
	engine         *reconcile.Engine
	interval       time.Duration
	ctx            context.Context
	cancel         context.CancelFunc
	running        bool
	passes         sync.WaitGroup
	inFlight       *abool.AtomicBool
	metricsServer  *http.Server
	status         Status
	statusListener StatusListener
}

// NewService loads the configuration at configPath, initializes logging and
// wires the firewall, process and icon components. A console service echoes
// log lines to stderr instead of redirecting stderr into the log file.
func NewService(configPath string, console bool) (*Service, error) {
	configManager := config.NewManager(configPath)
	loadErr := configManager.Load()
	cfg := configManager.Get()

	if err := logger.Init(logger.Options{
		Dir:            cfg.Log.Dir,
		Debug:          cfg.Log.Debug,
		RedirectStderr: !console,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if console {
		logger.SetEcho(os.Stderr)
	}
	logger.Info("Traffic Silencer initializing...")

	if loadErr != nil {
		logger.Error("Failed to load config: %v", loadErr)
		return nil, fmt.Errorf("failed to load config: %w", loadErr)
	}
	logger.Info("Configuration loaded from %s", configManager.Path())

	store := firewall.NewStore(&firewall.NetshRunner{Path: cfg.NetshPath})
	collector := snapshot.NewCollector(
		process.NewLister(),
		process.NewProber(),
		store,
		iconres.NewResolver(cfg.IconCacheSize),
		cfg.WorkerCount(),
	)

	s := New(cfg.Interval(), store, collector)
	s.configManager = configManager

	logger.Info("Service initialized (interval %s, %d workers)", cfg.Interval(), cfg.WorkerCount())
	return s, nil
}

// New creates a service from already constructed components.
func New(interval time.Duration, rules RuleStore, collector Collector) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		rules:     rules,
		collector: collector,
		engine:    reconcile.NewEngine(rules),
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
		inFlight:  abool.New(),
	}
}

// SetStatusListener sets a callback that will be called after every pass.
func (s *Service) SetStatusListener(listener StatusListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusListener = listener
}

// OnChange registers a callback receiving the model after every change.
func (s *Service) OnChange(fn func([]reconcile.GroupView)) {
	s.engine.OnChange(fn)
}

// Engine returns the reconciliation engine.
func (s *Service) Engine() *reconcile.Engine {
	return s.engine
}

// Rules returns the firewall rule cache.
func (s *Service) Rules() RuleStore {
	return s.rules
}

// Groups returns a copy of the current model.
func (s *Service) Groups() []reconcile.GroupView {
	return s.engine.Groups()
}

// SetBlocked toggles the block rule for the named executable.
func (s *Service) SetBlocked(name string, blocked bool) (bool, error) {
	return s.engine.SetBlocked(s.ctx, name, blocked)
}

// RemoveAll unblocks every blocked executable in the model.
func (s *Service) RemoveAll() error {
	return s.engine.RemoveAll(s.ctx)
}
