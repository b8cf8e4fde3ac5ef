package snapshot

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/user/traffic-silencer/internal/logger"
	"github.com/user/traffic-silencer/internal/metrics"
	"github.com/user/traffic-silencer/internal/process"
)

// Lister enumerates running processes.
type Lister interface {
	List() ([]process.Entry, error)
}

// Prober checks process accessibility and resolves executable paths.
type Prober interface {
	CanAccess(pid int) bool
	ExecutablePath(pid int) (string, error)
}

// RuleChecker reports whether an executable is blocked.
type RuleChecker interface {
	Exists(executablePath string) bool
}

// IconResolver returns icon bytes for an executable path.
type IconResolver interface {
	Resolve(path string) []byte
}

// Collector builds snapshots of the running processes.
type Collector struct {
	lister  Lister
	prober  Prober
	rules   RuleChecker
	icons   IconResolver
	workers int
}

// NewCollector creates a collector. A non-positive worker count means one
// worker per CPU. icons may be nil.
func NewCollector(lister Lister, prober Prober, rules RuleChecker, icons IconResolver, workers int) *Collector {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Collector{
		lister:  lister,
		prober:  prober,
		rules:   rules,
		icons:   icons,
		workers: workers,
	}
}

// Collect enumerates all processes, probes each on the worker pool and groups
// the accessible ones by executable name. It returns nil when the process
// list cannot be read, so callers can keep their previous model. Probe errors
// are logged and yield a partial snapshot. Cancelling ctx stops scheduling
// new probes.
func (c *Collector) Collect(ctx context.Context) *Snapshot {
	entries, err := c.lister.List()
	if err != nil {
		logger.Warning("Process listing failed: %v", err)
		return nil
	}
	metrics.Get().ProcessesSeen.Set(float64(len(entries)))

	snap := New()

	var (
		mu     sync.Mutex
		denied int
	)

	g := &errgroup.Group{}
	g.SetLimit(c.workers)

	for _, entry := range entries {
		if ctx.Err() != nil {
			logger.Debug("Collection cancelled, returning partial snapshot")
			break
		}
		entry := entry
		g.Go(func() error {
			defer logger.Recover("snapshot probe")

			if !c.prober.CanAccess(entry.PID) {
				logger.Debug("Skipping inaccessible process %s", entry.Label())
				mu.Lock()
				denied++
				mu.Unlock()
				return nil
			}

			path, err := c.prober.ExecutablePath(entry.PID)
			if err != nil {
				reason := "denied"
				if errors.Is(err, process.ErrProcessExited) {
					reason = "exited"
				}
				metrics.Get().PathResolveErrors.WithLabelValues(reason).Inc()
				logger.Debug("Failed to resolve path of %s: %v", entry.Label(), err)
				path = ""
			}

			mu.Lock()
			c.add(snap, entry, path)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, grp := range snap.Groups {
		sort.Slice(grp.Processes, func(i, j int) bool {
			return grp.Processes[i].PID < grp.Processes[j].PID
		})
	}

	if c.icons != nil {
		c.resolveIcons(ctx, snap)
	}

	metrics.Get().ProcessesDenied.Add(float64(denied))
	metrics.Get().ExecutableGroups.Set(float64(snap.Len()))
	return snap
}

// add inserts the process into its group, creating the group on first sight.
// The group's path is the first non-empty one seen, and the rule store is
// queried once with it. The caller holds the snapshot lock.
func (c *Collector) add(snap *Snapshot, entry process.Entry, path string) {
	key := Key(entry.Name)

	grp, ok := snap.Groups[key]
	if !ok {
		grp = &Group{Name: entry.Name}
		snap.Groups[key] = grp
	}
	grp.Processes = append(grp.Processes, entry)

	if grp.Path == "" && path != "" {
		grp.Path = path
		grp.Blocked = c.rules.Exists(path)
	}
}

// resolveIcons looks up one icon per group on the worker pool.
func (c *Collector) resolveIcons(ctx context.Context, snap *Snapshot) {
	g := &errgroup.Group{}
	g.SetLimit(c.workers)
	for _, grp := range snap.Groups {
		if ctx.Err() != nil {
			break
		}
		grp := grp
		g.Go(func() error {
			defer logger.Recover("snapshot icon")
			grp.Icon = c.icons.Resolve(grp.Path)
			return nil
		})
	}
	_ = g.Wait()
}
