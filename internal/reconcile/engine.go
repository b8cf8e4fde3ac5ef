// Package reconcile merges process snapshots into the long-lived model shown
// to the operator and applies the operator's block toggles.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/user/traffic-silencer/internal/logger"
	"github.com/user/traffic-silencer/internal/metrics"
	"github.com/user/traffic-silencer/internal/process"
	"github.com/user/traffic-silencer/internal/snapshot"
)

// ErrGroupNotFound is returned when a toggle names an executable that is not
// in the model.
var ErrGroupNotFound = errors.New("executable group not found")

// RuleStore creates and deletes block rules.
type RuleStore interface {
	Add(ctx context.Context, executablePath string) bool
	Remove(ctx context.Context, executablePath string) bool
}

// GroupView is a copy of one model entry, safe to hand to presentation.
type GroupView struct {
	Name      string
	Path      string
	Icon      []byte
	Blocked   bool
	Processes []process.Entry
}

// Engine owns the ordered model of executable groups. All model writes happen
// under mu; rule commands and observers run outside it. toggleMu serializes
// toggles from the flag write through the rule command so the flag and the
// firewall end in the same state.
type Engine struct {
	rules    RuleStore
	toggleMu sync.Mutex

	mu        sync.Mutex
	groups    []*snapshot.Group
	loaded    bool
	selected  string
	observers []func([]GroupView)
}

// NewEngine creates an empty engine that toggles rules through rules.
func NewEngine(rules RuleStore) *Engine {
	return &Engine{rules: rules}
}

// OnChange registers fn to receive the model after every change.
func (e *Engine) OnChange(fn func([]GroupView)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

// Apply merges snap into the model: the first snapshot replaces it, later
// ones are diffed in. The choice and the merge happen under one lock.
func (e *Engine) Apply(snap *snapshot.Snapshot) {
	e.mu.Lock()
	if !e.loaded {
		e.initialLoadLocked(snap)
	} else {
		e.refreshLocked(snap)
	}
	views, observers := e.viewsLocked(), e.observersLocked()
	e.mu.Unlock()

	notify(observers, views)
}

// InitialLoad replaces the model with the snapshot's groups sorted by name
// and clears the selection.
func (e *Engine) InitialLoad(snap *snapshot.Snapshot) {
	e.mu.Lock()
	e.initialLoadLocked(snap)
	views, observers := e.viewsLocked(), e.observersLocked()
	e.mu.Unlock()

	notify(observers, views)
}

// Refresh diffs snap into the model. Groups that disappeared are removed, new
// groups are inserted at their sorted position and existing groups only get
// their process list replaced; their blocked flag, path and icon are kept.
func (e *Engine) Refresh(snap *snapshot.Snapshot) {
	e.mu.Lock()
	e.refreshLocked(snap)
	views, observers := e.viewsLocked(), e.observersLocked()
	e.mu.Unlock()

	notify(observers, views)
}

func (e *Engine) initialLoadLocked(snap *snapshot.Snapshot) {
	e.groups = snap.Sorted()
	e.loaded = true
	e.selected = ""
	e.updateGauges()
	logger.Debug("Initial load: %d executables", len(e.groups))
}

func (e *Engine) refreshLocked(snap *snapshot.Snapshot) {
	kept := e.groups[:0]
	present := make(map[string]bool, len(e.groups))
	removed := 0
	for _, grp := range e.groups {
		fresh, ok := snap.Get(grp.Name)
		if !ok {
			removed++
			continue
		}
		grp.Processes = fresh.Processes
		present[snapshot.Key(grp.Name)] = true
		kept = append(kept, grp)
	}
	for i := len(kept); i < len(e.groups); i++ {
		e.groups[i] = nil
	}
	e.groups = kept

	added := 0
	for _, fresh := range snap.Sorted() {
		if present[snapshot.Key(fresh.Name)] {
			continue
		}
		e.insertLocked(fresh)
		added++
	}

	e.loaded = true
	if e.selected != "" && e.indexLocked(e.selected) < 0 {
		e.selected = ""
	}
	e.updateGauges()

	if added > 0 || removed > 0 {
		logger.Debug("Refresh: %d added, %d removed, %d executables", added, removed, len(e.groups))
	}
}

// Groups returns a copy of the model.
func (e *Engine) Groups() []GroupView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewsLocked()
}

// Group returns a copy of the named group.
func (e *Engine) Group(name string) (GroupView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexLocked(name)
	if i < 0 {
		return GroupView{}, false
	}
	return view(e.groups[i]), true
}

// Select marks the named group as selected. An empty name clears the
// selection. It reports whether the group exists.
func (e *Engine) Select(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if name == "" {
		e.selected = ""
		return true
	}
	i := e.indexLocked(name)
	if i < 0 {
		return false
	}
	e.selected = e.groups[i].Name
	return true
}

// Selected returns the selected group's name, if any.
func (e *Engine) Selected() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected, e.selected != ""
}

// SetBlocked sets the named group's blocked flag and then creates or deletes
// its rule. The flag is updated and observers notified before the command
// runs; it is not reverted when the command fails. Setting the current value
// runs no command and reports success. Toggles run one at a time; observers
// must not call SetBlocked.
func (e *Engine) SetBlocked(ctx context.Context, name string, blocked bool) (bool, error) {
	e.toggleMu.Lock()
	defer e.toggleMu.Unlock()

	e.mu.Lock()
	i := e.indexLocked(name)
	if i < 0 {
		e.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrGroupNotFound, name)
	}
	grp := e.groups[i]
	if grp.Blocked == blocked {
		e.mu.Unlock()
		return true, nil
	}
	grp.Blocked = blocked
	path := grp.Path
	e.updateGauges()
	views, observers := e.viewsLocked(), e.observersLocked()
	e.mu.Unlock()

	notify(observers, views)

	var ok bool
	if blocked {
		ok = e.rules.Add(ctx, path)
	} else {
		ok = e.rules.Remove(ctx, path)
	}
	if !ok {
		logger.Warning("Rule change for %s did not apply (blocked=%v, path=%q); model and firewall disagree until the next pass",
			name, blocked, path)
	}
	return ok, nil
}

// RemoveAll unblocks every blocked group. It continues past failures and
// returns an error naming each executable whose rule could not be removed.
func (e *Engine) RemoveAll(ctx context.Context) error {
	e.mu.Lock()
	var names []string
	for _, grp := range e.groups {
		if grp.Blocked {
			names = append(names, grp.Name)
		}
	}
	e.mu.Unlock()

	var result *multierror.Error
	for _, name := range names {
		ok, err := e.SetBlocked(ctx, name, false)
		switch {
		case err != nil:
			result = multierror.Append(result, err)
		case !ok:
			result = multierror.Append(result, fmt.Errorf("failed to remove block rule for %s", name))
		}
	}

	logger.Info("Removed block rules for %d of %d executables", len(names)-errorCount(result), len(names))
	return result.ErrorOrNil()
}

// MatchFilter reports whether name contains filter, ignoring case. An empty
// filter matches everything.
func MatchFilter(name, filter string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(filter))
}

// Filter returns the views whose name matches filter.
func Filter(views []GroupView, filter string) []GroupView {
	if filter == "" {
		return views
	}
	out := make([]GroupView, 0, len(views))
	for _, v := range views {
		if MatchFilter(v.Name, filter) {
			out = append(out, v)
		}
	}
	return out
}

func (e *Engine) insertLocked(grp *snapshot.Group) {
	i := sort.Search(len(e.groups), func(i int) bool {
		return snapshot.Less(grp.Name, e.groups[i].Name)
	})
	e.groups = append(e.groups, nil)
	copy(e.groups[i+1:], e.groups[i:])
	e.groups[i] = grp
}

func (e *Engine) indexLocked(name string) int {
	key := snapshot.Key(name)
	for i, grp := range e.groups {
		if snapshot.Key(grp.Name) == key {
			return i
		}
	}
	return -1
}

func (e *Engine) viewsLocked() []GroupView {
	views := make([]GroupView, len(e.groups))
	for i, grp := range e.groups {
		views[i] = view(grp)
	}
	return views
}

func (e *Engine) observersLocked() []func([]GroupView) {
	return append([]func([]GroupView){}, e.observers...)
}

func (e *Engine) updateGauges() {
	blocked := 0
	for _, grp := range e.groups {
		if grp.Blocked {
			blocked++
		}
	}
	metrics.Get().BlockedExecutables.Set(float64(blocked))
}

func view(grp *snapshot.Group) GroupView {
	return GroupView{
		Name:      grp.Name,
		Path:      grp.Path,
		Icon:      grp.Icon,
		Blocked:   grp.Blocked,
		Processes: append([]process.Entry(nil), grp.Processes...),
	}
}

func notify(observers []func([]GroupView), views []GroupView) {
	for _, fn := range observers {
		func() {
			defer logger.Recover("model observer")
			fn(views)
		}()
	}
}

func errorCount(err *multierror.Error) int {
	if err == nil {
		return 0
	}
	return len(err.Errors)
}
