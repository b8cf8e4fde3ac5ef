// Package firewall maintains the cache of executables blocked by outbound
// firewall rules and creates or deletes those rules through netsh.
package firewall

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/user/traffic-silencer/internal/logger"
	"github.com/user/traffic-silencer/internal/metrics"
)

// ErrEmptyPath is logged when a rule change is requested for an executable
// whose path could not be resolved.
var ErrEmptyPath = errors.New("executable path is empty")

// Runner executes a netsh command with the given arguments.
type Runner interface {
	Run(ctx context.Context, args ...string) (output []byte, exitCode int, err error)
}

type mutation struct {
	seq     uint64
	key     string
	path    string
	present bool
}

// Store caches which executable paths have a block rule.
//
// Load replaces the cache with the firewall's current listing. Add and Remove
// run their command without holding the cache lock, so a hung command never
// blocks readers or a concurrent Load. Successful mutations are journaled
// until every Load that could have missed them has been applied.
type Store struct {
	runner Runner

	mu            sync.RWMutex
	rules         map[string]string // lower-cased path -> path
	seq           uint64
	mutations     []mutation
	loadTicket    uint64
	appliedTicket uint64
}

// NewStore creates an empty rule store backed by runner.
func NewStore(runner Runner) *Store {
	return &Store{
		runner: runner,
		rules:  make(map[string]string),
	}
}

// Load reloads the cache from the firewall's rule listing. On failure the
// previous cache is kept and the error is returned.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loadTicket++
	ticket := s.loadTicket
	startSeq := s.seq
	s.mu.Unlock()

	out, code, err := s.runner.Run(ctx, "advfirewall", "firewall", "show", "rule", "name=all")
	if err != nil {
		metrics.Get().RuleLoads.WithLabelValues(metrics.Result(false)).Inc()
		return fmt.Errorf("failed to list firewall rules: %w", err)
	}

	var rules map[string]string
	switch {
	case code == 0:
		rules = ParseRuleListing(bytes.NewReader(out))
	case bytes.Contains(out, []byte("No rules match")):
		rules = make(map[string]string)
	default:
		metrics.Get().RuleLoads.WithLabelValues(metrics.Result(false)).Inc()
		return fmt.Errorf("netsh show rule exited with code %d: %s", code, firstLine(out))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket < s.appliedTicket {
		// A newer listing is already in place.
		logger.Debug("Discarding stale rule listing #%d (applied #%d)", ticket, s.appliedTicket)
		return nil
	}

	kept := s.mutations[:0]
	for _, m := range s.mutations {
		if m.seq <= startSeq {
			continue
		}
		if m.present {
			rules[m.key] = m.path
		} else {
			delete(rules, m.key)
		}
		kept = append(kept, m)
	}
	s.mutations = kept
	s.rules = rules
	s.appliedTicket = ticket

	metrics.Get().RuleLoads.WithLabelValues(metrics.Result(true)).Inc()
	metrics.Get().RulesCached.Set(float64(len(rules)))
	logger.Debug("Loaded %d block rules", len(rules))
	return nil
}

// Exists reports whether a block rule is cached for the executable path.
// The lookup is case-insensitive; an empty path never matches.
func (s *Store) Exists(executablePath string) bool {
	if executablePath == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rules[strings.ToLower(executablePath)]
	return ok
}

// Add creates an outbound block rule for the executable and reports whether
// netsh succeeded. The cache is only updated on success.
func (s *Store) Add(ctx context.Context, executablePath string) bool {
	if executablePath == "" {
		logger.Warning("Cannot add block rule: %v", ErrEmptyPath)
		return false
	}

	ok := s.run(ctx, "add",
		"advfirewall", "firewall", "add", "rule",
		"name="+RuleName(executablePath),
		"dir=out",
		"program="+executablePath,
		"action=block",
		"enable=yes")
	if !ok {
		return false
	}

	s.record(executablePath, true)
	logger.Rule("Blocked outbound traffic for %s", executablePath)
	return true
}

// Remove deletes the block rule for the executable and reports whether netsh
// succeeded. The cache is only updated on success.
func (s *Store) Remove(ctx context.Context, executablePath string) bool {
	if executablePath == "" {
		logger.Warning("Cannot remove block rule: %v", ErrEmptyPath)
		return false
	}

	ok := s.run(ctx, "delete",
		"advfirewall", "firewall", "delete", "rule",
		"name="+RuleName(executablePath))
	if !ok {
		return false
	}

	s.record(executablePath, false)
	logger.Rule("Unblocked outbound traffic for %s", executablePath)
	return true
}

// Paths returns the cached blocked paths, sorted case-insensitively.
func (s *Store) Paths() []string {
	s.mu.RLock()
	paths := make([]string, 0, len(s.rules))
	for _, p := range s.rules {
		paths = append(paths, p)
	}
	s.mu.RUnlock()

	sort.Slice(paths, func(i, j int) bool {
		return strings.ToLower(paths[i]) < strings.ToLower(paths[j])
	})
	return paths
}

func (s *Store) run(ctx context.Context, op string, args ...string) bool {
	out, code, err := s.runner.Run(ctx, args...)
	ok := err == nil && code == 0
	metrics.Get().RuleCommands.WithLabelValues(op, metrics.Result(ok)).Inc()

	switch {
	case err != nil:
		logger.Warning("netsh %s rule failed to run: %v", op, err)
	case code != 0:
		logger.Warning("netsh %s rule exited with code %d: %s", op, code, firstLine(out))
	}
	return ok
}

func (s *Store) record(executablePath string, present bool) {
	key := strings.ToLower(executablePath)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.mutations = append(s.mutations, mutation{
		seq:     s.seq,
		key:     key,
		path:    executablePath,
		present: present,
	})
	if present {
		s.rules[key] = executablePath
	} else {
		delete(s.rules, key)
	}
	metrics.Get().RulesCached.Set(float64(len(s.rules)))
}

func firstLine(out []byte) string {
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line)
}
