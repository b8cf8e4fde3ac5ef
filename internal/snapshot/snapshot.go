// Package snapshot enumerates live processes and groups them by executable.
package snapshot

import (
	"sort"
	"strings"

	"github.com/user/traffic-silencer/internal/process"
)

// Group is one executable and the processes currently running it.
type Group struct {
	Name      string
	Path      string
	Icon      []byte
	Blocked   bool
	Processes []process.Entry
}

// Snapshot maps lower-cased executable names to their groups. It is produced
// by a single Collect pass and handed off to the reconciliation engine.
type Snapshot struct {
	Groups map[string]*Group
}

// New returns an empty snapshot.
func New() *Snapshot {
	return &Snapshot{Groups: make(map[string]*Group)}
}

// Key returns the grouping key for an executable name.
func Key(name string) string {
	return strings.ToLower(name)
}

// Get returns the group for name, if any.
func (s *Snapshot) Get(name string) (*Group, bool) {
	g, ok := s.Groups[Key(name)]
	return g, ok
}

// Len returns the number of groups.
func (s *Snapshot) Len() int {
	return len(s.Groups)
}

// Sorted returns the groups ordered by name, case-insensitively with ties
// broken by the exact name.
func (s *Snapshot) Sorted() []*Group {
	groups := make([]*Group, 0, len(s.Groups))
	for _, g := range s.Groups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return Less(groups[i].Name, groups[j].Name)
	})
	return groups
}

// Less orders executable names case-insensitively, then by exact name.
func Less(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// ProcessCount returns the total number of processes in the snapshot.
func (s *Snapshot) ProcessCount() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Processes)
	}
	return n
}
