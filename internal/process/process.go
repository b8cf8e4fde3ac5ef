// Package process enumerates running processes and probes whether the
// current privilege level can inspect them.
package process

import (
	"errors"
	"fmt"
	"strings"

	ps "github.com/mitchellh/go-ps"
)

var (
	// ErrAccessDenied means the process exists but cannot be opened or queried.
	ErrAccessDenied = errors.New("process access denied")
	// ErrProcessExited means the process terminated before or during the query.
	ErrProcessExited = errors.New("process exited")
)

// Entry is one running process as reported by the OS.
type Entry struct {
	PID  int
	Name string
}

// Label returns the display text used for a process row.
func (e Entry) Label() string {
	return fmt.Sprintf("%s (PID: %d)", e.Name, e.PID)
}

// NormalizeName strips a trailing ".exe" so processes are grouped by the name
// the OS reports for them.
func NormalizeName(executable string) string {
	if len(executable) > 4 && strings.EqualFold(executable[len(executable)-4:], ".exe") {
		return executable[:len(executable)-4]
	}
	return executable
}

// Lister enumerates live processes.
type Lister struct{}

// NewLister returns a process lister for the current OS.
func NewLister() *Lister {
	return &Lister{}
}

// List returns every running process with a non-empty name.
func (l *Lister) List() ([]Entry, error) {
	procs, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	entries := make([]Entry, 0, len(procs))
	for _, p := range procs {
		name := NormalizeName(p.Executable())
		if name == "" {
			continue
		}
		entries = append(entries, Entry{PID: p.Pid(), Name: name})
	}
	return entries, nil
}
