//go:build !windows

package process

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	processInfo "github.com/shirou/gopsutil/process"
)

// Prober reads process metadata through gopsutil.
type Prober struct{}

// NewProber returns a prober for the current OS.
func NewProber() *Prober {
	return &Prober{}
}

// CanAccess reports whether the process exists and its metadata is readable.
func (p *Prober) CanAccess(pid int) bool {
	ctx := context.Background()
	proc, err := processInfo.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return false
	}
	_, err = proc.NameWithContext(ctx)
	return err == nil
}

// ExecutablePath resolves the executable the process was started from.
func (p *Prober) ExecutablePath(pid int) (string, error) {
	ctx := context.Background()
	proc, err := processInfo.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return "", classify(pid, err)
	}
	exe, err := proc.ExeWithContext(ctx)
	if err != nil {
		return "", classify(pid, err)
	}
	return exe, nil
}

func classify(pid int, err error) error {
	switch {
	case errors.Is(err, processInfo.ErrorProcessNotRunning), errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("pid %d: %w", pid, ErrProcessExited)
	default:
		return fmt.Errorf("pid %d: %w: %v", pid, ErrAccessDenied, err)
	}
}
