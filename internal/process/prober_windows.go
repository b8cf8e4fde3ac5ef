//go:build windows

package process

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

const (
	stillActive = 259
	maxLongPath = 32768
)

// Prober opens processes through the Win32 API.
type Prober struct{}

// NewProber returns a prober for the current OS.
func NewProber() *Prober {
	return &Prober{}
}

// CanAccess reports whether the process can be opened for querying and reading.
func (p *Prober) CanAccess(pid int) bool {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_INFORMATION|windows.PROCESS_VM_READ, false, uint32(pid))
	if err != nil {
		return false
	}
	windows.CloseHandle(h)
	return true
}

// ExecutablePath resolves the full image path of the process.
func (p *Prober) ExecutablePath(pid int) (string, error) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return "", classifyOpenError(pid, err)
	}
	defer windows.CloseHandle(h)

	size := uint32(windows.MAX_PATH)
	for {
		buf := make([]uint16, size)
		n := size
		err = windows.QueryFullProcessImageName(h, 0, &buf[0], &n)
		if err == nil {
			return windows.UTF16ToString(buf[:n]), nil
		}
		if errors.Is(err, windows.ERROR_INSUFFICIENT_BUFFER) && size < maxLongPath {
			size *= 2
			if size > maxLongPath {
				size = maxLongPath
			}
			continue
		}
		break
	}

	if hasExited(h) {
		return "", fmt.Errorf("pid %d: %w", pid, ErrProcessExited)
	}
	return "", fmt.Errorf("pid %d: %w: %v", pid, ErrAccessDenied, err)
}

func classifyOpenError(pid int, err error) error {
	// OpenProcess reports a PID that no longer exists as an invalid parameter.
	if errors.Is(err, windows.ERROR_INVALID_PARAMETER) {
		return fmt.Errorf("pid %d: %w", pid, ErrProcessExited)
	}
	return fmt.Errorf("pid %d: %w: %v", pid, ErrAccessDenied, err)
}

func hasExited(h windows.Handle) bool {
	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}
	return code != stillActive
}
