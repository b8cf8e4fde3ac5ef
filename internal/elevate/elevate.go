// Package elevate checks for and acquires the administrator rights netsh
// needs to add and delete firewall rules.
package elevate

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvElevated is set in the environment of a relaunched process so a failed
// elevation does not loop.
const EnvElevated = "TRAFFIC_SILENCER_ELEVATED"

// Ensure relaunches the executable elevated when the current process lacks
// administrator rights. It returns nil when already elevated; on a successful
// relaunch the current process exits.
func Ensure() error {
	if IsAdmin() {
		return nil
	}
	if os.Getenv(EnvElevated) != "" {
		return fmt.Errorf("still not elevated after relaunch")
	}
	return RunAsAdmin()
}

func executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}
