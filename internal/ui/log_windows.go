//go:build windows

package ui

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/user/traffic-silencer/internal/logger"
	"github.com/user/traffic-silencer/internal/procutil"
)

// openLogFile opens the log file in the default editor.
func openLogFile() {
	defer logger.Recover("openLogFile")

	logPath := logger.GetLogPath()
	if logPath == "" {
		showError("The log file is not open.")
		return
	}
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		os.MkdirAll(filepath.Dir(logPath), 0755)
		os.WriteFile(logPath, []byte("Traffic Silencer Log\n"), 0644)
	}
	cmd := exec.Command("cmd", "/c", "start", "", logPath)
	procutil.HideWindow(cmd)
	if err := cmd.Start(); err != nil {
		logger.Error("Failed to open log file: %v", err)
	}
}
