//go:build !windows

package ui

import (
	"fmt"

	"github.com/user/traffic-silencer/internal/logger"
	"github.com/user/traffic-silencer/internal/reconcile"
)

// openProcesses writes the current model to the log; there is no window
// toolkit outside Windows.
func openProcesses() {
	defer logger.Recover("openProcesses")

	groups := service.Groups()
	logger.Info("%d executables:", len(groups))
	for _, g := range groups {
		logger.Info("%s", GroupLine(g))
	}
}

func refreshProcessesWindow([]reconcile.GroupView) {}

func closeProcessesWindow() {}

func showError(message string) {
	logger.Error("%s", message)
}

// openLogFile prints the end of the log to stdout.
func openLogFile() {
	defer logger.Recover("openLogFile")

	content, err := logger.ReadLogs()
	if err != nil {
		logger.Error("Failed to read log: %v", err)
		return
	}
	fmt.Println(TailLines(content, 200))
}
