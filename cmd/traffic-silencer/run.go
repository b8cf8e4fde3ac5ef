package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/traffic-silencer/internal/core"
	"github.com/user/traffic-silencer/internal/elevate"
	"github.com/user/traffic-silencer/internal/logger"
	"github.com/user/traffic-silencer/internal/ui"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the tray application (default)",
	RunE:  runTray,
}

func runTray(cmd *cobra.Command, args []string) error {
	// netsh add/delete rule requires administrator rights
	if err := elevate.Ensure(); err != nil {
		return fmt.Errorf("failed to elevate privileges: %w\nPlease run as administrator", err)
	}

	svc, err := core.NewService(configPath, false)
	if err != nil {
		return err
	}
	if debug {
		logger.SetDebug(true)
	}
	logger.Info("Traffic Silencer starting (tray mode)")

	return ui.Run(svc)
}
