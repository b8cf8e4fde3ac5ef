// Traffic Silencer - blocks outbound traffic of selected executables
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/user/traffic-silencer/internal/config"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "traffic-silencer",
		Short: "Block outbound traffic per executable with Windows Firewall rules",
		Long: "Traffic Silencer lists running processes grouped by executable and lets you\n" +
			"block or unblock each executable's outbound traffic from the system tray.",
		SilenceUsage: true,
		RunE:         runTray,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.GetConfigPath(), "path to config.yaml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
