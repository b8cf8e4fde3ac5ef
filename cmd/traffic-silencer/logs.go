package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/traffic-silencer/internal/config"
	"github.com/user/traffic-silencer/internal/logger"
	"github.com/user/traffic-silencer/internal/ui"
)

func init() {
	logsCmd.Flags().BoolVar(&logsClear, "clear", false, "truncate the log file instead of printing it")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 0, "print only the last N lines")
	rootCmd.AddCommand(logsCmd)
}

var (
	logsClear bool
	logsTail  int

	logsCmd = &cobra.Command{
		Use:   "logs",
		Short: "Print or clear the log file",
		RunE:  showLogs,
	}
)

func showLogs(cmd *cobra.Command, args []string) error {
	configManager := config.NewManager(configPath)
	if err := configManager.Load(); err != nil {
		return err
	}
	if err := logger.Init(logger.Options{Dir: configManager.Get().Log.Dir}); err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logger.Close()

	out := cmd.OutOrStdout()
	if logsClear {
		if err := logger.ClearLogs(); err != nil {
			return fmt.Errorf("failed to clear log: %w", err)
		}
		fmt.Fprintf(out, "Cleared %s\n", logger.GetLogPath())
		return nil
	}

	content, err := logger.ReadLogs()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if logsTail > 0 {
		content = ui.TailLines(content, logsTail) + "\n"
	}
	fmt.Fprint(out, content)
	return nil
}
