package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/traffic-silencer/internal/core"
	"github.com/user/traffic-silencer/internal/logger"
	"github.com/user/traffic-silencer/internal/reconcile"
)

func init() {
	listCmd.Flags().StringVarP(&listFilter, "filter", "f", "", "only show executables whose name contains this text")
	rootCmd.AddCommand(listCmd)
}

var (
	listFilter string

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Run one collection pass and print executables with their block state",
		RunE:  list,
	}
)

// newConsoleService creates a service for one-shot commands.
func newConsoleService() (*core.Service, error) {
	svc, err := core.NewService(configPath, true)
	if err != nil {
		return nil, err
	}
	if debug {
		logger.SetDebug(true)
	}
	return svc, nil
}

func list(cmd *cobra.Command, args []string) error {
	svc, err := newConsoleService()
	if err != nil {
		return err
	}
	defer logger.Close()

	svc.Pass(context.Background())
	groups := reconcile.Filter(svc.Groups(), listFilter)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BLOCKED\tEXECUTABLE\tPIDS\tPATH")
	for _, g := range groups {
		blocked := ""
		if g.Blocked {
			blocked = "yes"
		}
		pids := make([]string, len(g.Processes))
		for i, p := range g.Processes {
			pids[i] = fmt.Sprint(p.PID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", blocked, g.Name, strings.Join(pids, ","), g.Path)
	}
	return w.Flush()
}
