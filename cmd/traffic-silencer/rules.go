package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/traffic-silencer/internal/elevate"
	"github.com/user/traffic-silencer/internal/logger"
)

func init() {
	rootCmd.AddCommand(rulesCmd, blockCmd, unblockCmd, removeAllCmd)
}

var (
	rulesCmd = &cobra.Command{
		Use:   "rules",
		Short: "List executables blocked by Traffic Silencer rules",
		RunE:  listRules,
	}
	blockCmd = &cobra.Command{
		Use:   "block PATH",
		Short: "Block outbound traffic of the executable at PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return changeRule(args[0], true)
		},
	}
	unblockCmd = &cobra.Command{
		Use:   "unblock PATH",
		Short: "Remove the block rule of the executable at PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return changeRule(args[0], false)
		},
	}
	removeAllCmd = &cobra.Command{
		Use:   "remove-all",
		Short: "Unblock every running executable that is currently blocked",
		RunE:  removeAll,
	}
)

func listRules(cmd *cobra.Command, args []string) error {
	svc, err := newConsoleService()
	if err != nil {
		return err
	}
	defer logger.Close()

	if err := svc.Rules().Load(context.Background()); err != nil {
		return err
	}
	for _, path := range svc.Rules().Paths() {
		fmt.Println(path)
	}
	return nil
}

func changeRule(path string, blocked bool) error {
	svc, err := newConsoleService()
	if err != nil {
		return err
	}
	defer logger.Close()
	warnIfNotAdmin()

	ctx := context.Background()
	if err := svc.Rules().Load(ctx); err != nil {
		return err
	}

	rules := svc.Rules()
	if rules.Exists(path) == blocked {
		fmt.Printf("%s is already %s\n", path, state(blocked))
		return nil
	}

	ok := false
	if blocked {
		ok = rules.Add(ctx, path)
	} else {
		ok = rules.Remove(ctx, path)
	}
	if !ok {
		return fmt.Errorf("netsh failed to change the rule for %s", path)
	}
	fmt.Printf("%s is now %s\n", path, state(blocked))
	return nil
}

func removeAll(cmd *cobra.Command, args []string) error {
	svc, err := newConsoleService()
	if err != nil {
		return err
	}
	defer logger.Close()
	warnIfNotAdmin()

	svc.Pass(context.Background())
	return svc.RemoveAll()
}

func warnIfNotAdmin() {
	if !elevate.IsAdmin() {
		logger.Warning("Not running as administrator; netsh will refuse rule changes")
	}
}

func state(blocked bool) string {
	if blocked {
		return "blocked"
	}
	return "unblocked"
}
