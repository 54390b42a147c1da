package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/BrianCLong/govgate/pkg/cli"
	"github.com/BrianCLong/govgate/pkg/config"
	"github.com/BrianCLong/govgate/pkg/killswitch"
)

var killswitchFlags struct {
	limit int
}

var killswitchCmd = &cobra.Command{
	Use:   "killswitch",
	Short: "Inspect kill-switch state",
	Long: `Inspect kill-switch configuration state.

Subcommands:
  history - Show recent configuration changes from the history journal`,
}

var killswitchHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent kill-switch configuration changes",
	Long: `Show recent kill-switch configuration changes, newest first.

Requires the history journal to be enabled in the gateway config
(kill_switch.history.enabled). Each entry records the version, mode,
and config hash that went live, so operators can prove which
configuration governed any past decision.`,
	RunE: showKillswitchHistory,
}

func init() {
	rootCmd.AddCommand(killswitchCmd)
	killswitchCmd.AddCommand(killswitchHistoryCmd)

	killswitchHistoryCmd.Flags().IntVar(&killswitchFlags.limit, "limit", 20, "max entries")
}

func showKillswitchHistory(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if !cfg.KillSwitch.History.Enabled {
		return cli.NewConfigError("kill_switch.history.enabled", "history journal is disabled")
	}

	history, err := killswitch.OpenHistory(cfg.KillSwitch.History.Path)
	if err != nil {
		return cli.NewCommandError("killswitch history", err)
	}
	defer history.Close()

	entries, err := history.Recent(context.Background(), killswitchFlags.limit)
	if err != nil {
		return cli.NewCommandError("killswitch history", err)
	}

	if len(entries) == 0 {
		fmt.Println("No history entries")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %-10s  %-9s  version=%s  overrides=%d  routes=%d  hash=%.12s\n",
			e.AppliedAt.Format(time.RFC3339),
			e.Mode,
			e.Scope,
			e.Version,
			e.TenantOverrides,
			e.RoutePatterns,
			e.ConfigHash,
		)
	}
	return nil
}
