package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "govgate",
	Short: "Govgate - runtime policy enforcement gateway",
	Long: `Govgate is a runtime policy enforcement gateway for multi-tenant services.

Every request passing through the gateway receives a sealed governance
verdict built from:
  - Tenant context resolution and cross-tenant isolation
  - Environment separation and privilege-tier checks
  - Operational kill switches (deny-all, read-only, route deny)
  - An external policy evaluator's recommendation

Verdicts are stamped on responses as X-Governance-* headers and written
to the audit store; denials and break-glass overrides are written before
the response is returned.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
