package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BrianCLong/govgate/pkg/cli"
	"github.com/BrianCLong/govgate/pkg/config"
	"github.com/BrianCLong/govgate/pkg/killswitch"
	"github.com/BrianCLong/govgate/pkg/policy"
)

var validateFlags struct {
	killswitchOnly bool
	policyOnly     bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate gateway configuration files",
	Long: `Validate the gateway configuration, the kill-switch file, and the
static policy ruleset without starting the server.

The command checks:
  - The main configuration file (structure, required fields, value ranges)
  - The kill-switch configuration file, when present
  - The static policy ruleset, when the evaluator runs in static mode

A missing kill-switch file is reported but does not fail validation:
the gateway treats it as "no config", which fails closed in prod.

Examples:
  # Validate everything named by the config
  govgate validate --config /etc/govgate/config.yaml

  # Validate only the kill-switch file
  govgate validate --killswitch-only`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.killswitchOnly, "killswitch-only", false, "only validate the kill-switch file")
	validateCmd.Flags().BoolVar(&validateFlags.policyOnly, "policy-only", false, "only validate the policy ruleset")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("", err.Error())
	}
	fmt.Printf("✓ Configuration valid: %s\n", cfgFile)

	failed := false

	if !validateFlags.policyOnly {
		if err := validateKillSwitchFile(cfg.KillSwitch.SourcePath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ Kill-switch config invalid: %v\n", err)
			failed = true
		}
	}

	if !validateFlags.killswitchOnly && cfg.Policy.Mode != "http" {
		if _, err := policy.NewStaticEvaluator(cfg.Policy.RulesPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ Policy ruleset invalid: %v\n", err)
			failed = true
		} else {
			fmt.Printf("✓ Policy ruleset valid: %s\n", cfg.Policy.RulesPath)
		}
	}

	if failed {
		return cli.NewCommandError("validate", fmt.Errorf("validation failed"))
	}
	return nil
}

func validateKillSwitchFile(path string) error {
	source := killswitch.NewFileSource(path)
	ksCfg, err := source.Load(context.Background())
	if err != nil {
		return err
	}
	if ksCfg == nil {
		fmt.Printf("  Kill-switch config absent at %s (fails closed in prod)\n", path)
		return nil
	}
	if err := ksCfg.Validate(); err != nil {
		return err
	}
	fmt.Printf("✓ Kill-switch config valid: %s (mode %s)\n", path, ksCfg.Mode)
	return nil
}
