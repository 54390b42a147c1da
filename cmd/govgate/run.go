package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/BrianCLong/govgate/pkg/audit"
	"github.com/BrianCLong/govgate/pkg/audit/retention"
	"github.com/BrianCLong/govgate/pkg/audit/storage"
	"github.com/BrianCLong/govgate/pkg/cli"
	"github.com/BrianCLong/govgate/pkg/config"
	"github.com/BrianCLong/govgate/pkg/gateway"
	"github.com/BrianCLong/govgate/pkg/guard"
	"github.com/BrianCLong/govgate/pkg/killswitch"
	"github.com/BrianCLong/govgate/pkg/policy"
	"github.com/BrianCLong/govgate/pkg/server"
	"github.com/BrianCLong/govgate/pkg/telemetry/logging"
	"github.com/BrianCLong/govgate/pkg/telemetry/metrics"
	"github.com/BrianCLong/govgate/pkg/tenant"
	"github.com/BrianCLong/govgate/pkg/verdict"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the enforcement gateway",
	Long: `Start the enforcement gateway with the specified configuration.

The gateway listens on the configured address and runs every request
through tenant resolution, the isolation guard, the policy evaluator,
and verdict sealing before proxying it to the upstream (or answering
204 in sidecar mode).

Examples:
  # Start with default config
  govgate run

  # Start with custom config
  govgate run --config /etc/govgate/config.yaml

  # Override listen address
  govgate run --listen 0.0.0.0:8080

  # Validate config without starting the server
  govgate run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Govgate v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics, nil)
	}

	// Tenant resolution.
	registry := tenant.NewRegistry(cfg.Resolver.Principals)
	resolver := tenant.NewResolver(registry, cfg.Resolver)
	logger.Info("tenant resolver initialized",
		"environment", string(resolver.Environment()),
		"principals", len(cfg.Resolver.Principals),
	)

	// Kill-switch store, source, history, and watcher.
	storeOpts := []killswitch.Option{
		killswitch.WithSwapHook(func(snap *killswitch.Snapshot) {
			mode := ""
			if snap != nil {
				mode = string(snap.Config.Mode)
			}
			collector.SetKillSwitchMode(mode)
		}),
	}
	if cfg.KillSwitch.History.Enabled {
		history, herr := killswitch.OpenHistory(cfg.KillSwitch.History.Path)
		if herr != nil {
			return fmt.Errorf("failed to open kill-switch history: %w", herr)
		}
		defer history.Close()
		storeOpts = append(storeOpts, killswitch.WithHistory(history))
	}
	store := killswitch.NewStore(storeOpts...)
	source := killswitch.NewFileSource(cfg.KillSwitch.SourcePath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A failed initial load is not fatal: the store stays empty and
	// prod evaluations fail closed until a valid config appears.
	if err := store.Refresh(ctx, source); err != nil {
		logger.Warn("initial kill-switch load failed", "error", err)
		collector.RecordConfigRefresh("failure")
	} else {
		collector.RecordConfigRefresh("success")
	}

	if cfg.KillSwitch.Watch {
		watcher, werr := killswitch.NewWatcher(cfg.KillSwitch.SourcePath, store, source, cfg.KillSwitch.DebounceInterval)
		if werr != nil {
			return fmt.Errorf("failed to create kill-switch watcher: %w", werr)
		}
		go func() {
			if werr := watcher.Watch(ctx); werr != nil {
				logger.Error("kill-switch watcher stopped", "error", werr)
			}
		}()
	}
	fmt.Println("✓ Kill-switch store initialized")

	// Policy evaluator.
	evaluator, err := newEvaluator(&cfg.Policy)
	if err != nil {
		return fmt.Errorf("failed to create policy evaluator: %w", err)
	}
	defer evaluator.Close()
	fmt.Printf("✓ Policy evaluator ready (%s mode, version %s)\n", cfg.Policy.Mode, evaluator.Version())

	// Audit storage, emitter, and retention.
	auditStorage, err := newAuditStorage(&cfg.Audit)
	if err != nil {
		return fmt.Errorf("failed to create audit storage: %w", err)
	}
	defer auditStorage.Close()

	emitter := audit.NewEmitter(auditStorage, &audit.Config{
		AsyncBuffer:     cfg.Audit.AsyncBuffer,
		BlockingTimeout: cfg.Audit.BlockingTimeout,
		WriteTimeout:    cfg.Audit.WriteTimeout,
	}, audit.NewAlerter(collector), collector)
	defer emitter.Close()

	if cfg.Audit.Retention.PruneSchedule != "" {
		pruner := retention.NewPruner(auditStorage, &retention.Config{
			RetentionDays: cfg.Audit.Retention.RetentionDays,
			MaxRecords:    cfg.Audit.Retention.MaxRecords,
			PruneSchedule: cfg.Audit.Retention.PruneSchedule,
		})
		scheduler := retention.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			logger.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer scheduler.Stop()
		}
	}
	fmt.Println("✓ Audit store initialized")

	// Enforcement pipeline and server.
	enforcer := gateway.NewEnforcer(
		resolver,
		guard.NewGuard(store),
		evaluator,
		verdict.NewEngine(),
		emitter,
		collector,
		cfg.Policy.Timeout,
	)
	admin := gateway.NewAdmin(store, source, resolver.Environment(), collector)

	srv, err := server.NewServer(cfg.Server, cfg.Telemetry.Metrics, server.Deps{
		Enforcer:  enforcer,
		Admin:     admin,
		Collector: collector,
	})
	if err != nil {
		return cli.NewConfigError("server", err.Error())
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	fmt.Println()
	fmt.Printf("✓ Gateway listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		return nil
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("✓ Gateway stopped")
		return nil
	}
}

func newEvaluator(cfg *config.PolicyConfig) (policy.Evaluator, error) {
	switch cfg.Mode {
	case "http":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("policy.endpoint is required in http mode")
		}
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 500 * time.Millisecond
		}
		return policy.NewHTTPEvaluator(cfg.Endpoint, timeout, cfg.InitialVersion), nil
	case "static", "":
		return policy.NewStaticEvaluator(cfg.RulesPath)
	default:
		return nil, fmt.Errorf("unsupported policy mode: %s", cfg.Mode)
	}
}

func newAuditStorage(cfg *config.AuditConfig) (audit.Storage, error) {
	switch cfg.Backend {
	case "sqlite", "":
		return storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.SQLite.Path,
			MaxOpenConns: cfg.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.SQLite.MaxIdleConns,
			WALMode:      cfg.SQLite.WALMode,
			BusyTimeout:  cfg.SQLite.BusyTimeout,
		})
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported audit backend: %s", cfg.Backend)
	}
}
