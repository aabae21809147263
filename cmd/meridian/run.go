package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"veritas-hq/meridian/pkg/config"
	"veritas-hq/meridian/pkg/ledger"
	"veritas-hq/meridian/pkg/ledger/archive"
	"veritas-hq/meridian/pkg/ledger/export"
	"veritas-hq/meridian/pkg/ledger/verify"
	"veritas-hq/meridian/pkg/policy/engine"
	"veritas-hq/meridian/pkg/policy/source"
	"veritas-hq/meridian/pkg/server"
	"veritas-hq/meridian/pkg/telemetry/health"
	"veritas-hq/meridian/pkg/telemetry/logging"
	"veritas-hq/meridian/pkg/telemetry/metrics"

	ledgerstorage "veritas-hq/meridian/pkg/ledger/storage"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Meridian server",
	Long: `Start the Meridian server with the specified configuration.

The server loads the policy, opens the ledger, and serves the decision
API on the configured address.

Examples:
  # Start with default config
  meridian run

  # Start with custom config
  meridian run --config /etc/meridian/config.yaml

  # Override listen address
  meridian run --listen 0.0.0.0:8080

  # Validate config without starting the server
  meridian run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Meridian v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Metrics.
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics, nil)
	}

	// Policy store with initial load and optional hot reload.
	policies := source.NewStore(cfg.Policy.Path, logger)
	if collector != nil {
		policies.OnReload(collector.RecordPolicyReload)
	}
	if err := policies.Reload(); err != nil {
		return fmt.Errorf("failed to load policy: %w", err)
	}
	active := policies.Active()
	fmt.Printf("✓ Policy loaded (%s v%d, %d rules, %s mode)\n",
		active.Name, active.Version, active.RuleCount(), active.Mode)

	if cfg.Policy.Watch {
		watcher, err := source.NewWatcher(policies, cfg.Policy.DebounceInterval, logger)
		if err != nil {
			return fmt.Errorf("failed to create policy watcher: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				slog.Error("policy watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	// Ledger store, signing key, writer.
	if err := os.MkdirAll(filepath.Dir(cfg.Ledger.DBPath), 0750); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	store, err := ledgerstorage.NewSQLiteStore(&ledgerstorage.SQLiteConfig{
		Path:        cfg.Ledger.DBPath,
		WALMode:     true,
		BusyTimeout: cfg.Ledger.PersistTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to open ledger store: %w", err)
	}
	defer store.Close()

	signer, err := ledger.LoadSigner(cfg.Ledger.SigningKeyPath)
	if err != nil {
		return fmt.Errorf("failed to load signing key: %w", err)
	}

	ledgerConfig := &ledger.Config{
		MaxAppendAttempts: cfg.Ledger.MaxAppendAttempts,
		PersistTimeout:    cfg.Ledger.PersistTimeout,
	}
	if collector != nil {
		ledgerConfig.OnRetry = collector.RecordAppendRetry
	}
	led := ledger.New(store, signer, ledgerConfig)
	fmt.Println("✓ Ledger opened")

	// Scheduled chain verification.
	if cfg.Ledger.VerifySchedule != "" {
		scheduler := verify.NewScheduler(store, led.PublicKey(),
			&verify.SchedulerConfig{Schedule: cfg.Ledger.VerifySchedule},
			func(report *verify.Report) {
				if collector == nil {
					return
				}
				result := "pass"
				if report.Failed > 0 {
					result = "fail"
				}
				reasons := make([]string, 0, len(report.Failures))
				for _, f := range report.Failures {
					reasons = append(reasons, string(f.Reason))
				}
				collector.RecordVerification(result, reasons)
			})
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start verification scheduler: %w", err)
		}
		defer scheduler.Stop()
	}

	// Decision detail archive.
	var arc *archive.Archive
	if cfg.Archive.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.Archive.DBPath), 0750); err != nil {
			return fmt.Errorf("failed to create archive directory: %w", err)
		}
		arc, err = archive.Open(archive.Config{DBPath: cfg.Archive.DBPath})
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer arc.Close()
		fmt.Println("✓ Decision archive opened")
	}

	// Health checks.
	checker := health.New(0)
	checker.Register("ledger", func(ctx context.Context) error {
		_, err := led.Head(ctx)
		return err
	})
	checker.Register("policy", func(ctx context.Context) error {
		if policies.Active() == nil {
			return fmt.Errorf("no active policy")
		}
		return nil
	})

	srv := server.NewServer(cfg.Server, server.Deps{
		Engine:   engine.New(logger),
		Policies: policies,
		Ledger:   led,
		Store:    store,
		Exporter: export.NewBuilder(store, signer),
		Archive:  arc,
		Metrics:  collector,
		Checker:  checker,
	})

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until a shutdown signal or context cancellation.
	return srv.Start(ctx)
}
