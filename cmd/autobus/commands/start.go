package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/autobus-platform/autobus/internal/bootstrap"
	"github.com/autobus-platform/autobus/internal/logger"
	"github.com/autobus-platform/autobus/internal/metrics"
)

var startStrict bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run startup orchestration and hand off to the server",
	Long: `Probe the datastore and cache with bounded retries, run the schema
migration gate, then replace this process with the application server.

Dependency and migration failures are logged and skipped so the server
still gets a chance to start against degraded dependencies. Use --strict
(or STRICT_STARTUP=true) to abort on the first failure instead.

On success this command does not return: the process image is replaced.

Examples:
  # Orchestrated startup with defaults
  autobus start

  # Fail fast instead of proceeding on degraded dependencies
  autobus start --strict

  # Apply pending revisions but never generate new ones
  AUTO_MIGRATE=false autobus start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVar(&startStrict, "strict", false, "abort startup on dependency or migration failures")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if startStrict {
		cfg.StrictStartup = true
	}
	if err := initLogger(cfg); err != nil {
		return err
	}
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	logger.Info("startup orchestration beginning",
		"strict", cfg.StrictStartup,
		"auto_migrate", cfg.Migrations.AutoMigrate,
	)

	return bootstrap.New(cfg).Run(context.Background())
}
