package commands

import (
	"github.com/spf13/cobra"

	"github.com/autobus-platform/autobus/internal/logger"
	"github.com/autobus-platform/autobus/internal/migrations"
)

var migrateApplyOnly bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run the schema migration gate",
	Long: `Run the migration gate once and exit.

With generation enabled (AUTO_MIGRATE, default true) the gate creates an
initial revision when the history is empty, diffs the declared schema
against the applied history otherwise, discards generated revisions that
contain no schema operation, then applies everything pending. With
--apply-only (or AUTO_MIGRATE=false) only pending revisions are applied.

Unlike orchestrated startup, failures here are fatal: this command is
for operators running migrations deliberately.

Examples:
  autobus migrate
  autobus migrate --apply-only`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateApplyOnly, "apply-only", false, "skip revision generation, apply pending revisions only")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initLogger(cfg); err != nil {
		return err
	}

	autoMigrate := cfg.Migrations.AutoMigrate && !migrateApplyOnly
	gate := migrations.NewGate(cfg.Migrations.Dir, cfg.SyncDatabaseURL(), autoMigrate)
	gate.Strict = true

	if err := gate.Run(cmd.Context()); err != nil {
		return err
	}
	logger.Info("migration gate finished", "dir", cfg.Migrations.Dir)
	return nil
}
