// Package commands implements the CLI commands for the autobus binary.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autobus-platform/autobus/internal/config"
	"github.com/autobus-platform/autobus/internal/logger"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	envFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "autobus",
	Short: "Autobus - backend service and startup orchestration",
	Long: `Autobus is the backend API server together with its deployment tooling:
dependency probing, schema migration gating and process handoff for
startup, plus preflight verification for deployments.

Use "autobus [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default: ./.env when present)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(statusCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads the typed configuration honoring the global
// --env-file flag.
func loadConfig() (*config.Config, error) {
	return config.Load(envFile)
}

// initLogger configures the structured logger from configuration.
func initLogger(cfg *config.Config) error {
	err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}
