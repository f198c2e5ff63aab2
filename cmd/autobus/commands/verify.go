package commands

import (
	"github.com/spf13/cobra"

	"github.com/autobus-platform/autobus/internal/logger"
	"github.com/autobus-platform/autobus/internal/verify"
)

var verifyForce bool

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a deployment before it proceeds",
	Long: `Run the deployment preflight checks.

Verifies that the required tools are on PATH, that a .env file exists
and loads as valid configuration, that DEBUG is "false" and that
SECRET_KEY has been rotated away from the known default. A default
secret asks for interactive confirmation unless --force is given.

Exits 1 when any check fails or the operator declines; 0 otherwise.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyForce, "force", false, "skip the default-secret confirmation prompt")
}

func runVerify(cmd *cobra.Command, args []string) error {
	if err := logger.Init(logger.Config{Level: "INFO", Format: "text", Output: "stderr"}); err != nil {
		return err
	}

	opts := verify.Options{EnvFile: envFile}
	if verifyForce {
		opts.Confirm = func(label string) (bool, error) { return true, nil }
	}
	return verify.Run(opts)
}
