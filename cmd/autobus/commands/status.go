package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/autobus-platform/autobus/internal/cli/output"
	"github.com/autobus-platform/autobus/internal/readiness"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show dependency status",
	Long: `Check the datastore and cache once each and print the result.

Unlike startup orchestration this performs a single attempt per
dependency with no retries, so it returns quickly.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	checks := []struct {
		name  string
		check readiness.CheckFunc
	}{
		{"datastore", readiness.DatastoreCheck(cfg.SyncDatabaseURL())},
		{"cache", readiness.CacheCheck(cfg.RedisAddr(), cfg.Redis.Password)},
	}

	table := output.NewTable("DEPENDENCY", "STATUS", "LATENCY", "DETAIL")
	for _, c := range checks {
		start := time.Now()
		err := c.check(cmd.Context())
		latency := time.Since(start).Round(time.Millisecond)
		if err != nil {
			table.AddRow(c.name, "unreachable", latency.String(), err.Error())
		} else {
			table.AddRow(c.name, "ok", latency.String(), "")
		}
	}

	table.Render(os.Stdout)
	return nil
}
