package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/autobus-platform/autobus/internal/accounts"
	"github.com/autobus-platform/autobus/internal/audit"
	"github.com/autobus-platform/autobus/internal/config"
	"github.com/autobus-platform/autobus/internal/httpapi"
	"github.com/autobus-platform/autobus/internal/logger"
	"github.com/autobus-platform/autobus/internal/metrics"
	"github.com/autobus-platform/autobus/internal/readiness"
	"github.com/autobus-platform/autobus/internal/telemetry"
)

var (
	serveBind            string
	serveWorkers         int
	serveGracefulTimeout int
	serveAccessLog       string
	serveErrorLog        string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the application server",
	Long: `Run the HTTP application server in the foreground.

This is the handoff target of "autobus start": the orchestrator replaces
itself with this command once dependency probing and the migration gate
have run. It can also be run directly for development.

Examples:
  # Serve with configuration from the environment
  autobus serve

  # Serve on an explicit bind address
  autobus serve --bind 0.0.0.0:3090 --workers 4`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveBind, "bind", "", "listen address (default from configuration)")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 0, "worker count (informational; Go schedules its own)")
	serveCmd.Flags().IntVar(&serveGracefulTimeout, "graceful-timeout", 0, "shutdown grace in seconds")
	serveCmd.Flags().StringVar(&serveAccessLog, "access-log", "", `access log destination ("-" for stdout)`)
	serveCmd.Flags().StringVar(&serveErrorLog, "error-log", "", `error log destination ("-" for stderr)`)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cfg)
	if err := initLogger(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	tokens, err := accounts.NewTokenService(accounts.TokenConfig{Secret: cfg.SecretKey})
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}

	registry, err := accounts.NewPostgresRegistry(ctx, cfg.SyncDatabaseURL(), tokens)
	if err != nil {
		return fmt.Errorf("failed to connect account registry: %w", err)
	}
	defer registry.Close()

	auditLog := audit.NewLogger(logger.Default())
	defer func() {
		if err := auditLog.Close(); err != nil {
			logger.Error("audit logger close error", "error", err)
		}
	}()

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Registry: registry,
		Audit:    auditLog,
		HealthChecks: map[string]readiness.CheckFunc{
			"datastore": readiness.DatastoreCheck(cfg.SyncDatabaseURL()),
			"cache":     readiness.CacheCheck(cfg.RedisAddr(), cfg.Redis.Password),
		},
	})

	server := httpapi.NewServer(cfg.Server.Bind, router,
		time.Duration(cfg.Server.GracefulTimeout)*time.Second)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return server.Serve(ctx) })
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics.Port)
		group.Go(func() error { return metricsServer.Start(ctx) })
	}

	logger.Info("application server running", "bind", cfg.Server.Bind)
	return group.Wait()
}

// applyServeFlags overrides configuration with explicitly set flags so
// the handoff argv and direct invocations behave identically.
func applyServeFlags(cfg *config.Config) {
	if serveBind != "" {
		cfg.Server.Bind = serveBind
	}
	if serveWorkers > 0 {
		cfg.Server.Workers = serveWorkers
	}
	if serveGracefulTimeout > 0 {
		cfg.Server.GracefulTimeout = serveGracefulTimeout
	}
	if serveAccessLog != "" {
		cfg.Server.AccessLog = serveAccessLog
	}
	if serveErrorLog != "" {
		cfg.Server.ErrorLog = serveErrorLog
	}
}
