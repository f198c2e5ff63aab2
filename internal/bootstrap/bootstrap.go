// Package bootstrap runs the startup orchestration sequence.
//
// The sequence is strictly sequential: datastore probe, cache probe,
// migration gate, process handoff. Probe exhaustion and migration
// failures are logged and skipped over so the application server still
// gets its chance to start against degraded dependencies; the operator
// is expected to watch the logs. Strict mode promotes those failures to
// fatal. The handoff itself always runs and never returns on success.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/autobus-platform/autobus/internal/config"
	"github.com/autobus-platform/autobus/internal/handoff"
	"github.com/autobus-platform/autobus/internal/logger"
	"github.com/autobus-platform/autobus/internal/migrations"
	"github.com/autobus-platform/autobus/internal/readiness"
	"github.com/autobus-platform/autobus/internal/telemetry"
)

// Orchestrator drives the startup sequence. The collaborator fields are
// injectable so the sequence is testable without real dependencies.
type Orchestrator struct {
	cfg *config.Config

	// Prober runs the bounded dependency probes.
	Prober *readiness.Prober

	// DatastoreCheck and CacheCheck are single-shot connectivity
	// checks. Nil fields default to the production checks.
	DatastoreCheck readiness.CheckFunc
	CacheCheck     readiness.CheckFunc

	// Gate is the migration gate. Nil defaults to the production gate.
	Gate interface {
		Run(ctx context.Context) error
	}

	// Server is the handoff target. Nil defaults to the configured
	// application-server invocation.
	Server interface {
		Exec() error
	}
}

// New creates an orchestrator with production collaborators.
func New(cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		cfg:            cfg,
		Prober:         readiness.NewProber(),
		DatastoreCheck: readiness.DatastoreCheck(cfg.SyncDatabaseURL()),
		CacheCheck:     readiness.CacheCheck(cfg.RedisAddr(), cfg.Redis.Password),
		Gate:           newGate(cfg),
		Server: &handoff.ServerProcess{
			Bind:            cfg.Server.Bind,
			Workers:         cfg.Server.Workers,
			GracefulTimeout: cfg.Server.GracefulTimeout,
			AccessLog:       cfg.Server.AccessLog,
			ErrorLog:        cfg.Server.ErrorLog,
		},
	}
}

func newGate(cfg *config.Config) *migrations.Gate {
	gate := migrations.NewGate(cfg.Migrations.Dir, cfg.SyncDatabaseURL(), cfg.Migrations.AutoMigrate)
	gate.Strict = cfg.StrictStartup
	return gate
}

// Run executes the startup sequence. On success it does not return: the
// process image has been replaced by the application server. A returned
// error means either the handoff failed or strict mode aborted early.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.waitForDependencies(ctx); err != nil {
		return err
	}

	if err := o.runMigrations(ctx); err != nil {
		return err
	}

	logger.Info("starting application server",
		"bind", o.cfg.Server.Bind,
		"workers", o.cfg.Server.Workers,
	)
	if err := o.Server.Exec(); err != nil {
		return fmt.Errorf("process handoff failed: %w", err)
	}
	return nil
}

// waitForDependencies probes the datastore and cache in order. Neither
// probe failing is fatal unless strict mode is on.
func (o *Orchestrator) waitForDependencies(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "startup.wait_for_dependencies")
	defer span.End()

	err := o.Prober.Probe(ctx, "datastore", o.DatastoreCheck,
		readiness.DatastoreAttempts, readiness.DatastoreInterval)
	if err != nil {
		telemetry.RecordError(ctx, err)
		if o.cfg.StrictStartup {
			return fmt.Errorf("datastore not ready: %w", err)
		}
		logger.Warn("datastore never became ready, proceeding anyway", "error", err)
	}

	err = o.Prober.Probe(ctx, "cache", o.CacheCheck,
		readiness.CacheAttempts, readiness.CacheInterval)
	if err != nil {
		telemetry.RecordError(ctx, err)
		if o.cfg.StrictStartup {
			return fmt.Errorf("cache not ready: %w", err)
		}
		logger.Warn("cache never became ready, proceeding anyway", "error", err)
	}

	return nil
}

// runMigrations invokes the migration gate. The gate applies its own
// log-and-continue policy; in strict mode its errors surface here.
func (o *Orchestrator) runMigrations(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "startup.migration_gate")
	defer span.End()

	if err := o.Gate.Run(ctx); err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("migration gate: %w", err)
	}
	return nil
}
