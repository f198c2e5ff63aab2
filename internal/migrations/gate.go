// Package migrations implements the schema-migration gate that runs
// during startup orchestration.
//
// The gate has three paths:
//
//	disabled            -> apply pending revisions only
//	enabled, no history -> generate a baseline revision, then apply
//	enabled, history    -> generate a drift revision if the declared
//	                       schema has statements the history lacks,
//	                       discard it when empty, then apply
//
// Pending revisions are always applied, even when generation is
// disabled. Errors are logged and suppressed so a broken migration
// cannot block the handoff to the application server; strict mode turns
// them into hard failures for operators who prefer fail-fast.
package migrations

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/autobus-platform/autobus/internal/logger"
	"github.com/autobus-platform/autobus/internal/metrics"
	"github.com/autobus-platform/autobus/internal/migrations/schema"
)

var (
	// ErrGenerationFailed wraps revision-generation failures.
	ErrGenerationFailed = errors.New("migrations: generation failed")

	// ErrApplyFailed wraps revision-application failures.
	ErrApplyFailed = errors.New("migrations: apply failed")
)

// Applier applies every pending revision in dir against the database.
type Applier interface {
	Apply(ctx context.Context, dir, databaseURL string) error
}

// Gate decides whether to generate a revision and always applies
// pending ones.
type Gate struct {
	// Dir is the revision-history directory.
	Dir string

	// AutoMigrate enables revision generation.
	AutoMigrate bool

	// DatabaseURL is the synchronous connection descriptor.
	DatabaseURL string

	// Applier applies pending revisions. Defaults to golang-migrate.
	Applier Applier

	// Strict turns generation/apply failures into returned errors
	// instead of logged warnings.
	Strict bool

	// now stamps generated drift revisions. Overridable for tests.
	now func() time.Time
}

// NewGate returns a Gate with the production applier.
func NewGate(dir, databaseURL string, autoMigrate bool) *Gate {
	return &Gate{
		Dir:         dir,
		AutoMigrate: autoMigrate,
		DatabaseURL: databaseURL,
		Applier:     &migrateApplier{},
		now:         time.Now,
	}
}

// Run executes the gate. In the default (non-strict) mode it always
// returns nil: failures are logged for the operator and startup
// continues.
func (g *Gate) Run(ctx context.Context) error {
	if g.now == nil {
		g.now = time.Now
	}

	if g.AutoMigrate {
		if err := g.generate(); err != nil {
			logger.Error("migration generation failed, continuing startup", "error", err)
			if g.Strict {
				return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
			}
		}
	} else {
		logger.Info("auto-migration disabled, applying pending revisions only")
	}

	metrics.ObserveMigrationApply()
	if err := g.Applier.Apply(ctx, g.Dir, g.DatabaseURL); err != nil {
		logger.Error("migration apply failed, continuing startup", "error", err)
		if g.Strict {
			return fmt.Errorf("%w: %w", ErrApplyFailed, err)
		}
	}
	return nil
}

// generate produces a baseline revision when the history is empty, or a
// drift revision when the declared schema has statements the history
// lacks. An empty drift revision is discarded immediately.
func (g *Gate) generate() error {
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return err
	}

	history, err := historyRevisions(g.Dir)
	if err != nil {
		return err
	}

	declared, err := schema.Statements()
	if err != nil {
		return err
	}

	if len(history) == 0 {
		logger.Info("revision history empty, generating baseline", "dir", g.Dir)
		return g.writeRevision("000001_baseline", declared)
	}

	applied, err := historyStatements(g.Dir, history)
	if err != nil {
		return err
	}
	missing := diffStatements(declared, applied)
	name := fmt.Sprintf("%s_auto", g.now().UTC().Format("20060102150405"))
	if err := g.writeRevision(name, missing); err != nil {
		return err
	}

	// Empty-migration suppression: a revision with no schema operation
	// is deleted so restarts don't pollute the history.
	kept, err := discardIfEmpty(g.Dir, name)
	if err != nil {
		return err
	}
	if kept {
		logger.Info("generated drift revision", "name", name, "statements", len(missing))
	} else {
		logger.Debug("no schema drift detected, discarded empty revision", "name", name)
	}
	return nil
}

// writeRevision writes the up file with the given statements and a down
// file holding only a comment (automatic down migrations are not
// generated).
func (g *Gate) writeRevision(name string, stmts []string) error {
	var b strings.Builder
	b.WriteString("-- generated by the migration gate\n")
	for _, s := range stmts {
		b.WriteString("\n")
		b.WriteString(s)
		b.WriteString(";\n")
	}

	up := filepath.Join(g.Dir, name+".up.sql")
	if err := os.WriteFile(up, []byte(b.String()), 0o644); err != nil {
		return err
	}
	down := filepath.Join(g.Dir, name+".down.sql")
	return os.WriteFile(down, []byte("-- no automatic down migration\n"), 0o644)
}

// historyRevisions lists the up-revision files in dir, sorted by name.
func historyRevisions(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var revs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			revs = append(revs, e.Name())
		}
	}
	sort.Strings(revs)
	return revs, nil
}

// historyStatements loads every statement from the given up-revision
// files, keyed by normalized form.
func historyStatements(dir string, revs []string) (map[string]struct{}, error) {
	applied := make(map[string]struct{})
	for _, rev := range revs {
		data, err := os.ReadFile(filepath.Join(dir, rev))
		if err != nil {
			return nil, err
		}
		for _, stmt := range schema.Split(string(data)) {
			applied[schema.Normalize(stmt)] = struct{}{}
		}
	}
	return applied, nil
}

// diffStatements returns declared statements whose normalized form does
// not appear in the applied set.
func diffStatements(declared []string, applied map[string]struct{}) []string {
	var missing []string
	for _, stmt := range declared {
		if _, ok := applied[schema.Normalize(stmt)]; !ok {
			missing = append(missing, stmt)
		}
	}
	return missing
}

// discardIfEmpty deletes the named revision pair when its up file holds
// no executable statement. Returns whether the revision was kept.
func discardIfEmpty(dir, name string) (bool, error) {
	up := filepath.Join(dir, name+".up.sql")
	data, err := os.ReadFile(up)
	if err != nil {
		return false, err
	}
	if len(schema.Split(string(data))) > 0 {
		return true, nil
	}
	if err := os.Remove(up); err != nil {
		return false, err
	}
	if err := os.Remove(filepath.Join(dir, name+".down.sql")); err != nil && !os.IsNotExist(err) {
		return false, err
	}
	return false, nil
}
