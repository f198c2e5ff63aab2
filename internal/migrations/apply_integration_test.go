package migrations

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestMigrateApplierAgainstPostgres exercises the real golang-migrate
// path against a disposable Postgres container. Requires Docker; skipped
// in -short runs.
func TestMigrateApplierAgainstPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("autobus_test"),
		tcpostgres.WithUsername("autobus_test"),
		tcpostgres.WithPassword("autobus_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_init.up.sql"),
		[]byte("CREATE TABLE smoke (id INT PRIMARY KEY);\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_init.down.sql"),
		[]byte("DROP TABLE smoke;\n"), 0o644))

	applier := migrateApplier{}
	require.NoError(t, applier.Apply(ctx, dir, connStr))

	// Re-applying with no pending revisions is success (ErrNoChange).
	require.NoError(t, applier.Apply(ctx, dir, connStr))

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT count(*) FROM information_schema.tables WHERE table_name = 'smoke'").Scan(&count))
	assert.Equal(t, 1, count)
}
