package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/autobus-platform/autobus/internal/migrations/schema"
)

// newTestRegistry spins up a disposable Postgres, creates the declared
// schema and returns a live registry. Requires Docker; skipped in -short
// runs.
func newTestRegistry(t *testing.T) *PostgresRegistry {
	t.Helper()
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

	tokens, err := NewTokenService(TokenConfig{Secret: testSecret})
	require.NoError(t, err)

	reg, err := NewPostgresRegistry(ctx, connStr, tokens)
	require.NoError(t, err)
	t.Cleanup(reg.Close)

	stmts, err := schema.Statements()
	require.NoError(t, err)
	for _, stmt := range stmts {
		_, err := reg.pool.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	return reg
}

func TestRegistryLifecycleAgainstPostgres(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	account, err := reg.Register(ctx, "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.True(t, account.Enabled)

	_, err = reg.Register(ctx, "alice@example.com", "other")
	assert.ErrorIs(t, err, ErrAccountExists)

	_, err = reg.Authenticate(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = reg.Authenticate(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, err := reg.Authenticate(ctx, "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", session.TokenType)

	subject, err := reg.Identity(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)

	require.NoError(t, reg.Invalidate(ctx, session.Token))

	_, err = reg.Identity(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
