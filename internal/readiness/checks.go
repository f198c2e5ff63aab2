package readiness

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for the datastore probe
	"github.com/redis/go-redis/v9"
)

// Probe budgets. These are deliberate fixed ceilings, not tunables: the
// datastore gets up to a minute, the cache fifteen seconds.
const (
	DatastoreAttempts = 30
	DatastoreInterval = 2 * time.Second

	CacheAttempts = 15
	CacheInterval = 1 * time.Second

	connectTimeout = 5 * time.Second
)

// DatastoreCheck returns a CheckFunc that opens a short-timeout
// connection to the relational datastore. The URL must use the
// synchronous driver (config.SyncDatabaseURL); each attempt owns its
// connection exclusively and discards it before returning.
func DatastoreCheck(url string) CheckFunc {
	return func(ctx context.Context) error {
		db, err := sql.Open("pgx", url)
		if err != nil {
			return fmt.Errorf("open datastore: %w", err)
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			return fmt.Errorf("ping datastore: %w", err)
		}
		return nil
	}
}

// CacheCheck returns a CheckFunc that connects to the cache and issues a
// liveness command. Success requires the PONG acknowledgment, so a wrong
// password fails every attempt.
func CacheCheck(addr, password string) CheckFunc {
	return func(ctx context.Context) error {
		client := redis.NewClient(&redis.Options{
			Addr:        addr,
			Password:    password,
			DialTimeout: connectTimeout,
		})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping cache: %w", err)
		}
		return nil
	}
}
