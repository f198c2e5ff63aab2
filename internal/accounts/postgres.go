package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/autobus-platform/autobus/internal/logger"
)

// pgUniqueViolation is the Postgres error code for unique_violation.
const pgUniqueViolation = "23505"

// PostgresRegistry is the production Registry backed by the accounts and
// sessions tables.
type PostgresRegistry struct {
	pool   *pgxpool.Pool
	tokens *TokenService
}

// NewPostgresRegistry opens a connection pool against databaseURL and
// verifies it with a ping.
func NewPostgresRegistry(ctx context.Context, databaseURL string, tokens *TokenService) (*PostgresRegistry, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRegistry{pool: pool, tokens: tokens}, nil
}

// Close releases the connection pool.
func (r *PostgresRegistry) Close() {
	r.pool.Close()
}

// Register creates a new account with a bcrypt password hash.
func (r *PostgresRegistry) Register(ctx context.Context, email, password string) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &Account{Email: email, Enabled: true}
	err = r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, email, password_hash, enabled, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, TRUE, now(), now())
		RETURNING id, created_at`,
		email, string(hash),
	).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	return account, nil
}

// Authenticate verifies credentials and opens a session. Unknown emails
// and wrong passwords both map to ErrInvalidCredentials so the response
// does not leak which accounts exist.
func (r *PostgresRegistry) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	account := &Account{}
	var passwordHash string
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, enabled, created_at
		FROM accounts WHERE email = $1`,
		email,
	).Scan(&account.ID, &account.Email, &passwordHash, &account.Enabled, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !account.Enabled {
		return nil, ErrAccountDisabled
	}

	token, tokenID, expiresAt, err := r.tokens.Generate(account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO sessions (token_id, account_id, issued_at, expires_at)
		VALUES ($1, $2, now(), $3)`,
		tokenID, account.ID, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record session: %w", err)
	}

	return &Session{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		Account:   *account,
	}, nil
}

// Identity resolves a bearer token to the email it was issued for. The
// token signature is checked first; the session row must then exist,
// be unexpired and not revoked.
func (r *PostgresRegistry) Identity(ctx context.Context, token string) (string, error) {
	claims, err := r.tokens.Validate(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}

	var revokedAt *time.Time
	var expiresAt time.Time
	err = r.pool.QueryRow(ctx, `
		SELECT revoked_at, expires_at FROM sessions WHERE token_id = $1`,
		claims.TokenID,
	).Scan(&revokedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("failed to look up session: %w", err)
	}
	if revokedAt != nil || time.Now().After(expiresAt) {
		return "", ErrSessionNotFound
	}

	return claims.Email, nil
}

// Invalidate revokes the session behind a bearer token. Revoking an
// already-revoked session is not an error.
func (r *PostgresRegistry) Invalidate(ctx context.Context, token string) error {
	claims, err := r.tokens.Validate(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE sessions SET revoked_at = now() WHERE token_id = $1`,
		claims.TokenID,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	logger.Debug("session revoked", "token_id", claims.TokenID, "email", claims.Email)
	return nil
}
