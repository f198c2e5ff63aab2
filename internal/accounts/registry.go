// Package accounts manages user accounts and their session tokens.
//
// The Registry is the capability the HTTP layer programs against. Route
// handlers never see how accounts are stored or how tokens are minted;
// they delegate every operation and translate the sentinel errors into
// transport responses.
package accounts

import (
	"context"
	"errors"
	"time"
)

// Common errors for registry operations.
var (
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrSessionNotFound    = errors.New("session not found")
)

// Account is a registered user.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an authenticated session bound to a bearer token.
type Session struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   Account   `json:"account"`
}

// Registry is the account capability injected into the HTTP layer.
type Registry interface {
	// Register creates a new account. Returns ErrAccountExists when the
	// email is already taken.
	Register(ctx context.Context, email, password string) (*Account, error)

	// Authenticate validates credentials and opens a session. Returns
	// ErrInvalidCredentials for unknown emails and wrong passwords alike.
	Authenticate(ctx context.Context, email, password string) (*Session, error)

	// Identity resolves a bearer token to the account email it was
	// issued for. Returns ErrSessionNotFound for unknown, expired or
	// revoked tokens.
	Identity(ctx context.Context, token string) (string, error)

	// Invalidate revokes the session behind a bearer token. Returns
	// ErrSessionNotFound when no live session matches.
	Invalidate(ctx context.Context, token string) error
}
