package accounts

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors for token operations.
var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token has expired")
	ErrInvalidSecretLength = errors.New("token secret must be at least 32 characters")
)

// TokenConfig holds configuration for session token generation.
type TokenConfig struct {
	// Secret is the HMAC signing key. Must be at least 32 characters.
	Secret string

	// Issuer is the token issuer claim. Default: "autobus".
	Issuer string

	// SessionDuration is the lifetime of session tokens. Default: 24 hours.
	SessionDuration time.Duration
}

// Claims are the JWT claims carried by a session token.
type Claims struct {
	jwt.RegisteredClaims

	// TokenID identifies the session row backing this token.
	TokenID string `json:"jti_session"`

	// Email is the account the token was issued for.
	Email string `json:"email"`
}

// TokenService mints and validates session tokens.
type TokenService struct {
	config TokenConfig
}

// NewTokenService creates a token service with the given configuration.
func NewTokenService(config TokenConfig) (*TokenService, error) {
	if len(config.Secret) < 32 {
		return nil, ErrInvalidSecretLength
	}
	if config.Issuer == "" {
		config.Issuer = "autobus"
	}
	if config.SessionDuration == 0 {
		config.SessionDuration = 24 * time.Hour
	}
	return &TokenService{config: config}, nil
}

// Generate mints a signed session token for the given account. The
// returned token ID is persisted alongside the session so the token can
// be revoked later.
func (s *TokenService) Generate(email string) (token, tokenID string, expiresAt time.Time, err error) {
	now := time.Now()
	expiresAt = now.Add(s.config.SessionDuration)
	tokenID = uuid.New().String()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   email,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenID: tokenID,
		Email:   email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, tokenID, expiresAt, nil
}

// Validate parses and verifies a session token, returning its claims.
func (s *TokenService) Validate(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.TokenID == "" || claims.Email == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SessionDuration reports the configured token lifetime.
func (s *TokenService) SessionDuration() time.Duration {
	return s.config.SessionDuration
}
