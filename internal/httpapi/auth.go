package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/autobus-platform/autobus/internal/accounts"
	"github.com/autobus-platform/autobus/internal/audit"
)

// AuthHandler handles the authentication endpoints. It owns no
// authentication logic: every operation delegates to the account
// registry and emits exactly one audit event, success or failure.
type AuthHandler struct {
	registry accounts.Registry
	audit    audit.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(registry accounts.Registry, auditLog audit.Logger) *AuthHandler {
	return &AuthHandler{registry: registry, audit: auditLog}
}

// SignupRequest is the request body for POST /api/v1/auth/signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninRequest is the request body for POST /api/v1/auth/signin.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/v1/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		BadRequest(w, "Email and password are required")
		return
	}

	account, err := h.registry.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountExists) {
			h.audit.Emit(r.Context(), audit.Event{
				Severity: audit.SeverityWarning,
				Message:  "signup rejected: account already exists",
				Subject:  req.Email,
			})
			Conflict(w, "An account with this email already exists")
			return
		}
		h.audit.Emit(r.Context(), audit.Event{
			Severity: audit.SeverityError,
			Message:  "signup failed",
			Subject:  audit.SubjectUnknown,
		})
		InternalServerError(w, "Failed to create account")
		return
	}

	h.audit.Emit(r.Context(), audit.Event{
		Severity: audit.SeverityInfo,
		Message:  "account registered",
		Subject:  account.Email,
	})
	WriteJSONCreated(w, account)
}

// Signin handles POST /api/v1/auth/signin.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		BadRequest(w, "Email and password are required")
		return
	}

	session, err := h.registry.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrInvalidCredentials):
			h.audit.Emit(r.Context(), audit.Event{
				Severity: audit.SeverityWarning,
				Message:  "signin rejected: invalid credentials",
				Subject:  req.Email,
			})
			Unauthorized(w, "Invalid email or password")
		case errors.Is(err, accounts.ErrAccountDisabled):
			h.audit.Emit(r.Context(), audit.Event{
				Severity: audit.SeverityWarning,
				Message:  "signin rejected: account disabled",
				Subject:  req.Email,
			})
			Forbidden(w, "Account is disabled")
		default:
			h.audit.Emit(r.Context(), audit.Event{
				Severity: audit.SeverityError,
				Message:  "signin failed",
				Subject:  audit.SubjectUnknown,
			})
			InternalServerError(w, "Authentication failed")
		}
		return
	}

	h.audit.Emit(r.Context(), audit.Event{
		Severity: audit.SeverityInfo,
		Message:  "session opened",
		Subject:  session.Account.Email,
	})
	WriteJSONOK(w, session)
}

// Signout handles POST /api/v1/auth/signout.
//
// The subject identity is captured before the token is invalidated:
// once the registry revokes the session the token can no longer be
// resolved, so the order here is load-bearing for the audit trail.
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		Unauthorized(w, "Missing bearer token")
		return
	}

	subject, err := h.registry.Identity(r.Context(), token)
	if err != nil {
		subject = audit.SubjectUnknown
	}

	if err := h.registry.Invalidate(r.Context(), token); err != nil {
		if errors.Is(err, accounts.ErrSessionNotFound) {
			h.audit.Emit(r.Context(), audit.Event{
				Severity: audit.SeverityWarning,
				Message:  "signout rejected: session not found",
				Subject:  subject,
			})
			Unauthorized(w, "Session not found")
			return
		}
		h.audit.Emit(r.Context(), audit.Event{
			Severity: audit.SeverityError,
			Message:  "signout failed",
			Subject:  subject,
		})
		InternalServerError(w, "Failed to close session")
		return
	}

	h.audit.Emit(r.Context(), audit.Event{
		Severity: audit.SeverityInfo,
		Message:  "session closed",
		Subject:  subject,
	})
	WriteJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
