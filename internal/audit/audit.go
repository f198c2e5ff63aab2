// Package audit defines the audit port used by the route handlers.
//
// Audit events are structured, severity-tagged records tied to a
// user-identifying subject. The port is injected into handlers rather
// than reached through a process-global; it is initialized once at
// startup and flushed at shutdown.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Severity of an audit event.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// SubjectUnknown is the sentinel subject used when an operation fails
// before the subject identity could be captured.
const SubjectUnknown = "unknown"

// Event is a single audit record.
type Event struct {
	ID       uuid.UUID
	Severity Severity
	Message  string
	Subject  string // the subject's email
	At       time.Time
}

// Logger is the audit port. Emit must not fail the business operation:
// implementations log delivery problems themselves.
type Logger interface {
	Emit(ctx context.Context, e Event)
	Close() error
}

// slogLogger writes audit events through the structured logger.
type slogLogger struct {
	log *slog.Logger
}

// NewLogger returns the production audit logger writing to the given
// structured logger.
func NewLogger(log *slog.Logger) Logger {
	return &slogLogger{log: log.With("log", "audit")}
}

func (l *slogLogger) Emit(ctx context.Context, e Event) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	args := []any{
		"event_id", e.ID.String(),
		"subject", e.Subject,
		"at", e.At.Format(time.RFC3339Nano),
	}
	switch e.Severity {
	case SeverityWarning:
		l.log.WarnContext(ctx, e.Message, args...)
	case SeverityError:
		l.log.ErrorContext(ctx, e.Message, args...)
	default:
		l.log.InfoContext(ctx, e.Message, args...)
	}
}

func (l *slogLogger) Close() error { return nil }

// Recorder is an audit logger that captures events for tests.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Emit(ctx context.Context, e Event) {
	r.Events = append(r.Events, e)
}

func (r *Recorder) Close() error { return nil }
