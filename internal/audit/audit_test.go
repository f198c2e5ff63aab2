package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emitTo(t *testing.T, e Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	NewLogger(log).Emit(context.Background(), e)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestEmitFillsIDAndTimestamp(t *testing.T) {
	record := emitTo(t, Event{
		Severity: SeverityInfo,
		Message:  "account registered",
		Subject:  "alice@example.com",
	})

	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "account registered", record["msg"])
	assert.Equal(t, "alice@example.com", record["subject"])
	assert.Equal(t, "audit", record["log"])
	assert.NotEmpty(t, record["at"])

	id, err := uuid.Parse(record["event_id"].(string))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
}

func TestEmitRoutesBySeverity(t *testing.T) {
	assert.Equal(t, "WARN",
		emitTo(t, Event{Severity: SeverityWarning, Message: "m", Subject: "s"})["level"])
	assert.Equal(t, "ERROR",
		emitTo(t, Event{Severity: SeverityError, Message: "m", Subject: "s"})["level"])
	assert.Equal(t, "INFO",
		emitTo(t, Event{Message: "m", Subject: "s"})["level"], "unset severity defaults to INFO")
}

func TestRecorderCapturesEvents(t *testing.T) {
	r := &Recorder{}
	r.Emit(context.Background(), Event{Severity: SeverityInfo, Subject: "alice@example.com"})
	r.Emit(context.Background(), Event{Severity: SeverityError, Subject: SubjectUnknown})

	require.Len(t, r.Events, 2)
	assert.Equal(t, SubjectUnknown, r.Events[1].Subject)
	assert.NoError(t, r.Close())
}
