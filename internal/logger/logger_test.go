package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects logger output to a buffer for testing.
// Returns the buffer and a cleanup function restoring the original output.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalFormat := format
	output = buf
	reconfigure()
	mu.Unlock()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		format = originalFormat
		reconfigure()
		mu.Unlock()
	}
	return buf, cleanup
}

func TestLevelFiltering(t *testing.T) {
	t.Run("InfoLevelFiltersDebug", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		Debug("debug message")
		Info("info message")

		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.Contains(t, out, "info message")
	})

	t.Run("DebugLevelShowsAll", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("DEBUG")
		defer SetLevel("INFO")

		Debug("debug message")
		Warn("warn message")
		Error("error message")

		out := buf.String()
		assert.Contains(t, out, "debug message")
		assert.Contains(t, out, "warn message")
		assert.Contains(t, out, "error message")
	})
}

func TestJSONFormat(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	require.NoError(t, Init(Config{Format: "json"}))
	mu.Lock()
	output = buf
	reconfigure()
	mu.Unlock()

	Info("structured entry", "check", "datastore", "attempt", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "structured entry", entry["msg"])
	assert.Equal(t, "datastore", entry["check"])
	assert.Equal(t, float64(3), entry["attempt"])
}

func TestInitRejectsUnknownFormat(t *testing.T) {
	err := Init(Config{Format: "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log format")
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	err := Init(Config{Level: "LOUD"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}
