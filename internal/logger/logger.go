// Package logger provides the process-wide structured logger.
//
// It wraps log/slog behind a small package-level API so that every
// component logs through the same handler, level and destination. The
// logger is initialized once at process start (from configuration) and
// reconfigured atomically; callers use the package-level Debug/Info/
// Warn/Error functions with alternating key-value arguments.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or a file path
}

var (
	mu       sync.RWMutex
	output   io.Writer = os.Stdout
	levelVar           = new(slog.LevelVar)
	format             = "text"
	slogger  *slog.Logger
)

func init() {
	levelVar.Set(slog.LevelInfo)
	reconfigure()
}

// reconfigure rebuilds the slog handler from the current settings.
// Callers must hold mu or be running from init.
func reconfigure() {
	opts := &slog.HandlerOptions{Level: levelVar}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	slogger = slog.New(handler)
}

// Init initializes the logger with the given configuration.
// Output can be "stdout", "stderr", or a file path.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		output = f
	}

	if cfg.Level != "" {
		lvl, err := parseLevel(cfg.Level)
		if err != nil {
			return err
		}
		levelVar.Set(lvl)
	}

	switch strings.ToLower(cfg.Format) {
	case "":
		// keep current
	case "text", "json":
		format = strings.ToLower(cfg.Format)
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", cfg.Format)
	}

	reconfigure()
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// SetLevel changes the minimum level at runtime. Unknown levels are ignored.
func SetLevel(level string) {
	if lvl, err := parseLevel(level); err == nil {
		levelVar.Set(lvl)
	}
}

// Default returns the current *slog.Logger for components that take a
// logger value instead of using the package-level functions.
func Default() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// Debug logs at DEBUG level with alternating key-value args.
func Debug(msg string, args ...any) {
	mu.RLock()
	l := slogger
	mu.RUnlock()
	l.Debug(msg, args...)
}

// Info logs at INFO level with alternating key-value args.
func Info(msg string, args ...any) {
	mu.RLock()
	l := slogger
	mu.RUnlock()
	l.Info(msg, args...)
}

// Warn logs at WARN level with alternating key-value args.
func Warn(msg string, args ...any) {
	mu.RLock()
	l := slogger
	mu.RUnlock()
	l.Warn(msg, args...)
}

// Error logs at ERROR level with alternating key-value args.
func Error(msg string, args ...any) {
	mu.RLock()
	l := slogger
	mu.RUnlock()
	l.Error(msg, args...)
}
