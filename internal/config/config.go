// Package config loads and validates the process configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. A .env file in the working directory (or an explicit path)
//  3. Default values (lowest priority)
//
// The environment variable names are the binding contract with the
// deployment tooling and the managed Postgres/Redis services; they are
// reproduced exactly and must not be renamed.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultSecretKey is the placeholder signing key shipped in the sample
// environment file. Deployment verification warns when it is still in use.
const DefaultSecretKey = "green-secret-keeps-gamma"

// Config is the full typed configuration for the autobus binary.
type Config struct {
	ServiceName string `mapstructure:"service_name"`

	// Debug must be false in production; deployment verification refuses
	// to proceed otherwise.
	Debug bool `mapstructure:"debug"`

	// SecretKey signs session tokens.
	SecretKey string `mapstructure:"secret_key" validate:"required"`

	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Migrations MigrationsConfig `mapstructure:"migrations"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`

	// StrictStartup promotes the documented best-effort startup failures
	// (dependency not ready, migration errors) to fatal. Default off: the
	// orchestrator logs and proceeds so a slow dependency cannot deadlock
	// a deployment.
	StrictStartup bool `mapstructure:"strict_startup"`
}

// DatabaseConfig describes the relational datastore connection.
//
// An explicit URL (SQLALCHEMY_DATABASE_URL) wins over the discrete
// fields; otherwise a URL is assembled from them.
type DatabaseConfig struct {
	// URL is the full connection string override.
	URL string `mapstructure:"url"`

	Driver   string `mapstructure:"driver" validate:"required"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// RedisConfig describes the cache connection.
type RedisConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"min=1,max=65535"`
	Password string `mapstructure:"password"`
}

// MigrationsConfig controls the migration gate.
type MigrationsConfig struct {
	// AutoMigrate enables revision generation. Pending revisions are
	// applied regardless of this flag.
	AutoMigrate bool `mapstructure:"auto_migrate"`

	// Dir is the revision-history directory.
	Dir string `mapstructure:"dir" validate:"required"`
}

// ServerConfig is the fixed shape of the application-server invocation.
type ServerConfig struct {
	Bind            string `mapstructure:"bind" validate:"required"`
	Workers         int    `mapstructure:"workers" validate:"min=1"`
	GracefulTimeout int    `mapstructure:"graceful_timeout" validate:"min=1"` // seconds
	AccessLog       string `mapstructure:"access_log"`
	ErrorLog        string `mapstructure:"error_log"`
}

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
	Output string `mapstructure:"output" validate:"required"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// TelemetryConfig controls OpenTelemetry tracing and Pyroscope profiling.
type TelemetryConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Endpoint   string  `mapstructure:"endpoint"`
	Insecure   bool    `mapstructure:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1"`

	Profiling ProfilingConfig `mapstructure:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// envBindings maps config keys to their environment variable names.
// Multiple names per key are fallbacks, checked in order (the PG*/REDIS_*
// names come from the managed service convention, the DB_* names from the
// compose files).
var envBindings = map[string][]string{
	"debug":                        {"DEBUG"},
	"secret_key":                   {"SECRET_KEY", "JWT_SECRET_KEY"},
	"database.url":                 {"SQLALCHEMY_DATABASE_URL", "DATABASE_URL"},
	"database.driver":              {"DB_DRIVER"},
	"database.host":                {"PGHOST", "DB_HOST"},
	"database.port":                {"PGPORT", "DB_PORT"},
	"database.user":                {"PGUSER", "DB_USER"},
	"database.password":            {"PGPASSWORD", "DB_PASSWORD"},
	"database.database":            {"PGDATABASE", "DB_DATABASE"},
	"redis.host":                   {"REDIS_HOST"},
	"redis.port":                   {"REDIS_PORT"},
	"redis.password":               {"REDIS_PASSWORD"},
	"migrations.auto_migrate":      {"AUTO_MIGRATE"},
	"migrations.dir":               {"MIGRATIONS_DIR"},
	"server.bind":                  {"BIND_ADDRESS"},
	"server.workers":               {"WEB_CONCURRENCY"},
	"logging.level":                {"LOG_LEVEL"},
	"logging.format":               {"LOG_FORMAT"},
	"strict_startup":               {"STRICT_STARTUP"},
	"metrics.enabled":              {"METRICS_ENABLED"},
	"metrics.port":                 {"METRICS_PORT"},
	"telemetry.enabled":            {"OTEL_ENABLED"},
	"telemetry.endpoint":           {"OTEL_EXPORTER_OTLP_ENDPOINT"},
	"telemetry.profiling.enabled":  {"PYROSCOPE_ENABLED"},
	"telemetry.profiling.endpoint": {"PYROSCOPE_ENDPOINT"},
}

// Load reads configuration from the environment and, when present, the
// given .env file ("" means ./.env). A missing .env file is not an error;
// an unreadable or invalid one is.
func Load(envFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	for key, names := range envBindings {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	path := envFile
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, &InvalidError{Reason: fmt.Sprintf("cannot read %s: %v", path, err)}
		}
		// Keys from a dotenv file arrive uppercase; re-map them onto the
		// structured keys unless the real environment already has them.
		applyDotenv(v)
	} else if envFile != "" {
		return nil, &InvalidError{Reason: fmt.Sprintf("env file %s not found", envFile)}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &InvalidError{Reason: fmt.Sprintf("cannot decode configuration: %v", err)}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDotenv copies flat UPPER_CASE dotenv keys onto the structured
// config keys. Real environment variables keep precedence because viper
// resolves bound env vars before config-file values.
func applyDotenv(v *viper.Viper) {
	for key, names := range envBindings {
		for _, name := range names {
			if _, ok := os.LookupEnv(name); ok {
				break // real env wins; viper handles it via BindEnv
			}
			if v.InConfig(strings.ToLower(name)) {
				v.Set(key, v.Get(strings.ToLower(name)))
				break
			}
		}
	}
}

// Validate checks the configuration and returns an InvalidError naming
// every violated constraint.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		reasons := make([]string, 0, 4)
		if ok := isValidationErrors(err, &verrs); ok {
			for _, fe := range verrs {
				reasons = append(reasons, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			reasons = append(reasons, err.Error())
		}
		return &InvalidError{Reason: strings.Join(reasons, "; ")}
	}

	// The assembled-DSN path needs the discrete fields; the URL override
	// path does not.
	if c.Database.URL == "" {
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Database == "" {
			return &InvalidError{Reason: "database: set SQLALCHEMY_DATABASE_URL or PGHOST/PGUSER/PGDATABASE"}
		}
	}
	return nil
}

// DatabaseURL resolves the connection descriptor: the explicit URL when
// supplied, otherwise one assembled from the discrete fields.
func (c *Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	d := c.Database
	return fmt.Sprintf("%s://%s:%s@%s:%d/%s",
		d.Driver, url.QueryEscape(d.User), url.QueryEscape(d.Password), d.Host, d.Port, d.Database)
}

// SyncDatabaseURL rewrites the descriptor's driver component to the
// synchronous driver. The application runtime uses an async-flavored
// scheme (e.g. postgresql+asyncpg); readiness probing and migrations go
// through database/sql and must not require the async runtime.
func (c *Config) SyncDatabaseURL() string {
	return rewriteSyncDriver(c.DatabaseURL())
}

// rewriteSyncDriver strips any "+driver" suffix from the URL scheme and
// normalizes postgresql to postgres.
func rewriteSyncDriver(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	if base, _, found := strings.Cut(scheme, "+"); found {
		scheme = base
	}
	if scheme == "postgresql" {
		scheme = "postgres"
	}
	return scheme + "://" + rest
}

// RedisAddr returns the host:port address for the cache client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
