package config

import "github.com/spf13/viper"

// Defaults for every configuration key. The database and redis defaults
// mirror the managed-service conventions; the server shape matches the
// production invocation (4 workers behind 0.0.0.0:3090).
func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "Autobus Backend")
	v.SetDefault("debug", false)
	v.SetDefault("secret_key", DefaultSecretKey)

	v.SetDefault("database.driver", "postgresql+asyncpg")
	v.SetDefault("database.port", 5432)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")

	v.SetDefault("migrations.auto_migrate", true)
	v.SetDefault("migrations.dir", "migrations")

	v.SetDefault("server.bind", "0.0.0.0:3090")
	v.SetDefault("server.workers", 4)
	v.SetDefault("server.graceful_timeout", 30)
	v.SetDefault("server.access_log", "-")
	v.SetDefault("server.error_log", "-")

	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("strict_startup", false)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4317")
	v.SetDefault("telemetry.insecure", true)
	v.SetDefault("telemetry.sample_rate", 1.0)
	v.SetDefault("telemetry.profiling.enabled", false)
	v.SetDefault("telemetry.profiling.endpoint", "http://localhost:4040")
}
