package config

import (
	"os"
	"strconv"
)

// Config holds application configuration values.
type Config struct {
	AppEnv      string
	DatabaseDSN string
	ReportPath  string
	SeedCatalog string
	Logger      LoggerConfig
}

// LoggerConfig mirrors the knobs exposed by logger.Config.
type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	return Config{
		AppEnv:      getEnv("APP_ENV", "dev"),
		DatabaseDSN: getEnv("DATABASE_DSN", "medicine_cabinet.db"),
		ReportPath:  getEnv("REPORT_PATH", "inventory_report.pdf"),
		SeedCatalog: getEnv("SEED_CATALOG", ""),
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "info"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", true),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
	}
}

// IsDevelopment reports whether the app runs with APP_ENV=development.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
