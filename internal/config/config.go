package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	// File paths
	DBPath      string
	SourcesPath string
	ExportPath  string

	// Server settings
	ServerHost string
	ServerPort int
	APIKey     string

	// Aggregation settings
	Interval       time.Duration
	MaxConcurrent  int
	RetentionDays  int
	FallbackMaxAge time.Duration

	// Log settings
	LogLevel zerolog.Level
}

// DefaultConfig returns an initial configuration with hardcoded defaults.
func DefaultConfig() *Config {
	logLevel, _ := zerolog.ParseLevel(DefaultLogLevel)

	return &Config{
		DBPath:         DefaultDBPath,
		SourcesPath:    GetEnvString("NAIROBELL_SOURCES_PATH", ""),
		ExportPath:     DefaultExportPath,
		ServerHost:     DefaultServerHost,
		ServerPort:     DefaultServerPort,
		APIKey:         GetEnvString("NAIROBELL_API_KEY", ""),
		Interval:       GetEnvDuration("NAIROBELL_INTERVAL", time.Duration(DefaultIntervalMinutes)*time.Minute),
		MaxConcurrent:  GetEnvInt("NAIROBELL_MAX_CONCURRENT", DefaultMaxConcurrent),
		RetentionDays:  GetEnvInt("NAIROBELL_RETENTION_DAYS", DefaultRetentionDays),
		FallbackMaxAge: GetEnvDuration("NAIROBELL_FALLBACK_MAX_AGE", time.Duration(DefaultFallbackMaxAgeHours)*time.Hour),
		LogLevel:       GetEnvLogLevel("NAIROBELL_LOG_LEVEL", logLevel),
	}
}

// ListenAddr returns the formatted listen address for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}
