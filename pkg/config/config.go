package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database      DatabaseConfig
	Observability ObservabilityConfig
	Parser        ParserConfig
	Jobs          JobsConfig
	Archive       ArchiveConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

type ParserConfig struct {
	// FeedbackCSV optionally seeds the feedback store from a CSV export.
	FeedbackCSV string
	// OutlierThreshold is the modified z-score cutoff for price repair.
	OutlierThreshold float64
}

type JobsConfig struct {
	// OutlierScanSchedule is a cron expression for the nightly series scan.
	OutlierScanSchedule string
}

type ArchiveConfig struct {
	// Dir is where processed documents are archived. Empty disables archival.
	Dir string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// A missing .env file is fine, real environments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "invoicedraft-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
		Parser: ParserConfig{
			FeedbackCSV:      getEnv("PARSER_FEEDBACK_CSV", ""),
			OutlierThreshold: getEnvAsFloat("OUTLIER_THRESHOLD", 3.5),
		},
		Jobs: JobsConfig{
			OutlierScanSchedule: getEnv("OUTLIER_SCAN_SCHEDULE", "0 3 * * *"),
		},
		Archive: ArchiveConfig{
			Dir: getEnv("ARCHIVE_DIR", ""),
		},
	}

	if cfg.Parser.OutlierThreshold <= 0 {
		return nil, fmt.Errorf("OUTLIER_THRESHOLD must be positive, got %v", cfg.Parser.OutlierThreshold)
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
