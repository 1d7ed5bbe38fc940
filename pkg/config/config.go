package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Search configuration
	Search SearchConfig `mapstructure:"search"`

	// Snapshot configuration
	Snapshot SnapshotConfig `mapstructure:"snapshot"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level   string `mapstructure:"level"`
	NoColor bool   `mapstructure:"no_color"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// DatabaseConfig holds graph database configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // neo4j, memory
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`

	// DatasetPath is the YAML fixture backing the memory driver.
	DatasetPath string `mapstructure:"dataset_path"`
}

// SearchConfig tunes the query pipeline
type SearchConfig struct {
	// FuzzyThreshold is the minimum similarity for a company mention to
	// resolve. Zero means the built-in default.
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold"`

	// TraversalTimeoutMS bounds one graph retrieval attempt.
	TraversalTimeoutMS int `mapstructure:"traversal_timeout_ms"`

	// RetryBackoffMS is the pause before the single retry after a
	// graph failure.
	RetryBackoffMS int `mapstructure:"retry_backoff_ms"`

	// TopN caps ranked results per persona.
	TopN int `mapstructure:"top_n"`

	// AttributeLimit caps candidates for attribute rankings.
	AttributeLimit int `mapstructure:"attribute_limit"`
}

// SnapshotConfig holds the local directory cache configuration
type SnapshotConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ParquetPath string `mapstructure:"parquet_path"`
	BatchSize   int    `mapstructure:"batch_size"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.no_color", false)

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Database defaults
	viper.SetDefault("database.driver", "memory")
	viper.SetDefault("database.uri", "bolt://localhost:7687")
	viper.SetDefault("database.username", "neo4j")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.database", "neo4j")
	viper.SetDefault("database.dataset_path", "./data/companies.yaml")

	// Search defaults
	viper.SetDefault("search.fuzzy_threshold", 0.72)
	viper.SetDefault("search.traversal_timeout_ms", 3000)
	viper.SetDefault("search.retry_backoff_ms", 250)
	viper.SetDefault("search.top_n", 10)
	viper.SetDefault("search.attribute_limit", 20)

	// Snapshot defaults
	viper.SetDefault("snapshot.enabled", false)
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("snapshot.path", fmt.Sprintf("%s/.investorlens/snapshot", home))
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.investorlens/telemetry", home))
	}

	// Telemetry defaults
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.batch_size", 100)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 1)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	// Database credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Database.URI = uri
		config.Database.Driver = "neo4j"
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Database.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Database.Password = pass
	}

	// Generic database settings
	if dbDriver := os.Getenv("DB_DRIVER"); dbDriver != "" {
		config.Database.Driver = dbDriver
	}
	if dataset := os.Getenv("DATASET_PATH"); dataset != "" {
		config.Database.DatasetPath = dataset
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	// Snapshot settings
	if path := os.Getenv("SNAPSHOT_PATH"); path != "" {
		config.Snapshot.Enabled = true
		config.Snapshot.Path = path
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.Enabled = true
		config.Telemetry.ParquetPath = path
	}
}
