// Package config loads storage-service configuration from YAML files and
// environment variables. File values come from viper, environment overrides
// from envconfig; environment wins.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/searchforge/searchforge/internal/platform/logger"
)

// Config holds all configuration for the storage service
type Config struct {
	Service        ServiceConfig        `mapstructure:"service"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	DocumentStore  DocumentStoreConfig  `mapstructure:"document_store"`
	SearchIndex    SearchIndexConfig    `mapstructure:"search_index"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation"`
	Request        RequestConfig        `mapstructure:"request"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Logger         logger.Config        `mapstructure:"logger"`
	Telemetry      TelemetryConfig      `mapstructure:"telemetry"`
	Version        string               `mapstructure:"version"`
}

// ServiceConfig holds service identity
type ServiceConfig struct {
	Name        string `mapstructure:"name" envconfig:"SERVICE_NAME" default:"storage"`
	Environment string `mapstructure:"environment" envconfig:"ENVIRONMENT" default:"development"`
}

// HTTPConfig holds the ops listener configuration
type HTTPConfig struct {
	Port         int           `mapstructure:"port" envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" envconfig:"HTTP_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" envconfig:"HTTP_IDLE_TIMEOUT" default:"120s"`
}

// DocumentStoreConfig holds MongoDB connection configuration
type DocumentStoreConfig struct {
	URI      string `mapstructure:"uri" envconfig:"DOCUMENT_STORE_URI" default:"mongodb://localhost:27017"`
	Database string `mapstructure:"database" envconfig:"DOCUMENT_STORE_DATABASE" default:"searchforge"`
}

// SearchIndexConfig holds the optional Redis search index configuration.
// The coordinator runs in index-degraded mode when Enabled is false or the
// URI is empty; the gate is independent of the address.
type SearchIndexConfig struct {
	URI     string `mapstructure:"uri" envconfig:"SEARCH_INDEX_URI"`
	Enabled bool   `mapstructure:"enabled" envconfig:"SEARCH_INDEX_ENABLED" default:"true"`
}

// Configured reports whether the search index should be connected at all.
func (c SearchIndexConfig) Configured() bool {
	return c.Enabled && c.URI != ""
}

// ReconciliationConfig bounds the index repair queue and its drainer
type ReconciliationConfig struct {
	MaxQueue    int           `mapstructure:"max_queue" envconfig:"RECONCILIATION_MAX_QUEUE" default:"10000"`
	Interval    time.Duration `mapstructure:"interval_ms" envconfig:"RECONCILIATION_INTERVAL" default:"5s"`
	MaxAttempts int           `mapstructure:"max_attempts" envconfig:"RECONCILIATION_MAX_ATTEMPTS" default:"10"`
}

// RequestConfig holds per-operation deadlines
type RequestConfig struct {
	Deadline time.Duration `mapstructure:"deadline_ms" envconfig:"REQUEST_DEADLINE" default:"10s"`
}

// KafkaConfig holds the optional drift-event publisher configuration
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled" envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers []string `mapstructure:"brokers" envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	Topic   string   `mapstructure:"topic" envconfig:"KAFKA_TOPIC" default:"storage.index.drift"`
}

// TelemetryConfig holds tracing configuration
type TelemetryConfig struct {
	TracingEnabled bool   `mapstructure:"tracing_enabled" envconfig:"TRACING_ENABLED" default:"false"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint" envconfig:"JAEGER_ENDPOINT" default:"http://localhost:14268/api/traces"`
	ServiceName    string `mapstructure:"service_name" envconfig:"TELEMETRY_SERVICE_NAME"`
}

// Load loads configuration from files and environment
func Load(serviceName string) (*Config, error) {
	var cfg Config

	cfg.Service.Name = serviceName
	cfg.Telemetry.ServiceName = serviceName

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("./configs/services/" + serviceName)
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; continue with env vars
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env vars: %w", err)
	}

	envPrefix := toEnvPrefix(serviceName)
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process service env vars: %w", err)
	}

	if version := os.Getenv("VERSION"); version != "" {
		cfg.Version = version
	} else if cfg.Version == "" {
		cfg.Version = "dev"
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the invariants the storage layer depends on
func (c *Config) Validate() error {
	if c.DocumentStore.URI == "" {
		return fmt.Errorf("document_store.uri is required")
	}
	if c.DocumentStore.Database == "" {
		return fmt.Errorf("document_store.database is required")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Reconciliation.MaxQueue <= 0 {
		c.Reconciliation.MaxQueue = 10000
	}
	if c.Reconciliation.Interval <= 0 {
		c.Reconciliation.Interval = 5 * time.Second
	}
	if c.Reconciliation.MaxAttempts <= 0 {
		c.Reconciliation.MaxAttempts = 10
	}
	if c.Request.Deadline <= 0 {
		c.Request.Deadline = 10 * time.Second
	}
}

// toEnvPrefix converts service name to environment variable prefix
func toEnvPrefix(name string) string {
	result := ""
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result += "_"
		}
		if r >= 'a' && r <= 'z' {
			result += string(r - 32)
		} else {
			result += string(r)
		}
	}
	return result
}
