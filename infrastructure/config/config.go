package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Snapshot store backends
const (
	SnapshotStoreMemory   = "memory"
	SnapshotStoreDynamoDB = "dynamodb"
)

// Event publishers
const (
	EventPublisherLog         = "log"
	EventPublisherEventBridge = "eventbridge"
	EventPublisherDynamoDB    = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	EventBusName  string

	// Adapters
	SnapshotStore       string
	SnapshotCompression string
	EventPublisher      string
	EventRetention      time.Duration

	// Sessions
	SessionTTL    time.Duration
	SweepInterval time.Duration

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// HTTP
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	RateLimitPerMinute int

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "flow-builder")),
		EventBusName:  getEnv("EVENT_BUS_NAME", "flow-builder-events"),

		SnapshotStore:       strings.ToLower(getEnv("SNAPSHOT_STORE", SnapshotStoreMemory)),
		SnapshotCompression: strings.ToLower(getEnv("SNAPSHOT_COMPRESSION", "zstd")),
		EventPublisher:      strings.ToLower(getEnv("EVENT_PUBLISHER", EventPublisherLog)),
		EventRetention:      getEnvDuration("EVENT_RETENTION", 90*24*time.Hour),

		SessionTTL:    getEnvDuration("SESSION_TTL", 30*time.Minute),
		SweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", time.Minute),

		// Lambda configuration
		IsLambda:           getEnvBool("IS_LAMBDA", false),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 600),

		// Logging and features
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	if cfg.LambdaFunctionName != "" {
		cfg.IsLambda = true
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.SnapshotStore {
	case SnapshotStoreMemory:
	case SnapshotStoreDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required when SNAPSHOT_STORE=dynamodb")
		}
	default:
		return fmt.Errorf("unknown SNAPSHOT_STORE %q", c.SnapshotStore)
	}

	switch c.EventPublisher {
	case EventPublisherLog:
	case EventPublisherEventBridge:
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required when EVENT_PUBLISHER=eventbridge")
		}
	case EventPublisherDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required when EVENT_PUBLISHER=dynamodb")
		}
	default:
		return fmt.Errorf("unknown EVENT_PUBLISHER %q", c.EventPublisher)
	}

	switch c.SnapshotCompression {
	case "none", "gzip", "zstd":
	default:
		return fmt.Errorf("unknown SNAPSHOT_COMPRESSION %q", c.SnapshotCompression)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}

	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE cannot be negative, got %d", c.RateLimitPerMinute)
	}

	if c.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("45m") or plain seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
