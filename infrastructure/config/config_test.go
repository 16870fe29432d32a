package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_ADDRESS", "ENVIRONMENT", "TABLE_NAME", "DYNAMODB_TABLE", "SNAPSHOT_STORE",
		"EVENT_PUBLISHER", "SESSION_TTL", "SNAPSHOT_COMPRESSION", "CORS_ALLOWED_ORIGINS",
		"ENABLE_METRICS", "AWS_LAMBDA_FUNCTION_NAME", "IS_LAMBDA", "SESSION_SWEEP_INTERVAL",
		"RATE_LIMIT_PER_MINUTE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, SnapshotStoreMemory, cfg.SnapshotStore)
	assert.Equal(t, EventPublisherLog, cfg.EventPublisher)
	assert.Equal(t, "flow-builder", cfg.DynamoDBTable)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, 600, cfg.RateLimitPerMinute)
	assert.Equal(t, "zstd", cfg.SnapshotCompression)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.EnableMetrics)
	assert.False(t, cfg.IsLambda)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SNAPSHOT_STORE", "DynamoDB")
	t.Setenv("EVENT_PUBLISHER", "eventbridge")
	t.Setenv("SESSION_TTL", "90")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "flow-builder-api")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, SnapshotStoreDynamoDB, cfg.SnapshotStore)
	assert.Equal(t, EventPublisherEventBridge, cfg.EventPublisher)
	assert.Equal(t, 90*time.Second, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.IsLambda)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SnapshotStore:       SnapshotStoreMemory,
			SnapshotCompression: "none",
			EventPublisher:      EventPublisherLog,
			SessionTTL:          time.Minute,
			SweepInterval:       time.Minute,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown store", mutate: func(c *Config) { c.SnapshotStore = "s3" }, wantErr: "SNAPSHOT_STORE"},
		{name: "dynamodb without table", mutate: func(c *Config) { c.SnapshotStore = SnapshotStoreDynamoDB }, wantErr: "DYNAMODB_TABLE"},
		{name: "unknown publisher", mutate: func(c *Config) { c.EventPublisher = "kafka" }, wantErr: "EVENT_PUBLISHER"},
		{name: "eventbridge without bus", mutate: func(c *Config) { c.EventPublisher = EventPublisherEventBridge }, wantErr: "EVENT_BUS_NAME"},
		{name: "journal without table", mutate: func(c *Config) { c.EventPublisher = EventPublisherDynamoDB }, wantErr: "DYNAMODB_TABLE"},
		{name: "unknown compression", mutate: func(c *Config) { c.SnapshotCompression = "lz4" }, wantErr: "SNAPSHOT_COMPRESSION"},
		{name: "zero ttl", mutate: func(c *Config) { c.SessionTTL = 0 }, wantErr: "SESSION_TTL"},
		{name: "negative rate limit", mutate: func(c *Config) { c.RateLimitPerMinute = -1 }, wantErr: "RATE_LIMIT_PER_MINUTE"},
		{name: "zero sweep interval", mutate: func(c *Config) { c.SweepInterval = 0 }, wantErr: "SESSION_SWEEP_INTERVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
