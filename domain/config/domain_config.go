package config

import (
	"fmt"
	"time"
)

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Flow constraints
	MaxNodesPerFlow int
	MaxEdgesPerFlow int
	DefaultFlowName string

	// Node constraints
	MaxLabelLength int

	// Connection rules
	AllowSelfConnections bool

	// Time constraints
	SessionTimeout time.Duration
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Flow constraints
		MaxNodesPerFlow: 1000,
		MaxEdgesPerFlow: 5000,
		DefaultFlowName: "Untitled Flow",

		// Node constraints
		MaxLabelLength: 2000,

		// Self-loops and cycles are permitted today
		AllowSelfConnections: true,

		// Time constraints
		SessionTimeout: 30 * time.Minute,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More restrictive limits for production
	config.MaxNodesPerFlow = 500
	config.MaxEdgesPerFlow = 2500
	config.MaxLabelLength = 1000

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More permissive for development
	config.MaxNodesPerFlow = 10000
	config.MaxEdgesPerFlow = 50000
	config.SessionTimeout = 2 * time.Hour

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MaxNodesPerFlow <= 0 {
		return fmt.Errorf("max nodes per flow must be positive, got %d", c.MaxNodesPerFlow)
	}
	if c.MaxEdgesPerFlow <= 0 {
		return fmt.Errorf("max edges per flow must be positive, got %d", c.MaxEdgesPerFlow)
	}
	if c.MaxLabelLength <= 0 {
		return fmt.Errorf("max label length must be positive, got %d", c.MaxLabelLength)
	}
	if c.SessionTimeout < 0 {
		return fmt.Errorf("session timeout cannot be negative")
	}
	return nil
}
