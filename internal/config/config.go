// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"appstore-pricing/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// API contains storefront API configuration
	API APIConfig `json:"api"`

	// Rules contains rules-file configuration
	Rules RulesConfig `json:"rules"`

	// Run contains run-mode configuration
	Run RunConfig `json:"run"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// APIConfig contains App Store Connect API settings
type APIConfig struct {
	// BaseURL is the API base URL
	BaseURL string `json:"base_url"`

	// KeyID is the API key ID (env: APPLE_KEY_ID)
	KeyID string `json:"key_id,omitempty"`

	// IssuerID is the API issuer ID (env: APPLE_ISSUER_ID)
	IssuerID string `json:"issuer_id,omitempty"`

	// PrivateKey is the .p8 private key contents (env: APPLE_PRIVATE_KEY)
	PrivateKey string `json:"-"`

	// PrivateKeyPath is a path to a .p8 file, used when PrivateKey is empty
	PrivateKeyPath string `json:"private_key_path,omitempty"`

	// RequestTimeoutSeconds bounds a single API request
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`

	// MaxRetries bounds retries of transient read failures
	MaxRetries int `json:"max_retries"`

	// RateLimitPerSecond is the client-side request rate cap
	RateLimitPerSecond float64 `json:"rate_limit_per_second"`
}

// RulesConfig contains rules-file settings
type RulesConfig struct {
	// Path is the pricing rules file (env: RULES_PATH)
	Path string `json:"path"`
}

// RunConfig contains run-mode settings
type RunConfig struct {
	// DryRun withholds the final write (env: DRY_RUN)
	DryRun bool `json:"dry_run"`

	// Concurrency caps parallel tier-ladder lookups per rule
	Concurrency int `json:"concurrency"`

	// TimeoutMinutes bounds a whole invocation
	TimeoutMinutes int `json:"timeout_minutes"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		API: APIConfig{
			BaseURL:               "https://api.appstoreconnect.apple.com",
			RequestTimeoutSeconds: 30,
			MaxRetries:            3,
			RateLimitPerSecond:    5,
		},
		Rules: RulesConfig{
			Path: "appstore-pricing-rules.json",
		},
		Run: RunConfig{
			DryRun:         false,
			Concurrency:    8,
			TimeoutMinutes: 30,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file, then applies environment overrides
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			config.applyEnv()
			return config, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	config.applyEnv()
	return config, nil
}

// applyEnv applies the environment variable contract over file values.
// Environment always wins so CI secrets never have to live in a file.
func (c *Config) applyEnv() {
	if v := os.Getenv("APPLE_KEY_ID"); v != "" {
		c.API.KeyID = v
	}
	if v := os.Getenv("APPLE_ISSUER_ID"); v != "" {
		c.API.IssuerID = v
	}
	if v := os.Getenv("APPLE_PRIVATE_KEY"); v != "" {
		// Secrets stores often flatten the PEM to a single line.
		c.API.PrivateKey = strings.ReplaceAll(v, `\n`, "\n")
	}
	if v := os.Getenv("RULES_PATH"); v != "" {
		c.Rules.Path = v
	}
	if v := os.Getenv("DRY_RUN"); strings.EqualFold(v, "true") {
		c.Run.DryRun = true
	}
}

// ResolvePrivateKey returns the PEM key material, reading PrivateKeyPath
// when the inline key is empty.
func (c *Config) ResolvePrivateKey() (string, error) {
	if c.API.PrivateKey != "" {
		return c.API.PrivateKey, nil
	}
	if c.API.PrivateKeyPath == "" {
		return "", os.ErrNotExist
	}
	data, err := os.ReadFile(c.API.PrivateKeyPath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
