// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// NodeURL is the base URL of the ledger node REST API.
	NodeURL string
	// NodeRequestTimeout is the HTTP client timeout for ledger node calls.
	NodeRequestTimeout time.Duration
	// NodeTxTimeout is how long to wait for a broadcast transaction to be accepted.
	NodeTxTimeout time.Duration

	// ChainID is the single-byte chain identifier baked into addresses and
	// signed payloads (e.g., "K" for mainnet, "T" for testnet).
	ChainID string
	// AuthoritySeed is the base58-encoded ed25519 seed of the platform account.
	AuthoritySeed string
	// AuthorityAddress is the ledger address of the platform account.
	AuthorityAddress string

	// BatchMaxAmount is the maximum number of keys a single batch issuance
	// request may ask for.
	BatchMaxAmount int
	// WhitelistTxCapacity is the maximum number of entries a single whitelist
	// data transaction can carry.
	WhitelistTxCapacity int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Ledger node
		NodeURL:            env.GetString("NODE_URL", "http://localhost:6869"),
		NodeRequestTimeout: env.GetDuration("NODE_REQUEST_TIMEOUT_SECONDS", 30, time.Second),
		NodeTxTimeout:      env.GetDuration("NODE_TX_TIMEOUT_SECONDS", 60, time.Second),

		// Authority account
		ChainID:          env.GetString("CHAIN_ID", "K"),
		AuthoritySeed:    env.GetString("AUTHORITY_SEED", ""),
		AuthorityAddress: env.GetString("AUTHORITY_ADDRESS", ""),

		// Issuance limits
		BatchMaxAmount:      env.GetInt("BATCH_MAX_AMOUNT", 100),
		WhitelistTxCapacity: env.GetInt("WHITELIST_TX_CAPACITY", 80),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "keygrid"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
