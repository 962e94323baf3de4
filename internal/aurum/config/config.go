// Package config handles loading and validation of the Aurum service
// configuration. Settings come from a YAML file, with environment variables
// taking precedence so deployments can override individual knobs without
// editing the file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/calebward/aurum/common/environment"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Directory DirectoryConfig `yaml:"directory"`
	Database  DatabaseConfig  `yaml:"database"`
	Limits    LimitsConfig    `yaml:"limits"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Addr is the TCP listen address, e.g. ":8080".
	Addr string `yaml:"addr"`
	// JWTSecret is the HMAC key used to verify bearer tokens. Required.
	JWTSecret string `yaml:"jwtSecret"`
}

// OracleConfig configures the language model backend.
type OracleConfig struct {
	// APIKey authenticates against the completion API. Required.
	APIKey string `yaml:"apiKey"`
	// BaseURL overrides the API base URL (e.g. a local inference server).
	BaseURL string `yaml:"baseUrl"`
	// Model is the model identifier to request.
	Model string `yaml:"model"`
	// Timeout bounds a single completion call.
	Timeout time.Duration `yaml:"timeout"`
}

// DirectoryConfig holds the upstream CRM data service endpoints.
type DirectoryConfig struct {
	ClientsURL      string        `yaml:"clientsUrl"`
	TransactionsURL string        `yaml:"transactionsUrl"`
	UsersURL        string        `yaml:"usersUrl"`
	Timeout         time.Duration `yaml:"timeout"`
}

// DatabaseConfig holds the SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LimitsConfig holds per-user oracle throttling knobs.
type LimitsConfig struct {
	// RateLimit is the maximum queries per user per minute.
	RateLimit int `yaml:"rateLimit"`
	// TokenBudget is the maximum oracle tokens per user per UTC day.
	TokenBudget int `yaml:"tokenBudget"`
}

// LogConfig controls log output.
type LogConfig struct {
	// Level is "debug", "info", "warn", or "error". Defaults to "info".
	Level string `yaml:"level"`
	// Format is "text" or "json". Defaults to "text".
	Format string `yaml:"format"`
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays environment variables onto the file-loaded values.
func (c *Config) applyEnv() {
	c.Server.Addr = environment.StringOr("AURUM_ADDR", c.Server.Addr)
	c.Server.JWTSecret = environment.StringOr("AURUM_JWT_SECRET", c.Server.JWTSecret)

	c.Oracle.APIKey = environment.StringOr("ORACLE_API_KEY", c.Oracle.APIKey)
	c.Oracle.BaseURL = environment.StringOr("ORACLE_BASE_URL", c.Oracle.BaseURL)
	c.Oracle.Model = environment.StringOr("ORACLE_MODEL", c.Oracle.Model)
	c.Oracle.Timeout = environment.DurationOr("ORACLE_TIMEOUT", c.Oracle.Timeout)

	c.Directory.ClientsURL = environment.StringOr("DIRECTORY_CLIENTS_URL", c.Directory.ClientsURL)
	c.Directory.TransactionsURL = environment.StringOr("DIRECTORY_TRANSACTIONS_URL", c.Directory.TransactionsURL)
	c.Directory.UsersURL = environment.StringOr("DIRECTORY_USERS_URL", c.Directory.UsersURL)
	c.Directory.Timeout = environment.DurationOr("DIRECTORY_TIMEOUT", c.Directory.Timeout)

	c.Database.Path = environment.StringOr("DATABASE_PATH", c.Database.Path)

	c.Limits.RateLimit = environment.IntOr("RATE_LIMIT_PER_MINUTE", c.Limits.RateLimit)
	c.Limits.TokenBudget = environment.IntOr("TOKEN_BUDGET_PER_DAY", c.Limits.TokenBudget)

	c.Log.Level = environment.StringOr("LOG_LEVEL", c.Log.Level)
	c.Log.Format = environment.StringOr("LOG_FORMAT", c.Log.Format)
}

// applyDefaults fills unset values.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./aurum.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	// Oracle, directory, and limit defaults live with their packages; zero
	// values there select the package defaults.
}

// Validate checks the configuration for structural correctness. It returns
// the first validation error encountered, or nil if the config is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.JWTSecret) == "" {
		return fmt.Errorf("server.jwtSecret must not be empty")
	}
	if strings.TrimSpace(c.Oracle.APIKey) == "" {
		return fmt.Errorf("oracle.apiKey must not be empty")
	}
	if strings.TrimSpace(c.Directory.ClientsURL) == "" {
		return fmt.Errorf("directory.clientsUrl must not be empty")
	}
	if strings.TrimSpace(c.Directory.TransactionsURL) == "" {
		return fmt.Errorf("directory.transactionsUrl must not be empty")
	}
	if strings.TrimSpace(c.Directory.UsersURL) == "" {
		return fmt.Errorf("directory.usersUrl must not be empty")
	}
	if c.Limits.RateLimit < 0 {
		return fmt.Errorf("limits.rateLimit must not be negative")
	}
	if c.Limits.TokenBudget < 0 {
		return fmt.Errorf("limits.tokenBudget must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json; got %q", c.Log.Format)
	}
	return nil
}
