// Package config loads server configuration from config.yaml with
// environment variable overrides.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for vizquery-engine.
// Configuration can come from YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values. Secrets
// (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Application store (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Authentication
	Auth AuthConfig `yaml:"auth"`

	// CredentialsKey encrypts stored source passwords. Falls back to
	// the JWT secret when unset.
	CredentialsKey string `yaml:"-" env:"CREDENTIALS_KEY"` // Secret - not in YAML

	// External analysis model
	LLM LLMConfig `yaml:"llm"`

	// Uploaded spreadsheet storage
	Uploads UploadsConfig `yaml:"uploads"`

	// Query execution bounds
	Query QueryConfig `yaml:"query"`
}

// DatabaseConfig holds PostgreSQL settings for the application's own
// store (users, connection profiles, query history).
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"vizquery"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"vizquery_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	// JWTSecret signs session tokens. Server fails to start without it.
	JWTSecret string `yaml:"-" env:"JWT_SECRET"` // Secret - not in YAML

	// TokenTTLHours is the session token lifetime.
	TokenTTLHours int `yaml:"token_ttl_hours" env:"AUTH_TOKEN_TTL_HOURS" env-default:"24"`
}

// LLMConfig holds settings for the external analysis model.
type LLMConfig struct {
	Provider       string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	Endpoint       string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:""`
	Model          string `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o"`
	APIKey         string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	MaxTokens      int    `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"2000"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS" env-default:"60"`
}

// UploadsConfig holds storage settings for uploaded spreadsheet files.
type UploadsConfig struct {
	Dir       string `yaml:"dir" env:"UPLOADS_DIR" env-default:"./uploads"`
	MaxSizeMB int64  `yaml:"max_size_mb" env:"UPLOADS_MAX_SIZE_MB" env-default:"25"`
}

// QueryConfig bounds query execution against registered sources.
type QueryConfig struct {
	// RowLimit caps rows returned from any generated query.
	RowLimit int `yaml:"row_limit" env:"QUERY_ROW_LIMIT" env-default:"1000"`

	// DumpRowsPerTable caps rows read per table when a source is dumped
	// for model context.
	DumpRowsPerTable int `yaml:"dump_rows_per_table" env:"QUERY_DUMP_ROWS_PER_TABLE" env-default:"100"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}
	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.Query.RowLimit <= 0 {
		return fmt.Errorf("query row_limit must be positive")
	}
	return nil
}
