package relmap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rzpsarthak13/relmap/internal/core"
)

// Config represents the root configuration for the relmap client.
type Config struct {
	// Database contains configuration for the relational database.
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Timestamps contains the automatic timestamp column configuration.
	// Omit the whole section to disable timestamp management. When the
	// section is present, both Created and Updated must be set; use an
	// empty string to explicitly disable one of them.
	Timestamps *TimestampsConfig `yaml:"timestamps,omitempty" json:"timestamps,omitempty"`

	// Audit contains configuration for the optional Redis statement
	// audit trail.
	Audit AuditConfig `yaml:"audit,omitempty" json:"audit,omitempty"`
}

// DatabaseConfig contains configuration for the relational database.
type DatabaseConfig struct {
	// Dialect specifies the SQL dialect. Supports "mysql" or "sqlite".
	Dialect string `yaml:"dialect" json:"dialect"`

	// Host is the database host address. MySQL only.
	Host string `yaml:"host,omitempty" json:"host,omitempty"`

	// Port is the database port number. MySQL only.
	Port int `yaml:"port,omitempty" json:"port,omitempty"`

	// Database is the database name. MySQL only.
	Database string `yaml:"database,omitempty" json:"database,omitempty"`

	// Username is the database username. MySQL only.
	Username string `yaml:"username,omitempty" json:"username,omitempty"`

	// Password is the database password. MySQL only.
	Password string `yaml:"password,omitempty" json:"password,omitempty"`

	// Path is the database file path. SQLite only; use ":memory:" for an
	// in-memory database.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database.
	MaxOpenConns int `yaml:"max_open_conns,omitempty" json:"max_open_conns,omitempty"`

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int `yaml:"max_idle_conns,omitempty" json:"max_idle_conns,omitempty"`

	// ConnMaxLifetime is the maximum amount of time a connection may be reused.
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime,omitempty" json:"conn_max_lifetime,omitempty"`

	// ConnMaxIdleTime is the maximum amount of time a connection may be idle.
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time,omitempty" json:"conn_max_idle_time,omitempty"`

	// ConnectionTimeout is the timeout for establishing database connections.
	ConnectionTimeout time.Duration `yaml:"connection_timeout,omitempty" json:"connection_timeout,omitempty"`
}

// TimestampsConfig names the columns the mapper fills with the dialect's
// current-timestamp function. Pointer fields distinguish "not provided"
// from "provided empty": an omitted key is a configuration error, an
// empty string disables that column.
type TimestampsConfig struct {
	// Created is the column set on insert.
	Created *string `yaml:"created" json:"created"`

	// Updated is the column set on insert and update.
	Updated *string `yaml:"updated" json:"updated"`
}

// AuditConfig contains configuration for the Redis statement audit trail.
type AuditConfig struct {
	// Enabled indicates whether executed statements are mirrored to Redis.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Endpoint is the Redis endpoint (host:port).
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`

	// Password is the authentication password for Redis.
	Password string `yaml:"password,omitempty" json:"password,omitempty"`

	// DB is the Redis database number (0-15).
	DB int `yaml:"db,omitempty" json:"db,omitempty"`

	// Key is the Redis list the statements are pushed to.
	Key string `yaml:"key,omitempty" json:"key,omitempty"`

	// MaxEntries caps the length of the audit list.
	MaxEntries int64 `yaml:"max_entries,omitempty" json:"max_entries,omitempty"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Dialect:           "mysql",
			Host:              "localhost",
			Port:              3306,
			MaxOpenConns:      25,
			MaxIdleConns:      5,
			ConnMaxLifetime:   5 * time.Minute,
			ConnMaxIdleTime:   10 * time.Minute,
			ConnectionTimeout: 10 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			Endpoint:   "localhost:6379",
			Key:        "relmap:statements",
			MaxEntries: 1000,
		},
	}
}

// LoadConfigFile loads configuration from a YAML or JSON file, chosen by
// extension, on top of the defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, &core.ConfigurationError{Reason: fmt.Sprintf("invalid YAML config: %v", err)}
		}
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, &core.ConfigurationError{Reason: fmt.Sprintf("invalid JSON config: %v", err)}
		}
	default:
		return nil, &core.ConfigurationError{Reason: fmt.Sprintf("unsupported config format: %s", ext)}
	}

	return config, nil
}

// LoadConfigEnv loads configuration from RELMAP_* environment variables
// on top of the defaults. A .env file in the working directory is read
// first if present.
func LoadConfigEnv() (*Config, error) {
	// Missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	config := DefaultConfig()

	if v := os.Getenv("RELMAP_DB_DIALECT"); v != "" {
		config.Database.Dialect = v
	}
	if v := os.Getenv("RELMAP_DB_HOST"); v != "" {
		config.Database.Host = v
	}
	if v := os.Getenv("RELMAP_DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, &core.ConfigurationError{Reason: fmt.Sprintf("invalid RELMAP_DB_PORT: %q", v)}
		}
		config.Database.Port = port
	}
	if v := os.Getenv("RELMAP_DB_NAME"); v != "" {
		config.Database.Database = v
	}
	if v := os.Getenv("RELMAP_DB_USERNAME"); v != "" {
		config.Database.Username = v
	}
	if v := os.Getenv("RELMAP_DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}
	if v := os.Getenv("RELMAP_DB_PATH"); v != "" {
		config.Database.Path = v
	}

	created, createdSet := os.LookupEnv("RELMAP_TS_CREATED")
	updated, updatedSet := os.LookupEnv("RELMAP_TS_UPDATED")
	if createdSet || updatedSet {
		config.Timestamps = &TimestampsConfig{}
		if createdSet {
			config.Timestamps.Created = &created
		}
		if updatedSet {
			config.Timestamps.Updated = &updated
		}
	}

	if v := os.Getenv("RELMAP_AUDIT_ENDPOINT"); v != "" {
		config.Audit.Enabled = true
		config.Audit.Endpoint = v
	}
	if v := os.Getenv("RELMAP_AUDIT_PASSWORD"); v != "" {
		config.Audit.Password = v
	}
	if v := os.Getenv("RELMAP_AUDIT_KEY"); v != "" {
		config.Audit.Key = v
	}

	return config, nil
}

// Validate checks the configuration for completeness and consistency.
func (c *Config) Validate() error {
	dialect, err := core.ParseDialect(c.Database.Dialect)
	if err != nil {
		return err
	}

	switch dialect {
	case core.DialectMySQL:
		if c.Database.Host == "" {
			return &core.ConfigurationError{Reason: "database host is required for mysql"}
		}
		if c.Database.Port <= 0 {
			return &core.ConfigurationError{Reason: "database port is required for mysql"}
		}
		if c.Database.Database == "" {
			return &core.ConfigurationError{Reason: "database name is required for mysql"}
		}
		if c.Database.Username == "" {
			return &core.ConfigurationError{Reason: "database username is required for mysql"}
		}
	case core.DialectSQLite:
		if c.Database.Path == "" {
			return &core.ConfigurationError{Reason: "database path is required for sqlite"}
		}
	}

	// Partial timestamp configuration is a hard error: requiring both
	// keys makes "updated only" an explicit choice rather than a typo.
	if ts := c.Timestamps; ts != nil {
		if ts.Created == nil {
			return &core.ConfigurationError{Reason: "timestamps.created must be set when timestamps are configured (use \"\" to disable)"}
		}
		if ts.Updated == nil {
			return &core.ConfigurationError{Reason: "timestamps.updated must be set when timestamps are configured (use \"\" to disable)"}
		}
	}

	if c.Audit.Enabled && c.Audit.Endpoint == "" {
		return &core.ConfigurationError{Reason: "audit endpoint is required when audit is enabled"}
	}

	return nil
}

// DialectConfig derives the internal dialect configuration. Validate must
// have succeeded first.
func (c *Config) DialectConfig() core.DialectConfig {
	dialect, _ := core.ParseDialect(c.Database.Dialect)
	dc := core.DialectConfig{Kind: dialect}
	if ts := c.Timestamps; ts != nil {
		if ts.Created != nil {
			dc.CreatedColumn = *ts.Created
		}
		if ts.Updated != nil {
			dc.UpdatedColumn = *ts.Updated
		}
	}
	return dc
}
