package relmap

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rzpsarthak13/relmap/internal/core"
)

func strptr(s string) *string { return &s }

func validMySQLConfig() *Config {
	config := DefaultConfig()
	config.Database.Database = "testdb"
	config.Database.Username = "root"
	return config
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid mysql",
			mutate: func(c *Config) {},
		},
		{
			name: "valid sqlite",
			mutate: func(c *Config) {
				c.Database = DatabaseConfig{Dialect: "sqlite", Path: ":memory:"}
			},
		},
		{
			name: "unknown dialect",
			mutate: func(c *Config) {
				c.Database.Dialect = "postgres"
			},
			wantErr: "unsupported dialect",
		},
		{
			name: "mysql missing database name",
			mutate: func(c *Config) {
				c.Database.Database = ""
			},
			wantErr: "database name is required",
		},
		{
			name: "mysql missing username",
			mutate: func(c *Config) {
				c.Database.Username = ""
			},
			wantErr: "database username is required",
		},
		{
			name: "sqlite missing path",
			mutate: func(c *Config) {
				c.Database = DatabaseConfig{Dialect: "sqlite"}
			},
			wantErr: "database path is required",
		},
		{
			name: "timestamps with both columns",
			mutate: func(c *Config) {
				c.Timestamps = &TimestampsConfig{Created: strptr("created_at"), Updated: strptr("updated_at")}
			},
		},
		{
			name: "timestamps explicitly disabled",
			mutate: func(c *Config) {
				c.Timestamps = &TimestampsConfig{Created: strptr(""), Updated: strptr("")}
			},
		},
		{
			name: "timestamps missing created",
			mutate: func(c *Config) {
				c.Timestamps = &TimestampsConfig{Updated: strptr("updated_at")}
			},
			wantErr: "timestamps.created must be set",
		},
		{
			name: "timestamps missing updated",
			mutate: func(c *Config) {
				c.Timestamps = &TimestampsConfig{Created: strptr("created_at")}
			},
			wantErr: "timestamps.updated must be set",
		},
		{
			name: "audit enabled without endpoint",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.Endpoint = ""
			},
			wantErr: "audit endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validMySQLConfig()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			var configErr *core.ConfigurationError
			if !errors.As(err, &configErr) {
				t.Fatalf("expected *ConfigurationError, got %T", err)
			}
			if got := err.Error(); !strings.Contains(got, tt.wantErr) {
				t.Errorf("error = %q, want substring %q", got, tt.wantErr)
			}
		})
	}
}

func TestDialectConfig(t *testing.T) {
	config := validMySQLConfig()
	config.Timestamps = &TimestampsConfig{Created: strptr("created_at"), Updated: strptr("")}

	dc := config.DialectConfig()
	if dc.Kind != core.DialectMySQL {
		t.Errorf("dialect = %q, want mysql", dc.Kind)
	}
	if dc.CreatedColumn != "created_at" {
		t.Errorf("created column = %q, want created_at", dc.CreatedColumn)
	}
	if dc.UpdatedColumn != "" {
		t.Errorf("updated column = %q, want empty (disabled)", dc.UpdatedColumn)
	}
}

func TestLoadConfigFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
database:
  dialect: sqlite
  path: /tmp/test.db
timestamps:
  created: created_at
  updated: updated_at
audit:
  enabled: true
  endpoint: localhost:6379
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}
	if config.Database.Dialect != "sqlite" || config.Database.Path != "/tmp/test.db" {
		t.Errorf("database config = %+v", config.Database)
	}
	if config.Timestamps == nil || *config.Timestamps.Created != "created_at" {
		t.Errorf("timestamps config = %+v", config.Timestamps)
	}
	if !config.Audit.Enabled {
		t.Error("audit should be enabled")
	}
	// Defaults survive for keys the file does not set.
	if config.Audit.Key != "relmap:statements" {
		t.Errorf("audit key = %q, want default", config.Audit.Key)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadConfigFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"database": {"dialect": "mysql", "host": "db.internal", "port": 3307, "database": "app", "username": "svc"}}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}
	if config.Database.Host != "db.internal" || config.Database.Port != 3307 {
		t.Errorf("database config = %+v", config.Database)
	}
}

func TestLoadConfigFileUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfigFile(path)
	var configErr *core.ConfigurationError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("RELMAP_DB_DIALECT", "sqlite")
	t.Setenv("RELMAP_DB_PATH", ":memory:")
	t.Setenv("RELMAP_TS_CREATED", "created_at")
	t.Setenv("RELMAP_TS_UPDATED", "")

	config, err := LoadConfigEnv()
	if err != nil {
		t.Fatalf("LoadConfigEnv failed: %v", err)
	}
	if config.Database.Dialect != "sqlite" || config.Database.Path != ":memory:" {
		t.Errorf("database config = %+v", config.Database)
	}
	if config.Timestamps == nil {
		t.Fatal("timestamps should be configured")
	}
	if *config.Timestamps.Created != "created_at" {
		t.Errorf("created = %q", *config.Timestamps.Created)
	}
	// An empty value is an explicit disable, not an omission.
	if config.Timestamps.Updated == nil || *config.Timestamps.Updated != "" {
		t.Errorf("updated = %v, want explicit empty", config.Timestamps.Updated)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadConfigEnvPartialTimestampsFailValidation(t *testing.T) {
	t.Setenv("RELMAP_DB_DIALECT", "sqlite")
	t.Setenv("RELMAP_DB_PATH", ":memory:")
	t.Setenv("RELMAP_TS_CREATED", "created_at")

	config, err := LoadConfigEnv()
	if err != nil {
		t.Fatalf("LoadConfigEnv failed: %v", err)
	}
	var configErr *core.ConfigurationError
	if err := config.Validate(); !errors.As(err, &configErr) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
}
