package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Server.Host = "localhost"
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestConfig_Validate_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"port too low", 0},
		{"port negative", -1},
		{"port too high", 65536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error for invalid port")
			}
		})
	}
}

func TestConfig_Validate_MissingEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Endpoint = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for missing endpoint")
	}
}

func TestConfig_Validate_StorageType(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Type = "mongodb"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for unsupported storage type")
	}

	cfg = validConfig()
	cfg.Storage.Type = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for postgres without dsn")
	}

	cfg.Storage.Postgres.DSN = "postgres://localhost/gateline?sslmode=disable"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestConfig_Validate_CacheType(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Type = "memcached"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for unsupported cache type")
	}
}

func TestConfig_Validate_AdminSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Admin.Port = 8091
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for admin server without secret")
	}

	cfg.Admin.Secret = "s3cret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8090 {
		t.Errorf("default port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.Server.Endpoint != "json-api" {
		t.Errorf("default endpoint = %q, want json-api", cfg.Server.Endpoint)
	}
	if cfg.Storage.Type != "memory" || cfg.Cache.Type != "memory" {
		t.Errorf("default stores = %s/%s, want memory/memory", cfg.Storage.Type, cfg.Cache.Type)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9000
  endpoint: api
  debug: true
logging:
  level: debug
  format: text
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if !cfg.Server.Debug {
		t.Error("debug not set from file")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GATELINE_SERVER_PORT", "9100")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want env override 9100", cfg.Server.Port)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("port = %d, want default 8090", cfg.Server.Port)
	}
}
