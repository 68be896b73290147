package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/gateline/gateline/internal/notify"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig      `yaml:"server" envconfig:"SERVER"`
	Storage   StorageConfig     `yaml:"storage" envconfig:"STORAGE"`
	Cache     CacheConfig       `yaml:"cache" envconfig:"CACHE"`
	Logging   LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	Admin     AdminConfig       `yaml:"admin" envconfig:"ADMIN"`
	RateLimit RateLimitConfig   `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	CORS      CORSConfig        `yaml:"cors" envconfig:"CORS"`
	Email     notify.SMTPConfig `yaml:"email" envconfig:"EMAIL"`
	SMS       notify.SMSConfig  `yaml:"sms" envconfig:"SMS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host string `yaml:"host" envconfig:"HOST"`
	Port int    `yaml:"port" envconfig:"PORT"`
	// Endpoint is the path the RPC multiplexer answers on.
	Endpoint string `yaml:"endpoint" envconfig:"ENDPOINT"`
	// Debug enables contract hints, received-payload echo and
	// notification rerouting. Never enable in production.
	Debug bool `yaml:"debug" envconfig:"DEBUG"`
	// StaticDir serves files when set; NotFoundPage answers unmatched
	// routes when set.
	StaticDir    string `yaml:"static_dir" envconfig:"STATIC_DIR"`
	NotFoundPage string `yaml:"not_found_page" envconfig:"NOT_FOUND_PAGE"`
}

// StorageConfig contains database configuration
type StorageConfig struct {
	Type     string         `yaml:"type" envconfig:"TYPE"` // memory, postgres
	Postgres PostgresConfig `yaml:"postgres" envconfig:"POSTGRES"`
}

// PostgresConfig contains Postgres-specific configuration
type PostgresConfig struct {
	DSN          string `yaml:"dsn" envconfig:"DSN"`
	MaxOpenConns int    `yaml:"max_open_conns" envconfig:"MAX_OPEN_CONNS"`
	Migrate      bool   `yaml:"migrate" envconfig:"MIGRATE"`
}

// CacheConfig contains credential cache configuration
type CacheConfig struct {
	Type  string      `yaml:"type" envconfig:"TYPE"` // memory, redis
	Redis RedisConfig `yaml:"redis" envconfig:"REDIS"`
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Address  string `yaml:"address" envconfig:"ADDRESS"`
	Password string `yaml:"password" envconfig:"PASSWORD"`
	DB       int    `yaml:"db" envconfig:"DB"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" envconfig:"FORMAT"` // json, text
}

// AdminConfig contains the internal admin API configuration
type AdminConfig struct {
	Port int `yaml:"port" envconfig:"PORT"` // 0 disables the admin server
	// Secret signs admin bearer tokens. Required when Port is set.
	Secret      string `yaml:"secret" envconfig:"SECRET"`
	ExpiryHours int    `yaml:"expiry_hours" envconfig:"EXPIRY_HOURS"`
	Issuer      string `yaml:"issuer" envconfig:"ISSUER"`
}

// CORSConfig contains cross-origin request configuration
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	AllowedMethods   []string `yaml:"allowed_methods" envconfig:"ALLOWED_METHODS"`
	AllowedHeaders   []string `yaml:"allowed_headers" envconfig:"ALLOWED_HEADERS"`
	AllowCredentials bool     `yaml:"allow_credentials" envconfig:"ALLOW_CREDENTIALS"`
	MaxAge           int      `yaml:"max_age" envconfig:"MAX_AGE"` // seconds
}

// RateLimitConfig contains per-client request rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// Load loads configuration from file and environment variables
func Load(configFile string) (*Config, error) {
	cfg := defaultConfig()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// File doesn't exist, that's ok - we'll use defaults and env vars
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Environment variables take priority over file values
	if err := envconfig.Process("GATELINE", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible default values
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     8090,
			Endpoint: "json-api",
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxOpenConns: 10,
				Migrate:      true,
			},
		},
		Cache: CacheConfig{
			Type: "memory",
			Redis: RedisConfig{
				Address: "localhost:6379",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Admin: AdminConfig{
			ExpiryHours: 24,
			Issuer:      "gateline",
		},
		RateLimit: RateLimitConfig{
			RPS:   20,
			Burst: 40,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
			MaxAge:         300,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.Endpoint == "" {
		return fmt.Errorf("server endpoint is required")
	}

	if c.Storage.Type != "memory" && c.Storage.Type != "postgres" {
		return fmt.Errorf("invalid storage type: %s (must be memory or postgres)", c.Storage.Type)
	}
	if c.Storage.Type == "postgres" && c.Storage.Postgres.DSN == "" {
		return fmt.Errorf("postgres dsn is required when using postgres storage")
	}

	if c.Cache.Type != "memory" && c.Cache.Type != "redis" {
		return fmt.Errorf("invalid cache type: %s (must be memory or redis)", c.Cache.Type)
	}
	if c.Cache.Type == "redis" && c.Cache.Redis.Address == "" {
		return fmt.Errorf("redis address is required when using redis cache")
	}

	if c.Admin.Port != 0 && c.Admin.Secret == "" {
		return fmt.Errorf("admin secret is required when the admin server is enabled")
	}

	return nil
}

// Address returns the server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AdminAddress returns the admin server address
func (c *Config) AdminAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Admin.Port)
}
