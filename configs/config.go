package configs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"wbtxdash/internal/adapter/botapi"
	"wbtxdash/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	API      APIConfig      `mapstructure:"api"`
	Session  SessionConfig  `mapstructure:"session"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Display  DisplayConfig  `mapstructure:"display"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	OpsPort string `mapstructure:"ops_port"`
	Env     string `mapstructure:"env"`
}

// APIConfig points the dashboard at the bot backend
type APIConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	WSURL         string        `mapstructure:"ws_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	LoginEncoding string        `mapstructure:"login_encoding"`
	SignalShape   string        `mapstructure:"signal_shape"`
}

// SessionConfig controls the dashboard session cookie
type SessionConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
	Secure bool          `mapstructure:"secure"`
}

// DatabaseConfig holds database configuration. An empty URL disables the
// Postgres token store.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig holds Redis configuration. An empty URL keeps the token store
// and query cache in memory.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// CacheConfig holds query cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// DisplayConfig holds presentation settings
type DisplayConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

const defaultSessionSecret = "default-secret-change-in-production"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.ops_port", "9090")
	v.SetDefault("server.env", "development")

	v.SetDefault("api.base_url", "https://wbtx.onrender.com")
	v.SetDefault("api.ws_url", "")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.login_encoding", botapi.EncodingJSON)
	v.SetDefault("api.signal_shape", string(domain.ShapeDirectional))

	v.SetDefault("session.secret", defaultSessionSecret)
	v.SetDefault("session.ttl", 7*24*time.Hour)
	v.SetDefault("session.secure", true)

	v.SetDefault("database.url", "")
	v.SetDefault("redis.url", "")
	v.SetDefault("cache.ttl", 15*time.Second)
	v.SetDefault("display.timezone", "UTC")
	v.SetDefault("log.level", "info")
}

// Load reads configuration from an optional config.yaml in path and from
// environment variables (server.port -> SERVER_PORT).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the application cannot run with
func (c *Config) Validate() error {
	switch c.API.LoginEncoding {
	case botapi.EncodingJSON, botapi.EncodingForm:
	default:
		return fmt.Errorf("invalid api.login_encoding: %q (must be json or form)", c.API.LoginEncoding)
	}

	if _, err := domain.ParseSignalShape(c.API.SignalShape); err != nil {
		return fmt.Errorf("invalid api.signal_shape: %w", err)
	}

	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}

	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}

	return nil
}

// IsProduction reports whether the server runs with production defaults
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// UsesDefaultSecret reports whether the session secret was left unset
func (c *Config) UsesDefaultSecret() bool {
	return c.Session.Secret == defaultSessionSecret
}
