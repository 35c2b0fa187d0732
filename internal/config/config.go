package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kavyapath/kavyapath-web/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Env       string          `yaml:"env"`
	Server    ServerConfig    `yaml:"server"`
	API       APIConfig       `yaml:"api"`
	Session   SessionConfig   `yaml:"session"`
	Assistant AssistantConfig `yaml:"assistant"`
	Redis     RedisConfig     `yaml:"redis"`
	Database  DatabaseConfig  `yaml:"database"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port            int           `yaml:"port"`
	Mode            string        `yaml:"mode"` // debug, release, test
	PublicURL       string        `yaml:"public_url"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// APIConfig remote Kavyapath API settings
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	RetryCount int           `yaml:"retry_count"` // applied to GET requests only
}

// SessionConfig credential cookie settings
type SessionConfig struct {
	CookieName   string        `yaml:"cookie_name"`
	MaxAge       time.Duration `yaml:"max_age"`
	Secure       bool          `yaml:"secure"`
	Domain       string        `yaml:"domain"`
	LoginPath    string        `yaml:"login_path"`
	DraftTTL     time.Duration `yaml:"draft_ttl"`
	MaxImageSize int64         `yaml:"max_image_size"`
}

// AssistantConfig generative-AI provider settings
type AssistantConfig struct {
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	PanelTTL time.Duration `yaml:"panel_ttl"`
}

// RedisConfig Redis connection settings
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// DatabaseConfig analysis cache database settings
type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled"`
	Driver  string `yaml:"driver"` // sqlite, mysql
	DSN     string `yaml:"dsn"`
}

// CORSConfig CORS settings
type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// RateLimitConfig assistant rate limiting
type RateLimitConfig struct {
	AssistantPerMinute int `yaml:"assistant_per_minute"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Env: "local",
		Server: ServerConfig{
			Port:            8080,
			Mode:            "debug",
			PublicURL:       "http://localhost:8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		API: APIConfig{
			BaseURL:    "http://localhost:5000/api",
			Timeout:    30 * time.Second,
			RetryCount: 2,
		},
		Session: SessionConfig{
			CookieName:   "token",
			MaxAge:       30 * 24 * time.Hour,
			Secure:       true,
			LoginPath:    "/login",
			DraftTTL:     2 * time.Hour,
			MaxImageSize: 5 << 20,
		},
		Assistant: AssistantConfig{
			BaseURL:  "https://generativelanguage.googleapis.com/v1beta/openai/",
			Model:    "gemini-1.5-pro",
			Timeout:  60 * time.Second,
			CacheTTL: 7 * 24 * time.Hour,
			PanelTTL: 30 * time.Minute,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			PoolSize: 10,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "kavyapath.db",
		},
		CORS: CORSConfig{AllowOrigins: "http://localhost:3000"},
		RateLimit: RateLimitConfig{
			AssistantPerMinute: 20,
		},
	}
}

// Load reads the YAML file at path on top of defaults, then applies env overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.Session.CookieName == "" {
		return errors.New("session.cookie_name is required")
	}
	if c.Database.Enabled && c.Database.Driver != "sqlite" && c.Database.Driver != "mysql" {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

// IsDevelopment reports whether the app runs in a local/dev environment
func (c *Config) IsDevelopment() bool {
	switch c.Env {
	case "", "local", "dev", "development":
		return true
	}
	return false
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}
	setInt(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Mode, "GIN_MODE")
	setString(&cfg.Server.PublicURL, "PUBLIC_URL")
	setString(&cfg.API.BaseURL, "KAVYAPATH_API_URL")
	setBool(&cfg.Session.Secure, "COOKIE_SECURE")
	setString(&cfg.Session.Domain, "COOKIE_DOMAIN")
	setString(&cfg.Assistant.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Assistant.Model, "GEMINI_MODEL")
	setString(&cfg.Assistant.BaseURL, "GEMINI_BASE_URL")
	setBool(&cfg.Redis.Enabled, "REDIS_ENABLED")
	setString(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setBool(&cfg.Database.Enabled, "DATABASE_ENABLED")
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Database.DSN, "DATABASE_DSN")
	setString(&cfg.CORS.AllowOrigins, "CORS_ALLOW_ORIGINS")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// LogResolved prints the effective configuration with secrets masked
func LogResolved(cfg *Config) {
	logger.GetLogger().Info().
		Str("env", cfg.Env).
		Int("port", cfg.Server.Port).
		Str("api_base_url", cfg.API.BaseURL).
		Str("assistant_model", cfg.Assistant.Model).
		Str("assistant_api_key", mask(cfg.Assistant.APIKey)).
		Bool("redis", cfg.Redis.Enabled).
		Str("redis_addr", fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)).
		Bool("database", cfg.Database.Enabled).
		Str("database_driver", cfg.Database.Driver).
		Msg("config resolved")
}

func mask(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
