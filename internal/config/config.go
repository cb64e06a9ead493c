package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const configFileEnv = "CONFIG_FILE"

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration (optional)
	Redis RedisConfig `yaml:"redis"`

	// Identity gate configuration
	Auth AuthConfig `yaml:"auth"`

	// Content lifecycle policy
	Content ContentConfig `yaml:"content"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver         string        `yaml:"driver"`
	Host           string        `yaml:"host"`
	Port           string        `yaml:"port"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	Name           string        `yaml:"name"`
	SSLMode        string        `yaml:"sslMode"`
	Path           string        `yaml:"path"` // sqlite3 database file
	MigrationsPath string        `yaml:"migrationsPath"`
	MaxOpenConns   int           `yaml:"maxOpenConns"`
	MaxIdleConns   int           `yaml:"maxIdleConns"`
	MaxLifetime    time.Duration `yaml:"maxLifetime"`
}

// RedisConfig holds the optional redis connection used for view
// de-duplication and comment rate limiting. An empty Addr disables both.
type RedisConfig struct {
	Addr             string        `yaml:"addr"`
	Password         string        `yaml:"password"`
	DB               int           `yaml:"db"`
	ViewWindow       time.Duration `yaml:"viewWindow"`
	CommentRateLimit int           `yaml:"commentRateLimit"` // per client per window
	CommentRateWin   time.Duration `yaml:"commentRateWindow"`
}

// AuthConfig holds the JWT settings used to resolve callers
type AuthConfig struct {
	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`
}

// ContentConfig holds the moderation policy and listing limits
type ContentConfig struct {
	ArticleNeedAudit   bool `yaml:"articleNeedAudit"`
	CommentNeedAudit   bool `yaml:"commentNeedAudit"`
	TransliterateSlugs bool `yaml:"transliterateSlugs"`
	DefaultPageSize    int  `yaml:"defaultPageSize"`
	MaxPageSize        int  `yaml:"maxPageSize"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "pretty"
}

// Load reads the optional YAML file named by CONFIG_FILE, then applies
// environment variable overrides on top of it.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(configFileEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:         DriverPostgres,
			Host:           "localhost",
			Port:           "5432",
			User:           "postgres",
			Password:       "postgres",
			Name:           "blog",
			SSLMode:        "disable",
			Path:           "./data/blog.db",
			MigrationsPath: "./migrations",
			MaxOpenConns:   25,
			MaxIdleConns:   5,
			MaxLifetime:    5 * time.Minute,
		},
		Redis: RedisConfig{
			ViewWindow:       30 * time.Minute,
			CommentRateLimit: 10,
			CommentRateWin:   time.Minute,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Content: ContentConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.ShutdownTimeout = getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.Path = getEnv("DB_PATH", c.Database.Path)
	c.Database.MigrationsPath = getEnv("MIGRATIONS_PATH", c.Database.MigrationsPath)
	c.Database.MaxOpenConns = getIntEnv("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getIntEnv("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.MaxLifetime = getDurationEnv("DB_MAX_LIFETIME", c.Database.MaxLifetime)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getIntEnv("REDIS_DB", c.Redis.DB)
	c.Redis.ViewWindow = getDurationEnv("VIEW_DEDUP_WINDOW", c.Redis.ViewWindow)
	c.Redis.CommentRateLimit = getIntEnv("COMMENT_RATE_LIMIT", c.Redis.CommentRateLimit)
	c.Redis.CommentRateWin = getDurationEnv("COMMENT_RATE_WINDOW", c.Redis.CommentRateWin)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTL = getDurationEnv("JWT_TTL", c.Auth.TokenTTL)

	c.Content.ArticleNeedAudit = getBoolEnv("ARTICLE_NEED_AUDIT", c.Content.ArticleNeedAudit)
	c.Content.CommentNeedAudit = getBoolEnv("COMMENT_NEED_AUDIT", c.Content.CommentNeedAudit)
	c.Content.TransliterateSlugs = getBoolEnv("SLUG_TRANSLITERATE", c.Content.TransliterateSlugs)
	c.Content.DefaultPageSize = getIntEnv("DEFAULT_PAGE_SIZE", c.Content.DefaultPageSize)
	c.Content.MaxPageSize = getIntEnv("MAX_PAGE_SIZE", c.Content.MaxPageSize)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("DB_PATH is required for sqlite3")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Content.DefaultPageSize <= 0 || c.Content.MaxPageSize < c.Content.DefaultPageSize {
		return fmt.Errorf("invalid page size limits: default=%d max=%d",
			c.Content.DefaultPageSize, c.Content.MaxPageSize)
	}
	return nil
}

// GetDSN returns the driver specific connection string
func (c *DatabaseConfig) GetDSN() string {
	if c.Driver == DriverSQLite {
		return c.Path + "?_foreign_keys=on&_busy_timeout=5000"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
