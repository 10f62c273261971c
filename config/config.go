package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Search   SearchConfig   `yaml:"search"`
	Retry    RetryConfig    `yaml:"retry"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address            string `yaml:"address"`
	SessionIdleSeconds int    `yaml:"session_idle_seconds"`
	MaxSessions        int    `yaml:"max_sessions"`
}

func (h HTTPConfig) SessionIdleTimeout() time.Duration {
	return time.Duration(h.SessionIdleSeconds) * time.Second
}

type DatabaseConfig struct {
	Driver        string `yaml:"driver"`
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	Name          string `yaml:"name"`
	SSLMode       string `yaml:"ssl_mode"`
	Path          string `yaml:"path"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers                []string `yaml:"brokers"`
	ReservationEventsTopic string   `yaml:"reservation_events_topic"`
	NotificationsTopic     string   `yaml:"notifications_topic"`
	GroupID                string   `yaml:"group_id"`
}

type SearchConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

func (s SearchConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// RetryConfig bounds conflict retries. MaxAttempts of zero means unbounded.
type RetryConfig struct {
	MaxAttempts     int `yaml:"max_attempts"`
	BackoffMS       int `yaml:"backoff_ms"`
	DeadlineSeconds int `yaml:"deadline_seconds"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Default returns the values used for keys missing from the file.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{Address: ":8080", SessionIdleSeconds: 1800, MaxSessions: 10000},
		Database: DatabaseConfig{
			Driver:        DriverPostgres,
			Port:          5432,
			SSLMode:       "disable",
			Path:          "flightbooking.db",
			BusyTimeoutMS: 5000,
		},
		Search: SearchConfig{CacheTTLSeconds: 60},
		Retry:  RetryConfig{BackoffMS: 10},
		Log:    LogConfig{Level: "info"},
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == DriverSQLite && c.Database.Path == "" {
		return fmt.Errorf("database.path is required for sqlite")
	}
	if c.Retry.MaxAttempts < 0 || c.Retry.BackoffMS < 0 || c.Retry.DeadlineSeconds < 0 {
		return fmt.Errorf("retry values must not be negative")
	}
	if c.HTTP.SessionIdleSeconds < 0 || c.HTTP.MaxSessions < 0 {
		return fmt.Errorf("http session limits must not be negative")
	}
	if c.Search.CacheTTLSeconds < 0 {
		return fmt.Errorf("search.cache_ttl_seconds must not be negative")
	}
	return nil
}
