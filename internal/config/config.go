package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Storage driver names.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config defines playhub service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"PLAYHUB_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		Driver string `yaml:"driver" env:"PLAYHUB_STORAGE_DRIVER"`
		DSN    string `yaml:"dsn" env:"PLAYHUB_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Enabled  bool   `yaml:"enabled" env:"PLAYHUB_REDIS_ENABLED"`
		Addr     string `yaml:"addr" env:"PLAYHUB_REDIS_ADDR"`
		Password string `yaml:"password" env:"PLAYHUB_REDIS_PASSWORD"`
		TTL      int    `yaml:"ttlSeconds" env:"PLAYHUB_REDIS_TTL"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret         string `yaml:"jwtSecret" env:"PLAYHUB_JWT_SECRET"`
		AdminPasswordHash string `yaml:"adminPasswordHash" env:"PLAYHUB_ADMIN_PASSWORD_HASH"`
		TokenTTLMinutes   int    `yaml:"tokenTtlMinutes" env:"PLAYHUB_TOKEN_TTL_MINUTES"`
	} `yaml:"auth"`
	Alerts struct {
		IntervalMinutes int `yaml:"intervalMinutes" env:"PLAYHUB_ALERT_INTERVAL_MINUTES"`
	} `yaml:"alerts"`
	Targets struct {
		Daily   float64 `yaml:"daily" env:"PLAYHUB_TARGET_DAILY"`
		Weekly  float64 `yaml:"weekly" env:"PLAYHUB_TARGET_WEEKLY"`
		Monthly float64 `yaml:"monthly" env:"PLAYHUB_TARGET_MONTHLY"`
	} `yaml:"targets"`
	Sheets struct {
		APIKey  string `yaml:"apiKey" env:"PLAYHUB_SHEETS_API_KEY"`
		SheetID string `yaml:"sheetId" env:"PLAYHUB_SHEETS_ID"`
		BaseURL string `yaml:"baseUrl" env:"PLAYHUB_SHEETS_BASE_URL"`
	} `yaml:"sheets"`
}

// Load reads configuration via the shared loader and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Database.Driver = DriverPostgres
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.TTL = 86400
	cfg.Auth.TokenTTLMinutes = 720
	cfg.Alerts.IntervalMinutes = 30
	cfg.Targets.Daily = 15000
	cfg.Targets.Weekly = 90000
	cfg.Targets.Monthly = 350000

	if err := loadInto(cfg); err != nil {
		return nil, err
	}

	switch cfg.Database.Driver {
	case DriverPostgres:
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return nil, errors.New("config: database dsn required for postgres driver")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("config: unknown storage driver %q", cfg.Database.Driver)
	}

	if cfg.Redis.Enabled && strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil, errors.New("config: redis addr required when redis is enabled")
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// ActiveSessionTTL returns the redis cache ttl as duration.
func (c *Config) ActiveSessionTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// AlertInterval returns the sweep period for the alert scheduler.
func (c *Config) AlertInterval() time.Duration {
	if c.Alerts.IntervalMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Alerts.IntervalMinutes) * time.Minute
}

// TokenTTL returns the admin token lifetime.
func (c *Config) TokenTTL() time.Duration {
	if c.Auth.TokenTTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}
