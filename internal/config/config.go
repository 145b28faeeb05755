// Package config provides configuration management for the EV parlay service.
package config

import (
	"fmt"

	"github.com/Randysweatpants/GambleBotAPI/internal/odds"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	OddsAPI  OddsAPIConfig  `mapstructure:"odds_api" validate:"required"`
	Engine   EngineConfig   `mapstructure:"engine" validate:"required"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the HTTP API configuration. APIKey is optional;
// when set, the protected routes require a matching X-API-Key header.
type ServerConfig struct {
	Port            int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	HealthPort      int    `mapstructure:"health_port" validate:"omitempty,min=1,max=65535"`
	APIKey          string `mapstructure:"api_key"`
	RequestTimeout  int    `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout_seconds" validate:"required,gt=0"`
}

// DatabaseConfig represents database connection configuration. The database
// backs result logging only and may be disabled entirely.
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// OddsAPIConfig represents the odds provider client configuration.
type OddsAPIConfig struct {
	BaseURL         string   `mapstructure:"base_url" validate:"required,url"`
	APIKey          string   `mapstructure:"api_key"`
	Regions         []string `mapstructure:"regions" validate:"required,min=1"`
	Markets         []string `mapstructure:"markets" validate:"required,min=1,markets"`
	Bookmakers      []string `mapstructure:"bookmakers"`
	TimeoutSeconds  int      `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries      int      `mapstructure:"max_retries" validate:"gte=0"`
	RateLimitPerSec float64  `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	CacheTTLSeconds int      `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// EngineConfig represents the pricing engine constants. These are read-only
// after process start and shared by every evaluation.
type EngineConfig struct {
	Bankroll         float64 `mapstructure:"bankroll" validate:"required,gt=0"`
	CorrelationDecay float64 `mapstructure:"correlation_decay" validate:"required,gt=0,lte=1"`
	KellyCap         float64 `mapstructure:"kelly_cap" validate:"required,gt=0,lte=1"`
	KellyFraction    float64 `mapstructure:"kelly_fraction" validate:"required,gt=0,lte=1"`
	OverroundMin     float64 `mapstructure:"overround_min" validate:"required,gt=0"`
	OverroundMax     float64 `mapstructure:"overround_max" validate:"required,gt=0"`
	MaxPoolSize      int     `mapstructure:"max_pool_size" validate:"required,gt=0"`
	AllowHedgedLegs  bool    `mapstructure:"allow_hedged_legs"`
	DefaultMinEV     float64 `mapstructure:"default_min_ev"`
	DefaultMaxLegs   int     `mapstructure:"default_max_legs" validate:"required,min=2,max=4"`
	DefaultTopN      int     `mapstructure:"default_top_n" validate:"required,gt=0"`
	WindowMinutes    int     `mapstructure:"window_minutes" validate:"required,gt=0"`
}

// OverroundBand returns the configured overround acceptance band.
func (e EngineConfig) OverroundBand() odds.Band {
	return odds.Band{Min: e.OverroundMin, Max: e.OverroundMax}
}

// ScanConfig represents the scheduled background scan configuration.
type ScanConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Schedule      string   `mapstructure:"schedule"`
	Sports        []string `mapstructure:"sports"`
	MinEV         float64  `mapstructure:"min_ev"`
	MaxLegs       int      `mapstructure:"max_legs" validate:"omitempty,min=2,max=4"`
	TopN          int      `mapstructure:"top_n" validate:"omitempty,gt=0"`
	WindowMinutes int      `mapstructure:"window_minutes" validate:"omitempty,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a keyword/value DSN for the configured database.
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
