// Package daemon manages the Praxis daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Auth      AuthConfig      `toml:"auth"`
	Extract   ExtractConfig   `toml:"extract"`
	Email     EmailConfig     `toml:"email"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// DatabaseConfig controls sqlite storage.
type DatabaseConfig struct {
	Dir string `toml:"dir"`
}

// AuthConfig controls session tokens.
type AuthConfig struct {
	TokenTTLHours int `toml:"token_ttl_hours"`
}

// ExtractConfig controls the notes-extraction provider.
type ExtractConfig struct {
	BaseURL   string `toml:"base_url"`
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"` // env var holding the key
}

// EmailConfig controls reminder delivery.
type EmailConfig struct {
	APIKeyEnv string `toml:"api_key_env"`
	FromEmail string `toml:"from_email"`
	FromName  string `toml:"from_name"`
}

// SchedulerConfig controls the reminder sweeps.
type SchedulerConfig struct {
	Enabled              bool `toml:"enabled"`
	DailySweepSeconds    int  `toml:"daily_sweep_seconds"`
	InactiveSweepMinutes int  `toml:"inactive_sweep_minutes"`
	DailyToleranceMin    int  `toml:"daily_tolerance_minutes"`
}

// TelemetryConfig controls observability.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := praxisHome()
	return Config{
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        8420,
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Dir: homeDir,
		},
		Auth: AuthConfig{
			TokenTTLHours: 168, // 7 days
		},
		Extract: ExtractConfig{
			BaseURL:   "https://api.deepseek.com/v1",
			Model:     "deepseek-chat",
			APIKeyEnv: "DEEPSEEK_API_KEY",
		},
		Email: EmailConfig{
			APIKeyEnv: "RESEND_API_KEY",
			FromEmail: "reminders@praxis.app",
			FromName:  "Praxis",
		},
		Scheduler: SchedulerConfig{
			Enabled:              true,
			DailySweepSeconds:    60,
			InactiveSweepMinutes: 60,
			DailyToleranceMin:    5,
		},
		Telemetry: TelemetryConfig{
			Prometheus: false,
		},
	}
}

// TokenTTL returns the auth token lifetime.
func (c Config) TokenTTL() time.Duration {
	if c.Auth.TokenTTLHours <= 0 {
		return 168 * time.Hour
	}
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

// DailyTolerance returns the daily-reminder matching window.
func (c Config) DailyTolerance() time.Duration {
	if c.Scheduler.DailyToleranceMin <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Scheduler.DailyToleranceMin) * time.Minute
}

// LoadConfig reads config from $PRAXIS_HOME/config.toml, falling back to
// defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(praxisHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to $PRAXIS_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(praxisHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// praxisHome returns the Praxis data directory.
func praxisHome() string {
	if env := os.Getenv("PRAXIS_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".praxis")
}

// PraxisHome is exported for use by other packages.
func PraxisHome() string {
	return praxisHome()
}
