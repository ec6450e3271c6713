// Package config provides application configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/ashureev/crushcourt/internal/domain"
)

// Grant policies decide whether a failed point grant undoes the record write.
const (
	GrantTransactional = "transactional"
	GrantBestEffort    = "best_effort"
)

// Placeholder credentials; they must match the env-default tags below and are
// only accepted in development.
const (
	insecureSessionSecret = "dev-insecure-secret"
	insecurePasswordA     = "change-me"
	insecurePasswordB     = "change-him"
)

// Config holds all application configuration.
type Config struct {
	Port        string `env:"PORT"         env-default:"8080"`
	FrontendURL string `env:"FRONTEND_URL" env-default:""`
	DBPath      string `env:"DB_PATH"      env-default:"./data/crush_court.db"`

	Log          LogConfig
	Participants ParticipantsConfig
	Session      SessionConfig
	Points       PointsConfig
	Court        CourtConfig
	Retry        RetryConfig
	AI           AIConfig
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

// ParticipantsConfig names the two people on the court and their passwords.
type ParticipantsConfig struct {
	A         string `env:"PARTICIPANT_A"     env-default:"me"`
	B         string `env:"PARTICIPANT_B"     env-default:"him"`
	PasswordA string `env:"CRUSHCOURT_PW_ME"  env-default:"change-me"`
	PasswordB string `env:"CRUSHCOURT_PW_HIM" env-default:"change-him"`
}

// SessionConfig controls the signed login cookie.
type SessionConfig struct {
	Secret string        `env:"SESSION_SECRET" env-default:"dev-insecure-secret"`
	TTL    time.Duration `env:"SESSION_TTL"    env-default:"720h"`
}

// PointsConfig holds the point amounts granted by the exchange engine.
type PointsConfig struct {
	Serve       int    `env:"POINTS_SERVE"        env-default:"5"`
	Response    int    `env:"POINTS_RESPONSE"     env-default:"3"`
	GrantPolicy string `env:"POINTS_GRANT_POLICY" env-default:"transactional"`
	WindowDays  int    `env:"POINTS_WINDOW_DAYS"  env-default:"30"`
}

// CourtConfig controls the recent-record listing.
type CourtConfig struct {
	RecentWindowDays int `env:"RECENT_WINDOW_DAYS" env-default:"3"`
	RecentLimit      int `env:"RECENT_LIMIT"       env-default:"50"`
}

// RetryConfig controls SQLITE_BUSY retries around transactions.
type RetryConfig struct {
	DatabaseMaxRetries     int           `env:"DB_MAX_RETRIES"      env-default:"3"`
	DatabaseRetryBaseDelay time.Duration `env:"DB_RETRY_BASE_DELAY" env-default:"50ms"`
}

// AIConfig points at an OpenAI-compatible chat completions endpoint.
type AIConfig struct {
	Provider string `env:"CRUSHCOURT_AI_PROVIDER" env-default:""`
	BaseURL  string `env:"CRUSHCOURT_AI_BASE_URL" env-default:""`
	APIKey   string `env:"CRUSHCOURT_AI_API_KEY"  env-default:""`
	Model    string `env:"CRUSHCOURT_AI_MODEL"    env-default:""`
}

// Enabled reports whether every AI setting is present.
func (c AIConfig) Enabled() bool {
	return strings.TrimSpace(c.Provider) != "" &&
		strings.TrimSpace(c.BaseURL) != "" &&
		strings.TrimSpace(c.APIKey) != "" &&
		strings.TrimSpace(c.Model) != ""
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg.Points.GrantPolicy = strings.ToLower(strings.TrimSpace(cfg.Points.GrantPolicy))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Participants.A == "" || c.Participants.B == "" {
		return fmt.Errorf("PARTICIPANT_A and PARTICIPANT_B cannot be empty")
	}
	if c.Participants.A == c.Participants.B {
		return fmt.Errorf("PARTICIPANT_A and PARTICIPANT_B must differ")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET cannot be empty")
	}
	if !c.IsDevelopment() {
		if c.Session.Secret == insecureSessionSecret {
			return fmt.Errorf("SESSION_SECRET must be changed outside development")
		}
		if c.Participants.PasswordA == insecurePasswordA || c.Participants.PasswordB == insecurePasswordB {
			return fmt.Errorf("CRUSHCOURT_PW_ME and CRUSHCOURT_PW_HIM must be changed outside development")
		}
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.Points.Serve <= c.Points.Response {
		return fmt.Errorf("POINTS_SERVE must be greater than POINTS_RESPONSE")
	}
	switch c.Points.GrantPolicy {
	case GrantTransactional, GrantBestEffort:
	default:
		return fmt.Errorf("POINTS_GRANT_POLICY must be %q or %q", GrantTransactional, GrantBestEffort)
	}
	if c.Points.WindowDays <= 0 {
		return fmt.Errorf("POINTS_WINDOW_DAYS must be > 0")
	}
	if c.Court.RecentWindowDays <= 0 {
		return fmt.Errorf("RECENT_WINDOW_DAYS must be > 0")
	}
	if c.Court.RecentLimit <= 0 {
		return fmt.Errorf("RECENT_LIMIT must be > 0")
	}
	if c.Retry.DatabaseMaxRetries <= 0 {
		return fmt.Errorf("DB_MAX_RETRIES must be > 0")
	}
	return nil
}

// Pair returns the configured participants.
func (c *Config) Pair() domain.Pair {
	return domain.Pair{
		A: domain.Participant(c.Participants.A),
		B: domain.Participant(c.Participants.B),
	}
}

// Passwords maps each participant to its login password.
func (c *Config) Passwords() map[domain.Participant]string {
	return map[domain.Participant]string{
		domain.Participant(c.Participants.A): c.Participants.PasswordA,
		domain.Participant(c.Participants.B): c.Participants.PasswordB,
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}
