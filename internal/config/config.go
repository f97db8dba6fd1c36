// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel        string        `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	ListenAddr      string        `mapstructure:"LISTEN_ADDR" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"gt=0"`

	// DBURL is optional; without it sessions live in memory.
	DBURL              string        `mapstructure:"DB_URL"`
	SessionPurgeEvery  time.Duration `mapstructure:"SESSION_PURGE_INTERVAL" validate:"gt=0"`
	GithubClientID     string        `mapstructure:"GITHUB_CLIENT_ID" validate:"required"`
	GithubClientSecret string        `mapstructure:"GITHUB_CLIENT_SECRET" validate:"required"`
	OAuthRedirectURL   string        `mapstructure:"OAUTH_REDIRECT_URL" validate:"required,url"`
	GithubAPIURL       string        `mapstructure:"GITHUB_API_URL" validate:"omitempty,url"`
	// GithubOAuthURL points login at a GitHub Enterprise host.
	GithubOAuthURL string `mapstructure:"GITHUB_OAUTH_URL" validate:"omitempty,url"`

	SessionSecret string        `mapstructure:"SESSION_SECRET" validate:"required,min=32"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL" validate:"gt=0"`
	CookieSecure  bool          `mapstructure:"COOKIE_SECURE"`

	CacheTTL           time.Duration `mapstructure:"CACHE_TTL" validate:"gt=0"`
	CacheSweepInterval time.Duration `mapstructure:"CACHE_SWEEP_INTERVAL" validate:"gt=0"`
	CacheSingleFlight  bool          `mapstructure:"CACHE_SINGLE_FLIGHT"`

	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("DB_URL", "")
	v.SetDefault("SESSION_PURGE_INTERVAL", "15m")
	v.SetDefault("GITHUB_CLIENT_ID", "")
	v.SetDefault("GITHUB_CLIENT_SECRET", "")
	v.SetDefault("OAUTH_REDIRECT_URL", "")
	v.SetDefault("GITHUB_API_URL", "")
	v.SetDefault("GITHUB_OAUTH_URL", "")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL", "8h")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("CACHE_SWEEP_INTERVAL", "1m")
	v.SetDefault("CACHE_SINGLE_FLIGHT", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{})

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.CORSAllowedOrigins = splitList(cfg.CORSAllowedOrigins)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", envKey(fe.StructField()), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// envKey maps a struct field back to its environment variable name.
func envKey(field string) string {
	switch field {
	case "LogLevel":
		return "LOG_LEVEL"
	case "ListenAddr":
		return "LISTEN_ADDR"
	case "GithubClientID":
		return "GITHUB_CLIENT_ID"
	case "GithubClientSecret":
		return "GITHUB_CLIENT_SECRET"
	case "OAuthRedirectURL":
		return "OAUTH_REDIRECT_URL"
	case "GithubAPIURL":
		return "GITHUB_API_URL"
	case "GithubOAuthURL":
		return "GITHUB_OAUTH_URL"
	case "SessionSecret":
		return "SESSION_SECRET"
	default:
		return field
	}
}

// splitList accepts both repeated values and a single comma separated one.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
