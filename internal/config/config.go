package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const defaultSessionSecret = "change-me-in-production-min-32-chars"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string
	ViewsDir   string
	StaticDir  string

	// Directory file with partners, users and keyword overrides
	ConfigFile string

	// Data sources, "path" or "path#Sheet"
	ActivityFiles    []string
	GoalFiles        []string
	SupportedYears   []int
	ComparisonMonths int
	CurrencySymbol   string

	// Intent classification
	Classifier          string // "keyword" or "embedding"
	Embedder            string // "local" or "ollama"
	OllamaURL           string
	EmbeddingModel      string
	SimilarityThreshold float64

	// Database (optional: credential store and persisted answer counters)
	DatabaseURL string

	// Redis (optional: session storage)
	RedisURL string

	// TLS/mTLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string
	TLSCAFile   string // CA for verifying client certs (mTLS)

	// OIDC (optional single sign-on)
	OIDCIssuer        string
	OIDCClientID      string
	OIDCClientSecret  string
	OIDCRedirectURL   string
	OIDCUsernameClaim string

	// Session
	SessionSecret      string // Used for signing cookies (min 32 chars)
	SessionIdleTimeout time.Duration

	// CORS
	CORSOrigins string // Comma-separated allowed origins, e.g. "https://example.com,https://app.example.com"

	// Limits and background jobs
	RateLimitMax       int // requests per minute per IP
	StatsFlushInterval time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

var defaults = map[string]interface{}{
	"APP_ENV":              "development",
	"SERVER_ADDR":          ":3000",
	"BASE_URL":             "http://localhost:3000",
	"VIEWS_DIR":            "./views",
	"STATIC_DIR":           "./static",
	"CONFIG_FILE":          "config.yaml",
	"ACTIVITY_FILES":       "Consolidado2025.csv",
	"GOAL_FILES":           "MetasConsolidado2025.csv",
	"SUPPORTED_YEARS":      "2024,2025",
	"COMPARISON_MONTHS":    12,
	"CURRENCY_SYMBOL":      "S/",
	"CLASSIFIER":           "keyword",
	"EMBEDDER":             "local",
	"OLLAMA_URL":           "http://localhost:11434",
	"EMBEDDING_MODEL":      "nomic-embed-text",
	"SIMILARITY_THRESHOLD": 0.3,
	"DATABASE_URL":         "",
	"REDIS_URL":            "",
	"TLS_ENABLED":          false,
	"TLS_CERT_FILE":        "",
	"TLS_KEY_FILE":         "",
	"TLS_CA_FILE":          "",
	"OIDC_ISSUER":          "",
	"OIDC_CLIENT_ID":       "",
	"OIDC_CLIENT_SECRET":   "",
	"OIDC_REDIRECT_URL":    "http://localhost:3000/auth/callback",
	"OIDC_USERNAME_CLAIM":  "preferred_username",
	"SESSION_SECRET":       defaultSessionSecret,
	"SESSION_IDLE_TIMEOUT": "30m",
	"CORS_ORIGINS":         "",
	"RATE_LIMIT_MAX":       60,
	"STATS_FLUSH_INTERVAL": "15s",
	"LOG_LEVEL":            "info",
	"LOG_FORMAT":           "console",
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is applied first when
// present; variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	years, err := parseYears(v.GetString("SUPPORTED_YEARS"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:                 v.GetString("APP_ENV"),
		ServerAddr:          v.GetString("SERVER_ADDR"),
		BaseURL:             v.GetString("BASE_URL"),
		ViewsDir:            v.GetString("VIEWS_DIR"),
		StaticDir:           v.GetString("STATIC_DIR"),
		ConfigFile:          v.GetString("CONFIG_FILE"),
		ActivityFiles:       splitList(v.GetString("ACTIVITY_FILES")),
		GoalFiles:           splitList(v.GetString("GOAL_FILES")),
		SupportedYears:      years,
		ComparisonMonths:    v.GetInt("COMPARISON_MONTHS"),
		CurrencySymbol:      v.GetString("CURRENCY_SYMBOL"),
		Classifier:          strings.ToLower(v.GetString("CLASSIFIER")),
		Embedder:            strings.ToLower(v.GetString("EMBEDDER")),
		OllamaURL:           v.GetString("OLLAMA_URL"),
		EmbeddingModel:      v.GetString("EMBEDDING_MODEL"),
		SimilarityThreshold: v.GetFloat64("SIMILARITY_THRESHOLD"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		TLSEnabled:          v.GetBool("TLS_ENABLED"),
		TLSCertFile:         v.GetString("TLS_CERT_FILE"),
		TLSKeyFile:          v.GetString("TLS_KEY_FILE"),
		TLSCAFile:           v.GetString("TLS_CA_FILE"),
		OIDCIssuer:          v.GetString("OIDC_ISSUER"),
		OIDCClientID:        v.GetString("OIDC_CLIENT_ID"),
		OIDCClientSecret:    v.GetString("OIDC_CLIENT_SECRET"),
		OIDCRedirectURL:     v.GetString("OIDC_REDIRECT_URL"),
		OIDCUsernameClaim:   v.GetString("OIDC_USERNAME_CLAIM"),
		SessionSecret:       v.GetString("SESSION_SECRET"),
		SessionIdleTimeout:  v.GetDuration("SESSION_IDLE_TIMEOUT"),
		CORSOrigins:         v.GetString("CORS_ORIGINS"),
		RateLimitMax:        v.GetInt("RATE_LIMIT_MAX"),
		StatsFlushInterval:  v.GetDuration("STATS_FLUSH_INTERVAL"),
		LogLevel:            strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:           strings.ToLower(v.GetString("LOG_FORMAT")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot default its way out of.
func (c *Config) Validate() error {
	var problems []string
	if len(c.ActivityFiles) == 0 {
		problems = append(problems, "ACTIVITY_FILES must name at least one file")
	}
	if len(c.SupportedYears) == 0 {
		problems = append(problems, "SUPPORTED_YEARS must list at least one year")
	}
	if c.ComparisonMonths < 2 || c.ComparisonMonths > 12 {
		problems = append(problems, "COMPARISON_MONTHS must be between 2 and 12")
	}
	if c.Classifier != "keyword" && c.Classifier != "embedding" {
		problems = append(problems, fmt.Sprintf("CLASSIFIER %q must be keyword or embedding", c.Classifier))
	}
	if c.Embedder != "local" && c.Embedder != "ollama" {
		problems = append(problems, fmt.Sprintf("EMBEDDER %q must be local or ollama", c.Embedder))
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold >= 1 {
		problems = append(problems, "SIMILARITY_THRESHOLD must be in [0, 1)")
	}
	if c.RateLimitMax <= 0 {
		problems = append(problems, "RATE_LIMIT_MAX must be positive")
	}
	if c.SessionIdleTimeout <= 0 {
		problems = append(problems, "SESSION_IDLE_TIMEOUT must be positive")
	}
	if c.StatsFlushInterval <= 0 {
		problems = append(problems, "STATS_FLUSH_INTERVAL must be positive")
	}
	if !c.IsDev() && (len(c.SessionSecret) < 32 || c.SessionSecret == defaultSessionSecret) {
		problems = append(problems, "SESSION_SECRET must be set to at least 32 characters")
	}
	if c.TLSEnabled && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		problems = append(problems, "TLS_CERT_FILE and TLS_KEY_FILE are required when TLS_ENABLED is set")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseYears(s string) ([]int, error) {
	var years []int
	for _, part := range splitList(s) {
		y, err := strconv.Atoi(part)
		if err != nil || y < 1000 || y > 9999 {
			return nil, fmt.Errorf("%w: SUPPORTED_YEARS entry %q is not a four digit year", ErrInvalidConfig, part)
		}
		years = append(years, y)
	}
	return years, nil
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsMTLSEnabled returns true if mTLS is configured with a CA file.
func (c *Config) IsMTLSEnabled() bool {
	return c.TLSEnabled && c.TLSCAFile != ""
}

// OIDCEnabled reports whether single sign-on is configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}
