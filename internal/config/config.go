// Package config provides configuration loading and validation for the keyword ranker.
// It uses koanf to merge environment variables with an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the service.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Ranking
	DefaultTopK   int           `koanf:"default_top_k"`  // topK applied when a request omits it
	RankerURL     string        `koanf:"ranker_url"`     // remote ranker used by /analyze; empty ranks in-process
	RankerTimeout time.Duration `koanf:"ranker_timeout"` // bound on one remote ranker call

	// Rate limiting
	RateLimitEnabled       bool          `koanf:"rate_limit_enabled"`
	RateLimitDefaultLimit  int           `koanf:"rate_limit_default_limit"`
	RateLimitDefaultWindow time.Duration `koanf:"rate_limit_default_window"`
	RateLimitWhitelist     []string      `koanf:"rate_limit_whitelist"`
	RateLimitBlacklist     []string      `koanf:"rate_limit_blacklist"`
}

// Configuration validation errors.
var (
	ErrInvalidPort          = errors.New("PORT must be between 1 and 65535")
	ErrInvalidInteger       = errors.New("value must be a valid integer")
	ErrInvalidBool          = errors.New("value must be a valid boolean")
	ErrInvalidDuration      = errors.New("value must be a valid duration")
	ErrNegativeDefaultTopK  = errors.New("RANK_DEFAULT_TOP_K must be non-negative")
	ErrInvalidRankerTimeout = errors.New("LLM_TIMEOUT_MS must be positive")
	ErrInvalidRankerURL     = errors.New("LLM_URL must be an absolute http(s) URL")
	ErrInvalidRateLimit     = errors.New("RATE_LIMIT_DEFAULT_LIMIT must be positive")
	ErrInvalidRateWindow    = errors.New("RATE_LIMIT_DEFAULT_WINDOW must be positive")
)

// Default values for configuration.
const (
	DefaultPort                   = 8080
	DefaultEnv                    = "development"
	DefaultTopK                   = 20
	DefaultRankerTimeout          = 9000 * time.Millisecond
	DefaultRateLimitEnabled       = true
	DefaultRateLimitDefaultLimit  = 1000
	DefaultRateLimitDefaultWindow = time.Minute
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	collect := func(err error) {
		if err != nil {
			loadErrs = append(loadErrs, err)
		}
	}

	port, err := envInt("PORT", k, "port", DefaultPort)
	collect(err)

	defaultTopK, err := envInt("RANK_DEFAULT_TOP_K", k, "default_top_k", DefaultTopK)
	collect(err)

	rankerTimeout := DefaultRankerTimeout
	if k.Exists("ranker_timeout") {
		rankerTimeout = k.Duration("ranker_timeout")
	}
	if val := os.Getenv("LLM_TIMEOUT_MS"); val != "" {
		ms, convErr := strconv.Atoi(val)
		if convErr != nil {
			collect(fmt.Errorf("LLM_TIMEOUT_MS: %w", ErrInvalidInteger))
		} else {
			rankerTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	rateLimitEnabled, err := envBool("RATE_LIMIT_ENABLED", k, "rate_limit_enabled", DefaultRateLimitEnabled)
	collect(err)

	rateLimitLimit, err := envInt("RATE_LIMIT_DEFAULT_LIMIT", k, "rate_limit_default_limit", DefaultRateLimitDefaultLimit)
	collect(err)

	rateLimitWindow, err := envDuration("RATE_LIMIT_DEFAULT_WINDOW", k, "rate_limit_default_window", DefaultRateLimitDefaultWindow)
	collect(err)

	cfg := &Config{
		Port:                   port,
		Env:                    envString("APP_ENV", k, "env", DefaultEnv),
		DefaultTopK:            defaultTopK,
		RankerURL:              envString("LLM_URL", k, "ranker_url", ""),
		RankerTimeout:          rankerTimeout,
		RateLimitEnabled:       rateLimitEnabled,
		RateLimitDefaultLimit:  rateLimitLimit,
		RateLimitDefaultWindow: rateLimitWindow,
		RateLimitWhitelist:     envList("RATE_LIMIT_WHITELIST", k, "rate_limit_whitelist"),
		RateLimitBlacklist:     envList("RATE_LIMIT_BLACKLIST", k, "rate_limit_blacklist"),
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// Validate checks configuration values for consistency.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, ErrInvalidPort)
	}
	if c.DefaultTopK < 0 {
		errs = append(errs, ErrNegativeDefaultTopK)
	}
	if c.RankerTimeout <= 0 {
		errs = append(errs, ErrInvalidRankerTimeout)
	}
	if c.RankerURL != "" {
		u, err := url.Parse(c.RankerURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ErrInvalidRankerURL)
		}
	}
	if c.RateLimitEnabled {
		if c.RateLimitDefaultLimit <= 0 {
			errs = append(errs, ErrInvalidRateLimit)
		}
		if c.RateLimitDefaultWindow <= 0 {
			errs = append(errs, ErrInvalidRateWindow)
		}
	}

	return errs
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LogSummary returns a summary of the configuration suitable for logging.
func (c *Config) LogSummary() map[string]string {
	ranker := "local"
	if c.RankerURL != "" {
		ranker = c.RankerURL
	}
	return map[string]string{
		"port":               strconv.Itoa(c.Port),
		"env":                c.Env,
		"default_top_k":      strconv.Itoa(c.DefaultTopK),
		"ranker":             ranker,
		"ranker_timeout":     c.RankerTimeout.String(),
		"rate_limit_enabled": strconv.FormatBool(c.RateLimitEnabled),
	}
}

// envString returns the environment variable value if set, otherwise the koanf value, or default.
func envString(envKey string, k *koanf.Koanf, koanfKey string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if k.Exists(koanfKey) {
		return k.String(koanfKey)
	}
	return defaultVal
}

// envInt returns the environment variable as int if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as an integer.
func envInt(envKey string, k *koanf.Koanf, koanfKey string, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return defaultVal, fmt.Errorf("%s: %w", envKey, ErrInvalidInteger)
		}
		return i, nil
	}
	if k.Exists(koanfKey) {
		return k.Int(koanfKey), nil
	}
	return defaultVal, nil
}

// envBool returns the environment variable as bool if set, otherwise the koanf value, or default.
func envBool(envKey string, k *koanf.Koanf, koanfKey string, defaultVal bool) (bool, error) {
	if val := os.Getenv(envKey); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off":
			return false, nil
		default:
			return defaultVal, fmt.Errorf("%s: %w", envKey, ErrInvalidBool)
		}
	}
	if k.Exists(koanfKey) {
		return k.Bool(koanfKey), nil
	}
	return defaultVal, nil
}

// envDuration returns the environment variable as a duration if set, otherwise the koanf value, or default.
func envDuration(envKey string, k *koanf.Koanf, koanfKey string, defaultVal time.Duration) (time.Duration, error) {
	if val := os.Getenv(envKey); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return defaultVal, fmt.Errorf("%s: %w", envKey, ErrInvalidDuration)
		}
		return d, nil
	}
	if k.Exists(koanfKey) {
		return k.Duration(koanfKey), nil
	}
	return defaultVal, nil
}

// envList parses a comma-separated environment variable, falling back to a koanf list.
func envList(envKey string, k *koanf.Koanf, koanfKey string) []string {
	if val := os.Getenv(envKey); val != "" {
		var out []string
		for _, item := range strings.Split(val, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	}
	return k.Strings(koanfKey)
}
