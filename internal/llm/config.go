// Package llm provides the ranker abstraction used by the analyze flow.
// A ranker either runs the placeholder ranking in-process or calls a remote
// keyword ranker service over HTTP.
package llm

import (
	"fmt"
	"net/url"
	"time"
)

// Provider selects where ranking happens
type Provider string

const (
	// ProviderLocal ranks in-process
	ProviderLocal Provider = "local"
	// ProviderHTTP posts to a remote /llm/rank endpoint
	ProviderHTTP Provider = "http"
)

// DefaultTimeout bounds a single remote ranking call
const DefaultTimeout = 9 * time.Second

// Config holds the ranker configuration
type Config struct {
	Provider Provider
	BaseURL  string
	Timeout  time.Duration
}

// DefaultConfig returns the default configuration (in-process ranking)
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderLocal,
		Timeout:  DefaultTimeout,
	}
}

// ConfigFor picks the HTTP provider when baseURL is set and the local one otherwise.
func ConfigFor(baseURL string, timeout time.Duration) *Config {
	cfg := DefaultConfig()
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	if baseURL != "" {
		cfg.Provider = ProviderHTTP
		cfg.BaseURL = baseURL
	}
	return cfg
}

// Validate checks that an HTTP configuration has a usable base URL.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("ranker timeout must be positive, got %s", c.Timeout)
	}
	if c.Provider != ProviderHTTP {
		return nil
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid ranker URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid ranker URL %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid ranker URL %q: missing host", c.BaseURL)
	}
	return nil
}
