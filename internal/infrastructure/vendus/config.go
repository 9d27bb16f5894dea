package vendus

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the production host of the provider
	DefaultBaseURL = "https://www.vendus.pt"
	// DefaultVersion is the API version the adapters are written against
	DefaultVersion = "v1.2"
	// DefaultTimeoutSeconds bounds every provider call
	DefaultTimeoutSeconds = 30
)

// Errors for client configuration
var (
	ErrConfigInvalidBaseURL = errors.New("vendus: invalid base url")
	ErrConfigInvalidVersion = errors.New("vendus: invalid api version")
)

// Config holds configuration for the provider API client
type Config struct {
	// BaseURL is the scheme and host of the provider, without the /ws path
	BaseURL string
	// Version is the API version segment, e.g. "v1.2"
	Version string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
	// UserAgent is sent on every request when set
	UserAgent string
}

// NewConfig creates a configuration with production defaults
func NewConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		Version:        DefaultVersion,
		TimeoutSeconds: DefaultTimeoutSeconds,
	}
}

// Validate fills defaults and checks the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrConfigInvalidBaseURL
	}
	if strings.Contains(c.Version, "/") {
		return ErrConfigInvalidVersion
	}
	return nil
}

// Timeout returns the request timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// APIRoot returns the URL every endpoint is appended to
func (c *Config) APIRoot() string {
	return strings.TrimRight(c.BaseURL, "/") + "/ws/" + c.Version + "/"
}

// NormalizeEndpoint strips a leading slash and enforces a single trailing
// slash, the only form the provider routes reliably.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimLeft(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return ""
	}
	return strings.TrimRight(endpoint, "/") + "/"
}
