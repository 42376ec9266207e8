package httpclient

import (
	"fmt"
	"time"
)

const (
	defaultTimeout          = 30 * time.Second
	defaultMaxResponseBytes = 1 << 20
)

// Config configures the HTTP client and its transport.
type Config struct {
	// BaseURL is prepended to request paths that are not absolute URLs.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds a whole request. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// ResponseHeaderTimeout bounds the wait for response headers. Zero
	// leaves it to Timeout.
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout" mapstructure:"response_header_timeout"`

	// DisableKeepAlives dials a new connection for every request.
	DisableKeepAlives bool `yaml:"disable_keep_alives" mapstructure:"disable_keep_alives"`

	// MaxResponseBytes caps how much of a response body is read. Defaults to 1MB.
	MaxResponseBytes int64 `yaml:"max_response_bytes" mapstructure:"max_response_bytes"`

	// TLS configures the transport for https targets.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Headers are applied to every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = defaultMaxResponseBytes
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.ResponseHeaderTimeout < 0 {
		return fmt.Errorf("httpclient: response_header_timeout must be non-negative")
	}
	return c.TLS.Validate()
}
