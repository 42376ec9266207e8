package proxy

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/kbukum/launchpad/httpclient"
	"github.com/kbukum/launchpad/process"
)

const defaultResponseHeaderTimeout = 30 * time.Second

// Config points the service at the application process it fronts.
type Config struct {
	// URL of the upstream, e.g. http://127.0.0.1:9000. Empty disables the proxy.
	URL string `yaml:"url" mapstructure:"url"`
	// ResponseHeaderTimeout bounds the wait for upstream response headers.
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout" mapstructure:"response_header_timeout"`
	// TLS configures the connection to an https upstream.
	TLS httpclient.TLSConfig `yaml:"tls" mapstructure:"tls"`
	// Process optionally starts the upstream as a child of the service.
	Process process.Config `yaml:",inline" mapstructure:",squash"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.ResponseHeaderTimeout <= 0 {
		c.ResponseHeaderTimeout = defaultResponseHeaderTimeout
	}
	c.Process.ApplyDefaults()
}

// Validate checks that the upstream URL is usable.
func (c *Config) Validate() error {
	if c.Process.Enabled() && !c.Enabled() {
		return fmt.Errorf("upstream.command requires upstream.url")
	}
	if !c.Enabled() {
		return nil
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("upstream.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("upstream.url must be http or https (got: %q)", c.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("upstream.url has no host (got: %q)", c.URL)
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("upstream.tls: %w", err)
	}
	if c.Process.Enabled() {
		if !isLoopback(u.Hostname()) {
			return fmt.Errorf("upstream.url must be a loopback address when upstream.command is set (got: %q)", u.Hostname())
		}
		if u.Port() == "" {
			return fmt.Errorf("upstream.url needs an explicit port when upstream.command is set (got: %q)", c.URL)
		}
	}
	return c.Process.Validate()
}

// Enabled reports whether an upstream is configured.
func (c Config) Enabled() bool { return c.URL != "" }

// ProcessConfig returns the child process settings with HOST and PORT set
// to the upstream address, so the application binds where the proxy
// forwards.
func (c Config) ProcessConfig() process.Config {
	pc := c.Process
	u, err := url.Parse(c.URL)
	if err != nil {
		return pc
	}
	env := make([]string, 0, len(pc.Env)+2)
	env = append(env, "HOST="+u.Hostname(), "PORT="+u.Port())
	pc.Env = append(env, pc.Env...)
	return pc
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
