package dependency

import (
	"fmt"
	"net"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Config lists the backing services probed by readiness.
type Config struct {
	// RedisURL is a redis:// or rediss:// URL. Empty disables the check.
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
	// TCP is a list of host:port addresses that must accept connections.
	TCP []string `yaml:"tcp" mapstructure:"tcp"`
	// Timeout bounds a single check.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 2 * time.Second
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("dependencies.timeout must be non-negative (got: %s)", c.Timeout)
	}
	if c.RedisURL != "" {
		if _, err := goredis.ParseURL(c.RedisURL); err != nil {
			return fmt.Errorf("dependencies.redis_url: %w", err)
		}
	}
	for _, addr := range c.TCP {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return fmt.Errorf("dependencies.tcp %q: %w", addr, err)
		}
		if host == "" {
			return fmt.Errorf("dependencies.tcp %q: host is required", addr)
		}
		if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
			return fmt.Errorf("dependencies.tcp %q: invalid port", addr)
		}
	}
	return nil
}

// Enabled reports whether any dependency is configured.
func (c Config) Enabled() bool {
	return c.RedisURL != "" || len(c.TCP) > 0
}
