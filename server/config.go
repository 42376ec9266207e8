package server

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/kbukum/launchpad/util"
)

// Config holds HTTP server configuration. The listening port is not part of
// it: the port comes from the environment variable named by PortEnv, with
// DefaultPort as the fallback, and is resolved once by the config package.
type Config struct {
	Host            string `yaml:"host" mapstructure:"host"`
	PortEnv         string `yaml:"port_env" mapstructure:"port_env"`
	DefaultPort     int    `yaml:"default_port" mapstructure:"default_port"`
	ReadTimeout     int    `yaml:"read_timeout" mapstructure:"read_timeout"`         // seconds
	WriteTimeout    int    `yaml:"write_timeout" mapstructure:"write_timeout"`       // seconds
	IdleTimeout     int    `yaml:"idle_timeout" mapstructure:"idle_timeout"`         // seconds
	ShutdownTimeout int    `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"` // seconds
	MaxBodySize     string `yaml:"max_body_size" mapstructure:"max_body_size"`       // e.g. "10MB"
	HealthPath      string `yaml:"health_path" mapstructure:"health_path"`
	// HealthPort, when set, also serves the liveness route on its own listener.
	HealthPort int `yaml:"health_port" mapstructure:"health_port"`
	// SystemPrefix is prepended to the readiness, info, version and metrics
	// routes, e.g. "/_launchpad". Empty mounts them at the root.
	SystemPrefix string `yaml:"system_prefix" mapstructure:"system_prefix"`
	// DisableSystemRoutes leaves only the liveness route to the server and
	// hands every other path to the application.
	DisableSystemRoutes bool `yaml:"disable_system_routes" mapstructure:"disable_system_routes"`
}

// SystemPaths returns the mounted readiness, info, version and metrics
// paths, or nil when they are disabled.
func (c Config) SystemPaths() []string {
	if c.DisableSystemRoutes {
		return nil
	}
	out := make([]string, len(systemRoutes))
	for i, r := range systemRoutes {
		out[i] = c.SystemPrefix + r
	}
	return out
}

// SystemPath returns where route (one of PathReady, PathInfo, PathVersion,
// PathMetrics) is mounted.
func (c Config) SystemPath(route string) string {
	return c.SystemPrefix + route
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.PortEnv == "" {
		c.PortEnv = "PORT"
	}
	if c.DefaultPort == 0 {
		c.DefaultPort = 8000
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "10MB"
	}
	if c.HealthPath == "" {
		c.HealthPath = "/health"
	}
}

// Validate checks the configuration for invalid values. The default port's
// range is checked when the port is resolved.
func (c *Config) Validate() error {
	if c.ReadTimeout < 0 {
		return fmt.Errorf("server.read_timeout must be non-negative (got: %d)", c.ReadTimeout)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("server.write_timeout must be non-negative (got: %d)", c.WriteTimeout)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("server.idle_timeout must be non-negative (got: %d)", c.IdleTimeout)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must be non-negative (got: %d)", c.ShutdownTimeout)
	}
	if _, err := util.ParseSize(c.MaxBodySize); err != nil {
		return fmt.Errorf("server.max_body_size: %w", err)
	}
	if err := validateRoutePath("server.health_path", c.HealthPath); err != nil {
		return err
	}
	if c.SystemPrefix != "" {
		if err := validateRoutePath("server.system_prefix", c.SystemPrefix); err != nil {
			return err
		}
	}
	for _, p := range c.SystemPaths() {
		if p == c.HealthPath {
			return fmt.Errorf("server.health_path %q collides with a system route", c.HealthPath)
		}
	}
	if c.HealthPort < 0 || c.HealthPort > 65535 {
		return fmt.Errorf("server.health_port must be between 0 and 65535 (got: %d)", c.HealthPort)
	}
	return nil
}

// validateRoutePath accepts clean absolute paths other than "/" that are
// matched literally: no trailing slash, whitespace, or pattern characters.
func validateRoutePath(key, p string) error {
	if !strings.HasPrefix(p, "/") || p == "/" {
		return fmt.Errorf("%s must be an absolute path other than / (got: %q)", key, p)
	}
	if strings.HasSuffix(p, "/") {
		return fmt.Errorf("%s must not end with / (got: %q)", key, p)
	}
	if path.Clean(p) != p {
		return fmt.Errorf("%s must be a clean path (got: %q)", key, p)
	}
	for _, r := range p {
		if unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune("{}:*?#%", r) {
			return fmt.Errorf("%s contains %q (got: %q)", key, r, p)
		}
	}
	return nil
}
