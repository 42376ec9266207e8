package process

import (
	"fmt"
	"time"
)

const defaultGracePeriod = 5 * time.Second

// Config describes an application process started and supervised by the
// service, e.g. ["gunicorn", "app:app"].
type Config struct {
	// Command is the binary followed by its arguments. Empty disables it.
	Command []string `yaml:"command" mapstructure:"command"`
	// Dir is the working directory. Empty uses the current directory.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// Env is added to the inherited environment as KEY=VALUE entries.
	Env []string `yaml:"env" mapstructure:"env"`
	// GracePeriod is how long the process group has between SIGTERM and SIGKILL.
	GracePeriod time.Duration `yaml:"grace_period" mapstructure:"grace_period"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.GracePeriod <= 0 {
		c.GracePeriod = defaultGracePeriod
	}
}

// Validate checks the command is runnable as configured.
func (c *Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Command[0] == "" {
		return fmt.Errorf("upstream.command: binary is empty")
	}
	if c.GracePeriod < 0 {
		return fmt.Errorf("upstream.grace_period must be >= 0 (got: %s)", c.GracePeriod)
	}
	return nil
}

// Enabled reports whether a command is configured.
func (c Config) Enabled() bool { return len(c.Command) > 0 }
