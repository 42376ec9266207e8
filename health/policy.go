package health

import (
	"time"

	"github.com/kbukum/launchpad/errors"
)

// Policy governs external liveness polling.
type Policy struct {
	// Interval between probes once the start period has elapsed.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// Timeout for a single probe attempt.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// StartPeriod is the grace after launch during which no probe is issued.
	StartPeriod time.Duration `yaml:"start_period" mapstructure:"start_period"`
	// Retries is the number of consecutive failures that mark the target unhealthy.
	Retries int `yaml:"retries" mapstructure:"retries"`
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		StartPeriod: 5 * time.Second,
		Retries:     3,
	}
}

// ApplyDefaults fills unset fields from DefaultPolicy. StartPeriod is left
// alone since zero is a meaningful value.
func (p *Policy) ApplyDefaults() {
	d := DefaultPolicy()
	if p.Interval == 0 {
		p.Interval = d.Interval
	}
	if p.Timeout == 0 {
		p.Timeout = d.Timeout
	}
	if p.Retries == 0 {
		p.Retries = d.Retries
	}
}

// Validate checks the policy for impossible values.
func (p *Policy) Validate() error {
	if p.Interval <= 0 {
		return errors.Configuration("health.interval", "must be positive")
	}
	if p.Timeout <= 0 {
		return errors.Configuration("health.timeout", "must be positive")
	}
	if p.StartPeriod < 0 {
		return errors.Configuration("health.start_period", "must not be negative")
	}
	if p.Retries < 1 {
		return errors.Configuration("health.retries", "must be at least 1")
	}
	return nil
}
