package config

import (
	"github.com/kbukum/launchpad/dependency"
	"github.com/kbukum/launchpad/errors"
	"github.com/kbukum/launchpad/health"
	"github.com/kbukum/launchpad/logger"
	"github.com/kbukum/launchpad/observability"
	"github.com/kbukum/launchpad/privilege"
	"github.com/kbukum/launchpad/proxy"
	"github.com/kbukum/launchpad/server"
	"github.com/kbukum/launchpad/validation"
)

// Settings is the file and environment loaded configuration.
type Settings struct {
	Name         string                        `yaml:"name" mapstructure:"name" validate:"required"`
	Environment  string                        `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version      string                        `yaml:"version" mapstructure:"version"`
	Debug        bool                          `yaml:"debug" mapstructure:"debug"`
	Logging      logger.Config                 `yaml:"logging" mapstructure:"logging"`
	Server       server.Config                 `yaml:"server" mapstructure:"server"`
	Privilege    privilege.Config              `yaml:"privilege" mapstructure:"privilege"`
	Health       health.Policy                 `yaml:"health" mapstructure:"health"`
	Upstream     proxy.Config                  `yaml:"upstream" mapstructure:"upstream"`
	Dependencies dependency.Config             `yaml:"dependencies" mapstructure:"dependencies"`
	Telemetry    observability.TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults applies default values to every section.
func (s *Settings) ApplyDefaults() {
	if s.Environment == "" {
		s.Environment = "development"
	}
	if s.Environment == "development" {
		s.Debug = true
	}
	if s.Logging.ServiceName == "" && s.Name != "" {
		s.Logging.ServiceName = s.Name
	}
	s.Logging.ApplyDefaults()
	s.Server.ApplyDefaults()
	s.Health.ApplyDefaults()
	s.Upstream.ApplyDefaults()
	s.Dependencies.ApplyDefaults()
	s.Telemetry.ApplyDefaults()
}

// Validate checks struct tags first, then each section. Every failure is
// a CONFIGURATION_ERROR naming the offending section.
func (s *Settings) Validate() error {
	if err := validation.Struct(s); err != nil {
		return err
	}
	sections := []struct {
		key      string
		validate func() error
	}{
		{"logging", s.Logging.Validate},
		{"server", s.Server.Validate},
		{"health", s.Health.Validate},
		{"upstream", s.Upstream.Validate},
		{"dependencies", s.Dependencies.Validate},
		{"telemetry", s.Telemetry.Validate},
	}
	for _, sec := range sections {
		if err := sec.validate(); err != nil {
			if errors.HasCode(err, errors.ErrCodeConfiguration) {
				return err
			}
			return errors.Configuration(sec.key, err.Error()).WithCause(err)
		}
	}
	return nil
}

// Load reads settings for the named service, applies defaults and
// validates them.
func Load(serviceName string, opts ...LoaderOption) (*Settings, error) {
	var s Settings
	if err := LoadConfig(serviceName, &s, opts...); err != nil {
		return nil, errors.Configuration("settings", err.Error()).WithCause(err)
	}
	if s.Name == "" {
		s.Name = serviceName
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
