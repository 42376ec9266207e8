package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/kbukum/launchpad/errors"
	"github.com/kbukum/launchpad/health"
	"github.com/kbukum/launchpad/privilege"
)

const (
	minPort = 1
	maxPort = 65535
)

// LookupFunc reads an environment variable, reporting whether it is set.
type LookupFunc func(key string) (string, bool)

// PortSource records where the bind port came from.
type PortSource string

const (
	PortFromEnv     PortSource = "env"
	PortFromDefault PortSource = "default"
)

// ServiceConfig is the configuration the service runs on. It is built
// once by Resolve and cannot be changed afterwards.
type ServiceConfig struct {
	name       string
	bindHost   string
	bindPort   int
	portSource PortSource
	portEnv    string
	runAs      privilege.Config
	policy     health.Policy
}

// Name returns the service name.
func (c ServiceConfig) Name() string { return c.name }

// BindHost returns the interface to listen on.
func (c ServiceConfig) BindHost() string { return c.bindHost }

// BindPort returns the port to listen on.
func (c ServiceConfig) BindPort() int { return c.bindPort }

// Addr returns host:port.
func (c ServiceConfig) Addr() string {
	return net.JoinHostPort(c.bindHost, strconv.Itoa(c.bindPort))
}

// PortSource reports whether the port came from the environment or the
// configured default.
func (c ServiceConfig) PortSource() PortSource { return c.portSource }

// PortEnv returns the name of the variable the port was read from.
func (c ServiceConfig) PortEnv() string { return c.portEnv }

// RunAs returns the identity to switch to after startup.
func (c ServiceConfig) RunAs() privilege.Config { return c.runAs }

// HealthPolicy returns the supervisor health-check policy.
func (c ServiceConfig) HealthPolicy() health.Policy { return c.policy }

// Resolve builds the ServiceConfig. The port variable is read once through
// lookup (os.LookupEnv when nil):
//
//   - unset or empty: server.default_port is used;
//   - not an integer: CONFIGURATION_ERROR;
//   - outside [1, 65535]: CONFIGURATION_ERROR.
//
// A default port outside the range is a CONFIGURATION_ERROR as well.
func Resolve(s *Settings, lookup LookupFunc) (ServiceConfig, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	srv := s.Server
	srv.ApplyDefaults()

	port, source, err := resolvePort(srv.PortEnv, srv.DefaultPort, lookup)
	if err != nil {
		return ServiceConfig{}, err
	}

	policy := s.Health
	policy.ApplyDefaults()
	if err := policy.Validate(); err != nil {
		return ServiceConfig{}, err
	}

	return ServiceConfig{
		name:       s.Name,
		bindHost:   srv.Host,
		bindPort:   port,
		portSource: source,
		portEnv:    srv.PortEnv,
		runAs:      s.Privilege,
		policy:     policy,
	}, nil
}

func resolvePort(envName string, fallback int, lookup LookupFunc) (int, PortSource, error) {
	raw, ok := lookup(envName)
	if !ok || raw == "" {
		if fallback < minPort || fallback > maxPort {
			return 0, "", errors.Configuration("server.default_port",
				fmt.Sprintf("%d is outside [%d, %d]", fallback, minPort, maxPort))
		}
		return fallback, PortFromDefault, nil
	}

	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, "", errors.Configuration(envName, fmt.Sprintf("%q is not an integer", raw)).WithCause(err)
	}
	if port < minPort || port > maxPort {
		return 0, "", errors.Configuration(envName,
			fmt.Sprintf("%d is outside [%d, %d]", port, minPort, maxPort))
	}
	return port, PortFromEnv, nil
}
