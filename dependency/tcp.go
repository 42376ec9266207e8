package dependency

import (
	"context"
	"fmt"
	"net"

	"github.com/kbukum/launchpad/component"
)

// TCP checks that an address accepts connections.
type TCP struct {
	addr   string
	dialer net.Dialer
}

var _ component.Component = (*TCP)(nil)

// NewTCP creates a TCP readiness check.
func NewTCP(addr string, cfg Config) *TCP {
	cfg.ApplyDefaults()
	return &TCP{addr: addr, dialer: net.Dialer{Timeout: cfg.Timeout}}
}

// Name returns the component name.
func (t *TCP) Name() string { return "tcp:" + t.addr }

// Start does nothing; the address is dialed on every health check.
func (t *TCP) Start(_ context.Context) error { return nil }

// Stop does nothing.
func (t *TCP) Stop(_ context.Context) error { return nil }

// Health dials the address and closes the connection.
func (t *TCP) Health(ctx context.Context) component.Health {
	conn, err := t.dialer.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return component.Health{
			Name:    t.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("dial failed: %v", err),
		}
	}
	_ = conn.Close()
	return component.Health{Name: t.Name(), Status: component.StatusHealthy}
}

// Describe returns the summary line.
func (t *TCP) Describe() component.Description {
	return component.Description{Name: "TCP", Type: "tcp", Details: t.addr}
}
