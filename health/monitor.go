package health

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/launchpad/logger"
)

// Verdict is the supervisor's view of a target.
type Verdict string

const (
	VerdictStarting  Verdict = "starting"
	VerdictHealthy   Verdict = "healthy"
	VerdictUnhealthy Verdict = "unhealthy"
)

// CheckFunc performs one probe; a nil error is a success.
type CheckFunc func(ctx context.Context) error

// Monitor applies a Policy to a CheckFunc. It waits out the start period,
// probes every interval with a per-attempt timeout, and declares the target
// unhealthy after Retries consecutive failures. It only reports; acting on
// an unhealthy verdict is left to the caller.
type Monitor struct {
	check    CheckFunc
	policy   Policy
	log      *logger.Logger
	onChange func(from, to Verdict)

	mu       sync.RWMutex
	verdict  Verdict
	failures int
	probes   int
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithLogger sets the monitor's logger.
func WithLogger(l *logger.Logger) MonitorOption {
	return func(m *Monitor) { m.log = l }
}

// OnChange registers a callback invoked on every verdict transition.
func OnChange(fn func(from, to Verdict)) MonitorOption {
	return func(m *Monitor) { m.onChange = fn }
}

// NewMonitor creates a monitor in the starting state.
func NewMonitor(check CheckFunc, policy Policy, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		check:   check,
		policy:  policy,
		log:     logger.NewNop(),
		verdict: VerdictStarting,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Verdict returns the current verdict.
func (m *Monitor) Verdict() Verdict {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.verdict
}

// ConsecutiveFailures returns the current failure streak.
func (m *Monitor) ConsecutiveFailures() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.failures
}

// Probes returns the number of probes issued so far.
func (m *Monitor) Probes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.probes
}

// Run blocks until ctx is canceled. The first probe is issued once the
// start period has elapsed.
func (m *Monitor) Run(ctx context.Context) error {
	if m.policy.StartPeriod > 0 {
		timer := time.NewTimer(m.policy.StartPeriod)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	ticker := time.NewTicker(m.policy.Interval)
	defer ticker.Stop()

	for {
		m.probeOnce(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *Monitor) probeOnce(ctx context.Context) {
	attemptCtx, cancel := context.WithTimeout(ctx, m.policy.Timeout)
	err := m.check(attemptCtx)
	cancel()
	if ctx.Err() != nil {
		// Shutting down; the attempt says nothing about the target.
		return
	}
	m.Observe(err)
}

// Observe records one probe result and returns the resulting verdict.
func (m *Monitor) Observe(err error) Verdict {
	m.mu.Lock()
	m.probes++
	from := m.verdict
	if err == nil {
		m.failures = 0
		m.verdict = VerdictHealthy
	} else {
		m.failures++
		m.log.Warn("Health probe failed", logger.Fields(
			"consecutive_failures", m.failures,
			"retries", m.policy.Retries,
			"error", err.Error(),
		))
		if m.failures >= m.policy.Retries {
			m.verdict = VerdictUnhealthy
		}
	}
	to := m.verdict
	onChange := m.onChange
	m.mu.Unlock()

	if from != to {
		m.log.Info("Health verdict changed", logger.Fields("from", string(from), "to", string(to)))
		if onChange != nil {
			onChange(from, to)
		}
	}
	return to
}
