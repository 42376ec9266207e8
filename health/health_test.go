package health

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/launchpad/errors"
	"github.com/kbukum/launchpad/httpclient"
)

func TestPolicyDefaults(t *testing.T) {
	var p Policy
	p.ApplyDefaults()
	d := DefaultPolicy()
	if p.Interval != d.Interval || p.Timeout != d.Timeout || p.Retries != d.Retries {
		t.Errorf("expected defaults %+v, got %+v", d, p)
	}
	if p.StartPeriod != 0 {
		t.Errorf("start period must stay unset, got %v", p.StartPeriod)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestPolicyValidate(t *testing.T) {
	valid := DefaultPolicy()
	tests := []struct {
		name   string
		mutate func(p *Policy)
	}{
		{"zero interval", func(p *Policy) { p.Interval = 0 }},
		{"negative timeout", func(p *Policy) { p.Timeout = -time.Second }},
		{"negative start period", func(p *Policy) { p.StartPeriod = -time.Second }},
		{"zero retries", func(p *Policy) { p.Retries = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			err := p.Validate()
			if !errors.HasCode(err, errors.ErrCodeConfiguration) {
				t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
			}
		})
	}
}

func TestProberUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"up"}`))
	}))
	defer srv.Close()

	res := NewProber(srv.URL+"/health", time.Second).Probe(context.Background())
	if !res.Up() {
		t.Fatalf("expected up, got %+v", res)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", res.StatusCode)
	}
}

func TestProberFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"service unavailable", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}},
		{"body reports down", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"down"}`))
		}},
		{"slower than timeout", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			res := NewProber(srv.URL, 100*time.Millisecond).Probe(context.Background())
			if res.Up() {
				t.Fatal("expected probe failure")
			}
			if !errors.HasCode(res.Err, errors.ErrCodeHealthCheckFailed) {
				t.Errorf("expected HEALTH_CHECK_FAILED, got %v", res.Err)
			}
		})
	}
}

func TestProberNothingListening(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	_ = l.Close()

	p := NewProber("http://"+addr+"/health", 200*time.Millisecond)
	err = p.Check(context.Background())
	if err == nil {
		t.Fatal("expected probe of closed port to fail")
	}
	if !httpclient.IsConnection(err) {
		t.Errorf("expected a connection failure as the cause, got %v", err)
	}
}

func TestHealthCheckIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	res := NewProber(srv.URL, time.Second).Probe(context.Background())
	if res.Up() || res.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 failure, got %+v", res)
	}
	if httpclient.StatusCode(res.Err) != http.StatusServiceUnavailable {
		t.Errorf("expected the status in the cause, got %v", res.Err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected a single request, got %d", n)
	}
}

func TestMonitorObserve(t *testing.T) {
	m := NewMonitor(nil, Policy{Interval: time.Second, Timeout: time.Second, Retries: 3})
	if m.Verdict() != VerdictStarting {
		t.Fatalf("expected starting, got %s", m.Verdict())
	}

	fail := fmt.Errorf("refused")
	if v := m.Observe(nil); v != VerdictHealthy {
		t.Errorf("expected healthy after success, got %s", v)
	}
	m.Observe(fail)
	m.Observe(fail)
	if v := m.Verdict(); v != VerdictHealthy {
		t.Errorf("two failures must not flip the verdict, got %s", v)
	}
	if v := m.Observe(fail); v != VerdictUnhealthy {
		t.Errorf("expected unhealthy after 3 consecutive failures, got %s", v)
	}
	if m.ConsecutiveFailures() != 3 {
		t.Errorf("expected 3 failures, got %d", m.ConsecutiveFailures())
	}
	if v := m.Observe(nil); v != VerdictHealthy {
		t.Errorf("expected recovery on success, got %s", v)
	}
	if m.ConsecutiveFailures() != 0 {
		t.Errorf("expected streak reset, got %d", m.ConsecutiveFailures())
	}
	if m.Probes() != 5 {
		t.Errorf("expected 5 probes, got %d", m.Probes())
	}
}

func TestMonitorInterleavedFailuresStayHealthy(t *testing.T) {
	m := NewMonitor(nil, Policy{Interval: time.Second, Timeout: time.Second, Retries: 2})
	fail := fmt.Errorf("x")
	for i := 0; i < 5; i++ {
		m.Observe(fail)
		m.Observe(nil)
	}
	if m.Verdict() != VerdictHealthy {
		t.Errorf("non-consecutive failures must not mark unhealthy, got %s", m.Verdict())
	}
}

func TestMonitorRunHonorsStartPeriodAndRetries(t *testing.T) {
	var calls atomic.Int32
	check := func(ctx context.Context) error {
		calls.Add(1)
		return fmt.Errorf("down")
	}

	unhealthy := make(chan struct{})
	m := NewMonitor(check, Policy{
		Interval:    10 * time.Millisecond,
		Timeout:     5 * time.Millisecond,
		StartPeriod: 150 * time.Millisecond,
		Retries:     3,
	}, OnChange(func(_, to Verdict) {
		if to == VerdictUnhealthy {
			close(unhealthy)
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Fatalf("no probe may be issued during the start period, got %d", n)
	}

	select {
	case <-unhealthy:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor never declared the target unhealthy")
	}
	if m.ConsecutiveFailures() < 3 {
		t.Errorf("expected at least 3 failures, got %d", m.ConsecutiveFailures())
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestMonitorRunAppliesTimeout(t *testing.T) {
	check := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	healthyOrNot := make(chan Verdict, 10)
	m := NewMonitor(check, Policy{Interval: 5 * time.Millisecond, Timeout: 5 * time.Millisecond, Retries: 1},
		OnChange(func(_, to Verdict) { healthyOrNot <- to }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Run(ctx) }()

	select {
	case v := <-healthyOrNot:
		if v != VerdictUnhealthy {
			t.Errorf("expected unhealthy after timed-out probe, got %s", v)
		}
	case <-time.After(time.Second):
		t.Fatal("a hanging probe must be cut off by the timeout")
	}
}
