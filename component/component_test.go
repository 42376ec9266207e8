package component

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/launchpad/logger"
)

type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	stopDelay  time.Duration
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	if m.stopDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.stopDelay):
		}
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health { return m.health }

type describedComponent struct {
	mockComponent
	desc Description
}

func (d *describedComponent) Describe() Description { return d.desc }

type supervisedComponent struct {
	mockComponent
	exited chan error
}

func (s *supervisedComponent) Exited() <-chan error { return s.exited }

func newTestRegistry(opts ...RegistryOption) *Registry {
	return NewRegistry(append([]RegistryOption{WithRegistryLogger(logger.NewNop())}, opts...)...)
}

func TestRegisterDuplicate(t *testing.T) {
	r := newTestRegistry()
	if err := r.Register(&mockComponent{name: "redis"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "redis"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := newTestRegistry()
	_ = r.Register(&mockComponent{name: "redis"})

	if got := r.Get("redis"); got == nil || got.Name() != "redis" {
		t.Fatalf("expected registered component, got %v", got)
	}
	if got := r.Get("missing"); got != nil {
		t.Error("expected nil for unregistered component")
	}
}

func TestStartAllOrderAndStopAllReverse(t *testing.T) {
	r := newTestRegistry()
	var started, stopped []string
	for _, name := range []string{"redis", "tcp", "http-server"} {
		_ = r.Register(&mockComponent{name: name, startOrder: &started, stopOrder: &stopped})
	}

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if strings.Join(started, ",") != "redis,tcp,http-server" {
		t.Errorf("unexpected start order %v", started)
	}

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if strings.Join(stopped, ",") != "http-server,tcp,redis" {
		t.Errorf("unexpected stop order %v", stopped)
	}
}

func TestStartAllStopsAtFirstFailure(t *testing.T) {
	r := newTestRegistry()
	var started, stopped []string
	boom := fmt.Errorf("connection refused")
	_ = r.Register(&mockComponent{name: "a", startOrder: &started, stopOrder: &stopped})
	_ = r.Register(&mockComponent{name: "b", startErr: boom, startOrder: &started, stopOrder: &stopped})
	_ = r.Register(&mockComponent{name: "c", startOrder: &started, stopOrder: &stopped})

	err := r.StartAll(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped start error, got %v", err)
	}
	if len(started) != 2 {
		t.Errorf("expected c never started, got %v", started)
	}

	_ = r.StopAll(context.Background())
	if strings.Join(stopped, ",") != "a" {
		t.Errorf("only started components are stopped, got %v", stopped)
	}
}

func TestStopAllJoinsErrors(t *testing.T) {
	r := newTestRegistry()
	e1, e2 := fmt.Errorf("first"), fmt.Errorf("second")
	_ = r.Register(&mockComponent{name: "a", stopErr: e1})
	_ = r.Register(&mockComponent{name: "b", stopErr: e2})
	_ = r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Errorf("expected both stop errors, got %v", err)
	}
}

func TestStopAllAppliesTimeout(t *testing.T) {
	r := newTestRegistry(WithStopTimeout(20 * time.Millisecond))
	_ = r.Register(&mockComponent{name: "slow", stopDelay: time.Second})
	_ = r.StartAll(context.Background())

	start := time.Now()
	err := r.StopAll(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("stop timeout was not applied")
	}
}

func TestHealthAll(t *testing.T) {
	r := newTestRegistry()
	_ = r.Register(&mockComponent{name: "redis", health: Health{Name: "redis", Status: StatusHealthy}})
	_ = r.Register(&mockComponent{name: "db", health: Health{Name: "db", Status: StatusUnhealthy, Message: "timeout"}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy || results[1].Status != StatusUnhealthy {
		t.Errorf("unexpected results %+v", results)
	}
}

func TestDescribe(t *testing.T) {
	r := newTestRegistry()
	_ = r.Register(&mockComponent{name: "plain"})
	_ = r.Register(&describedComponent{
		mockComponent: mockComponent{name: "redis"},
		desc:          Description{Type: "redis", Details: "redis:6379"},
	})

	descs := r.Describe()
	if len(descs) != 1 {
		t.Fatalf("expected 1 description, got %d", len(descs))
	}
	if descs[0].Name != "redis" {
		t.Errorf("expected name to fall back to component name, got %q", descs[0].Name)
	}
}

func TestLazyInitializesOnce(t *testing.T) {
	count := 0
	l := NewLazy("redis", func(ctx context.Context) error {
		count++
		return nil
	})
	if l.Ready() {
		t.Error("expected not ready before Initialize")
	}
	_ = l.Initialize(context.Background())
	_ = l.Initialize(context.Background())
	if count != 1 {
		t.Errorf("expected initializer called once, got %d", count)
	}
	if !l.Ready() {
		t.Error("expected ready after Initialize")
	}
}

func TestLazyRetriesAfterFailure(t *testing.T) {
	attempts := 0
	l := NewLazy("redis", func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return fmt.Errorf("dial refused")
		}
		return nil
	})

	if err := l.Initialize(context.Background()); err == nil {
		t.Fatal("expected first attempt to fail")
	}
	if l.LastError() == nil {
		t.Error("expected last error recorded")
	}
	if err := l.Initialize(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if l.LastError() != nil {
		t.Error("expected last error cleared")
	}
}

func TestLazyClose(t *testing.T) {
	closed := false
	l := NewLazy("redis", func(ctx context.Context) error { return nil }).
		WithCloser(func() error { closed = true; return nil })

	if err := l.Close(); err != nil || closed {
		t.Fatal("closing an uninitialized component must not call the closer")
	}
	_ = l.Initialize(context.Background())
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !closed {
		t.Error("expected closer to be called")
	}
	if l.Ready() {
		t.Error("expected not ready after Close")
	}
}

func TestExitedNilWithoutSupervisedComponents(t *testing.T) {
	r := newTestRegistry()
	_ = r.Register(&mockComponent{name: "redis"})
	if r.Exited() != nil {
		t.Error("expected nil channel when nothing is supervised")
	}
}

func TestExitedReportsUnexpectedExit(t *testing.T) {
	r := newTestRegistry()
	clean := &supervisedComponent{mockComponent: mockComponent{name: "clean"}, exited: make(chan error, 1)}
	crash := &supervisedComponent{mockComponent: mockComponent{name: "worker"}, exited: make(chan error, 1)}
	_ = r.Register(clean)
	_ = r.Register(crash)

	exited := r.Exited()
	close(clean.exited)

	select {
	case err := <-exited:
		t.Fatalf("an orderly exit must not be reported, got %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	crash.exited <- fmt.Errorf("exit status 3")
	select {
	case err := <-exited:
		if !strings.Contains(err.Error(), "worker exited") || !strings.Contains(err.Error(), "exit status 3") {
			t.Errorf("unexpected error %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("expected the crash to be reported")
	}
}
