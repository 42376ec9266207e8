package component

import (
	"context"
	"fmt"
	"sync"
)

// Lazy defers a client's setup until first use and retries it on the next
// use after a failure. Readiness checks against remote services embed it so
// an unavailable dependency never blocks startup.
type Lazy struct {
	name        string
	mu          sync.RWMutex
	ready       bool
	lastErr     error
	initializer func(ctx context.Context) error
	closer      func() error
}

// NewLazy creates a lazy initializer.
func NewLazy(name string, initializer func(context.Context) error) *Lazy {
	return &Lazy{name: name, initializer: initializer}
}

// Name returns the component name.
func (l *Lazy) Name() string { return l.name }

// Initialize runs the initializer once it has succeeded; concurrent callers
// wait for the same attempt.
func (l *Lazy) Initialize(ctx context.Context) error {
	l.mu.RLock()
	if l.ready {
		l.mu.RUnlock()
		return nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ready {
		return nil
	}
	if l.initializer == nil {
		return fmt.Errorf("no initializer for component: %s", l.name)
	}
	if err := l.initializer(ctx); err != nil {
		l.lastErr = err
		return fmt.Errorf("failed to initialize %s: %w", l.name, err)
	}
	l.ready = true
	l.lastErr = nil
	return nil
}

// Ready reports whether initialization has succeeded.
func (l *Lazy) Ready() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ready
}

// LastError returns the error of the most recent failed attempt.
func (l *Lazy) LastError() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastErr
}

// WithCloser sets the function Close calls when initialized.
func (l *Lazy) WithCloser(fn func() error) *Lazy {
	l.closer = fn
	return l
}

// Close releases the initialized resource and resets the state.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var err error
	if l.closer != nil && l.ready {
		err = l.closer()
	}
	l.ready = false
	return err
}
