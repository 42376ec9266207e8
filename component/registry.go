package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/launchpad/logger"
)

const defaultStopTimeout = 10 * time.Second

type entry struct {
	component Component
	started   bool
}

// Registry manages component lifecycle with deterministic ordering.
// Components are started in registration order and stopped in reverse order.
type Registry struct {
	entries     []*entry
	lookup      map[string]*entry
	stopTimeout time.Duration
	log         *logger.Logger
	mu          sync.RWMutex
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used for lifecycle messages.
func WithRegistryLogger(l *logger.Logger) RegistryOption {
	return func(r *Registry) { r.log = l.WithComponent("registry") }
}

// WithStopTimeout bounds how long each component may take to stop.
func WithStopTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.stopTimeout = d
		}
	}
}

// NewRegistry creates a new component registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		lookup:      make(map[string]*entry),
		stopTimeout: defaultStopTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.WithComponent("registry")
	}
	return r
}

// Register adds a component. Register dependencies first.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.lookup[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}

	e := &entry{component: c}
	r.entries = append(r.entries, e)
	r.lookup[name] = e

	r.log.Debug("component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// StartAll starts all components in registration order. It stops at the
// first failure; components already started stay started so StopAll can
// release them.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.started {
			continue
		}
		name := e.component.Name()
		start := time.Now()
		if err := e.component.Start(ctx); err != nil {
			r.log.Error("component start failed", logger.Fields(
				logger.FieldComponent, name,
				logger.FieldError, err.Error(),
			))
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		e.started = true
		r.log.Debug("component started", logger.Fields(
			logger.FieldComponent, name,
			logger.FieldDuration, time.Since(start).Milliseconds(),
		))
	}

	if len(r.entries) > 0 {
		r.log.Info("components started", logger.Fields("count", len(r.entries)))
	}
	return nil
}

// StopAll stops started components in reverse registration order. Every
// component gets its own stop deadline; all stop errors are returned joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !e.started {
			continue
		}

		name := e.component.Name()
		stopCtx, cancel := context.WithTimeout(ctx, r.stopTimeout)
		if err := e.component.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			r.log.Error("component stop failed", logger.Fields(
				logger.FieldComponent, name,
				logger.FieldError, err.Error(),
			))
		} else {
			r.log.Debug("component stopped", logger.Fields(logger.FieldComponent, name))
		}
		e.started = false
		cancel()
	}

	return errors.Join(errs...)
}

// HealthAll returns health status for all registered components.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Health, 0, len(r.entries))
	for _, e := range r.entries {
		results = append(results, e.component.Health(ctx))
	}
	return results
}

// Get returns a registered component by name, or nil if not found.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, exists := r.lookup[name]; exists {
		return e.component
	}
	return nil
}

// All returns all registered components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Component, 0, len(r.entries))
	for _, e := range r.entries {
		result = append(result, e.component)
	}
	return result
}

// Describe collects descriptions from components implementing Describable.
func (r *Registry) Describe() []Description {
	var out []Description
	for _, c := range r.All() {
		d, ok := c.(Describable)
		if !ok {
			continue
		}
		desc := d.Describe()
		if desc.Name == "" {
			desc.Name = c.Name()
		}
		out = append(out, desc)
	}
	return out
}

// Exited merges the exit channels of Supervised components. It delivers the
// first unexpected exit, tagged with the component name. It returns nil when
// no component is supervised.
func (r *Registry) Exited() <-chan error {
	var sources []Component
	for _, c := range r.All() {
		if _, ok := c.(Supervised); ok {
			sources = append(sources, c)
		}
	}
	if len(sources) == 0 {
		return nil
	}

	out := make(chan error, len(sources))
	for _, c := range sources {
		ch := c.(Supervised).Exited()
		name := c.Name()
		go func() {
			if err, ok := <-ch; ok && err != nil {
				out <- fmt.Errorf("%s exited: %w", name, err)
			}
		}()
	}
	return out
}
