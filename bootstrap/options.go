package bootstrap

import (
	"io"
	"net/http"
	"os"

	"github.com/kbukum/launchpad/component"
	"github.com/kbukum/launchpad/config"
	"github.com/kbukum/launchpad/logger"
	"github.com/kbukum/launchpad/privilege"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger     *logger.Logger
	handler    http.Handler
	lookup     config.LookupFunc
	dropper    *privilege.Dropper
	components []component.Component
	summaryOut io.Writer
	signals    []os.Signal
	observers  []TransitionFunc
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger. If not set, the logger is initialized
// from the settings' logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithHandler sets the application handler requests are dispatched to.
func WithHandler(h http.Handler) Option {
	return func(o *appOptions) { o.handler = h }
}

// WithLookup replaces os.LookupEnv for resolving the port.
func WithLookup(fn config.LookupFunc) Option {
	return func(o *appOptions) { o.lookup = fn }
}

// WithDropper replaces the privilege dropper bound to the process.
func WithDropper(d *privilege.Dropper) Option {
	return func(o *appOptions) { o.dropper = d }
}

// WithComponent registers extra components after the configured
// dependency checks.
func WithComponent(c ...component.Component) Option {
	return func(o *appOptions) { o.components = append(o.components, c...) }
}

// WithSummaryOutput redirects the startup summary. Nil disables it.
func WithSummaryOutput(w io.Writer) Option {
	return func(o *appOptions) {
		if w == nil {
			w = io.Discard
		}
		o.summaryOut = w
	}
}

// WithSignals replaces the signals that start a shutdown.
func WithSignals(sig ...os.Signal) Option {
	return func(o *appOptions) { o.signals = sig }
}

// WithTransitionObserver is called after every lifecycle transition.
func WithTransitionObserver(fn TransitionFunc) Option {
	return func(o *appOptions) { o.observers = append(o.observers, fn) }
}
