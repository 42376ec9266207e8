package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/launchpad/component"
	"github.com/kbukum/launchpad/config"
	"github.com/kbukum/launchpad/dependency"
	"github.com/kbukum/launchpad/errors"
	"github.com/kbukum/launchpad/logger"
	"github.com/kbukum/launchpad/observability"
	"github.com/kbukum/launchpad/privilege"
	"github.com/kbukum/launchpad/server"
	"github.com/kbukum/launchpad/version"
)

const meterName = "github.com/kbukum/launchpad"

// App turns a freshly started process into a request-accepting service:
//
//	STARTING -> CONFIG_RESOLVED -> [PRIVILEGE_DROPPED] -> LISTENING
//	         -> SHUTTING_DOWN -> STOPPED
//
// Any failure before LISTENING ends in FAILED and is returned by Run.
//
// Example:
//
//	settings, err := config.Load("launchpad")
//	app, err := bootstrap.New(settings, bootstrap.WithHandler(h))
//	err = app.Run(ctx)
//	os.Exit(errors.ExitCode(err))
type App struct {
	Name       string
	Version    string
	Settings   *config.Settings
	Components *component.Registry
	Lifecycle  *Lifecycle
	Logger     *logger.Logger
	Summary    *Summary

	handler http.Handler
	lookup  config.LookupFunc
	dropper *privilege.Dropper
	metrics *observability.Metrics
	signals []os.Signal

	cfg    config.ServiceConfig
	server *server.Server

	initTelemetry     func(ctx context.Context, cfg observability.TelemetryConfig, service, version, environment string) (observability.ShutdownFunc, error)
	shutdownTelemetry observability.ShutdownFunc
	exited            <-chan error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// New creates an App from loaded settings. Settings are defaulted and
// validated again so a hand-built value behaves like a loaded one.
func New(settings *config.Settings, opts ...Option) (*App, error) {
	if settings == nil {
		return nil, errors.Configuration("settings", "missing")
	}
	settings.ApplyDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	o := resolveOptions(opts)

	log := o.logger
	if log == nil {
		logger.Init(&settings.Logging)
		log = logger.GetGlobalLogger()
	}

	metrics, err := observability.NewMetrics(observability.Meter(meterName))
	if err != nil {
		return nil, errors.Internal(err)
	}

	a := &App{
		Name:     settings.Name,
		Version:  version.Effective(settings.Version),
		Settings: settings,
		Components: component.NewRegistry(
			component.WithRegistryLogger(log),
			component.WithStopTimeout(time.Duration(settings.Server.ShutdownTimeout)*time.Second),
		),
		Logger:  log,
		handler: o.handler,
		lookup:  o.lookup,
		dropper: o.dropper,
		metrics: metrics,
		signals: o.signals,

		initTelemetry: observability.Init,
	}

	a.Lifecycle = NewLifecycle(log, func(ctx context.Context, from, to State) {
		a.metrics.RecordTransition(ctx, from.String(), to.String())
	})
	for _, fn := range o.observers {
		a.Lifecycle.Observe(fn)
	}

	if a.dropper == nil {
		a.dropper = privilege.NewDropper(privilege.WithLogger(log))
	}
	if len(a.signals) == 0 {
		a.signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	a.Summary = NewSummary(a.Name, a.Version)
	if o.summaryOut != nil {
		a.Summary.SetOutput(o.summaryOut)
	}

	for _, c := range dependency.Components(settings.Dependencies, log) {
		if err := a.Components.Register(c); err != nil {
			return nil, errors.Internal(err)
		}
	}
	for _, c := range o.components {
		if err := a.Components.Register(c); err != nil {
			return nil, errors.Internal(err)
		}
	}
	return a, nil
}

// State returns the current lifecycle state.
func (a *App) State() State {
	return a.Lifecycle.State()
}

// Config returns the resolved configuration. It is the zero value before
// CONFIG_RESOLVED.
func (a *App) Config() config.ServiceConfig {
	return a.cfg
}

// Addr returns the bound address, or "" before LISTENING.
func (a *App) Addr() string {
	if a.server == nil {
		return ""
	}
	return a.server.Addr()
}

// Server returns the HTTP server, or nil before it is built.
func (a *App) Server() *server.Server {
	return a.server
}

// Run executes the lifecycle and blocks until a shutdown signal arrives
// or ctx is canceled. It returns nil after an orderly shutdown. Startup
// failures are returned with their CONFIGURATION_ERROR, PRIVILEGE_ERROR
// or BIND_ERROR code; nothing is retried. A server error or the unexpected
// exit of a supervised component after LISTENING still shuts down in order
// and is returned as an INTERNAL_ERROR.
func (a *App) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		a.fail(ctx, err)
		return err
	}

	serveErr := a.wait(ctx)
	a.stop(ctx)
	return serveErr
}

func (a *App) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("starting", logger.Fields("name", a.Name, "version", a.Version))

	cfg, err := config.Resolve(a.Settings, a.lookup)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if err := a.Lifecycle.Transition(ctx, StateConfigResolved); err != nil {
		return err
	}
	a.Logger.Info("configuration resolved", logger.Fields(
		logger.FieldAddr, cfg.Addr(),
		"port_source", string(cfg.PortSource()),
		"port_env", cfg.PortEnv(),
	))

	if cfg.RunAs().Enabled() {
		res, err := a.dropper.Drop(cfg.RunAs())
		if err != nil {
			return err
		}
		a.Summary.SetIdentity(res)
		if err := a.Lifecycle.Transition(ctx, StatePrivilegeDropped); err != nil {
			return err
		}
	}

	shutdownTelemetry, err := a.initTelemetry(ctx, a.Settings.Telemetry, a.Name, a.Version, a.Settings.Environment)
	if err != nil {
		return errors.Internal(fmt.Errorf("telemetry: %w", err))
	}
	a.shutdownTelemetry = shutdownTelemetry

	if err := a.Components.StartAll(ctx); err != nil {
		return a.abort(ctx, errors.Internal(err))
	}
	a.exited = a.Components.Exited()
	if err := runHooks(ctx, a.onStart); err != nil {
		return a.abort(ctx, errors.Internal(fmt.Errorf("onStart: %w", err)))
	}

	a.server = a.buildServer(cfg)
	if err := a.server.Start(ctx); err != nil {
		return a.abort(ctx, err)
	}

	if err := a.Lifecycle.Transition(ctx, StateListening); err != nil {
		return err
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		a.Logger.Warn("onReady hook failed", logger.ErrorFields("ready", err))
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary(ctx)
	return nil
}

func (a *App) buildServer(cfg config.ServiceConfig) *server.Server {
	srvCfg := a.Settings.Server
	srvCfg.ApplyDefaults()

	srv := server.New(srvCfg, cfg.Addr(), a.Logger)
	srv.ApplyMiddleware(a.metrics)
	srv.SetHandler(a.handler)
	srv.RegisterSystemEndpoints(server.SystemEndpoints{
		Service:     a.Name,
		Version:     a.Version,
		Environment: a.Settings.Environment,
		Live:        a.Lifecycle.Live,
		Checker:     a.Components.HealthAll,
		Identity:    a.dropper.Current,
		Probes:      a.metrics,
	})
	return srv
}

// abort releases components and telemetry set up before a startup failure.
func (a *App) abort(ctx context.Context, err error) error {
	ctx = context.WithoutCancel(ctx)
	if stopErr := a.Components.StopAll(ctx); stopErr != nil {
		a.Logger.Warn("cleanup after failed startup", logger.ErrorFields("stop", stopErr))
	}
	a.closeTelemetry(ctx)
	return err
}

func (a *App) closeTelemetry(ctx context.Context) {
	if a.shutdownTelemetry == nil {
		return
	}
	shutdown := a.shutdownTelemetry
	a.shutdownTelemetry = nil
	if err := shutdown(ctx); err != nil {
		a.Logger.Warn("telemetry shutdown", logger.ErrorFields("telemetry", err))
	}
}

func (a *App) fail(ctx context.Context, err error) {
	if tErr := a.Lifecycle.Transition(ctx, StateFailed); tErr != nil {
		a.Logger.Error("cannot enter FAILED", logger.ErrorFields("transition", tErr))
	}
}

// wait blocks until a signal, context cancellation, a server error or the
// unexpected exit of a supervised component.
func (a *App) wait(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, a.signals...)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", logger.Fields("signal", sig.String()))
		return nil
	case <-ctx.Done():
		a.Logger.Info("context canceled, shutting down")
		return nil
	case err := <-a.server.Errors():
		return errors.Internal(fmt.Errorf("serving: %w", err))
	case err := <-a.exited:
		a.Logger.Error("supervised component exited", logger.ErrorFields("supervise", err))
		return errors.Internal(err)
	}
}

// stop walks SHUTTING_DOWN -> STOPPED. The listener closes only after the
// stop hooks have run, so probes during the hooks already see "down".
func (a *App) stop(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if err := a.Lifecycle.Transition(ctx, StateShuttingDown); err != nil {
		a.Logger.Error("shutdown transition", logger.ErrorFields("transition", err))
	}

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Warn("onStop hook failed", logger.ErrorFields("stop", err))
	}
	if err := a.server.Stop(ctx); err != nil {
		a.Logger.Warn("listener did not drain in time", logger.ErrorFields("shutdown", err))
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Warn("components stopped with errors", logger.ErrorFields("stop", err))
	}

	if err := a.Lifecycle.Transition(ctx, StateStopped); err != nil {
		a.Logger.Error("shutdown transition", logger.ErrorFields("transition", err))
	}
	a.closeTelemetry(ctx)
	a.Logger.Info("shutdown complete")
}

// DisplaySummary writes the startup summary with live component health.
func (a *App) DisplaySummary(ctx context.Context) {
	if a.server == nil {
		a.Summary.Display(ctx, a.Components, nil)
		return
	}
	a.Summary.Display(ctx, a.Components, server.NewComponent(a.server))
}
