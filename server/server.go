package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apperrors "github.com/kbukum/launchpad/errors"
	"github.com/kbukum/launchpad/logger"
	"github.com/kbukum/launchpad/server/endpoint"
	"github.com/kbukum/launchpad/server/middleware"
)

// System routes besides liveness, relative to Config.SystemPrefix.
const (
	PathReady   = "/ready"
	PathInfo    = "/info"
	PathVersion = "/version"
	PathMetrics = "/metrics"
)

var systemRoutes = []string{PathReady, PathInfo, PathVersion, PathMetrics}

// Server is the HTTP server: a gin engine for system routes in front of an
// application handler.
type Server struct {
	config Config
	addr   string
	log    *logger.Logger

	engine      *gin.Engine
	app         http.Handler
	middlewares []middleware.Middleware

	mu             sync.Mutex
	httpServer     *http.Server
	healthServer   *http.Server
	listener       net.Listener
	healthListener net.Listener
	errs           chan error
}

// New creates a Server that will listen on addr. cfg should have defaults
// applied.
func New(cfg Config, addr string, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config: cfg,
		addr:   addr,
		log:    log.WithComponent("server"),
		engine: gin.New(),
		app:    http.NotFoundHandler(),
		errs:   make(chan error, 2),
	}
	s.engine.Use(middleware.GinWrap(middleware.Recovery(s.log)))
	return s
}

// GinEngine returns the engine holding the system routes.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// SetHandler sets the application handler. Requests that match no system
// route are dispatched to it.
func (s *Server) SetHandler(h http.Handler) {
	if h != nil {
		s.app = h
	}
}

// Use appends middleware to the application chain. It does not apply to
// system routes.
func (s *Server) Use(mw ...middleware.Middleware) {
	s.middlewares = append(s.middlewares, mw...)
}

// ApplyMiddleware installs the standard application chain: recovery,
// request ID, request logging, telemetry (when rec is non-nil) and the body
// size limit.
func (s *Server) ApplyMiddleware(rec middleware.RequestRecorder) {
	s.Use(middleware.Recovery(s.log), middleware.RequestID(), middleware.RequestLogger(s.log))
	if rec != nil {
		s.Use(middleware.Telemetry(rec))
	}
	s.Use(middleware.BodySizeLimit(s.config.MaxBodySize))
}

// SystemEndpoints supplies what the system routes report.
type SystemEndpoints struct {
	Service     string
	Version     string
	Environment string
	Live        endpoint.LivenessFunc
	Checker     endpoint.HealthChecker
	Identity    endpoint.IdentityFunc
	Probes      endpoint.ProbeRecorder
}

// RegisterSystemEndpoints registers the liveness route and, unless
// disabled, the readiness, info, version and metrics routes under the
// configured prefix.
func (s *Server) RegisterSystemEndpoints(se SystemEndpoints) {
	health := endpoint.Health(se.Service, se.Live, se.Probes)
	s.engine.GET(s.config.HealthPath, health)
	s.engine.HEAD(s.config.HealthPath, health)
	if s.config.DisableSystemRoutes {
		return
	}
	s.engine.GET(s.config.SystemPath(PathReady), endpoint.Readiness(se.Service, se.Version, se.Live, se.Checker))
	s.engine.GET(s.config.SystemPath(PathInfo), endpoint.Info(se.Service, se.Version, se.Environment, se.Identity))
	s.engine.GET(s.config.SystemPath(PathVersion), endpoint.Version())
	s.engine.GET(s.config.SystemPath(PathMetrics), endpoint.Metrics())
}

// Handler returns the root handler. A request whose path equals a system
// route goes to the engine; every other request goes to the application
// behind its middleware chain.
func (s *Server) Handler() http.Handler {
	system := make(map[string]bool)
	for _, r := range s.engine.Routes() {
		system[r.Path] = true
	}
	app := middleware.Chain(s.middlewares...)(s.app)
	return s.h2c(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if system[r.URL.Path] {
			s.engine.ServeHTTP(w, r)
			return
		}
		app.ServeHTTP(w, r)
	}))
}

func (s *Server) healthHandler() http.Handler {
	return s.h2c(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != s.config.HealthPath {
			http.NotFound(w, r)
			return
		}
		s.engine.ServeHTTP(w, r)
	}))
}

func (s *Server) h2c(h http.Handler) http.Handler {
	return h2c.NewHandler(h, &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          time.Duration(s.config.IdleTimeout) * time.Second,
	})
}

// Start binds the listener (and the health listener when configured) and
// begins serving in the background. It returns once the sockets are bound.
// A bind failure is returned as a BIND_ERROR and leaves nothing listening.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return apperrors.Bind(s.addr, errors.New("server already started"))
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return apperrors.Bind(s.addr, err)
	}

	var hln net.Listener
	if s.config.HealthPort > 0 {
		host, _, _ := net.SplitHostPort(s.addr)
		haddr := net.JoinHostPort(host, strconv.Itoa(s.config.HealthPort))
		hln, err = lc.Listen(ctx, "tcp", haddr)
		if err != nil {
			_ = ln.Close()
			return apperrors.Bind(haddr, err)
		}
	}

	s.listener = ln
	s.httpServer = s.newHTTPServer(s.Handler())
	go s.serve(s.httpServer, ln)

	if hln != nil {
		s.healthListener = hln
		s.healthServer = s.newHTTPServer(s.healthHandler())
		go s.serve(s.healthServer, hln)
	}

	fields := logger.Fields(logger.FieldAddr, ln.Addr().String())
	if hln != nil {
		fields["health_addr"] = hln.Addr().String()
	}
	s.log.Info("listening", fields)
	return nil
}

func (s *Server) newHTTPServer(h http.Handler) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadTimeout:       time.Duration(s.config.ReadTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(s.config.IdleTimeout) * time.Second,
	}
}

func (s *Server) serve(srv *http.Server, ln net.Listener) {
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("server error", logger.ErrorFields("serve", err))
		s.errs <- err
	}
}

// Errors delivers errors that stopped a listener after Start succeeded.
func (s *Server) Errors() <-chan error {
	return s.errs
}

// Stop stops accepting connections and waits for in-flight requests until
// the shutdown timeout elapses.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}

	timeout := time.Duration(s.config.ShutdownTimeout) * time.Second
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var errs []error
	if s.healthServer != nil {
		if err := s.healthServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
			_ = s.healthServer.Close()
		}
	}
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
		_ = s.httpServer.Close()
	}
	s.httpServer, s.healthServer = nil, nil

	if err := errors.Join(errs...); err != nil {
		s.log.Warn("shutdown incomplete", logger.ErrorFields("shutdown", err))
		return err
	}
	s.log.Info("server stopped")
	return nil
}

// Addr returns the bound address once started, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// HealthAddr returns the bound health listener address, or "" when liveness
// is served only on the main listener.
func (s *Server) HealthAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.healthListener != nil {
		return s.healthListener.Addr().String()
	}
	return ""
}

// Listening reports whether Start succeeded and Stop has not run.
func (s *Server) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.httpServer != nil
}

// HealthPath returns the configured liveness path.
func (s *Server) HealthPath() string {
	return s.config.HealthPath
}
