package dependency

import (
	"context"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/launchpad/component"
	"github.com/kbukum/launchpad/logger"
	"github.com/kbukum/launchpad/util"
)

// Redis checks a Redis server with PING. The client is created on first
// use and recreated after a failed attempt.
type Redis struct {
	url  string
	cfg  Config
	log  *logger.Logger
	lazy *component.Lazy

	mu      sync.RWMutex
	client  *goredis.Client
	stopped bool
}

var _ component.Component = (*Redis)(nil)

// NewRedis creates a Redis readiness check for cfg.RedisURL.
func NewRedis(cfg Config, log *logger.Logger) *Redis {
	cfg.ApplyDefaults()
	r := &Redis{
		url: cfg.RedisURL,
		cfg: cfg,
		log: log.WithComponent("redis"),
	}
	r.lazy = component.NewLazy("redis", r.connect).WithCloser(r.close)
	return r
}

func (r *Redis) connect(ctx context.Context) error {
	opts, err := goredis.ParseURL(r.url)
	if err != nil {
		return err
	}
	opts.DialTimeout = r.cfg.Timeout
	opts.ReadTimeout = r.cfg.Timeout
	opts.WriteTimeout = r.cfg.Timeout
	opts.MaxRetries = -1

	client := goredis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		_ = client.Close()
		return fmt.Errorf("stopped")
	}
	r.client = client
	return nil
}

func (r *Redis) close() error {
	r.mu.Lock()
	client := r.client
	r.client = nil
	r.mu.Unlock()
	if client == nil {
		return nil
	}
	return client.Close()
}

func (r *Redis) current() (*goredis.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.client, r.stopped
}

// Name returns the component name.
func (r *Redis) Name() string { return "redis" }

// Start makes one connection attempt. A failure is logged, not returned.
func (r *Redis) Start(ctx context.Context) error {
	if err := r.lazy.Initialize(ctx); err != nil {
		r.log.Warn("Redis not reachable yet", logger.ErrorFields("connect", err))
		return nil
	}
	r.log.Info("Redis reachable", logger.Fields("url", util.RedactURL(r.url)))
	return nil
}

// Stop closes the connection pool. Later health checks report unhealthy
// without reconnecting.
func (r *Redis) Stop(_ context.Context) error {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
	return r.lazy.Close()
}

// Health pings the server, connecting first if needed.
func (r *Redis) Health(ctx context.Context) component.Health {
	if _, stopped := r.current(); stopped {
		return component.Health{Name: r.Name(), Status: component.StatusUnhealthy, Message: "stopped"}
	}
	if err := r.lazy.Initialize(ctx); err != nil {
		return component.Health{
			Name:    r.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("connect failed: %v", r.lazy.LastError()),
		}
	}

	client, _ := r.current()
	if client == nil {
		return component.Health{Name: r.Name(), Status: component.StatusUnhealthy, Message: "stopped"}
	}

	pingCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return component.Health{
			Name:    r.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}
	return component.Health{Name: r.Name(), Status: component.StatusHealthy}
}

// Describe returns the summary line.
func (r *Redis) Describe() component.Description {
	return component.Description{
		Name:    "Redis",
		Type:    "redis",
		Details: util.RedactURL(r.url),
	}
}
