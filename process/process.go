// Package process runs the application behind the proxy as a child of the
// service. The child is started after the privilege drop so it inherits the
// unprivileged identity, and it runs in its own process group so shutdown
// reaches everything it spawned.
package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/kbukum/launchpad/component"
	"github.com/kbukum/launchpad/logger"
)

// Process is a supervised child process.
type Process struct {
	cfg    Config
	log    *logger.Logger
	stdout io.Writer
	stderr io.Writer

	mu       sync.Mutex
	cmd      *exec.Cmd
	cancel   context.CancelFunc
	stopping bool
	finished bool
	waitErr  error
	done     chan struct{}
	exited   chan error
}

var (
	_ component.Component   = (*Process)(nil)
	_ component.Supervised  = (*Process)(nil)
	_ component.Describable = (*Process)(nil)
)

// Option configures a Process.
type Option func(*Process)

// WithOutput replaces the writers the child's stdout and stderr go to.
// By default the child shares the service's own streams.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(p *Process) {
		p.stdout = stdout
		p.stderr = stderr
	}
}

// New creates a process component for cfg. Nothing runs until Start.
func New(cfg Config, log *logger.Logger, opts ...Option) (*Process, error) {
	cfg.ApplyDefaults()
	if !cfg.Enabled() {
		return nil, fmt.Errorf("upstream.command is not set")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	p := &Process{
		cfg:    cfg,
		log:    log.WithComponent("process"),
		stdout: os.Stdout,
		stderr: os.Stderr,
		done:   make(chan struct{}),
		exited: make(chan error, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the component name.
func (p *Process) Name() string { return "upstream-process" }

// Start launches the child in a new process group. Cancelling ctx after
// Start returns does not stop the child; use Stop.
func (p *Process) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil {
		return fmt.Errorf("process already started")
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := exec.CommandContext(runCtx, p.cfg.Command[0], p.cfg.Command[1:]...) //nolint:gosec // the command is operator configuration
	c.Dir = p.cfg.Dir
	c.Env = mergeEnv(p.cfg.Env)
	c.Stdout = p.stdout
	c.Stderr = p.stderr
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = p.cfg.GracePeriod

	if err := c.Start(); err != nil {
		cancel()
		return fmt.Errorf("starting %s: %w", p.cfg.Command[0], err)
	}
	p.cmd = c
	p.cancel = cancel
	p.log.Info("upstream process started", logger.Fields(
		"command", p.cfg.Command[0],
		"pid", c.Process.Pid,
	))

	go p.wait()
	return nil
}

func (p *Process) wait() {
	err := p.cmd.Wait()

	p.mu.Lock()
	p.finished = true
	p.waitErr = err
	stopping := p.stopping
	p.mu.Unlock()

	if !stopping {
		if err == nil {
			err = fmt.Errorf("exited with status 0")
		}
		err = fmt.Errorf("upstream process %s: %w", p.cfg.Command[0], err)
		p.log.Error("upstream process exited", logger.ErrorFields("wait", err))
		p.exited <- err
	}
	close(p.exited)
	close(p.done)
}

// Stop sends SIGTERM to the process group and waits for the child to exit.
// Children still alive after the grace period are killed.
func (p *Process) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.cmd == nil {
		p.mu.Unlock()
		return nil
	}
	p.stopping = true
	cancel := p.cancel
	p.mu.Unlock()

	cancel()
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for upstream process: %w", ctx.Err())
	}
}

// Exited reports an exit that did not come from Stop.
func (p *Process) Exited() <-chan error { return p.exited }

// Health reports whether the child is still running.
func (p *Process) Health(_ context.Context) component.Health {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := component.Health{Name: p.Name(), Status: component.StatusUnhealthy}
	switch {
	case p.cmd == nil:
		h.Message = "not started"
	case p.finished:
		h.Message = "exited"
		if p.waitErr != nil {
			h.Message = "exited: " + p.waitErr.Error()
		}
	default:
		h.Status = component.StatusHealthy
		h.Message = fmt.Sprintf("pid %d", p.cmd.Process.Pid)
	}
	return h
}

// Pid returns the child's process id, or 0 before Start.
func (p *Process) Pid() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Describe returns the summary line.
func (p *Process) Describe() component.Description {
	return component.Description{
		Name:    "Upstream process",
		Type:    "process",
		Details: p.cfg.Command[0],
	}
}

// mergeEnv appends extra KEY=VALUE entries to the inherited environment.
// Later entries win over inherited ones.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil
	}
	return append(os.Environ(), extra...)
}
