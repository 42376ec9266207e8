package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback. Hooks let the binary attach work to a phase
// without bootstrap knowing about it.
type Hook func(ctx context.Context) error

// OnStart registers a hook that runs after components are started and
// before the listener is bound. A failing hook fails startup.
func (a *App) OnStart(hooks ...Hook) {
	a.onStart = append(a.onStart, hooks...)
}

// OnReady registers a hook that runs once the service is LISTENING.
func (a *App) OnReady(hooks ...Hook) {
	a.onReady = append(a.onReady, hooks...)
}

// OnStop registers a hook that runs in SHUTTING_DOWN while the listener is
// still open.
func (a *App) OnStop(hooks ...Hook) {
	a.onStop = append(a.onStop, hooks...)
}

func runHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("hook %d failed: %w", i, err)
		}
	}
	return nil
}
