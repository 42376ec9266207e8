package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kbukum/launchpad/errors"
	"github.com/kbukum/launchpad/logger"
)

// State is a step of the service lifecycle.
type State int32

const (
	StateStarting State = iota
	StateConfigResolved
	StatePrivilegeDropped
	StateListening
	StateShuttingDown
	StateStopped
	StateFailed
)

var stateNames = [...]string{
	StateStarting:         "STARTING",
	StateConfigResolved:   "CONFIG_RESOLVED",
	StatePrivilegeDropped: "PRIVILEGE_DROPPED",
	StateListening:        "LISTENING",
	StateShuttingDown:     "SHUTTING_DOWN",
	StateStopped:          "STOPPED",
	StateFailed:           "FAILED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int32(s))
	}
	return stateNames[s]
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateStopped || s == StateFailed
}

// PRIVILEGE_DROPPED is skipped when no identity switch is configured.
var transitions = map[State][]State{
	StateStarting:         {StateConfigResolved, StateFailed},
	StateConfigResolved:   {StatePrivilegeDropped, StateListening, StateFailed},
	StatePrivilegeDropped: {StateListening, StateFailed},
	StateListening:        {StateShuttingDown},
	StateShuttingDown:     {StateStopped},
}

// CanTransition reports whether from -> to is a legal step.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionFunc observes a completed transition.
type TransitionFunc func(ctx context.Context, from, to State)

// Lifecycle holds the current state. Reads are lock-free so the liveness
// handler never waits on a transition in progress.
type Lifecycle struct {
	state     atomic.Int32
	mu        sync.Mutex
	log       *logger.Logger
	observers []TransitionFunc
}

// NewLifecycle returns a lifecycle in STARTING.
func NewLifecycle(log *logger.Logger, observers ...TransitionFunc) *Lifecycle {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Lifecycle{log: log.WithComponent("lifecycle"), observers: observers}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	return State(l.state.Load())
}

// Observe adds a transition observer.
func (l *Lifecycle) Observe(fn TransitionFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, fn)
}

// Transition moves to the given state. An illegal step leaves the state
// unchanged and returns an INTERNAL_ERROR.
func (l *Lifecycle) Transition(ctx context.Context, to State) error {
	l.mu.Lock()
	from := l.State()
	if !CanTransition(from, to) {
		l.mu.Unlock()
		return errors.Internal(fmt.Errorf("illegal lifecycle transition %s -> %s", from, to))
	}
	l.state.Store(int32(to))
	observers := append([]TransitionFunc(nil), l.observers...)
	l.mu.Unlock()

	fields := logger.Fields("from", from.String(), "to", to.String())
	if to == StateFailed {
		l.log.Warn("lifecycle transition", fields)
	} else {
		l.log.Info("lifecycle transition", fields)
	}
	for _, fn := range observers {
		fn(ctx, from, to)
	}
	return nil
}

// Live reports whether the service accepts traffic, with the state name.
func (l *Lifecycle) Live() (bool, string) {
	s := l.State()
	return s == StateListening, s.String()
}
