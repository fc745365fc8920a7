package logship

import (
	"errors"
	"sync"

	"github.com/bft-labs/logship/pkg/log"
)

// Lifecycle errors.
var (
	ErrNotRunning      = errors.New("not running")
	ErrAlreadyRunning  = errors.New("already running")
	ErrShutdownTimeout = errors.New("shutdown timeout")
)

// State is the lifecycle state of an Agent.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// StateChangeEvent describes one lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// EventHandler receives lifecycle notifications. Calls are synchronous.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
}

// transitions lists the states reachable from each state.
var transitions = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateRunning, StateStopping, StateCrashed},
	StateRunning:  {StateStopping, StateCrashed},
	StateStopping: {StateStopped, StateCrashed},
	StateCrashed:  {StateStarting},
}

// machine guards the lifecycle state of an Agent.
type machine struct {
	mu      sync.RWMutex
	state   State
	logger  log.Logger
	handler EventHandler
}

func newMachine(logger log.Logger, handler EventHandler) *machine {
	return &machine{state: StateStopped, logger: logger, handler: handler}
}

func (m *machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *machine) canStart() bool {
	s := m.State()
	return s == StateStopped || s == StateCrashed
}

func (m *machine) canStop() bool {
	s := m.State()
	return s == StateRunning || s == StateStarting
}

// transition moves to next if the current state allows it.
func (m *machine) transition(next State, reason string) error {
	m.mu.Lock()
	prev := m.state
	if !allowed(prev, next) {
		m.mu.Unlock()
		if prev == StateStopped || prev == StateCrashed {
			return ErrNotRunning
		}
		return ErrAlreadyRunning
	}
	m.state = next
	m.mu.Unlock()

	// outside the lock so handlers may query Status
	if m.handler != nil {
		m.handler.OnStateChange(StateChangeEvent{Previous: prev, Current: next, Reason: reason})
	}
	m.logger.Info("state transition",
		log.Stringer("from", prev),
		log.Stringer("to", next),
		log.String("reason", reason),
	)
	return nil
}

func allowed(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
