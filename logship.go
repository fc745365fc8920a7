package logship

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/logship/pkg/log"
	"github.com/bft-labs/logship/pkg/sender"
	"github.com/bft-labs/logship/pkg/shipper"
	"github.com/bft-labs/logship/pkg/tail"
)

// DefaultShutdownTimeout bounds how long Stop waits for the follower to finish.
const DefaultShutdownTimeout = 30 * time.Second

// Config holds the configuration for an Agent.
type Config struct {
	// Path is the log file to follow.
	Path string

	// FromStart ships the file's existing content before following it.
	FromStart bool

	// Shipper sets the destination and the record defaults.
	Shipper shipper.Config

	// ShutdownTimeout defaults to DefaultShutdownTimeout.
	ShutdownTimeout time.Duration
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Path == "" {
		return errors.New("path is required")
	}
	return c.Shipper.Validate()
}

// Agent follows a file and ships its new lines. Use New, then Start.
type Agent struct {
	config  Config
	machine *machine
	shipper *shipper.Shipper
	logger  log.Logger

	// stack is set when the Agent opened its own transport.
	stack *sender.Stack

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an Agent in StateStopped. Unless WithSender is given, it opens
// a sender.Stack that is released by Close.
func New(cfg Config, opts ...Option) (*Agent, error) {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	a := &Agent{
		config:  cfg,
		machine: newMachine(o.logger, o.eventHandler),
		logger:  o.logger,
		done:    make(chan struct{}),
	}
	// nothing is running yet
	close(a.done)

	snd := o.sender
	if snd == nil {
		var stackOpts []sender.Option
		if o.registerer != nil {
			stackOpts = append(stackOpts, sender.WithMetrics(o.registerer))
		}
		stack, err := sender.Open(stackOpts...)
		if err != nil {
			return nil, err
		}
		a.stack = stack
		snd = stack
	}

	shp, err := shipper.New(cfg.Shipper, snd, o.clock, o.logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.shipper = shp
	return a, nil
}

// Start follows the file in the background and returns immediately.
// The provided context bounds the whole run.
func (a *Agent) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.machine.canStart() {
		return ErrAlreadyRunning
	}
	// a run abandoned by a timed out Stop may still be shipping
	select {
	case <-a.done:
	default:
		return fmt.Errorf("%w: previous run has not finished", ErrAlreadyRunning)
	}
	if err := a.machine.transition(StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	done := make(chan struct{})
	a.done = done

	follower := tail.New(tail.Config{
		Path:      a.config.Path,
		FromStart: a.config.FromStart,
		Logger:    a.logger,
	}, func(ctx context.Context, lines []string) {
		// failures are logged and counted by the shipper
		_ = a.shipper.Ship(ctx, lines)
	})

	if err := a.machine.transition(StateRunning, "follower starting"); err != nil {
		cancel()
		close(done)
		return err
	}

	go func() {
		defer close(done)
		defer cancel()
		if err := follower.Run(runCtx); err != nil {
			a.logger.Error("follower failed", log.Err(err))
			_ = a.machine.transition(StateCrashed, err.Error())
			return
		}
		if a.machine.State() == StateRunning {
			// parent context ended without Stop
			_ = a.machine.transition(StateStopping, "context cancelled")
			_ = a.machine.transition(StateStopped, "context cancelled")
		}
	}()
	return nil
}

// Stop cancels the follower and waits up to the shutdown timeout for it to
// finish. Returns ErrShutdownTimeout if it did not; the agent is then Crashed
// and Start fails until Done is closed.
func (a *Agent) Stop() error {
	a.mu.Lock()
	if !a.machine.canStop() {
		a.mu.Unlock()
		return ErrNotRunning
	}
	if err := a.machine.transition(StateStopping, "Stop() called"); err != nil {
		a.mu.Unlock()
		return err
	}
	a.cancel()
	done := a.done
	a.mu.Unlock()

	select {
	case <-done:
		_ = a.machine.transition(StateStopped, "graceful shutdown")
		return nil
	case <-time.After(a.config.ShutdownTimeout):
		a.logger.Warn("shutdown timeout, forcing exit", log.Duration("timeout", a.config.ShutdownTimeout))
		_ = a.machine.transition(StateCrashed, "shutdown timeout")
		return ErrShutdownTimeout
	}
}

// Done is closed when the current run ends.
func (a *Agent) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done
}

// Status returns the current lifecycle state.
func (a *Agent) Status() State {
	return a.machine.State()
}

// Stats returns what has been shipped so far.
func (a *Agent) Stats() shipper.Stats {
	return a.shipper.Stats()
}

// Close releases the transport opened by New. Stop the agent first.
func (a *Agent) Close() error {
	if a.stack == nil {
		return nil
	}
	if err := a.stack.Close(); err != nil && !errors.Is(err, sender.ErrStackClosed) {
		return fmt.Errorf("close sender: %w", err)
	}
	return nil
}
