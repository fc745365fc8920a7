package logship

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/logship/pkg/clock"
	"github.com/bft-labs/logship/pkg/log"
	"github.com/bft-labs/logship/pkg/sender"
)

// Option configures optional behavior of an Agent.
type Option func(*options)

type options struct {
	logger       log.Logger
	sender       sender.Sender
	clock        clock.Clock
	registerer   prometheus.Registerer
	eventHandler EventHandler
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		clock:  clock.System,
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSender replaces the transport. The Agent does not close it.
func WithSender(s sender.Sender) Option {
	return func(o *options) {
		o.sender = s
	}
}

// WithClock sets the clock used to timestamp records.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithMetrics registers the transport counters on reg.
// It has no effect together with WithSender.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithEventHandler sets a handler for lifecycle events.
// Events are called synchronously; implementations should return quickly.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}
