package ordersync

import (
	"time"

	"github.com/agentstation/ordersync/pkg/constants"
	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/reconciler"
	"github.com/agentstation/ordersync/pkg/schedule"
	"github.com/agentstation/ordersync/pkg/schema"
)

// options holds the configuration for a Client.
type options struct {
	config reconciler.Config
	schema *schema.Schema
	quiet  schedule.QuietWindow

	autoSyncEnabled  bool
	autoSyncInterval time.Duration

	now       func() time.Time
	sleep     reconciler.Sleeper
	observers []reconciler.Observer
}

func defaults() *options {
	return &options{
		config:           reconciler.DefaultConfig(),
		schema:           schema.Default(),
		quiet:            schedule.DefaultQuietWindow(),
		autoSyncEnabled:  false,
		autoSyncInterval: constants.DefaultSyncInterval,
		now:              time.Now,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Option is a function that configures a Client
type Option func(*options) error

// WithConfig sets the reconciliation configuration
func WithConfig(cfg reconciler.Config) Option {
	return func(o *options) error {
		o.config = cfg
		return nil
	}
}

// WithSchema sets the column layout of the store
func WithSchema(s *schema.Schema) Option {
	return func(o *options) error {
		if s == nil {
			return &errors.ValidationError{Field: "schema", Message: "cannot be nil"}
		}
		if err := s.Validate(); err != nil {
			return err
		}
		o.schema = s
		return nil
	}
}

// WithQuietWindow sets the window in which unforced passes are refused
func WithQuietWindow(w schedule.QuietWindow) Option {
	return func(o *options) error {
		o.quiet = w
		return nil
	}
}

// WithAutoSync configures whether the background sync loop starts with the client
func WithAutoSync(enabled bool) Option {
	return func(o *options) error {
		o.autoSyncEnabled = enabled
		return nil
	}
}

// WithAutoSyncInterval configures how often the background loop runs a pass
func WithAutoSyncInterval(interval time.Duration) Option {
	return func(o *options) error {
		if interval <= 0 {
			return &errors.ValidationError{Field: "autoSyncInterval", Value: interval, Message: "must be positive"}
		}
		o.autoSyncInterval = interval
		return nil
	}
}

// WithClock sets the time source for the quiet window and the patch window
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		o.now = now
		return nil
	}
}

// WithSleeper replaces the pause used between writes
func WithSleeper(sleep reconciler.Sleeper) Option {
	return func(o *options) error {
		o.sleep = sleep
		return nil
	}
}

// WithObserver adds an observer told about every write, such as a metrics sink
func WithObserver(obs reconciler.Observer) Option {
	return func(o *options) error {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
		return nil
	}
}
