package reconciler

import (
	"time"

	"github.com/agentstation/ordersync/pkg/differ"
	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/schema"
)

type options struct {
	schema   *schema.Schema
	differ   differ.Differ
	now      func() time.Time
	sleep    Sleeper
	observer Observer
	newID    func() string
}

func defaultOptions() *options {
	return &options{
		schema: schema.Default(),
		differ: differ.New(),
		now:    time.Now,
		sleep:  Sleep,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithSchema sets the column layout of the row store.
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

// WithDiffer replaces the cell differ.
func WithDiffer(d differ.Differ) Option {
	return func(o *options) error {
		if d == nil {
			return &errors.ValidationError{Field: "differ", Message: "cannot be nil"}
		}
		o.differ = d
		return nil
	}
}

// WithClock sets the time source used for the patch window.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return &errors.ValidationError{Field: "clock", Message: "cannot be nil"}
		}
		o.now = now
		return nil
	}
}

// WithSleeper replaces the pause used between writes.
func WithSleeper(sleep Sleeper) Option {
	return func(o *options) error {
		if sleep == nil {
			return &errors.ValidationError{Field: "sleeper", Message: "cannot be nil"}
		}
		o.sleep = sleep
		return nil
	}
}

// WithObserver receives every row insert and cell patch as it is written.
func WithObserver(obs Observer) Option {
	return func(o *options) error {
		o.observer = obs
		return nil
	}
}

// WithPassIDs sets the generator for pass identifiers.
func WithPassIDs(newID func() string) Option {
	return func(o *options) error {
		o.newID = newID
		return nil
	}
}
