package ordersync

import (
	"context"
	"fmt"
	"time"

	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/logging"
	"github.com/agentstation/ordersync/pkg/reconciler"
	"github.com/agentstation/ordersync/pkg/rowstore"
	"github.com/agentstation/ordersync/pkg/rowstore/memory"
)

// Syncer runs reconciliation passes.
type Syncer interface {
	// Sync runs one pass and returns its result
	Sync(ctx context.Context, opts ...SyncOption) (*reconciler.Result, error)
}

var _ Syncer = (*client)(nil)

// SyncOptions controls a single pass.
type SyncOptions struct {
	// Force runs the pass even inside the quiet window
	Force bool
	// DryRun reconciles into a memory copy of the store; nothing is written back
	DryRun bool
	// Timeout bounds the pass; zero means no timeout
	Timeout time.Duration
}

// SyncOption configures a single pass.
type SyncOption func(*SyncOptions)

// NewSyncOptions returns the options for a pass.
func NewSyncOptions(opts ...SyncOption) *SyncOptions {
	o := &SyncOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SyncWithForce ignores the quiet window
func SyncWithForce(force bool) SyncOption {
	return func(o *SyncOptions) {
		o.Force = force
	}
}

// SyncWithDryRun reconciles into a copy of the store
func SyncWithDryRun(dryRun bool) SyncOption {
	return func(o *SyncOptions) {
		o.DryRun = dryRun
	}
}

// SyncWithTimeout bounds the pass
func SyncWithTimeout(timeout time.Duration) SyncOption {
	return func(o *SyncOptions) {
		o.Timeout = timeout
	}
}

// Sync runs one reconciliation pass. Passes never overlap; a caller arriving
// while another pass runs waits for it.
func (c *client) Sync(ctx context.Context, opts ...SyncOption) (*reconciler.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	options := NewSyncOptions(opts...)

	if !options.Force && c.options.quiet.Contains(c.options.now()) {
		logging.FromContext(ctx).Debug().Str("quiet_window", c.options.quiet.String()).Msg("Skipping pass inside quiet window")
		return nil, fmt.Errorf("%w %s", errors.ErrQuietWindow, c.options.quiet)
	}

	c.passMu.Lock()
	defer c.passMu.Unlock()

	return c.runPass(ctx, options)
}

// runPass runs a pass with passMu held.
func (c *client) runPass(ctx context.Context, options *SyncOptions) (*reconciler.Result, error) {
	var cancel context.CancelFunc
	if options.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
	} else {
		cancel = func() {} // No-op cancel if no timeout
	}
	defer cancel()

	logger := logging.FromContext(ctx)

	var store rowstore.Store = c.store
	obs := observers{c.hooks}
	sleep := c.options.sleep
	if options.DryRun {
		copied, err := memory.CopyOf(ctx, c.store)
		if err != nil {
			return nil, errors.WrapResource("copy", "store", c.store.Name(), err)
		}
		store = copied
		sleep = noSleep
	} else {
		obs = append(obs, c.options.observers...)
	}

	recOpts := []reconciler.Option{
		reconciler.WithSchema(c.options.schema),
		reconciler.WithClock(c.options.now),
		reconciler.WithObserver(obs),
	}
	if sleep != nil {
		recOpts = append(recOpts, reconciler.WithSleeper(sleep))
	}

	rec, err := reconciler.New(c.options.config, c.source, store, recOpts...)
	if err != nil {
		return nil, err
	}

	result, err := rec.Reconcile(ctx)
	result.DryRun = options.DryRun

	event := logger.Info()
	if err != nil {
		event = logger.Warn().Err(err)
	}
	event.Str("pass_id", result.PassID).
		Bool("dry_run", result.DryRun).
		Dur("duration", result.Metadata.Duration).
		Msg(result.Summary())

	if result.IsSoftFailure() {
		logger.Warn().Str("pass_id", result.PassID).Int("orders", result.OrdersSeen).
			Msg("Orders were listed but none were inserted, patched or skipped")
	}

	c.hooks.triggerPassCompleted(result)
	return result, err
}

func noSleep(context.Context, time.Duration) error { return nil }
