package ordersync

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/agentstation/ordersync/pkg/constants"
	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ AutoSyncer = (*client)(nil)

// AutoSyncer provides controls for the background sync loop.
type AutoSyncer interface {
	// AutoSyncOn starts a pass every interval, skipping the quiet window
	AutoSyncOn() error

	// AutoSyncOff stops the loop; a pass already running finishes its current order
	AutoSyncOff() error
}

// AutoSyncOn starts the background sync loop.
func (c *client) AutoSyncOn() error {
	if c.options.autoSyncInterval <= 0 {
		return &errors.ValidationError{
			Field:   "autoSyncInterval",
			Value:   c.options.autoSyncInterval,
			Message: "sync interval must be positive",
		}
	}

	// Stop any existing loop to prevent resource leaks
	if err := c.AutoSyncOff(); err != nil {
		return err
	}

	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	// Recreate stopCh since it was closed in AutoSyncOff
	c.stopCh = make(chan struct{})
	c.syncTicker = time.NewTicker(c.options.autoSyncInterval)

	ctx, cancel := context.WithCancel(context.Background())
	c.syncCancel = cancel

	go c.loop(ctx, c.syncTicker, c.stopCh)
	return nil
}

func (c *client) loop(ctx context.Context, ticker *time.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-ticker.C:
			if err := c.tick(ctx); err != nil {
				if stderrors.Is(err, context.Canceled) {
					return
				}
				logging.Error().Err(err).Msg("Auto-sync pass failed")
			}
		case <-ctx.Done():
			return
		case <-stop:
			return
		}
	}
}

// tick runs one scheduled pass. A tick that lands in the quiet window or while
// another pass is running is dropped.
func (c *client) tick(ctx context.Context) error {
	if c.options.quiet.Contains(c.options.now()) {
		logging.Debug().Str("quiet_window", c.options.quiet.String()).Msg("Auto-sync tick inside quiet window")
		return nil
	}
	if !c.passMu.TryLock() {
		logging.Debug().Err(errors.ErrPassInProgress).Msg("Auto-sync tick dropped")
		return nil
	}
	defer c.passMu.Unlock()

	_, err := c.runPass(ctx, &SyncOptions{Timeout: constants.SyncTimeout})
	return err
}

// AutoSyncOff stops the background sync loop.
func (c *client) AutoSyncOff() error {
	c.autoMu.Lock()
	defer c.autoMu.Unlock()

	if c.syncTicker != nil {
		c.syncTicker.Stop()
		c.syncTicker = nil
	}
	if c.syncCancel != nil {
		c.syncCancel()
		c.syncCancel = nil
	}
	select {
	case <-c.stopCh:
		// Already closed
	default:
		close(c.stopCh)
	}
	return nil
}
