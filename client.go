// Package ordersync keeps a seller's order sheet in step with the marketplace.
//
// A Client owns one order source and one row store and runs reconciliation
// passes against them: one at a time, optionally on a timer, never inside the
// configured quiet window unless forced. Hooks observe every row written.
//
// Example usage:
//
//	src, err := ordersync.OpenSource(ordersync.SourceConfig{URI: "spapi", AccessToken: token})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store, err := ordersync.OpenStore(ctx, "sqlite://orders.db", "Orders")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	client, err := ordersync.New(src, store, ordersync.WithAutoSync(false))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client.OnRowInserted(func(row reconciler.InsertedRow) {
//	    log.Printf("new row for %s", row.OrderID)
//	})
//
//	result, err := client.Sync(ctx, ordersync.SyncWithForce(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary())
package ordersync

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/index"
	"github.com/agentstation/ordersync/pkg/logging"
	"github.com/agentstation/ordersync/pkg/rowstore"
	"github.com/agentstation/ordersync/pkg/schema"
	"github.com/agentstation/ordersync/pkg/sources"
)

// Client runs reconciliation passes with automatic syncing and event hooks.
type Client interface {

	// Syncer runs passes on demand
	Syncer

	// AutoSyncer provides access to the background sync loop
	AutoSyncer

	// Hooks provides access to event callback registration
	Hooks

	// Snapshot reads the store and returns its duplicate index
	Snapshot(ctx context.Context) (*Snapshot, error)

	// Schema returns the column layout in use
	Schema() *schema.Schema
}

// Snapshot is a read-only view of the store between passes.
type Snapshot struct {
	Store      string
	Index      *index.Index
	NextSerial int
}

// client is the internal implementation of the Client interface.
type client struct {

	// options are the configured options for the client
	options *options

	source sources.Source
	store  rowstore.Store

	// passMu serializes passes against the store
	passMu sync.Mutex

	// auto sync state
	autoMu     sync.Mutex
	syncTicker *time.Ticker
	stopCh     chan struct{}
	syncCancel context.CancelFunc
	hooks      *hooks
}

// New creates a new Client over src and store.
func New(src sources.Source, store rowstore.Store, opts ...Option) (Client, error) {
	if src == nil {
		return nil, &errors.ValidationError{Field: "source", Message: "cannot be nil"}
	}
	if store == nil {
		return nil, &errors.ValidationError{Field: "store", Message: "cannot be nil"}
	}

	options, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	if err := options.config.Validate(); err != nil {
		return nil, err
	}

	c := &client{
		options: options,
		source:  src,
		store:   store,
		stopCh:  make(chan struct{}),
		hooks:   newHooks(),
	}

	logging.Debug().
		Str("source", src.ID().String()).
		Str("store", store.Name()).
		Str("layout", options.schema.Name).
		Str("quiet_window", options.quiet.String()).
		Msg("Client created")

	if options.autoSyncEnabled {
		if err := c.AutoSyncOn(); err != nil {
			return nil, errors.WrapResource("start", "auto-sync", "", err)
		}
	}

	return c, nil
}

// Schema returns the column layout in use.
func (c *client) Schema() *schema.Schema {
	return c.options.schema
}

// Snapshot reads the store and returns its duplicate index.
func (c *client) Snapshot(ctx context.Context) (*Snapshot, error) {
	c.passMu.Lock()
	defer c.passMu.Unlock()

	rows, err := c.store.ReadAll(ctx)
	if err != nil {
		return nil, errors.WrapResource("read", "store", c.store.Name(), err)
	}

	return &Snapshot{
		Store:      c.store.Name(),
		Index:      index.Build(rows, c.options.schema),
		NextSerial: index.NextSerial(rows, c.options.schema, c.options.config.SerialFloor),
	}, nil
}
