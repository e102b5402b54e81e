// Package application provides the application interface for ordersync commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            client, err := app.Client(cmd.Context())
//	            if err != nil {
//	                return err
//	            }
//	            result, err := client.Sync(cmd.Context())
//	            // ... print result
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    ClientFunc: func(ctx context.Context) (ordersync.Client, error) {
//	        return ordersync.New(sources.NewStatic(orders...), memory.New())
//	    },
//	}
//	cmd := sync.NewCommand(mock)
package application

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/ordersync"
	"github.com/agentstation/ordersync/internal/cmd/output"
	"github.com/agentstation/ordersync/internal/metrics"
	"github.com/agentstation/ordersync/pkg/schema"
)

// Application provides the application interface that commands need.
// The App struct from cmd/ordersync/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns the ordersync client, opening its source and store on first use.
	Client(ctx context.Context) (ordersync.Client, error)

	// Schema returns the configured column layout without opening the store.
	Schema() (*schema.Schema, error)

	// Metrics returns the process metrics, or nil when metrics are disabled.
	Metrics() *metrics.Metrics

	// SyncInterval is the pause between passes of the run command.
	SyncInterval() time.Duration

	// MetricsAddr is the listen address of the metrics endpoint; empty disables it.
	MetricsAddr() string

	// OutputFormat returns the format for command results.
	OutputFormat() output.Format

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// Version information
	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
