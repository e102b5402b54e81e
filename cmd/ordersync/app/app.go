// Package app provides the application context and dependency management
// for the ordersync CLI: configuration, logging, and the lazily opened
// client with its order source and row store.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/ordersync"
	"github.com/agentstation/ordersync/cmd/application"
	"github.com/agentstation/ordersync/internal/cmd/output"
	"github.com/agentstation/ordersync/internal/metrics"
	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/logging"
	"github.com/agentstation/ordersync/pkg/rowstore"
	"github.com/agentstation/ordersync/pkg/schema"
)

// App represents the ordersync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config
	flags  flags

	// Logger
	logger *zerolog.Logger

	metrics *metrics.Metrics

	// Client and its store (lazy-initialized, singleton)
	mu     sync.Mutex
	client ordersync.Client
	store  rowstore.Store
}

// flags holds the persistent flag values before they are folded into Config.
type flags struct {
	configFile string
	verbose    bool
	quiet      bool
	noColor    bool
	logLevel   string
	output     string
}

var _ application.Application = (*App)(nil)

// Option configures an App.
type Option func(*App) error

// WithConfig replaces the loaded configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) error {
		if cfg == nil {
			return &errors.ValidationError{Field: "config", Message: "cannot be nil"}
		}
		a.config = cfg
		logger := NewLogger(cfg)
		a.logger = &logger
		return nil
	}
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		metrics: metrics.New(),
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Metrics returns the process metrics.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// SyncInterval is the pause between passes of the run command.
func (a *App) SyncInterval() time.Duration {
	return a.config.SyncInterval
}

// OutputFormat returns the configured output format, detecting one when unset.
func (a *App) OutputFormat() output.Format {
	return output.DetectFormat(a.config.Output)
}

// MetricsAddr is the listen address of the metrics endpoint.
func (a *App) MetricsAddr() string {
	return a.config.MetricsAddr
}

// Schema returns the configured column layout.
func (a *App) Schema() (*schema.Schema, error) {
	return schema.Resolve(a.config.Layout)
}

// Client returns the ordersync client, opening the source and store on first use.
func (a *App) Client(ctx context.Context) (ordersync.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	ctx = logging.WithLogger(ctx, a.logger)
	client, store, err := a.open(ctx)
	if err != nil {
		return nil, err
	}

	a.client = client
	a.store = store
	return client, nil
}

func (a *App) open(ctx context.Context) (ordersync.Client, rowstore.Store, error) {
	cfg, err := a.config.Reconciler()
	if err != nil {
		return nil, nil, err
	}
	layout, err := schema.Resolve(a.config.Layout)
	if err != nil {
		return nil, nil, err
	}
	quiet, err := a.config.QuietWindow()
	if err != nil {
		return nil, nil, err
	}

	src, err := ordersync.OpenSource(a.config.SourceConfig())
	if err != nil {
		return nil, nil, errors.WrapResource("open", "source", a.config.Source, err)
	}

	store, err := ordersync.OpenStore(ctx, a.config.Store, a.config.Sheet)
	if err != nil {
		return nil, nil, err
	}

	opts := []ordersync.Option{
		ordersync.WithConfig(cfg),
		ordersync.WithSchema(layout),
		ordersync.WithQuietWindow(quiet),
		ordersync.WithObserver(a.metrics),
	}
	if a.config.SyncInterval > 0 {
		opts = append(opts, ordersync.WithAutoSyncInterval(a.config.SyncInterval))
	}

	client, err := ordersync.New(src, store, opts...)
	if err != nil {
		_ = rowstore.Close(store)
		return nil, nil, errors.WrapResource("create", "client", "", err)
	}

	a.logger.Debug().
		Str("source", src.ID().String()).
		Str("store", store.Name()).
		Str("layout", layout.Name).
		Msg("Client ready")
	return client, store, nil
}

// Shutdown stops background syncing and closes the store.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client == nil {
		return nil
	}

	if err := a.client.AutoSyncOff(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to stop auto-sync")
	}

	done := make(chan error, 1)
	go func() { done <- rowstore.Close(a.store) }()

	a.client = nil
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
