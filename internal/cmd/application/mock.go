// Package application provides test doubles for the command application interface.
package application

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/ordersync"
	"github.com/agentstation/ordersync/cmd/application"
	"github.com/agentstation/ordersync/internal/cmd/output"
	"github.com/agentstation/ordersync/internal/metrics"
	"github.com/agentstation/ordersync/pkg/schema"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    ClientFunc: func(ctx context.Context) (ordersync.Client, error) {
//	        return client, nil
//	    },
//	}
//	cmd := inspect.NewCommand(mock)
type Mock struct {
	ClientFunc       func(ctx context.Context) (ordersync.Client, error)
	SchemaFunc       func() (*schema.Schema, error)
	MetricsFunc      func() *metrics.Metrics
	SyncIntervalFunc func() time.Duration
	MetricsAddrFunc  func() string
	OutputFunc       func() output.Format
	LoggerFunc       func() *zerolog.Logger
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Client returns a client using the mock function or nil.
func (m *Mock) Client(ctx context.Context) (ordersync.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(ctx)
	}
	return nil, nil
}

// Schema returns a schema using the mock function or the default layout.
func (m *Mock) Schema() (*schema.Schema, error) {
	if m.SchemaFunc != nil {
		return m.SchemaFunc()
	}
	return schema.Default(), nil
}

// Metrics returns metrics using the mock function or nil.
func (m *Mock) Metrics() *metrics.Metrics {
	if m.MetricsFunc != nil {
		return m.MetricsFunc()
	}
	return nil
}

// SyncInterval returns the interval using the mock function or one minute.
func (m *Mock) SyncInterval() time.Duration {
	if m.SyncIntervalFunc != nil {
		return m.SyncIntervalFunc()
	}
	return time.Minute
}

// MetricsAddr returns the address using the mock function or "".
func (m *Mock) MetricsAddr() string {
	if m.MetricsAddrFunc != nil {
		return m.MetricsAddrFunc()
	}
	return ""
}

// OutputFormat returns the format using the mock function or tsv.
func (m *Mock) OutputFormat() output.Format {
	if m.OutputFunc != nil {
		return m.OutputFunc()
	}
	return output.FormatTSV
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ application.Application = (*Mock)(nil)
