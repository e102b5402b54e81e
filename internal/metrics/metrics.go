// Package metrics exposes reconciliation counters in Prometheus format.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentstation/ordersync/pkg/reconciler"
)

const namespace = "ordersync"

// Metrics holds the collectors for one process. Each instance owns its registry.
type Metrics struct {
	registry *prometheus.Registry

	passes       *prometheus.CounterVec
	ordersSeen   prometheus.Counter
	orders       *prometheus.CounterVec
	rows         prometheus.Counter
	cells        *prometheus.CounterVec
	failedWrites prometheus.Counter
	sourceErrors prometheus.Counter
	duration     prometheus.Histogram
	nextSerial   prometheus.Gauge
	lastSuccess  prometheus.Gauge
}

var _ reconciler.Observer = (*Metrics)(nil)

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Reconciliation passes by outcome",
		}, []string{"outcome"}),
		ordersSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_seen_total",
			Help:      "Orders listed by the source",
		}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Orders by classification",
		}, []string{"action"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_inserted_total",
			Help:      "Rows written for new orders",
		}),
		cells: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_patched_total",
			Help:      "Cells overwritten on known orders",
		}, []string{"column", "reason"}),
		failedWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_writes_total",
			Help:      "Row store writes that failed",
		}),
		sourceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_errors_total",
			Help:      "Order source calls that failed",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Wall time of a reconciliation pass",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		nextSerial: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "next_serial",
			Help:      "Serial number the next new order would receive",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last pass without errors",
		}),
	}

	reg.MustRegister(m.passes, m.ordersSeen, m.orders, m.rows, m.cells,
		m.failedWrites, m.sourceErrors, m.duration, m.nextSerial, m.lastSuccess)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RowInserted implements reconciler.Observer.
func (m *Metrics) RowInserted(_ context.Context, _ reconciler.InsertedRow) {
	m.rows.Inc()
}

// CellPatched implements reconciler.Observer.
func (m *Metrics) CellPatched(_ context.Context, patch reconciler.CellPatch) {
	m.cells.WithLabelValues(string(patch.Column), string(patch.Reason)).Inc()
}

// RecordPass folds a finished pass into the order, error and timing collectors.
// Row and cell counts arrive through the Observer methods instead.
func (m *Metrics) RecordPass(result *reconciler.Result) {
	if result == nil {
		return
	}

	m.passes.WithLabelValues(Outcome(result)).Inc()
	m.ordersSeen.Add(float64(result.OrdersSeen))
	m.orders.WithLabelValues("inserted").Add(float64(result.OrdersInserted))
	m.orders.WithLabelValues("patched").Add(float64(result.OrdersPatched))
	m.orders.WithLabelValues("skipped").Add(float64(result.Skipped))
	m.orders.WithLabelValues("failed").Add(float64(result.OrdersFailed))
	m.orders.WithLabelValues("invalid").Add(float64(result.Invalid))
	m.failedWrites.Add(float64(result.FailedWrites))
	m.sourceErrors.Add(float64(result.SourceErrors))
	m.duration.Observe(result.Metadata.Duration.Seconds())
	m.nextSerial.Set(float64(result.Metadata.NextSerial))

	if result.IsSuccess() && !result.DryRun {
		m.lastSuccess.Set(float64(result.Metadata.EndTime.Unix()))
	}
}

// Outcome labels a pass: canceled, failed, soft_failure or ok.
func Outcome(result *reconciler.Result) string {
	switch {
	case result.Canceled:
		return "canceled"
	case !result.IsSuccess():
		return "failed"
	case result.IsSoftFailure():
		return "soft_failure"
	default:
		return "ok"
	}
}
