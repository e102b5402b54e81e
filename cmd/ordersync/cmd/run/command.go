// Package run provides the run command implementation.
package run

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/ordersync/cmd/application"
	"github.com/agentstation/ordersync/pkg/constants"
	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/reconciler"
)

// Flags holds the run command flags.
type Flags struct {
	MetricsAddr string
}

// NewCommand creates the run command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "run",
		GroupID: "core",
		Short:   "Reconcile continuously until interrupted",
		Args:    cobra.NoArgs,
		Long: `Run performs a pass immediately and then one every sync_interval, skipping
passes that fall inside the quiet window. A pass interrupted by a signal stops
between orders.

With --metrics-addr (or the metrics_addr config key) Prometheus metrics are
served at /metrics.`,
		Example: `  ordersync run
  ordersync run --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd.Context(), app, flags)
		},
	}

	cmd.Flags().StringVar(&flags.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	return cmd
}

// Execute runs passes until ctx is canceled.
func Execute(ctx context.Context, app application.Application, flags *Flags) error {
	logger := app.Logger()

	client, err := app.Client(ctx)
	if err != nil {
		return err
	}

	m := app.Metrics()
	if m != nil {
		client.OnPassCompleted(func(result *reconciler.Result) {
			if !result.DryRun {
				m.RecordPass(result)
			}
		})
	}

	addr := flags.MetricsAddr
	if addr == "" {
		addr = app.MetricsAddr()
	}
	if addr != "" && m != nil {
		srv := &http.Server{Addr: addr, Handler: newMux(m.Handler()), ReadHeaderTimeout: 10 * time.Second}
		go func() {
			logger.Info().Str("addr", addr).Msg("Serving metrics")
			if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("Metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if _, err := client.Sync(ctx); err != nil {
		switch {
		case stderrors.Is(err, errors.ErrQuietWindow):
			logger.Info().Msg("Inside quiet window, waiting for the next interval")
		case ctx.Err() != nil:
			return nil
		default:
			logger.Error().Err(err).Msg("Initial pass failed")
		}
	}

	if err := client.AutoSyncOn(); err != nil {
		return err
	}
	logger.Info().Dur("interval", app.SyncInterval()).Msg("Auto-sync started")

	<-ctx.Done()
	logger.Info().Msg("Shutting down")
	return client.AutoSyncOff()
}

func newMux(metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
