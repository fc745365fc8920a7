package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/bft-labs/logship"
)

func (a *app) tailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail <file>",
		Short: "Follow a file and ship every new line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTail(cmd.Context(), args[0])
		},
	}

	cmd.Flags().BoolVar(&a.cfg.FromStart, "from-start", a.cfg.FromStart, "ship the existing content before following")
	cmd.Flags().StringVar(&a.cfg.MetricsAddr, "metrics-addr", a.cfg.MetricsAddr, "address to serve Prometheus metrics on (e.g. :9102)")
	return cmd
}

func (a *app) runTail(ctx context.Context, path string) error {
	reg := prometheus.NewRegistry()

	agent, err := logship.New(logship.Config{
		Path:      path,
		FromStart: a.cfg.FromStart,
		Shipper:   a.cfg.ShipperConfig(),
	},
		logship.WithLogger(a.logger()),
		logship.WithMetrics(reg),
	)
	if err != nil {
		return fmt.Errorf("create agent: %w", err)
	}
	defer agent.Close()

	if a.cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              a.cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error().Err(err).Str("addr", a.cfg.MetricsAddr).Msg("metrics server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		a.log.Info().Str("addr", a.cfg.MetricsAddr).Msg("serving metrics")
	}

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := agent.Start(ctx); err != nil {
		return fmt.Errorf("start agent: %w", err)
	}
	a.log.Info().
		Str("file", path).
		Str("host", a.cfg.Host).
		Uint16("port", a.cfg.Port).
		Str("mode", a.cfg.TransportMode().String()).
		Msg("following")

	select {
	case <-sigCh:
		a.log.Info().Msg("received signal, stopping...")
	case <-agent.Done():
	}

	var stopErr error
	if agent.Status() == logship.StateCrashed {
		stopErr = errors.New("agent crashed")
	} else if err := agent.Stop(); err != nil && !errors.Is(err, logship.ErrNotRunning) {
		stopErr = fmt.Errorf("stop agent: %w", err)
	}

	stats := agent.Stats()
	a.log.Info().
		Uint64("batches", stats.Batches).
		Uint64("records", stats.Records).
		Uint64("bytes", stats.Bytes).
		Uint64("failures", stats.Failures).
		Uint64("truncated", stats.Truncated).
		Msg("stopped")
	return stopErr
}
