package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/buyside/internal/session"
	"github.com/JonMunkholm/buyside/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the search web UI and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		slog.Info("configuration loaded",
			"addr", cfg.Server.Addr(),
			"rate_limit_enabled", cfg.Rate.Enabled,
			"summary_enabled", a.service.SummaryEnabled(),
			"summary_max_concurrent", cfg.Summary.MaxConcurrent,
		)

		// Background jobs stop with ctx
		sessions := session.NewStore(cfg.Session.TTL, a.service.NewTagLog)
		go sessions.Run(ctx, cfg.Session.SweepInterval)

		server := web.NewServer(ctx, cfg, a.service, sessions)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.Server.Addr())
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for in-flight summaries to complete (with timeout)
		if status := a.service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for summaries to complete", "active", status.Active)
			if err := a.service.Drain(shutdownCtx); err != nil {
				slog.Warn("summaries did not complete in time", "error", err)
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
			return err
		}
		slog.Info("server stopped")
		return nil
	},
}
