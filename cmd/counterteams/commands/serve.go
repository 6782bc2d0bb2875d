package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/counterteams-service/internal/delivery/http/handler"
	"github.com/user/counterteams-service/internal/delivery/http/router"
	"github.com/user/counterteams-service/internal/scheduler"
)

const shutdownTimeout = 15 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the HTTP API and the background refresh scheduler.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		// --- Scheduler ---
		schedCtx, stopScheduler := context.WithCancel(ctx)
		schedDone := make(chan struct{})
		go func() {
			defer close(schedDone)
			if err := scheduler.New(a.teams, a.store, cfg.RefreshInterval()).Start(schedCtx); err != nil {
				slog.Error("Scheduler failed to start", "error", err)
			}
		}()

		// --- HTTP Server ---
		apiHandler := handler.NewHandler(a.teams, a.checks)
		server := &http.Server{
			Addr:        ":" + cfg.ServerPort,
			Handler:     router.New(apiHandler, a.bosses),
			ReadTimeout: 5 * time.Second,
			// A manual refresh renders every page synchronously.
			WriteTimeout: 10 * time.Minute,
			IdleTimeout:  120 * time.Second,
		}

		serveErr := make(chan error, 1)
		go func() {
			slog.Info("Starting server", "port", cfg.ServerPort)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		select {
		case <-ctx.Done():
			slog.Info("Shutting down")
		case err = <-serveErr:
			slog.Error("Could not listen on port", "port", cfg.ServerPort, "error", err)
		}

		stopScheduler()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			slog.Error("Server shutdown failed", "error", shutdownErr)
		}
		<-schedDone
		return err
	},
}
