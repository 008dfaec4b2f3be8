package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"kargo/internal/adapters/out/postgres"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the live channel and background jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.RequireSecret(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := OpenDatabase(a.cfg, a.logger)
			if err != nil {
				return err
			}
			if migrate {
				if err := postgres.Migrate(db); err != nil {
					return err
				}
			}

			return serve(ctx, a, db)
		},
	}
	cmd.Flags().String("port", "", "HTTP port (overrides HTTP_PORT)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "migrate the schema before serving")
	_ = a.v.BindPFlag("http_port", cmd.Flags().Lookup("port"))

	return cmd
}

func serve(ctx context.Context, a *app, db *gorm.DB) error {
	root, err := NewCompositionRoot(a.cfg, db, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := root.Close(); err != nil {
			a.logger.Error("failed to close brokers", "error", err)
		}
	}()

	go root.Hub().Run(ctx)

	jm, err := root.CreateJobManager()
	if err != nil {
		return err
	}
	if err := jm.StartAll(); err != nil {
		return err
	}
	defer jm.StopAll()

	e, err := root.CreateRouter(ctx)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "port", a.cfg.HTTPPort)
		serveErr <- e.Start(fmt.Sprintf("0.0.0.0:%s", a.cfg.HTTPPort))
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
