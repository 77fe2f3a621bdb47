package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"

	"github.com/meikuraledutech/chainchart/internal/ui"
	"github.com/meikuraledutech/chainchart/server"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the project and contract HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			srv := server.New(server.Config{
				Store:        store,
				Compiler:     a.backend(),
				Logger:       a.logger,
				ReadTimeout:  a.cfg.Server.ReadTimeout.Duration,
				WriteTimeout: a.cfg.Server.WriteTimeout.Duration,
				BodyLimit:    a.cfg.Server.BodyLimit,
			})

			out := cmd.OutOrStdout()
			ui.Banner(out, "api")
			fmt.Fprintf(out, "  %s %s\n", ui.Subtle.Sprint("listen  "), a.cfg.Server.Addr)
			fmt.Fprintf(out, "  %s %s\n", ui.Subtle.Sprint("store   "), a.cfg.Database.Driver)
			fmt.Fprintf(out, "  %s %s\n\n", ui.Subtle.Sprint("backend "), a.cfg.Backend.URL)

			errc := make(chan error, 1)
			go func() {
				errc <- srv.Listen(a.cfg.Server.Addr, fiber.ListenConfig{DisableStartupMessage: true})
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
