package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/dannbuckley/intcode/api"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	AddrKey = "addr"

	shutdownTimeout = 5 * time.Second
)

func serveCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serves the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			addr := a.cfg.API.Addr
			if c.Flags().Changed(AddrKey) {
				var err error
				if addr, err = c.Flags().GetString(AddrKey); err != nil {
					return err
				}
			}

			srv, err := api.NewServer(api.ServerConfig{
				ListenerAddr: addr,
				Logger:       a.logger,
				CacheSize:    a.cfg.API.CacheSize,
				StepLimit:    a.cfg.API.StepLimit,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(srv.Start)
			g.Go(func() error {
				<-ctx.Done()
				a.logger.Info("shutting down", zap.String("addr", addr))
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	c.Flags().String(AddrKey, ":3000", "Listen address, overrides the config file")
	return c
}
