package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/studyforge/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(o *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the progress API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := openRuntime(ctx, o)
			if err != nil {
				return err
			}
			defer rt.Close()

			if addr == "" {
				addr = o.cfg.Server.Addr
			}
			srv := server.New(rt.engine, server.Options{
				DefaultLearner:   o.learnerID(),
				LeaderboardLimit: o.cfg.Leaderboard.Limit,
				BodyLimit:        o.cfg.Server.BodyLimit,
				AccessLog:        cmd.ErrOrStderr(),
				Logger:           o.logger,
			})

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := srv.Listen(addr); err != nil {
					return fmt.Errorf("listen on %s: %w", addr, err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				o.logger.Info("shutting down http server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}
