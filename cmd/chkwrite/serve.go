package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cgast/chkwrite/internal/rpc"
	"github.com/cgast/chkwrite/internal/server"
	"github.com/cgast/chkwrite/internal/session"
	"github.com/cgast/chkwrite/pkg/events"
)

func newServeCmd(g *globals) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lessons over HTTP (JSON-RPC on POST /rpc)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = g.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, g, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}

func runServe(ctx context.Context, g *globals, addr string) error {
	a, err := newApp(g)
	if err != nil {
		return err
	}
	store, err := openStore(g.cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	mgr := session.NewManager(a.engine, store, g.logger)
	srv := server.New(mgr, a.bus, rpc.NewHandler(mgr, a.bus, g.logger), g.logger)

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		return srv.Run(ctx, addr)
	})
	grp.Go(func() error {
		logEvents(ctx, a.bus, g.logger)
		return nil
	})
	return grp.Wait()
}

// logEvents writes every lesson event to the debug log until ctx ends.
func logEvents(ctx context.Context, bus events.EventBus, logger *zap.Logger) {
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			logger.Debug("lesson event",
				zap.String("type", string(ev.Type)),
				zap.String("session_id", ev.SessionID),
				zap.String("phase", ev.Phase),
				zap.Int("step", ev.StepIndex),
			)
		}
	}
}
