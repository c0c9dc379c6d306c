package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cgast/chkwrite/internal/rpc"
	"github.com/cgast/chkwrite/internal/session"
)

func newAgentCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "agent",
		Short: "Serve JSON-RPC 2.0 lesson methods on stdin/stdout, one message per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent(cmd, g)
		},
	}
}

func runAgent(cmd *cobra.Command, g *globals) error {
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
	handler := rpc.NewHandler(mgr, a.bus, g.logger)

	g.logger.Info("agent mode started", zap.Strings("methods", handler.Methods()))
	return handler.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
}
