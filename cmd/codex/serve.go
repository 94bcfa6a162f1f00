package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sota-codex/codex/internal/server"
)

func newServeCmd(state *cliState) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the corpus API for editor integrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				state.cfg.Project.Server.Addr = addr
			}
			srv, err := server.New(state.cfg, state.logger)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default: configured server.addr)")
	return cmd
}
