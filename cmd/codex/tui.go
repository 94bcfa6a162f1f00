package main

import (
	"github.com/spf13/cobra"

	"github.com/sota-codex/codex/internal/tui"
)

func newTUICmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the corpus interactively",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return tui.Run(state.projectDir)
		},
	}
}
