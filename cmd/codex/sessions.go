package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sota-codex/codex/internal/session"
)

func newSessionsCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect recorded compose and review sessions",
	}
	cmd.AddCommand(newSessionsListCmd(state), newSessionsShowCmd(state), newSessionsPruneCmd(state))
	return cmd
}

func newSessionsListCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := session.NewStore(state.cfg.SessionsDir())
			records, err := store.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No sessions recorded.")
				return nil
			}
			for _, record := range records {
				summary := record.Task
				if summary == "" {
					summary = record.TargetPath
				}
				fmt.Fprintf(out, "%s  %s  %-7s  %s\n",
					record.ID, record.CreatedAt.Local().Format(time.DateTime), record.Kind, summary)
			}
			return nil
		},
	}
}

func newSessionsShowCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one session record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := session.NewStore(state.cfg.SessionsDir())
			record, err := store.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:         %s\n", record.ID)
			fmt.Fprintf(out, "Kind:       %s\n", record.Kind)
			fmt.Fprintf(out, "Created:    %s\n", record.CreatedAt.Local().Format(time.DateTime))
			if record.Task != "" {
				fmt.Fprintf(out, "Task:       %s\n", record.Task)
			}
			if record.TargetPath != "" {
				fmt.Fprintf(out, "Target:     %s\n", record.TargetPath)
			}
			if record.ContextSize > 0 {
				fmt.Fprintf(out, "Context:    %d bytes\n", record.ContextSize)
			}
			if record.Kind == session.KindReview {
				fmt.Fprintf(out, "Failed:     %d\n", record.Findings)
			}
			if len(record.Documents) > 0 {
				fmt.Fprintf(out, "Documents:\n  %s\n", strings.Join(record.Documents, "\n  "))
			}
			return nil
		},
	}
}

func newSessionsPruneCmd(state *cliState) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the most recent sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if keep == 0 {
				keep = state.cfg.SessionRetention()
			}
			store := session.NewStore(state.cfg.SessionsDir())
			removed, err := store.Prune(keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d sessions, kept up to %d.\n", removed, keep)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 0, "sessions to keep (default: configured retention)")
	return cmd
}
