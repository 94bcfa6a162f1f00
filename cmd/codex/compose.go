package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sota-codex/codex/internal/compose"
	"github.com/sota-codex/codex/internal/session"
)

func newComposeCmd(state *cliState) *cobra.Command {
	var (
		path   string
		format string
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "compose <task>",
		Short: "Assemble the instruction context for a task",
		Long: "Compose collects the AGENTS.md chain governing the target path and " +
			"every skill whose triggers activate for the task, in the order an " +
			"agent should read them.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, reg, err := loadRegistry(state)
			if err != nil {
				return err
			}
			task := strings.Join(args, " ")
			builder := compose.NewBuilder(state.cfg, idx, reg)
			ctx, err := builder.Build(task, path)
			if err != nil {
				return err
			}
			state.logger.Info("composed context",
				zap.String("task", task),
				zap.Int("sections", len(ctx.Sections)),
			)

			switch format {
			case "json":
				data, err := ctx.JSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case "markdown":
				fmt.Fprint(cmd.OutOrStdout(), ctx.Markdown())
			default:
				return fmt.Errorf("unknown format %q", format)
			}

			if save {
				store := session.NewStore(state.cfg.SessionsDir())
				record, err := store.Save(session.Record{
					Kind:        session.KindCompose,
					Task:        task,
					TargetPath:  path,
					Documents:   ctx.Sources(),
					ContextSize: ctx.Size(),
				})
				if err != nil {
					return err
				}
				if _, err := store.Prune(state.cfg.SessionRetention()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved session %s\n", record.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "target path whose AGENTS.md chain applies")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format: markdown or json")
	cmd.Flags().BoolVar(&save, "save", false, "record this context as a session")
	return cmd
}
