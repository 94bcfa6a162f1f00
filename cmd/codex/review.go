package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sota-codex/codex/internal/corpus"
	"github.com/sota-codex/codex/internal/document"
	"github.com/sota-codex/codex/internal/lint"
	"github.com/sota-codex/codex/internal/review"
	"github.com/sota-codex/codex/internal/session"
)

func newReviewCmd(state *cliState) *cobra.Command {
	var (
		checklistName string
		format        string
		save          bool
	)
	cmd := &cobra.Command{
		Use:   "review [path]",
		Short: "Run a review checklist, auto-checking the lint-backed items",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			idx, err := corpus.Scan(state.cfg)
			if err != nil {
				return err
			}
			checklist, err := loadChecklist(state, idx, checklistName)
			if err != nil {
				return err
			}
			runner, err := lint.NewRunner(state.cfg)
			if err != nil {
				return err
			}
			findings, err := runner.Lint(cmd.Context(), idx)
			if err != nil {
				return err
			}

			report := review.Evaluate(checklist, target, findings)
			state.logger.Info("review finished",
				zap.String("checklist", checklist.Name),
				zap.Int("failed", report.Failed),
			)

			switch format {
			case "json":
				data, err := report.JSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case "markdown":
				fmt.Fprint(cmd.OutOrStdout(), report.Markdown())
			default:
				return fmt.Errorf("unknown format %q", format)
			}

			if save {
				store := session.NewStore(state.cfg.SessionsDir())
				record, err := store.Save(session.Record{
					Kind:       session.KindReview,
					TargetPath: target,
					Documents:  []string{checklist.Source},
					Findings:   report.Failed,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved session %s\n", record.ID)
			}
			if !report.Clean() {
				return fmt.Errorf("%d checklist items failed", report.Failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&checklistName, "checklist", "c", review.DefaultChecklist, "checklist name to run")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format: markdown or json")
	cmd.Flags().BoolVar(&save, "save", false, "record this review as a session")
	return cmd
}

func loadChecklist(state *cliState, idx *corpus.Index, name string) (review.Checklist, error) {
	for _, entry := range idx.ByKind(document.KindChecklist) {
		if entry.Meta.Name != name {
			continue
		}
		doc, err := document.NewStore(state.cfg.ProjectDir).Load(entry.Path, document.KindChecklist)
		if err != nil {
			return review.Checklist{}, err
		}
		checklist, err := review.ParseChecklist(doc)
		if err != nil {
			return review.Checklist{}, err
		}
		checklist.Source = entry.Rel
		return checklist, nil
	}
	return review.Checklist{}, fmt.Errorf("unknown checklist %q, run `codex init` to install the default", name)
}
