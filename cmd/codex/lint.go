package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sota-codex/codex/internal/corpus"
	"github.com/sota-codex/codex/internal/lint"
)

func newLintCmd(state *cliState) *cobra.Command {
	var (
		watch  bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "lint [path]",
		Short: "Check corpus documents against the enabled rules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := lint.NewRunner(state.cfg)
			if err != nil {
				return err
			}
			if watch {
				return runWatch(cmd, state, runner)
			}
			idx, err := corpus.Scan(state.cfg)
			if err != nil {
				return err
			}
			var findings []lint.Finding
			if len(args) == 1 {
				entry, ok := idx.Lookup(args[0])
				if !ok {
					return fmt.Errorf("%s is not a corpus document", args[0])
				}
				findings, err = runner.LintEntry(entry)
			} else {
				findings, err = runner.Lint(cmd.Context(), idx)
			}
			if err != nil {
				return err
			}
			state.logger.Info("lint finished",
				zap.Int("documents", len(idx.Documents())),
				zap.Int("findings", len(findings)),
			)
			if err := printFindings(cmd.OutOrStdout(), findings, format); err != nil {
				return err
			}
			if lint.HasErrors(findings) {
				return fmt.Errorf("%d findings", len(findings))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-lint documents as they change")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or json")
	return cmd
}

func runWatch(cmd *cobra.Command, state *cliState, runner *lint.Runner) error {
	out := cmd.OutOrStdout()
	watcher, err := lint.NewWatcher(state.cfg, runner, func(rel string, findings []lint.Finding) {
		if len(findings) == 0 {
			fmt.Fprintf(out, "%s: clean\n", rel)
			return
		}
		_ = printFindings(out, findings, "text")
	})
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	fmt.Fprintln(out, "Watching for changes. Ctrl-C to stop.")
	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func printFindings(out io.Writer, findings []lint.Finding, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(findings)
	case "text":
		if len(findings) == 0 {
			fmt.Fprintln(out, "No findings.")
			return nil
		}
		for _, finding := range findings {
			fmt.Fprintf(out, "%s:%d [%s] %s: %s\n",
				finding.Path, finding.Line, finding.Severity, finding.Rule, finding.Message)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
