// codex manages an instruction-document corpus: AGENTS.md chains, SKILL.md
// bundles, blueprint templates, and review checklists, with linting and
// context composition on top.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sota-codex/codex/internal/config"
	"github.com/sota-codex/codex/internal/logging"
)

var version = "dev"

// cliState carries everything the subcommands share.
type cliState struct {
	projectDir string
	verbose    bool

	cfg     *config.Config
	logger  *zap.Logger
	cleanup func()
}

func main() {
	state := &cliState{}
	root := newRootCmd(state)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(state *cliState) *cobra.Command {
	root := &cobra.Command{
		Use:          "codex",
		Short:        "Manage the instruction documents AI coding agents read",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Environment overrides may live in a project .env file.
			_ = godotenv.Load()

			if state.projectDir == "" {
				dir, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("resolve working directory: %w", err)
				}
				state.projectDir = dir
			}
			// init runs before the .codex directory exists.
			if cmd.Name() == "init" {
				return nil
			}
			cfg, err := config.NewConfig(state.projectDir)
			if err != nil {
				return err
			}
			state.cfg = cfg
			logger, cleanup, err := logging.New(cfg.LogsDir(), state.verbose)
			if err != nil {
				return err
			}
			state.logger = logger
			state.cleanup = cleanup
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if state.cleanup != nil {
				state.cleanup()
			}
		},
	}

	root.PersistentFlags().StringVarP(&state.projectDir, "dir", "C", "", "project directory (default: working directory)")
	root.PersistentFlags().BoolVarP(&state.verbose, "verbose", "v", false, "mirror logs to stderr")

	root.AddCommand(
		newInitCmd(state),
		newLintCmd(state),
		newSkillsCmd(state),
		newBlueprintCmd(state),
		newComposeCmd(state),
		newReviewCmd(state),
		newSessionsCmd(state),
		newServeCmd(state),
		newTUICmd(state),
	)
	return root
}
