package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sota-codex/codex/internal/blueprint"
	"github.com/sota-codex/codex/internal/config"
	"github.com/sota-codex/codex/internal/review"
	"github.com/sota-codex/codex/internal/skills"
)

func newInitCmd(state *cliState) *cobra.Command {
	var bare bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the .codex directory with starter skills, templates, and checklists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if state.projectDir == "" {
				dir, err := os.Getwd()
				if err != nil {
					return err
				}
				state.projectDir = dir
			}
			if err := config.InitCodexDir(state.projectDir); err != nil {
				return err
			}
			cfg, err := config.NewConfig(state.projectDir)
			if err != nil {
				return err
			}
			if !bare {
				if err := skills.EnsureAll(cfg.SkillsDir()); err != nil {
					return err
				}
				if err := blueprint.EnsureAll(cfg.TemplatesDir()); err != nil {
					return err
				}
				if err := review.EnsureAll(cfg.ChecklistsDir()); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", cfg.ProjectConfigPath())
			return nil
		},
	}
	cmd.Flags().BoolVar(&bare, "bare", false, "skip installing the bundled starter documents")
	return cmd
}
