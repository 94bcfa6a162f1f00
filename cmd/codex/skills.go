package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sota-codex/codex/internal/corpus"
	"github.com/sota-codex/codex/internal/document"
	"github.com/sota-codex/codex/internal/skills"
)

func newSkillsCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Inspect the skill registry",
	}
	cmd.AddCommand(newSkillsListCmd(state), newSkillsShowCmd(state), newSkillsMatchCmd(state))
	return cmd
}

func loadRegistry(state *cliState) (*corpus.Index, *skills.Registry, error) {
	idx, err := corpus.Scan(state.cfg)
	if err != nil {
		return nil, nil, err
	}
	reg, err := skills.FromIndex(idx)
	if err != nil {
		return nil, nil, err
	}
	return idx, reg, nil
}

func newSkillsListCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every registered skill",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, reg, err := loadRegistry(state)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if reg.Len() == 0 {
				fmt.Fprintln(out, "No skills registered. Run `codex init` to install the starters.")
				return nil
			}
			for _, slug := range reg.Slugs() {
				def, _ := reg.Lookup(slug)
				fmt.Fprintf(out, "%-24s %s\n", slug, def.Meta.Description)
			}
			return nil
		},
	}
}

func newSkillsShowCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "show <slug>",
		Short: "Show one skill with its triggers and resources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, reg, err := loadRegistry(state)
			if err != nil {
				return err
			}
			def, ok := reg.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown skill %q", args[0])
			}
			entry, _ := idx.Skill(def.Slug)
			doc, err := document.NewStore(state.cfg.ProjectDir).Load(def.Path, document.KindSkill)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:        %s\n", def.Meta.Name)
			fmt.Fprintf(out, "Description: %s\n", def.Meta.Description)
			fmt.Fprintf(out, "Path:        %s\n", entry.Rel)
			if len(def.Meta.Triggers) > 0 {
				fmt.Fprintf(out, "Triggers:    %s\n", strings.Join(def.Meta.Triggers, ", "))
			}
			if len(def.Meta.Tools) > 0 {
				fmt.Fprintf(out, "Tools:       %s\n", strings.Join(def.Meta.Tools, ", "))
			}
			if scripts := def.Resources.Scripts; len(scripts) > 0 {
				fmt.Fprintf(out, "Scripts:     %s\n", strings.Join(scripts, ", "))
			}
			fmt.Fprintf(out, "\n%s\n", strings.TrimSpace(string(doc.Body)))
			return nil
		},
	}
}

func newSkillsMatchCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "match <task>",
		Short: "Show which skills would activate for a task description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, err := loadRegistry(state)
			if err != nil {
				return err
			}
			task := strings.Join(args, " ")
			matches := reg.Match(task, state.cfg.FuzzyThreshold())
			out := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintln(out, "No skills activate for that task.")
				return nil
			}
			for _, match := range matches {
				fmt.Fprintf(out, "%-24s score %3d via %q\n", match.Definition.Slug, match.Score, match.Trigger)
			}
			return nil
		},
	}
}
