package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sota-codex/codex/internal/blueprint"
	"github.com/sota-codex/codex/internal/corpus"
	"github.com/sota-codex/codex/internal/document"
)

func newBlueprintCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blueprint",
		Short: "Work with planning templates",
	}
	cmd.AddCommand(newBlueprintListCmd(state), newBlueprintNewCmd(state))
	return cmd
}

func newBlueprintListCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available templates and their fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			idx, err := corpus.Scan(state.cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			entries := idx.ByKind(document.KindTemplate)
			if len(entries) == 0 {
				fmt.Fprintln(out, "No templates found. Run `codex init` to install the starters.")
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintf(out, "%-28s fields: %s\n", entry.Meta.Name, strings.Join(entry.Meta.Fields, ", "))
			}
			return nil
		},
	}
}

func newBlueprintNewCmd(state *cliState) *cobra.Command {
	var (
		sets   []string
		output string
	)
	cmd := &cobra.Command{
		Use:   "new [template]",
		Short: "Instantiate a template with --set field values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := blueprint.DefaultTemplate
			if len(args) == 1 {
				name = args[0]
			}
			idx, err := corpus.Scan(state.cfg)
			if err != nil {
				return err
			}
			entry, ok := findTemplate(idx, name)
			if !ok {
				return fmt.Errorf("unknown template %q", name)
			}
			store := document.NewStore(state.cfg.ProjectDir)
			doc, err := store.Load(entry.Path, document.KindTemplate)
			if err != nil {
				return err
			}
			tmpl, err := blueprint.FromDocument(doc)
			if err != nil {
				return err
			}

			values, err := parseSetFlags(sets)
			if err != nil {
				return err
			}
			if missing := tmpl.MissingFields(values); len(missing) > 0 {
				return fmt.Errorf("template %s needs --set for: %s", tmpl.Name, strings.Join(missing, ", "))
			}
			rendered, err := tmpl.Render(values)
			if err != nil {
				return err
			}
			if output == "" {
				body, err := tmpl.Instantiate(values)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(string(body)))
				return nil
			}
			rendered.Path = filepath.Join(state.cfg.ProjectDir, filepath.FromSlash(output))
			if err := store.Write(rendered); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as Field=value (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the rendered document to this path instead of stdout")
	return cmd
}

func findTemplate(idx *corpus.Index, name string) (corpus.Entry, bool) {
	for _, entry := range idx.ByKind(document.KindTemplate) {
		if entry.Meta.Name == name {
			return entry, true
		}
	}
	return corpus.Entry{}, false
}

func parseSetFlags(sets []string) (map[string]string, error) {
	values := make(map[string]string, len(sets))
	for _, set := range sets {
		key, value, found := strings.Cut(set, "=")
		if !found || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --set %q, expected Field=value", set)
		}
		values[strings.TrimSpace(key)] = value
	}
	return values, nil
}
