package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create .standup/ with a default config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			proj, err := loadProject(cmd)
			if err != nil {
				return err
			}
			if repo, _ := cmd.Flags().GetString("repo"); strings.TrimSpace(repo) != "" {
				if err := proj.cfg.SetRepo(repo); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config:  %s\n", proj.cfg.ProjectConfigPath())
			fmt.Fprintf(out, "Repo:    %s\n", valueOrDefault(proj.cfg.Project.Repo, "(not set)"))
			fmt.Fprintf(out, "Locale:  %s\n", proj.cfg.Project.Locale)
			fmt.Fprintf(out, "Model:   %s at %s\n", proj.cfg.Project.LLM.Model, proj.cfg.Project.LLM.BaseURL)
			fmt.Fprintf(out, "API key: %s\n", keyStatus(proj.cfg.APIKey(), proj.cfg.Project.LLM.APIKeyEnv))
			return nil
		},
	}
	cmd.Flags().String("repo", "", "Save the tracker repository (owner/name) to the config")
	return cmd
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func keyStatus(key, env string) string {
	if key == "" {
		return fmt.Sprintf("not set ($%s)", env)
	}
	return fmt.Sprintf("set ($%s)", env)
}
