package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kingrea/standup-issues/internal/history"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			proj, err := loadProject(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if logLines, _ := cmd.Flags().GetInt("log"); logLines > 0 {
				lines, total := proj.log.Tail(logLines)
				fmt.Fprintf(out, "%s (%d of %d entries)\n", proj.log.Path(), len(lines), total)
				for _, line := range lines {
					fmt.Fprintln(out, line)
				}
				return nil
			}

			store, err := history.Open(proj.cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()
			limit, _ := cmd.Flags().GetInt("limit")
			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STARTED\tREPO\tDRAFTED\tPARSED\tCREATED\tRUN")
			for _, run := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
					run.StartedAt.Local().Format("2006-01-02 15:04"), run.Repo,
					run.Drafted, run.Parsed, run.Created, run.ID)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if verbose, _ := cmd.Flags().GetBool("issues"); verbose {
				for _, run := range runs {
					for _, issue := range run.Issues {
						fmt.Fprintf(out, "%s  %s  %s\n", shortID(run.ID), issue.URL, issue.Title)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().IntP("limit", "n", 10, "Maximum runs to list")
	cmd.Flags().Bool("issues", false, "Also list the created issues")
	cmd.Flags().Bool("json", false, "Output as JSON")
	cmd.Flags().Int("log", 0, "Show the last N run journal entries instead")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
