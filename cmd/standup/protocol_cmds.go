package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/standup-issues/internal/protocol"
)

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [drafts-file]",
		Short: "Render draft tasks (JSON or YAML) as a review document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var drafts []protocol.DraftTask
			// JSON is a subset of YAML, so one decoder reads both.
			if err := yaml.Unmarshal(data, &drafts); err != nil {
				return fmt.Errorf("decode drafts: %w", err)
			}
			locale, _ := cmd.Flags().GetString("locale")
			opts := []protocol.RenderOption{protocol.WithLocale(protocol.ParseLocale(locale))}
			if noHeader, _ := cmd.Flags().GetBool("no-header"); noHeader {
				opts = append(opts, protocol.WithoutHeader())
			}
			_, err = io.WriteString(cmd.OutOrStdout(), protocol.Render(drafts, opts...))
			return err
		},
	}
	cmd.Flags().String("locale", "en", "Comment and heading language: en or ja")
	cmd.Flags().Bool("no-header", false, "Omit the instruction comment header")
	return cmd
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [document]",
		Short: "Parse an edited review document into issues",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			result := protocol.Parse(string(data))
			for _, diag := range result.Diagnostics {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", diag)
			}
			format, _ := cmd.Flags().GetString("format")
			switch strings.ToLower(format) {
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(result.Issues); err != nil {
					return fmt.Errorf("encode issues: %w", err)
				}
				return enc.Close()
			case "json", "":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			default:
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringP("format", "f", "json", "Output format: json or yaml")
	return cmd
}

// readInput reads the named file, or stdin when no file (or "-") is given.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return data, nil
}
