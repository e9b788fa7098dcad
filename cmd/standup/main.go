// cmd/standup/main.go
//
// This is the entry point for the standup CLI.
//
// Flow of `standup run`:
// 1. Read the meeting transcript (stdin or --input)
// 2. Ask the model for minutes and draft tasks
// 3. Open the drafts in the editor as one review document
// 4. Confirm the parsed issues, create them, post the minutes

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "standup",
		Short:         "Turn stand-up transcripts into reviewed tracker issues",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringP("dir", "C", "", "Project directory holding .standup/ (default: current directory)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(initCmd())
	return rootCmd
}
