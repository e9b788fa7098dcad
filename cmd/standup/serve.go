package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kingrea/standup-issues/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render and parse endpoints over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			proj, err := loadProject(cmd)
			if err != nil {
				return err
			}
			settings := server.SettingsFromConfig(proj.cfg)
			if cmd.Flags().Changed("port") {
				settings.Port, _ = cmd.Flags().GetInt("port")
			}
			srv := server.New(settings, server.WithLogger(proj.log))
			ctx := cmd.Context()
			if err := srv.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s (Ctrl-C to stop)\n", srv.BaseURL())
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			proj.log.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().Int("port", server.DefaultPort, "TCP port; overrides config")
	return cmd
}
