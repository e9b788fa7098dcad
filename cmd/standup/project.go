package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kingrea/standup-issues/internal/config"
	"github.com/kingrea/standup-issues/internal/logbook"
)

// project bundles the loaded configuration and the run journal.
type project struct {
	cfg *config.Config
	log *logbook.Logbook
}

func projectDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if strings.TrimSpace(dir) == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		dir = cwd
	}
	return filepath.Abs(dir)
}

// loadProject creates .standup/ when missing and loads its config.
func loadProject(cmd *cobra.Command) (*project, error) {
	dir, err := projectDir(cmd)
	if err != nil {
		return nil, err
	}
	if err := config.InitDir(dir); err != nil {
		return nil, fmt.Errorf("initialize %s: %w", config.StandupDir, err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	lb, err := logbook.New(cfg.LogPath())
	if err != nil {
		return nil, err
	}
	return &project{cfg: cfg, log: lb}, nil
}

// controllingTerminal returns the terminal for interactive steps. When stdin
// carried the transcript, the editor and the review screen need /dev/tty.
func controllingTerminal() (*os.File, func(), error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return os.Stdin, func() {}, nil
	}
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, func() {}, fmt.Errorf("no terminal available for the editor: %w", err)
	}
	return tty, func() { tty.Close() }, nil
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
