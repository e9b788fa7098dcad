// internal/editor/editor.go
//
// The editor round-trip hands a document to the user's text editor and reads
// it back. The temp file exists only for the duration of Edit: it is removed
// when the editor exits, when it fails to start, and when the context is
// cancelled (Ctrl-C in the calling process).

package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultProgram is used when neither the config nor the environment names an editor.
const DefaultProgram = "vi"

// ErrLaunch reports that the editor could not be started or exited abnormally.
var ErrLaunch = errors.New("editor: launch failed")

// Editor lets a human revise a document.
type Editor interface {
	Edit(ctx context.Context, document string) (string, error)
}

// Command runs an external editor program on a temp file.
type Command struct {
	Program string
	Args    []string
	// Suffix is appended to the temp file name so editors pick a file type.
	Suffix string
	// Dir holds the temp file; empty means os.TempDir.
	Dir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Resolve picks the editor command line: the configured value, then $VISUAL,
// then $EDITOR, then DefaultProgram.
func Resolve(configured string) string {
	for _, candidate := range []string{configured, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return DefaultProgram
}

// FromCommandLine builds a Command attached to the current terminal. Extra
// words in commandLine ("code --wait") become leading arguments.
func FromCommandLine(commandLine string) *Command {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		fields = []string{DefaultProgram}
	}
	return &Command{
		Program: fields[0],
		Args:    fields[1:],
		Suffix:  ".md",
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Edit writes document to a temp file, runs the editor on it, waits for the
// editor to exit and returns the file's new contents.
func (c *Command) Edit(ctx context.Context, document string) (string, error) {
	if c == nil || strings.TrimSpace(c.Program) == "" {
		return "", fmt.Errorf("%w: no editor program configured", ErrLaunch)
	}
	file, err := os.CreateTemp(c.Dir, "standup-*"+c.Suffix)
	if err != nil {
		return "", fmt.Errorf("editor: create temp file: %w", err)
	}
	path := file.Name()
	defer os.Remove(path)

	if _, err := file.WriteString(document); err != nil {
		file.Close()
		return "", fmt.Errorf("editor: write temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("editor: close temp file: %w", err)
	}

	args := append(append([]string{}, c.Args...), path)
	cmd := exec.CommandContext(ctx, c.Program, args...)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	cmd.WaitDelay = time.Second
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: %s interrupted: %w", ErrLaunch, c.Program, ctxErr)
		}
		return "", fmt.Errorf("%w: %s: %v", ErrLaunch, c.Program, err)
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("editor: read edited file: %w", err)
	}
	return string(edited), nil
}
