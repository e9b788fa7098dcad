// internal/transcript/transcript.go
//
// Transcripts arrive as plain text, piped on stdin or read from a file.

package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	// ErrEmpty reports a transcript with no visible text.
	ErrEmpty = errors.New("transcript: input is empty")
	// ErrNoInput reports that stdin is a terminal and no file was given.
	ErrNoInput = errors.New("transcript: no input; pipe a transcript on stdin or pass --input")
)

// Source yields the text of one meeting.
type Source interface {
	Read(ctx context.Context) (string, error)
}

// Reader reads a transcript from an io.Reader.
type Reader struct {
	R io.Reader
	// Interactive reports whether R is a terminal; such input is refused
	// rather than waiting for the user to type a whole meeting.
	Interactive bool
}

func (r Reader) Read(ctx context.Context) (string, error) {
	if r.Interactive {
		return "", ErrNoInput
	}
	if r.R == nil {
		return "", ErrNoInput
	}
	done := make(chan struct{})
	var (
		data []byte
		err  error
	)
	go func() {
		defer close(done)
		data, err = io.ReadAll(r.R)
	}()
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("transcript: read: %w", ctx.Err())
	case <-done:
	}
	if err != nil {
		return "", fmt.Errorf("transcript: read: %w", err)
	}
	return nonEmpty(string(data))
}

// File reads a transcript from a path.
type File struct {
	Path string
}

func (f File) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("transcript: read: %w", err)
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("transcript: read %s: %w", f.Path, err)
	}
	return nonEmpty(string(data))
}

// Open picks the transcript source: the file at path when set ("-" means
// stdin), otherwise stdin.
func Open(path string) Source {
	path = strings.TrimSpace(path)
	if path != "" && path != "-" {
		return File{Path: path}
	}
	return Reader{R: os.Stdin, Interactive: path == "" && term.IsTerminal(int(os.Stdin.Fd()))}
}

func nonEmpty(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmpty
	}
	return text, nil
}
