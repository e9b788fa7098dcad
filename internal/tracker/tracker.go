// internal/tracker/tracker.go
//
// Tracker creation files reviewed issues through the GitHub CLI.

package tracker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kingrea/standup-issues/internal/protocol"
)

// ErrNoRepo reports a create call without a target repository.
var ErrNoRepo = errors.New("tracker: repository is required")

// Options apply to every issue of a batch.
type Options struct {
	// Repo is the owner/name repository.
	Repo string
	// Project is a project board title; empty skips it.
	Project string
}

// Creator files one issue and returns its URL.
type Creator interface {
	Create(ctx context.Context, issue protocol.FinalIssue, opts Options) (string, error)
}

// CommandRunner executes an external program and returns its stdout and stderr.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)

// GH creates issues with `gh issue create`.
type GH struct {
	// Program defaults to "gh".
	Program string
	run     CommandRunner
}

// NewGH returns a GH creator. A nil runner executes the real program.
func NewGH(runner CommandRunner) *GH {
	if runner == nil {
		runner = defaultCommandRunner
	}
	return &GH{Program: "gh", run: runner}
}

func (g *GH) Create(ctx context.Context, issue protocol.FinalIssue, opts Options) (string, error) {
	if strings.TrimSpace(opts.Repo) == "" {
		return "", ErrNoRepo
	}
	program := g.Program
	if program == "" {
		program = "gh"
	}
	stdout, stderr, err := g.run(ctx, program, createArgs(issue, opts)...)
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return "", fmt.Errorf("tracker: create %q: %w: %s", issue.Title, err, msg)
		}
		return "", fmt.Errorf("tracker: create %q: %w", issue.Title, err)
	}
	url := lastLine(string(stdout))
	if url == "" {
		return "", fmt.Errorf("tracker: create %q: gh printed no issue URL", issue.Title)
	}
	return url, nil
}

func createArgs(issue protocol.FinalIssue, opts Options) []string {
	args := []string{
		"issue", "create",
		"--repo", strings.TrimSpace(opts.Repo),
		"--title", issue.Title,
		"--body", issue.Body,
	}
	for _, assignee := range issue.Assignees {
		args = append(args, "--assignee", assignee)
	}
	for _, label := range issue.Labels {
		args = append(args, "--label", label)
	}
	if project := strings.TrimSpace(opts.Project); project != "" {
		args = append(args, "--project", project)
	}
	return args
}

// Created pairs an issue with the URL the tracker assigned to it.
type Created struct {
	Issue protocol.FinalIssue
	URL   string
}

// CreateAll files issues in order. A failed issue does not stop the batch;
// its error is collected and returned joined with the others. Cancellation
// stops the batch.
func CreateAll(ctx context.Context, creator Creator, issues []protocol.FinalIssue, opts Options, onCreated func(Created)) ([]Created, error) {
	created := make([]Created, 0, len(issues))
	var errs []error
	for _, issue := range issues {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("tracker: batch interrupted: %w", err))
			break
		}
		url, err := creator.Create(ctx, issue, opts)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		entry := Created{Issue: issue, URL: url}
		created = append(created, entry)
		if onCreated != nil {
			onCreated(entry)
		}
	}
	return created, errors.Join(errs...)
}

func lastLine(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
