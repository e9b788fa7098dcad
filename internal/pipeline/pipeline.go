// internal/pipeline/pipeline.go
//
// A run takes one meeting from transcript to tracker:
//
//	transcript → minutes + draft tasks → review document → editor →
//	parsed issues → confirmation → tracker → chat notification → history
//
// Nothing reaches the tracker unless the editor round-trip succeeded and the
// reviewer confirmed the batch.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kingrea/standup-issues/internal/editor"
	"github.com/kingrea/standup-issues/internal/extract"
	"github.com/kingrea/standup-issues/internal/history"
	"github.com/kingrea/standup-issues/internal/logbook"
	"github.com/kingrea/standup-issues/internal/notify"
	"github.com/kingrea/standup-issues/internal/protocol"
	"github.com/kingrea/standup-issues/internal/tracker"
	"github.com/kingrea/standup-issues/internal/transcript"
	"github.com/kingrea/standup-issues/internal/tui"
)

// Recorder stores a finished run.
type Recorder interface {
	Record(ctx context.Context, run history.Run) (string, error)
}

// Options control a single run.
type Options struct {
	Repo    string
	Project string
	Locale  protocol.Locale
	// DryRun stops after review and prints the issues instead of creating them.
	DryRun bool
}

// Pipeline holds the collaborators of a run. Notifier and Recorder are optional.
type Pipeline struct {
	Source    transcript.Source
	Extractor extract.Extractor
	Editor    editor.Editor
	Reviewer  tui.Reviewer
	Creator   tracker.Creator
	Notifier  notify.Notifier
	Recorder  Recorder

	Logbook *logbook.Logbook
	Out     io.Writer
	Clock   func() time.Time
}

// Report summarizes what a run did.
type Report struct {
	RunID       string
	Summary     string
	Drafted     int
	Issues      []protocol.FinalIssue
	Diagnostics []protocol.Diagnostic
	Created     []tracker.Created
	Cancelled   bool
}

// URLs lists the created issue URLs in creation order.
func (r Report) URLs() []string {
	urls := make([]string, 0, len(r.Created))
	for _, c := range r.Created {
		urls = append(urls, c.URL)
	}
	return urls
}

// Run executes one meeting end to end.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Report, error) {
	if err := p.validate(opts); err != nil {
		return Report{}, err
	}
	started := p.now()
	var report Report

	text, err := p.Source.Read(ctx)
	if err != nil {
		return report, err
	}
	chars := utf8.RuneCountInString(text)
	p.Logbook.Info("run started · repo %s · transcript %d chars", opts.Repo, chars)

	p.printf("Writing minutes...\n")
	summary, err := p.Extractor.Summarize(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return report, err
		}
		p.Logbook.Warn("minutes unavailable: %v", err)
		p.printf("Minutes unavailable: %v\n", err)
		summary = ""
	}
	report.Summary = summary
	if summary != "" {
		p.printf("\n%s\n\n", summary)
	}

	p.printf("Extracting tasks...\n")
	drafts, err := p.Extractor.Extract(ctx, text)
	if err != nil {
		p.Logbook.Error("extraction failed: %v", err)
		return report, err
	}
	report.Drafted = len(drafts)
	p.Logbook.Info("drafted %d task(s)", len(drafts))

	if len(drafts) == 0 {
		p.printf("No tasks found.\n")
		p.finish(ctx, opts, started, chars, &report)
		return report, nil
	}

	document := protocol.Render(drafts, protocol.WithLocale(opts.Locale))
	p.printf("Opening %d task(s) in the editor...\n", len(drafts))
	edited, err := p.Editor.Edit(ctx, document)
	if err != nil {
		p.Logbook.Error("editor: %v", err)
		return report, err
	}

	result := protocol.Parse(edited)
	report.Issues = result.Issues
	report.Diagnostics = result.Diagnostics
	for _, diag := range result.Diagnostics {
		p.Logbook.Warn("%s", diag)
		p.printf("warning: %s\n", diag)
	}
	p.Logbook.Info("parsed %d issue(s) from the edited document", len(result.Issues))

	if len(result.Issues) == 0 {
		p.printf("No issues left after editing.\n")
		p.finish(ctx, opts, started, chars, &report)
		return report, nil
	}

	confirmed, err := p.Reviewer.Confirm(ctx, result.Issues)
	if err != nil {
		return report, err
	}
	if !confirmed {
		report.Cancelled = true
		p.Logbook.Info("review cancelled; no issues created")
		p.printf("Cancelled. No issues were created.\n")
		return report, nil
	}

	if opts.DryRun {
		for i, issue := range result.Issues {
			p.printf("  %d. %s\n", i+1, issue.Title)
		}
		p.printf("Dry run: %d issue(s) not created.\n", len(result.Issues))
		return report, nil
	}

	p.printf("Creating %d issue(s) in %s...\n", len(result.Issues), opts.Repo)
	created, createErr := tracker.CreateAll(ctx, p.Creator, result.Issues, tracker.Options{Repo: opts.Repo, Project: opts.Project}, func(c tracker.Created) {
		p.Logbook.Info("created %s · %s", c.URL, c.Issue.Title)
		p.printf("  %s%s\n", c.URL, describe(c.Issue, opts.Project))
	})
	report.Created = created
	if createErr != nil {
		for _, line := range strings.Split(createErr.Error(), "\n") {
			p.Logbook.Error("%s", line)
		}
		p.printf("Some issues could not be created:\n%s\n", createErr)
	}
	p.printf("Created %d of %d issue(s).\n", len(created), len(result.Issues))

	p.finish(ctx, opts, started, chars, &report)
	return report, createErr
}

// finish posts the minutes and records the run. Neither step fails the run.
func (p *Pipeline) finish(ctx context.Context, opts Options, started time.Time, transcriptLen int, report *Report) {
	if p.Notifier != nil {
		if err := p.Notifier.Post(ctx, report.Summary, report.URLs()); err != nil {
			p.Logbook.Warn("notification failed: %v", err)
			p.printf("Notification failed: %v\n", err)
		} else {
			p.Logbook.Info("posted minutes with %d issue link(s)", len(report.Created))
		}
	}
	if p.Recorder == nil {
		return
	}
	run := history.Run{
		StartedAt:       started,
		Repo:            opts.Repo,
		TranscriptChars: transcriptLen,
		Drafted:         report.Drafted,
		Parsed:          len(report.Issues),
		Created:         len(report.Created),
		Summary:         report.Summary,
	}
	for _, c := range report.Created {
		run.Issues = append(run.Issues, history.Issue{
			Title:     c.Issue.Title,
			URL:       c.URL,
			Assignees: c.Issue.Assignees,
			Labels:    c.Issue.Labels,
		})
	}
	id, err := p.Recorder.Record(ctx, run)
	if err != nil {
		p.Logbook.Warn("history: %v", err)
		return
	}
	report.RunID = id
}

func (p *Pipeline) validate(opts Options) error {
	var missing []string
	if p.Source == nil {
		missing = append(missing, "transcript source")
	}
	if p.Extractor == nil {
		missing = append(missing, "extractor")
	}
	if p.Editor == nil {
		missing = append(missing, "editor")
	}
	if p.Reviewer == nil {
		missing = append(missing, "reviewer")
	}
	if p.Creator == nil && !opts.DryRun {
		missing = append(missing, "tracker")
	}
	if len(missing) > 0 {
		return fmt.Errorf("pipeline: missing %s", strings.Join(missing, ", "))
	}
	if strings.TrimSpace(opts.Repo) == "" && !opts.DryRun {
		return errors.New("pipeline: repo is required (set repo in .standup/config.yaml or pass --repo)")
	}
	return nil
}

func (p *Pipeline) now() time.Time {
	if p.Clock == nil {
		return time.Now()
	}
	return p.Clock()
}

func (p *Pipeline) printf(format string, args ...any) {
	if p.Out == nil {
		return
	}
	fmt.Fprintf(p.Out, format, args...)
}

func describe(issue protocol.FinalIssue, project string) string {
	var b strings.Builder
	if len(issue.Assignees) > 0 {
		b.WriteString(" (assigned to @" + strings.Join(issue.Assignees, ", @") + ")")
	}
	if len(issue.Labels) > 0 {
		b.WriteString(" (labels: " + strings.Join(issue.Labels, ", ") + ")")
	}
	if project != "" {
		b.WriteString(" (project: " + project + ")")
	}
	return b.String()
}
