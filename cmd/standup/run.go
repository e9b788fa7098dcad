package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/standup-issues/internal/editor"
	"github.com/kingrea/standup-issues/internal/extract"
	"github.com/kingrea/standup-issues/internal/history"
	"github.com/kingrea/standup-issues/internal/notify"
	"github.com/kingrea/standup-issues/internal/pipeline"
	"github.com/kingrea/standup-issues/internal/protocol"
	"github.com/kingrea/standup-issues/internal/tracker"
	"github.com/kingrea/standup-issues/internal/transcript"
	"github.com/kingrea/standup-issues/internal/tui"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Create issues from a stand-up transcript",
		Long: `Read a transcript, draft tasks with the configured model, review them in
your editor and create the surviving ones in the tracker.

Examples:
  cat standup.txt | standup run --repo owner/repository
  standup run --input standup.txt --project "Sprint 12"`,
		Args: cobra.NoArgs,
		RunE: runRun,
	}
	cmd.Flags().String("repo", "", "Tracker repository (owner/name); overrides config")
	cmd.Flags().String("project", "", "Project board added to every issue; overrides config")
	cmd.Flags().StringP("input", "i", "", "Transcript file ('-' for stdin; default: stdin)")
	cmd.Flags().String("locale", "", "Document and prompt language: en or ja")
	cmd.Flags().String("editor", "", "Editor command line; overrides config, $VISUAL and $EDITOR")
	cmd.Flags().String("slack-incoming-webhook", "", "Slack webhook for the minutes; overrides config")
	cmd.Flags().Bool("no-notify", false, "Do not post the minutes")
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation screen")
	cmd.Flags().Bool("dry-run", false, "Review only; do not create issues")
	return cmd
}

func runRun(cmd *cobra.Command, _ []string) error {
	proj, err := loadProject(cmd)
	if err != nil {
		return err
	}
	cfg := proj.cfg
	flags := cmd.Flags()

	opts := pipeline.Options{
		Repo:    cfg.Project.Repo,
		Project: cfg.Project.Project,
		Locale:  protocol.ParseLocale(cfg.Project.Locale),
	}
	if repo, _ := flags.GetString("repo"); strings.TrimSpace(repo) != "" {
		opts.Repo = strings.TrimSpace(repo)
	}
	if project, _ := flags.GetString("project"); strings.TrimSpace(project) != "" {
		opts.Project = strings.TrimSpace(project)
	}
	if locale, _ := flags.GetString("locale"); strings.TrimSpace(locale) != "" {
		opts.Locale = protocol.ParseLocale(locale)
	}
	opts.DryRun, _ = flags.GetBool("dry-run")

	instructions, err := extract.LoadInstructions(cfg.InstructionsPath())
	if err != nil {
		return err
	}
	llm := extract.New(
		extract.NewHTTPClient(cfg.Project.LLM, cfg.APIKey()),
		extract.WithLocale(opts.Locale),
		extract.WithInstructions(instructions),
	)

	tty, closeTTY, err := controllingTerminal()
	if err != nil {
		return err
	}
	defer closeTTY()

	editorLine := cfg.Project.Editor
	if override, _ := flags.GetString("editor"); strings.TrimSpace(override) != "" {
		editorLine = override
	}
	ed := editor.FromCommandLine(editor.Resolve(editorLine))
	ed.Stdin = tty

	var reviewer tui.Reviewer = tui.Terminal{Input: tty, Output: os.Stdout, Target: target(opts), Logbook: proj.log}
	if yes, _ := flags.GetBool("yes"); yes {
		reviewer = tui.AutoApprove{}
	} else if !stdoutIsTerminal() {
		return fmt.Errorf("the review screen needs a terminal; pass --yes to skip it")
	}

	input, _ := flags.GetString("input")
	p := &pipeline.Pipeline{
		Source:    transcript.Open(input),
		Extractor: llm,
		Editor:    ed,
		Reviewer:  reviewer,
		Creator:   tracker.NewGH(nil),
		Logbook:   proj.log,
		Out:       cmd.OutOrStdout(),
	}

	webhook := cfg.Project.Slack.WebhookURL
	if override, _ := flags.GetString("slack-incoming-webhook"); strings.TrimSpace(override) != "" {
		webhook = override
	}
	if noNotify, _ := flags.GetBool("no-notify"); !noNotify && strings.TrimSpace(webhook) != "" {
		p.Notifier = notify.NewSlack(webhook, notify.WithLocale(opts.Locale))
	}

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		proj.log.Warn("history unavailable: %v", err)
	} else {
		defer store.Close()
		p.Recorder = store
	}

	report, err := p.Run(cmd.Context(), opts)
	if report.RunID != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Run %s recorded.\n", report.RunID)
	}
	return err
}

func target(opts pipeline.Options) string {
	if opts.Project == "" {
		return opts.Repo
	}
	return opts.Repo + " · " + opts.Project
}
