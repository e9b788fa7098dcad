// internal/notify/slack.go
//
// The Slack notifier posts the meeting minutes and the links of the issues
// that were created to an incoming webhook, using Block Kit.

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kingrea/standup-issues/internal/protocol"
)

const defaultTimeout = 10 * time.Second

// ErrNoWebhook reports a Slack notifier without a webhook URL.
var ErrNoWebhook = errors.New("notify: slack webhook URL is required")

// Notifier announces the outcome of a run.
type Notifier interface {
	Post(ctx context.Context, summary string, issueURLs []string) error
}

type slackText struct {
	minutesHeader string
	issuesHeader  string
	issueLink     string
	total         string
	none          string
	footer        string
}

var slackTexts = map[protocol.Locale]slackText{
	protocol.LocaleEnglish: {
		minutesHeader: "📝 Stand-up minutes",
		issuesHeader:  "🚀 Issues created",
		issueLink:     "Issue #%s",
		total:         "📊 Created %d issues in total",
		none:          "ℹ️ No new issues were created this time",
		footer:        "🤖 Generated automatically at %s",
	},
	protocol.LocaleJapanese: {
		minutesHeader: "📝 朝会議事録",
		issuesHeader:  "🚀 作成されたIssue",
		issueLink:     "Issue #%s",
		total:         "📊 合計 %d 件のIssueを作成しました",
		none:          "ℹ️ 今回は新しいIssueは作成されませんでした",
		footer:        "🤖 %s に自動生成",
	},
}

// Slack posts to an incoming webhook.
type Slack struct {
	webhookURL string
	locale     protocol.Locale
	client     *http.Client
	clock      func() time.Time
}

// Option customizes the Slack notifier.
type Option func(*Slack)

// WithLocale selects the language of headings and footers.
func WithLocale(locale protocol.Locale) Option {
	return func(s *Slack) {
		s.locale = locale
	}
}

// WithHTTPClient overrides the default client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Slack) {
		if client != nil {
			s.client = client
		}
	}
}

// WithClock allows tests to control the footer timestamp.
func WithClock(clock func() time.Time) Option {
	return func(s *Slack) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewSlack(webhookURL string, opts ...Option) *Slack {
	s := &Slack{
		webhookURL: strings.TrimSpace(webhookURL),
		locale:     protocol.LocaleEnglish,
		client:     &http.Client{Timeout: defaultTimeout},
		clock:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Slack) Post(ctx context.Context, summary string, issueURLs []string) error {
	if s == nil || s.webhookURL == "" {
		return ErrNoWebhook
	}
	payload, err := json.Marshal(s.message(summary, issueURLs))
	if err != nil {
		return fmt.Errorf("notify: encode slack payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: post to slack: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notify: slack returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

type message struct {
	Blocks      []block `json:"blocks"`
	UnfurlLinks bool    `json:"unfurl_links"`
	UnfurlMedia bool    `json:"unfurl_media"`
}

type block struct {
	Type     string `json:"type"`
	Text     *text  `json:"text,omitempty"`
	Elements []text `json:"elements,omitempty"`
}

type text struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

func header(value string) block {
	return block{Type: "header", Text: &text{Type: "plain_text", Text: value, Emoji: true}}
}

func section(markdown string) block {
	return block{Type: "section", Text: &text{Type: "mrkdwn", Text: markdown}}
}

func contextLine(markdown string) block {
	return block{Type: "context", Elements: []text{{Type: "mrkdwn", Text: markdown}}}
}

func (s *Slack) message(summary string, issueURLs []string) message {
	words, ok := slackTexts[s.locale]
	if !ok {
		words = slackTexts[protocol.LocaleEnglish]
	}
	blocks := []block{
		header(words.minutesHeader),
		section("```" + strings.TrimSpace(summary) + "```"),
		{Type: "divider"},
	}
	if len(issueURLs) > 0 {
		lines := make([]string, 0, len(issueURLs))
		for i, url := range issueURLs {
			lines = append(lines, fmt.Sprintf("• <%s|%s>", url, fmt.Sprintf(words.issueLink, issueNumber(url, i+1))))
		}
		blocks = append(blocks,
			header(words.issuesHeader),
			section(strings.Join(lines, "\n")),
			contextLine(fmt.Sprintf(words.total, len(issueURLs))),
		)
	} else {
		blocks = append(blocks, section(words.none))
	}
	blocks = append(blocks, contextLine(fmt.Sprintf(words.footer, s.clock().Format("2006-01-02 15:04:05"))))
	return message{Blocks: blocks}
}

// issueNumber takes the last path segment of an issue URL, falling back to
// the position in the list.
func issueNumber(url string, position int) string {
	trimmed := strings.TrimRight(strings.TrimSpace(url), "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 && idx < len(trimmed)-1 {
		return trimmed[idx+1:]
	}
	return fmt.Sprint(position)
}
