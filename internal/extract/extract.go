// internal/extract/extract.go
//
// Extraction turns a meeting transcript into draft tasks and a short set of
// minutes by prompting a chat completion model.

package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/standup-issues/internal/protocol"
)

const defaultMaxTokens = 2000

// ErrNoTaskArray reports a model answer that does not contain a JSON array.
var ErrNoTaskArray = errors.New("extract: response contains no JSON task array")

// ErrNoClient reports an LLM built without a chat client.
var ErrNoClient = errors.New("extract: no llm client configured")

// Extractor proposes tasks and minutes for a transcript.
type Extractor interface {
	Extract(ctx context.Context, transcript string) ([]protocol.DraftTask, error)
	Summarize(ctx context.Context, transcript string) (string, error)
}

// LLM implements Extractor on top of a chat Client.
type LLM struct {
	client       Client
	locale       protocol.Locale
	instructions string
	clock        func() time.Time
}

// Option customizes an LLM extractor.
type Option func(*LLM)

// WithLocale selects the prompt language.
func WithLocale(locale protocol.Locale) Option {
	return func(l *LLM) {
		l.locale = locale
	}
}

// WithInstructions appends custom instructions to every system prompt.
func WithInstructions(instructions string) Option {
	return func(l *LLM) {
		l.instructions = instructions
	}
}

// WithClock allows tests to control the time stamped into prompts.
func WithClock(clock func() time.Time) Option {
	return func(l *LLM) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// New builds an Extractor on top of a chat client. Locale defaults to English.
func New(client Client, opts ...Option) *LLM {
	l := &LLM{
		client: client,
		locale: protocol.LocaleEnglish,
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Extract asks the model for tasks. A well-formed empty array yields no
// tasks and no error; an unusable answer is an error.
func (l *LLM) Extract(ctx context.Context, transcript string) ([]protocol.DraftTask, error) {
	set := promptsFor(l.locale)
	resp, err := l.chat(ctx, set, set.extract, set.extractRequest+transcript)
	if err != nil {
		return nil, fmt.Errorf("extract: tasks: %w", err)
	}
	return parseDrafts(resp.Content)
}

// Summarize asks the model for bullet point minutes.
func (l *LLM) Summarize(ctx context.Context, transcript string) (string, error) {
	set := promptsFor(l.locale)
	resp, err := l.chat(ctx, set, set.summarize, set.summarizeRequest+transcript)
	if err != nil {
		return "", fmt.Errorf("extract: summary: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}

func (l *LLM) chat(ctx context.Context, set promptSet, base, request string) (ChatResponse, error) {
	if l == nil || l.client == nil {
		return ChatResponse{}, ErrNoClient
	}
	return l.client.Chat(ctx, ChatRequest{
		Messages: []Message{
			{Role: "system", Content: systemPrompt(set, base, l.instructions, l.clock())},
			{Role: "user", Content: request},
		},
		MaxTokens: defaultMaxTokens,
	})
}

// parseDrafts decodes the outermost JSON array in content. Models often wrap
// the array in prose or a code fence.
func parseDrafts(content string) ([]protocol.DraftTask, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end < start {
		return nil, ErrNoTaskArray
	}
	var raw []protocol.DraftTask
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoTaskArray, err)
	}
	drafts := make([]protocol.DraftTask, 0, len(raw))
	for _, task := range raw {
		task.Title = strings.TrimSpace(task.Title)
		if task.Title == "" {
			continue
		}
		task.Body = strings.TrimSpace(task.Body)
		task.Deadline = strings.TrimSpace(task.Deadline)
		task.Assignees = compact(task.Assignees)
		task.Labels = compact(task.Labels)
		drafts = append(drafts, task)
	}
	return drafts, nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
