package tracker

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/kingrea/standup-issues/internal/protocol"
)

type recordedCall struct {
	name string
	args []string
}

func TestGHCreateBuildsArguments(t *testing.T) {
	var calls []recordedCall
	gh := NewGH(func(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
		calls = append(calls, recordedCall{name: name, args: args})
		return []byte("Creating issue in acme/app\n\nhttps://github.com/acme/app/issues/42\n"), nil, nil
	})
	issue := protocol.FinalIssue{
		Title:     "Fix login bug",
		Body:      "## Tasks\n- raise TTL",
		Assignees: []string{"alice", "bob"},
		Labels:    []string{"bug", "needs triage"},
	}
	url, err := gh.Create(context.Background(), issue, Options{Repo: "acme/app", Project: "Sprint 12"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if url != "https://github.com/acme/app/issues/42" {
		t.Fatalf("url = %q", url)
	}
	want := []string{
		"issue", "create",
		"--repo", "acme/app",
		"--title", "Fix login bug",
		"--body", "## Tasks\n- raise TTL",
		"--assignee", "alice",
		"--assignee", "bob",
		"--label", "bug",
		"--label", "needs triage",
		"--project", "Sprint 12",
	}
	if len(calls) != 1 || calls[0].name != "gh" || !slices.Equal(calls[0].args, want) {
		t.Fatalf("calls = %+v\nwant args %q", calls, want)
	}
}

func TestGHCreateOmitsOptionalFlags(t *testing.T) {
	var got []string
	gh := NewGH(func(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
		got = args
		return []byte("https://github.com/acme/app/issues/7"), nil, nil
	})
	if _, err := gh.Create(context.Background(), protocol.FinalIssue{Title: "t", Body: ""}, Options{Repo: "acme/app"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, flag := range []string{"--assignee", "--label", "--project"} {
		if slices.Contains(got, flag) {
			t.Fatalf("unexpected %s in %q", flag, got)
		}
	}
}

func TestGHCreateErrors(t *testing.T) {
	failing := NewGH(func(context.Context, string, ...string) ([]byte, []byte, error) {
		return nil, []byte("could not add label: 'nope' not found\n"), errors.New("exit status 1")
	})
	_, err := failing.Create(context.Background(), protocol.FinalIssue{Title: "Broken"}, Options{Repo: "acme/app"})
	if err == nil || !strings.Contains(err.Error(), `"Broken"`) || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v", err)
	}
	if _, err := failing.Create(context.Background(), protocol.FinalIssue{Title: "x"}, Options{}); !errors.Is(err, ErrNoRepo) {
		t.Fatalf("err = %v, want ErrNoRepo", err)
	}
	silent := NewGH(func(context.Context, string, ...string) ([]byte, []byte, error) { return []byte("\n"), nil, nil })
	if _, err := silent.Create(context.Background(), protocol.FinalIssue{Title: "x"}, Options{Repo: "a/b"}); err == nil {
		t.Fatalf("expected error when no URL is printed")
	}
}

type fakeCreator struct {
	fail map[string]bool
	seen []string
}

func (f *fakeCreator) Create(_ context.Context, issue protocol.FinalIssue, _ Options) (string, error) {
	f.seen = append(f.seen, issue.Title)
	if f.fail[issue.Title] {
		return "", errors.New("tracker: create " + issue.Title + ": boom")
	}
	return "https://example.test/" + issue.Title, nil
}

func TestCreateAllContinuesAfterFailure(t *testing.T) {
	creator := &fakeCreator{fail: map[string]bool{"b": true}}
	issues := []protocol.FinalIssue{{Title: "a"}, {Title: "b"}, {Title: "c"}}
	var notified []string
	created, err := CreateAll(context.Background(), creator, issues, Options{Repo: "x/y"}, func(c Created) {
		notified = append(notified, c.URL)
	})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err = %v, want joined failure", err)
	}
	if !slices.Equal(creator.seen, []string{"a", "b", "c"}) {
		t.Fatalf("seen = %q", creator.seen)
	}
	if len(created) != 2 || created[1].Issue.Title != "c" {
		t.Fatalf("created = %+v", created)
	}
	if !slices.Equal(notified, []string{"https://example.test/a", "https://example.test/c"}) {
		t.Fatalf("notified = %q", notified)
	}
}

func TestCreateAllStopsOnCancel(t *testing.T) {
	creator := &fakeCreator{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	created, err := CreateAll(ctx, creator, []protocol.FinalIssue{{Title: "a"}}, Options{Repo: "x/y"}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(created) != 0 || len(creator.seen) != 0 {
		t.Fatalf("no issue should be created after cancel")
	}
}
