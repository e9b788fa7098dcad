package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/standup-issues/internal/logbook"
	"github.com/kingrea/standup-issues/internal/protocol"
)

func sampleIssues() []protocol.FinalIssue {
	return []protocol.FinalIssue{
		{Title: "Fix login bug", Body: "## Tasks\n- raise TTL", Assignees: []string{"alice"}, Labels: []string{"bug"}},
		{Title: "Write notes", Body: "", Assignees: []string{}, Labels: []string{}},
	}
}

func press(t *testing.T, m *ReviewModel, key tea.KeyMsg) (*ReviewModel, tea.Cmd) {
	t.Helper()
	model, cmd := m.Update(key)
	next, ok := model.(*ReviewModel)
	if !ok {
		t.Fatalf("unexpected model %T", model)
	}
	return next, cmd
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestReviewConfirmKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{runeKey('y'), {Type: tea.KeyEnter}} {
		m, cmd := press(t, NewReviewModel(sampleIssues(), "acme/app", nil), key)
		if !m.Approved() {
			t.Fatalf("%q should approve", key.String())
		}
		if cmd == nil {
			t.Fatalf("%q should quit", key.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%q should return tea.Quit", key.String())
		}
	}
}

func TestReviewCancelKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{runeKey('n'), runeKey('q'), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		m, cmd := press(t, NewReviewModel(sampleIssues(), "acme/app", nil), key)
		if m.Approved() || m.decision != rejected {
			t.Fatalf("%q should reject", key.String())
		}
		if cmd == nil {
			t.Fatalf("%q should quit", key.String())
		}
	}
}

func TestReviewNavigationShowsSelectedIssue(t *testing.T) {
	m := NewReviewModel(sampleIssues(), "acme/app · Sprint", nil)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.decision != undecided {
		t.Fatalf("navigation must not decide")
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	view := m.View()
	if !strings.Contains(view, "(empty body)") {
		t.Fatalf("expected second issue detail in view:\n%s", view)
	}
	if !strings.Contains(m.list.Title, "2 issue(s)") {
		t.Fatalf("list title = %q", m.list.Title)
	}
}

func TestReviewViewIncludesLogPanel(t *testing.T) {
	lb, err := logbook.New(filepath.Join(t.TempDir(), "standup.log"))
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	lb.Warn("block 3: no title line; block skipped")
	m := NewReviewModel(sampleIssues(), "acme/app", lb)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	for _, want := range []string{"STANDUP", "Fix login bug", "raise TTL", "standup.log", "no title line"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestIssueItemDescription(t *testing.T) {
	issues := sampleIssues()
	if got := (issueItem{issue: issues[0]}).Description(); got != "@alice  [bug]" {
		t.Fatalf("description = %q", got)
	}
	if got := (issueItem{issue: issues[1]}).Description(); got != "no assignees or labels" {
		t.Fatalf("description = %q", got)
	}
}

func TestAutoApprove(t *testing.T) {
	ok, err := AutoApprove{}.Confirm(context.Background(), sampleIssues())
	if err != nil || !ok {
		t.Fatalf("AutoApprove = %v, %v", ok, err)
	}
}
