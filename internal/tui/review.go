// internal/tui/review.go
//
// The review screen shows the issues parsed from the edited document and
// asks for a final go-ahead before anything reaches the tracker.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: the parsed issues, the cursor and the decision
// 2. Update: key presses move the cursor or decide
// 3. View: a list on the left, the selected issue on the right
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kingrea/standup-issues/internal/logbook"
	"github.com/kingrea/standup-issues/internal/protocol"
)

// Reviewer gives the final approval for a batch of issues.
type Reviewer interface {
	Confirm(ctx context.Context, issues []protocol.FinalIssue) (bool, error)
}

// AutoApprove confirms every batch; it backs the --yes flag.
type AutoApprove struct{}

func (AutoApprove) Confirm(context.Context, []protocol.FinalIssue) (bool, error) {
	return true, nil
}

// decision records how the review screen was left.
type decision int

const (
	undecided decision = iota
	approved
	rejected
)

// issueItem implements list.Item for one parsed issue.
type issueItem struct {
	issue protocol.FinalIssue
}

func (i issueItem) Title() string { return i.issue.Title }
func (i issueItem) Description() string {
	var parts []string
	if len(i.issue.Assignees) > 0 {
		parts = append(parts, "@"+strings.Join(i.issue.Assignees, " @"))
	}
	if len(i.issue.Labels) > 0 {
		parts = append(parts, "["+strings.Join(i.issue.Labels, "] [")+"]")
	}
	if len(parts) == 0 {
		return "no assignees or labels"
	}
	return strings.Join(parts, "  ")
}
func (i issueItem) FilterValue() string { return i.issue.Title }

// ReviewModel is the bubbletea model of the review screen.
type ReviewModel struct {
	issues   []protocol.FinalIssue
	list     list.Model
	target   string
	logbook  *logbook.Logbook
	decision decision

	width  int
	height int
}

// NewReviewModel builds the screen for issues headed to target (a repo,
// optionally with a project board).
func NewReviewModel(issues []protocol.FinalIssue, target string, lb *logbook.Logbook) *ReviewModel {
	items := make([]list.Item, len(issues))
	for i, issue := range issues {
		items[i] = issueItem{issue: issue}
	}
	menu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	menu.Title = fmt.Sprintf("%d issue(s) → %s", len(issues), target)
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)
	menu.SetShowHelp(false)
	return &ReviewModel{
		issues:  issues,
		list:    menu,
		target:  target,
		logbook: lb,
	}
}

// Approved reports whether the user confirmed the batch.
func (m *ReviewModel) Approved() bool {
	return m.decision == approved
}

func (m *ReviewModel) Init() tea.Cmd {
	return nil
}

func (m *ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(max(20, msg.Width/2-4), max(5, msg.Height-8))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "y", "enter":
			m.decision = approved
			return m, tea.Quit
		case "n", "q", "esc", "ctrl+c":
			m.decision = rejected
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *ReviewModel) View() string {
	width := m.width
	if width <= 0 {
		width = 100
	}
	leftWidth := max(30, width/2-2)
	rightWidth := max(20, width-leftWidth-4)

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("STANDUP · review")
	leftBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Width(leftWidth).
		Render(m.list.View())
	rightBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(rightWidth).
		Render(m.renderDetail(rightWidth - 2))
	body := lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render("y/enter create issues · n/q/esc cancel · ↑/↓ browse")

	sections := []string{header, body}
	if logPanel := m.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, footer)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *ReviewModel) renderDetail(width int) string {
	if len(m.issues) == 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("Nothing to create.")
	}
	idx := m.list.Index()
	if idx < 0 || idx >= len(m.issues) {
		idx = 0
	}
	issue := m.issues[idx]
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Width(max(10, width)).
		Render(issue.Title)
	body := issue.Body
	if strings.TrimSpace(body) == "" {
		body = "(empty body)"
	}
	lines := strings.Split(body, "\n")
	if limit := max(5, m.height-12); len(lines) > limit {
		lines = append(lines[:limit], "…")
	}
	text := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Width(max(10, width)).
		Render(strings.Join(lines, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, title, "", text)
}

func (m *ReviewModel) renderLogPanel() string {
	if m.logbook == nil {
		return ""
	}
	lines, total := m.logbook.Tail(4)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(m.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s (%d entries)", fileName, total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

// Terminal runs the review screen on a terminal.
type Terminal struct {
	Input   io.Reader
	Output  io.Writer
	Target  string
	Logbook *logbook.Logbook
}

func (t Terminal) Confirm(ctx context.Context, issues []protocol.FinalIssue) (bool, error) {
	model := NewReviewModel(issues, t.Target, t.Logbook)
	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if t.Input != nil {
		opts = append(opts, tea.WithInput(t.Input))
	}
	if t.Output != nil {
		opts = append(opts, tea.WithOutput(t.Output))
	}
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, fmt.Errorf("tui: review interrupted: %w", ctxErr)
		}
		if errors.Is(err, tea.ErrProgramKilled) {
			return false, nil
		}
		return false, fmt.Errorf("tui: review: %w", err)
	}
	result, ok := final.(*ReviewModel)
	if !ok {
		return false, fmt.Errorf("tui: unexpected model %T", final)
	}
	return result.Approved(), nil
}
