package protocol

import (
	"slices"
	"strings"
	"testing"
)

func sampleDrafts() []DraftTask {
	return []DraftTask{
		{
			Title:     "【2025-06-20まで】Fix login bug",
			Body:      "## Background\n- sessions expire early\n\n## Assignees\n- Alice\n\n## Tasks\n- raise the TTL\n- add a test",
			Deadline:  "2025-06-20",
			Assignees: []string{"alice", "bob"},
			Labels:    []string{"bug", "urgent"},
		},
		{
			Title: "Write release notes",
			Body:  "Summarize the sprint.\nLink the changelog.",
		},
		{
			Title:     "問い合わせ対応",
			Body:      "",
			Assignees: []string{"dev-tanaka", "dev-tanaka"},
			Labels:    []string{"問い合わせ対応"},
		},
		{
			Title: "Check config",
			Body:  "set the value\n; semicolon line in body\n  ; indented one\nmore",
		},
	}
}

func TestRenderRoundTrip(t *testing.T) {
	drafts := sampleDrafts()
	for _, locale := range []Locale{LocaleEnglish, LocaleJapanese} {
		doc := Render(drafts, WithLocale(locale))
		result := Parse(doc)
		if len(result.Diagnostics) != 0 {
			t.Fatalf("%s: unexpected diagnostics %v", locale, result.Diagnostics)
		}
		if len(result.Issues) != len(drafts) {
			t.Fatalf("%s: issues = %d, want %d\n%s", locale, len(result.Issues), len(drafts), doc)
		}
		for i, draft := range drafts {
			issue := result.Issues[i]
			if issue.Title != draft.Title {
				t.Fatalf("%s[%d]: title = %q, want %q", locale, i, issue.Title, draft.Title)
			}
			if !slices.Equal(issue.Assignees, orEmpty(draft.Assignees)) {
				t.Fatalf("%s[%d]: assignees = %q, want %q", locale, i, issue.Assignees, draft.Assignees)
			}
			if !slices.Equal(issue.Labels, orEmpty(draft.Labels)) {
				t.Fatalf("%s[%d]: labels = %q, want %q", locale, i, issue.Labels, draft.Labels)
			}
			if strings.TrimSpace(issue.Body) != strings.TrimSpace(draft.Body) {
				t.Fatalf("%s[%d]: body = %q, want %q", locale, i, issue.Body, draft.Body)
			}
		}
	}
}

func TestRenderLayout(t *testing.T) {
	doc := Render(sampleDrafts()[:2], WithoutHeader())
	want := strings.Join([]string{
		"# 【2025-06-20まで】Fix login bug @alice @bob <[bug]> <[urgent]>",
		"; deadline: 2025-06-20",
		"## Background",
		"- sessions expire early",
		"",
		"## Assignees",
		"- Alice",
		"",
		"## Tasks",
		"- raise the TTL",
		"- add a test",
		"",
		"---",
		"",
		"# Write release notes",
		"Summarize the sprint.",
		"Link the changelog.",
		"",
	}, "\n")
	if doc != want {
		t.Fatalf("Render =\n%s\nwant\n%s", doc, want)
	}
}

func TestRenderEmptyBodySkeleton(t *testing.T) {
	doc := Render([]DraftTask{{Title: "Book the room"}}, WithLocale(LocaleJapanese), WithoutHeader())
	for _, heading := range []string{"## 背景", "## 担当者", "## やること"} {
		if !strings.Contains(doc, heading) {
			t.Fatalf("skeleton missing %q:\n%s", heading, doc)
		}
	}
}

func TestRenderHeaderIsComment(t *testing.T) {
	doc := Render(nil)
	if !strings.HasPrefix(doc, "; ") {
		t.Fatalf("expected comment header, got %q", doc)
	}
	if result := Parse(doc); len(result.Issues) != 0 {
		t.Fatalf("header-only document parsed to %d issues", len(result.Issues))
	}
}

func TestRenderDropsDelimiterLinesFromBody(t *testing.T) {
	drafts := []DraftTask{{Title: "Split me", Body: "before\n---\nafter"}, {Title: "Next"}}
	result := Parse(Render(drafts))
	if want := []string{"Split me", "Next"}; !slices.Equal(issueTitles(result.Issues), want) {
		t.Fatalf("titles = %q, want %q", issueTitles(result.Issues), want)
	}
	if result.Issues[0].Body != "before\nafter" {
		t.Fatalf("body = %q", result.Issues[0].Body)
	}
}

func TestDeletingABlockOmitsOnlyThatTask(t *testing.T) {
	drafts := sampleDrafts()
	doc := Render(drafts, WithoutHeader())
	blocks := strings.Split(doc, blockSeparator)
	if len(blocks) != len(drafts) {
		t.Fatalf("blocks = %d, want %d", len(blocks), len(drafts))
	}
	blocks[1] = "\n\n"
	edited := strings.Join(blocks, blockSeparator)
	result := Parse(edited)
	want := []string{drafts[0].Title}
	for _, draft := range drafts[2:] {
		want = append(want, draft.Title)
	}
	if !slices.Equal(issueTitles(result.Issues), want) {
		t.Fatalf("titles = %q, want %q", issueTitles(result.Issues), want)
	}
	if !slices.Equal(result.Issues[1].Assignees, drafts[2].Assignees) {
		t.Fatalf("remaining issue changed: %+v", result.Issues[1])
	}
}

func TestParseLocale(t *testing.T) {
	if got := ParseLocale(" JA "); got != LocaleJapanese {
		t.Fatalf("ParseLocale(JA) = %q", got)
	}
	if got := ParseLocale("fr"); got != LocaleEnglish {
		t.Fatalf("ParseLocale(fr) = %q", got)
	}
}

func TestRenderShiftsSemicolonBodyLines(t *testing.T) {
	doc := Render([]DraftTask{{Title: "Check config", Body: "; first\n ; second"}}, WithoutHeader())
	want := "# Check config\n ; first\n  ; second\n"
	if doc != want {
		t.Fatalf("Render = %q, want %q", doc, want)
	}
}

func TestRenderNormalizesAmbiguousTitles(t *testing.T) {
	cases := []struct {
		name      string
		draft     DraftTask
		locale    Locale
		title     string
		assignees []string
		labels    []string
	}{
		{
			name:      "title ending in a mention",
			draft:     DraftTask{Title: "Reply to @alice", Assignees: []string{"bob"}},
			title:     "Reply to `@alice`",
			assignees: []string{"bob"},
		},
		{
			name:  "title ending in a label",
			draft: DraftTask{Title: "Triage <[backlog]>"},
			title: "Triage `<[backlog]>`",
		},
		{
			name:  "title ending in an empty label",
			draft: DraftTask{Title: "Tidy <[]>", Labels: []string{"chore"}},
			title: "Tidy `<[]>`", labels: []string{"chore"},
		},
		{
			name:  "mention inside the title",
			draft: DraftTask{Title: "Ask @alice about it"},
			title: "Ask @alice about it",
		},
		{
			name:   "label containing an opener",
			draft:  DraftTask{Title: "T", Labels: []string{"a<[b", "<<[[x]]"}},
			title:  "T",
			labels: []string{"ab", "x"},
		},
		{
			name:      "empty title",
			draft:     DraftTask{Title: "  ", Assignees: []string{"bob"}},
			title:     "Untitled",
			assignees: []string{"bob"},
		},
		{
			name:   "empty title in japanese",
			draft:  DraftTask{Labels: []string{"memo"}},
			locale: LocaleJapanese,
			title:  "無題",
			labels: []string{"memo"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Parse(Render([]DraftTask{tc.draft}, WithLocale(tc.locale)))
			if len(result.Diagnostics) != 0 {
				t.Fatalf("unexpected diagnostics %v", result.Diagnostics)
			}
			if len(result.Issues) != 1 {
				t.Fatalf("issues = %d, want 1", len(result.Issues))
			}
			issue := result.Issues[0]
			if issue.Title != tc.title {
				t.Fatalf("title = %q, want %q", issue.Title, tc.title)
			}
			if !slices.Equal(issue.Assignees, orEmpty(tc.assignees)) {
				t.Fatalf("assignees = %q, want %q", issue.Assignees, tc.assignees)
			}
			if !slices.Equal(issue.Labels, orEmpty(tc.labels)) {
				t.Fatalf("labels = %q, want %q", issue.Labels, tc.labels)
			}

			again := Parse(Render([]DraftTask{{Title: issue.Title, Assignees: issue.Assignees, Labels: issue.Labels}}))
			if len(again.Issues) != 1 || again.Issues[0].Title != issue.Title {
				t.Fatalf("second round trip changed the title: %+v", again.Issues)
			}
		})
	}
}
