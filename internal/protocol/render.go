package protocol

import "strings"

// Locale selects the language of generated comments and section headings.
type Locale string

const (
	LocaleEnglish  Locale = "en"
	LocaleJapanese Locale = "ja"
)

type localeText struct {
	header   []string
	deadline string
	untitled string
	headings map[SectionKind]string
}

var locales = map[Locale]localeText{
	LocaleEnglish: {
		header: []string{
			"Issues to create",
			"Edit the issues below. Delete a whole block to drop that issue.",
			"Format: a title line, then the body. Issues are separated by ---.",
			"Title annotations: @handle assigns, <[label]> labels.",
		},
		deadline: "deadline",
		untitled: "Untitled",
		headings: map[SectionKind]string{
			SectionBackground: "Background",
			SectionAssignees:  "Assignees",
			SectionTasks:      "Tasks",
		},
	},
	LocaleJapanese: {
		header: []string{
			"Issues to Create",
			"以下のIssueを編集してください。不要なIssueブロックは削除してください。",
			"フォーマット: タイトル行の後に本文、Issueは --- で区切ります。",
			"タイトル末尾の @ユーザー名 で担当者、<[ラベル]> でラベルを指定します。",
		},
		deadline: "期限",
		untitled: "無題",
		headings: map[SectionKind]string{
			SectionBackground: "背景",
			SectionAssignees:  "担当者",
			SectionTasks:      "やること",
		},
	},
}

// ParseLocale maps a config value to a Locale, defaulting to English.
func ParseLocale(value string) Locale {
	switch Locale(strings.ToLower(strings.TrimSpace(value))) {
	case LocaleJapanese:
		return LocaleJapanese
	default:
		return LocaleEnglish
	}
}

type renderOptions struct {
	locale Locale
	header bool
}

// RenderOption customizes Render.
type RenderOption func(*renderOptions)

// WithLocale selects the language of comments and skeleton headings.
func WithLocale(locale Locale) RenderOption {
	return func(o *renderOptions) {
		o.locale = ParseLocale(string(locale))
	}
}

// WithoutHeader omits the leading comment block.
func WithoutHeader() RenderOption {
	return func(o *renderOptions) {
		o.header = false
	}
}

// Render writes tasks as one editable document. Parse(Render(tasks)) returns
// the same titles, assignees and labels in the same order; bodies match up to
// surrounding whitespace. Normalizations:
//
//   - delimiter lines inside bodies are dropped
//   - body lines starting with `;` are indented one space in the document
//   - an empty body is rendered as a skeleton of section headings
//   - an empty title becomes the locale's placeholder title
//   - a title whose own text ends in an annotation-shaped token gets that
//     token quoted in backticks (see FormatTitle)
//   - label text loses `]` and `<[`
func Render(tasks []DraftTask, opts ...RenderOption) string {
	options := renderOptions{locale: LocaleEnglish, header: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	text := locales[options.locale]

	var buf strings.Builder
	if options.header {
		for _, line := range text.header {
			buf.WriteString(commentPrefix + " " + line + "\n")
		}
		buf.WriteString("\n")
	}
	blocks := make([]string, 0, len(tasks))
	for _, task := range tasks {
		blocks = append(blocks, renderBlock(task, text))
	}
	buf.WriteString(strings.Join(blocks, blockSeparator))
	if len(blocks) > 0 {
		buf.WriteString("\n")
	}
	return buf.String()
}

func renderBlock(task DraftTask, text localeText) string {
	title := task.Title
	if collapseSpace(title) == "" {
		title = text.untitled
	}
	lines := []string{"# " + FormatTitle(title, task.Assignees, task.Labels)}
	if deadline := collapseSpace(task.Deadline); deadline != "" {
		lines = append(lines, commentPrefix+" "+text.deadline+": "+deadline)
	}
	body := sanitizeBody(task.Body)
	if body == "" {
		body = skeleton(text)
	}
	lines = append(lines, body)
	return strings.Join(lines, "\n")
}

func sanitizeBody(body string) string {
	lines := strings.Split(normalizeNewlines(body), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isDelimiterLine(line) {
			continue
		}
		kept = append(kept, shiftLine(line))
	}
	return trimBlankLines(kept)
}

func skeleton(text localeText) string {
	headings := make([]string, 0, len(sectionOrder))
	for _, kind := range sectionOrder {
		headings = append(headings, "## "+text.headings[kind]+"\n")
	}
	return strings.TrimRight(strings.Join(headings, "\n"), "\n")
}
