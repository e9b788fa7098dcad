package protocol

import "strings"

// SectionKind names a body section the protocol recognizes.
type SectionKind string

const (
	SectionBackground SectionKind = "background"
	SectionAssignees  SectionKind = "assignees"
	SectionTasks      SectionKind = "tasks"
)

// sectionOrder is the order used when rendering an empty body skeleton.
var sectionOrder = []SectionKind{SectionBackground, SectionAssignees, SectionTasks}

var sectionAliases = map[SectionKind][]string{
	SectionBackground: {"background", "context", "背景"},
	SectionAssignees:  {"assignee", "assignees", "owner", "owners", "担当", "担当者"},
	SectionTasks:      {"tasks", "task", "todo", "to do", "to-do", "やること", "タスク"},
}

var sectionNames = func() map[string]SectionKind {
	names := map[string]SectionKind{}
	for kind, aliases := range sectionAliases {
		for _, alias := range aliases {
			names[alias] = kind
		}
	}
	return names
}()

// Section is the content under one recognized header.
type Section struct {
	Kind    SectionKind
	Heading string
	Content string
}

// Body is an issue body. Raw is the text stored on the tracker; Preamble and
// Sections are a structured view of the same text.
type Body struct {
	Raw      string
	Preamble string
	Sections []Section
}

// Section returns the first section of the given kind.
func (b Body) Section(kind SectionKind) (Section, bool) {
	for _, section := range b.Sections {
		if section.Kind == kind {
			return section, true
		}
	}
	return Section{}, false
}

// IsSkeleton reports whether the body holds recognized headers and nothing else.
func (b Body) IsSkeleton() bool {
	if len(b.Sections) == 0 || strings.TrimSpace(b.Preamble) != "" {
		return false
	}
	for _, section := range b.Sections {
		if strings.TrimSpace(section.Content) != "" {
			return false
		}
	}
	return true
}

// BlockParts is a block split into its title line and body.
type BlockParts struct {
	// TitleLine has its Markdown heading marker removed.
	TitleLine string
	Body      Body
}

// ExtractSections separates the title line of a trimmed block from its body.
// It returns false when the block has no title line: the block is blank or
// opens with a `##` section header.
func ExtractSections(block string) (BlockParts, bool) {
	lines := strings.Split(normalizeNewlines(block), "\n")
	idx := 0
	for idx < len(lines) && strings.TrimSpace(lines[idx]) == "" {
		idx++
	}
	if idx == len(lines) {
		return BlockParts{}, false
	}
	first := lines[idx]
	if level, _, ok := parseHeader(first); ok && level > 1 {
		return BlockParts{}, false
	}
	return BlockParts{
		TitleLine: stripHeadingMarker(first),
		Body:      extractBody(lines[idx+1:]),
	}, true
}

func extractBody(lines []string) Body {
	body := Body{Raw: trimBlankLines(lines)}
	var preamble []string
	var current *Section
	var content []string
	closeSection := func() {
		if current == nil {
			return
		}
		current.Content = trimBlankLines(content)
		body.Sections = append(body.Sections, *current)
		current = nil
		content = nil
	}
	for _, line := range lines {
		if _, kind, ok := parseHeader(line); ok {
			closeSection()
			current = &Section{Kind: kind, Heading: strings.TrimSpace(line)}
			continue
		}
		if current == nil {
			preamble = append(preamble, line)
			continue
		}
		content = append(content, line)
	}
	closeSection()
	body.Preamble = trimBlankLines(preamble)
	return body
}

// parseHeader recognizes `#… name` lines whose name is a known section.
func parseHeader(line string) (int, SectionKind, bool) {
	trimmed := strings.TrimSpace(line)
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 {
		return 0, "", false
	}
	name := strings.TrimSpace(trimmed[level:])
	name = strings.TrimRight(name, ":：")
	name = strings.ToLower(strings.TrimSpace(name))
	kind, ok := sectionNames[name]
	if !ok {
		return 0, "", false
	}
	return level, kind, true
}

// stripHeadingMarker removes a leading `#…` marker when it is followed by
// whitespace, so `#123 fix` keeps its text.
func stripHeadingMarker(line string) string {
	trimmed := strings.TrimSpace(line)
	rest := strings.TrimLeft(trimmed, "#")
	if rest == trimmed {
		return trimmed
	}
	if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
		return strings.TrimSpace(rest)
	}
	return trimmed
}
