package protocol

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	mentionSigil = "@"
	labelOpen    = "<["
	labelClose   = "]>"
)

type tokenKind int

const (
	// tokenLiteral is terminal: the scan stops and everything left of it is title text.
	tokenLiteral tokenKind = iota
	tokenMention
	tokenLabel
)

type titleToken struct {
	kind  tokenKind
	value string
}

// titleScanner consumes annotation tokens from the end of a title line.
// end is the exclusive bound of the part of the line not yet consumed.
type titleScanner struct {
	line string
	end  int
}

func newTitleScanner(line string) *titleScanner {
	return &titleScanner{line: line, end: len(line)}
}

// next returns the trailing token of the unconsumed prefix. Once it returns
// tokenLiteral it keeps returning it.
func (s *titleScanner) next() titleToken {
	rest := strings.TrimRightFunc(s.line[:s.end], unicode.IsSpace)
	if rest == "" {
		s.end = 0
		return titleToken{kind: tokenLiteral}
	}
	if start, value, ok := matchLabel(rest); ok {
		s.end = start
		return titleToken{kind: tokenLabel, value: value}
	}
	if start, value, ok := matchMention(rest); ok {
		s.end = start
		return titleToken{kind: tokenMention, value: value}
	}
	s.end = len(rest)
	return titleToken{kind: tokenLiteral}
}

// literal returns the unconsumed prefix, i.e. the title text.
func (s *titleScanner) literal() string {
	return s.line[:s.end]
}

// matchLabel reports whether rest ends with a `<[label]>` token that starts at
// a token boundary. Empty labels match with an empty value.
func matchLabel(rest string) (int, string, bool) {
	if !strings.HasSuffix(rest, labelClose) {
		return 0, "", false
	}
	inner := rest[:len(rest)-len(labelClose)]
	open := strings.LastIndex(inner, labelOpen)
	if open < 0 || !atTokenBoundary(rest, open) {
		return 0, "", false
	}
	value := inner[open+len(labelOpen):]
	if strings.Contains(value, "]") {
		return 0, "", false
	}
	return open, strings.TrimSpace(value), true
}

// matchMention reports whether the last whitespace-delimited token of rest is
// `@handle`.
func matchMention(rest string) (int, string, bool) {
	start := 0
	if idx := strings.LastIndexFunc(rest, unicode.IsSpace); idx >= 0 {
		_, size := utf8.DecodeRuneInString(rest[idx:])
		start = idx + size
	}
	token := rest[start:]
	if !strings.HasPrefix(token, mentionSigil) || len(token) == len(mentionSigil) {
		return 0, "", false
	}
	return start, token[len(mentionSigil):], true
}

func atTokenBoundary(line string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(line[:idx])
	return unicode.IsSpace(r)
}

// ParseTitle separates trailing mention and label annotations from a title
// line. Annotations are returned in the order they appear on the line;
// duplicates are kept. A `<[` fragment that never closes stays in the title.
func ParseTitle(line string) ParsedTitle {
	parsed, _ := parseTitle(line)
	return parsed
}

// parseTitle also reports whether the title ends in an unterminated label.
func parseTitle(line string) (ParsedTitle, bool) {
	scanner := newTitleScanner(line)
	var tokens []titleToken
	for {
		tok := scanner.next()
		if tok.kind == tokenLiteral {
			break
		}
		tokens = append(tokens, tok)
	}
	slices.Reverse(tokens)

	parsed := ParsedTitle{
		Title:     strings.TrimSpace(scanner.literal()),
		Assignees: []string{},
		Labels:    []string{},
	}
	for _, tok := range tokens {
		switch tok.kind {
		case tokenMention:
			parsed.Assignees = append(parsed.Assignees, tok.value)
		case tokenLabel:
			if tok.value != "" {
				parsed.Labels = append(parsed.Labels, tok.value)
			}
		}
	}
	return parsed, hasUnterminatedLabel(parsed.Title)
}

func hasUnterminatedLabel(title string) bool {
	open := strings.LastIndex(title, labelOpen)
	if open < 0 || !atTokenBoundary(title, open) {
		return false
	}
	return !strings.Contains(title[open:], labelClose)
}

// FormatTitle renders a title line body (without heading marker) with
// mentions first and labels second, in stored order. A trailing token of the
// title text that would parse as an annotation is quoted in backticks.
func FormatTitle(title string, assignees, labels []string) string {
	parts := []string{protectTitle(collapseSpace(title))}
	for _, assignee := range assignees {
		if handle := normalizeHandle(assignee); handle != "" {
			parts = append(parts, mentionSigil+handle)
		}
	}
	for _, label := range labels {
		if name := normalizeLabel(label); name != "" {
			parts = append(parts, labelOpen+name+labelClose)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// protectTitle wraps a trailing `@handle` or `<[label]>` of the title text in
// backticks so that ParseTitle keeps it in the title.
func protectTitle(title string) string {
	scanner := newTitleScanner(title)
	if tok := scanner.next(); tok.kind == tokenLiteral {
		return title
	}
	return title[:scanner.end] + "`" + title[scanner.end:] + "`"
}

func normalizeHandle(handle string) string {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), mentionSigil)
	return strings.Join(strings.Fields(handle), "")
}

func normalizeLabel(label string) string {
	label = strings.ReplaceAll(label, "]", "")
	for strings.Contains(label, labelOpen) {
		label = strings.ReplaceAll(label, labelOpen, "")
	}
	return collapseSpace(label)
}

func collapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
