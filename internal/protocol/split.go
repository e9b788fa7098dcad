package protocol

import "strings"

const (
	commentPrefix  = ";"
	delimiterRune  = '-'
	minDelimiter   = 3
	blockSeparator = "\n\n---\n\n"
)

// SplitBlocks divides a document into raw blocks on `---` lines. Comment
// lines (a `;` in the first column) are discarded first, and a `;` line that
// is indented by spaces loses one space of indentation. Each block is trimmed of
// surrounding blank lines and blocks left empty are dropped, which is how a
// reviewer deletes an issue.
func SplitBlocks(document string) []string {
	lines := strings.Split(normalizeNewlines(document), "\n")
	blocks := []string{}
	var current []string
	flush := func() {
		if block := trimBlankLines(current); block != "" {
			blocks = append(blocks, block)
		}
		current = current[:0]
	}
	for _, line := range lines {
		switch {
		case isCommentLine(line):
			continue
		case isDelimiterLine(line):
			flush()
		default:
			current = append(current, unshiftLine(line))
		}
	}
	flush()
	return blocks
}

func isDelimiterLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < minDelimiter {
		return false
	}
	for _, r := range trimmed {
		if r != delimiterRune {
			return false
		}
	}
	return true
}

func isCommentLine(line string) bool {
	return strings.HasPrefix(line, commentPrefix)
}

// isShiftedComment reports whether line is a `;` line indented by spaces.
func isShiftedComment(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	return len(trimmed) < len(line) && strings.HasPrefix(trimmed, commentPrefix)
}

// shiftLine moves body lines that read as comments one column right.
// unshiftLine undoes it.
func shiftLine(line string) string {
	if isCommentLine(line) || isShiftedComment(line) {
		return " " + line
	}
	return line
}

func unshiftLine(line string) string {
	if isShiftedComment(line) {
		return line[1:]
	}
	return line
}

// trimBlankLines joins lines after dropping blank lines at both ends.
func trimBlankLines(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

func normalizeNewlines(content string) string {
	return strings.ReplaceAll(content, "\r\n", "\n")
}
