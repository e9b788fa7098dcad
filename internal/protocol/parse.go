package protocol

import "fmt"

// Parse recovers issues from an edited document. It never fails: blocks
// without a usable title are skipped and reported in Result.Diagnostics, and
// a document with no surviving blocks yields no issues.
func Parse(document string) Result {
	result := Result{Issues: []FinalIssue{}, Diagnostics: []Diagnostic{}}
	for idx, block := range SplitBlocks(document) {
		issue, diags, ok := assemble(block, idx+1)
		result.Diagnostics = append(result.Diagnostics, diags...)
		if ok {
			result.Issues = append(result.Issues, issue)
		}
	}
	return result
}

// assemble builds the issue for one non-empty block.
func assemble(block string, position int) (FinalIssue, []Diagnostic, bool) {
	parts, ok := ExtractSections(block)
	if !ok {
		return FinalIssue{}, []Diagnostic{{
			Block:   position,
			Kind:    DiagMalformedBlock,
			Message: "no title line; block skipped",
		}}, false
	}

	var diags []Diagnostic
	parsed, unterminated := parseTitle(parts.TitleLine)
	if unterminated {
		diags = append(diags, Diagnostic{
			Block:   position,
			Kind:    DiagUnterminatedLabel,
			Message: fmt.Sprintf("unterminated label kept in title %q", parsed.Title),
		})
	}
	if parsed.Title == "" {
		diags = append(diags, Diagnostic{
			Block:   position,
			Kind:    DiagMalformedBlock,
			Message: "title is empty after removing annotations; block skipped",
		})
		return FinalIssue{}, diags, false
	}

	body := parts.Body.Raw
	if parts.Body.IsSkeleton() {
		body = ""
	}
	return FinalIssue{
		Title:     parsed.Title,
		Body:      body,
		Assignees: parsed.Assignees,
		Labels:    parsed.Labels,
	}, diags, true
}
