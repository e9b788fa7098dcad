// Package protocol defines the plain-text document that carries a batch of
// proposed issues through a human editor, together with the parser and
// serializer that move records in and out of it.
//
// A document is a sequence of blocks separated by `---` lines. The first line
// of a block is the title; trailing `@handle` and `<[label]>` tokens on that
// line are metadata. Everything after the title line is the issue body.

package protocol

import "fmt"

// DraftTask is a task candidate produced by upstream extraction, before review.
type DraftTask struct {
	Title     string   `json:"title" yaml:"title"`
	Body      string   `json:"body" yaml:"body"`
	Deadline  string   `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Assignees []string `json:"assignees" yaml:"assignees"`
	Labels    []string `json:"labels" yaml:"labels"`
}

// ParsedTitle is a title line with its annotations separated out.
type ParsedTitle struct {
	Title     string
	Assignees []string
	Labels    []string
}

// FinalIssue is a reviewed record ready for the tracker.
type FinalIssue struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Assignees []string `json:"assignees"`
	Labels    []string `json:"labels"`
}

// DiagnosticKind classifies a recoverable parse anomaly.
type DiagnosticKind string

const (
	// DiagMalformedBlock marks a block skipped because it has no usable title.
	DiagMalformedBlock DiagnosticKind = "malformed_block"
	// DiagUnterminatedLabel marks a `<[` fragment kept as literal title text.
	DiagUnterminatedLabel DiagnosticKind = "unterminated_label"
)

// Diagnostic reports an anomaly in one block. Block is 1-based and counts
// surviving (non-empty) blocks.
type Diagnostic struct {
	Block   int            `json:"block"`
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("block %d: %s", d.Block, d.Message)
}

// Result is the outcome of parsing a whole document.
type Result struct {
	Issues      []FinalIssue `json:"issues"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}
