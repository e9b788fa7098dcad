// internal/history/history.go
//
// The history store records every run in .standup/state/history.db: what was
// drafted, what survived review and the URLs the tracker handed back.

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound reports an unknown run ID.
var ErrNotFound = errors.New("history: run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	repo TEXT NOT NULL DEFAULT '',
	transcript_chars INTEGER NOT NULL DEFAULT 0,
	drafted INTEGER NOT NULL DEFAULT 0,
	parsed INTEGER NOT NULL DEFAULT 0,
	created INTEGER NOT NULL DEFAULT 0,
	summary TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS issues (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	url TEXT NOT NULL DEFAULT '',
	assignees TEXT NOT NULL DEFAULT '[]',
	labels TEXT NOT NULL DEFAULT '[]',
	PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// Issue is one created issue of a run.
type Issue struct {
	Position  int      `json:"position"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Assignees []string `json:"assignees"`
	Labels    []string `json:"labels"`
}

// Run summarizes one invocation of `standup run`.
type Run struct {
	ID              string    `json:"id"`
	StartedAt       time.Time `json:"started_at"`
	Repo            string    `json:"repo"`
	TranscriptChars int       `json:"transcript_chars"`
	Drafted         int       `json:"drafted"`
	Parsed          int       `json:"parsed"`
	Created         int       `json:"created"`
	Summary         string    `json:"summary"`
	Issues          []Issue   `json:"issues"`
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and initializes the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history: create db directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("history: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores run and its issues in one transaction. An empty ID is
// replaced with a new one; the stored ID is returned.
func (s *Store) Record(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("history: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, repo, transcript_chars, drafted, parsed, created, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixMilli(), run.Repo, run.TranscriptChars,
		run.Drafted, run.Parsed, run.Created, run.Summary,
	)
	if err != nil {
		return "", fmt.Errorf("history: insert run: %w", err)
	}
	for i, issue := range run.Issues {
		assignees, _ := json.Marshal(orEmpty(issue.Assignees))
		labels, _ := json.Marshal(orEmpty(issue.Labels))
		_, err := tx.ExecContext(ctx, `
			INSERT INTO issues (run_id, position, title, url, assignees, labels)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, issue.Title, issue.URL, string(assignees), string(labels),
		)
		if err != nil {
			return "", fmt.Errorf("history: insert issue %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("history: commit: %w", err)
	}
	return run.ID, nil
}

// Recent lists up to limit runs, newest first, with their issues.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, repo, transcript_chars, drafted, parsed, created, summary
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	rows.Close()

	for i := range runs {
		issues, err := s.issues(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Issues = issues
	}
	return runs, nil
}

// Get loads one run by ID.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, repo, transcript_chars, drafted, parsed, created, summary
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, err
	}
	run.Issues, err = s.issues(ctx, id)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

func (s *Store) issues(ctx context.Context, runID string) ([]Issue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, title, url, assignees, labels
		FROM issues WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("history: list issues: %w", err)
	}
	defer rows.Close()
	issues := []Issue{}
	for rows.Next() {
		var (
			issue             Issue
			assignees, labels string
		)
		if err := rows.Scan(&issue.Position, &issue.Title, &issue.URL, &assignees, &labels); err != nil {
			return nil, fmt.Errorf("history: scan issue: %w", err)
		}
		if err := json.Unmarshal([]byte(assignees), &issue.Assignees); err != nil {
			return nil, fmt.Errorf("history: decode assignees: %w", err)
		}
		if err := json.Unmarshal([]byte(labels), &issue.Labels); err != nil {
			return nil, fmt.Errorf("history: decode labels: %w", err)
		}
		issue.Assignees = orEmpty(issue.Assignees)
		issue.Labels = orEmpty(issue.Labels)
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list issues: %w", err)
	}
	return issues, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run     Run
		started int64
	)
	err := row.Scan(&run.ID, &started, &run.Repo, &run.TranscriptChars,
		&run.Drafted, &run.Parsed, &run.Created, &run.Summary)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("history: scan run: %w", err)
	}
	run.StartedAt = time.UnixMilli(started)
	return run, nil
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
