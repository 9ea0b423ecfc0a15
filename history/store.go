package history

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// RunStore records scrape runs using SQLite.
type RunStore struct {
	db *sql.DB
}

// Run is one invocation of the scraper. Quotes themselves are never stored.
type Run struct {
	RunID      uuid.UUID  `json:"run_id"`
	BaseURL    string     `json:"base_url"`
	OutputPath string     `json:"output_path"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Pages      int        `json:"pages"`
	Quotes     int        `json:"quotes"`
	Status     string     `json:"status"`
	LastError  *string    `json:"last_error,omitempty"`
}

// Duration returns how long a finished run took, or 0 while it is running.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunFilter represents filtering options for listing runs.
type RunFilter struct {
	Status *string // Filter by status
	Limit  int     // Pagination limit
	Offset int     // Pagination offset
}

// NewRunStore creates a new run store with the given database path.
func NewRunStore(dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &RunStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the runs table if it doesn't exist.
func (s *RunStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		base_url TEXT NOT NULL,
		output_path TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		pages INTEGER DEFAULT 0,
		quotes INTEGER DEFAULT 0,
		status TEXT NOT NULL,
		last_error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// StartRun records a new run in the running state.
func (s *RunStore) StartRun(baseURL, outputPath string) (*Run, error) {
	run := &Run{
		RunID:      uuid.New(),
		BaseURL:    baseURL,
		OutputPath: outputPath,
		StartedAt:  time.Now().UTC().Truncate(time.Microsecond),
		Status:     StatusRunning,
	}

	query := `
		INSERT INTO runs (run_id, base_url, output_path, started_at, status)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		run.RunID.String(),
		run.BaseURL,
		run.OutputPath,
		formatTime(&run.StartedAt),
		run.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	return run, nil
}

// FinishRun marks a run as finished with its page and quote counts. A
// non-nil runErr marks the run failed and stores its message.
func (s *RunStore) FinishRun(runID uuid.UUID, pages, quotes int, runErr error) error {
	now := time.Now().UTC().Truncate(time.Microsecond)

	status := StatusSucceeded
	var lastError *string
	if runErr != nil {
		status = StatusFailed
		msg := runErr.Error()
		lastError = &msg
	}

	query := `
		UPDATE runs
		SET finished_at = ?, pages = ?, quotes = ?, status = ?, last_error = ?
		WHERE run_id = ?
	`

	result, err := s.db.Exec(query,
		formatTime(&now),
		pages,
		quotes,
		status,
		lastError,
		runID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrRunNotFound
	}

	return nil
}

const selectRuns = `
	SELECT run_id, base_url, output_path, started_at, finished_at,
	       pages, quotes, status, last_error
	FROM runs
`

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(runID uuid.UUID) (*Run, error) {
	row := s.db.QueryRow(selectRuns+" WHERE run_id = ?", runID.String())

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	return run, nil
}

// ListRuns lists runs, newest first, with optional filtering.
func (s *RunStore) ListRuns(filter RunFilter) ([]Run, error) {
	query := selectRuns

	var whereClauses []string
	var args []any

	if filter.Status != nil {
		whereClauses = append(whereClauses, "status = ?")
		args = append(args, *filter.Status)
	}

	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}

	query += " ORDER BY started_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun parses one row of selectRuns into a Run.
func scanRun(row rowScanner) (*Run, error) {
	var runIDStr, baseURL, outputPath, startedAtStr, status string
	var finishedAtStr, lastError sql.NullString
	var pages, quotes int

	err := row.Scan(
		&runIDStr, &baseURL, &outputPath, &startedAtStr, &finishedAtStr,
		&pages, &quotes, &status, &lastError,
	)
	if err != nil {
		return nil, err
	}

	runID, err := uuid.Parse(runIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run ID: %w", err)
	}

	run := &Run{
		RunID:      runID,
		BaseURL:    baseURL,
		OutputPath: outputPath,
		StartedAt:  parseTime(startedAtStr),
		Pages:      pages,
		Quotes:     quotes,
		Status:     status,
	}

	if finishedAtStr.Valid {
		t := parseTime(finishedAtStr.String)
		run.FinishedAt = &t
	}
	if lastError.Valid {
		run.LastError = &lastError.String
	}

	return run, nil
}

// timeFormat is fixed width so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000Z07:00"

// Helper functions for time formatting
func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t.UTC()
}
