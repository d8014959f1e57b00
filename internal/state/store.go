// Package state provides the SQLite-backed telemetry journal. Every
// task execution the performance monitor records is appended here so
// aggregate reports survive across runs. Task history itself is not
// persisted; only the raw telemetry rows are.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

// Store wraps an SQLite connection holding execution telemetry.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.Mutex
}

// ProjectDBPath returns the path to the project-local telemetry database.
func ProjectDBPath(projectRoot string) string {
	return filepath.Join(projectRoot, ".vtagent", "telemetry.db")
}

// Open opens (or creates) the telemetry database at the given path and
// applies the schema. Parent directories are created as needed.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS task_executions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			task_id TEXT NOT NULL,
			role TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			duration_ms INTEGER NOT NULL,
			success INTEGER NOT NULL,
			model TEXT NOT NULL,
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			confidence REAL NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_task_executions_session
			ON task_executions(session_id);
		CREATE INDEX IF NOT EXISTS idx_task_executions_role
			ON task_executions(role);
	`)
	if err != nil {
		return fmt.Errorf("create task_executions table: %w", err)
	}
	return nil
}

// Execution is one telemetry row.
type Execution struct {
	SessionID    string
	TaskID       string
	Role         models.Role
	StartedAt    time.Time
	Duration     time.Duration
	Success      bool
	Model        string
	InputTokens  int64
	OutputTokens int64
	Confidence   float64
}

// RecordExecution appends one execution row.
func (s *Store) RecordExecution(e Execution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		INSERT INTO task_executions
			(session_id, task_id, role, started_at, duration_ms, success, model, input_tokens, output_tokens, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.TaskID, string(e.Role), e.StartedAt.UTC(),
		e.Duration.Milliseconds(), boolToInt(e.Success), e.Model,
		e.InputTokens, e.OutputTokens, e.Confidence,
	)
	if err != nil {
		return fmt.Errorf("insert task execution: %w", err)
	}
	return nil
}

// Totals are aggregate counters over the journal.
type Totals struct {
	Tasks       int
	Successes   int
	AvgDuration time.Duration
	TotalTokens int64
}

// Totals aggregates over every recorded execution. Pass an empty
// sessionID to aggregate across sessions.
func (s *Store) Totals(sessionID string) (Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT COUNT(*),
			COALESCE(SUM(success), 0),
			COALESCE(AVG(duration_ms), 0),
			COALESCE(SUM(input_tokens + output_tokens), 0)
		FROM task_executions`
	args := []any{}
	if sessionID != "" {
		query += " WHERE session_id = ?"
		args = append(args, sessionID)
	}

	var t Totals
	var avgMs float64
	row := s.conn.QueryRow(query, args...)
	if err := row.Scan(&t.Tasks, &t.Successes, &avgMs, &t.TotalTokens); err != nil {
		return Totals{}, fmt.Errorf("aggregate task executions: %w", err)
	}
	t.AvgDuration = time.Duration(avgMs * float64(time.Millisecond))
	return t, nil
}

// RecentExecutions returns up to limit of the most recent rows, newest
// first.
func (s *Store) RecentExecutions(limit int) ([]Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.conn.Query(`
		SELECT session_id, task_id, role, started_at, duration_ms, success, model, input_tokens, output_tokens, confidence
		FROM task_executions
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query task executions: %w", err)
	}
	defer rows.Close()

	var out []Execution
	for rows.Next() {
		var e Execution
		var role string
		var durMs int64
		var success int
		if err := rows.Scan(&e.SessionID, &e.TaskID, &role, &e.StartedAt, &durMs, &success, &e.Model, &e.InputTokens, &e.OutputTokens, &e.Confidence); err != nil {
			return nil, fmt.Errorf("scan task execution: %w", err)
		}
		e.Role = models.Role(role)
		e.Duration = time.Duration(durMs) * time.Millisecond
		e.Success = success != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
