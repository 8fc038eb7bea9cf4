package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// ErrNotFound is returned when no session exists for the requested id.
var ErrNotFound = errors.New("session not found")

// timeLayout is fixed-width (zero-padded fractional seconds, always UTC) so
// that the SQL ORDER BY on the text column sorts chronologically.
const timeLayout = "2006-01-02 15:04:05.000000000"

// CheckpointStore persists sessions in SQLite so a run can be paused and
// resumed from the last durably saved step.
type CheckpointStore struct {
	DB *sql.DB
}

func NewCheckpointStore(dbPath string) (*CheckpointStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if not exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			state_json TEXT NOT NULL,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS findings (
			session_id TEXT,
			position INTEGER,
			source TEXT,
			url TEXT,
			title TEXT,
			content TEXT,
			score REAL,
			metadata TEXT,
			PRIMARY KEY (session_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return nil, err
		}
	}

	return &CheckpointStore{DB: db}, nil
}

// Save upserts the full session record and its findings in one transaction,
// so a concurrent reader never observes a half-written checkpoint.
func (c *CheckpointStore) Save(s *Session) error {
	blob, err := json.Marshal(s)
	if err != nil {
		return err
	}

	tx, err := c.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT OR REPLACE INTO sessions (id, query, status, state_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.Query, string(s.Status), string(blob),
		s.CreatedAt.UTC().Format(timeLayout),
		s.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return err
	}

	// Findings never shrink or reorder, so rewriting the rows keeps
	// positions in insertion order without tracking a high-water mark.
	if _, err := tx.Exec(`DELETE FROM findings WHERE session_id = ?`, s.ID); err != nil {
		return err
	}
	for i, f := range s.Findings {
		meta, err := json.Marshal(f.Metadata)
		if err != nil {
			return err
		}
		_, err = tx.Exec(
			`INSERT INTO findings (session_id, position, source, url, title, content, score, metadata)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, i, f.Source, f.URL, f.Title, f.Content, f.Score, string(meta),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Load reconstructs a session by id.
func (c *CheckpointStore) Load(id string) (*Session, error) {
	var blob string
	err := c.DB.QueryRow(`SELECT state_json FROM sessions WHERE id = ?`, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		return nil, fmt.Errorf("corrupt session record %s: %w", id, err)
	}
	return &s, nil
}

// List returns session summaries ordered by most recently updated. An empty
// status matches every session.
func (c *CheckpointStore) List(status Status) ([]Summary, error) {
	query := `SELECT id, query, status, created_at, updated_at FROM sessions`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := c.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		var st, created, updated string
		if err := rows.Scan(&sm.ID, &sm.Query, &st, &created, &updated); err != nil {
			return nil, err
		}
		sm.Status = Status(st)
		sm.CreatedAt, _ = time.Parse(timeLayout, created)
		sm.UpdatedAt, _ = time.Parse(timeLayout, updated)
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (c *CheckpointStore) Close() error {
	return c.DB.Close()
}
