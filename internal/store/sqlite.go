package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// SQLiteDB implements the DB interface using SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens/creates a SQLite database at path and runs migrations.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite is not concurrent for writes

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &SQLiteDB{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error { return s.db.Close() }

func (s *SQLiteDB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS interactions (
			id TEXT PRIMARY KEY,
			room TEXT NOT NULL,
			action TEXT NOT NULL,
			success INTEGER NOT NULL,
			concept TEXT NOT NULL,
			feedback TEXT NOT NULL DEFAULT '',
			mistake_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_room_created ON interactions(room, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS completions (
			room TEXT PRIMARY KEY,
			completed_at TIMESTAMP NOT NULL,
			mistake_count INTEGER NOT NULL DEFAULT 0,
			concepts_json TEXT NOT NULL DEFAULT '[]'
		)`,

		`CREATE TABLE IF NOT EXISTS measurements (
			id TEXT PRIMARY KEY,
			room TEXT NOT NULL,
			event TEXT NOT NULL,
			payload_json TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_measurements_room ON measurements(room, created_at DESC)`,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return tx.Commit()
}

// SaveInteraction persists one validated action outcome. Fills ID/CreatedAt
// when unset.
func (s *SQLiteDB) SaveInteraction(ctx context.Context, in *Interaction) error {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions (id, room, action, success, concept, feedback, mistake_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID.String(), in.Room, in.Action, boolToInt(in.Success), in.Concept, in.Feedback, in.MistakeCount, in.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save interaction: %w", err)
	}
	return nil
}

// ListInteractions returns interactions, newest first.
func (s *SQLiteDB) ListInteractions(ctx context.Context, q InteractionsQuery) ([]Interaction, error) {
	if q.Limit <= 0 || q.Limit > 500 {
		q.Limit = 100
	}

	query := `SELECT id, room, action, success, concept, feedback, mistake_count, created_at
		FROM interactions`
	args := []any{}
	if q.Room != "" {
		query += ` WHERE room = ?`
		args = append(args, q.Room)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, q.Limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var in Interaction
		var id string
		var success int
		if err := rows.Scan(&id, &in.Room, &in.Action, &success, &in.Concept, &in.Feedback, &in.MistakeCount, &in.CreatedAt); err != nil {
			return nil, err
		}
		in.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("corrupt interaction id %q: %w", id, err)
		}
		in.Success = success != 0
		out = append(out, in)
	}
	return out, rows.Err()
}

// SaveCompletion records a room completion, keeping the first timestamp if
// the row already exists.
func (s *SQLiteDB) SaveCompletion(ctx context.Context, c *Completion) error {
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now().UTC()
	}
	if c.ConceptsJSON == "" {
		c.ConceptsJSON = "[]"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO completions (room, completed_at, mistake_count, concepts_json)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(room) DO NOTHING`,
		c.Room, c.CompletedAt, c.MistakeCount, c.ConceptsJSON)
	if err != nil {
		return fmt.Errorf("failed to save completion: %w", err)
	}
	return nil
}

// ListCompletions returns all recorded completions in completion order.
func (s *SQLiteDB) ListCompletions(ctx context.Context) ([]Completion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT room, completed_at, mistake_count, concepts_json FROM completions ORDER BY completed_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	var out []Completion
	for rows.Next() {
		var c Completion
		if err := rows.Scan(&c.Room, &c.CompletedAt, &c.MistakeCount, &c.ConceptsJSON); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveMeasurement stores one raw telemetry event.
func (s *SQLiteDB) SaveMeasurement(ctx context.Context, m *Measurement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.PayloadJSON == "" {
		m.PayloadJSON = "{}"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO measurements (id, room, event, payload_json, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID.String(), m.Room, m.Event, m.PayloadJSON, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save measurement: %w", err)
	}
	return nil
}

// CountMeasurements returns the number of stored events for a room, or all
// rooms when room is empty.
func (s *SQLiteDB) CountMeasurements(ctx context.Context, room string) (int64, error) {
	var n int64
	var err error
	if room == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM measurements`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM measurements WHERE room = ?`, room).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count measurements: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
