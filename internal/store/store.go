// Package store persists match runs to PostgreSQL so past runs can be
// reviewed and compared.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/listmatch/internal/match"
)

// Store writes and reads match runs.
type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL with the given DSN and verifies the
// connection.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)

	return &Store{db: db}, nil
}

// New wraps an existing connection. Tests use this with a mock.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema creates the run tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS match_runs (
			id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			input_name TEXT NOT NULL,
			master_name TEXT NOT NULL,
			input_rows INTEGER NOT NULL,
			master_rows INTEGER NOT NULL,
			strategy TEXT NOT NULL,
			threshold DOUBLE PRECISION NOT NULL,
			matches INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS match_records (
			run_id UUID NOT NULL REFERENCES match_runs(id) ON DELETE CASCADE,
			input_index INTEGER NOT NULL,
			master_index INTEGER NOT NULL,
			score DOUBLE PRECISION NOT NULL,
			input_name TEXT NOT NULL,
			master_name TEXT NOT NULL,
			input_address TEXT NOT NULL,
			master_address TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_match_records_run ON match_records(run_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// RunInfo describes one strategy run being saved.
type RunInfo struct {
	InputName  string
	MasterName string
	InputRows  int
	MasterRows int
	Strategy   match.Strategy
	Threshold  float64
}

// SaveRun stores one strategy's matches in a single transaction and returns
// the new run id.
func (s *Store) SaveRun(ctx context.Context, info RunInfo, records []match.Record) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO match_runs (id, created_at, input_name, master_name, input_rows, master_rows, strategy, threshold, matches)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, time.Now().UTC(), info.InputName, info.MasterName,
		info.InputRows, info.MasterRows, string(info.Strategy), info.Threshold, len(records))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO match_records (run_id, input_index, master_index, score, input_name, master_name, input_address, master_address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx, id, rec.InputIndex, rec.MasterIndex, rec.Score,
			rec.InputName, rec.MasterName, rec.InputAddress, rec.MasterAddress)
		if err != nil {
			return "", fmt.Errorf("failed to insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// RunSummary is one saved run as listed by RecentRuns.
type RunSummary struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	InputName  string    `json:"input_name"`
	MasterName string    `json:"master_name"`
	Strategy   string    `json:"strategy"`
	Threshold  float64   `json:"threshold"`
	Matches    int       `json:"matches"`
}

// RecentRuns lists saved runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, input_name, master_name, strategy, threshold, matches
		 FROM match_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.InputName, &r.MasterName, &r.Strategy, &r.Threshold, &r.Matches); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
