package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/caliper/internal/domain/model"
	"github.com/okian/caliper/pkg/metrics"

	// Register the pure-Go sqlite driver.
	_ "modernc.org/sqlite"
)

// defaultPragmas tune the connection for a single-writer service.
var defaultPragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
}

const schema = `
CREATE TABLE IF NOT EXISTS evaluations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	prompt TEXT NOT NULL,
	model TEXT NOT NULL,
	temperature REAL NOT NULL,
	top_p REAL NOT NULL,
	lexical_diversity REAL NOT NULL,
	query_coverage REAL NOT NULL,
	flesch_kincaid_grade REAL NOT NULL,
	repetition_penalty REAL NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evaluations_model ON evaluations(model);
CREATE INDEX IF NOT EXISTS idx_evaluations_params ON evaluations(model, temperature, top_p);
`

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithPragmas replaces the default connection pragmas.
func WithPragmas(pragmas []string) Option {
	return func(s *SQLiteStore) {
		if len(pragmas) > 0 {
			s.pragmas = pragmas
		}
	}
}

// SQLiteStore implements Store on a SQLite database file.
type SQLiteStore struct {
	db      *sql.DB
	path    string
	pragmas []string
}

// NewSQLiteStore opens (creating if needed) the database at path and
// bootstraps the schema.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		path:    path,
		pragmas: defaultPragmas,
	}

	for _, opt := range opts {
		opt(s)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOpenDatabase, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenDatabase, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpenDatabase, err)
	}
	s.db = db

	for _, pragma := range s.pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			_ = s.db.Close()
			return nil, fmt.Errorf("%w: %s: %w", ErrOpenDatabase, pragma, err)
		}
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		_ = s.db.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpenDatabase, err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Insert persists one evaluation row.
func (s *SQLiteStore) Insert(ctx context.Context, ev model.Evaluation) (model.Evaluation, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	// Timestamps are stored as RFC3339 text; the driver does not marshal
	// time.Time into a form SQLite's date functions understand.
	ev.CreatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO evaluations
			(prompt, model, temperature, top_p,
			 lexical_diversity, query_coverage, flesch_kincaid_grade, repetition_penalty,
			 created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.Prompt, ev.Model, ev.Temperature, ev.TopP,
		ev.LexicalDiversity, ev.QueryCoverage, ev.FleschKincaidGrade, ev.RepetitionPenalty,
		ev.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		metrics.RecordPersistenceError()
		return model.Evaluation{}, fmt.Errorf("insert evaluation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("insert evaluation: %w", err)
	}
	ev.ID = id

	metrics.RecordEvaluationPersisted()
	return ev, nil
}

// List returns evaluations ordered by id.
func (s *SQLiteStore) List(ctx context.Context, offset, limit int) ([]model.Evaluation, error) {
	if offset < 0 || limit < 1 {
		return nil, ErrInvalidPage
	}

	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, prompt, model, temperature, top_p,
			lexical_diversity, query_coverage, flesch_kincaid_grade, repetition_penalty,
			created_at
		 FROM evaluations ORDER BY id LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	evaluations := make([]model.Evaluation, 0, limit)
	for rows.Next() {
		var ev model.Evaluation
		var createdAt string
		if err := rows.Scan(
			&ev.ID, &ev.Prompt, &ev.Model, &ev.Temperature, &ev.TopP,
			&ev.LexicalDiversity, &ev.QueryCoverage, &ev.FleschKincaidGrade, &ev.RepetitionPenalty,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			ev.CreatedAt = ts
		}
		evaluations = append(evaluations, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}

	return evaluations, nil
}

// MetricRows returns the analytics projection of every stored row.
func (s *SQLiteStore) MetricRows(ctx context.Context) ([]MetricRow, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	rows, err := s.db.QueryContext(ctx,
		`SELECT model, temperature, top_p,
			lexical_diversity, query_coverage, flesch_kincaid_grade, repetition_penalty
		 FROM evaluations`,
	)
	if err != nil {
		return nil, fmt.Errorf("read metric rows: %w", err)
	}
	defer rows.Close()

	var result []MetricRow
	for rows.Next() {
		var r MetricRow
		if err := rows.Scan(
			&r.Model, &r.Temperature, &r.TopP,
			&r.Metrics.LexicalDiversity, &r.Metrics.QueryCoverage,
			&r.Metrics.FleschKincaidGrade, &r.Metrics.RepetitionPenalty,
		); err != nil {
			return nil, fmt.Errorf("scan metric row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read metric rows: %w", err)
	}

	return result, nil
}

// Count returns the number of stored evaluations.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count evaluations: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
