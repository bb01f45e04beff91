package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"figaroflows/internal/model"
	"figaroflows/internal/store"
)

// Fixed-width so that created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ReplaceFlows stores records as the current flow set of (provider, year),
// dropping whatever an earlier run stored for the same key. A run without an
// ID gets a fresh one.
func (s *Store) ReplaceFlows(ctx context.Context, run model.Run, records []model.FlowRecord) (err error) {
	if run.Provider == "" {
		return errors.New("sqlite: run provider is required")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.RecordCount = len(records)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM flow_records WHERE provider = ? AND year = ?`,
		run.Provider, run.Year,
	); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO extraction_runs (run_id, provider, year, record_count, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Provider, run.Year, run.RecordCount, run.CreatedAt.UTC().Format(timeLayout)); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO flow_records (
			provider, year, seq, industry_code, flow_type, value, run_id
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, record := range records {
		if _, err = stmt.ExecContext(
			ctx,
			run.Provider,
			run.Year,
			i,
			record.IndustryCode,
			string(record.FlowType),
			record.Value,
			run.ID,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) ListFlows(ctx context.Context, provider string, year int) ([]model.FlowRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT industry_code, flow_type, value
		FROM flow_records
		WHERE provider = ? AND year = ?
		ORDER BY seq
	`, provider, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]model.FlowRecord, 0)
	for rows.Next() {
		var record model.FlowRecord
		var flowType string
		if err := rows.Scan(&record.IndustryCode, &flowType, &record.Value); err != nil {
			return nil, err
		}
		record.FlowType = model.FlowType(flowType)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Store) ListYears(ctx context.Context, provider string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT year
		FROM extraction_runs
		WHERE provider = ?
		ORDER BY year
	`, provider)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	years := make([]int, 0)
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, err
		}
		years = append(years, year)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return years, nil
}

// LatestRun returns the most recent run stored for (provider, year).
func (s *Store) LatestRun(ctx context.Context, provider string, year int) (model.Run, bool, error) {
	var run model.Run
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, provider, year, record_count, created_at
		FROM extraction_runs
		WHERE provider = ? AND year = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, provider, year).Scan(&run.ID, &run.Provider, &run.Year, &run.RecordCount, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, false, nil
	}
	if err != nil {
		return model.Run{}, false, err
	}
	run.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return model.Run{}, false, fmt.Errorf("sqlite: parse run created_at: %w", err)
	}
	return run, true, nil
}

func (s *Store) migrate() error {
	statements := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS extraction_runs (
			run_id TEXT PRIMARY KEY,
			provider TEXT NOT NULL,
			year INTEGER NOT NULL,
			record_count INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS flow_records (
			provider TEXT NOT NULL,
			year INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			industry_code TEXT NOT NULL,
			flow_type TEXT NOT NULL,
			value REAL NOT NULL,
			run_id TEXT NOT NULL REFERENCES extraction_runs(run_id),
			PRIMARY KEY (provider, year, seq)
		);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}

var _ store.Store = (*Store)(nil)
