// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists analysis runs and builds a retrieval index.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/market-radar/pkg/types"
)

const (
	indexDir   = "index"
	exportsDir = "exports"
	dbFile     = "radar.db"
)

// Store manages the run-history SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// NewStore opens or creates the SQLite database at dataDir/index/radar.db.
// It creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "radar"
	}
	dbDir := filepath.Join(dataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dataDir:    dataDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			started_at TEXT NOT NULL,
			summary TEXT,
			report TEXT,
			backend_errors TEXT,
			result_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			position INTEGER,
			title TEXT,
			link TEXT,
			snippet TEXT,
			source TEXT,
			score REAL,
			date TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run_id ON results(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_source ON results(source)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='results_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE results_fts USING fts5(title, snippet, content=results, content_rowid=rowid)`,
			`CREATE TRIGGER results_ai AFTER INSERT ON results BEGIN
				INSERT INTO results_fts(rowid, title, snippet) VALUES (new.rowid, new.title, new.snippet);
			END`,
			`CREATE TRIGGER results_ad AFTER DELETE ON results BEGIN
				INSERT INTO results_fts(results_fts, rowid, title, snippet) VALUES('delete', old.rowid, old.title, old.snippet);
			END`,
			`CREATE TRIGGER results_au AFTER UPDATE ON results BEGIN
				INSERT INTO results_fts(results_fts, rowid, title, snippet) VALUES('delete', old.rowid, old.title, old.snippet);
				INSERT INTO results_fts(rowid, title, snippet) VALUES (new.rowid, new.title, new.snippet);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// SaveRun persists a completed run and its results transactionally. It sets
// run.ID to the assigned identifier.
func (s *Store) SaveRun(ctx context.Context, run *types.AnalysisRun) error {
	if run.Query == "" {
		return fmt.Errorf("run has no query")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	reportJSON, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	errorsJSON, _ := json.Marshal(run.BackendErrors)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (query, started_at, summary, report, backend_errors, result_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.Query, run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Report.Summary, string(reportJSON), string(errorsJSON), len(run.Results),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, position, title, link, snippet, source, score, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range run.Results {
		date := ""
		if !r.Date.IsZero() {
			date = r.Date.UTC().Format(time.RFC3339Nano)
		}
		if _, err := stmt.ExecContext(ctx,
			runID, r.Position, r.Title, r.Link, r.Snippet, r.Source, r.RelevanceScore, date,
		); err != nil {
			return fmt.Errorf("inserting result %q: %w", r.Link, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	run.ID = runID
	return nil
}

// DeleteRun removes a run and its results.
func (s *Store) DeleteRun(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("deleting results: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %d not found", id)
	}
	return tx.Commit()
}
