// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/market-radar/pkg/types"
)

// RunSummary is the list view of a stored run.
type RunSummary struct {
	ID          int64     `json:"id" yaml:"id"`
	Query       string    `json:"query" yaml:"query"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	ResultCount int       `json:"result_count" yaml:"result_count"`
	Summary     string    `json:"summary" yaml:"summary"`
}

// ListRuns returns stored runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, started_at, result_count, summary
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var startedAt, summary string
		if err := rows.Scan(&rs.ID, &rs.Query, &startedAt, &rs.ResultCount, &summary); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339Nano, startedAt); parseErr == nil {
			rs.StartedAt = t
		}
		rs.Summary = summary
		out = append(out, rs)
	}
	return out, rows.Err()
}

// GetRun loads one run with its report and results.
func (s *Store) GetRun(ctx context.Context, id int64) (*types.AnalysisRun, error) {
	var run types.AnalysisRun
	var startedAt, reportJSON, errorsJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, query, started_at, report, backend_errors FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.Query, &startedAt, &reportJSON, &errorsJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run %d: %w", id, err)
	}

	if t, parseErr := time.Parse(time.RFC3339Nano, startedAt); parseErr == nil {
		run.StartedAt = t
	}
	if reportJSON != "" {
		if err := json.Unmarshal([]byte(reportJSON), &run.Report); err != nil {
			return nil, fmt.Errorf("parsing stored report: %w", err)
		}
	}
	if errorsJSON != "" {
		json.Unmarshal([]byte(errorsJSON), &run.BackendErrors)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT position, title, link, snippet, source, score, date
		 FROM results WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r types.SearchResult
		var date string
		if err := rows.Scan(&r.Position, &r.Title, &r.Link, &r.Snippet, &r.Source, &r.RelevanceScore, &date); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if date != "" {
			if t, parseErr := time.Parse(time.RFC3339Nano, date); parseErr == nil {
				r.Date = t
			}
		}
		run.Results = append(run.Results, r)
	}
	return &run, rows.Err()
}

// QueryOptions holds parameters for cross-run result retrieval.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over title and snippet.
	Query string

	// RunID filters by run. Zero means all runs.
	RunID int64

	// Source filters by search backend.
	Source string

	// MaxResults limits result count. Zero uses store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.RunID == 0 && q.Source == ""
}

// QueryResult is a stored search result with its run context.
type QueryResult struct {
	types.SearchResult
	RunID    int64  `json:"run_id" yaml:"run_id"`
	RunQuery string `json:"run_query" yaml:"run_query"`
}

// Retrieve searches stored results with optional full-text search and
// structured filters. Full-text queries are ranked by FTS5 relevance,
// structured-only queries sort by run and position.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	qb.WriteString(`SELECT r.position, r.title, r.link, r.snippet, r.source, r.score, r.date, r.run_id, runs.query
		FROM results r JOIN runs ON runs.id = r.run_id`)
	if useFTS {
		qb.WriteString(` JOIN results_fts ON results_fts.rowid = r.rowid`)
	}

	var conds []string
	if useFTS {
		conds = append(conds, `results_fts MATCH ?`)
		args = append(args, opts.Query)
	}
	if opts.RunID != 0 {
		conds = append(conds, `r.run_id = ?`)
		args = append(args, opts.RunID)
	}
	if opts.Source != "" {
		conds = append(conds, `r.source = ?`)
		args = append(args, opts.Source)
	}
	if len(conds) > 0 {
		qb.WriteString(` WHERE ` + strings.Join(conds, ` AND `))
	}

	if useFTS {
		qb.WriteString(` ORDER BY results_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.run_id DESC, r.position`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var out []QueryResult
	for rows.Next() {
		var qr QueryResult
		var date string
		if err := rows.Scan(&qr.Position, &qr.Title, &qr.Link, &qr.Snippet,
			&qr.Source, &qr.RelevanceScore, &date, &qr.RunID, &qr.RunQuery); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if date != "" {
			if t, parseErr := time.Parse(time.RFC3339Nano, date); parseErr == nil {
				qr.Date = t
			}
		}
		out = append(out, qr)
	}
	return out, rows.Err()
}
