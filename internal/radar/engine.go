// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package radar orchestrates the analysis pipeline: search, enrich,
// summarize, persist, export.
package radar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/market-radar/internal/fetch"
	"github.com/pdiddy/market-radar/internal/report"
	"github.com/pdiddy/market-radar/internal/search"
	"github.com/pdiddy/market-radar/internal/store"
	"github.com/pdiddy/market-radar/pkg/types"
)

// ErrNoResults indicates that no backend returned a usable result. The run
// is not persisted in that case.
var ErrNoResults = errors.New("no results found")

// ProgressFunc receives pipeline stage updates. pct is 0-100.
type ProgressFunc func(stage, message string, pct int)

// Engine runs the analysis pipeline end to end. Store may be nil for
// search-only use; the run is then not persisted or exported.
type Engine struct {
	Backends []search.Backend
	AI       report.AIBackend
	Store    *store.Store
	Cfg      types.PipelineConfig
}

// Run executes one analysis: fan-out search, optional content enrichment,
// model analysis, persistence, and file export. Warnings are streamed to w;
// progress notifies each stage transition.
func (e *Engine) Run(ctx context.Context, queryText string, w io.Writer, progress ProgressFunc) (*types.AnalysisRun, error) {
	notify := func(stage, message string, pct int) {
		if progress != nil {
			progress(stage, message, pct)
		}
	}

	notify("searching", fmt.Sprintf("searching for %q", queryText), 10)

	out, err := search.Search(ctx, search.Query{Text: queryText}, e.Backends, e.Cfg.Search, w)
	if err != nil {
		return nil, err
	}
	if len(out.Results) == 0 {
		return nil, ErrNoResults
	}

	if e.Cfg.Fetch.Enabled {
		notify("fetching", "fetching page content", 35)
		n := fetch.Enrich(ctx, out.Results, e.Cfg.Fetch, w)
		if n > 0 {
			fmt.Fprintf(w, "enriched %d result(s) with page content\n", n)
		}
	}

	notify("analyzing", "generating competitive analysis", 55)

	rep, err := report.Build(ctx, e.AI, queryText, out.Results, e.Cfg.Report)
	if err != nil {
		return nil, err
	}

	run := &types.AnalysisRun{
		Query:         queryText,
		StartedAt:     time.Now(),
		Results:       out.Results,
		Report:        rep,
		BackendErrors: out.BackendErrors,
	}

	if e.Store != nil {
		notify("saving", "saving run", 85)
		if err := e.Store.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("saving run: %w", err)
		}
		csvPath, jsonPath, err := e.Store.ExportRun(ctx, run.ID)
		if err != nil {
			fmt.Fprintf(w, "warning: export failed: %v\n", err)
		} else {
			fmt.Fprintf(w, "exported %s and %s\n", csvPath, jsonPath)
		}
	}

	notify("done", "analysis complete", 100)
	return run, nil
}
