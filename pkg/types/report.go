// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Competitor is a single competitor identified by the analysis model.
type Competitor struct {
	// Name is the competitor or product name.
	Name string `json:"name" yaml:"name"`

	// Rank is the 1-based market position assigned by the model.
	Rank int `json:"rank" yaml:"rank"`

	// Score is a visibility estimate between 0.0 and 1.0, used for charting.
	Score float64 `json:"score" yaml:"score"`

	// Strengths lists notable advantages mentioned in the source results.
	Strengths []string `json:"strengths,omitempty" yaml:"strengths,omitempty"`

	// Weaknesses lists notable gaps mentioned in the source results.
	Weaknesses []string `json:"weaknesses,omitempty" yaml:"weaknesses,omitempty"`
}

// Report is the structured competitive-analysis output of the model.
type Report struct {
	// Summary is the free-text competitive analysis.
	Summary string `json:"summary" yaml:"summary"`

	// Competitors lists the competitors the model identified, in rank order.
	Competitors []Competitor `json:"competitors,omitempty" yaml:"competitors,omitempty"`
}

// AnalysisRun is one completed pipeline run: the query, the search results
// that fed the model, and the report it produced.
type AnalysisRun struct {
	// ID is the store-assigned run identifier.
	ID int64 `json:"id" yaml:"id"`

	// Query is the keyword or phrase the run analyzed.
	Query string `json:"query" yaml:"query"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// Results are the deduplicated, ranked search results.
	Results []SearchResult `json:"results" yaml:"results"`

	// Report is the model's competitive analysis.
	Report Report `json:"report" yaml:"report"`

	// BackendErrors records search backends that failed during the run.
	BackendErrors []string `json:"backend_errors,omitempty" yaml:"backend_errors,omitempty"`
}
