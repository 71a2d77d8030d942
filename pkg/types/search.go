// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the market-radar pipeline.
package types

import "time"

// SearchResult represents a single web search hit returned by a search API
// backend. Each result carries the page metadata, the backend that found it,
// and a relevance score used for cross-backend ranking.
type SearchResult struct {
	// Title is the page title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Link is the result URL.
	Link string `json:"link" yaml:"link"`

	// Snippet is the short description or page excerpt.
	Snippet string `json:"snippet" yaml:"snippet"`

	// Source identifies which backend found this result (e.g. "serpapi", "brave").
	Source string `json:"source" yaml:"source"`

	// Position is the 1-based rank the source assigned to the result.
	Position int `json:"position" yaml:"position"`

	// Date is the publication date when the source provides one.
	Date time.Time `json:"date,omitempty" yaml:"date,omitempty"`

	// RelevanceScore is a value between 0.0 and 1.0 indicating relevance to the query.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// Content is the readable page text when the fetch stage enriched the
	// result, empty otherwise.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
}
