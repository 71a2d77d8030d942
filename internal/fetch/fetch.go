// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch enriches search results with readable page content.
package fetch

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/pdiddy/market-radar/pkg/types"
)

const (
	defaultMinSnippetLen = 120
	defaultMaxContentLen = 5000
	defaultMaxPages      = 6
)

// fetchArticle extracts readable text from a URL. Package-level var for
// test substitution.
var fetchArticle = func(link string, timeout time.Duration) (string, error) {
	article, err := readability.FromURL(link, timeout)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

// Enrich fetches page content for results whose snippets are too short to
// summarize well and fills SearchResult.Content with the extracted text.
// Per-page failures are reported to w and skipped; Enrich never fails a run.
// It returns the number of pages fetched.
func Enrich(ctx context.Context, results []types.SearchResult, cfg types.FetchConfig, w io.Writer) int {
	minLen := cfg.MinSnippetLen
	if minLen <= 0 {
		minLen = defaultMinSnippetLen
	}
	maxLen := cfg.MaxContentLen
	if maxLen <= 0 {
		maxLen = defaultMaxContentLen
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	fetched := 0
	for i := range results {
		if fetched >= maxPages {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if len(results[i].Snippet) >= minLen || results[i].Link == "" {
			continue
		}

		text, err := fetchArticle(results[i].Link, timeout)
		if err != nil {
			fmt.Fprintf(w, "warning: fetch %s: %v\n", results[i].Link, err)
			continue
		}

		text = strings.TrimSpace(text)
		if len(text) <= len(results[i].Snippet) {
			continue
		}
		if len(text) > maxLen {
			text = text[:maxLen]
		}
		results[i].Content = text
		fetched++
	}
	return fetched
}
