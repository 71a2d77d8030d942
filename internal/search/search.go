// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries web search APIs and returns unified, deduplicated results.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/time/rate"

	"github.com/pdiddy/market-radar/pkg/types"
)

// Backend searches a single web search API. Each backend (SerpAPI, Brave)
// implements this interface per the Strategy pattern.
type Backend interface {
	Name() string
	Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.SearchResult, error)
}

// Query holds the search parameters.
type Query struct {
	Text     string
	Keywords []string
}

// IsEmpty reports whether the query contains no searchable terms.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Text) == "" && len(q.Keywords) == 0
}

// Terms combines the free text and keywords into one query string.
func (q Query) Terms() string {
	parts := make([]string, 0, 1+len(q.Keywords))
	if q.Text != "" {
		parts = append(parts, q.Text)
	}
	parts = append(parts, q.Keywords...)
	return strings.Join(parts, " ")
}

// SearchOutput holds the results and dedup statistics.
type SearchOutput struct {
	Results       []types.SearchResult
	DupsRemoved   int
	BackendErrors []string
}

// Search fans out the query to all backends concurrently, deduplicates
// results, ranks them, and returns the top N. A shared rate limiter spaces
// the outbound API calls.
func Search(ctx context.Context, query Query, backends []Backend, cfg types.SearchConfig, w io.Writer) (SearchOutput, error) {
	if query.IsEmpty() {
		return SearchOutput{}, fmt.Errorf("query is empty: provide a keyword or phrase to analyze")
	}
	if len(backends) == 0 {
		return SearchOutput{}, fmt.Errorf("no search backends configured")
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	limiter := rate.NewLimiter(rate.Limit(rps), 1)

	type backendResult struct {
		results []types.SearchResult
		err     error
		name    string
	}

	ch := make(chan backendResult, len(backends))
	var wg sync.WaitGroup

	for _, b := range backends {
		wg.Add(1)
		go func(b Backend) {
			defer wg.Done()
			if err := limiter.Wait(ctx); err != nil {
				ch <- backendResult{err: err, name: b.Name()}
				return
			}
			results, err := b.Search(ctx, query, cfg)
			ch <- backendResult{results: results, err: err, name: b.Name()}
		}(b)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.SearchResult
	var backendErrors []string
	for br := range ch {
		if br.err != nil {
			msg := fmt.Sprintf("%s: %v", br.name, br.err)
			backendErrors = append(backendErrors, msg)
			fmt.Fprintf(w, "warning: backend %s failed: %v\n", br.name, br.err)
			continue
		}
		all = append(all, br.results...)
	}

	deduped, removed := deduplicate(all)

	if cfg.RecencyBias {
		window := cfg.RecencyBiasWindow
		if window <= 0 {
			window = defaultRecencyWindow
		}
		applyRecencyBias(deduped, window)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].RelevanceScore > deduped[j].RelevanceScore
	})
	for i := range deduped {
		deduped[i].Position = i + 1
	}

	if cfg.MaxResults > 0 && len(deduped) > cfg.MaxResults {
		deduped = deduped[:cfg.MaxResults]
	}

	return SearchOutput{
		Results:       deduped,
		DupsRemoved:   removed,
		BackendErrors: backendErrors,
	}, nil
}

// deduplicate merges results that share a normalized URL or normalized title.
func deduplicate(results []types.SearchResult) ([]types.SearchResult, int) {
	seen := make(map[string]int) // dedup key → index in deduped
	var deduped []types.SearchResult
	removed := 0

	for _, r := range results {
		key := ""
		if nl := normalizeLink(r.Link); nl != "" {
			key = "link:" + nl
		}
		if key != "" {
			if idx, ok := seen[key]; ok {
				mergeInto(&deduped[idx], r)
				removed++
				continue
			}
		}

		titleKey := "title:" + normalizeTitle(r.Title)
		if titleKey != "title:" {
			if idx, ok := seen[titleKey]; ok {
				mergeInto(&deduped[idx], r)
				removed++
				continue
			}
		}

		idx := len(deduped)
		deduped = append(deduped, r)
		if key != "" {
			seen[key] = idx
		}
		if titleKey != "title:" {
			seen[titleKey] = idx
		}
	}
	return deduped, removed
}

// mergeInto fills empty fields of dst from src and keeps the higher score.
func mergeInto(dst *types.SearchResult, src types.SearchResult) {
	if dst.Title == "" && src.Title != "" {
		dst.Title = src.Title
	}
	if dst.Snippet == "" && src.Snippet != "" {
		dst.Snippet = src.Snippet
	}
	if dst.Link == "" && src.Link != "" {
		dst.Link = src.Link
	}
	if dst.Date.IsZero() && !src.Date.IsZero() {
		dst.Date = src.Date
	}
	if src.RelevanceScore > dst.RelevanceScore {
		dst.RelevanceScore = src.RelevanceScore
	}
	if dst.Source != src.Source && !strings.Contains(dst.Source, src.Source) {
		dst.Source = dst.Source + "," + src.Source
	}
}

// normalizeLink reduces a URL to a stable dedup key: lowercased host without
// a "www." prefix, plus the path without a trailing slash. Query strings and
// fragments are dropped.
func normalizeLink(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(strings.ToLower(link), "/")
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	path := strings.TrimSuffix(u.Path, "/")
	return host + path
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// defaultRecencyWindow is the boost window when RecencyBias is enabled
// without an explicit window. Market coverage goes stale fast.
const defaultRecencyWindow = 90 * 24 * time.Hour

// applyRecencyBias boosts scores for results published within the window.
// Undated results are left alone.
func applyRecencyBias(results []types.SearchResult, window time.Duration) {
	now := time.Now()
	for i := range results {
		if results[i].Date.IsZero() {
			continue
		}
		age := now.Sub(results[i].Date)
		if age <= window {
			boost := 0.2 * (1.0 - float64(age)/float64(window))
			results[i].RelevanceScore = math.Min(1.0, results[i].RelevanceScore+boost)
		}
	}
}

// positionScore converts a source-assigned position into a relevance score:
// the first result of a backend gets 1.0 and the last gets 0.1.
func positionScore(i, total int) float64 {
	if total <= 1 {
		return 1.0
	}
	return 1.0 - float64(i)/float64(total-1)*0.9
}

// FormatTable writes results as a human-readable table to w.
func FormatTable(out SearchOutput, w io.Writer) {
	if len(out.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-50s  %-34s  %-6s  %s\n",
		"Rank", "Title", "Link", "Score", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 108))

	for i, r := range out.Results {
		title := truncate(r.Title, 50)
		link := truncate(r.Link, 34)
		fmt.Fprintf(w, "%-4d  %-50s  %-34s  %-6.2f  %s\n",
			i+1, title, link, r.RelevanceScore, r.Source)
	}

	fmt.Fprintf(w, "\n%d results", len(out.Results))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(out SearchOutput, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Results)
}

// truncate shortens s to max characters. Counts runes so table output never
// splits a multi-byte character.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
