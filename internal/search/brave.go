// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/market-radar/internal/httputil"
	"github.com/pdiddy/market-radar/pkg/types"
)

// braveAPIBase is the Brave Search endpoint. Declared as a var so tests can
// substitute an httptest server.
var braveAPIBase = "https://api.search.brave.com/res/v1/web/search"

// braveMaxCount is the largest page size the Brave API accepts.
const braveMaxCount = 20

// BraveBackend queries the Brave Search API.
type BraveBackend struct {
	Client *http.Client
	APIKey string
}

// Name returns the backend identifier.
func (b *BraveBackend) Name() string { return "brave" }

// Search queries Brave Search and returns the web results.
func (b *BraveBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.SearchResult, error) {
	if b.APIKey == "" {
		return nil, fmt.Errorf("Brave Search key not configured")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	if maxResults > braveMaxCount {
		maxResults = braveMaxCount
	}

	params := url.Values{}
	params.Set("q", query.Terms())
	params.Set("count", fmt.Sprintf("%d", maxResults))
	if cfg.Country != "" {
		params.Set("country", cfg.Country)
	}
	reqURL := braveAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("X-Subscription-Token", b.APIKey)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Brave Search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Brave Search returned HTTP %d", resp.StatusCode)
	}

	var br braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return nil, fmt.Errorf("parsing Brave response: %w", err)
	}

	total := len(br.Web.Results)
	var results []types.SearchResult
	for i, item := range br.Web.Results {
		r := types.SearchResult{
			Title:          item.Title,
			Link:           item.URL,
			Snippet:        item.Description,
			Source:         "brave",
			Position:       i + 1,
			RelevanceScore: positionScore(i, total),
		}
		if item.PageAge != "" {
			if t, parseErr := time.Parse(time.RFC3339, item.PageAge); parseErr == nil {
				r.Date = t
			}
		}
		results = append(results, r)
	}
	return results, nil
}

// Brave Search API JSON structures.
type braveResponse struct {
	Web braveWebResults `json:"web"`
}

type braveWebResults struct {
	Results []braveResult `json:"results"`
}

type braveResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	PageAge     string `json:"page_age"`
}
