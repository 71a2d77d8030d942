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

// serpAPIBase is the SerpAPI search endpoint. Declared as a var so tests
// can substitute an httptest server.
var serpAPIBase = "https://serpapi.com/search.json"

// SerpAPIBackend queries SerpAPI for Google organic results.
type SerpAPIBackend struct {
	Client *http.Client
	APIKey string
}

// Name returns the backend identifier.
func (b *SerpAPIBackend) Name() string { return "serpapi" }

// Search queries SerpAPI and returns the organic results.
func (b *SerpAPIBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.SearchResult, error) {
	if b.APIKey == "" {
		return nil, fmt.Errorf("SerpAPI key not configured")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	language := cfg.Language
	if language == "" {
		language = "en"
	}
	country := cfg.Country
	if country == "" {
		country = "us"
	}

	params := url.Values{
		"engine":  {"google"},
		"q":       {query.Terms()},
		"hl":      {language},
		"gl":      {country},
		"num":     {fmt.Sprintf("%d", maxResults)},
		"api_key": {b.APIKey},
	}
	reqURL := serpAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("SerpAPI request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SerpAPI returned HTTP %d", resp.StatusCode)
	}

	var sr serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing SerpAPI response: %w", err)
	}
	if sr.Error != "" {
		return nil, fmt.Errorf("SerpAPI error: %s", sr.Error)
	}

	total := len(sr.OrganicResults)
	var results []types.SearchResult
	for i, item := range sr.OrganicResults {
		r := types.SearchResult{
			Title:          item.Title,
			Link:           item.Link,
			Snippet:        item.Snippet,
			Source:         "serpapi",
			Position:       item.Position,
			RelevanceScore: positionScore(i, total),
		}
		if r.Position == 0 {
			r.Position = i + 1
		}
		if item.Date != "" {
			if t, parseErr := time.Parse("Jan 2, 2006", item.Date); parseErr == nil {
				r.Date = t
			}
		}
		results = append(results, r)
	}
	return results, nil
}

// SerpAPI JSON structures.
type serpResponse struct {
	Error          string       `json:"error"`
	OrganicResults []serpResult `json:"organic_results"`
}

type serpResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Date     string `json:"date"`
}
