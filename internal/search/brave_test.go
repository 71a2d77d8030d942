// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/market-radar/pkg/types"
)

const braveFixture = `{
  "web": {
    "results": [
      {
        "title": "Acme Corp - Widgets",
        "url": "https://acme.example/widgets",
        "description": "Acme leads the widget market.",
        "page_age": "2026-03-14T09:00:00Z"
      },
      {
        "title": "Globex Widgets",
        "url": "https://globex.example",
        "description": "Globex undercuts on price."
      }
    ]
  }
}`

func TestBraveSearch(t *testing.T) {
	var gotToken, gotCount, gotCountry string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Subscription-Token")
		gotCount = r.URL.Query().Get("count")
		gotCountry = r.URL.Query().Get("country")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(braveFixture))
	}))
	defer srv.Close()

	oldBase := braveAPIBase
	braveAPIBase = srv.URL
	defer func() { braveAPIBase = oldBase }()

	b := &BraveBackend{APIKey: "bsk_test"}
	results, err := b.Search(context.Background(), Query{Text: "widgets"},
		types.SearchConfig{MaxResults: 5, Country: "de"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotToken != "bsk_test" {
		t.Errorf("X-Subscription-Token = %q", gotToken)
	}
	if gotCount != "5" || gotCountry != "de" {
		t.Errorf("count=%q country=%q", gotCount, gotCountry)
	}

	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	r := results[0]
	if r.Title != "Acme Corp - Widgets" || r.Link != "https://acme.example/widgets" {
		t.Errorf("results[0] = %+v", r)
	}
	if r.Source != "brave" || r.Position != 1 || r.RelevanceScore != 1.0 {
		t.Errorf("results[0] = %+v", r)
	}
	if r.Date.IsZero() || r.Date.Year() != 2026 {
		t.Errorf("Date = %v", r.Date)
	}
}

func TestBraveCountClamped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("count"); got != "20" {
			t.Errorf("count = %q, want clamped to 20", got)
		}
		w.Write([]byte(`{"web": {"results": []}}`))
	}))
	defer srv.Close()

	oldBase := braveAPIBase
	braveAPIBase = srv.URL
	defer func() { braveAPIBase = oldBase }()

	b := &BraveBackend{APIKey: "bsk_test"}
	if _, err := b.Search(context.Background(), Query{Text: "widgets"},
		types.SearchConfig{MaxResults: 50}); err != nil {
		t.Fatalf("Search: %v", err)
	}
}

func TestBraveMissingKey(t *testing.T) {
	b := &BraveBackend{}
	_, err := b.Search(context.Background(), Query{Text: "widgets"}, types.SearchConfig{})
	if err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestBraveServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	oldBase := braveAPIBase
	braveAPIBase = srv.URL
	defer func() { braveAPIBase = oldBase }()

	b := &BraveBackend{APIKey: "bsk_test"}
	_, err := b.Search(context.Background(), Query{Text: "widgets"}, types.SearchConfig{})
	if err == nil {
		t.Fatal("expected error on HTTP 422")
	}
}
