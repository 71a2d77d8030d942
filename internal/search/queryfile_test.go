// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/market-radar/pkg/types"
)

func TestQueryFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.yaml")

	query := Query{Text: "project management software", Keywords: []string{"pricing"}}
	cfg := types.SearchConfig{MaxResults: 10, Language: "en", Country: "us", RecencyBias: true}
	out := SearchOutput{
		Results: []types.SearchResult{
			{Title: "Acme", Link: "https://acme.example", Snippet: "Acme leads.", Source: "serpapi", Position: 1, RelevanceScore: 1.0},
		},
		DupsRemoved:   2,
		BackendErrors: []string{"brave: HTTP 500"},
	}

	if err := WriteQueryFile(path, query, cfg, out); err != nil {
		t.Fatalf("WriteQueryFile: %v", err)
	}

	qf, err := ReadQueryFile(path)
	if err != nil {
		t.Fatalf("ReadQueryFile: %v", err)
	}

	if got := qf.Query.ToQuery(); got.Text != query.Text || len(got.Keywords) != 1 {
		t.Errorf("query = %+v", got)
	}
	if qf.Config.MaxResults != 10 || qf.Config.Language != "en" || !qf.Config.RecencyBias {
		t.Errorf("config = %+v", qf.Config)
	}
	if len(qf.Results) != 1 || qf.Results[0].Title != "Acme" {
		t.Errorf("results = %+v", qf.Results)
	}
	if qf.Summary.Total != 1 || qf.Summary.DuplicatesRemoved != 2 {
		t.Errorf("summary = %+v", qf.Summary)
	}
	if qf.Summary.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestReadQueryFileMissing(t *testing.T) {
	if _, err := ReadQueryFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadQueryFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("{not yaml: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadQueryFile(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
