// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/market-radar/pkg/types"
)

// QueryFile is the on-disk representation of a search query and its results.
// The analyst can save a search to a file and reload it later without
// re-querying APIs.
type QueryFile struct {
	Query   QueryParams          `yaml:"query"`
	Config  QueryFileConfig      `yaml:"config"`
	Results []types.SearchResult `yaml:"results"`
	Summary QuerySummary         `yaml:"summary"`
}

// QueryParams stores the query parameters in a serializable form.
type QueryParams struct {
	Text     string   `yaml:"text,omitempty"`
	Keywords []string `yaml:"keywords,omitempty"`
}

// QueryFileConfig stores the search configuration that produced the results.
type QueryFileConfig struct {
	MaxResults  int    `yaml:"max_results"`
	Language    string `yaml:"language,omitempty"`
	Country     string `yaml:"country,omitempty"`
	RecencyBias bool   `yaml:"recency_bias"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total             int       `yaml:"total"`
	DuplicatesRemoved int       `yaml:"duplicates_removed"`
	BackendErrors     []string  `yaml:"backend_errors,omitempty"`
	Timestamp         time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves query parameters and results to a YAML file.
func WriteQueryFile(path string, query Query, cfg types.SearchConfig, out SearchOutput) error {
	qf := QueryFile{
		Query: QueryParams{
			Text:     query.Text,
			Keywords: query.Keywords,
		},
		Config: QueryFileConfig{
			MaxResults:  cfg.MaxResults,
			Language:    cfg.Language,
			Country:     cfg.Country,
			RecencyBias: cfg.RecencyBias,
		},
		Results: out.Results,
		Summary: QuerySummary{
			Total:             len(out.Results),
			DuplicatesRemoved: out.DupsRemoved,
			BackendErrors:     out.BackendErrors,
			Timestamp:         time.Now(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// ToQuery converts stored QueryParams back into a Query struct.
func (p QueryParams) ToQuery() Query {
	return Query{
		Text:     p.Text,
		Keywords: p.Keywords,
	}
}
