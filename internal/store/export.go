// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdiddy/market-radar/pkg/types"
)

// Export file names match the shape the tool has always produced.
const (
	csvFileName  = "competitive_analysis.csv"
	jsonFileName = "competitive_analysis.json"
)

// csvHeader is the column order of exported CSV files.
var csvHeader = []string{"Rank", "Title", "Link", "Snippet", "Source", "Score", "Date"}

// WriteCSV writes the run's results as CSV to w.
func WriteCSV(w io.Writer, run *types.AnalysisRun) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range run.Results {
		date := ""
		if !r.Date.IsZero() {
			date = r.Date.Format("2006-01-02")
		}
		record := []string{
			strconv.Itoa(r.Position),
			r.Title,
			r.Link,
			r.Snippet,
			r.Source,
			strconv.FormatFloat(r.RelevanceScore, 'f', 2, 64),
			date,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// jsonExport is the JSON export shape: results plus the analysis.
type jsonExport struct {
	Query       string               `json:"query"`
	Summary     string               `json:"summary"`
	Competitors []types.Competitor   `json:"competitors,omitempty"`
	Results     []types.SearchResult `json:"results"`
}

// WriteJSON writes the run's results and summary as indented JSON to w.
func WriteJSON(w io.Writer, run *types.AnalysisRun) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonExport{
		Query:       run.Query,
		Summary:     run.Report.Summary,
		Competitors: run.Report.Competitors,
		Results:     run.Results,
	})
}

// ExportRun writes a run to dataDir/exports/competitive_analysis.{csv,json}
// and returns the written paths.
func (s *Store) ExportRun(ctx context.Context, id int64) (csvPath, jsonPath string, err error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return "", "", err
	}

	dir := filepath.Join(s.dataDir, exportsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating exports directory: %w", err)
	}

	csvPath = filepath.Join(dir, csvFileName)
	cf, err := os.Create(csvPath)
	if err != nil {
		return "", "", fmt.Errorf("creating %s: %w", csvPath, err)
	}
	defer cf.Close()
	if err := WriteCSV(cf, run); err != nil {
		return "", "", err
	}

	jsonPath = filepath.Join(dir, jsonFileName)
	jf, err := os.Create(jsonPath)
	if err != nil {
		return "", "", fmt.Errorf("creating %s: %w", jsonPath, err)
	}
	defer jf.Close()
	if err := WriteJSON(jf, run); err != nil {
		return "", "", err
	}

	return csvPath, jsonPath, nil
}
