// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report turns ranked search results into a structured
// competitive-analysis report via a summarization API.
package report

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/pdiddy/market-radar/pkg/types"
)

// NoDataSummary is the report text used when a run produced no results.
// The summarization API is not called in that case.
const NoDataSummary = "No relevant data found for analysis."

// AIBackend abstracts the summarization API so tests can supply a mock.
// Each implementation receives a rendered prompt for one run and returns
// the structured response.
type AIBackend interface {
	Analyze(ctx context.Context, prompt string) (AIResponse, error)
}

// AIResponse is the structured response from the AI backend.
type AIResponse struct {
	Summary     string         `json:"summary"`
	Competitors []AICompetitor `json:"competitors"`
}

// AICompetitor is a single competitor as returned by the AI backend.
type AICompetitor struct {
	Name       string   `json:"name"`
	Rank       int      `json:"rank"`
	Score      float64  `json:"score"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Build produces a competitive-analysis report for the query from the given
// results. An empty result set short-circuits without calling the API.
func Build(ctx context.Context, backend AIBackend, query string, results []types.SearchResult, cfg types.ReportConfig) (types.Report, error) {
	if len(results) == 0 {
		return types.Report{Summary: NoDataSummary}, nil
	}

	prompt, err := renderPrompt(query, results)
	if err != nil {
		return types.Report{}, fmt.Errorf("rendering prompt: %w", err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	resp, err := callWithRetry(ctx, backend, prompt, maxRetries)
	if err != nil {
		return types.Report{}, fmt.Errorf("analyzing %q: %w", query, err)
	}

	rep, validationErrors := convertResponse(resp)
	if len(validationErrors) > 0 {
		return types.Report{}, fmt.Errorf("invalid analysis response: %s", strings.Join(validationErrors, "; "))
	}
	return rep, nil
}

// callWithRetry calls the AI backend with exponential backoff.
func callWithRetry(ctx context.Context, backend AIBackend, prompt string, maxRetries int) (AIResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return AIResponse{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := backend.Analyze(ctx, prompt)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return AIResponse{}, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// convertResponse validates the AI response and converts it to a Report.
func convertResponse(resp AIResponse) (types.Report, []string) {
	var errors []string

	if strings.TrimSpace(resp.Summary) == "" {
		errors = append(errors, "empty summary")
	}

	rep := types.Report{Summary: resp.Summary}
	for i, c := range resp.Competitors {
		if strings.TrimSpace(c.Name) == "" {
			errors = append(errors, fmt.Sprintf("competitor %d: empty name", i))
			continue
		}
		if c.Score < 0.0 || c.Score > 1.0 {
			errors = append(errors, fmt.Sprintf("competitor %d: score %f out of range [0,1]", i, c.Score))
			continue
		}
		rank := c.Rank
		if rank <= 0 {
			rank = i + 1
		}
		rep.Competitors = append(rep.Competitors, types.Competitor{
			Name:       c.Name,
			Rank:       rank,
			Score:      c.Score,
			Strengths:  c.Strengths,
			Weaknesses: c.Weaknesses,
		})
	}

	return rep, errors
}

// WriteMarkdown renders a completed run as a Markdown report file.
func WriteMarkdown(path string, run types.AnalysisRun) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Competitive analysis: %s\n\n", run.Query)
	if !run.StartedAt.IsZero() {
		fmt.Fprintf(&b, "_Generated %s_\n\n", run.StartedAt.Format("2006-01-02 15:04 MST"))
	}
	b.WriteString(run.Report.Summary)
	b.WriteString("\n")

	if len(run.Report.Competitors) > 0 {
		b.WriteString("\n## Competitors\n\n")
		for _, c := range run.Report.Competitors {
			fmt.Fprintf(&b, "### %d. %s (score %.2f)\n\n", c.Rank, c.Name, c.Score)
			for _, s := range c.Strengths {
				fmt.Fprintf(&b, "- strength: %s\n", s)
			}
			for _, wk := range c.Weaknesses {
				fmt.Fprintf(&b, "- weakness: %s\n", wk)
			}
			b.WriteString("\n")
		}
	}

	if len(run.Results) > 0 {
		b.WriteString("## Sources\n\n")
		for _, r := range run.Results {
			fmt.Fprintf(&b, "%d. [%s](%s) (%s)\n", r.Position, r.Title, r.Link, r.Source)
		}
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}
