// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/market-radar/pkg/types"
)

// systemPrompt sets the role for the summarization API.
const systemPrompt = "You are an AI specializing in competitive analysis."

// analysisPromptTmpl is the prompt sent to the summarization API for one run.
// It renders the search results as "Title: Snippet (Link)" lines and
// instructs the model to respond with a structured JSON report.
var analysisPromptTmpl = template.Must(template.New("analysis").Parse(`Perform a competitive analysis of the market for "{{.Query}}" based on these search results:

{{range .Rows}}{{.}}
{{end}}
Respond with a JSON object and nothing else. The object must have:
- summary: the competitive analysis as free text (market landscape, positioning, notable gaps)
- competitors: an array of the competitors you identified, each with:
  - name: the competitor or product name
  - rank: 1-based market position (1 = strongest)
  - score: estimated visibility between 0.0 and 1.0
  - strengths: short phrases naming advantages mentioned in the results
  - weaknesses: short phrases naming gaps mentioned in the results

Example response:
{"summary": "The market is led by ...", "competitors": [{"name": "Acme", "rank": 1, "score": 0.9, "strengths": ["broad catalog"], "weaknesses": ["pricing"]}]}
`))

// renderPrompt executes the analysis prompt template for the query and results.
func renderPrompt(query string, results []types.SearchResult) (string, error) {
	rows := make([]string, 0, len(results))
	for _, r := range results {
		body := r.Snippet
		if r.Content != "" {
			body = r.Content
		}
		var b strings.Builder
		b.WriteString(r.Title)
		b.WriteString(": ")
		b.WriteString(body)
		if r.Link != "" {
			b.WriteString(" (")
			b.WriteString(r.Link)
			b.WriteString(")")
		}
		rows = append(rows, b.String())
	}

	var buf bytes.Buffer
	err := analysisPromptTmpl.Execute(&buf, struct {
		Query string
		Rows  []string
	}{Query: query, Rows: rows})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
