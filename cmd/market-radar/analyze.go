// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/market-radar/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [query...]",
	Short: "Run a full competitive analysis for a keyword",
	Long: `Analyze runs the full pipeline for a keyword or phrase: web search
across the configured backends, optional page-content fetching, model
analysis, and persistence. The report is printed as Markdown and the run
is saved to the local database with CSV and JSON exports.`,
	RunE: runAnalyze,
}

func init() {
	addSearchFlags(analyzeCmd)
	analyzeCmd.Flags().Bool("fetch", false, "fetch page content for results with short snippets")
	analyzeCmd.Flags().String("model", "", "model identifier for the analysis (default gpt-4-turbo)")
	analyzeCmd.Flags().String("data-dir", "radar", "base directory for stored data (contains index/, exports/)")
	analyzeCmd.Flags().String("output", "", "also write the report to a Markdown file")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a keyword or phrase to analyze")
	}
	query := strings.Join(args, " ")

	engine, st, err := buildEngine(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	progress := func(stage, message string, _ int) {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", stage, message)
	}

	run, err := engine.Run(context.Background(), query, os.Stderr, progress)
	if err != nil {
		return err
	}

	fmt.Printf("# Competitive analysis: %s\n\n%s\n", run.Query, run.Report.Summary)
	for _, c := range run.Report.Competitors {
		fmt.Printf("\n%d. %s (score %.2f)\n", c.Rank, c.Name, c.Score)
	}
	fmt.Printf("\nSaved as run %d with %d result(s).\n", run.ID, len(run.Results))

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := report.WriteMarkdown(output, *run); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", output)
	}
	return nil
}
