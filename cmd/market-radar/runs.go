// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/market-radar/internal/store"
	"github.com/pdiddy/market-radar/pkg/types"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage stored analysis runs (list, show, find, export, delete)",
	Long: `Runs manages the local run history. Use subcommands to list past
analyses, show a stored report, search results across runs, export a run
to CSV and JSON, or delete a run.`,
}

// --- list subcommand ---

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored analysis runs, newest first",
	RunE:  runRunsList,
}

func runRunsList(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := st.ListRuns(context.Background(), limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No stored runs.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-5s  %-19s  %-40s  %-7s  %s\n",
		"ID", "Started", "Query", "Results", "Summary")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, r := range runs {
		query := clip(r.Query, 40)
		summary := clip(strings.ReplaceAll(r.Summary, "\n", " "), 30)
		fmt.Fprintf(os.Stdout, "%-5d  %-19s  %-40s  %-7d  %s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), query, r.ResultCount, summary)
	}
	fmt.Fprintf(os.Stdout, "\n%d run(s)\n", len(runs))
	return nil
}

// --- show subcommand ---

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a stored analysis report",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.GetRun(context.Background(), id)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	fmt.Printf("# Competitive analysis: %s\n\n%s\n", run.Query, run.Report.Summary)
	for _, c := range run.Report.Competitors {
		fmt.Printf("\n%d. %s (score %.2f)\n", c.Rank, c.Name, c.Score)
		for _, s := range c.Strengths {
			fmt.Printf("  - strength: %s\n", s)
		}
		for _, w := range c.Weaknesses {
			fmt.Printf("  - weakness: %s\n", w)
		}
	}
	fmt.Printf("\nSources (%d):\n", len(run.Results))
	for _, r := range run.Results {
		fmt.Printf("  %d. %s - %s\n", r.Position, r.Title, r.Link)
	}
	return nil
}

// --- find subcommand ---

var runsFindCmd = &cobra.Command{
	Use:   "find [query]",
	Short: "Full-text search over stored results",
	Long: `Find searches result titles and snippets across all stored runs
using full-text search, optionally filtered by run ID or source backend.`,
	RunE: runRunsFind,
}

func runRunsFind(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	runID, _ := cmd.Flags().GetInt64("run")
	source, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := store.QueryOptions{
		Query:      strings.Join(args, " "),
		RunID:      runID,
		Source:     source,
		MaxResults: limit,
	}
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --run, or --source")
	}

	results, err := st.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-5s  %-40s  %-40s  %s\n", "Run", "Title", "Link", "Source")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, r := range results {
		title := clip(r.Title, 40)
		link := clip(r.Link, 40)
		fmt.Fprintf(os.Stdout, "%-5d  %-40s  %-40s  %s\n", r.RunID, title, link, r.Source)
	}
	fmt.Fprintf(os.Stdout, "\n%d result(s)\n", len(results))
	return nil
}

// --- export subcommand ---

var runsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a run to CSV and JSON files",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsExport,
}

func runRunsExport(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	csvPath, jsonPath, err := st.ExportRun(context.Background(), id)
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s and %s\n", csvPath, jsonPath)
	return nil
}

// --- delete subcommand ---

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored run and its results",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteRun(context.Background(), id); err != nil {
		return err
	}
	fmt.Printf("Deleted run %d\n", id)
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	return store.NewStore(types.StoreConfig{DataDir: dataDir})
}

// clip shortens s to max characters for table display. Counts runes so a
// multi-byte character is never split.
func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func parseRunID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid run ID %q", arg)
	}
	return id, nil
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	runsCmd.PersistentFlags().String("data-dir", "radar", "base directory for stored data (contains index/, exports/)")

	runsListCmd.Flags().Int("limit", 0, "maximum runs to list (0 = all)")
	runsListCmd.Flags().Bool("json", false, "output runs as JSON")

	runsShowCmd.Flags().Bool("json", false, "output the run as JSON")

	runsFindCmd.Flags().Int64("run", 0, "filter by run ID")
	runsFindCmd.Flags().String("source", "", "filter by source backend (serpapi, brave)")
	runsFindCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	runsFindCmd.Flags().Bool("json", false, "output results as JSON")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsFindCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsDeleteCmd)

	rootCmd.AddCommand(runsCmd)
}
