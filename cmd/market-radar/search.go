// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/market-radar/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search web APIs without running the analysis",
	Long: `Search queries the configured web search backends (SerpAPI, Brave
Search) for a keyword or phrase. Results are deduplicated across sources and
ranked by relevance. A search can be saved to a query file and reloaded
later without re-querying the APIs.`,
	RunE: runSearch,
}

func init() {
	addSearchFlags(searchCmd)
	searchCmd.Flags().String("keywords", "", "additional keywords (comma-separated)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("save", "", "save the query and results to a YAML file")
	searchCmd.Flags().String("load", "", "load results from a previously saved query file")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	// Load mode: replay a saved search without touching the APIs.
	if load, _ := cmd.Flags().GetString("load"); load != "" {
		qf, err := search.ReadQueryFile(load)
		if err != nil {
			return err
		}
		out := search.SearchOutput{
			Results:       qf.Results,
			DupsRemoved:   qf.Summary.DuplicatesRemoved,
			BackendErrors: qf.Summary.BackendErrors,
		}
		return printSearchOutput(out, jsonOutput)
	}

	query := search.Query{Text: strings.Join(args, " ")}
	if keywords, _ := cmd.Flags().GetString("keywords"); keywords != "" {
		for _, k := range strings.Split(keywords, ",") {
			if k = strings.TrimSpace(k); k != "" {
				query.Keywords = append(query.Keywords, k)
			}
		}
	}
	if query.IsEmpty() {
		return fmt.Errorf("provide a keyword or phrase to search for")
	}

	cfg := searchConfigFromFlags(cmd)
	backends, err := searchBackends(cfg)
	if err != nil {
		return err
	}

	out, err := search.Search(context.Background(), query, backends, cfg, os.Stderr)
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetString("save"); save != "" {
		if err := search.WriteQueryFile(save, query, cfg, out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved query to %s\n", save)
	}

	return printSearchOutput(out, jsonOutput)
}

func printSearchOutput(out search.SearchOutput, jsonOutput bool) error {
	if jsonOutput {
		return search.FormatJSON(out, os.Stdout)
	}
	search.FormatTable(out, os.Stdout)
	return nil
}
