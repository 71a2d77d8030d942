// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/market-radar/internal/radar"
	"github.com/pdiddy/market-radar/internal/report"
	"github.com/pdiddy/market-radar/internal/search"
	"github.com/pdiddy/market-radar/internal/store"
	"github.com/pdiddy/market-radar/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "market-radar/0.1"
)

// addSearchFlags registers the flags shared by search, analyze, and serve.
func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().Int("max-results", 10, "maximum number of results to return")
	cmd.Flags().String("language", "en", "interface language parameter (hl)")
	cmd.Flags().String("country", "us", "geolocation parameter (gl)")
	cmd.Flags().Bool("serpapi", true, "query the SerpAPI backend")
	cmd.Flags().Bool("brave", true, "query the Brave Search backend")
	cmd.Flags().Bool("recency-bias", false, "boost recently published results")
}

// searchConfigFromFlags assembles the search stage configuration from
// command flags, viper settings, and loaded secrets.
func searchConfigFromFlags(cmd *cobra.Command) types.SearchConfig {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	language, _ := cmd.Flags().GetString("language")
	country, _ := cmd.Flags().GetString("country")
	useSerp, _ := cmd.Flags().GetBool("serpapi")
	useBrave, _ := cmd.Flags().GetBool("brave")
	recencyBias, _ := cmd.Flags().GetBool("recency-bias")

	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
		MaxResults:        maxResults,
		Language:          language,
		Country:           country,
		EnableSerpAPI:     useSerp,
		EnableBrave:       useBrave,
		SerpAPIKey:        secretDefault("serpapi-api-key", viper.GetString("serpapi_api_key")),
		BraveAPIKey:       secretDefault("brave-api-key", viper.GetString("brave_api_key")),
		RequestsPerSecond: viper.GetFloat64("requests_per_second"),
		RecencyBias:       recencyBias,
		RecencyBiasWindow: viper.GetDuration("recency_bias_window"),
	}
}

// searchBackends builds the enabled backends that have a key configured.
func searchBackends(cfg types.SearchConfig) ([]search.Backend, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	var backends []search.Backend
	if cfg.EnableSerpAPI && cfg.SerpAPIKey != "" {
		backends = append(backends, &search.SerpAPIBackend{Client: client, APIKey: cfg.SerpAPIKey})
	}
	if cfg.EnableBrave && cfg.BraveAPIKey != "" {
		backends = append(backends, &search.BraveBackend{Client: client, APIKey: cfg.BraveAPIKey})
	}
	if len(backends) == 0 {
		return nil, fmt.Errorf("no search backend available: put a key in .secrets/serpapi-api-key or .secrets/brave-api-key")
	}
	return backends, nil
}

// reportConfigFromFlags assembles the analysis stage configuration.
func reportConfigFromFlags(cmd *cobra.Command) types.ReportConfig {
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("model")
	}
	return types.ReportConfig{
		Model:   model,
		APIKey:  secretDefault("openai-api-key", viper.GetString("openai_api_key")),
		BaseURL: viper.GetString("openai_base_url"),
	}
}

// buildEngine wires the full pipeline for the analyze and serve commands.
// The caller owns the returned store and must close it.
func buildEngine(cmd *cobra.Command) (*radar.Engine, *store.Store, error) {
	searchCfg := searchConfigFromFlags(cmd)
	backends, err := searchBackends(searchCfg)
	if err != nil {
		return nil, nil, err
	}

	reportCfg := reportConfigFromFlags(cmd)
	ai, err := report.NewOpenAIBackend(reportCfg)
	if err != nil {
		return nil, nil, err
	}

	dataDir, _ := cmd.Flags().GetString("data-dir")
	st, err := store.NewStore(types.StoreConfig{DataDir: dataDir})
	if err != nil {
		return nil, nil, err
	}

	fetchEnabled, _ := cmd.Flags().GetBool("fetch")

	engine := &radar.Engine{
		Backends: backends,
		AI:       ai,
		Store:    st,
		Cfg: types.PipelineConfig{
			Search: searchCfg,
			Fetch: types.FetchConfig{
				HTTPConfig: types.HTTPConfig{
					Timeout:   defaultTimeout,
					UserAgent: defaultUserAgent,
				},
				Enabled: fetchEnabled,
			},
			Report: reportCfg,
			Store:  types.StoreConfig{DataDir: dataDir},
		},
	}
	return engine, st, nil
}
