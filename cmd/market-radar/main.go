// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the market-radar CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/market-radar/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the market-radar CLI.
var rootCmd = &cobra.Command{
	Use:   "market-radar",
	Short: "Competitive analysis from live web search",
	Long: `market-radar researches a market segment end to end: it queries web
search APIs (SerpAPI, Brave Search) for a keyword, has a language model turn
the results into a competitive analysis report, and stores each run in a
local database for later retrieval and export.

Each pipeline stage is a subcommand: search runs the query fan-out alone,
analyze runs the full pipeline, runs manages stored analysis runs, and serve
starts the browser dashboard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env file is optional; deployments use the environment or .secrets/.
		godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./market-radar.yaml or ~/.config/market-radar/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("market-radar")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "market-radar"))
		}
	}

	viper.SetEnvPrefix("MARKET_RADAR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
