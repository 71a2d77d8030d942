// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/market-radar/internal/web"
	"github.com/pdiddy/market-radar/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the browser dashboard",
	Long: `Serve starts the dashboard server. The dashboard accepts a keyword,
streams pipeline progress over a websocket, and renders the report, the
result table, a competitor chart, and a CSV download. Stored runs are
browsable as history.`,
	RunE: runServe,
}

func init() {
	addSearchFlags(serveCmd)
	serveCmd.Flags().Bool("fetch", false, "fetch page content for results with short snippets")
	serveCmd.Flags().String("model", "", "model identifier for the analysis (default gpt-4-turbo)")
	serveCmd.Flags().String("data-dir", "radar", "base directory for stored data (contains index/, exports/)")
	serveCmd.Flags().String("addr", "", "listen address (default localhost:8710)")
	serveCmd.Flags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	engine, st, err := buildEngine(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	level := zerolog.InfoLevel
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = viper.GetString("addr")
	}

	srv := web.NewServer(engine, st, types.WebConfig{Addr: addr}, log)
	srv.Start()
	fmt.Fprintf(os.Stderr, "Dashboard running at %s (Ctrl-C to stop)\n", srv.URL())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down")
	return srv.Stop()
}
