// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package web serves the market-radar dashboard: report view, results
// table, competitor chart, CSV download, and live run progress.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"github.com/pdiddy/market-radar/internal/radar"
	"github.com/pdiddy/market-radar/internal/store"
	"github.com/pdiddy/market-radar/pkg/types"
)

//go:embed static/*
var staticFiles embed.FS

const defaultAddr = "localhost:8710"

// Server is the dashboard HTTP server.
type Server struct {
	addr       string
	engine     *radar.Engine
	store      *store.Store
	broker     *Broker
	log        zerolog.Logger
	httpServer *http.Server
}

// NewServer builds a dashboard server around an engine and its store.
func NewServer(engine *radar.Engine, st *store.Store, cfg types.WebConfig, log zerolog.Logger) *Server {
	addr := cfg.Addr
	if addr == "" {
		addr = defaultAddr
	}

	s := &Server{
		addr:   addr,
		engine: engine,
		store:  st,
		broker: NewBroker(),
		log:    log,
	}

	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 60 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 60 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

func (s *Server) router() *httprouter.Router {
	r := httprouter.New()

	r.HandlerFunc(http.MethodGet, "/", s.handleIndex)
	r.Handler(http.MethodGet, "/static/*filepath", http.FileServer(http.FS(staticFiles)))

	r.HandlerFunc(http.MethodPost, "/api/analyze", s.handleAnalyze)
	r.HandlerFunc(http.MethodGet, "/api/runs", s.handleListRuns)
	r.GET("/api/runs/:id", s.handleGetRun)
	r.GET("/api/runs/:id/export.csv", s.handleExportCSV)
	r.GET("/ws/jobs/:id", s.handleJobSocket)

	return r
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("dashboard listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("http server error")
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// URL returns the address the dashboard is reachable at.
func (s *Server) URL() string {
	return "http://" + s.addr + "/"
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	data, err := fs.ReadFile(staticFiles, "static/index.html")
	if err != nil {
		http.Error(w, "dashboard assets missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// analyzeRequest is the POST /api/analyze body.
type analyzeRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("query is required"))
		return
	}

	job := s.broker.Create(req.Query)
	s.log.Info().Int64("job", job.ID).Str("query", req.Query).Msg("analysis started")

	go s.runJob(job)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]int64{"job_id": job.ID})
}

// runJob executes the pipeline for a dashboard job and publishes progress.
func (s *Server) runJob(job *Job) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	progress := func(stage, message string, pct int) {
		// The engine's own "done" is followed by our final event carrying
		// the run ID, so suppress it here.
		if stage == "done" {
			return
		}
		s.broker.Publish(job.ID, Event{Stage: stage, Message: message, Pct: pct})
	}

	run, err := s.engine.Run(ctx, job.Query, jobLogWriter{s.log, job.ID}, progress)
	if err != nil {
		s.log.Error().Int64("job", job.ID).Err(err).Msg("analysis failed")
		s.broker.Publish(job.ID, Event{Stage: "error", Message: err.Error(), Error: err.Error()})
		return
	}

	s.log.Info().Int64("job", job.ID).Int64("run", run.ID).Msg("analysis complete")
	s.broker.Publish(job.ID, Event{Stage: "done", Message: "analysis complete", Pct: 100, RunID: run.ID})
}

// jobLogWriter routes pipeline warnings into the server log.
type jobLogWriter struct {
	log zerolog.Logger
	job int64
}

func (w jobLogWriter) Write(p []byte) (int, error) {
	w.log.Debug().Int64("job", w.job).Msg(string(p))
	return len(p), nil
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(r.Context(), 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	writeJSON(w, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid run id"))
		return
	}
	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, run)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid run id"))
		return
	}
	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="competitive_analysis.csv"`)
	if err := store.WriteCSV(w, run); err != nil {
		s.log.Error().Err(err).Msg("csv export failed")
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
