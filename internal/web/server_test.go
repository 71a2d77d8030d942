// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/pdiddy/market-radar/internal/radar"
	"github.com/pdiddy/market-radar/internal/report"
	"github.com/pdiddy/market-radar/internal/search"
	"github.com/pdiddy/market-radar/internal/store"
	"github.com/pdiddy/market-radar/pkg/types"
)

type stubBackend struct {
	results []types.SearchResult
	err     error
}

func (b *stubBackend) Name() string { return "serpapi" }

func (b *stubBackend) Search(context.Context, search.Query, types.SearchConfig) ([]types.SearchResult, error) {
	return b.results, b.err
}

type stubAI struct {
	resp report.AIResponse
	err  error
}

func (a *stubAI) Analyze(context.Context, string) (report.AIResponse, error) {
	return a.resp, a.err
}

// newTestServer wires a dashboard server around stubbed search and AI
// backends with a store in a temp directory.
func newTestServer(t *testing.T, backend search.Backend, ai report.AIBackend) (*Server, *store.Store) {
	t.Helper()
	st, err := store.NewStore(types.StoreConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	engine := &radar.Engine{
		Backends: []search.Backend{backend},
		AI:       ai,
		Store:    st,
	}
	return NewServer(engine, st, types.WebConfig{}, zerolog.Nop()), st
}

func happyBackend() *stubBackend {
	return &stubBackend{results: []types.SearchResult{
		{Title: "Acme", Link: "https://a.example", Snippet: "Acme leads the market.", Source: "serpapi", RelevanceScore: 1.0},
		{Title: "Globex", Link: "https://g.example", Snippet: "Globex undercuts on price.", Source: "serpapi", RelevanceScore: 0.5},
	}}
}

func happyAI() *stubAI {
	return &stubAI{resp: report.AIResponse{
		Summary: "Acme dominates; Globex competes on price.",
		Competitors: []report.AICompetitor{
			{Name: "Acme", Rank: 1, Score: 0.9},
			{Name: "Globex", Rank: 2, Score: 0.6},
		},
	}}
}

// waitForRun follows a job's websocket stream until a terminal event.
func waitForRun(t *testing.T, ts *httptest.Server, jobID int64) Event {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/jobs/" + strconv.FormatInt(jobID, 10)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(10 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("websocket read: %v", err)
		}
		if ev.terminal() {
			return ev
		}
	}
}

func startJob(t *testing.T, ts *httptest.Server, query string) int64 {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/analyze", "application/json",
		strings.NewReader(`{"query":"`+query+`"}`))
	if err != nil {
		t.Fatalf("POST /api/analyze: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	var body struct {
		JobID int64 `json:"job_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.JobID == 0 {
		t.Fatal("job_id missing from response")
	}
	return body.JobID
}

func TestAnalyzeEndToEnd(t *testing.T) {
	s, _ := newTestServer(t, happyBackend(), happyAI())
	ts := httptest.NewServer(s.router())
	defer ts.Close()

	jobID := startJob(t, ts, "widgets")
	ev := waitForRun(t, ts, jobID)
	if ev.Stage != "done" {
		t.Fatalf("terminal event = %+v, want done", ev)
	}
	if ev.RunID == 0 {
		t.Fatal("done event missing run_id")
	}

	// The finished run is available over the API.
	resp, err := http.Get(ts.URL + "/api/runs/" + strconv.FormatInt(ev.RunID, 10))
	if err != nil {
		t.Fatalf("GET run: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var run types.AnalysisRun
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.Query != "widgets" || len(run.Results) != 2 {
		t.Errorf("run = %+v", run)
	}
	if run.Report.Summary == "" {
		t.Error("run report summary is empty")
	}
}

func TestAnalyzeFailurePublishesError(t *testing.T) {
	s, _ := newTestServer(t, &stubBackend{}, happyAI())
	ts := httptest.NewServer(s.router())
	defer ts.Close()

	jobID := startJob(t, ts, "widgets")
	ev := waitForRun(t, ts, jobID)
	if ev.Stage != "error" {
		t.Fatalf("terminal event = %+v, want error", ev)
	}
	if ev.Error == "" {
		t.Error("error event missing message")
	}
}

func TestAnalyzeRejectsBadRequests(t *testing.T) {
	s, _ := newTestServer(t, happyBackend(), happyAI())
	ts := httptest.NewServer(s.router())
	defer ts.Close()

	for _, body := range []string{``, `{}`, `{"query":""}`, `not json`} {
		resp, err := http.Post(ts.URL+"/api/analyze", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestListRunsEmpty(t *testing.T) {
	s, _ := newTestServer(t, happyBackend(), happyAI())
	ts := httptest.NewServer(s.router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/runs")
	if err != nil {
		t.Fatalf("GET runs: %v", err)
	}
	defer resp.Body.Close()
	var runs []store.RunSummary
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("runs = %v, want empty list", runs)
	}
}

func TestGetRunNotFound(t *testing.T) {
	s, _ := newTestServer(t, happyBackend(), happyAI())
	ts := httptest.NewServer(s.router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/runs/999")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestExportCSV(t *testing.T) {
	s, _ := newTestServer(t, happyBackend(), happyAI())
	ts := httptest.NewServer(s.router())
	defer ts.Close()

	jobID := startJob(t, ts, "widgets")
	ev := waitForRun(t, ts, jobID)

	resp, err := http.Get(ts.URL + "/api/runs/" + strconv.FormatInt(ev.RunID, 10) + "/export.csv")
	if err != nil {
		t.Fatalf("GET export: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "competitive_analysis.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	records, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	// Header plus one row per result.
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[0][0] != "Rank" || records[1][1] != "Acme" {
		t.Errorf("records = %v", records)
	}
}

func TestSocketUnknownJob(t *testing.T) {
	s, _ := newTestServer(t, happyBackend(), happyAI())
	ts := httptest.NewServer(s.router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ws/jobs/42")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestIndexServed(t *testing.T) {
	s, _ := newTestServer(t, happyBackend(), happyAI())
	ts := httptest.NewServer(s.router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "Market Radar") {
		t.Error("index page missing dashboard markup")
	}
}
