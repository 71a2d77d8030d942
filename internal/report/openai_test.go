// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/market-radar/pkg/types"
)

// chatCompletionFixture builds a minimal chat completions response whose
// first choice content is the given string.
func chatCompletionFixture(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4-turbo",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	})
	return string(body)
}

func newTestBackend(t *testing.T, handler http.HandlerFunc) *OpenAIBackend {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	backend, err := NewOpenAIBackend(types.ReportConfig{
		APIKey:  "test-key",
		Model:   "gpt-4-turbo",
		BaseURL: ts.URL,
	})
	if err != nil {
		t.Fatalf("NewOpenAIBackend: %v", err)
	}
	return backend
}

func TestNewOpenAIBackendRequiresKey(t *testing.T) {
	_, err := NewOpenAIBackend(types.ReportConfig{})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestOpenAIAnalyzeParsesResponse(t *testing.T) {
	payload := `{"summary": "Acme leads.", "competitors": [{"name": "Acme", "rank": 1, "score": 0.8}]}`
	var gotBody map[string]any

	backend := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatCompletionFixture(payload))
	})

	resp, err := backend.Analyze(context.Background(), "analyze widgets")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if resp.Summary != "Acme leads." {
		t.Errorf("Summary = %q", resp.Summary)
	}
	if len(resp.Competitors) != 1 || resp.Competitors[0].Name != "Acme" {
		t.Errorf("Competitors = %+v", resp.Competitors)
	}

	// The request must carry the system role and the model.
	if gotBody["model"] != "gpt-4-turbo" {
		t.Errorf("model = %v", gotBody["model"])
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "system" {
		t.Errorf("first message role = %v, want system", first["role"])
	}
}

func TestOpenAIAnalyzeStripsFence(t *testing.T) {
	fenced := "```json\n{\"summary\": \"ok\", \"competitors\": []}\n```"
	backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatCompletionFixture(fenced))
	})

	resp, err := backend.Analyze(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if resp.Summary != "ok" {
		t.Errorf("Summary = %q", resp.Summary)
	}
}

func TestOpenAIAnalyzeRejectsNonJSON(t *testing.T) {
	backend := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatCompletionFixture("Here is my analysis in prose."))
	})

	_, err := backend.Analyze(context.Background(), "prompt")
	if err == nil || !strings.Contains(err.Error(), "parsing AI response") {
		t.Fatalf("err = %v, want JSON parse error", err)
	}
}
