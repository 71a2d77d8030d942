// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pdiddy/market-radar/pkg/types"
)

const defaultModel = "gpt-4-turbo"

// OpenAIBackend calls the OpenAI chat completions API to produce the
// competitive-analysis report.
type OpenAIBackend struct {
	client openai.Client
	model  string
}

// NewOpenAIBackend builds an OpenAI backend from config. BaseURL, when set,
// redirects the client to a proxy or test server.
func NewOpenAIBackend(cfg types.ReportConfig) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &OpenAIBackend{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Analyze sends the prompt to the chat completions API and parses the JSON
// report from the first choice.
func (b *OpenAIBackend) Analyze(ctx context.Context, prompt string) (AIResponse, error) {
	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(b.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return AIResponse{}, fmt.Errorf("calling OpenAI API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return AIResponse{}, fmt.Errorf("OpenAI API returned no choices")
	}

	text := stripCodeFence(resp.Choices[0].Message.Content)
	var aiResp AIResponse
	if err := json.Unmarshal([]byte(text), &aiResp); err != nil {
		return AIResponse{}, fmt.Errorf("parsing AI response JSON: %w", err)
	}
	return aiResp, nil
}

// stripCodeFence removes a Markdown code fence some models wrap around JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
