package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "market-radar/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of results to return (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Language is the interface language parameter sent to backends (default "en").
	Language string `json:"language" yaml:"language"`

	// Country is the geolocation parameter sent to backends (default "us").
	Country string `json:"country" yaml:"country"`

	// EnableSerpAPI controls whether the SerpAPI backend is used.
	EnableSerpAPI bool `json:"enable_serpapi" yaml:"enable_serpapi"`

	// EnableBrave controls whether the Brave Search backend is used.
	EnableBrave bool `json:"enable_brave" yaml:"enable_brave"`

	// SerpAPIKey authenticates SerpAPI requests.
	SerpAPIKey string `json:"serpapi_key,omitempty" yaml:"serpapi_key,omitempty"`

	// BraveAPIKey authenticates Brave Search requests.
	BraveAPIKey string `json:"brave_api_key,omitempty" yaml:"brave_api_key,omitempty"`

	// RequestsPerSecond caps the outbound request rate across backends
	// (default 2).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// RecencyBias boosts results published within RecencyBiasWindow.
	RecencyBias bool `json:"recency_bias" yaml:"recency_bias"`

	// RecencyBiasWindow is the time window for boosting recent results
	// (default 90 days).
	RecencyBiasWindow time.Duration `json:"recency_bias_window" yaml:"recency_bias_window"`
}

// FetchConfig holds settings for the page-content enrichment stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Enabled controls whether results are enriched with page content.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// MinSnippetLen is the snippet length below which the page is fetched
	// for readable content (default 120).
	MinSnippetLen int `json:"min_snippet_len" yaml:"min_snippet_len"`

	// MaxContentLen truncates extracted page text (default 5000).
	MaxContentLen int `json:"max_content_len" yaml:"max_content_len"`

	// MaxPages caps how many pages one run may fetch (default 6).
	MaxPages int `json:"max_pages" yaml:"max_pages"`
}

// ReportConfig holds settings for the analysis stage that calls the
// summarization API.
type ReportConfig struct {
	// Model is the model identifier (e.g. "gpt-4-turbo").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the summarization API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint, mainly for tests and proxies.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StoreConfig holds settings for the run-history store.
type StoreConfig struct {
	// DataDir is the base directory for stored data (contains index/, exports/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// WebConfig holds settings for the dashboard server.
type WebConfig struct {
	// Addr is the listen address (default "localhost:8710").
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeout and WriteTimeout bound request handling.
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Search SearchConfig `json:"search" yaml:"search"`
	Fetch  FetchConfig  `json:"fetch" yaml:"fetch"`
	Report ReportConfig `json:"report" yaml:"report"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Web    WebConfig    `json:"web" yaml:"web"`
}
