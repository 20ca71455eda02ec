// Package llm provides the external natural-language analysis clients.
package llm

import "context"

// Analysis is the structured answer produced by the external model: a
// natural-language insight, a chart suggestion, and (for relational
// sources) a candidate SQL query.
type Analysis struct {
	Answer         string `json:"answer"`
	SuggestedChart string `json:"suggested_chart"`
	SQLQuery       string `json:"sql_query"`
}

// Client translates a natural-language question plus source context
// (schema description or a data dump) into a structured Analysis.
type Client interface {
	Analyze(ctx context.Context, question string, sourceContext string) (*Analysis, error)

	// GetModel returns the configured model name, for logging.
	GetModel() string
}

// Config holds provider-independent client configuration.
type Config struct {
	Provider  string // "openai" or "anthropic"
	Endpoint  string // Base URL override; optional for hosted APIs
	Model     string
	APIKey    string
	MaxTokens int
}
