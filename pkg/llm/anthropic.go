package llm

import (
	"context"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/apperrors"
	"github.com/vizquery/vizquery-engine/pkg/retry"
)

const defaultMaxTokens = 2000

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// NewAnthropicClient creates a client for the Anthropic API.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.Model == "" {
		return nil, apperrors.New(apperrors.KindMissingParameters, "model is required")
	}
	if cfg.APIKey == "" {
		return nil, apperrors.New(apperrors.KindMissingParameters, "api key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(cfg.APIKey),
		model:     cfg.Model,
		maxTokens: maxTokens,
		logger:    logger.Named("llm"),
	}, nil
}

// Analyze implements Client.
func (c *AnthropicClient) Analyze(ctx context.Context, question, sourceContext string) (*Analysis, error) {
	prompt := buildPrompt(question, sourceContext)

	start := time.Now()
	resp, err := retry.DoWithResult(ctx, nil, func() (anthropic.MessagesResponse, error) {
		return c.client.CreateMessages(ctx, anthropic.MessagesRequest{
			Model:     anthropic.Model(c.model),
			System:    systemPrompt,
			MaxTokens: c.maxTokens,
			Messages: []anthropic.Message{
				{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
					{Type: anthropic.MessagesContentTypeText, Text: &prompt},
				}},
			},
		})
	})
	if err != nil {
		c.logger.Error("model request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, apperrors.Wrap(apperrors.KindExternalModelUnavailable, "model request failed", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			text = *block.Text
			break
		}
	}
	if text == "" {
		return nil, apperrors.New(apperrors.KindExternalModelMalformedResponse, "model returned no text content")
	}

	c.logger.Debug("model request completed",
		zap.Duration("elapsed", time.Since(start)))

	return parseAnalysis(text)
}

// GetModel implements Client.
func (c *AnthropicClient) GetModel() string {
	return c.model
}

var _ Client = (*AnthropicClient)(nil)
