package llm

import (
	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/apperrors"
)

// NewClient constructs the provider named in the config.
func NewClient(cfg *Config, logger *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIClient(cfg, logger)
	case "anthropic":
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, apperrors.Newf(apperrors.KindMissingParameters, "unknown llm provider: %s", cfg.Provider)
	}
}
