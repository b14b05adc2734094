package narration

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Provider names accepted by New
const (
	ProviderPerplexity = "perplexity"
	ProviderGemini     = "gemini"
	ProviderClaude     = "claude"
)

// Config selects and configures a narration backend
type Config struct {
	Provider        string
	PerplexityKey   string
	PerplexityModel string
	GeminiKey       string
	GeminiModel     string
	AnthropicKey    string
	ClaudeModel     string
}

// New creates the narration service for the configured provider.
// A provider without an API key yields Unavailable, so the bot still starts.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderPerplexity
	}

	switch provider {
	case ProviderPerplexity:
		if cfg.PerplexityKey == "" {
			return unavailable(provider, logger), nil
		}
		logger.Info("Narration backend selected", zap.String("provider", provider))
		return FromCompleter(NewPerplexity(cfg.PerplexityKey, cfg.PerplexityModel, logger)), nil

	case ProviderGemini:
		if cfg.GeminiKey == "" {
			return unavailable(provider, logger), nil
		}
		g, err := NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini backend: %w", err)
		}
		logger.Info("Narration backend selected", zap.String("provider", provider))
		return FromCompleter(g), nil

	case ProviderClaude:
		if cfg.AnthropicKey == "" {
			return unavailable(provider, logger), nil
		}
		c, err := NewClaude(cfg.AnthropicKey, cfg.ClaudeModel, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create claude backend: %w", err)
		}
		logger.Info("Narration backend selected", zap.String("provider", provider))
		return FromCompleter(c), nil

	default:
		return nil, fmt.Errorf("unknown narration provider %q", cfg.Provider)
	}
}

func unavailable(provider string, logger *zap.Logger) Service {
	logger.Warn("Narration API key is not set, narration is disabled", zap.String("provider", provider))
	return Unavailable{}
}
