package translation

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Config holds the configuration for building a translator
type Config struct {
	Provider string // "openai", "gemini" or "lambda"
	Fallback string // optional second provider

	OpenAI  OpenAIConfig
	Gemini  GeminiConfig
	Lambda  LambdaConfig
	Breaker BreakerConfig
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: "openai",
		Breaker: BreakerConfig{
			MaxFailures: 5,
			OpenTimeout: 30 * time.Second,
		},
	}
}

// New creates the translator described by config: the primary provider behind
// a circuit breaker, optionally followed by a fallback behind its own breaker.
func New(ctx context.Context, config *Config, logger *slog.Logger) (Translator, error) {
	if config == nil {
		config = DefaultConfig()
	}

	primary, err := newProvider(ctx, config.Provider, config)
	if err != nil {
		return nil, err
	}
	primary = withBreaker(primary, config.Breaker, logger)

	if config.Fallback == "" || config.Fallback == config.Provider {
		return primary, nil
	}

	fallback, err := newProvider(ctx, config.Fallback, config)
	if err != nil {
		return nil, fmt.Errorf("fallback: %w", err)
	}
	fallback = withBreaker(fallback, config.Breaker, logger)

	return NewTranslatorWithFallback(primary, fallback, logger), nil
}

func newProvider(ctx context.Context, name string, config *Config) (Translator, error) {
	switch name {
	case "openai":
		return NewOpenAITranslator(config.OpenAI), nil
	case "gemini":
		return NewGeminiTranslator(ctx, config.Gemini)
	case "lambda":
		return NewLambdaTranslator(ctx, config.Lambda)
	default:
		return nil, fmt.Errorf("unknown translation provider: %s", name)
	}
}

func withBreaker(t Translator, cfg BreakerConfig, logger *slog.Logger) Translator {
	if cfg.MaxFailures == 0 {
		return t
	}
	return NewBreakerTranslator(t, cfg, logger)
}
