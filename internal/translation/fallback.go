package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// TranslatorWithFallback wraps a primary provider with a fallback option
type TranslatorWithFallback struct {
	primary  Translator
	fallback Translator
	logger   *slog.Logger
}

// NewTranslatorWithFallback creates a translator that falls back to secondary if primary fails
func NewTranslatorWithFallback(primary, fallback Translator, logger *slog.Logger) Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &TranslatorWithFallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Translate tries primary provider first, falls back to secondary on error
func (t *TranslatorWithFallback) Translate(ctx context.Context, text, targetLang string) (Translation, error) {
	res, err := t.primary.Translate(ctx, text, targetLang)
	if err == nil {
		return res, nil
	}
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return Translation{}, err
	}

	t.logger.Warn("primary translator failed, falling back",
		"primary", t.primary.Name(), "fallback", t.fallback.Name(), "error", err)

	return t.fallback.Translate(ctx, text, targetLang)
}

// Name returns the provider name
func (t *TranslatorWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", t.primary.Name(), t.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (t *TranslatorWithFallback) IsAvailable() error {
	primaryErr := t.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := t.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both translators unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
