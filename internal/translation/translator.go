package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoAPIKey is returned by providers that are missing credentials.
	ErrNoAPIKey = errors.New("API key not found")

	// ErrMalformedResponse is returned when a provider answers with something
	// that is not a usable translation.
	ErrMalformedResponse = errors.New("malformed translation response")

	// ErrUnavailable is returned while a provider is switched off by its
	// circuit breaker.
	ErrUnavailable = errors.New("translator unavailable")

	// ErrCallTimeout is the context cause of a single call running out of
	// time. Callers set it with context.WithTimeoutCause.
	ErrCallTimeout = errors.New("translation call timed out")
)

// Translation is the translated form of one text.
type Translation struct {
	Text string
	// Note is set when the provider was unsure, typically about a proper noun.
	Note string
}

// Translator translates single texts into a target language.
type Translator interface {
	// Translate translates text into targetLang, a BCP 47 tag.
	Translate(ctx context.Context, text, targetLang string) (Translation, error)

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured
	IsAvailable() error
}

// Func adapts a function to the Translator interface.
type Func func(ctx context.Context, text, targetLang string) (Translation, error)

func (f Func) Translate(ctx context.Context, text, targetLang string) (Translation, error) {
	return f(ctx, text, targetLang)
}

func (f Func) Name() string { return "func" }

func (f Func) IsAvailable() error { return nil }

// llmResponse is the JSON object the LLM providers are instructed to return.
type llmResponse struct {
	Translation string `json:"translation"`
	Note        string `json:"note"`
}

// parseLLMResponse extracts a Translation from a model answer. Answers wrapped
// in a markdown code fence are accepted.
func parseLLMResponse(content string) (Translation, error) {
	content = stripCodeFence(strings.TrimSpace(content))

	var resp llmResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return Translation{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if strings.TrimSpace(resp.Translation) == "" {
		return Translation{}, fmt.Errorf("%w: empty translation", ErrMalformedResponse)
	}

	return Translation{
		Text: resp.Translation,
		Note: strings.TrimSpace(resp.Note),
	}, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
