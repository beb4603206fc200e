package translation

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// GeminiTranslator translates with the Gemini API.
type GeminiTranslator struct {
	apiKey string
	model  string
	client *genai.Client
}

// NewGeminiTranslator creates a Gemini translator. Without an API key the
// translator is returned unconfigured and IsAvailable reports why.
func NewGeminiTranslator(ctx context.Context, cfg GeminiConfig) (*GeminiTranslator, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	t := &GeminiTranslator{apiKey: cfg.APIKey, model: model}
	if cfg.APIKey == "" {
		return t, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	t.client = client

	return t, nil
}

// Translate sends text with the fixed system prompt and decodes the JSON answer.
func (t *GeminiTranslator) Translate(ctx context.Context, text, targetLang string) (Translation, error) {
	if err := t.IsAvailable(); err != nil {
		return Translation{}, err
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt(targetLang), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0),
		ResponseMIMEType:  "application/json",
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, genai.Text(UserPrompt(text)), config)
	if err != nil {
		return Translation{}, fmt.Errorf("Gemini API error: %w", err)
	}

	return parseLLMResponse(resp.Text())
}

// Name returns the provider name
func (t *GeminiTranslator) Name() string {
	return "gemini"
}

// IsAvailable checks if the provider is properly configured
func (t *GeminiTranslator) IsAvailable() error {
	if t.apiKey == "" || t.client == nil {
		return fmt.Errorf("Gemini %w", ErrNoAPIKey)
	}
	return nil
}
