package translation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAITranslator translates with the OpenAI chat completion API.
type OpenAITranslator struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAITranslator creates a new OpenAI translator
func NewOpenAITranslator(cfg OpenAIConfig) *OpenAITranslator {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAITranslator{
		apiKey: cfg.APIKey,
		model:  model,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// Translate sends text with the fixed system prompt and decodes the JSON answer.
func (t *OpenAITranslator) Translate(ctx context.Context, text, targetLang string) (Translation, error) {
	if err := t.IsAvailable(); err != nil {
		return Translation{}, err
	}

	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: SystemPrompt(targetLang),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: UserPrompt(text),
			},
		},
		// A zero temperature would be dropped by omitempty.
		Temperature: math.SmallestNonzeroFloat32,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Translation{}, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Translation{}, fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
	}

	return parseLLMResponse(resp.Choices[0].Message.Content)
}

// Name returns the provider name
func (t *OpenAITranslator) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (t *OpenAITranslator) IsAvailable() error {
	if t.apiKey == "" {
		return fmt.Errorf("OpenAI %w", ErrNoAPIKey)
	}
	return nil
}

// ListModels returns the sorted IDs of the chat models available to the API key.
func (t *OpenAITranslator) ListModels(ctx context.Context) ([]string, error) {
	if err := t.IsAvailable(); err != nil {
		return nil, err
	}

	models, err := t.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	var chatModels []string
	for _, model := range models.Models {
		id := model.ID
		if strings.Contains(id, "tts") || strings.Contains(id, "audio") ||
			strings.Contains(id, "realtime") || strings.Contains(id, "transcribe") {
			continue
		}
		if strings.HasPrefix(id, "gpt") || strings.HasPrefix(id, "o1") ||
			strings.HasPrefix(id, "o3") || strings.HasPrefix(id, "o4") ||
			strings.Contains(id, "chat") {
			chatModels = append(chatModels, id)
		}
	}
	sort.Strings(chatModels)

	return chatModels, nil
}
