package translation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

// LambdaConfig configures the remote translator function provider.
type LambdaConfig struct {
	FunctionName string
	Region       string
}

// LambdaInvoker is the part of the AWS Lambda client the provider uses.
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// lambdaRequest is the payload format of translator functions.
type lambdaRequest struct {
	Texts      []string `json:"texts"`
	TargetLang string   `json:"target_lang"`
}

// lambdaResponse is the answer format of translator functions.
type lambdaResponse struct {
	Translations []string `json:"translations"`
	Error        string   `json:"error,omitempty"`
}

// LambdaTranslator delegates to a translator deployed as an AWS Lambda
// function, such as a machine translation model. It never returns notes.
type LambdaTranslator struct {
	functionName string
	client       LambdaInvoker
}

// NewLambdaTranslator creates a provider using the default AWS credential chain.
func NewLambdaTranslator(ctx context.Context, cfg LambdaConfig) (*LambdaTranslator, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewLambdaTranslatorWithClient(cfg.FunctionName, lambda.NewFromConfig(awsCfg)), nil
}

// NewLambdaTranslatorWithClient creates a provider around an existing client.
func NewLambdaTranslatorWithClient(functionName string, client LambdaInvoker) *LambdaTranslator {
	return &LambdaTranslator{functionName: functionName, client: client}
}

// Translate invokes the function with a single text.
func (t *LambdaTranslator) Translate(ctx context.Context, text, targetLang string) (Translation, error) {
	if err := t.IsAvailable(); err != nil {
		return Translation{}, err
	}

	payload, err := json.Marshal(lambdaRequest{Texts: []string{text}, TargetLang: targetLang})
	if err != nil {
		return Translation{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	result, err := t.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(t.functionName),
		Payload:      payload,
	})
	if err != nil {
		return Translation{}, fmt.Errorf("failed to invoke %s: %w", t.functionName, err)
	}

	if result.FunctionError != nil {
		return Translation{}, fmt.Errorf("lambda error: %s", *result.FunctionError)
	}

	var resp lambdaResponse
	if err := json.Unmarshal(result.Payload, &resp); err != nil {
		return Translation{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp.Error != "" {
		return Translation{}, fmt.Errorf("translator error: %s", resp.Error)
	}
	if len(resp.Translations) != 1 {
		return Translation{}, fmt.Errorf("%w: got %d translations, expected 1", ErrMalformedResponse, len(resp.Translations))
	}

	return Translation{Text: resp.Translations[0]}, nil
}

// Name returns the provider name
func (t *LambdaTranslator) Name() string {
	return "lambda"
}

// IsAvailable checks if the provider is properly configured
func (t *LambdaTranslator) IsAvailable() error {
	if t.functionName == "" {
		return fmt.Errorf("lambda translator: function name is required")
	}
	if t.client == nil {
		return fmt.Errorf("lambda translator: no client")
	}
	return nil
}
