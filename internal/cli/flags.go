package cli

import (
	"time"

	"codeberg.org/snonux/jsontranslate/internal/config"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile        string
	TargetLanguage string
	Provider       string
	Fallback       string
	Concurrency    int
	CallTimeout    time.Duration
	RequestTimeout time.Duration
	MaxDepth       int
	LogLevel       string
	LogFormat      string

	// Provider flags
	OpenAIModel    string
	GeminiModel    string
	LambdaFunction string

	// serve flags
	Addr        string
	CORSOrigins []string

	// translate flags
	Raw  bool
	Bare bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	d := config.Default()
	return &Flags{
		TargetLanguage: d.TargetLanguage,
		Provider:       d.Provider,
		Concurrency:    d.Concurrency,
		CallTimeout:    d.CallTimeout,
		RequestTimeout: d.RequestTimeout,
		MaxDepth:       d.MaxDepth,
		LogLevel:       d.Log.Level,
		LogFormat:      d.Log.Format,
		Addr:           d.Server.Addr,
	}
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"target-language":   "target_language",
	"provider":          "provider",
	"fallback-provider": "fallback_provider",
	"concurrency":       "concurrency",
	"call-timeout":      "call_timeout",
	"request-timeout":   "request_timeout",
	"max-depth":         "max_depth",
	"log-level":         "log.level",
	"log-format":        "log.format",
	"openai-model":      "openai.model",
	"gemini-model":      "gemini.model",
	"lambda-function":   "lambda.function_name",
	"addr":              "server.addr",
	"cors-origin":       "server.cors_origins",
}
