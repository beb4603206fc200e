// Package config loads the process configuration from a config file, the
// environment and command-line flags. A Config is fixed once loaded.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"codeberg.org/snonux/jsontranslate/internal/policy"
	"codeberg.org/snonux/jsontranslate/internal/translation"
)

// EnvPrefix prefixes environment overrides, e.g. JSONTRANSLATE_TARGET_LANGUAGE.
const EnvPrefix = "JSONTRANSLATE"

var providers = map[string]bool{"openai": true, "gemini": true, "lambda": true}

// Config holds the settings of one process.
type Config struct {
	TargetLanguage   string
	Provider         string
	FallbackProvider string
	Environment      string

	OpenAI translation.OpenAIConfig
	Gemini translation.GeminiConfig
	Lambda translation.LambdaConfig

	Concurrency    int
	CallTimeout    time.Duration
	RequestTimeout time.Duration
	MaxDepth       int
	MaxBodyBytes   int64

	Exclude ExcludeConfig
	Breaker translation.BreakerConfig
	Server  ServerConfig
	Log     LogConfig
}

// ExcludeConfig selects the strings that are never translated.
type ExcludeConfig struct {
	Defaults     bool
	Patterns     []string
	Keys         []string
	Marker       string
	TargetScript bool
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string
	Format string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TargetLanguage: "ar",
		Provider:       "openai",
		Environment:    "production",
		Concurrency:    8,
		CallTimeout:    30 * time.Second,
		RequestTimeout: 2 * time.Minute,
		MaxDepth:       64,
		MaxBodyBytes:   4 << 20,
		Exclude: ExcludeConfig{
			Defaults:     true,
			Keys:         policy.DefaultSkipKeys,
			Marker:       "@@",
			TargetScript: true,
		},
		Breaker: translation.BreakerConfig{
			MaxFailures: 5,
			OpenTimeout: 30 * time.Second,
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// SetDefaults registers the built-in configuration with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("target_language", d.TargetLanguage)
	v.SetDefault("provider", d.Provider)
	v.SetDefault("fallback_provider", "")
	v.SetDefault("environment", d.Environment)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "")
	v.SetDefault("lambda.function_name", "")
	v.SetDefault("lambda.region", "")
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("call_timeout", d.CallTimeout)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("max_depth", d.MaxDepth)
	v.SetDefault("max_body_bytes", d.MaxBodyBytes)
	v.SetDefault("exclude.defaults", d.Exclude.Defaults)
	v.SetDefault("exclude.patterns", []string{})
	v.SetDefault("exclude.keys", d.Exclude.Keys)
	v.SetDefault("exclude.marker", d.Exclude.Marker)
	v.SetDefault("exclude.target_script", d.Exclude.TargetScript)
	v.SetDefault("breaker.max_failures", d.Breaker.MaxFailures)
	v.SetDefault("breaker.open_timeout", d.Breaker.OpenTimeout)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Init prepares v to read cfgFile, or .jsontranslate.yaml from $HOME or the
// working directory, and JSONTRANSLATE_ environment variables. A .env file
// in the working directory is loaded into the environment first.
func Init(v *viper.Viper, cfgFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: failed to load .env: %w", err)
	}

	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".jsontranslate")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

// Load builds and validates a Config from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		TargetLanguage:   v.GetString("target_language"),
		Provider:         strings.ToLower(v.GetString("provider")),
		FallbackProvider: strings.ToLower(v.GetString("fallback_provider")),
		Environment:      v.GetString("environment"),
		OpenAI: translation.OpenAIConfig{
			APIKey:  v.GetString("openai.api_key"),
			Model:   v.GetString("openai.model"),
			BaseURL: v.GetString("openai.base_url"),
		},
		Gemini: translation.GeminiConfig{
			APIKey: v.GetString("gemini.api_key"),
			Model:  v.GetString("gemini.model"),
		},
		Lambda: translation.LambdaConfig{
			FunctionName: v.GetString("lambda.function_name"),
			Region:       v.GetString("lambda.region"),
		},
		Concurrency:    v.GetInt("concurrency"),
		CallTimeout:    v.GetDuration("call_timeout"),
		RequestTimeout: v.GetDuration("request_timeout"),
		MaxDepth:       v.GetInt("max_depth"),
		MaxBodyBytes:   v.GetInt64("max_body_bytes"),
		Exclude: ExcludeConfig{
			Defaults:     v.GetBool("exclude.defaults"),
			Patterns:     v.GetStringSlice("exclude.patterns"),
			Keys:         v.GetStringSlice("exclude.keys"),
			Marker:       v.GetString("exclude.marker"),
			TargetScript: v.GetBool("exclude.target_script"),
		},
		Breaker: translation.BreakerConfig{
			MaxFailures: v.GetUint32("breaker.max_failures"),
			OpenTimeout: v.GetDuration("breaker.open_timeout"),
		},
		Server: ServerConfig{
			Addr:        v.GetString("server.addr"),
			CORSOrigins: v.GetStringSlice("server.cors_origins"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
	}

	// The conventional provider variables are honoured as well.
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks c for values the service cannot run with.
func (c *Config) Validate() error {
	if _, err := language.Parse(c.TargetLanguage); err != nil {
		return fmt.Errorf("config: invalid target_language %q: %w", c.TargetLanguage, err)
	}
	if !providers[c.Provider] {
		return fmt.Errorf("config: unknown provider %q", c.Provider)
	}
	if c.FallbackProvider != "" && !providers[c.FallbackProvider] {
		return fmt.Errorf("config: unknown fallback_provider %q", c.FallbackProvider)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("config: concurrency must be positive, got %d", c.Concurrency)
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("config: call_timeout must be positive, got %s", c.CallTimeout)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("config: request_timeout must not be negative, got %s", c.RequestTimeout)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("config: max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}
	if _, err := policy.New(c.PolicyConfig()); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// PolicyConfig returns the eligibility policy settings.
func (c *Config) PolicyConfig() policy.Config {
	return policy.Config{
		UseDefaults:      c.Exclude.Defaults,
		Patterns:         c.Exclude.Patterns,
		SkipKeys:         c.Exclude.Keys,
		Marker:           c.Exclude.Marker,
		TargetLanguage:   c.TargetLanguage,
		SkipTargetScript: c.Exclude.TargetScript,
	}
}

// TranslationConfig returns the provider settings.
func (c *Config) TranslationConfig() *translation.Config {
	return &translation.Config{
		Provider: c.Provider,
		Fallback: c.FallbackProvider,
		OpenAI:   c.OpenAI,
		Gemini:   c.Gemini,
		Lambda:   c.Lambda,
		Breaker:  c.Breaker,
	}
}

// Logger builds the process logger writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: unknown log.level %q", s)
	}
}
