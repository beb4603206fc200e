package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/jsontranslate/internal"
	"codeberg.org/snonux/jsontranslate/internal/config"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jsontranslate",
		Short: "Structure-preserving JSON translation service",
		Long: `jsontranslate translates every human-readable string of a JSON document
into a target language with an LLM, keeping keys, order, array lengths and
non-string values exactly as they were.

Examples:
  jsontranslate serve                        # Start the HTTP API
  jsontranslate translate request.json       # Translate a request body
  jsontranslate translate --bare -t fr < x   # Translate any JSON document
  jsontranslate models                       # List available OpenAI models`,
		Version:      internal.Version,
		SilenceUsage: true,
	}

	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newServeCommand(flags),
		newTranslateCommand(flags),
		newModelsCommand(flags),
		newVersionCommand(),
	)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	pf := cmd.PersistentFlags()

	// Global flags
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.jsontranslate.yaml)")
	pf.StringVarP(&flags.TargetLanguage, "target-language", "t", flags.TargetLanguage, "Target language as a BCP 47 tag (e.g. ar, fr, pt-BR)")
	pf.StringVar(&flags.Provider, "provider", flags.Provider, "Translation provider: openai, gemini or lambda")
	pf.StringVar(&flags.Fallback, "fallback-provider", "", "Provider to retry a failed translation with")
	pf.IntVarP(&flags.Concurrency, "concurrency", "c", flags.Concurrency, "Maximum concurrent translation calls per request")
	pf.DurationVar(&flags.CallTimeout, "call-timeout", flags.CallTimeout, "Timeout of a single translation call")
	pf.DurationVar(&flags.RequestTimeout, "request-timeout", flags.RequestTimeout, "Timeout of a whole request (0 disables)")
	pf.IntVar(&flags.MaxDepth, "max-depth", flags.MaxDepth, "Maximum nesting depth of accepted documents")
	pf.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn or error")
	pf.StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: text or json")

	// Provider flags
	pf.StringVar(&flags.OpenAIModel, "openai-model", "", "OpenAI chat model (default: gpt-4o-mini)")
	pf.StringVar(&flags.GeminiModel, "gemini-model", "", "Gemini model (default: gemini-2.0-flash)")
	pf.StringVar(&flags.LambdaFunction, "lambda-function", "", "Name of the translator Lambda function")
}

// bindFlagsToViper binds every flag of cmd that has a configuration key.
func bindFlagsToViper(cmd *cobra.Command, v *viper.Viper) error {
	names := make([]string, 0, len(flagKeys))
	for name := range flagKeys {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		flag := lookupFlag(cmd, name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(flagKeys[name], flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag
	}
	return cmd.InheritedFlags().Lookup(name)
}

// LoadConfig reads the configuration for cmd: config file, environment and
// the flags given on the command line, in increasing priority.
func LoadConfig(cmd *cobra.Command, flags *Flags) (*config.Config, error) {
	v := viper.New()
	if err := config.Init(v, flags.CfgFile); err != nil {
		return nil, err
	}
	if err := bindFlagsToViper(cmd, v); err != nil {
		return nil, err
	}
	return config.Load(v)
}
