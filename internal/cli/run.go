package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/jsontranslate/internal"
	"codeberg.org/snonux/jsontranslate/internal/config"
	"codeberg.org/snonux/jsontranslate/internal/domain"
	"codeberg.org/snonux/jsontranslate/internal/httpapi"
	"codeberg.org/snonux/jsontranslate/internal/jsontree"
	"codeberg.org/snonux/jsontranslate/internal/processor"
	"codeberg.org/snonux/jsontranslate/internal/translation"
)

// NewTranslator builds the translator for a loaded configuration. Tests
// replace it with a stub.
var NewTranslator = func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (translation.Translator, error) {
	return translation.New(ctx, cfg.TranslationConfig(), logger)
}

// NewProcessor loads the configuration of cmd and builds a processor with
// the configured translator.
func NewProcessor(cmd *cobra.Command, flags *Flags) (*config.Config, *processor.Processor, *slog.Logger, error) {
	cfg, err := LoadConfig(cmd, flags)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := cfg.Logger(cmd.ErrOrStderr())

	tr, err := NewTranslator(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := tr.IsAvailable(); err != nil {
		logger.Warn("translator not available, every leaf will fail", "provider", tr.Name(), "error", err)
	}

	proc, err := processor.New(cfg, tr, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, proc, logger, nil
}

func newServeCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, proc, logger, err := NewProcessor(cmd, flags)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("starting jsontranslate",
				"version", internal.Version,
				"provider", proc.Translator().Name(),
				"target_language", cfg.TargetLanguage,
				"concurrency", cfg.Concurrency)

			return httpapi.NewServer(cfg, proc, logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&flags.Addr, "addr", flags.Addr, "Address to listen on")
	cmd.Flags().StringSliceVar(&flags.CORSOrigins, "cors-origin", nil, "Allowed CORS origin (repeatable)")

	return cmd
}

func newTranslateCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate [file]",
		Short: "Translate a JSON request body from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.Raw, "raw", false, "Print only the translated document instead of the response envelope")
	cmd.Flags().BoolVar(&flags.Bare, "bare", false, "Translate any JSON document; no payload member required")

	return cmd
}

func runTranslate(cmd *cobra.Command, args []string, flags *Flags) error {
	body, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	_, proc, _, err := NewProcessor(cmd, flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var result *domain.Result
	if flags.Bare {
		result, err = proc.ProcessDocument(ctx, body)
	} else {
		result, err = proc.ProcessRequest(ctx, body)
	}

	out := cmd.OutOrStdout()
	if err != nil {
		if data, encErr := domain.ErrorResponse(err).Encode(); encErr == nil && !flags.Raw {
			out.Write(data)
		}
		return err
	}

	if flags.Raw {
		data, err := jsontree.Marshal(result.Data)
		if err != nil {
			return fmt.Errorf("failed to encode document: %w", err)
		}
		_, err = fmt.Fprintf(out, "%s\n", data)
		return err
	}

	data, err := domain.NewResponse(result).Encode()
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return data, nil
}

func newModelsCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the OpenAI chat models available to the configured API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(cmd, flags)
			if err != nil {
				return err
			}

			lister := translation.NewOpenAITranslator(cfg.OpenAI)
			models, err := lister.ListModels(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Available chat models:")
			for _, model := range models {
				fmt.Fprintf(out, "  - %s\n", model)
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jsontranslate %s\n", internal.Version)
		},
	}
}
