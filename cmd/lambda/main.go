// Package main is the entry point for the jsontranslate Lambda function.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/spf13/viper"

	"codeberg.org/snonux/jsontranslate/internal/config"
	"codeberg.org/snonux/jsontranslate/internal/lambdaapi"
	"codeberg.org/snonux/jsontranslate/internal/processor"
	"codeberg.org/snonux/jsontranslate/internal/translation"
)

func main() {
	ctx := context.Background()

	cfg, err := loadConfig(os.Getenv("JSONTRANSLATE_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := cfg.Logger(os.Stderr)

	tr, err := translation.New(ctx, cfg.TranslationConfig(), logger)
	if err != nil {
		logger.Error("failed to create translator", "error", err)
		os.Exit(1)
	}

	proc, err := processor.New(cfg, tr, logger)
	if err != nil {
		logger.Error("failed to create processor", "error", err)
		os.Exit(1)
	}

	handler := lambdaapi.NewHandler(proc, logger)
	if awsCfg, err := awsconfig.LoadDefaultConfig(ctx); err == nil {
		handler.Invoker = lambdasdk.NewFromConfig(awsCfg)
		handler.FunctionName = os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
	} else {
		logger.Warn("warmup fan-out disabled", "error", err)
	}

	lambda.Start(handler.Handle)
}

// loadConfig reads the configuration like the CLI does, with JSON logs.
func loadConfig(cfgFile string) (*config.Config, error) {
	v := viper.New()
	if err := config.Init(v, cfgFile); err != nil {
		return nil, err
	}
	// CloudWatch parses JSON lines.
	v.Set("log.format", "json")
	return config.Load(v)
}
