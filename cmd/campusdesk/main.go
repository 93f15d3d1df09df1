package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/set-night/campusdesk/internal/config"
	"github.com/set-night/campusdesk/internal/service"
)

func main() {
	root := &cobra.Command{
		Use:          "campusdesk",
		Short:        "Student assistant over web chat, phone calls and Telegram",
		SilenceUsage: true,
	}
	root.AddCommand(serveCMD(), knowledgeCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment and installs the JSON logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newModel picks the configured provider. A missing credential is not an
// error: the service then answers with the unavailable reply.
func newModel(ctx context.Context, cfg *config.Config) (service.Model, error) {
	if cfg.ModelCredential() == "" {
		slog.Warn("no model credential configured, replies will be unavailable", "provider", cfg.ModelProvider)
		return nil, nil
	}

	switch cfg.ModelProvider {
	case "openrouter":
		return service.NewOpenRouterModel(cfg.OpenRouterKey, cfg.OpenRouterModel), nil
	case "gemini", "":
		m, err := service.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown MODEL_PROVIDER %q", cfg.ModelProvider)
	}
}

// buildKnowledge extracts the static document and aggregates sources into
// the first knowledge snapshot.
func buildKnowledge(ctx context.Context, cfg *config.Config, sources []string) *service.KnowledgeAggregator {
	static := service.NewDocumentExtractor(cfg.PDFPath).ExtractText()
	agg := service.NewKnowledgeAggregator(service.NewWebFetcher(), cfg.OrganizationName, config.WebContentBudget)
	agg.Initialize(ctx, static, sources)
	return agg
}
