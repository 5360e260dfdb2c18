package app

import (
	"log/slog"
	"strings"
	"time"

	"github.com/dwizi/board-agent/internal/config"
	"github.com/dwizi/board-agent/internal/llm"
	"github.com/dwizi/board-agent/internal/llm/anthropic"
	"github.com/dwizi/board-agent/internal/llm/gemini"
	"github.com/dwizi/board-agent/internal/llm/openai"
	"github.com/dwizi/board-agent/internal/llm/zai"
)

// newCompleter returns nil when the AI strategy is disabled or cannot authenticate, leaving the
// parser on rules alone.
func newCompleter(cfg config.Config, logger *slog.Logger) llm.Completer {
	if !cfg.LLMEnabled {
		logger.Info("ai intent parsing disabled")
		return nil
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	apiKey := strings.TrimSpace(cfg.LLMAPIKey)
	baseURL := strings.TrimSpace(cfg.LLMBaseURL)
	keyOptional := baseURL != "" && !llm.RequiresAPIKey(baseURL)
	if apiKey == "" && (!keyOptional || provider == "anthropic" || provider == "gemini") {
		logger.Info("ai intent parsing unavailable, no api key", "provider", provider)
		return nil
	}
	timeout := time.Duration(cfg.LLMTimeoutSec) * time.Second
	providerLogger := logger.With("provider", provider)

	switch provider {
	case "anthropic":
		return anthropic.New(anthropic.Config{
			APIKey:  apiKey,
			BaseURL: baseURL,
			Model:   cfg.LLMModel,
			Timeout: timeout,
		}, providerLogger)
	case "zai":
		return zai.New(zai.Config{
			APIKey:  apiKey,
			BaseURL: baseURL,
			Model:   cfg.LLMModel,
			Timeout: timeout,
		}, providerLogger)
	case "gemini":
		return gemini.New(gemini.Config{
			APIKey:  apiKey,
			BaseURL: baseURL,
			Model:   cfg.LLMModel,
			Timeout: timeout,
		}, providerLogger)
	default:
		return openai.New(openai.Config{
			APIKey:   apiKey,
			BaseURL:  baseURL,
			Model:    cfg.LLMModel,
			Timeout:  timeout,
			JSONMode: !keyOptional,
		}, providerLogger)
	}
}
