package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Environment string
	DataDir     string
	DBPath      string
	LogLevel    string

	ContextTTLMinutes    int
	ContextPruneSchedule string
	DefaultBoardName     string
	TranscriptRoot       string
	IntentPromptFile     string

	LLMEnabled    bool
	LLMProvider   string // openai | anthropic | zai | gemini
	LLMBaseURL    string
	LLMAPIKey     string
	LLMModel      string
	LLMTimeoutSec int
}

func FromEnv() Config {
	dataDir := stringOrDefault("BOARD_AGENT_DATA_DIR", "/data")
	dbPath := stringOrDefault("BOARD_AGENT_DB_PATH", filepath.Join(dataDir, "board-agent", "board.sqlite"))

	return Config{
		Environment: stringOrDefault("BOARD_AGENT_ENV", "development"),
		DataDir:     dataDir,
		DBPath:      dbPath,
		LogLevel:    logLevelOrDefault("BOARD_AGENT_LOG_LEVEL", "info"),

		ContextTTLMinutes:    intOrDefault("BOARD_AGENT_CONTEXT_TTL_MINUTES", 30),
		ContextPruneSchedule: stringOrDefault("BOARD_AGENT_CONTEXT_PRUNE_SCHEDULE", "@every 10m"),
		DefaultBoardName:     stringOrDefault("BOARD_AGENT_DEFAULT_BOARD_NAME", "Personal"),
		TranscriptRoot:       strings.TrimSpace(os.Getenv("BOARD_AGENT_TRANSCRIPT_ROOT")),
		IntentPromptFile:     strings.TrimSpace(os.Getenv("BOARD_AGENT_INTENT_PROMPT_FILE")),

		LLMEnabled:    boolOrDefault("BOARD_AGENT_LLM_ENABLED", true),
		LLMProvider:   providerOrDefault("BOARD_AGENT_LLM_PROVIDER", "openai"),
		LLMBaseURL:    strings.TrimSpace(os.Getenv("BOARD_AGENT_LLM_BASE_URL")),
		LLMAPIKey:     strings.TrimSpace(os.Getenv("BOARD_AGENT_LLM_API_KEY")),
		LLMModel:      strings.TrimSpace(os.Getenv("BOARD_AGENT_LLM_MODEL")),
		LLMTimeoutSec: intOrDefault("BOARD_AGENT_LLM_TIMEOUT_SECONDS", 10),
	}
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
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

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func boolOrDefault(name string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func providerOrDefault(name, fallback string) string {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch value {
	case "openai", "anthropic", "zai", "gemini":
		return value
	case "z.ai", "glm":
		return "zai"
	case "google":
		return "gemini"
	default:
		return fallback
	}
}

func logLevelOrDefault(name, fallback string) string {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch value {
	case "debug", "info", "warn", "error":
		return value
	case "warning":
		return "warn"
	default:
		return fallback
	}
}
