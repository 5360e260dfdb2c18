package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dwizi/board-agent/internal/chatlog"
	"github.com/dwizi/board-agent/internal/config"
	"github.com/dwizi/board-agent/internal/conversation"
	"github.com/dwizi/board-agent/internal/intent"
	"github.com/dwizi/board-agent/internal/mcpserver"
	"github.com/dwizi/board-agent/internal/promptwatch"
	"github.com/dwizi/board-agent/internal/store"
	"github.com/dwizi/board-agent/internal/taskagent"
)

type Runtime struct {
	cfg        config.Config
	logger     *slog.Logger
	store      *store.Store
	parser     *intent.Parser
	router     *taskagent.Router
	transcript *chatlog.Writer
	janitor    *Janitor
	prompts    *promptwatch.Service
	mcp        *mcpserver.Server
	serveMCP   func(ctx context.Context) error
}

func New(cfg config.Config, version string, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	sqlStore, err := store.New(cfg.DBPath, store.WithDefaultBoardName(cfg.DefaultBoardName))
	if err != nil {
		return nil, err
	}
	if err := sqlStore.AutoMigrate(context.Background()); err != nil {
		sqlStore.Close()
		return nil, err
	}

	janitor, err := NewJanitor(sqlStore, cfg.ContextPruneSchedule, logger)
	if err != nil {
		sqlStore.Close()
		return nil, err
	}

	parser := intent.New(intent.Config{
		Timeout: time.Duration(cfg.LLMTimeoutSec) * time.Second,
	}, newCompleter(cfg, logger.With("component", "llm")), logger)

	var prompts *promptwatch.Service
	if strings.TrimSpace(cfg.IntentPromptFile) != "" {
		prompts, err = promptwatch.New(cfg.IntentPromptFile, logger, parser.SetSystemPrompt)
		if err != nil {
			sqlStore.Close()
			return nil, err
		}
		prompts.Load()
	}

	contexts := conversation.NewStore(
		sqlStore,
		logger,
		conversation.WithTTL(time.Duration(cfg.ContextTTLMinutes)*time.Minute),
	)
	router, err := taskagent.New(sqlStore, sqlStore, parser, contexts, logger)
	if err != nil {
		if prompts != nil {
			_ = prompts.Close()
		}
		sqlStore.Close()
		return nil, err
	}

	runtime := &Runtime{
		cfg:        cfg,
		logger:     logger.With("component", "runtime"),
		store:      sqlStore,
		parser:     parser,
		router:     router,
		transcript: chatlog.New(cfg.TranscriptRoot),
		janitor:    janitor,
		prompts:    prompts,
	}
	runtime.mcp = mcpserver.New(runtime.Handler(SourceMCP), version, logger)
	runtime.serveMCP = runtime.mcp.Run
	return runtime, nil
}

func (r *Runtime) Store() *store.Store {
	return r.store
}

// Handler returns the task agent bound to a transport, recording transcripts when configured.
func (r *Runtime) Handler(source string) MessageRouter {
	return newTranscriptHandler(r.router, r.transcript, source, r.logger)
}

func (r *Runtime) Close() error {
	if r.prompts != nil {
		_ = r.prompts.Close()
	}
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}
