package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dwizi/board-agent/internal/chatlog"
	"github.com/dwizi/board-agent/internal/taskagent"
)

const (
	SourceMCP = "mcp"
	SourceCLI = "cli"
)

type MessageRouter interface {
	HandleMessage(ctx context.Context, input taskagent.MessageInput) string
}

// transcriptHandler records each exchange for one transport before returning the reply.
type transcriptHandler struct {
	router     MessageRouter
	transcript *chatlog.Writer
	source     string
	logger     *slog.Logger
}

func newTranscriptHandler(router MessageRouter, transcript *chatlog.Writer, source string, logger *slog.Logger) *transcriptHandler {
	return &transcriptHandler{
		router:     router,
		transcript: transcript,
		source:     source,
		logger:     logger,
	}
}

func (h *transcriptHandler) HandleMessage(ctx context.Context, input taskagent.MessageInput) string {
	h.appendChatLog(input, chatlog.DirectionInbound, input.UserID, input.Text)
	reply := h.router.HandleMessage(ctx, input)
	h.appendChatLog(input, chatlog.DirectionOutbound, "board-agent", reply)
	return reply
}

func (h *transcriptHandler) appendChatLog(input taskagent.MessageInput, direction, actor, text string) {
	if h.transcript == nil || strings.TrimSpace(text) == "" {
		return
	}
	err := h.transcript.Append(chatlog.Entry{
		WorkspaceID: input.WorkspaceID,
		Source:      h.source,
		ChannelID:   input.ChannelID,
		Direction:   direction,
		ActorID:     actor,
		Text:        text,
		Timestamp:   time.Now().UTC(),
	})
	if err != nil {
		h.logger.Warn("transcript append failed", "source", h.source, "channel_id", input.ChannelID, "error", err)
	}
}
