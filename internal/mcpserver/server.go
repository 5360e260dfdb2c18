// Package mcpserver exposes the task agent as a Model Context Protocol tool so chat frontends
// can relay user messages over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dwizi/board-agent/internal/taskagent"
)

const ToolName = "board_message"

type Handler interface {
	HandleMessage(ctx context.Context, input taskagent.MessageInput) string
}

type Server struct {
	server  *sdkmcp.Server
	handler Handler
	logger  *slog.Logger
}

type messageArgs struct {
	Text        string `json:"text"`
	UserID      string `json:"user_id"`
	ChannelID   string `json:"channel_id"`
	WorkspaceID string `json:"workspace_id"`
}

func New(handler Handler, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(version) == "" {
		version = "dev"
	}
	s := &Server{
		server:  sdkmcp.NewServer(&sdkmcp.Implementation{Name: "board-agent", Version: version}, nil),
		handler: handler,
		logger:  logger.With("component", "mcpserver"),
	}
	s.server.AddTool(&sdkmcp.Tool{
		Name:        ToolName,
		Description: "Send one chat message to the task board assistant and get its reply.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text":         map[string]any{"type": "string", "description": "Raw message text, mentions allowed."},
				"user_id":      map[string]any{"type": "string"},
				"channel_id":   map[string]any{"type": "string"},
				"workspace_id": map[string]any{"type": "string"},
			},
			"required": []string{"text", "user_id", "channel_id", "workspace_id"},
		},
	}, s.handleMessageTool)
	return s
}

// Run serves the tool over stdin/stdout until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp stdio server starting", "tool", ToolName)
	err := s.server.Run(ctx, &sdkmcp.StdioTransport{})
	if err != nil && (errors.Is(err, context.Canceled) || ctx.Err() != nil) {
		return nil
	}
	return err
}

func (s *Server) Connect(ctx context.Context, transport sdkmcp.Transport) (*sdkmcp.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

func (s *Server) handleMessageTool(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
	var args messageArgs
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return toolError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
	}
	if missing := missingFields(args); len(missing) > 0 {
		return toolError("missing required fields: " + strings.Join(missing, ", ")), nil
	}
	reply := s.handler.HandleMessage(ctx, taskagent.MessageInput{
		Text:        args.Text,
		UserID:      strings.TrimSpace(args.UserID),
		ChannelID:   strings.TrimSpace(args.ChannelID),
		WorkspaceID: strings.TrimSpace(args.WorkspaceID),
	})
	return &sdkmcp.CallToolResult{Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: reply}}}, nil
}

func missingFields(args messageArgs) []string {
	missing := []string{}
	if strings.TrimSpace(args.Text) == "" {
		missing = append(missing, "text")
	}
	if strings.TrimSpace(args.UserID) == "" {
		missing = append(missing, "user_id")
	}
	if strings.TrimSpace(args.ChannelID) == "" {
		missing = append(missing, "channel_id")
	}
	if strings.TrimSpace(args.WorkspaceID) == "" {
		missing = append(missing, "workspace_id")
	}
	return missing
}

func toolError(message string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: message}},
	}
}
