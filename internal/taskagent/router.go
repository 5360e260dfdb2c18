// Package taskagent answers chat messages by reading and mutating a user's task boards.
package taskagent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dwizi/board-agent/internal/conversation"
	"github.com/dwizi/board-agent/internal/intent"
	"github.com/dwizi/board-agent/internal/store"
)

type Directory interface {
	LookupOrganization(ctx context.Context, workspaceID string) (string, error)
}

type TaskStore interface {
	ListUserTasks(ctx context.Context, userID, organizationID string) ([]store.TaskRecord, error)
	LookupTask(ctx context.Context, id string) (store.TaskRecord, error)
	CreateTask(ctx context.Context, input store.CreateTaskInput) (store.TaskRecord, error)
	SetTaskChecked(ctx context.Context, id string, checked bool) (store.TaskRecord, error)
	DeleteTask(ctx context.Context, id string) (store.TaskRecord, error)
	UpdateTaskContent(ctx context.Context, id, content string) (store.TaskRecord, error)
}

type IntentParser interface {
	Parse(ctx context.Context, text string) intent.Intent
}

type MessageInput struct {
	Text        string
	UserID      string
	ChannelID   string
	WorkspaceID string
}

type Router struct {
	directory Directory
	tasks     TaskStore
	parser    IntentParser
	contexts  *conversation.Store
	resolver  *conversation.Resolver
	logger    *slog.Logger
}

// request is one message after workspace resolution and parsing.
type request struct {
	input          MessageInput
	organizationID string
	intent         intent.Intent
}

// outcome is what a handler produced; the router applies the context change after the reply is
// settled so handlers stay free of conversation bookkeeping.
type outcome struct {
	reply      string
	lastAction string
	listed     []store.TaskRecord
}

func New(directory Directory, tasks TaskStore, parser IntentParser, contexts *conversation.Store, logger *slog.Logger) (*Router, error) {
	if directory == nil {
		return nil, fmt.Errorf("workspace directory is required")
	}
	if tasks == nil {
		return nil, fmt.Errorf("task store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if parser == nil {
		parser = intent.New(intent.Config{}, nil, logger)
	}
	if contexts == nil {
		contexts = conversation.NewStore(conversation.NewMemoryBackend(), logger)
	}
	return &Router{
		directory: directory,
		tasks:     tasks,
		parser:    parser,
		contexts:  contexts,
		resolver:  conversation.NewResolver(contexts),
		logger:    logger.With("component", "taskagent"),
	}, nil
}

// HandleMessage always returns a reply; failures are logged and turned into an apology.
func (r *Router) HandleMessage(ctx context.Context, input MessageInput) string {
	input.UserID = strings.TrimSpace(input.UserID)
	input.ChannelID = strings.TrimSpace(input.ChannelID)
	input.WorkspaceID = strings.TrimSpace(input.WorkspaceID)

	organizationID, err := r.directory.LookupOrganization(ctx, input.WorkspaceID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			r.logger.Info("workspace not connected", "workspace_id", input.WorkspaceID)
			return notConnectedReply
		}
		r.logger.Error("workspace lookup failed", "workspace_id", input.WorkspaceID, "error", err)
		return apologyReply
	}

	req := request{
		input:          input,
		organizationID: organizationID,
		intent:         r.parser.Parse(ctx, input.Text),
	}
	result, err := r.dispatch(ctx, req)
	if err != nil {
		r.logger.Error("task action failed",
			"action", string(req.intent.Action),
			"user_id", input.UserID,
			"channel_id", input.ChannelID,
			"organization_id", organizationID,
			"error", err,
		)
		return apologyReply
	}
	r.remember(ctx, req, result)
	return result.reply
}

func (r *Router) dispatch(ctx context.Context, req request) (outcome, error) {
	switch req.intent.Action {
	case intent.ActionList:
		return r.handleList(ctx, req)
	case intent.ActionAdd:
		return r.handleAdd(ctx, req)
	case intent.ActionComplete:
		return r.handleComplete(ctx, req)
	case intent.ActionRemove:
		return r.handleRemove(ctx, req)
	case intent.ActionEdit:
		return r.handleEdit(ctx, req)
	case intent.ActionHelp:
		return outcome{reply: helpReply}, nil
	default:
		return handleUnknown(req), nil
	}
}

func (r *Router) remember(ctx context.Context, req request, result outcome) {
	if result.listed != nil {
		snapshot := make([]store.ConversationTask, 0, len(result.listed))
		for _, task := range result.listed {
			snapshot = append(snapshot, store.ConversationTask{TaskID: task.ID, Content: task.Content})
		}
		r.contexts.SetLastTasks(ctx, req.input.UserID, req.input.ChannelID, req.organizationID, snapshot)
		return
	}
	if result.lastAction == "" {
		return
	}
	r.contexts.Update(ctx, req.input.UserID, req.input.ChannelID, req.organizationID, conversation.Update{
		LastAction: result.lastAction,
	})
}

// resolveTarget prefers the ordinal and falls back to the free-text reference.
func (r *Router) resolveTarget(ctx context.Context, req request) (string, bool) {
	entities := req.intent.Entities
	if entities.TaskIndex > 0 {
		if id, ok := r.resolver.ResolveIndex(ctx, req.input.UserID, req.input.ChannelID, entities.TaskIndex); ok {
			return id, true
		}
	}
	if strings.TrimSpace(entities.TaskText) != "" {
		return r.resolver.ResolveText(ctx, req.input.UserID, req.input.ChannelID, entities.TaskText)
	}
	return "", false
}
