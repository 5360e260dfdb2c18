package taskagent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwizi/board-agent/internal/store"
)

func (r *Router) handleList(ctx context.Context, req request) (outcome, error) {
	tasks, err := r.tasks.ListUserTasks(ctx, req.input.UserID, req.organizationID)
	if err != nil {
		return outcome{}, fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		return outcome{reply: emptyListReply}, nil
	}
	return outcome{reply: renderTaskList(tasks), listed: tasks}, nil
}

func (r *Router) handleAdd(ctx context.Context, req request) (outcome, error) {
	content := strings.TrimSpace(req.intent.Entities.TaskText)
	if content == "" {
		return outcome{reply: addClarifyReply}, nil
	}
	created, err := r.tasks.CreateTask(ctx, store.CreateTaskInput{
		OrganizationID: req.organizationID,
		UserID:         req.input.UserID,
		Content:        content,
		BoardName:      req.intent.Entities.BoardName,
	})
	if err != nil {
		return outcome{}, fmt.Errorf("create task: %w", err)
	}
	return outcome{
		reply:      fmt.Sprintf("Added %q to your %s board.", created.Content, created.BoardName),
		lastAction: "add",
	}, nil
}

func (r *Router) handleComplete(ctx context.Context, req request) (outcome, error) {
	taskID, ok := r.resolveTarget(ctx, req)
	if !ok {
		return outcome{reply: unresolvedReply}, nil
	}
	updated, err := r.tasks.SetTaskChecked(ctx, taskID, true)
	if err != nil {
		return outcome{}, fmt.Errorf("complete task: %w", err)
	}
	return outcome{
		reply:      fmt.Sprintf("Nice work! Marked %q as done %s", updated.Content, completedGlyph),
		lastAction: "complete",
	}, nil
}

func (r *Router) handleRemove(ctx context.Context, req request) (outcome, error) {
	taskID, ok := r.resolveTarget(ctx, req)
	if !ok {
		return outcome{reply: unresolvedReply}, nil
	}
	removed, err := r.tasks.DeleteTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return outcome{reply: vanishedReply}, nil
		}
		return outcome{}, fmt.Errorf("delete task: %w", err)
	}
	return outcome{
		reply:      fmt.Sprintf("Removed %q from your %s board.", removed.Content, removed.BoardName),
		lastAction: "remove",
	}, nil
}

// handleEdit only accepts ordinals; renaming a task picked by free text is too easy to get wrong.
func (r *Router) handleEdit(ctx context.Context, req request) (outcome, error) {
	newText := strings.TrimSpace(req.intent.Entities.NewText)
	if newText == "" {
		return outcome{reply: editClarifyReply}, nil
	}
	index := req.intent.Entities.TaskIndex
	if index <= 0 {
		return outcome{reply: editNumberReply}, nil
	}
	taskID, ok := r.resolver.ResolveIndex(ctx, req.input.UserID, req.input.ChannelID, index)
	if !ok {
		return outcome{reply: editNumberReply}, nil
	}
	previous, err := r.tasks.LookupTask(ctx, taskID)
	if err != nil {
		return outcome{}, fmt.Errorf("lookup task: %w", err)
	}
	updated, err := r.tasks.UpdateTaskContent(ctx, taskID, newText)
	if err != nil {
		return outcome{}, fmt.Errorf("update task: %w", err)
	}
	return outcome{
		reply:      fmt.Sprintf("Updated task %d: %q → %q", index, previous.Content, updated.Content),
		lastAction: "edit",
	}, nil
}

func handleUnknown(req request) outcome {
	if req.intent.Confidence < 0.3 {
		return outcome{reply: unsureReply + "\n\n" + helpReply}
	}
	return outcome{reply: vagueReply}
}
