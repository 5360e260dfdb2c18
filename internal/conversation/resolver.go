package conversation

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/dwizi/board-agent/internal/store"
)

var pronounPattern = regexp.MustCompile(`\b(?:that|it)\b|\blast one\b`)

// Resolver maps ordinals and free-text references onto task ids from the last shown list.
type Resolver struct {
	contexts *Store
}

func NewResolver(contexts *Store) *Resolver {
	return &Resolver{contexts: contexts}
}

// ResolveIndex treats ordinal as a 1-based position in the last shown list.
func (r *Resolver) ResolveIndex(ctx context.Context, userID, channelID string, ordinal int) (string, bool) {
	tasks, ok := r.lastTasks(ctx, userID, channelID)
	if !ok || ordinal < 1 || ordinal > len(tasks) {
		return "", false
	}
	return tasks[ordinal-1].TaskID, true
}

// ResolveText resolves pronouns ("that", "it", "last") to the final listed task and anything
// else to the first task whose content contains the reference, case-insensitively.
func (r *Resolver) ResolveText(ctx context.Context, userID, channelID, reference string) (string, bool) {
	reference = strings.ToLower(strings.TrimSpace(reference))
	if reference == "" {
		return "", false
	}
	if ordinal, err := strconv.Atoi(strings.TrimPrefix(reference, "#")); err == nil {
		return r.ResolveIndex(ctx, userID, channelID, ordinal)
	}
	tasks, ok := r.lastTasks(ctx, userID, channelID)
	if !ok {
		return "", false
	}
	if reference == "last" || pronounPattern.MatchString(reference) {
		return tasks[len(tasks)-1].TaskID, true
	}
	for _, task := range tasks {
		if strings.Contains(strings.ToLower(task.Content), reference) {
			return task.TaskID, true
		}
	}
	return "", false
}

func (r *Resolver) lastTasks(ctx context.Context, userID, channelID string) ([]store.ConversationTask, bool) {
	if r == nil {
		return nil, false
	}
	current, ok := r.contexts.Get(ctx, userID, channelID)
	if !ok || len(current.LastTasks) == 0 {
		return nil, false
	}
	return current.LastTasks, true
}
