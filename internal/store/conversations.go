package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationTask is one row of the task list last shown in a channel.
type ConversationTask struct {
	TaskID  string `json:"taskId"`
	Content string `json:"content"`
	Ordinal int    `json:"ordinal"`
}

type ConversationRecord struct {
	UserID         string
	ChannelID      string
	OrganizationID string
	LastAction     string
	LastTasks      []ConversationTask
	ExpiresAt      time.Time
	UpdatedAt      time.Time
}

// UpsertConversationInput leaves LastAction untouched when empty and LastTasks untouched
// unless ReplaceLastTasks is set.
type UpsertConversationInput struct {
	UserID           string
	ChannelID        string
	OrganizationID   string
	LastAction       string
	LastTasks        []ConversationTask
	ReplaceLastTasks bool
	ExpiresAt        time.Time
}

// GetConversation returns the stored row even when it has expired; callers decide freshness.
func (s *Store) GetConversation(ctx context.Context, userID, channelID string) (ConversationRecord, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT user_id, channel_id, organization_id, last_action, last_tasks_json, expires_at_unix, updated_at_unix
		 FROM conversation_contexts
		 WHERE user_id = ? AND channel_id = ?`,
		strings.TrimSpace(userID),
		strings.TrimSpace(channelID),
	)
	var (
		record        ConversationRecord
		tasksJSON     string
		expiresAtUnix int64
		updatedAtUnix int64
	)
	if err := row.Scan(
		&record.UserID,
		&record.ChannelID,
		&record.OrganizationID,
		&record.LastAction,
		&tasksJSON,
		&expiresAtUnix,
		&updatedAtUnix,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ConversationRecord{}, ErrConversationNotFound
		}
		return ConversationRecord{}, fmt.Errorf("lookup conversation: %w", err)
	}
	if strings.TrimSpace(tasksJSON) != "" {
		if err := json.Unmarshal([]byte(tasksJSON), &record.LastTasks); err != nil {
			return ConversationRecord{}, fmt.Errorf("decode conversation tasks: %w", err)
		}
	}
	record.ExpiresAt = time.Unix(expiresAtUnix, 0).UTC()
	record.UpdatedAt = time.Unix(updatedAtUnix, 0).UTC()
	return record, nil
}

func (s *Store) UpsertConversation(ctx context.Context, input UpsertConversationInput) error {
	userID := strings.TrimSpace(input.UserID)
	channelID := strings.TrimSpace(input.ChannelID)
	if userID == "" || channelID == "" {
		return fmt.Errorf("user id and channel id are required")
	}
	var tasksJSON any
	if input.ReplaceLastTasks {
		tasks := input.LastTasks
		if tasks == nil {
			tasks = []ConversationTask{}
		}
		encoded, err := json.Marshal(tasks)
		if err != nil {
			return fmt.Errorf("encode conversation tasks: %w", err)
		}
		tasksJSON = string(encoded)
	}
	lastAction := nullIfEmpty(strings.TrimSpace(input.LastAction))

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO conversation_contexts (
			user_id, channel_id, organization_id, last_action, last_tasks_json, expires_at_unix, updated_at_unix
		) VALUES (?, ?, ?, COALESCE(?, ''), COALESCE(?, '[]'), ?, ?)
		ON CONFLICT(user_id, channel_id) DO UPDATE SET
			organization_id = excluded.organization_id,
			last_action = COALESCE(?, conversation_contexts.last_action),
			last_tasks_json = COALESCE(?, conversation_contexts.last_tasks_json),
			expires_at_unix = excluded.expires_at_unix,
			updated_at_unix = excluded.updated_at_unix`,
		userID,
		channelID,
		strings.TrimSpace(input.OrganizationID),
		lastAction,
		tasksJSON,
		input.ExpiresAt.UTC().Unix(),
		s.now().Unix(),
		lastAction,
		tasksJSON,
	)
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	return nil
}

func (s *Store) PruneExpiredConversations(ctx context.Context, now time.Time) (int64, error) {
	if now.IsZero() {
		now = s.now()
	}
	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM conversation_contexts WHERE expires_at_unix <= ?`,
		now.UTC().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("prune conversations: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return removed, nil
}
