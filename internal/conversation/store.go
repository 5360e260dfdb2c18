// Package conversation keeps short-lived per user and channel context and resolves task
// references ("task 2", "that", "the john one") against it.
package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dwizi/board-agent/internal/store"
)

const DefaultTTL = 30 * time.Minute

// Backend persists context rows keyed by (user, channel). Upserts must be atomic per key.
type Backend interface {
	GetConversation(ctx context.Context, userID, channelID string) (store.ConversationRecord, error)
	UpsertConversation(ctx context.Context, input store.UpsertConversationInput) error
}

type Context struct {
	UserID         string
	ChannelID      string
	OrganizationID string
	LastAction     string
	LastTasks      []store.ConversationTask
	ExpiresAt      time.Time
}

// Update is a partial context write. An empty LastAction keeps the stored value; LastTasks is
// only written when ReplaceLastTasks is set.
type Update struct {
	LastAction       string
	LastTasks        []store.ConversationTask
	ReplaceLastTasks bool
}

type Store struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(backend Backend, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		backend: backend,
		ttl:     DefaultTTL,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger.With("component", "conversation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Get returns the context for the key unless it is missing, expired or unreadable.
func (s *Store) Get(ctx context.Context, userID, channelID string) (Context, bool) {
	if s == nil || s.backend == nil {
		return Context{}, false
	}
	record, err := s.backend.GetConversation(ctx, userID, channelID)
	if err != nil {
		if !errors.Is(err, store.ErrConversationNotFound) {
			s.logger.Warn("conversation context read failed",
				"user_id", userID, "channel_id", channelID, "error", err)
		}
		return Context{}, false
	}
	if s.now().After(record.ExpiresAt) {
		return Context{}, false
	}
	return Context{
		UserID:         record.UserID,
		ChannelID:      record.ChannelID,
		OrganizationID: record.OrganizationID,
		LastAction:     record.LastAction,
		LastTasks:      record.LastTasks,
		ExpiresAt:      record.ExpiresAt,
	}, true
}

// Update merges the partial write over the stored row and pushes expiry to now+TTL. Failures are
// logged and otherwise ignored.
func (s *Store) Update(ctx context.Context, userID, channelID, organizationID string, update Update) {
	if s == nil || s.backend == nil {
		return
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(channelID) == "" {
		return
	}
	err := s.backend.UpsertConversation(ctx, store.UpsertConversationInput{
		UserID:           userID,
		ChannelID:        channelID,
		OrganizationID:   organizationID,
		LastAction:       update.LastAction,
		LastTasks:        update.LastTasks,
		ReplaceLastTasks: update.ReplaceLastTasks,
		ExpiresAt:        s.now().Add(s.ttl),
	})
	if err != nil {
		s.logger.Warn("conversation context write failed",
			"user_id", userID, "channel_id", channelID, "action", update.LastAction, "error", err)
	}
}

// SetLastTasks records a freshly shown list; ordinals are reassigned 1..n in slice order.
func (s *Store) SetLastTasks(ctx context.Context, userID, channelID, organizationID string, tasks []store.ConversationTask) {
	snapshot := make([]store.ConversationTask, 0, len(tasks))
	for i, task := range tasks {
		task.Ordinal = i + 1
		snapshot = append(snapshot, task)
	}
	s.Update(ctx, userID, channelID, organizationID, Update{
		LastAction:       "list",
		LastTasks:        snapshot,
		ReplaceLastTasks: true,
	})
}
