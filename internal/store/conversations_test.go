package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUpsertConversationMergesFields(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()
	expiresAt := time.Unix(1700001800, 0).UTC()

	if err := sqlStore.UpsertConversation(ctx, UpsertConversationInput{
		UserID:           "U1",
		ChannelID:        "C1",
		OrganizationID:   "org-1",
		LastAction:       "list",
		LastTasks:        []ConversationTask{{TaskID: "a", Content: "alpha", Ordinal: 1}, {TaskID: "b", Content: "beta", Ordinal: 2}},
		ReplaceLastTasks: true,
		ExpiresAt:        expiresAt,
	}); err != nil {
		t.Fatalf("initial upsert: %v", err)
	}

	later := expiresAt.Add(5 * time.Minute)
	if err := sqlStore.UpsertConversation(ctx, UpsertConversationInput{
		UserID:         "U1",
		ChannelID:      "C1",
		OrganizationID: "org-1",
		LastAction:     "complete",
		ExpiresAt:      later,
	}); err != nil {
		t.Fatalf("partial upsert: %v", err)
	}

	record, err := sqlStore.GetConversation(ctx, "U1", "C1")
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if record.LastAction != "complete" {
		t.Fatalf("expected last action complete, got %s", record.LastAction)
	}
	if len(record.LastTasks) != 2 || record.LastTasks[1].TaskID != "b" {
		t.Fatalf("expected tasks to survive partial update, got %+v", record.LastTasks)
	}
	if !record.ExpiresAt.Equal(later) {
		t.Fatalf("expected expiry %s, got %s", later, record.ExpiresAt)
	}
}

func TestConversationKeysAreIndependent(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()

	if err := sqlStore.UpsertConversation(ctx, UpsertConversationInput{
		UserID: "U1", ChannelID: "C1", OrganizationID: "org-1", LastAction: "add",
		ExpiresAt: time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := sqlStore.GetConversation(ctx, "U1", "C2"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound for other channel, got %v", err)
	}
	record, err := sqlStore.GetConversation(ctx, "U1", "C1")
	if err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if len(record.LastTasks) != 0 {
		t.Fatalf("expected defaulted empty tasks, got %+v", record.LastTasks)
	}
}

func TestPruneExpiredConversations(t *testing.T) {
	sqlStore := newTestStore(t)
	ctx := context.Background()
	now := time.Unix(1700000000, 0).UTC()

	for _, item := range []struct {
		user      string
		expiresAt time.Time
	}{
		{user: "expired", expiresAt: now.Add(-time.Minute)},
		{user: "fresh", expiresAt: now.Add(time.Minute)},
	} {
		if err := sqlStore.UpsertConversation(ctx, UpsertConversationInput{
			UserID: item.user, ChannelID: "C1", OrganizationID: "org-1", LastAction: "list", ExpiresAt: item.expiresAt,
		}); err != nil {
			t.Fatalf("upsert %s: %v", item.user, err)
		}
	}

	removed, err := sqlStore.PruneExpiredConversations(ctx, now)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 pruned row, got %d", removed)
	}
	if _, err := sqlStore.GetConversation(ctx, "expired", "C1"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected expired row removed, got %v", err)
	}
	if _, err := sqlStore.GetConversation(ctx, "fresh", "C1"); err != nil {
		t.Fatalf("expected fresh row kept: %v", err)
	}
}
