package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dwizi/board-agent/internal/conversation"
	"github.com/dwizi/board-agent/internal/store"
)

type countingPruner struct {
	mu    sync.Mutex
	calls int
	err   error
	done  chan struct{}
}

func (p *countingPruner) PruneExpiredConversations(ctx context.Context, now time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.done != nil && p.calls == 1 {
		close(p.done)
	}
	return 0, p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewJanitorRejectsInvalidSchedule(t *testing.T) {
	if _, err := NewJanitor(&countingPruner{}, "every now and then", discardLogger()); err == nil {
		t.Fatal("expected invalid schedule error")
	}
	if _, err := NewJanitor(nil, "@every 1m", discardLogger()); err == nil {
		t.Fatal("expected missing pruner error")
	}
	if _, err := NewJanitor(&countingPruner{}, "*/5 * * * *", discardLogger()); err != nil {
		t.Fatalf("expected standard cron expression to parse: %v", err)
	}
}

func TestJanitorRunOncePrunesExpiredContexts(t *testing.T) {
	backend := conversation.NewMemoryBackend()
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	if err := backend.UpsertConversation(ctx, store.UpsertConversationInput{
		UserID: "U1", ChannelID: "C1", OrganizationID: "org", LastAction: "list", ExpiresAt: base.Add(-time.Minute),
	}); err != nil {
		t.Fatalf("seed expired: %v", err)
	}
	if err := backend.UpsertConversation(ctx, store.UpsertConversationInput{
		UserID: "U2", ChannelID: "C1", OrganizationID: "org", LastAction: "list", ExpiresAt: base.Add(time.Minute),
	}); err != nil {
		t.Fatalf("seed fresh: %v", err)
	}

	janitor, err := NewJanitor(backend, "", discardLogger())
	if err != nil {
		t.Fatalf("new janitor: %v", err)
	}
	janitor.now = func() time.Time { return base }

	if removed := janitor.RunOnce(ctx); removed != 1 {
		t.Fatalf("expected one pruned context, got %d", removed)
	}
	if _, err := backend.GetConversation(ctx, "U2", "C1"); err != nil {
		t.Fatalf("expected fresh context to survive: %v", err)
	}
}

func TestJanitorRunOnceSurvivesPrunerFailure(t *testing.T) {
	pruner := &countingPruner{err: errors.New("disk full")}
	janitor, err := NewJanitor(pruner, "@every 1m", discardLogger())
	if err != nil {
		t.Fatalf("new janitor: %v", err)
	}
	if removed := janitor.RunOnce(context.Background()); removed != 0 {
		t.Fatalf("expected zero removed on failure, got %d", removed)
	}
}

func TestJanitorStartRunsOnScheduleUntilCancelled(t *testing.T) {
	pruner := &countingPruner{done: make(chan struct{})}
	janitor, err := NewJanitor(pruner, "@every 1s", discardLogger())
	if err != nil {
		t.Fatalf("new janitor: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- janitor.Start(ctx) }()

	select {
	case <-pruner.done:
	case <-time.After(5 * time.Second):
		t.Fatal("janitor did not prune on schedule")
	}
	cancel()
	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("expected clean stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}
