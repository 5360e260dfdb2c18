package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var pruneScheduleParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type ConversationPruner interface {
	PruneExpiredConversations(ctx context.Context, now time.Time) (int64, error)
}

// Janitor deletes expired conversation contexts on a cron schedule. Reads already treat expired
// rows as absent, so pruning only bounds table growth.
type Janitor struct {
	pruner   ConversationPruner
	schedule cron.Schedule
	expr     string
	now      func() time.Time
	logger   *slog.Logger
}

func NewJanitor(pruner ConversationPruner, expr string, logger *slog.Logger) (*Janitor, error) {
	if pruner == nil {
		return nil, fmt.Errorf("conversation pruner is required")
	}
	expr = strings.TrimSpace(expr)
	if expr == "" {
		expr = "@every 10m"
	}
	schedule, err := pruneScheduleParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse prune schedule %q: %w", expr, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		pruner:   pruner,
		schedule: schedule,
		expr:     expr,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With("component", "context-janitor"),
	}, nil
}

func (j *Janitor) Start(ctx context.Context) error {
	j.logger.Info("context janitor started", "schedule", j.expr)
	for {
		next := j.schedule.Next(j.now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			j.logger.Info("context janitor stopped")
			return nil
		case <-timer.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce prunes immediately; failures are logged and retried on the next tick.
func (j *Janitor) RunOnce(ctx context.Context) int64 {
	removed, err := j.pruner.PruneExpiredConversations(ctx, j.now())
	if err != nil {
		if ctx.Err() == nil {
			j.logger.Error("prune expired conversations failed", "error", err)
		}
		return 0
	}
	if removed > 0 {
		j.logger.Info("pruned expired conversations", "removed", removed)
	}
	return removed
}
