package app

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run serves MCP over stdio alongside the context janitor and prompt watcher. The runtime stops
// when ctx is cancelled, when the MCP client disconnects, or when any component fails.
func (r *Runtime) Run(ctx context.Context) error {
	r.logger.Info("board-agent runtime starting", "db_path", r.cfg.DBPath, "transcripts", r.cfg.TranscriptRoot != "")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error {
		defer cancel()
		return r.serveMCP(groupCtx)
	})
	group.Go(func() error {
		return r.janitor.Start(groupCtx)
	})
	if r.prompts != nil {
		group.Go(func() error {
			return r.prompts.Start(groupCtx)
		})
	}

	err := group.Wait()
	r.logger.Info("board-agent runtime stopped")
	return err
}
