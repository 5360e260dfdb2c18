// Package promptwatch reloads the intent instruction prompt when its file changes on disk.
package promptwatch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Service watches the directory holding the prompt file so editor rename-and-replace saves are
// seen as well as in-place writes.
type Service struct {
	path    string
	logger  *slog.Logger
	apply   func(prompt string)
	watcher *fsnotify.Watcher
}

func New(path string, logger *slog.Logger, apply func(prompt string)) (*Service, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("prompt file path is required")
	}
	if apply == nil {
		return nil, fmt.Errorf("prompt apply callback is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve prompt file: %w", err)
	}
	fileWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Service{
		path:    absolute,
		logger:  logger.With("component", "promptwatch"),
		apply:   apply,
		watcher: fileWatcher,
	}, nil
}

// Load reads the prompt file and applies it. A missing, unreadable or blank file applies "".
func (s *Service) Load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("prompt file unreadable, using built-in prompt", "path", s.path, "error", err)
		}
		s.apply("")
		return
	}
	prompt := strings.TrimSpace(string(data))
	s.apply(prompt)
	s.logger.Info("intent prompt loaded", "path", s.path, "bytes", len(prompt), "builtin", prompt == "")
}

func (s *Service) Start(ctx context.Context) error {
	defer s.watcher.Close()

	dir := filepath.Dir(s.path)
	if err := s.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch path %s: %w", dir, err)
	}
	s.Load()
	s.logger.Info("prompt watcher started", "path", s.path)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("prompt watcher stopped")
			return nil
		case event, ok := <-s.watcher.Events:
			if !ok {
				return nil
			}
			s.handleEvent(event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				s.logger.Error("prompt watcher error", "error", err)
			}
		}
	}
}

func (s *Service) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != s.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	s.logger.Info("prompt file changed", "path", event.Name, "op", event.Op.String())
	s.Load()
}

// Close releases the watcher for services that were loaded but never started.
func (s *Service) Close() error {
	return s.watcher.Close()
}
