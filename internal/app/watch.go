package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/aimdrift/aimdrift/pkg/logger"
)

// WaitForSessions blocks until at least one session file exists in the
// replays directory, watching it for newly dropped files. It returns
// immediately when files are already present, and ctx.Err() on cancellation.
func (s *Service) WaitForSessions(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch replays dir: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.replaysDir); err != nil {
		return fmt.Errorf("watch replays dir: %w", err)
	}

	// Files may have appeared between the directory listing and the watch
	// being established.
	if paths, err := s.ListSessions(); err == nil && len(paths) > 0 {
		return nil
	}

	s.log.Info(ctx, "waiting for session files",
		logger.String("dir", s.replaysDir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), sessionExt) {
				continue
			}
			return nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn(ctx, "replays watcher error", logger.Error(err))
		}
	}
}
