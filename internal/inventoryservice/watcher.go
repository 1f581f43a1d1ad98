package inventoryservice

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce coalesces the burst of fsnotify events an editor save
// produces into one reload.
const defaultDebounce = 200 * time.Millisecond

// ReloadCallback is called after a watcher-driven reload with the fresh
// snapshot.
type ReloadCallback func(snap Snapshot)

// Watch starts an fsnotify watcher on the inventory root and reloads the
// service whenever the source markdown changes on disk, until ctx is
// cancelled. Writes the service performs itself (dedup rewrites, edits)
// also land here; they coalesce into no-op reloads because the checksum
// already matches. debounce <= 0 selects the default interval. cb (if
// non-nil) runs after each successful reload.
func Watch(ctx context.Context, svc *Service, logger *slog.Logger, debounce time.Duration, cb ReloadCallback) error {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := svc.store.Root()
	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root), slog.String("file", svc.SourceFile()))

	var timer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			reloadCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reloadCh:
			if err := svc.Load(ctx); err != nil {
				logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			logger.Debug("watcher: reloaded")
			if cb != nil {
				cb(svc.Snapshot())
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			// Atomic writes go through temp files; only the final rename
			// onto the source file matters.
			if strings.HasPrefix(name, ".inventar-tmp-") {
				continue
			}
			if name != svc.SourceFile() {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			scheduleReload()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
