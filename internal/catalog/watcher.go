package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadCallback is called after the watcher installed a new snapshot.
type ReloadCallback func(c *Catalog)

const reloadDebounce = 200 * time.Millisecond

// Watch reloads the catalog file into store whenever it changes, until ctx
// is cancelled. The parent directory is watched rather than the file so
// that editors which save via rename are picked up. Bursts of events are
// debounced into a single reload. A file that fails to load is logged and
// the previous snapshot stays active.
func Watch(ctx context.Context, store *Store, path string, logger *slog.Logger, cb ReloadCallback) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("catalog watcher: started", slog.String("path", abs))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(reloadDebounce)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(reloadDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("catalog watcher: stopped")
			return nil

		case <-reloadCh:
			c, loadErr := LoadFile(abs)
			if loadErr != nil {
				logger.Warn("catalog watcher: reload failed, keeping previous catalog",
					slog.String("path", abs),
					slog.String("error", loadErr.Error()))
				continue
			}
			store.Replace(c)
			LogMalformedDates(c, logger)
			logger.Info("catalog watcher: reloaded",
				slog.String("path", abs),
				slog.Int("posts", c.Len()))
			if cb != nil {
				cb(c)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				logger.Debug("catalog watcher: change detected", slog.String("op", ev.Op.String()))
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("catalog watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// LogMalformedDates warns about every post whose date does not parse.
// Such posts sort as older than every valid date.
func LogMalformedDates(c *Catalog, logger *slog.Logger) {
	for _, p := range c.MalformedDates() {
		logger.Warn("catalog: malformed post date, sorting as oldest",
			slog.String("section", p.Section),
			slog.Int("id", p.ID),
			slog.String("date", p.Date))
	}
}
