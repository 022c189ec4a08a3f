// Rebuilds a store when its dataset file changes.

package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/maruel/recdb/internal/recordstore"
	"golang.org/x/time/rate"
)

// Watcher reloads a dataset file into a [recordstore.Synced] on every change.
//
// Bursts of writes are coalesced: at most one rebuild runs per interval.
type Watcher struct {
	path    string
	target  *recordstore.Synced
	limiter *rate.Limiter
	started chan struct{}
	once    sync.Once

	// OnReload, if set, is called after every rebuild attempt.
	OnReload func(Stats, error)
}

// NewWatcher returns a watcher for path. interval <= 0 disables throttling.
func NewWatcher(path string, target *recordstore.Synced, interval time.Duration) *Watcher {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Watcher{
		path:    filepath.Clean(path),
		target:  target,
		limiter: rate.NewLimiter(limit, 1),
		started: make(chan struct{}),
	}
}

// Run watches the file until ctx is done. It may be called again after it
// returns.
//
// The parent directory is watched rather than the file itself so that editors
// replacing the file by rename are detected.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = fw.Close()
	}()
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.once.Do(func() { close(w.started) })
	slog.InfoContext(ctx, "Watching dataset", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if err := w.limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			w.drain(fw.Events)
			w.reload(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "Dataset watcher error", "err", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// drain discards events already queued; the upcoming reload covers them.
func (w *Watcher) drain(events <-chan fsnotify.Event) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	start := time.Now()
	s, st, err := Build(ctx, w.path)
	if err != nil {
		slog.ErrorContext(ctx, "Dataset reload failed; keeping previous store", "path", w.path, "err", err)
	} else {
		w.target.Swap(s)
		slog.InfoContext(ctx, "Dataset reloaded", "path", w.path, "records", st.Loaded, "duplicates", st.Duplicates, "dur", time.Since(start).Round(time.Millisecond))
	}
	if w.OnReload != nil {
		w.OnReload(st, err)
	}
}
