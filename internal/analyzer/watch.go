// watch.go supplements the core analyze() operation with a local/dev
// driver: watching a directory for dropped screenshot files and
// triggering Analyze automatically, debounced per path. Grounded on
// sift's internal/watcher debounce pattern (time.AfterFunc per path,
// cancelling the prior timer on rapid writes).
package analyzer

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const watchDebounce = 500 * time.Millisecond

// WatchDir watches dir for new/modified image files and calls onFile
// (typically o.Analyze with a capture.FileCapturer swapped in) after a
// debounce window, until ctx is cancelled.
func WatchDir(ctx context.Context, dir string, log zerolog.Logger, onFile func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	var mu sync.Mutex
	timers := map[string]*time.Timer{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			ext := filepath.Ext(ev.Name)
			if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
				continue
			}
			path := ev.Name
			mu.Lock()
			if t, exists := timers[path]; exists {
				t.Stop()
			}
			timers[path] = time.AfterFunc(watchDebounce, func() {
				onFile(path)
			})
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch: fsnotify error")
		}
	}
}
