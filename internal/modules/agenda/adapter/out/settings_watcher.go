package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	agendaout "countdown/internal/modules/agenda/port/out"
)

// YAMLSettingsWatcher follows the settings file's directory with fsnotify so
// atomic replacements are seen as well as in-place writes.
type YAMLSettingsWatcher struct {
	path string
}

func NewYAMLSettingsWatcher(path string) agendaout.SettingsWatcher {
	return &YAMLSettingsWatcher{path: path}
}

// Watch coalesces bursts of events: a signal that finds one already pending
// is dropped.
func (w *YAMLSettingsWatcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("start settings watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Base(w.path)
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return out, nil
}
