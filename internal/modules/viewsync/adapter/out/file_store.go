package out

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"

	syncout "countdown/internal/modules/viewsync/port/out"
	apperrors "countdown/internal/platform/errors"
)

// FileStore keeps one file per key in a directory so separate processes can
// share it. Writes go through a temp file and rename, and Watch follows the
// directory with fsnotify.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create store dir: %v", apperrors.ErrStoreUnavailable, err)
	}
	return &FileStore{dir: dir}, nil
}

var _ syncout.Store = (*FileStore)(nil)

const (
	fileSuffix = ".json"
	tempPrefix = ".tmp-"
)

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+fileSuffix)
}

func keyFromName(name string) (string, bool) {
	if strings.HasPrefix(name, tempPrefix) || !strings.HasSuffix(name, fileSuffix) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(name, fileSuffix))
	if err != nil {
		return "", false
	}
	return key, true
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: read %s: %v", apperrors.ErrStoreUnavailable, key, err)
	}
	return raw, true, nil
}

func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(s.dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", apperrors.ErrStoreUnavailable, key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", apperrors.ErrStoreUnavailable, key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", apperrors.ErrStoreUnavailable, key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: replace %s: %v", apperrors.ErrStoreUnavailable, key, err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: delete %s: %v", apperrors.ErrStoreUnavailable, key, err)
	}
	return nil
}

func (s *FileStore) Keys(_ context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list store: %v", apperrors.ErrStoreUnavailable, err)
	}
	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		key, ok := keyFromName(entry.Name())
		if ok && strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FileStore) Watch(ctx context.Context, key string) (<-chan []byte, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: start watcher: %v", apperrors.ErrStoreUnavailable, err)
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("%w: watch %s: %v", apperrors.ErrStoreUnavailable, s.dir, err)
	}
	target := filepath.Base(s.path(key))
	out := make(chan []byte, 16)
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
				value, changed := s.readEvent(ctx, key, event)
				if !changed {
					continue
				}
				select {
				case out <- value:
				case <-ctx.Done():
					return
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

func (s *FileStore) readEvent(ctx context.Context, key string, event fsnotify.Event) ([]byte, bool) {
	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		value, ok, err := s.Get(ctx, key)
		if err != nil || !ok {
			return nil, false
		}
		return value, true
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if _, ok, _ := s.Get(ctx, key); ok {
			return nil, false
		}
		return nil, true
	default:
		return nil, false
	}
}
