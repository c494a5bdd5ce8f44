package out

import (
	"context"
	"sort"
	"strings"
	"sync"

	syncout "countdown/internal/modules/viewsync/port/out"
)

// MemoryStore keeps values in process and fans changes out over channels.
type MemoryStore struct {
	mu       sync.Mutex
	values   map[string][]byte
	watchers map[string][]chan []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string][]byte{}, watchers: map[string][]chan []byte{}}
}

var _ syncout.Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	s.notifyLocked(key, value)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	s.notifyLocked(key, nil)
	return nil
}

func (s *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for key := range s.values {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Watch(ctx context.Context, key string) (<-chan []byte, error) {
	ch := make(chan []byte, 16)
	s.mu.Lock()
	s.watchers[key] = append(s.watchers[key], ch)
	s.mu.Unlock()
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		list := s.watchers[key]
		for i, w := range list {
			if w == ch {
				s.watchers[key] = append(list[:i], list[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

// notifyLocked drops the update for a watcher whose buffer is full.
func (s *MemoryStore) notifyLocked(key string, value []byte) {
	for _, ch := range s.watchers[key] {
		var payload []byte
		if value != nil {
			payload = append([]byte(nil), value...)
		}
		select {
		case ch <- payload:
		default:
		}
	}
}
