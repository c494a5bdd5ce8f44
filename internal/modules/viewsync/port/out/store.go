package out

import "context"

// Store is the shared key-value store both views talk through. Watch
// delivers the new value after every change to key, nil when the key was
// deleted, and closes the channel when ctx is done.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Watch(ctx context.Context, key string) (<-chan []byte, error)
}
