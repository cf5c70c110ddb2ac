package cache

import "context"

type stringStore interface {
	GetString(ctx context.Context, key string) (string, bool, error)
	SetString(ctx context.Context, key, value string) error
}

// StateStorage adapts a Cache to the durable key-value contract used for
// persisted view state. Keys are namespaced with prefix.
type StateStorage struct {
	store  stringStore
	prefix string
}

func NewStateStorage(c *Cache, prefix string) *StateStorage {
	return &StateStorage{store: c, prefix: prefix}
}

func (s *StateStorage) Get(ctx context.Context, key string) (string, bool, error) {
	return s.store.GetString(ctx, s.prefix+key)
}

func (s *StateStorage) Set(ctx context.Context, key, value string) error {
	return s.store.SetString(ctx, s.prefix+key, value)
}
