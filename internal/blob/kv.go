package blob

import (
	"context"
	"errors"

	"Inbox/internal/kv"
)

const keyPrefix = "image:"

// KVStore кладёт байты в то же KV-хранилище, что и сессии, под ключом image:<id>.
type KVStore struct {
	kv kv.Store
}

// NewKVStore оборачивает KV-хранилище.
func NewKVStore(store kv.Store) *KVStore {
	return &KVStore{kv: store}
}

func (s *KVStore) Put(ctx context.Context, id string, data []byte, _ string) error {
	return s.kv.Set(ctx, keyPrefix+id, data, 0)
}

func (s *KVStore) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := s.kv.Get(ctx, keyPrefix+id)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *KVStore) Delete(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, keyPrefix+id)
}
