// mobilecart/storage/local_storage.go

package storage

import (
	"context"
	"sync"
)

// LocalStorage keeps values in process memory.
type LocalStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewLocalStorage constructor
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{items: make(map[string]string)}
}

var _ Storage = (*LocalStorage)(nil)

// GetItem returns the value stored under key.
func (l *LocalStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	v, ok := l.items[key]
	return v, ok, nil
}

// SetItem overwrites the value stored under key.
func (l *LocalStorage) SetItem(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items[key] = value
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (l *LocalStorage) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.items, key)
	return nil
}

// Ping always succeeds.
func (l *LocalStorage) Ping(ctx context.Context) bool {
	return true
}

func (l *LocalStorage) Close() error { return nil }
