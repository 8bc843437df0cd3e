// Package kv — минимальное key-value хранилище с TTL для сессий и бинарных данных.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound возвращается, если ключа нет или его срок истёк.
var ErrNotFound = errors.New("kv: key not found")

// Store — контракт KV-хранилища.
type Store interface {
	// Set записывает значение. ttl <= 0 — без срока жизни.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get читает значение; истёкшие записи удаляются и дают ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete удаляет ключ; отсутствие ключа ошибкой не считается.
	Delete(ctx context.Context, key string) error
}

func expiry(now time.Time, ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	t := now.Add(ttl).UTC()
	return &t
}
