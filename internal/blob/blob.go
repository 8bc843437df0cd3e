// Package blob хранит байты загруженных изображений отдельно от метаданных.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound — объекта с таким ID нет.
var ErrNotFound = errors.New("blob: not found")

// Store — хранилище бинарных объектов по ID.
type Store interface {
	Put(ctx context.Context, id string, data []byte, mime string) error
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}
