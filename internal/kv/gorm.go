package kv

import (
	"context"
	"errors"
	"time"

	"Inbox/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore — KV поверх таблицы kv_entries.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ Store = (*GormStore)(nil)

// NewGormStore создаёт KV-хранилище на переданном подключении.
// Таблица должна быть смигрирована (см. repo.InitDB).
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

// Set делает upsert по ключу.
func (s *GormStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if value == nil {
		value = []byte{}
	}
	e := &model.KVEntry{Key: key, Value: value, ExpiresAt: expiry(s.now(), ttl)}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at"}),
	}).Create(e).Error
}

// Get читает значение; истёкшая запись удаляется.
func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var e model.KVEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if e.ExpiresAt != nil && s.now().After(*e.ExpiresAt) {
		if err := s.Delete(ctx, key); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return e.Value, nil
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&model.KVEntry{}).Error
}
