package model

import "time"

// KVEntry — строка таблицы, на которой построено KV-хранилище (сессии, байты изображений).
type KVEntry struct {
	Key       string     `gorm:"primaryKey;size:255"`
	Value     []byte     `gorm:"not null"`
	ExpiresAt *time.Time `gorm:"index"`
}

// TableName фиксирует имя таблицы.
func (KVEntry) TableName() string { return "kv_entries" }
