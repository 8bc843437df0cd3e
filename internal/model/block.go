package model

import "time"

// Block — единица контента в инбоксе пользователя.
//
// Position задаёт ручной приоритет и не обязан быть уникальным или непрерывным,
// равные позиции разрешаются по свежести (см. CompareBlocks).
type Block struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	UserID    string     `gorm:"size:36;not null;index" json:"-"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Position  int64      `gorm:"not null;default:0;index" json:"position"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// LastTouched возвращает updated_at, а для ни разу не редактированного блока — created_at.
func (b *Block) LastTouched() time.Time {
	if b.UpdatedAt != nil {
		return *b.UpdatedAt
	}
	return b.CreatedAt
}
