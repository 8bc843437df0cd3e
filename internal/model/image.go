package model

import "time"

// MaxImageSize — верхняя граница размера загружаемого изображения (2 MiB).
const MaxImageSize = 2 << 20

// Image — метаданные загруженного изображения. Сами байты лежат в blob-хранилище под тем же ID.
type Image struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index" json:"-"`
	Mime      string    `gorm:"not null" json:"mime"`
	Size      int64     `gorm:"not null" json:"size"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
