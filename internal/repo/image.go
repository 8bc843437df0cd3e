package repo

import (
	"Inbox/internal/model"
	"context"

	"gorm.io/gorm"
)

// ImageRepository — метаданные изображений.
type ImageRepository interface {
	Create(ctx context.Context, img *model.Image) error
	// GetByID ищет без учёта владельца: проверка владения — на уровне сервиса (403 vs 404).
	GetByID(ctx context.Context, id string) (*model.Image, error)
}

type imageRepo struct {
	db *gorm.DB
}

// NewImageRepository создаёт реализацию репозитория изображений.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepo{db: db}
}

func (r *imageRepo) Create(ctx context.Context, img *model.Image) error {
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *imageRepo) GetByID(ctx context.Context, id string) (*model.Image, error) {
	var img model.Image
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&img).Error; err != nil {
		return nil, err
	}
	return &img, nil
}
