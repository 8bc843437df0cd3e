package repo

import (
	"Inbox/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

// BlockRepository — хранилище блоков. Все методы ограничены владельцем (userID):
// чужой блок неотличим от отсутствующего.
type BlockRepository interface {
	// ListByUser возвращает блоки пользователя без гарантий порядка.
	ListByUser(ctx context.Context, userID string) ([]model.Block, error)
	GetByID(ctx context.Context, userID, id string) (*model.Block, error)
	// Create назначает position = max(position)+1 и вставляет блок в одной транзакции.
	Create(ctx context.Context, b *model.Block) error
	// UpdateContent меняет content и updated_at. Нет строки — gorm.ErrRecordNotFound.
	UpdateContent(ctx context.Context, userID, id, content string, at time.Time) (*model.Block, error)
	// Delete удаляет блок; отсутствие строки — не ошибка.
	Delete(ctx context.Context, userID, id string) error
	// SetPosition перезаписывает только position; чужие/несуществующие id игнорируются.
	SetPosition(ctx context.Context, userID, id string, position int64) error
}

type blockRepo struct {
	db *gorm.DB
}

// NewBlockRepository создаёт реализацию репозитория блоков.
func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepo{db: db}
}

func (r *blockRepo) ListByUser(ctx context.Context, userID string) ([]model.Block, error) {
	blocks := []model.Block{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&blocks).Error
	return blocks, err
}

func (r *blockRepo) GetByID(ctx context.Context, userID, id string) (*model.Block, error) {
	var b model.Block
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Take(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *blockRepo) Create(ctx context.Context, b *model.Block) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos int64
		if err := tx.Model(&model.Block{}).
			Where("user_id = ?", b.UserID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPos).Error; err != nil {
			return err
		}
		b.Position = maxPos + 1
		return tx.Create(b).Error
	})
}

func (r *blockRepo) UpdateContent(ctx context.Context, userID, id, content string, at time.Time) (*model.Block, error) {
	tx := r.db.WithContext(ctx).Model(&model.Block{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"content": content, "updated_at": at})
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, userID, id)
}

func (r *blockRepo) Delete(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Block{}).Error
}

func (r *blockRepo) SetPosition(ctx context.Context, userID, id string, position int64) error {
	return r.db.WithContext(ctx).Model(&model.Block{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("position", position).Error
}
