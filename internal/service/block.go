package service

import (
	"Inbox/internal/model"
	"Inbox/internal/repo"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PositionUpdate — одна пара {id, position} из запроса на перестановку.
type PositionUpdate struct {
	ID       string
	Position int64
}

// BlockService — бизнес-логика блоков. Все операции ограничены владельцем.
type BlockService struct {
	repo repo.BlockRepository
	now  func() time.Time
}

func NewBlockService(r repo.BlockRepository) *BlockService {
	return &BlockService{repo: r, now: time.Now}
}

// List возвращает блоки пользователя в каноническом порядке.
func (s *BlockService) List(ctx context.Context, userID string) ([]model.Block, error) {
	blocks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	model.SortBlocks(blocks)
	return blocks, nil
}

func (s *BlockService) Get(ctx context.Context, userID, id string) (*model.Block, error) {
	b, err := s.repo.GetByID(ctx, userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get block: %w", err)
	}
	return b, nil
}

// Create добавляет блок в конец списка (position = max+1).
func (s *BlockService) Create(ctx context.Context, userID, content string) (*model.Block, error) {
	b := &model.Block{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}
	return b, nil
}

// Update меняет только содержимое и updated_at.
// Чужой блок неотличим от отсутствующего: ErrNotFound.
func (s *BlockService) Update(ctx context.Context, userID, id, content string) (*model.Block, error) {
	b, err := s.repo.UpdateContent(ctx, userID, id, content, s.now().UTC())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update block: %w", err)
	}
	return b, nil
}

// Delete идемпотентен: отсутствующий или чужой id — не ошибка.
func (s *BlockService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	return nil
}

// Reorder проверяет весь пакет до первой записи, затем применяет позиции по одной
// и возвращает свежий список.
func (s *BlockService) Reorder(ctx context.Context, userID string, updates []PositionUpdate) ([]model.Block, error) {
	for i, u := range updates {
		if strings.TrimSpace(u.ID) == "" {
			return nil, fmt.Errorf("%w: order[%d].id is required", ErrValidation, i)
		}
	}
	for _, u := range updates {
		if err := s.repo.SetPosition(ctx, userID, u.ID, u.Position); err != nil {
			return nil, fmt.Errorf("set position: %w", err)
		}
	}
	return s.List(ctx, userID)
}
