package service

import (
	"Inbox/internal/blob"
	"Inbox/internal/model"
	"Inbox/internal/repo"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ImageService — загрузка и выдача изображений. Метаданные в БД, байты в blob.Store.
type ImageService struct {
	repo   repo.ImageRepository
	blobs  blob.Store
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewImageService(r repo.ImageRepository, blobs blob.Store, logger *zap.SugaredLogger) *ImageService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &ImageService{repo: r, blobs: blobs, logger: logger, now: time.Now}
}

// Upload проверяет размер и тип до того, как что-либо сохранить.
// Сначала пишутся байты, затем строка метаданных; если строка не вставилась, байты удаляются.
func (s *ImageService) Upload(ctx context.Context, userID string, data []byte, contentType string) (*model.Image, error) {
	if len(data) > model.MaxImageSize {
		return nil, ErrImageTooLarge
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrValidation)
	}
	mt := DetectImageMime(contentType, data)
	if !strings.HasPrefix(mt, "image/") {
		return nil, fmt.Errorf("%w: file must be an image", ErrValidation)
	}

	img := &model.Image{
		ID:        uuid.NewString(),
		UserID:    userID,
		Mime:      mt,
		Size:      int64(len(data)),
		CreatedAt: s.now().UTC(),
	}
	if err := s.blobs.Put(ctx, img.ID, data, mt); err != nil {
		return nil, fmt.Errorf("store image bytes: %w", err)
	}
	if err := s.repo.Create(ctx, img); err != nil {
		if derr := s.blobs.Delete(ctx, img.ID); derr != nil {
			s.logger.Warnw("orphan image blob", "id", img.ID, "error", derr)
		}
		return nil, fmt.Errorf("create image: %w", err)
	}
	return img, nil
}

// Get отдаёт метаданные и байты. Чужое изображение — ErrForbidden, байты не читаются.
func (s *ImageService) Get(ctx context.Context, userID, id string) (*model.Image, []byte, error) {
	img, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get image: %w", err)
	}
	if img.UserID != userID {
		return nil, nil, ErrForbidden
	}
	data, err := s.blobs.Get(ctx, id)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load image bytes: %w", err)
	}
	return img, data, nil
}

// DetectImageMime берёт тип из заголовка части, а для пустого или
// application/octet-stream угадывает его по содержимому.
func DetectImageMime(contentType string, data []byte) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || mt == "" || mt == "application/octet-stream" {
		mt, _, _ = mime.ParseMediaType(http.DetectContentType(data))
	}
	return strings.ToLower(mt)
}
