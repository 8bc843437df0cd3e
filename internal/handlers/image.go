package handlers

import (
	"Inbox/internal/middleware"
	"Inbox/internal/model"
	"Inbox/internal/service"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// запас на заголовки multipart сверх размера самого файла
const multipartOverhead = 64 << 10

// ImageHandler — загрузка и выдача изображений.
type ImageHandler struct {
	ImageService *service.ImageService
	Logger       *zap.SugaredLogger
}

// NewImageHandler создаёт хендлер изображений
func NewImageHandler(imageService *service.ImageService, logger *zap.SugaredLogger) *ImageHandler {
	return &ImageHandler{ImageService: imageService, Logger: logger}
}

type imageView struct {
	ID        string    `json:"id"`
	Mime      string    `json:"mime"`
	Size      int64     `json:"size"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type imageResponse struct {
	Image imageView `json:"image"`
}

// Upload принимает multipart с полем file
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	data, contentType, err := readUpload(w, r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	img, err := h.ImageService.Upload(r.Context(), userID, data, contentType)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, imageResponse{Image: imageView{
		ID:        img.ID,
		Mime:      img.Mime,
		Size:      img.Size,
		URL:       "/api/images/" + img.ID,
		CreatedAt: img.CreatedAt,
	}})
}

// Get отдаёт байты изображения владельцу
func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	img, data, err := h.ImageService.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.Header().Set("Content-Type", img.Mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// readUpload читает часть file потоково и не держит в памяти больше MaxImageSize+1 байт.
func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, model.MaxImageSize+multipartOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, "", fmt.Errorf("%w: multipart form expected", service.ErrValidation)
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, "", fmt.Errorf("%w: file is required", service.ErrValidation)
		}
		if err != nil {
			return nil, "", uploadReadError(err)
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}
		data, err := io.ReadAll(io.LimitReader(part, model.MaxImageSize+1))
		if err != nil {
			return nil, "", uploadReadError(err)
		}
		if len(data) > model.MaxImageSize {
			return nil, "", service.ErrImageTooLarge
		}
		return data, part.Header.Get("Content-Type"), nil
	}
}

func uploadReadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return service.ErrImageTooLarge
	}
	return fmt.Errorf("%w: malformed multipart body", service.ErrValidation)
}
