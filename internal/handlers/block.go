package handlers

import (
	"Inbox/internal/middleware"
	"Inbox/internal/model"
	"Inbox/internal/service"
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BlockHandler — CRUD блоков и перестановка.
type BlockHandler struct {
	BlockService *service.BlockService
	Logger       *zap.SugaredLogger
}

// NewBlockHandler создаёт хендлер блоков
func NewBlockHandler(blockService *service.BlockService, logger *zap.SugaredLogger) *BlockHandler {
	return &BlockHandler{BlockService: blockService, Logger: logger}
}

type contentRequest struct {
	Content *string `json:"content"`
}

type blockResponse struct {
	Block *model.Block `json:"block"`
}

type blocksResponse struct {
	Blocks []model.Block `json:"blocks"`
}

// reorderItem — position оставлен сырым: нужна проверка, что это целое JSON-число.
type reorderItem struct {
	ID       *string         `json:"id"`
	Position json.RawMessage `json:"position"`
}

type reorderRequest struct {
	Order *[]reorderItem `json:"order"`
}

// List список блоков в каноническом порядке
func (h *BlockHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	blocks, err := h.BlockService.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, blocksResponse{Blocks: blocks})
}

func (h *BlockHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	b, err := h.BlockService.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, blockResponse{Block: b})
}

// Create новый блок в конце списка
func (h *BlockHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	content, err := readContent(w, r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	b, err := h.BlockService.Create(r.Context(), userID, content)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, blockResponse{Block: b})
}

// Update правка содержимого
func (h *BlockHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	content, err := readContent(w, r)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	b, err := h.BlockService.Update(r.Context(), userID, chi.URLParam(r, "id"), content)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, blockResponse{Block: b})
}

// Delete удаление; повторное удаление тоже 200
func (h *BlockHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if err := h.BlockService.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody{OK: true})
}

// Reorder применяет новые позиции. Весь пакет проверяется до первой записи.
func (h *BlockHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req reorderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	updates, err := parseReorder(req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	blocks, err := h.BlockService.Reorder(r.Context(), userID, updates)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, blocksResponse{Blocks: blocks})
}

func readContent(w http.ResponseWriter, r *http.Request) (string, error) {
	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return "", err
	}
	if req.Content == nil {
		return "", fmt.Errorf("%w: content is required", service.ErrValidation)
	}
	return *req.Content, nil
}

func parseReorder(req reorderRequest) ([]service.PositionUpdate, error) {
	if req.Order == nil {
		return nil, fmt.Errorf("%w: order must be an array", service.ErrValidation)
	}
	updates := make([]service.PositionUpdate, 0, len(*req.Order))
	for i, it := range *req.Order {
		if it.ID == nil || *it.ID == "" {
			return nil, fmt.Errorf("%w: order[%d].id is required", service.ErrValidation, i)
		}
		pos, ok := parsePosition(it.Position)
		if !ok {
			return nil, fmt.Errorf("%w: order[%d].position must be an integer", service.ErrValidation, i)
		}
		updates = append(updates, service.PositionUpdate{ID: *it.ID, Position: pos})
	}
	return updates, nil
}

// parsePosition принимает только JSON-число с целым значением (2 и 2.0, но не "2" и не 2.5).
func parsePosition(raw json.RawMessage) (int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	if v, err := n.Int64(); err == nil {
		return v, true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}
