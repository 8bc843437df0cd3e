package handlers

import (
	"Inbox/internal/config"
	"Inbox/internal/middleware"
	"Inbox/internal/model"
	"Inbox/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// AuthHandler — регистрация, вход, выход и профиль.
type AuthHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

// NewAuthHandler создаёт хендлер аутентификации
func NewAuthHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{UserService: userService, Logger: logger, Config: cfg}
}

type registerRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	InviteCode string `json:"inviteCode"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type userResponse struct {
	User *model.User `json:"user"`
}

// Register регистрация пользователя
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	user, err := h.UserService.Register(r.Context(), service.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		InviteCode: req.InviteCode,
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	h.Logger.Infow("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, userResponse{User: user})
}

// Login авторизация пользователя
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	user, sess, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	middleware.SetSessionCookie(w, sess.Token, h.UserService.Sessions().TTL(), h.Config.CookieSecure)
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// Logout закрывает текущую сессию
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.Logout(r.Context(), middleware.SessionTokenFromContext(r.Context())); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	middleware.ClearSessionCookie(w, h.Config.CookieSecure)
	writeJSON(w, http.StatusOK, okBody{OK: true})
}

// Me профиль текущего пользователя
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// ChangePassword смена пароля
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if err := h.UserService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody{OK: true})
}
