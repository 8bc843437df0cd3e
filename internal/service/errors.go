package service

import "errors"

// Ошибки сервисного слоя. Хендлеры сопоставляют их с HTTP-статусами в одном месте.
var (
	ErrValidation          = errors.New("invalid input")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidInvite       = errors.New("invalid invite code")
	ErrInviteNotConfigured = errors.New("invite code is not configured")
	ErrUserNotFound        = errors.New("user not found")
	ErrWrongPassword       = errors.New("invalid password")
	ErrUnauthenticated     = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrImageTooLarge       = errors.New("image too large")

	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)
