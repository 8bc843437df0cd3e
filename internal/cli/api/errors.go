package api

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError — ответ сервера со статусом >= 400 и телом {error}.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsRateLimited — сервер ответил 429; запрос стоит повторить позже.
func IsRateLimited(err error) bool { return statusOf(err) == http.StatusTooManyRequests }

// IsUnauthorized — сессии нет или она истекла.
func IsUnauthorized(err error) bool { return statusOf(err) == http.StatusUnauthorized }

func IsNotFound(err error) bool { return statusOf(err) == http.StatusNotFound }
