package middleware

import (
	"Inbox/internal/model"
	"Inbox/internal/service"
	"context"
	"errors"
	"net/http"
	"time"
)

// CookieName — имя cookie с токеном сессии.
const CookieName = "auth_token"

// Authenticator разрешает токен сессии в пользователя.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type ctxKey int

const (
	userKey ctxKey = iota
	tokenKey
)

// WithAuth читает cookie и, если сессия жива, кладёт пользователя в контекст.
// Нет cookie или сессия недействительна — запрос идёт дальше анонимным.
func WithAuth(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			u, err := a.Authenticate(r.Context(), token)
			switch {
			case errors.Is(err, service.ErrUnauthenticated):
				next.ServeHTTP(w, r)
				return
			case err != nil:
				logger.Errorw("session lookup failed", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, u)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth отвечает 401, если WithAuth не нашёл пользователя.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TokenFromRequest достаёт токен из cookie; пустая строка — cookie нет.
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// UserFromContext возвращает пользователя, положенного WithAuth.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// GetUserIDFromContext — короткий путь к id текущего пользователя.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	u, ok := UserFromContext(ctx)
	if !ok {
		return "", false
	}
	return u.ID, true
}

// SessionTokenFromContext возвращает токен, по которому аутентифицирован запрос.
func SessionTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

// SetSessionCookie выставляет cookie сессии на ttl.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie перевыставляет cookie с Max-Age=0.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
