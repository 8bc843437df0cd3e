package middleware

import (
	"net/http"
	"runtime/debug"
)

// WithRecover превращает панику хендлера в 500 с общим сообщением. Детали — только в лог.
func WithRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.Errorw("panic in handler", "panic", rec, "uri", r.RequestURI, "stack", string(debug.Stack()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}()
		next.ServeHTTP(w, r)
	})
}
