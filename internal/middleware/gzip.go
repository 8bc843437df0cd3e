package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// сжимаем только текстовые ответы: изображения уже сжаты
var compressible = []string{
	"application/json",
	"text/html",
	"text/css",
	"text/plain",
	"application/javascript",
	"image/svg+xml",
}

var compressor = chimw.Compress(5, compressible...)

// WithGzip сжимает ответ, если клиент прислал Accept-Encoding: gzip.
func WithGzip(next http.Handler) http.Handler {
	return compressor(next)
}
