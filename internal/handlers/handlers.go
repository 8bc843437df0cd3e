package handlers

import (
	"Inbox/internal/config"
	"Inbox/internal/middleware"
	"Inbox/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// Services — сервисный слой, которым пользуются хендлеры.
type Services struct {
	Users  *service.UserService
	Blocks *service.BlockService
	Images *service.ImageService
}

// NewHandler разводящий для хендлеров
func NewHandler(
	svc Services,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithRecover)
	r.Use(middleware.WithGzip)

	// Handlers
	authHandler := NewAuthHandler(svc.Users, logger, config)
	blockHandler := NewBlockHandler(svc.Blocks, logger)
	imageHandler := NewImageHandler(svc.Images, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(noStore)
		r.Use(middleware.WithRateLimit(middleware.RateLimitConfig{RPS: config.RateLimitRPS, Burst: config.RateLimitBurst}))
		r.Use(middleware.WithAuth(svc.Users))

		r.Get("/health", Health)

		// Auth routes
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/password", authHandler.ChangePassword)

			// Block routes
			r.Get("/blocks", blockHandler.List)
			r.Post("/blocks", blockHandler.Create)
			r.Post("/blocks/reorder", blockHandler.Reorder)
			r.Get("/blocks/{id}", blockHandler.Get)
			r.Put("/blocks/{id}", blockHandler.Update)
			r.Delete("/blocks/{id}", blockHandler.Delete)

			// Image routes
			r.Post("/images", imageHandler.Upload)
			r.Get("/images/{id}", imageHandler.Get)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		})
	})

	// всё, что не /api, — статика SPA
	spa := spaFromDisk(config.WebDir)
	r.Get("/*", spa.ServeHTTP)
	r.Head("/*", spa.ServeHTTP)

	return &Handler{Router: r}
}
