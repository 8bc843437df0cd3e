package main

import (
	"Inbox/internal/blob"
	"Inbox/internal/config"
	"Inbox/internal/crypto"
	"Inbox/internal/handlers"
	"Inbox/internal/kv"
	"Inbox/internal/middleware"
	"Inbox/internal/repo"
	"Inbox/internal/service"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	cfg, err := config.NewConfig()
	if err != nil {
		sugar.Fatalw("failed to load config", "error", err)
	}
	if err := cfg.Validate(); err != nil {
		sugar.Fatalw("invalid config", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	var store kv.Store
	switch cfg.KVBackend {
	case config.KVBackendMemory:
		store = kv.NewMemory()
	default:
		store = kv.NewGormStore(gormDB)
	}

	var blobs blob.Store
	switch cfg.ImageBackend {
	case config.ImageBackendS3:
		client, err := blob.NewS3Client(ctx, blob.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			sugar.Fatalw("failed to initialize S3 client", "error", err)
		}
		blobs = blob.NewS3Store(client, cfg.S3Bucket, "images/")
	default:
		blobs = blob.NewKVStore(store)
	}

	sessions := service.NewSessionStore(store, cfg.SessionTTL)
	hasher := crypto.NewHasher(cfg.PBKDF2Iterations)
	svc := handlers.Services{
		Users:  service.NewUserService(repo.NewUserRepository(gormDB), sessions, hasher, service.InviteConfig{Required: cfg.RequireInvite, Code: cfg.InviteCode}),
		Blocks: service.NewBlockService(repo.NewBlockRepository(gormDB)),
		Images: service.NewImageService(repo.NewImageRepository(gormDB), blobs, sugar),
	}

	h := handlers.NewHandler(svc, sugar, cfg)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"WebDir", cfg.WebDir,
		"KVBackend", cfg.KVBackend,
		"ImageBackend", cfg.ImageBackend,
		"RequireInvite", cfg.RequireInvite,
		"SessionTTL", cfg.SessionTTL,
		"PBKDF2Iterations", hasher.Iterations(),
	)

	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Shutdown failed", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}
