package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Бэкенды KV и хранилища изображений.
const (
	KVBackendDB     = "db"
	KVBackendMemory = "memory"

	ImageBackendKV = "kv"
	ImageBackendS3 = "s3"
)

const defaultBaseURL = "localhost:8081"

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

type Config struct {
	// Server-side settings
	DatabaseDSN      string        `env:"DATABASE_URI"`
	WebDir           string        `env:"WEB_DIR" envDefault:"web/dist"`
	InviteCode       string        `env:"INVITE_CODE"`
	RequireInvite    bool          `env:"REQUIRE_INVITE" envDefault:"true"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	PBKDF2Iterations int           `env:"PBKDF2_ITERATIONS" envDefault:"120000"`
	CookieSecure     bool          `env:"COOKIE_SECURE" envDefault:"true"`
	KVBackend        string        `env:"KV_BACKEND" envDefault:"db"`
	ImageBackend     string        `env:"IMAGE_BACKEND" envDefault:"kv"`
	RateLimitRPS     float64       `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst   int           `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// S3-совместимое хранилище для IMAGE_BACKEND=s3
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL    string        `env:"-"`
	TokenFile    string        `env:"TOKEN_FILE"`
	SaveDebounce time.Duration `env:"SAVE_DEBOUNCE" envDefault:"600ms"`
	Version      bool          `env:"-"` // show client version and exit (flag only)
	Args         []string      `env:"-"` // позиционные аргументы (команда клиента)
}

// NewConfig читает .env, переменные окружения и флаги командной строки процесса.
func NewConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load собирает конфиг из окружения и переданных аргументов.
// Флаги по умолчанию берут значения из env, поэтому явно заданный флаг побеждает.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("inbox", flag.ContinueOnError)
	// Server flags
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres://... или файл SQLite)")
	fs.StringVar(&cfg.WebDir, "web-dir", cfg.WebDir, "каталог со статикой SPA")
	fs.StringVar(&cfg.InviteCode, "invite-code", cfg.InviteCode, "инвайт-код для регистрации")
	fs.BoolVar(&cfg.RequireInvite, "require-invite", cfg.RequireInvite, "регистрация только по инвайт-коду")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "срок жизни сессии")
	fs.StringVar(&cfg.KVBackend, "kv", cfg.KVBackend, "KV backend: db | memory")
	fs.StringVar(&cfg.ImageBackend, "images", cfg.ImageBackend, "image backend: kv | s3")
	// Shared/client flags
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the Inbox server (host:port)")
	fs.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	fs.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	fs.DurationVar(&cfg.SaveDebounce, "debounce", cfg.SaveDebounce, "задержка перед сохранением правки (client)")
	fs.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Args = fs.Args()

	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	// Fill client defaults if empty
	if cfg.TokenFile == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.TokenFile = filepath.Join(dir, "Inbox", "auth.json")
		} else {
			home, _ := os.UserHomeDir()
			cfg.TokenFile = filepath.Join(home, ".inbox_auth.json")
		}
	}

	return cfg, nil
}

// Validate проверяет настройки, без которых сервер не должен стартовать.
func (c *Config) Validate() error {
	var errs []error
	if c.RequireInvite && c.InviteCode == "" {
		errs = append(errs, errors.New("INVITE_CODE is required while REQUIRE_INVITE is on"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	switch c.KVBackend {
	case KVBackendDB, KVBackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown KV_BACKEND %q", c.KVBackend))
	}
	switch c.ImageBackend {
	case ImageBackendKV:
	case ImageBackendS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for IMAGE_BACKEND=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown IMAGE_BACKEND %q", c.ImageBackend))
	}
	return errors.Join(errs...)
}
