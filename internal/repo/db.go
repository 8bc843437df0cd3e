package repo

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"Inbox/internal/model"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// DefaultSQLiteDSN — локальная база по умолчанию, если DATABASE_URI не задан.
const DefaultSQLiteDSN = "file:inbox.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// InitDB открывает базу и прогоняет миграции всех моделей.
// postgres:// и postgresql:// (а также DSN вида "host=...") уходят в Postgres, остальное — в SQLite (modernc).
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(dsn), &gorm.Config{
		Logger:         newGormLogger(os.Stdout),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// newGormLogger пишет только предупреждения и ошибки. "record not found" — обычный ответ
// на вход с неизвестным email, а не ошибка.
func newGormLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Migrate создаёт/обновляет схему.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Block{}, &model.Image{}, &model.KVEntry{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

func dialector(dsn string) gorm.Dialector {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), strings.Contains(dsn, "host="):
		return postgres.Open(dsn)
	case dsn == "":
		dsn = DefaultSQLiteDSN
	}
	return gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
}
